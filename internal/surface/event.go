package surface

import (
	"errors"
	"fmt"

	"been-map/internal/identity"
	"been-map/internal/viewport"
)

// ErrBadEvent：事件类型未知或缺少必需字段
var ErrBadEvent = errors.New("bad event")

// 文档注释：可序列化的宿主事件
// 背景：HTTP 接口与离线渲染工具共用同一事件格式，按 Type 分派到 Surface 的对应方法。
// 约束：index 指向图集记录下标；x/y 为屏幕坐标；wheel 的锚点须同时给出 x 与 y，缺省时以视口中心缩放。
type Event struct {
	Type   string   `json:"type"`
	Index  *int     `json:"index,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	DX     float64  `json:"dx,omitempty"`
	DY     float64  `json:"dy,omitempty"`
	Factor *float64 `json:"factor,omitempty"`
}

// Validate：检查事件类型与必需字段
func (e Event) Validate() error {
	switch e.Type {
	case "pointer_enter", "click":
		if e.Index == nil {
			return fmt.Errorf("%w: %s requires index", ErrBadEvent, e.Type)
		}
	case "pointer_move", "click_at":
		if e.X == nil || e.Y == nil {
			return fmt.Errorf("%w: %s requires x and y", ErrBadEvent, e.Type)
		}
	case "wheel":
		if e.Factor == nil {
			return fmt.Errorf("%w: wheel requires factor", ErrBadEvent)
		}
		if (e.X == nil) != (e.Y == nil) {
			return fmt.Errorf("%w: wheel anchor needs both x and y", ErrBadEvent)
		}
	case "pointer_leave", "drag", "zoom_in", "zoom_out", "reset":
	default:
		return fmt.Errorf("%w: unknown type %q", ErrBadEvent, e.Type)
	}
	return nil
}

func (e Event) point() viewport.Point {
	return viewport.Point{X: *e.X, Y: *e.Y}
}

// Handle：投递一条已校验的事件
func (s *Surface) Handle(e Event) Result {
	switch e.Type {
	case "pointer_enter":
		return s.PointerEnter(*e.Index)
	case "pointer_leave":
		return s.PointerLeave()
	case "pointer_move":
		return s.PointerMove(e.point())
	case "click":
		return s.Click(*e.Index)
	case "click_at":
		return s.ClickAt(e.point())
	case "drag":
		return s.Drag(e.DX, e.DY)
	case "wheel":
		var anchor *viewport.Point
		if e.X != nil {
			p := e.point()
			anchor = &p
		}
		return s.Wheel(*e.Factor, anchor)
	case "zoom_in":
		return s.ZoomIn()
	case "zoom_out":
		return s.ZoomOut()
	case "reset":
		return s.ResetView()
	}
	return Result{State: s.State(), View: s.View()}
}

// ValidateEvents：整批校验，错误信息带事件序号
func ValidateEvents(events []Event) error {
	for i, e := range events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}

// Replay：按顺序执行并收集 toggleVisited 意图
func (s *Surface) Replay(events []Event) []identity.Code {
	var intents []identity.Code
	for _, e := range events {
		intents = append(intents, s.Handle(e).Intents...)
	}
	return intents
}
