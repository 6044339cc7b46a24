// 包 tooltip：悬停提示框定位
package tooltip

import (
	"unicode/utf8"

	"been-map/internal/interaction"
	"been-map/internal/viewport"
)

const visitedMark = "✓ Visited"

// Size：提示框尺寸（像素）
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Content：提示框文本（国家名、大洲、是否已访问）
type Content struct {
	Label     string
	Continent string
	Visited   bool
}

// Lines：按显示顺序排列的文本行
func (c Content) Lines() []string {
	if c.Label == "" {
		return nil
	}
	lines := []string{c.Label}
	if c.Continent != "" {
		lines = append(lines, c.Continent)
	}
	if c.Visited {
		lines = append(lines, visitedMark)
	}
	return lines
}

// State：一次定位的结果
type State struct {
	Anchor    viewport.Point `json:"anchor"`
	Size      Size           `json:"size"`
	Label     string         `json:"label"`
	Continent string         `json:"continent,omitempty"`
	Visited   bool           `json:"visited"`
	Visible   bool           `json:"visible"`
}

func (s State) Lines() []string {
	return Content{Label: s.Label, Continent: s.Continent, Visited: s.Visited}.Lines()
}

// 文档注释：提示框定位器
// 背景：提示框放在指针右上方，按文本估算尺寸后夹取到视口内；仅在悬停且有名称时可见。
// 约束：结果只取决于当前输入；Last 返回最近一次结果，供事件结果回带。
type Positioner struct {
	Viewport   Size
	Offset     viewport.Point
	CharWidth  float64
	Padding    float64
	LineHeight float64

	last State
}

func NewPositioner(vw, vh float64) *Positioner {
	return &Positioner{
		Viewport:   Size{W: vw, H: vh},
		Offset:     viewport.Point{X: 12, Y: 12},
		CharWidth:  7,
		Padding:    8,
		LineHeight: 18,
	}
}

// Measure：按最长行字符数与行数估算尺寸
func (p *Positioner) Measure(c Content) Size {
	lines := c.Lines()
	if len(lines) == 0 {
		return Size{}
	}
	longest := 0
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > longest {
			longest = n
		}
	}
	return Size{
		W: float64(longest)*p.CharWidth + 2*p.Padding,
		H: float64(len(lines))*p.LineHeight + 2*p.Padding,
	}
}

// Position：计算提示框状态
func (p *Positioner) Position(pointer viewport.Point, c Content, st interaction.State) State {
	size := p.Measure(c)
	anchor := viewport.Point{
		X: clampBox(pointer.X+p.Offset.X, size.W, p.Viewport.W),
		Y: clampBox(pointer.Y-p.Offset.Y-size.H, size.H, p.Viewport.H),
	}
	out := State{
		Anchor:    anchor,
		Size:      size,
		Label:     c.Label,
		Continent: c.Continent,
		Visited:   c.Visited,
		Visible:   st.Kind == interaction.Hovering && c.Label != "",
	}
	p.last = out
	return out
}

// Last：上一次定位结果
func (p *Positioner) Last() State { return p.last }

// clampBox：box 超出视口时贴边；比视口大时固定在 0
func clampBox(v, box, view float64) float64 {
	hi := view - box
	if v > hi {
		v = hi
	}
	if v < 0 {
		v = 0
	}
	return v
}
