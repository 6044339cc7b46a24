// 包 interaction：悬停/选中状态机
// 背景：指针事件在进入状态机前已解析为国家代码或“不可解析”；点击同时产生导航效果与 toggleVisited 意图，两者相互独立。
// 约束：Transition 为 (state, event) 上的全函数，无错误返回；任一时刻只有一个状态有效。
package interaction

import (
	"fmt"

	"been-map/internal/identity"
)

// Kind：状态标签
type Kind int

const (
	Idle Kind = iota
	Hovering
	Selected
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Hovering:
		return "hovering"
	case Selected:
		return "selected"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// State：Idle 时 Code 为空
type State struct {
	Kind Kind          `json:"kind"`
	Code identity.Code `json:"code,omitempty"`
}

func (s State) String() string {
	if s.Kind == Idle {
		return "idle"
	}
	return fmt.Sprintf("%s(%s)", s.Kind, s.Code)
}

func IdleState() State { return State{Kind: Idle} }
func HoveringState(c identity.Code) State { return State{Kind: Hovering, Code: c} }
func SelectedState(c identity.Code) State { return State{Kind: Selected, Code: c} }
func (s State) Is(k Kind, c identity.Code) bool { return s.Kind == k && s.Code == c }

// Event：状态机输入
type Event interface{ event() }

type PointerEnter struct {
	Code       identity.Code
	Resolvable bool
}

type PointerLeave struct{}

type Click struct {
	Code       identity.Code
	Resolvable bool
}

func (PointerEnter) event() {}
func (PointerLeave) event() {}
func (Click) event() {}

// Effect：状态机输出；视图效果由地图表面执行，ToggleVisited 转交宿主
type Effect interface{ effect() }

type ToggleVisited struct{ Code identity.Code }

type Recenter struct{ Code identity.Code }

type ResetView struct{}

func (ToggleVisited) effect() {}
func (Recenter) effect() {}
func (ResetView) effect() {}

// Transition：纯状态转移
//
//	pointerEnter(不可解析)        → 不变
//	pointerEnter(c)，Idle/Hovering → Hovering(c)
//	pointerEnter(_)，Selected(_)   → 不变（选中在悬停变化中保持）
//	pointerLeave，Hovering(_)      → Idle；其它状态不变
//	click(不可解析)               → 不变，无输出
//	click(c)，Selected(c)          → Idle + ResetView + ToggleVisited(c)
//	click(c)，其它                 → Selected(c) + Recenter(c) + ToggleVisited(c)
func Transition(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case PointerEnter:
		if !e.Resolvable || e.Code == identity.Unresolvable {
			return s, nil
		}
		if s.Kind == Selected {
			return s, nil
		}
		return HoveringState(e.Code), nil
	case PointerLeave:
		if s.Kind == Hovering {
			return IdleState(), nil
		}
		return s, nil
	case Click:
		if !e.Resolvable || e.Code == identity.Unresolvable {
			return s, nil
		}
		if s.Is(Selected, e.Code) {
			return IdleState(), []Effect{ResetView{}, ToggleVisited{Code: e.Code}}
		}
		return SelectedState(e.Code), []Effect{Recenter{Code: e.Code}, ToggleVisited{Code: e.Code}}
	}
	return s, nil
}

// Machine：持有当前状态的薄封装；不做并发保护，由调用方串行投递事件
type Machine struct {
	state State
}

func NewMachine() *Machine { return &Machine{} }

func (m *Machine) State() State { return m.state }

func (m *Machine) Dispatch(ev Event) (State, []Effect) {
	next, effects := Transition(m.state, ev)
	m.state = next
	return next, effects
}

// Reset：回到 Idle（地图重载时使用）
func (m *Machine) Reset() { m.state = IdleState() }
