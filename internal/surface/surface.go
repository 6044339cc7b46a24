// 包 surface：地图表面（组合投影、身份解析、视图控制、状态机与提示框）
// 背景：每个挂载的地图一个 Surface；指针事件经命中判定与身份表解析后进入状态机，导航控件直接调用视图控制器。
// 约束：非并发安全，事件须由调用方串行投递；图集未就绪时所有交互都是空操作；交互路径不返回错误。
package surface

import (
	"math"

	"been-map/internal/catalog"
	"been-map/internal/identity"
	"been-map/internal/interaction"
	"been-map/internal/projection"
	"been-map/internal/tooltip"
	"been-map/internal/viewport"
	"been-map/internal/visited"
)

// Options：挂载参数
type Options struct {
	Projector projection.Projector
	Limits    viewport.Limits
	Catalog   *catalog.Catalog
}

func DefaultOptions() Options {
	return Options{
		Projector: projection.Default(),
		Limits:    viewport.DefaultLimits(),
		Catalog:   catalog.Default(),
	}
}

// Result：一次交互后的状态与交给宿主的 toggleVisited 意图
type Result struct {
	State   interaction.State  `json:"state"`
	View    viewport.Transform `json:"-"`
	Intents []identity.Code    `json:"intents"`
	Tooltip tooltip.State      `json:"tooltip"`
}

type Surface struct {
	atlases AtlasSource
	proj    projection.Projector
	ctrl    *viewport.Controller
	catalog *catalog.Catalog

	view    viewport.Transform
	machine *interaction.Machine
	tip     *tooltip.Positioner
	visited visited.Set

	pointer viewport.Point
	under   int
	seen    *Atlas
}

func New(atlases AtlasSource, opts Options) *Surface {
	if opts.Projector == (projection.Projector{}) {
		opts.Projector = projection.Default()
	}
	ctrl := viewport.NewController(opts.Limits, opts.Projector)
	return &Surface{
		atlases: atlases,
		proj:    opts.Projector,
		ctrl:    ctrl,
		catalog: opts.Catalog,
		view:    ctrl.Reset(),
		machine: interaction.NewMachine(),
		tip:     tooltip.NewPositioner(opts.Projector.Width, opts.Projector.Height),
		visited: visited.NewSet(),
		under:   -1,
	}
}

func (s *Surface) View() viewport.Transform { return s.view }

func (s *Surface) State() interaction.State { return s.machine.State() }

func (s *Surface) Projector() projection.Projector { return s.proj }

// SetVisited：宿主在每次渲染前传入最新快照
func (s *Surface) SetVisited(set visited.Set) {
	s.visited = set
	s.refreshTooltip()
}

// ready：返回可用图集；图集被替换（重载）时清空交互状态并复位视图
func (s *Surface) ready() (*Atlas, bool) {
	a, st, _ := s.atlases.Current()
	if st != Ready || a == nil {
		return nil, false
	}
	if a != s.seen {
		if s.seen != nil {
			s.machine.Reset()
			s.view = s.ctrl.Reset()
		}
		s.seen = a
		s.under = -1
	}
	return a, true
}

func (s *Surface) result(intents []identity.Code) Result {
	return Result{State: s.machine.State(), View: s.view, Intents: intents, Tooltip: s.tip.Last()}
}

// PointerEnter：指针进入第 index 个要素
func (s *Surface) PointerEnter(index int) Result {
	a, ok := s.ready()
	if !ok {
		return s.result(nil)
	}
	s.under = index
	code, resolvable := a.Code(index)
	s.machine.Dispatch(interaction.PointerEnter{Code: code, Resolvable: resolvable})
	s.refreshTooltip()
	return s.result(nil)
}

// PointerLeave：指针离开当前要素
func (s *Surface) PointerLeave() Result {
	if _, ok := s.ready(); !ok {
		return s.result(nil)
	}
	s.under = -1
	s.machine.Dispatch(interaction.PointerLeave{})
	s.refreshTooltip()
	return s.result(nil)
}

// Click：点击第 index 个要素，执行视图效果并收集意图
func (s *Surface) Click(index int) Result {
	a, ok := s.ready()
	if !ok {
		return s.result(nil)
	}
	code, resolvable := a.Code(index)
	_, effects := s.machine.Dispatch(interaction.Click{Code: code, Resolvable: resolvable})
	intents := s.apply(a, effects)
	s.refreshTooltip()
	return s.result(intents)
}

func (s *Surface) apply(a *Atlas, effects []interaction.Effect) []identity.Code {
	var intents []identity.Code
	for _, e := range effects {
		switch e := e.(type) {
		case interaction.Recenter:
			if c, ok := a.Centroid(e.Code); ok {
				s.view = s.ctrl.Focus(c)
			}
		case interaction.ResetView:
			s.view = s.ctrl.Reset()
		case interaction.ToggleVisited:
			intents = append(intents, e.Code)
		}
	}
	return intents
}

// FeatureAt：屏幕点下方的要素下标；点不在投影范围内（纬度截断或经度回绕）时返回 -1
func (s *Surface) FeatureAt(p viewport.Point) int {
	a, ok := s.ready()
	if !ok {
		return -1
	}
	g := s.proj.Unproject(p, s.view)
	back := s.proj.Project(g, s.view)
	if math.Abs(back.X-p.X) > 0.5 || math.Abs(back.Y-p.Y) > 0.5 {
		return -1
	}
	return a.HitTest(g)
}

// PointerMove：更新指针位置；指针下要素变化时合成 leave/enter
func (s *Surface) PointerMove(p viewport.Point) Result {
	if _, ok := s.ready(); !ok {
		return s.result(nil)
	}
	s.pointer = p
	idx := s.FeatureAt(p)
	if idx != s.under {
		if s.under >= 0 {
			s.PointerLeave()
		}
		if idx >= 0 {
			s.PointerEnter(idx)
		}
	}
	s.refreshTooltip()
	return s.result(nil)
}

// ClickAt：屏幕点命中后点击；未命中为空操作
func (s *Surface) ClickAt(p viewport.Point) Result {
	s.PointerMove(p)
	if s.under < 0 {
		return s.result(nil)
	}
	return s.Click(s.under)
}

// Drag：拖动平移（绕过状态机）
func (s *Surface) Drag(dx, dy float64) Result {
	if _, ok := s.ready(); ok {
		s.view = s.ctrl.Pan(s.view, dx, dy)
	}
	return s.result(nil)
}

// Wheel：滚轮缩放；anchor 为 nil 时以视图中心为锚点
func (s *Surface) Wheel(factor float64, anchor *viewport.Point) Result {
	if _, ok := s.ready(); ok {
		s.view = s.ctrl.ZoomBy(s.view, factor, anchor)
	}
	return s.result(nil)
}

func (s *Surface) ZoomIn() Result {
	if _, ok := s.ready(); ok {
		s.view = s.ctrl.ZoomIn(s.view)
	}
	return s.result(nil)
}

func (s *Surface) ZoomOut() Result {
	if _, ok := s.ready(); ok {
		s.view = s.ctrl.ZoomOut(s.view)
	}
	return s.result(nil)
}

// ResetView：复位按钮；不改变选中状态
func (s *Surface) ResetView() Result {
	if _, ok := s.ready(); ok {
		s.view = s.ctrl.Reset()
	}
	return s.result(nil)
}

// content：当前悬停要素的提示内容
func (s *Surface) content() tooltip.Content {
	st := s.machine.State()
	if st.Kind != interaction.Hovering {
		return tooltip.Content{}
	}
	// 名称回退取自悬停代码对应的记录，而不是指针下的要素（可能是不可解析要素）
	name := ""
	if a := s.seen; a != nil {
		if idx := a.Table.Records(st.Code); len(idx) > 0 {
			name = a.Records[idx[0]].Name
		}
	}
	c := tooltip.Content{Label: s.catalog.Label(st.Code, name), Visited: s.visited.Has(st.Code)}
	if ct, ok := s.catalog.Lookup(st.Code); ok {
		c.Continent = ct.Continent
	}
	return c
}

func (s *Surface) refreshTooltip() {
	s.tip.Position(s.pointer, s.content(), s.machine.State())
}
