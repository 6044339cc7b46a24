package surface

import (
	"been-map/internal/identity"
	"been-map/internal/interaction"
	"been-map/internal/tooltip"
	"been-map/internal/viewport"
	"been-map/internal/visited"
)

// Feature：一帧中的单个要素
type Feature struct {
	Index      int           `json:"index"`
	ID         string        `json:"id,omitempty"`
	Name       string        `json:"name"`
	Code       identity.Code `json:"code,omitempty"`
	Resolvable bool          `json:"resolvable"`
	Visited    bool          `json:"visited"`
	Path       string        `json:"path"`
	Style      Style         `json:"style"`
}

// Legend：图例计数（已访问 / 目录中未访问）
type Legend struct {
	Visited    int `json:"visited"`
	NotVisited int `json:"not_visited"`
	Catalog    int `json:"catalog"`
}

// Frame：与渲染技术无关的一帧描述
type Frame struct {
	Status   Status            `json:"status"`
	Error    string            `json:"error,omitempty"`
	Width    float64           `json:"width"`
	Height   float64           `json:"height"`
	View     ViewJSON          `json:"view"`
	State    interaction.State `json:"state"`
	Features []Feature         `json:"features"`
	Tooltip  tooltip.State     `json:"tooltip"`
	Legend   Legend            `json:"legend"`
	Controls ZoomControls      `json:"controls"`
	Limits   viewport.Limits   `json:"-"`
}

// ViewJSON：视图变换的传输形式
type ViewJSON struct {
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
	Zoom float64 `json:"zoom"`
}

// ZoomControls：缩放按钮是否可用
type ZoomControls struct {
	CanZoomIn  bool `json:"can_zoom_in"`
	CanZoomOut bool `json:"can_zoom_out"`
}

func viewJSON(t viewport.Transform) ViewJSON {
	return ViewJSON{Lon: t.Center[0], Lat: t.Center[1], Zoom: t.Zoom}
}

// Frame：以传入的已访问快照构建当前帧
func (s *Surface) Frame(set visited.Set) Frame {
	s.ready()
	s.SetVisited(set)
	limits := s.ctrl.Limits()
	f := Frame{
		Width:   s.proj.Width,
		Height:  s.proj.Height,
		View:    viewJSON(s.view),
		State:   s.machine.State(),
		Tooltip: s.tip.Last(),
		Legend:  s.legend(set),
		Limits:  limits,
	}
	f.Controls = ZoomControls{
		CanZoomIn:  s.view.Zoom < limits.ZoomMax,
		CanZoomOut: s.view.Zoom > limits.ZoomMin,
	}
	a, st, err := s.atlases.Current()
	f.Status = st
	if err != nil {
		f.Error = err.Error()
	}
	if st != Ready || a == nil {
		f.Tooltip = tooltip.State{}
		return f
	}
	state := s.machine.State()
	f.Features = make([]Feature, 0, a.Len())
	for i, rec := range a.Records {
		code, ok := a.Code(i)
		v := ok && set.Has(code)
		f.Features = append(f.Features, Feature{
			Index:      i,
			ID:         rec.ID,
			Name:       s.catalog.Label(code, rec.Name),
			Code:       code,
			Resolvable: ok,
			Visited:    v,
			Path:       s.proj.Path(rec.Shape, s.view),
			Style: StyleFor(StyleInput{
				Visited:    v,
				Hovered:    ok && state.Is(interaction.Hovering, code),
				Selected:   ok && state.Is(interaction.Selected, code),
				Resolvable: ok,
			}),
		})
	}
	return f
}

func (s *Surface) legend(set visited.Set) Legend {
	l := Legend{Visited: set.Len(), Catalog: s.catalog.Len()}
	inCatalog := 0
	for _, c := range set.Codes() {
		if _, ok := s.catalog.Lookup(c); ok {
			inCatalog++
		}
	}
	l.NotVisited = l.Catalog - inCatalog
	return l
}
