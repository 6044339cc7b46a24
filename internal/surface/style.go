package surface

// StyleInput：样式函数的全部输入
type StyleInput struct {
	Visited    bool
	Hovered    bool
	Selected   bool
	Resolvable bool
}

// Style：单个要素的填充与描边
type Style struct {
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
	Interactive bool    `json:"interactive"`
}

const (
	fillVisited         = "#10b981"
	fillDefault         = "#e5e7eb"
	fillUnresolvable    = "#f3f4f6"
	fillHover           = "#3b82f6"
	fillHoverVisited    = "#059669"
	fillSelected        = "#2563eb"
	fillSelectedVisited = "#047857"

	strokeDefault  = "#d1d5db"
	strokeHover    = "#374151"
	strokeSelected = "#111827"

	background = "#f9fafb"
)

// StyleFor：确定性样式函数
// 填充优先级 选中 > 悬停 > 已访问 > 默认 > 不可解析；描边宽度 选中 > 悬停 > 默认。
// 不可解析要素固定为中性样式且不可交互。
func StyleFor(in StyleInput) Style {
	if !in.Resolvable {
		return Style{Fill: fillUnresolvable, Stroke: strokeDefault, StrokeWidth: 0.5}
	}
	st := Style{Fill: fillDefault, Stroke: strokeDefault, StrokeWidth: 0.5, Interactive: true}
	switch {
	case in.Selected:
		st.Fill, st.Stroke, st.StrokeWidth = fillSelected, strokeSelected, 1.5
		if in.Visited {
			st.Fill = fillSelectedVisited
		}
	case in.Hovered:
		st.Fill, st.Stroke, st.StrokeWidth = fillHover, strokeHover, 1
		if in.Visited {
			st.Fill = fillHoverVisited
		}
	case in.Visited:
		st.Fill = fillVisited
	}
	return st
}
