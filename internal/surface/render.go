package surface

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strconv"
)

// RenderSVG：把一帧写成独立的 SVG 文档（背景、要素、图例、缩放控件、提示框）
// 约束：图集未就绪时只输出占位文字；要素按源顺序绘制，与命中判定的上下层一致
func RenderSVG(w io.Writer, f Frame) error {
	bw := bufio.NewWriter(w)
	p := &svgWriter{w: bw}
	width, height := f.Width, f.Height

	p.printf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s" data-status="%s">`+"\n",
		n(width), n(height), n(width), n(height), f.Status)
	p.printf(`<rect width="100%%" height="100%%" fill="%s"/>`+"\n", background)

	switch f.Status {
	case Ready:
		p.features(f)
		p.legend(f)
		p.controls(f)
		p.tooltip(f)
	case Failed:
		p.placeholder(width, height, "Map unavailable", f.Error)
	default:
		p.placeholder(width, height, "Loading map…", "")
	}
	p.printf("</svg>\n")
	if p.err != nil {
		return p.err
	}
	return bw.Flush()
}

type svgWriter struct {
	w   io.Writer
	err error
}

func (p *svgWriter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *svgWriter) features(f Frame) {
	p.printf(`<g class="countries">` + "\n")
	for _, ft := range f.Features {
		cursor := "default"
		if ft.Style.Interactive {
			cursor = "pointer"
		}
		p.printf(`<path d="%s" fill="%s" stroke="%s" stroke-width="%s" data-index="%d"`,
			ft.Path, ft.Style.Fill, ft.Style.Stroke, n(ft.Style.StrokeWidth), ft.Index)
		if ft.Code != "" {
			p.printf(` data-code="%s"`, esc(string(ft.Code)))
		}
		if ft.Visited {
			p.printf(` data-visited="true"`)
		}
		p.printf(` style="cursor:%s"><title>%s</title></path>`+"\n", cursor, esc(ft.Name))
	}
	p.printf("</g>\n")
}

func (p *svgWriter) legend(f Frame) {
	y := f.Height - 44
	p.printf(`<g class="legend" transform="translate(12,%s)" font-family="sans-serif" font-size="12">`+"\n", n(y))
	p.printf(`<rect width="150" height="36" rx="4" fill="#ffffff" fill-opacity="0.9"/>` + "\n")
	p.printf(`<rect x="8" y="6" width="10" height="10" fill="%s"/><text x="24" y="15">Visited (%d)</text>`+"\n",
		fillVisited, f.Legend.Visited)
	p.printf(`<rect x="8" y="20" width="10" height="10" fill="%s"/><text x="24" y="29">Not visited (%d)</text>`+"\n",
		fillDefault, f.Legend.NotVisited)
	p.printf("</g>\n")
}

func (p *svgWriter) controls(f Frame) {
	x := f.Width - 44
	p.printf(`<g class="controls" transform="translate(%s,12)" font-family="sans-serif" font-size="16" text-anchor="middle">`+"\n", n(x))
	buttons := []struct {
		action, label string
		enabled       bool
	}{
		{"zoom_in", "+", f.Controls.CanZoomIn},
		{"zoom_out", "−", f.Controls.CanZoomOut},
		{"reset", "⟲", true},
	}
	for i, b := range buttons {
		fill := "#ffffff"
		if !b.enabled {
			fill = fillUnresolvable
		}
		y := i * 36
		p.printf(`<g data-action="%s"><rect y="%d" width="32" height="32" rx="4" fill="%s" stroke="%s"/><text x="16" y="%d">%s</text></g>`+"\n",
			b.action, y, fill, strokeDefault, y+21, b.label)
	}
	p.printf("</g>\n")
}

func (p *svgWriter) tooltip(f Frame) {
	t := f.Tooltip
	if !t.Visible {
		return
	}
	p.printf(`<g class="tooltip" transform="translate(%s,%s)" font-family="sans-serif" font-size="12">`+"\n",
		n(t.Anchor.X), n(t.Anchor.Y))
	p.printf(`<rect width="%s" height="%s" rx="4" fill="#111827" fill-opacity="0.9"/>`+"\n", n(t.Size.W), n(t.Size.H))
	for i, line := range t.Lines() {
		color := "#ffffff"
		if i > 0 {
			color = "#d1d5db"
		}
		p.printf(`<text x="8" y="%d" fill="%s">%s</text>`+"\n", 8+13+i*18, color, esc(line))
	}
	p.printf("</g>\n")
}

func (p *svgWriter) placeholder(w, h float64, title, detail string) {
	p.printf(`<text x="%s" y="%s" text-anchor="middle" font-family="sans-serif" font-size="16" fill="#6b7280">%s</text>`+"\n",
		n(w/2), n(h/2), esc(title))
	if detail != "" {
		p.printf(`<text x="%s" y="%s" text-anchor="middle" font-family="sans-serif" font-size="11" fill="#9ca3af">%s</text>`+"\n",
			n(w/2), n(h/2+20), esc(detail))
	}
}

func n(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func esc(s string) string { return html.EscapeString(s) }
