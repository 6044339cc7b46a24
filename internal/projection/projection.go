// 包 projection：Web Mercator 投影（地理坐标 ↔ 屏幕坐标）与 SVG 路径生成
package projection

import (
	"math"
	"strconv"
	"strings"

	"been-map/internal/viewport"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	earthRadius = 6378137.0
	// MaxLat：Web Mercator 的纬度上限
	MaxLat = 85.05112878
)

// 文档注释：投影器
// 背景：屏幕坐标 = 视图中心 + (M(g) − M(center))·(Scale/R)·zoom，y 轴翻转；M 为球面墨卡托（米）。
// 约束：Scale 与常见 d3 geoMercator 的 scale 同义（zoom=1 时 1 弧度 = Scale 像素）；纯函数，可并发使用。
type Projector struct {
	Width  float64
	Height float64
	Scale  float64
}

func Default() Projector {
	return Projector{Width: 800, Height: 400, Scale: 120}
}

// New：非正参数回退到默认值
func New(width, height, scale float64) Projector {
	d := Default()
	if width > 0 {
		d.Width = width
	}
	if height > 0 {
		d.Height = height
	}
	if scale > 0 {
		d.Scale = scale
	}
	return d
}

// Mid：视口中心的屏幕坐标
func (p Projector) Mid() viewport.Point {
	return viewport.Point{X: p.Width / 2, Y: p.Height / 2}
}

func (p Projector) k(t viewport.Transform) float64 {
	z := t.Zoom
	if !(z > 0) {
		z = 1
	}
	return p.Scale / earthRadius * z
}

func toMercator(g orb.Point) orb.Point {
	return project.WGS84.ToMercator(orb.Point{g[0], clampLat(g[1])})
}

// Project：地理点 → 屏幕点
func (p Projector) Project(g orb.Point, t viewport.Transform) viewport.Point {
	k := p.k(t)
	m := toMercator(g)
	c := toMercator(t.Center)
	mid := p.Mid()
	return viewport.Point{
		X: mid.X + (m[0]-c[0])*k,
		Y: mid.Y - (m[1]-c[1])*k,
	}
}

// Unproject：屏幕点 → 地理点；经度回绕，纬度限制在 ±MaxLat
func (p Projector) Unproject(s viewport.Point, t viewport.Transform) orb.Point {
	k := p.k(t)
	c := toMercator(t.Center)
	mid := p.Mid()
	m := orb.Point{
		c[0] + (s.X-mid.X)/k,
		c[1] - (s.Y-mid.Y)/k,
	}
	g := project.Mercator.ToWGS84(m)
	return orb.Point{viewport.WrapLon(g[0]), clampLat(g[1])}
}

// Path：多边形集合 → SVG path 数据（每个环 M…L…Z，保留两位小数）
func (p Projector) Path(shape orb.MultiPolygon, t viewport.Transform) string {
	var b strings.Builder
	for _, poly := range shape {
		for _, ring := range poly {
			if len(ring) < 3 {
				continue
			}
			for i, pt := range ring {
				if i == len(ring)-1 && len(ring) > 1 && pt.Equal(ring[0]) {
					break
				}
				s := p.Project(pt, t)
				if i == 0 {
					b.WriteByte('M')
				} else {
					b.WriteByte('L')
				}
				b.WriteString(num(s.X))
				b.WriteByte(',')
				b.WriteString(num(s.Y))
			}
			b.WriteByte('Z')
		}
	}
	return b.String()
}

func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clampLat(lat float64) float64 {
	return math.Max(-MaxLat, math.Min(MaxLat, lat))
}
