// 包 viewport：地图平移/缩放状态（视图变换）
// 背景：每个挂载的地图持有一个 Transform；所有更新都是 旧值 → 新值 的纯变换。
// 约束：输出始终满足 zoom ∈ [ZoomMin, ZoomMax]、经度 ∈ [-180,180]、纬度 ∈ [-90,90]；越界输入被夹取，不返回错误。
package viewport

import (
	"math"

	"github.com/paulmach/orb"
)

// Transform：视图中心（经度, 纬度）与缩放倍率
type Transform struct {
	Center orb.Point
	Zoom   float64
}

// Point：屏幕坐标（像素，原点左上角）
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Projector：控制器在屏幕与地理坐标间换算所需的投影
type Projector interface {
	Project(g orb.Point, t Transform) Point
	Unproject(p Point, t Transform) orb.Point
}

// Limits：缩放边界与默认视图
type Limits struct {
	ZoomMin       float64
	ZoomMax       float64
	FocusZoom     float64
	ButtonFactor  float64
	DefaultCenter orb.Point
}

func DefaultLimits() Limits {
	return Limits{
		ZoomMin:      0.5,
		ZoomMax:      8,
		FocusZoom:    2,
		ButtonFactor: 1.5,
	}
}

// sanitize：修正不自洽的配置（min > max、非正倍率）
func (l Limits) sanitize() Limits {
	d := DefaultLimits()
	if !(l.ZoomMin > 0) {
		l.ZoomMin = d.ZoomMin
	}
	if !(l.ZoomMax >= l.ZoomMin) || math.IsInf(l.ZoomMax, 1) {
		l.ZoomMax = math.Max(d.ZoomMax, l.ZoomMin)
	}
	if !(l.ButtonFactor > 1) {
		l.ButtonFactor = d.ButtonFactor
	}
	if math.IsNaN(l.FocusZoom) || l.FocusZoom <= 0 {
		l.FocusZoom = d.FocusZoom
	}
	l.FocusZoom = clamp(l.FocusZoom, l.ZoomMin, l.ZoomMax)
	l.DefaultCenter = normalizeCenter(l.DefaultCenter, orb.Point{})
	return l
}

// Controller：视图变换控制器
type Controller struct {
	limits Limits
	proj   Projector
}

func NewController(limits Limits, proj Projector) *Controller {
	return &Controller{limits: limits.sanitize(), proj: proj}
}

func (c *Controller) Limits() Limits { return c.limits }

// Reset：默认视图 {DefaultCenter, 1}
func (c *Controller) Reset() Transform {
	return Transform{Center: c.limits.DefaultCenter, Zoom: c.clampZoom(1)}
}

// Normalize：把任意输入夹取到不变量范围内；NaN 中心回到默认中心
func (c *Controller) Normalize(t Transform) Transform {
	z := t.Zoom
	if math.IsNaN(z) {
		z = 1
	}
	return Transform{
		Center: normalizeCenter(t.Center, c.limits.DefaultCenter),
		Zoom:   c.clampZoom(z),
	}
}

// Pan：按屏幕像素位移拖动，地图跟随指针移动
func (c *Controller) Pan(t Transform, dx, dy float64) Transform {
	t = c.Normalize(t)
	if math.IsNaN(dx) || math.IsNaN(dy) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return t
	}
	mid := c.proj.Project(t.Center, t)
	t.Center = c.proj.Unproject(Point{X: mid.X - dx, Y: mid.Y - dy}, t)
	return c.Normalize(t)
}

// ZoomBy：缩放倍率乘以 factor；anchor 非 nil 时保持其下方的地理点不动
func (c *Controller) ZoomBy(t Transform, factor float64, anchor *Point) Transform {
	t = c.Normalize(t)
	var z float64
	switch {
	case math.IsNaN(factor):
		return t
	case factor <= 0:
		z = c.limits.ZoomMin
	case math.IsInf(factor, 1):
		z = c.limits.ZoomMax
	default:
		z = c.clampZoom(t.Zoom * factor)
	}
	if anchor == nil || c.proj == nil || z == t.Zoom {
		t.Zoom = z
		return t
	}
	g := c.proj.Unproject(*anchor, t)
	next := Transform{Center: t.Center, Zoom: z}
	mid := c.proj.Project(next.Center, next)
	moved := c.proj.Project(g, next)
	next.Center = c.proj.Unproject(Point{X: mid.X + moved.X - anchor.X, Y: mid.Y + moved.Y - anchor.Y}, next)
	return c.Normalize(next)
}

// ZoomIn / ZoomOut：缩放按钮，步长 ButtonFactor，以视图中心为锚点
func (c *Controller) ZoomIn(t Transform) Transform {
	return c.ZoomBy(t, c.limits.ButtonFactor, nil)
}

func (c *Controller) ZoomOut(t Transform) Transform {
	return c.ZoomBy(t, 1/c.limits.ButtonFactor, nil)
}

// Recenter：移到目标点并设置缩放
func (c *Controller) Recenter(target orb.Point, zoom float64) Transform {
	return c.Normalize(Transform{Center: target, Zoom: zoom})
}

// Focus：选中国家时的聚焦视图
func (c *Controller) Focus(target orb.Point) Transform {
	return c.Recenter(target, c.limits.FocusZoom)
}

func (c *Controller) clampZoom(z float64) float64 {
	return clamp(z, c.limits.ZoomMin, c.limits.ZoomMax)
}

func normalizeCenter(p orb.Point, fallback orb.Point) orb.Point {
	lon, lat := p[0], p[1]
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		lon = fallback[0]
	}
	if math.IsNaN(lat) {
		lat = fallback[1]
	}
	return orb.Point{WrapLon(lon), clamp(lat, -90, 90)}
}

// WrapLon：经度回绕到 [-180, 180]
func WrapLon(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
