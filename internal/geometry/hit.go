package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// 文档注释：命中判定（包围盒过滤 → 点入多边形）
// 约束：坐标为经纬度；多条记录重叠时后绘制者在上层，因此取最后一个命中；未命中返回 -1。
func HitTest(recs []Record, pt orb.Point) int {
	hit := -1
	for i := range recs {
		r := &recs[i]
		if !r.Bound.Contains(pt) {
			continue
		}
		if planar.MultiPolygonContains(r.Shape, pt) {
			hit = i
		}
	}
	return hit
}

// Centroid：记录最大面积多边形的面积质心
// 约束：海外领地不参与计算，聚焦点落在本土；退化形状回退到包围盒中心
func Centroid(r Record) orb.Point {
	var best orb.Polygon
	bestArea := -1.0
	for _, poly := range r.Shape {
		a := math.Abs(planar.Area(poly))
		if a > bestArea {
			best, bestArea = poly, a
		}
	}
	if best == nil {
		return r.Bound.Center()
	}
	c, area := planar.CentroidArea(best)
	if area == 0 || math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		return best.Bound().Center()
	}
	return c
}
