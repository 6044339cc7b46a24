package geometry

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/paulmach/orb"
)

// 文档注释：TopoJSON 解码（world-atlas 等共享弧段格式）
// 背景：拓扑资源以量化、差分编码的弧段表达国界；解码后还原为与 GeoJSON 相同的记录结构。
// 约束：仅处理 Polygon/MultiPolygon 及其 GeometryCollection；弧段下标 ~i 表示反向引用第 i 条弧。
type topology struct {
	Type      string                  `json:"type"`
	Transform *topoTransform          `json:"transform"`
	Objects   map[string]topoGeometry `json:"objects"`
	Arcs      [][][]float64           `json:"arcs"`
}

type topoTransform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type topoGeometry struct {
	Type       string          `json:"type"`
	ID         any             `json:"id"`
	Properties map[string]any  `json:"properties"`
	Arcs       json.RawMessage `json:"arcs"`
	Geometries []topoGeometry  `json:"geometries"`
}

func decodeTopoJSON(data []byte, opts DecodeOptions) ([]Record, error) {
	var topo topology
	if err := json.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("decode topojson: %w", err)
	}
	obj, err := pickObject(topo, opts.Object)
	if err != nil {
		return nil, err
	}
	arcs := decodeArcs(topo)

	geoms := obj.Geometries
	if obj.Type != "GeometryCollection" {
		geoms = []topoGeometry{obj}
	}
	var recs []Record
	for _, g := range geoms {
		shape, ok, err := topoShape(g, arcs)
		if err != nil {
			return nil, fmt.Errorf("decode topojson geometry %v: %w", g.ID, err)
		}
		if !ok {
			continue
		}
		if rec, ok := newRecord(len(recs), g.ID, g.Properties, shape, opts); ok {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

// pickObject：按名称选择对象；未配置名称且只有一个对象时直接使用
func pickObject(topo topology, name string) (topoGeometry, error) {
	if name != "" {
		if obj, ok := topo.Objects[name]; ok {
			return obj, nil
		}
		return topoGeometry{}, fmt.Errorf("%w: %q", ErrObjectNotFound, name)
	}
	if len(topo.Objects) == 1 {
		for _, obj := range topo.Objects {
			return obj, nil
		}
	}
	names := make([]string, 0, len(topo.Objects))
	for k := range topo.Objects {
		names = append(names, k)
	}
	sort.Strings(names)
	return topoGeometry{}, fmt.Errorf("%w: no object name configured, have %v", ErrObjectNotFound, names)
}

// decodeArcs：还原差分编码与量化变换，得到绝对经纬度
func decodeArcs(topo topology) [][]orb.Point {
	out := make([][]orb.Point, len(topo.Arcs))
	for i, arc := range topo.Arcs {
		pts := make([]orb.Point, 0, len(arc))
		var x, y float64
		for _, p := range arc {
			if len(p) < 2 {
				continue
			}
			if topo.Transform == nil {
				pts = append(pts, orb.Point{p[0], p[1]})
				continue
			}
			x += p[0]
			y += p[1]
			pts = append(pts, orb.Point{
				x*topo.Transform.Scale[0] + topo.Transform.Translate[0],
				y*topo.Transform.Scale[1] + topo.Transform.Translate[1],
			})
		}
		out[i] = pts
	}
	return out
}

func topoShape(g topoGeometry, arcs [][]orb.Point) (orb.Geometry, bool, error) {
	switch g.Type {
	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(g.Arcs, &rings); err != nil {
			return nil, false, err
		}
		poly, err := stitchPolygon(rings, arcs)
		if err != nil {
			return nil, false, err
		}
		return poly, true, nil
	case "MultiPolygon":
		var polys [][][]int
		if err := json.Unmarshal(g.Arcs, &polys); err != nil {
			return nil, false, err
		}
		mp := make(orb.MultiPolygon, 0, len(polys))
		for _, rings := range polys {
			poly, err := stitchPolygon(rings, arcs)
			if err != nil {
				return nil, false, err
			}
			mp = append(mp, poly)
		}
		return mp, true, nil
	}
	return nil, false, nil
}

func stitchPolygon(rings [][]int, arcs [][]orb.Point) (orb.Polygon, error) {
	poly := make(orb.Polygon, 0, len(rings))
	for _, idx := range rings {
		ring, err := stitchRing(idx, arcs)
		if err != nil {
			return nil, err
		}
		poly = append(poly, ring)
	}
	return poly, nil
}

// stitchRing：首尾相接的弧段共享端点，拼接时跳过后续弧段的首点
func stitchRing(idx []int, arcs [][]orb.Point) (orb.Ring, error) {
	var ring orb.Ring
	for n, i := range idx {
		rev := i < 0
		if rev {
			i = ^i
		}
		if i >= len(arcs) {
			return nil, fmt.Errorf("arc index %d out of range", i)
		}
		arc := arcs[i]
		for k := range arc {
			p := arc[k]
			if rev {
				p = arc[len(arc)-1-k]
			}
			if n > 0 && k == 0 {
				continue
			}
			ring = append(ring, p)
		}
	}
	return ring, nil
}
