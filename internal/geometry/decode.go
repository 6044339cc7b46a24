package geometry

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Decode：识别 TopoJSON / GeoJSON 并转换为记录列表
// 约束：输出顺序与源一致；非多边形要素被跳过，不占用 Index
func Decode(data []byte, opts DecodeOptions) ([]Record, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode topology header: %w", err)
	}
	var recs []Record
	var err error
	switch strings.ToLower(head.Type) {
	case "topology":
		recs, err = decodeTopoJSON(data, opts)
	case "featurecollection":
		recs, err = decodeFeatureCollection(data, opts)
	case "feature":
		recs, err = decodeFeature(data, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, head.Type)
	}
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrEmptyTopology
	}
	return recs, nil
}

func decodeFeatureCollection(data []byte, opts DecodeOptions) ([]Record, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	var recs []Record
	for _, f := range fc.Features {
		if rec, ok := newRecord(len(recs), f.ID, f.Properties, f.Geometry, opts); ok {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func decodeFeature(data []byte, opts DecodeOptions) ([]Record, error) {
	f, err := geojson.UnmarshalFeature(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson feature: %w", err)
	}
	if rec, ok := newRecord(0, f.ID, f.Properties, f.Geometry, opts); ok {
		return []Record{rec}, nil
	}
	return nil, nil
}

// newRecord：从身份字段与几何构造记录；几何非多边形时返回 false
func newRecord(index int, id any, props map[string]any, g orb.Geometry, opts DecodeOptions) (Record, bool) {
	var mp orb.MultiPolygon
	switch v := g.(type) {
	case orb.Polygon:
		mp = orb.MultiPolygon{v}
	case orb.MultiPolygon:
		mp = v
	default:
		return Record{}, false
	}
	if len(mp) == 0 {
		return Record{}, false
	}
	rec := Record{
		Index: index,
		ID:    idString(id),
		Shape: mp,
		Bound: mp.Bound(),
	}
	for _, key := range opts.NameProperties {
		if s := propString(props, key); s != "" {
			rec.Name = s
			break
		}
	}
	if opts.AlphaProperty != "" {
		rec.Alpha2 = propString(props, opts.AlphaProperty)
	}
	numeric := rec.ID
	if opts.NumericProperty != "" {
		numeric = propString(props, opts.NumericProperty)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(numeric)); err == nil && n > 0 {
		rec.Numeric = n
		rec.HasNumeric = true
	}
	return rec, true
}

func idString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

func propString(props map[string]any, key string) string {
	if props == nil {
		return ""
	}
	return strings.TrimSpace(idString(props[key]))
}
