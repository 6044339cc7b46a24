// Package geomtest holds a small synthetic world shared by package tests.
//
// Layout (lon/lat squares): France (0..10, 40..50) plus an overseas square
// (-54..-52, 3..5), Germany (10..20, 40..50), Japan (130..140, 30..40),
// Kosovo without id (20..25, 40..45), Somaliland with id "-99" (-40..-30, 0..10).
package geomtest

import (
	"testing"

	"been-map/internal/geometry"
)

// Record indexes in source order.
const (
	France = iota
	Germany
	Japan
	Kosovo
	Somaliland
)

const WorldTopoJSON = `{
  "type": "Topology",
  "objects": {
    "countries": {
      "type": "GeometryCollection",
      "geometries": [
        {"type": "MultiPolygon", "id": "250", "properties": {"name": "France"}, "arcs": [[[0]], [[1]]]},
        {"type": "Polygon", "id": "276", "properties": {"name": "Germany"}, "arcs": [[2]]},
        {"type": "Polygon", "id": "392", "properties": {"name": "Japan"}, "arcs": [[3]]},
        {"type": "Polygon", "properties": {"name": "Kosovo"}, "arcs": [[4]]},
        {"type": "Polygon", "id": "-99", "properties": {"name": "Somaliland"}, "arcs": [[5]]},
        {"type": "Point", "id": "999", "coordinates": [0, 0]}
      ]
    },
    "land": {"type": "Polygon", "arcs": [[0]]}
  },
  "arcs": [
    [[0, 40], [10, 40], [10, 50], [0, 50], [0, 40]],
    [[-54, 3], [-52, 3], [-52, 5], [-54, 5], [-54, 3]],
    [[10, 40], [20, 40], [20, 50], [10, 50], [10, 40]],
    [[130, 30], [140, 30], [140, 40], [130, 40], [130, 30]],
    [[20, 40], [25, 40], [25, 45], [20, 45], [20, 40]],
    [[-40, 0], [-30, 0], [-30, 10], [-40, 10], [-40, 0]]
  ]
}`

const WorldGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"NAME": "France", "ISO_A2": "FR", "ISO_N3": "250"},
     "geometry": {"type": "MultiPolygon", "coordinates": [
       [[[0, 40], [10, 40], [10, 50], [0, 50], [0, 40]]],
       [[[-54, 3], [-52, 3], [-52, 5], [-54, 5], [-54, 3]]]]}},
    {"type": "Feature", "properties": {"NAME": "Germany", "ISO_A2": "DE", "ISO_N3": "276"},
     "geometry": {"type": "Polygon", "coordinates": [[[10, 40], [20, 40], [20, 50], [10, 50], [10, 40]]]}},
    {"type": "Feature", "properties": {"NAME": "Japan", "ISO_A2": "jp", "ISO_N3": "392"},
     "geometry": {"type": "Polygon", "coordinates": [[[130, 30], [140, 30], [140, 40], [130, 40], [130, 30]]]}},
    {"type": "Feature", "properties": {"NAME": "Kosovo", "ISO_A2": "-99", "ISO_N3": "-99"},
     "geometry": {"type": "Polygon", "coordinates": [[[20, 40], [25, 40], [25, 45], [20, 45], [20, 40]]]}},
    {"type": "Feature", "properties": {"NAME": "Somaliland", "ISO_A2": "-99", "ISO_N3": "-99"},
     "geometry": {"type": "Polygon", "coordinates": [[[-40, 0], [-30, 0], [-30, 10], [-40, 10], [-40, 0]]]}},
    {"type": "Feature", "properties": {"NAME": "Null Island"},
     "geometry": {"type": "Point", "coordinates": [0, 0]}}
  ]
}`

// Records decodes WorldTopoJSON with the default options.
func Records(tb testing.TB) []geometry.Record {
	tb.Helper()
	recs, err := geometry.Decode([]byte(WorldTopoJSON), geometry.DefaultDecodeOptions())
	if err != nil {
		tb.Fatalf("decode fixture: %v", err)
	}
	return recs
}
