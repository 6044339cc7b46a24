package geometry_test

import (
	"testing"

	"been-map/internal/geometry"
	"been-map/internal/geometry/geomtest"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTopoJSON(t *testing.T) {
	recs, err := geometry.Decode([]byte(geomtest.WorldTopoJSON), geometry.DefaultDecodeOptions())
	require.NoError(t, err)
	require.Len(t, recs, 5, "point geometry is skipped")

	for i, r := range recs {
		assert.Equal(t, i, r.Index)
	}

	fr := recs[geomtest.France]
	assert.Equal(t, "250", fr.ID)
	assert.Equal(t, "France", fr.Name)
	assert.True(t, fr.HasNumeric)
	assert.Equal(t, 250, fr.Numeric)
	assert.Len(t, fr.Shape, 2)
	assert.Equal(t, orb.Bound{Min: orb.Point{-54, 3}, Max: orb.Point{10, 50}}, fr.Bound)

	de := recs[geomtest.Germany]
	assert.Len(t, de.Shape, 1, "polygon is promoted to a single-member multipolygon")
	assert.Equal(t, orb.Ring{{10, 40}, {20, 40}, {20, 50}, {10, 50}, {10, 40}}, de.Shape[0][0])

	ks := recs[geomtest.Kosovo]
	assert.Empty(t, ks.ID)
	assert.False(t, ks.HasNumeric)

	sl := recs[geomtest.Somaliland]
	assert.Equal(t, "-99", sl.ID)
	assert.False(t, sl.HasNumeric, "negative ids carry no numeric code")
}

func TestDecodeTopoJSONSharedArcsAndTransform(t *testing.T) {
	// two squares sharing the x=10 edge; the second walks it reversed (~1 == -2)
	const shared = `{
	  "type": "Topology",
	  "objects": {"countries": {"type": "GeometryCollection", "geometries": [
	    {"type": "Polygon", "id": "4", "arcs": [[0, 1]]},
	    {"type": "Polygon", "id": "8", "arcs": [[-2, 2]]}
	  ]}},
	  "arcs": [
	    [[10, 0], [0, 0], [0, 10], [10, 10]],
	    [[10, 10], [10, 0]],
	    [[10, 10], [20, 10], [20, 0], [10, 0]]
	  ]
	}`
	recs, err := geometry.Decode([]byte(shared), geometry.DecodeOptions{Object: "countries"})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, orb.Ring{{10, 0}, {0, 0}, {0, 10}, {10, 10}, {10, 0}}, recs[0].Shape[0][0])
	assert.Equal(t, orb.Ring{{10, 0}, {10, 10}, {20, 10}, {20, 0}, {10, 0}}, recs[1].Shape[0][0])
	assert.Equal(t, 4, recs[0].Numeric)

	const quantized = `{
	  "type": "Topology",
	  "transform": {"scale": [2, 1], "translate": [100, 0]},
	  "objects": {"only": {"type": "Polygon", "id": 36, "arcs": [[0]]}},
	  "arcs": [[[0, 0], [5, 0], [0, 5], [-5, 0], [0, -5]]]
	}`
	recs, err = geometry.Decode([]byte(quantized), geometry.DecodeOptions{})
	require.NoError(t, err, "single object is used when no name is configured")
	require.Len(t, recs, 1)
	assert.Equal(t, orb.Ring{{100, 0}, {110, 0}, {110, 5}, {100, 5}, {100, 0}}, recs[0].Shape[0][0])
	assert.Equal(t, "36", recs[0].ID)
	assert.Equal(t, 36, recs[0].Numeric)
}

func TestDecodeGeoJSON(t *testing.T) {
	opts := geometry.DefaultDecodeOptions()
	opts.NumericProperty = "ISO_N3"
	recs, err := geometry.Decode([]byte(geomtest.WorldGeoJSON), opts)
	require.NoError(t, err)
	require.Len(t, recs, 5)

	assert.Equal(t, "France", recs[0].Name)
	assert.Equal(t, "FR", recs[0].Alpha2)
	assert.Equal(t, 250, recs[0].Numeric)
	assert.Equal(t, "jp", recs[geomtest.Japan].Alpha2, "alpha value is kept verbatim")
	assert.Equal(t, "-99", recs[geomtest.Kosovo].Alpha2)
	assert.False(t, recs[geomtest.Kosovo].HasNumeric)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		opts geometry.DecodeOptions
		want error
	}{
		{"unsupported", `{"type":"Point","coordinates":[0,0]}`, geometry.DefaultDecodeOptions(), geometry.ErrUnsupportedFormat},
		{"missing object", geomtest.WorldTopoJSON, geometry.DecodeOptions{Object: "states"}, geometry.ErrObjectNotFound},
		{"ambiguous object", geomtest.WorldTopoJSON, geometry.DecodeOptions{}, geometry.ErrObjectNotFound},
		{"no polygons", `{"type":"FeatureCollection","features":[]}`, geometry.DefaultDecodeOptions(), geometry.ErrEmptyTopology},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := geometry.Decode([]byte(tc.data), tc.opts)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := geometry.Decode([]byte(`not json`), geometry.DefaultDecodeOptions())
	assert.Error(t, err)
}
