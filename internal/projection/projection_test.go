package projection_test

import (
	"math"
	"strings"
	"testing"

	"been-map/internal/projection"
	"been-map/internal/viewport"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

var home = viewport.Transform{Center: orb.Point{0, 0}, Zoom: 1}

func TestProjectCenterIsViewportMiddle(t *testing.T) {
	p := projection.Default()
	s := p.Project(orb.Point{0, 0}, home)
	assert.InDelta(t, 400, s.X, 1e-9)
	assert.InDelta(t, 200, s.Y, 1e-9)

	tf := viewport.Transform{Center: orb.Point{138, 36}, Zoom: 4}
	s = p.Project(tf.Center, tf)
	assert.InDelta(t, 400, s.X, 1e-6)
	assert.InDelta(t, 200, s.Y, 1e-6)
}

func TestProjectScale(t *testing.T) {
	p := projection.Default()
	s := p.Project(orb.Point{180, 0}, home)
	assert.InDelta(t, 400+120*math.Pi, s.X, 1e-6)

	s = p.Project(orb.Point{90, 0}, viewport.Transform{Zoom: 2})
	assert.InDelta(t, 400+120*math.Pi, s.X, 1e-6, "zoom scales linearly")

	north := p.Project(orb.Point{0, 45}, home)
	assert.Less(t, north.Y, 200.0, "north is up")
}

func TestUnprojectRoundTrip(t *testing.T) {
	p := projection.New(1024, 768, 150)
	tf := viewport.Transform{Center: orb.Point{10, 20}, Zoom: 3}
	for _, g := range []orb.Point{{0, 0}, {2.35, 48.85}, {139.7, 35.7}, {-70, -33}} {
		back := p.Unproject(p.Project(g, tf), tf)
		assert.InDelta(t, g[0], back[0], 1e-6)
		assert.InDelta(t, g[1], back[1], 1e-6)
	}
}

func TestUnprojectClamps(t *testing.T) {
	p := projection.Default()
	g := p.Unproject(viewport.Point{X: 400, Y: -1e6}, home)
	assert.InDelta(t, projection.MaxLat, g[1], 1e-6)

	g = p.Unproject(viewport.Point{X: 400 + 120*math.Pi*1.5, Y: 200}, home)
	assert.InDelta(t, -90, g[0], 1e-6, "longitude wraps past the antimeridian")
}

func TestNewFallsBackToDefaults(t *testing.T) {
	assert.Equal(t, projection.Default(), projection.New(0, -1, 0))
	assert.Equal(t, projection.Projector{Width: 300, Height: 400, Scale: 120}, projection.New(300, 0, 0))
}

func TestPath(t *testing.T) {
	p := projection.Default()
	square := orb.MultiPolygon{{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}}
	d := p.Path(square, home)
	assert.True(t, strings.HasPrefix(d, "M400,200L420.94,200L"), d)
	assert.Equal(t, 1, strings.Count(d, "M"))
	assert.Equal(t, 3, strings.Count(d, "L"), "closing point is implied by Z")
	assert.True(t, strings.HasSuffix(d, "Z"))

	two := orb.MultiPolygon{square[0], {{{20, 0}, {30, 0}, {30, 10}, {20, 0}}}}
	assert.Equal(t, 2, strings.Count(p.Path(two, home), "Z"))

	assert.Empty(t, p.Path(orb.MultiPolygon{{{{0, 0}, {1, 1}}}}, home), "degenerate rings are skipped")
}
