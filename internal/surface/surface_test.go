package surface_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"been-map/internal/catalog"
	"been-map/internal/geometry"
	"been-map/internal/geometry/geomtest"
	"been-map/internal/identity"
	"been-map/internal/interaction"
	"been-map/internal/surface"
	"been-map/internal/viewport"
	"been-map/internal/visited"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedAtlas struct {
	a   *surface.Atlas
	st  surface.Status
	err error
}

func (f *fixedAtlas) Current() (*surface.Atlas, surface.Status, error) {
	if f.st != surface.Ready {
		return nil, f.st, f.err
	}
	return f.a, f.st, nil
}

func readyAtlas(t *testing.T) *fixedAtlas {
	t.Helper()
	a := surface.NewAtlas(geomtest.Records(t), identity.NewResolver(identity.StrategyNumeric))
	return &fixedAtlas{a: a, st: surface.Ready}
}

func newSurface(t *testing.T) *surface.Surface {
	t.Helper()
	return surface.New(readyAtlas(t), surface.DefaultOptions())
}

func home() viewport.Transform { return viewport.Transform{Center: orb.Point{0, 0}, Zoom: 1} }

func TestAtlas(t *testing.T) {
	a := readyAtlas(t).a
	assert.Equal(t, 5, a.Len())

	code, ok := a.Code(geomtest.Japan)
	assert.True(t, ok)
	assert.Equal(t, identity.Code("JP"), code)

	c, ok := a.Centroid("FR")
	require.True(t, ok)
	assert.InDelta(t, 5, c[0], 1e-9)
	assert.InDelta(t, 45, c[1], 1e-9)

	_, ok = a.Centroid("XK")
	assert.False(t, ok)
	assert.Equal(t, geomtest.Germany, a.HitTest(orb.Point{15, 45}))
}

func TestHoverFranceShowsTooltip(t *testing.T) {
	s := newSurface(t)
	s.PointerMove(viewport.Point{X: 300, Y: 150})

	res := s.PointerEnter(geomtest.France)
	assert.Equal(t, interaction.HoveringState("FR"), res.State)
	assert.True(t, res.Tooltip.Visible)
	assert.Equal(t, "France", res.Tooltip.Label)
	assert.Equal(t, "Europe", res.Tooltip.Continent)
	assert.Empty(t, res.Intents)

	res = s.PointerLeave()
	assert.Equal(t, interaction.IdleState(), res.State)
	assert.False(t, res.Tooltip.Visible)
}

func TestClickJapanTwiceRoundTrip(t *testing.T) {
	s := newSurface(t)
	before := s.View()
	assert.Equal(t, home(), before)

	res := s.Click(geomtest.Japan)
	assert.Equal(t, interaction.SelectedState("JP"), res.State)
	assert.Equal(t, []identity.Code{"JP"}, res.Intents)
	assert.InDelta(t, 135, res.View.Center[0], 1e-9)
	assert.InDelta(t, 35, res.View.Center[1], 1e-9)
	assert.Equal(t, 2.0, res.View.Zoom)

	res = s.Click(geomtest.Japan)
	assert.Equal(t, interaction.IdleState(), res.State)
	assert.Equal(t, []identity.Code{"JP"}, res.Intents)
	assert.Equal(t, before, res.View)
}

func TestUnresolvableIsInert(t *testing.T) {
	s := newSurface(t)
	s.Click(geomtest.France)
	view := s.View()

	for _, idx := range []int{geomtest.Kosovo, geomtest.Somaliland, 99, -1} {
		res := s.PointerEnter(idx)
		assert.Equal(t, interaction.SelectedState("FR"), res.State)
		res = s.Click(idx)
		assert.Equal(t, interaction.SelectedState("FR"), res.State)
		assert.Empty(t, res.Intents)
		assert.Equal(t, view, res.View)
	}
}

func TestPointerMoveHitTests(t *testing.T) {
	s := newSurface(t)
	proj := s.Projector()

	overFrance := proj.Project(orb.Point{5, 45}, s.View())
	res := s.PointerMove(overFrance)
	assert.Equal(t, interaction.HoveringState("FR"), res.State)
	assert.True(t, res.Tooltip.Visible)
	assert.GreaterOrEqual(t, res.Tooltip.Anchor.X, overFrance.X)

	overGermany := proj.Project(orb.Point{15, 45}, s.View())
	res = s.PointerMove(overGermany)
	assert.Equal(t, interaction.HoveringState("DE"), res.State)

	overKosovo := proj.Project(orb.Point{22, 42}, s.View())
	res = s.PointerMove(overKosovo)
	assert.Equal(t, interaction.IdleState(), res.State, "leaving Germany onto an unresolvable feature")
	assert.False(t, res.Tooltip.Visible)

	res = s.PointerMove(viewport.Point{X: 400, Y: 200})
	assert.Equal(t, interaction.IdleState(), res.State)

	assert.Equal(t, -1, s.FeatureAt(viewport.Point{X: 400, Y: -5000}), "points beyond the projected world miss")
}

func TestClickAt(t *testing.T) {
	s := newSurface(t)
	res := s.ClickAt(s.Projector().Project(orb.Point{135, 35}, s.View()))
	assert.Equal(t, interaction.SelectedState("JP"), res.State)
	assert.Equal(t, []identity.Code{"JP"}, res.Intents)

	res = s.ClickAt(viewport.Point{X: 1, Y: 1})
	assert.Equal(t, interaction.SelectedState("JP"), res.State)
	assert.Empty(t, res.Intents)
}

func TestTooltipHiddenWhileSelected(t *testing.T) {
	s := newSurface(t)
	s.Click(geomtest.France)
	p := s.Projector()
	for _, g := range []orb.Point{{5, 45}, {15, 45}, {0, 0}, {7, 47}} {
		res := s.PointerMove(p.Project(g, s.View()))
		assert.False(t, res.Tooltip.Visible)
		assert.Equal(t, interaction.SelectedState("FR"), res.State)
	}
}

func TestNavigationBypassesStateMachine(t *testing.T) {
	s := newSurface(t)
	s.Click(geomtest.Japan)

	res := s.ZoomIn()
	assert.Equal(t, 3.0, res.View.Zoom)
	assert.Equal(t, interaction.SelectedState("JP"), res.State)
	assert.Empty(t, res.Intents)

	res = s.ZoomOut()
	assert.InDelta(t, 2.0, res.View.Zoom, 1e-12)

	res = s.Drag(50, 0)
	assert.Less(t, res.View.Center[0], 135.0)

	res = s.Wheel(100, &viewport.Point{X: 10, Y: 10})
	assert.Equal(t, 8.0, res.View.Zoom)

	res = s.ResetView()
	assert.Equal(t, home(), res.View)
	assert.Equal(t, interaction.SelectedState("JP"), res.State)
}

func TestInteractionDisabledUntilReady(t *testing.T) {
	for _, src := range []*fixedAtlas{
		{st: surface.Loading},
		{st: surface.Failed, err: errors.New("fetch topology: timeout")},
	} {
		s := surface.New(src, surface.DefaultOptions())
		assert.Equal(t, interaction.IdleState(), s.PointerEnter(0).State)
		res := s.Click(0)
		assert.Empty(t, res.Intents)
		assert.Equal(t, home(), s.ZoomIn().View)
		assert.Equal(t, home(), s.Drag(10, 10).View)
		assert.Equal(t, -1, s.FeatureAt(viewport.Point{X: 400, Y: 200}))

		f := s.Frame(visited.NewSet())
		assert.Equal(t, src.st, f.Status)
		assert.Empty(t, f.Features)
		assert.False(t, f.Tooltip.Visible)
		if src.err != nil {
			assert.Equal(t, src.err.Error(), f.Error)
		}
	}
}

func TestFrame(t *testing.T) {
	s := newSurface(t)
	s.Click(geomtest.Japan)
	s.PointerEnter(geomtest.France)

	f := s.Frame(visited.NewSet("FR", "JP", "PE"))
	assert.Equal(t, surface.Ready, f.Status)
	require.Len(t, f.Features, 5)

	jp := f.Features[geomtest.Japan]
	assert.Equal(t, identity.Code("JP"), jp.Code)
	assert.True(t, jp.Visited)
	assert.Equal(t, "#047857", jp.Style.Fill, "selected and visited")
	assert.Equal(t, 1.5, jp.Style.StrokeWidth)

	fr := f.Features[geomtest.France]
	assert.Equal(t, "#10b981", fr.Style.Fill, "hover does not apply while another country is selected")
	assert.Equal(t, "France", fr.Name)
	assert.NotEmpty(t, fr.Path)

	de := f.Features[geomtest.Germany]
	assert.Equal(t, "#e5e7eb", de.Style.Fill)
	assert.True(t, de.Style.Interactive)

	ks := f.Features[geomtest.Kosovo]
	assert.False(t, ks.Resolvable)
	assert.Equal(t, "Kosovo", ks.Name)
	assert.Equal(t, "#f3f4f6", ks.Style.Fill)
	assert.False(t, ks.Style.Interactive)

	assert.Equal(t, surface.Legend{Visited: 3, NotVisited: 18, Catalog: 20}, f.Legend)
	assert.InDelta(t, 135.0, f.View.Lon, 1e-9)
	assert.True(t, f.Controls.CanZoomIn)
	assert.True(t, f.Controls.CanZoomOut)
}

func TestFrameHoverStyleAndVisitedTooltip(t *testing.T) {
	s := newSurface(t)
	s.PointerEnter(geomtest.Germany)
	f := s.Frame(visited.NewSet("DE"))
	assert.Equal(t, "#059669", f.Features[geomtest.Germany].Style.Fill)
	assert.True(t, f.Tooltip.Visible)
	assert.True(t, f.Tooltip.Visited)
	assert.Equal(t, []string{"Germany", "Europe", "✓ Visited"}, f.Tooltip.Lines())
}

type countingLoader struct {
	calls atomic.Int32
	fail  bool
}

func (c *countingLoader) Load(context.Context) ([]geometry.Record, error) {
	c.calls.Add(1)
	if c.fail {
		return nil, errors.New("offline")
	}
	recs, err := geometry.Decode([]byte(geomtest.WorldTopoJSON), geometry.DefaultDecodeOptions())
	return recs, err
}

func TestAtlasLoaderLifecycle(t *testing.T) {
	loaders := []*countingLoader{{fail: true}, {}, {fail: true}}
	next := 0
	al := surface.NewAtlasLoader(func() surface.RecordLoader {
		l := loaders[next]
		next++
		return l
	}, identity.NewResolver(identity.StrategyNumeric))

	_, st, _ := al.Current()
	assert.Equal(t, surface.Loading, st)

	_, err := al.Load(context.Background())
	require.Error(t, err)
	a, st, err := al.Current()
	assert.Nil(t, a)
	assert.Equal(t, surface.Failed, st)
	assert.EqualError(t, err, "offline")

	// no automatic retry: the reload hook builds a fresh loader
	a, err = al.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, a.Len())
	_, st, _ = al.Current()
	assert.Equal(t, surface.Ready, st)

	again, err := al.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Equal(t, int32(1), loaders[1].calls.Load())

	// a failed reload keeps serving the previous atlas
	_, err = al.Reload(context.Background())
	require.Error(t, err)
	cur, st, err := al.Current()
	assert.Same(t, a, cur)
	assert.Equal(t, surface.Ready, st)
	assert.NoError(t, err)
}

func TestReloadResetsInteraction(t *testing.T) {
	src := readyAtlas(t)
	s := surface.New(src, surface.DefaultOptions())
	s.Click(geomtest.France)
	assert.Equal(t, interaction.SelectedState("FR"), s.State())

	assert.NotEqual(t, home(), s.View())

	src.a = surface.NewAtlas(geomtest.Records(t), identity.NewResolver(identity.StrategyNumeric))
	res := s.PointerLeave()
	assert.Equal(t, interaction.IdleState(), res.State)
	assert.Equal(t, home(), res.View, "focus from the dropped selection does not survive the swap")
}

func TestTooltipKeepsHoveredLabelOverUnresolvable(t *testing.T) {
	opts := surface.DefaultOptions()
	opts.Catalog = catalog.New(nil)
	s := surface.New(readyAtlas(t), opts)
	s.PointerMove(viewport.Point{X: 300, Y: 150})

	res := s.PointerEnter(geomtest.France)
	require.Equal(t, interaction.HoveringState("FR"), res.State)
	assert.Equal(t, "France", res.Tooltip.Label)

	for _, idx := range []int{geomtest.Kosovo, geomtest.Somaliland} {
		res = s.PointerEnter(idx)
		assert.Equal(t, interaction.HoveringState("FR"), res.State)
		assert.True(t, res.Tooltip.Visible)
		assert.Equal(t, "France", res.Tooltip.Label)
	}
}
