package visited_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"been-map/internal/catalog"
	"been-map/internal/identity"
	"been-map/internal/visited"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResource mimics the visited-countries REST resource.
type fakeResource struct {
	mu      sync.Mutex
	entries map[string]map[string]string
	posts   []map[string]string
	fail    bool
}

func newFakeResource(codes ...string) *fakeResource {
	f := &fakeResource{entries: map[string]map[string]string{}}
	for _, c := range codes {
		f.entries[c] = map[string]string{"country_code": c}
	}
	return f
}

func (f *fakeResource) setFail() {
	f.mu.Lock()
	f.fail = true
	f.mu.Unlock()
}

func (f *fakeResource) postedBodies() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.posts...)
}

func (f *fakeResource) server(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			fail := f.fail
			f.mu.Unlock()
			if fail {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/api/visited-countries", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := []map[string]string{}
		for _, e := range f.entries {
			list = append(list, e)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"visited_countries": list})
	})
	r.Post("/api/visited-countries", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.entries[body["country_code"]] = body
		f.posts = append(f.posts, body)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	r.Delete("/api/visited-countries/{code}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		delete(f.entries, chi.URLParam(r, "code"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestSet(t *testing.T) {
	s := visited.NewSet("JP", "FR", identity.Unresolvable, "FR")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("FR"))
	assert.False(t, s.Has("DE"))
	assert.Equal(t, []identity.Code{"FR", "JP"}, s.Codes())

	var empty visited.Set
	assert.False(t, empty.Has("FR"))
	assert.Equal(t, 0, empty.Len())
}

func TestHTTPBackend(t *testing.T) {
	res := newFakeResource("fr")
	srv := res.server(t)
	b := visited.NewHTTPBackend(srv.URL+"/api/", time.Second)
	ctx := context.Background()

	set, err := b.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, set.Has("FR"), "codes are upper-cased")

	require.NoError(t, b.Add(ctx, catalog.Country{Code: "JP", Name: "Japan", Continent: "Asia"}))
	posts := res.postedBodies()
	require.Len(t, posts, 1)
	assert.Equal(t, map[string]string{"country_code": "JP", "country_name": "Japan", "continent": "Asia"}, posts[0])

	require.NoError(t, b.Remove(ctx, "JP"))
	set, err = b.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, set.Has("JP"))

	res.setFail()
	_, err = b.Snapshot(ctx)
	assert.Error(t, err)
}

func TestServiceToggle(t *testing.T) {
	res := newFakeResource()
	srv := res.server(t)
	svc := visited.NewService(visited.NewHTTPBackend(srv.URL+"/api", time.Second), catalog.Default())
	ctx := context.Background()

	out, err := svc.Toggle(ctx, "JP")
	require.NoError(t, err)
	assert.Equal(t, visited.Added, out)
	set, _ := svc.Snapshot(ctx)
	assert.True(t, set.Has("JP"))

	out, err = svc.Toggle(ctx, "JP")
	require.NoError(t, err)
	assert.Equal(t, visited.Removed, out)
	set, _ = svc.Snapshot(ctx)
	assert.False(t, set.Has("JP"))
}

func TestServiceToggleUnknownCountry(t *testing.T) {
	mem := visited.NewMemoryBackend()
	svc := visited.NewService(mem, catalog.Default())

	out, err := svc.Toggle(context.Background(), "PE")
	assert.ErrorIs(t, err, visited.ErrUnknownCountry)
	assert.Equal(t, visited.Ignored, out)
	set, _ := mem.Snapshot(context.Background())
	assert.Equal(t, 0, set.Len())
}

func TestServiceToggleBackendFailure(t *testing.T) {
	res := newFakeResource()
	res.setFail()
	srv := res.server(t)
	svc := visited.NewService(visited.NewHTTPBackend(srv.URL+"/api", time.Second), catalog.Default())

	out, err := svc.Toggle(context.Background(), "FR")
	assert.Error(t, err)
	assert.Equal(t, visited.Failed, out)
}

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()
	mem := visited.NewMemoryBackend(catalog.Country{Code: "FR"})
	svc := visited.NewService(mem, catalog.Default())

	out, err := svc.Toggle(ctx, "FR")
	require.NoError(t, err)
	assert.Equal(t, visited.Removed, out)
	out, err = svc.Toggle(ctx, "DE")
	require.NoError(t, err)
	assert.Equal(t, visited.Added, out)

	set, err := mem.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []identity.Code{"DE"}, set.Codes())
}
