// 包 api：集中注册 HTTP API 路由以解耦主入口（会话、事件、帧、SVG、目录、重载钩子）
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"been-map/internal/catalog"
	"been-map/internal/metrics"
	"been-map/internal/session"
	"been-map/internal/surface"
	"been-map/internal/visited"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const tracerName = "been-map/internal/api"

// maxBodyBytes：事件请求体上限
const maxBodyBytes = 1 << 20

// Atlas：图集状态与重载钩子（surface.AtlasLoader 满足此接口）
type Atlas interface {
	surface.AtlasSource
	Reload(ctx context.Context) (*surface.Atlas, error)
}

// Deps：路由依赖
type Deps struct {
	Atlas      Atlas
	Sessions   *session.Registry
	Visited    *visited.Service
	Catalog    *catalog.Catalog
	AdminToken string
	Logger     *slog.Logger
}

// Handler：把地图会话暴露为 HTTP 接口
type Handler struct {
	deps Deps
	log  *slog.Logger
}

func New(d Deps) *Handler {
	l := d.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Handler{deps: d, log: l}
}

// Register：挂载全部路由
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Get("/countries", h.handleCountries)
	r.Get("/atlas", h.handleAtlas)
	r.Post("/atlas/reload", h.handleReload)
	r.Post("/sessions", h.handleMount)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Delete("/", h.handleUnmount)
		r.Get("/frame", h.handleFrame)
		r.Get("/map.svg", h.handleSVG)
		r.Post("/events", h.handleEvents)
	})
}

// BuildRoutes：构建 API 路由（含 /metrics），由主入口挂载到 API 前缀
func BuildRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	New(d).Register(r)
	r.Handle("/metrics", metrics.Handler())
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, st, _ := h.deps.Atlas.Current()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "atlas": st, "sessions": h.deps.Sessions.Len()})
}

// handleCountries：目录；?continent= 按大洲过滤（不区分大小写）
func (h *Handler) handleCountries(w http.ResponseWriter, r *http.Request) {
	list := h.deps.Catalog.Countries()
	if ct := r.URL.Query().Get("continent"); ct != "" {
		list = h.deps.Catalog.InContinent(ct)
	}
	if list == nil {
		list = []catalog.Country{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"countries":  list,
		"continents": h.deps.Catalog.Continents(),
	})
}

func (h *Handler) handleAtlas(w http.ResponseWriter, r *http.Request) {
	a, st, err := h.deps.Atlas.Current()
	writeJSON(w, http.StatusOK, atlasSummary(a, st, err, h.deps.Catalog))
}

func atlasSummary(a *surface.Atlas, st surface.Status, err error, c *catalog.Catalog) atlasResponse {
	out := atlasResponse{Status: st, Features: []atlasFeature{}}
	if err != nil {
		out.Error = err.Error()
	}
	if a == nil {
		return out
	}
	out.Strategy = a.Table.Strategy().String()
	out.Resolved = a.Table.Resolved()
	for i, rec := range a.Records {
		code, ok := a.Code(i)
		out.Features = append(out.Features, atlasFeature{
			Index:      i,
			ID:         rec.ID,
			Name:       c.Label(code, rec.Name),
			Code:       code,
			Resolvable: ok,
		})
	}
	return out
}

// handleReload：宿主侧重载钩子，需 x-admin-token
func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	t := r.Header.Get("x-admin-token")
	if t == "" || t != h.deps.AdminToken {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	a, err := h.deps.Atlas.Reload(r.Context())
	if err != nil {
		h.log.Error("atlas_reload_error", "err", err)
		cur, st, cerr := h.deps.Atlas.Current()
		if cerr == nil {
			cerr = err
		}
		writeJSON(w, http.StatusBadGateway, atlasSummary(cur, st, cerr, h.deps.Catalog))
		return
	}
	h.log.Info("atlas_reloaded", "records", a.Len())
	writeJSON(w, http.StatusOK, atlasSummary(a, surface.Ready, nil, h.deps.Catalog))
}

func (h *Handler) handleMount(w http.ResponseWriter, r *http.Request) {
	id := h.deps.Sessions.Mount()
	frame, err := h.frame(r.Context(), id)
	if err != nil {
		h.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, Frame: frame})
}

func (h *Handler) handleUnmount(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Sessions.Unmount(chi.URLParam(r, "id")); err != nil {
		h.sessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleFrame(w http.ResponseWriter, r *http.Request) {
	t0 := time.Now()
	frame, err := h.frame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
	metrics.RenderDurationMs.WithLabelValues("json").Observe(float64(time.Since(t0).Milliseconds()))
}

func (h *Handler) handleSVG(w http.ResponseWriter, r *http.Request) {
	t0 := time.Now()
	frame, err := h.frame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.sessionError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := surface.RenderSVG(&buf, frame); err != nil {
		h.log.Error("svg_render_error", "err", err)
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("content-type", "image/svg+xml; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	_, _ = w.Write(buf.Bytes())
	metrics.RenderDurationMs.WithLabelValues("svg").Observe(float64(time.Since(t0).Milliseconds()))
}

// handleEvents：批量投递事件，执行产生的 toggleVisited 意图后返回新帧
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req eventsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if err := validateEvents(req.Events); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, span := otel.Tracer(tracerName).Start(r.Context(), "map.events")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", id), attribute.Int("events.count", len(req.Events)))

	var intents []intentResult
	err := h.deps.Sessions.With(id, func(s *surface.Surface) error {
		for _, code := range s.Replay(req.Events) {
			intents = append(intents, intentResult{Code: code})
		}
		return nil
	})
	if err != nil {
		h.sessionError(w, err)
		return
	}
	for _, e := range req.Events {
		metrics.EventsTotal.WithLabelValues(e.Type).Inc()
	}
	for i := range intents {
		out, terr := h.deps.Visited.Toggle(ctx, intents[i].Code)
		intents[i].Outcome = out
		if terr != nil {
			intents[i].Error = terr.Error()
		}
	}
	span.SetAttributes(attribute.Int("intents.count", len(intents)))

	frame, err := h.frame(ctx, id)
	if err != nil {
		h.sessionError(w, err)
		return
	}
	if intents == nil {
		intents = []intentResult{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Frame: frame, Intents: intents})
}

// frame：取最新已访问快照并在会话锁内构建帧；快照失败时按空集合渲染
func (h *Handler) frame(ctx context.Context, id string) (surface.Frame, error) {
	set, err := h.deps.Visited.Snapshot(ctx)
	if err != nil {
		h.log.Warn("visited_snapshot_error", "err", err)
		set = visited.NewSet()
	}
	var f surface.Frame
	err = h.deps.Sessions.With(id, func(s *surface.Surface) error {
		f = s.Frame(set)
		return nil
	})
	return f, err
}

func (h *Handler) sessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	h.log.Error("session_error", "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
