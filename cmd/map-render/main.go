// 离线渲染工具：加载拓扑，回放事件脚本，输出 SVG（可选输出帧 JSON）
// 用法：TOPOLOGY_PATH=world.json EVENTS_PATH=events.json VISITED_CODES=FR,JP OUT_PATH=map.svg map-render
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"been-map/internal/catalog"
	"been-map/internal/config"
	"been-map/internal/geometry"
	"been-map/internal/identity"
	"been-map/internal/logger"
	"been-map/internal/projection"
	"been-map/internal/store"
	"been-map/internal/surface"
	"been-map/internal/viewport"
	"been-map/internal/visited"

	"github.com/joho/godotenv"
	"github.com/paulmach/orb"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.FromEnv()
	l := logger.Setup()
	if err := run(context.Background(), cfg); err != nil {
		l.Error("map_render_error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	l := logger.L()
	strategy, err := identity.ParseStrategy(cfg.IdentityStrategy)
	if err != nil {
		return err
	}
	var src geometry.Source
	if cfg.TopologyPath != "" {
		src = geometry.FileSource{Path: cfg.TopologyPath}
	} else {
		src = geometry.NewHTTPSource(cfg.TopologyURL, cfg.HTTPTimeout)
	}
	decode := geometry.DefaultDecodeOptions()
	decode.Object = cfg.TopologyObject
	atlases := surface.NewAtlasLoader(func() surface.RecordLoader {
		return geometry.NewLoader(src, decode)
	}, identity.NewResolver(strategy))

	lctx, cancel := context.WithTimeout(ctx, cfg.HTTPTimeout+5*time.Second)
	defer cancel()
	// 加载失败时仍输出不可交互的占位图，便于排查
	if _, err := atlases.Load(lctx); err != nil {
		l.Warn("atlas_load_error", "err", err)
	}

	cat := store.CatalogFromEnv(ctx, cfg.CatalogSource, l)
	events, err := readEvents(os.Getenv("EVENTS_PATH"))
	if err != nil {
		return err
	}
	svc := visited.NewService(visited.NewMemoryBackend(seed(cat, os.Getenv("VISITED_CODES"))...), cat)

	s := surface.New(atlases, surface.Options{
		Projector: projection.New(cfg.MapWidth, cfg.MapHeight, cfg.MapScale),
		Limits: viewport.Limits{
			ZoomMin:       cfg.ZoomMin,
			ZoomMax:       cfg.ZoomMax,
			FocusZoom:     cfg.FocusZoom,
			ButtonFactor:  cfg.ButtonFactor,
			DefaultCenter: orb.Point{cfg.CenterLon, cfg.CenterLat},
		},
		Catalog: cat,
	})
	for _, code := range s.Replay(events) {
		out, err := svc.Toggle(ctx, code)
		l.Info("map_render_intent", "code", code, "outcome", out, "err", err)
	}
	set, err := svc.Snapshot(ctx)
	if err != nil {
		return err
	}
	frame := s.Frame(set)

	if p := os.Getenv("FRAME_JSON_PATH"); p != "" {
		b, err := json.MarshalIndent(frame, "", "  ")
		if err != nil {
			return err
		}
		if err := writeFile(p, b); err != nil {
			return err
		}
	}
	out := os.Getenv("OUT_PATH")
	if out == "" || out == "-" {
		w := bufio.NewWriter(os.Stdout)
		if err := surface.RenderSVG(w, frame); err != nil {
			return err
		}
		return w.Flush()
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := surface.RenderSVG(f, frame); err != nil {
		f.Close()
		return err
	}
	l.Info("map_render_ok", "out", out, "status", frame.Status.String(), "events", len(events), "visited", set.Len())
	return f.Close()
}

// readEvents：事件脚本为 JSON 数组，或形如 {"events":[...]} 的请求体
func readEvents(path string) ([]surface.Event, error) {
	if path == "" {
		return nil, nil
	}
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var events []surface.Event
	if err := json.Unmarshal(b, &events); err != nil {
		var wrapped struct {
			Events []surface.Event `json:"events"`
		}
		if werr := json.Unmarshal(b, &wrapped); werr != nil {
			return nil, fmt.Errorf("decode events %s: %w", path, err)
		}
		events = wrapped.Events
	}
	if err := surface.ValidateEvents(events); err != nil {
		return nil, err
	}
	return events, nil
}

// seed：VISITED_CODES 以逗号分隔；目录外的代码按无名国家写入
func seed(cat *catalog.Catalog, raw string) []catalog.Country {
	var out []catalog.Country
	for _, part := range strings.Split(raw, ",") {
		code := identity.Code(strings.ToUpper(strings.TrimSpace(part)))
		if code == identity.Unresolvable {
			continue
		}
		if c, ok := cat.Lookup(code); ok {
			out = append(out, c)
			continue
		}
		out = append(out, catalog.Country{Code: code})
	}
	return out
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
