// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"been-map/internal/api"
	"been-map/internal/config"
	"been-map/internal/geometry"
	"been-map/internal/identity"
	"been-map/internal/logger"
	"been-map/internal/middleware"
	"been-map/internal/observability"
	"been-map/internal/projection"
	"been-map/internal/session"
	"been-map/internal/store"
	"been-map/internal/surface"
	"been-map/internal/utils"
	"been-map/internal/viewport"
	"been-map/internal/visited"

	"github.com/joho/godotenv"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	cfg := config.FromEnv()
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok")
	l.Debug("config_api_base", "base", cfg.APIBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tcfg := observability.TracingConfigFromEnv()
	tcfg.Enabled = cfg.TracingEnabled
	shutdownTracing, err := observability.InitTracing(ctx, tcfg, l)
	if err != nil {
		l.Error("tracing_init_error", "err", err)
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, l)

	strategy, err := identity.ParseStrategy(cfg.IdentityStrategy)
	if err != nil {
		l.Error("config_identity_strategy_error", "err", err)
		os.Exit(1)
	}

	// 拓扑原始字节缓存：Redis 不可用时退化为每次从源拉取
	var raw geometry.RawCache
	if cfg.RedisEnable {
		rc := utils.OpenRedisFromEnv()
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
			raw = geometry.NewRedisCache(rc)
		}
	} else {
		l.Info("redis_disabled")
	}

	var src geometry.Source
	if cfg.TopologyPath != "" {
		src = geometry.FileSource{Path: cfg.TopologyPath}
	} else {
		src = geometry.NewHTTPSource(cfg.TopologyURL, cfg.HTTPTimeout)
	}
	l.Debug("config_topology", "source", src.Key(), "object", cfg.TopologyObject, "strategy", strategy.String())
	decode := geometry.DefaultDecodeOptions()
	decode.Object = cfg.TopologyObject
	atlases := surface.NewAtlasLoader(func() surface.RecordLoader {
		return geometry.NewLoader(src, decode, geometry.WithCache(raw, cfg.TopologyCacheTTL))
	}, identity.NewResolver(strategy))

	cat := store.CatalogFromEnv(ctx, cfg.CatalogSource, l)

	var backend visited.Backend = visited.NewMemoryBackend()
	if cfg.VisitedAPIBase != "" {
		backend = visited.NewHTTPBackend(cfg.VisitedAPIBase, cfg.HTTPTimeout)
		l.Info("visited_backend", "kind", "http", "base", cfg.VisitedAPIBase)
	} else {
		l.Info("visited_backend", "kind", "memory")
	}
	visits := visited.NewService(backend, cat)

	opts := surface.Options{
		Projector: projection.New(cfg.MapWidth, cfg.MapHeight, cfg.MapScale),
		Limits: viewport.Limits{
			ZoomMin:       cfg.ZoomMin,
			ZoomMax:       cfg.ZoomMax,
			FocusZoom:     cfg.FocusZoom,
			ButtonFactor:  cfg.ButtonFactor,
			DefaultCenter: orb.Point{cfg.CenterLon, cfg.CenterLat},
		},
		Catalog: cat,
	}
	sessions := session.NewRegistry(func() *surface.Surface {
		return surface.New(atlases, opts)
	}, cfg.SessionTTL)

	apiHandler := api.BuildRoutes(api.Deps{
		Atlas:      atlases,
		Sessions:   sessions,
		Visited:    visits,
		Catalog:    cat,
		AdminToken: cfg.AdminToken,
		Logger:     l,
	})
	mux := http.NewServeMux()
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, apiHandler))

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler, cfg.RateLimit, cfg.RateLimitQPS)
	srv := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	// 背景：拓扑在后台加载，期间会话可挂载并渲染加载占位
	g.Go(func() error {
		if _, err := atlases.Load(gctx); err != nil {
			l.Error("atlas_load_error", "err", err)
		}
		return nil
	})
	sessions.Start(gctx)
	g.Go(func() error {
		l.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		l.Info("shutdown_begin")
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		l.Error("server_error", "err", err)
	}
	l.Info("shutdown_done")
}
