package geometry

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"been-map/internal/logger"
	"been-map/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

const tracerName = "been-map/internal/geometry"

// maxTopologyBytes：单个拓扑资源的读取上限
const maxTopologyBytes = 64 << 20

// Source：拓扑资源来源
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Key() string
}

// HTTPSource：固定 URL 的网络资源；非 2xx 视为失败，不做重试
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSource) Key() string { return s.URL }

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", s.URL, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxTopologyBytes))
}

// FileSource：本地文件资源（离线部署与测试）
type FileSource struct {
	Path string
}

func (s FileSource) Key() string { return "file:" + s.Path }

func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path)
}

// 文档注释：拓扑加载器（只加载一次）
// 背景：所有地图会话共享同一份只读几何；首次成功结果在加载器生命周期内缓存且不再重新拉取。
// 约束：并发调用合并为一次拉取；失败不缓存、不自动重试，下一次显式调用（重载钩子）才会再次拉取；
// 合并的拉取使用首个调用方的 ctx，该调用方取消时其余等待者一并失败。
type Loader struct {
	src   Source
	opts  DecodeOptions
	cache RawCache
	ttl   time.Duration

	group   singleflight.Group
	mu      sync.RWMutex
	records []Record
}

// LoaderOption：加载器可选项
type LoaderOption func(*Loader)

// WithCache：启用原始字节缓存；c 为 nil 时忽略
func WithCache(c RawCache, ttl time.Duration) LoaderOption {
	return func(l *Loader) {
		if c == nil {
			return
		}
		if rc, ok := c.(*RedisCache); ok && rc == nil {
			return
		}
		l.cache = c
		l.ttl = ttl
	}
}

func NewLoader(src Source, opts DecodeOptions, options ...LoaderOption) *Loader {
	l := &Loader{src: src, opts: opts}
	for _, o := range options {
		o(l)
	}
	return l
}

// Cached：返回已加载的记录；尚未成功加载时返回 nil
func (l *Loader) Cached() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.records
}

// Load：返回记录列表，首次成功后直接返回缓存
func (l *Loader) Load(ctx context.Context) ([]Record, error) {
	if recs := l.Cached(); recs != nil {
		return recs, nil
	}
	v, err, shared := l.group.Do(l.src.Key(), func() (any, error) {
		if recs := l.Cached(); recs != nil {
			return recs, nil
		}
		recs, err := l.fetchAndDecode(ctx)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.records = recs
		l.mu.Unlock()
		return recs, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.L().Debug("topology_load_shared", "key", l.src.Key())
	}
	return v.([]Record), nil
}

func (l *Loader) fetchAndDecode(ctx context.Context) ([]Record, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "topology.load")
	defer span.End()
	span.SetAttributes(attribute.String("topology.source", l.src.Key()))

	t0 := time.Now()
	recs, err := l.loadOnce(ctx)
	metrics.TopologyLoadDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.TopologyLoadFailTotal.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.L().Error("topology_load_error", "source", l.src.Key(), "err", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("topology.records", len(recs)))
	logger.L().Info("topology_load_ok", "source", l.src.Key(), "records", len(recs), "ms", time.Since(t0).Milliseconds())
	return recs, nil
}

func (l *Loader) loadOnce(ctx context.Context) ([]Record, error) {
	key := l.cacheKey()
	if l.cache != nil {
		b, err := l.cache.Get(ctx, key)
		switch {
		case err == nil:
			if recs, derr := Decode(b, l.opts); derr == nil {
				metrics.TopologyCacheHitsTotal.Inc()
				logger.L().Debug("topology_cache_hit", "key", key)
				return recs, nil
			} else {
				logger.L().Warn("topology_cache_decode_error", "key", key, "err", derr)
			}
		case errors.Is(err, ErrCacheMiss):
			metrics.TopologyCacheMissesTotal.Inc()
		default:
			logger.L().Warn("topology_cache_get_error", "key", key, "err", err)
		}
	}
	b, err := l.src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch topology: %w", err)
	}
	recs, err := Decode(b, l.opts)
	if err != nil {
		return nil, err
	}
	if l.cache != nil {
		if err := l.cache.Set(ctx, key, b, l.ttl); err != nil {
			logger.L().Warn("topology_cache_set_error", "key", key, "err", err)
		}
	}
	return recs, nil
}

func (l *Loader) cacheKey() string {
	sum := sha1.Sum([]byte(l.src.Key()))
	return "topology:" + hex.EncodeToString(sum[:])
}
