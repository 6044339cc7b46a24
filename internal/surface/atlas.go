package surface

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"been-map/internal/geometry"
	"been-map/internal/identity"
	"been-map/internal/logger"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Atlas：一次成功加载的只读结果（记录、身份表、每个代码的聚焦点）
type Atlas struct {
	Records   []geometry.Record
	Table     *identity.Table
	LoadedAt  time.Time
	centroids map[identity.Code]orb.Point
}

// NewAtlas：同一代码对应多条记录时，取面积最大的一条计算质心
func NewAtlas(recs []geometry.Record, r identity.Resolver) *Atlas {
	a := &Atlas{
		Records:   recs,
		Table:     identity.BuildTable(r, recs),
		LoadedAt:  time.Now(),
		centroids: make(map[identity.Code]orb.Point),
	}
	best := make(map[identity.Code]float64)
	for i := range recs {
		code, ok := a.Table.Code(i)
		if !ok {
			continue
		}
		area := math.Abs(planar.Area(recs[i].Shape))
		if prev, seen := best[code]; seen && prev >= area {
			continue
		}
		best[code] = area
		a.centroids[code] = geometry.Centroid(recs[i])
	}
	return a
}

func (a *Atlas) Len() int { return len(a.Records) }

// Code：下标 → 代码
func (a *Atlas) Code(index int) (identity.Code, bool) {
	return a.Table.Code(index)
}

func (a *Atlas) Centroid(code identity.Code) (orb.Point, bool) {
	p, ok := a.centroids[code]
	return p, ok
}

// HitTest：经纬度点下方的记录下标，-1 表示无
func (a *Atlas) HitTest(pt orb.Point) int {
	return geometry.HitTest(a.Records, pt)
}

// Status：几何加载状态
type Status int

const (
	Loading Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// RecordLoader：几何目录加载器（geometry.Loader 满足此接口）
type RecordLoader interface {
	Load(ctx context.Context) ([]geometry.Record, error)
}

// AtlasSource：地图表面读取当前图集的接口
type AtlasSource interface {
	Current() (*Atlas, Status, error)
}

// 文档注释：图集加载状态机（Loading → Ready | Failed）
// 背景：所有会话共享同一图集；加载失败时地图退化为不可交互的占位状态，由调用方通过 Reload 手动重试。
// 约束：不自动重试；Reload 使用新的加载器重新拉取，失败时保留已有图集（若有）并返回错误。
type AtlasLoader struct {
	newLoader func() RecordLoader
	resolver  identity.Resolver

	mu     sync.RWMutex
	loader RecordLoader
	status Status
	err    error
	atlas  *Atlas
}

func NewAtlasLoader(newLoader func() RecordLoader, r identity.Resolver) *AtlasLoader {
	return &AtlasLoader{newLoader: newLoader, resolver: r, loader: newLoader()}
}

// Current：当前图集与状态；未就绪时图集为 nil
func (l *AtlasLoader) Current() (*Atlas, Status, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.status == Ready {
		return l.atlas, Ready, nil
	}
	return nil, l.status, l.err
}

// Load：首次加载；已就绪时直接返回
func (l *AtlasLoader) Load(ctx context.Context) (*Atlas, error) {
	l.mu.Lock()
	if l.status == Ready {
		a := l.atlas
		l.mu.Unlock()
		return a, nil
	}
	l.status, l.err = Loading, nil
	ld := l.loader
	l.mu.Unlock()
	return l.load(ctx, ld)
}

// Reload：宿主侧重载钩子
func (l *AtlasLoader) Reload(ctx context.Context) (*Atlas, error) {
	ld := l.newLoader()
	l.mu.Lock()
	l.loader = ld
	if l.status != Ready {
		l.status, l.err = Loading, nil
	}
	l.mu.Unlock()
	return l.load(ctx, ld)
}

func (l *AtlasLoader) load(ctx context.Context, ld RecordLoader) (*Atlas, error) {
	recs, err := ld.Load(ctx)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		if l.status == Ready {
			logger.L().Warn("atlas_reload_error_keep_previous", "err", err)
			return nil, err
		}
		l.status, l.err = Failed, err
		return nil, err
	}
	a := NewAtlas(recs, l.resolver)
	l.atlas, l.status, l.err = a, Ready, nil
	logger.L().Info("atlas_ready", "records", a.Len(), "resolved", a.Table.Resolved(), "strategy", a.Table.Strategy().String())
	return a, nil
}
