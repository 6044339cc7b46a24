package visited

import (
	"context"
	"fmt"

	"been-map/internal/catalog"
	"been-map/internal/identity"
	"been-map/internal/logger"
	"been-map/internal/metrics"
)

// Outcome：一次 toggle 的结果
type Outcome string

const (
	Added   Outcome = "added"
	Removed Outcome = "removed"
	Ignored Outcome = "ignored"
	Failed  Outcome = "error"
)

// Service：宿主侧的意图执行者
type Service struct {
	backend Backend
	catalog *catalog.Catalog
}

func NewService(b Backend, c *catalog.Catalog) *Service {
	return &Service{backend: b, catalog: c}
}

func (s *Service) Snapshot(ctx context.Context) (Set, error) {
	return s.backend.Snapshot(ctx)
}

// Toggle：已访问则删除，否则以目录中的名称与大洲新增
func (s *Service) Toggle(ctx context.Context, code identity.Code) (Outcome, error) {
	ct, ok := s.catalog.Lookup(code)
	if !ok {
		metrics.IntentsTotal.WithLabelValues(string(Ignored)).Inc()
		logger.L().Debug("visited_toggle_ignored", "code", code)
		return Ignored, fmt.Errorf("%w: %s", ErrUnknownCountry, code)
	}
	set, err := s.backend.Snapshot(ctx)
	if err != nil {
		return s.fail(code, fmt.Errorf("visited snapshot: %w", err))
	}
	out := Added
	if set.Has(code) {
		out = Removed
		err = s.backend.Remove(ctx, code)
	} else {
		err = s.backend.Add(ctx, ct)
	}
	if err != nil {
		return s.fail(code, fmt.Errorf("visited %s %s: %w", out, code, err))
	}
	metrics.IntentsTotal.WithLabelValues(string(out)).Inc()
	logger.L().Info("visited_toggle_ok", "code", code, "outcome", string(out))
	return out, nil
}

func (s *Service) fail(code identity.Code, err error) (Outcome, error) {
	metrics.IntentsTotal.WithLabelValues(string(Failed)).Inc()
	logger.L().Error("visited_toggle_error", "code", code, "err", err)
	return Failed, err
}
