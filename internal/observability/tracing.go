// 包 observability：OpenTelemetry 追踪初始化
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracingConfig：追踪开关、服务名与采样率
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	SampleRatio float64
	Writer      io.Writer
}

// TracingConfigFromEnv：TRACING_ENABLED / TRACING_SERVICE_NAME / TRACING_SAMPLE_RATIO
func TracingConfigFromEnv() TracingConfig {
	ratio := 1.0
	if raw := os.Getenv("TRACING_SAMPLE_RATIO"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 && v <= 1 {
			ratio = v
		}
	}
	service := os.Getenv("TRACING_SERVICE_NAME")
	if service == "" {
		service = "been-map"
	}
	return TracingConfig{
		Enabled:     strings.EqualFold(os.Getenv("TRACING_ENABLED"), "true"),
		ServiceName: service,
		SampleRatio: ratio,
		Writer:      os.Stdout,
	}
}

// 文档注释：初始化全局 TracerProvider
// 背景：拓扑加载与事件投递处创建 span；未启用时安装 noop provider，调用点无需判断开关。
// 约束：返回的 shutdown 负责刷新剩余 span；导出器固定为 stdout。
func InitTracing(ctx context.Context, cfg TracingConfig, l *slog.Logger) (func(context.Context) error, error) {
	if l == nil {
		l = slog.Default()
	}
	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		otel.SetTextMapPropagator(propagation.TraceContext{})
		l.Debug("tracing_disabled")
		return func(context.Context) error { return nil }, nil
	}
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithoutTimestamps())
	if err != nil {
		return nil, fmt.Errorf("create stdout exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", cfg.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	l.Info("tracing_enabled", "service", cfg.ServiceName, "sample_ratio", cfg.SampleRatio)
	return tp.Shutdown, nil
}

// ShutdownWithTimeout：限时刷新并关闭；错误只记录
func ShutdownWithTimeout(ctx context.Context, shutdown func(context.Context) error, l *slog.Logger) {
	if shutdown == nil {
		return
	}
	if l == nil {
		l = slog.Default()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		l.Warn("tracing_shutdown_error", "err", err)
	}
}
