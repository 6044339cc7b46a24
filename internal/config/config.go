// 包 config：集中读取环境变量，主入口与离线工具共用同一套默认值
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultTopologyURL：world-atlas 简化国界（TopoJSON，id 为 ISO 3166-1 数字码）
const DefaultTopologyURL = "https://cdn.jsdelivr.net/npm/world-atlas@2/countries-110m.json"

// Config：服务全部可调参数
type Config struct {
	Addr    string
	APIBase string

	TopologyURL      string
	TopologyPath     string
	TopologyObject   string
	IdentityStrategy string
	TopologyCacheTTL time.Duration
	HTTPTimeout      time.Duration

	MapWidth     float64
	MapHeight    float64
	MapScale     float64
	ZoomMin      float64
	ZoomMax      float64
	FocusZoom    float64
	ButtonFactor float64
	CenterLon    float64
	CenterLat    float64

	SessionTTL     time.Duration
	VisitedAPIBase string
	CatalogSource  string

	RedisEnable    bool
	RateLimit      bool
	RateLimitQPS   int
	AdminToken     string
	TracingEnabled bool
}

// FromEnv：读取环境变量并填充默认值
// 约束：解析失败的数值静默回退到默认值，不中断启动
func FromEnv() Config {
	return Config{
		Addr:    str("ADDR", ":8080"),
		APIBase: strings.TrimRight(str("API_BASE", "/api"), "/"),

		TopologyURL:      str("TOPOLOGY_URL", DefaultTopologyURL),
		TopologyPath:     os.Getenv("TOPOLOGY_PATH"),
		TopologyObject:   str("TOPOLOGY_OBJECT", "countries"),
		IdentityStrategy: strings.ToLower(str("IDENTITY_STRATEGY", "numeric")),
		TopologyCacheTTL: seconds("TOPOLOGY_CACHE_TTL_S", 24*3600),
		HTTPTimeout:      seconds("HTTP_TIMEOUT_S", 10),

		MapWidth:     float("MAP_WIDTH", 800),
		MapHeight:    float("MAP_HEIGHT", 400),
		MapScale:     float("MAP_SCALE", 120),
		ZoomMin:      float("ZOOM_MIN", 0.5),
		ZoomMax:      float("ZOOM_MAX", 8),
		FocusZoom:    float("FOCUS_ZOOM", 2),
		ButtonFactor: float("ZOOM_BUTTON_FACTOR", 1.5),
		CenterLon:    float("DEFAULT_CENTER_LON", 0),
		CenterLat:    float("DEFAULT_CENTER_LAT", 0),

		SessionTTL:     seconds("SESSION_TTL_S", 1800),
		VisitedAPIBase: strings.TrimRight(os.Getenv("VISITED_API_BASE"), "/"),
		CatalogSource:  strings.ToLower(str("CATALOG_SOURCE", "embedded")),

		RedisEnable:    os.Getenv("REDIS_ENABLE") == "true",
		RateLimit:      os.Getenv("RATE_LIMIT_ENABLED") == "true",
		RateLimitQPS:   integer("RATE_LIMIT_QPS", 200),
		AdminToken:     os.Getenv("ADMIN_TOKEN"),
		TracingEnabled: strings.EqualFold(os.Getenv("TRACING_ENABLED"), "true"),
	}
}

func str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func integer(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func float(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func seconds(key string, def int) time.Duration {
	return time.Duration(integer(key, def)) * time.Second
}
