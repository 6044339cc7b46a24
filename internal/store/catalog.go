package store

import (
	"context"
	"log/slog"

	"been-map/internal/catalog"
	"been-map/internal/migrate"
	"been-map/internal/utils"
)

// 文档注释：按配置选择国家目录来源
// 背景：服务与离线渲染工具共用；source 为 "postgres" 时建表、写入默认目录后读取 _countries。
// 约束：任一步失败都记录日志并回退到内置目录，不阻断启动；连接在返回前关闭，目录读入内存后不再访问数据库。
func CatalogFromEnv(ctx context.Context, source string, l *slog.Logger) *catalog.Catalog {
	def := catalog.Default()
	if source != "postgres" {
		l.Info("catalog_source", "kind", "embedded", "countries", def.Len())
		return def
	}
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		return def
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		l.Error("db_ping_error", "err", err)
		return def
	}
	l.Info("db_ping_ok")
	if err := migrate.EnsureSchema(ctx, db, def); err != nil {
		l.Error("schema_error", "err", err)
		return def
	}
	c, err := AttachDB(db).LoadCatalog(ctx)
	if err != nil {
		l.Error("catalog_load_error", "err", err)
		return def
	}
	l.Info("catalog_source", "kind", "postgres", "countries", c.Len())
	return c
}
