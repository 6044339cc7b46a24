// 包 migrate：首次运行时建表并写入默认国家目录
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"been-map/internal/catalog"
	"been-map/internal/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS _countries (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		continent TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_countries_continent ON _countries(continent)`,
}

// 背景：CATALOG_SOURCE=postgres 时目录从 _countries 读取；空库也应得到可用的默认目录
// 约束：使用 IF NOT EXISTS 与 ON CONFLICT DO NOTHING，不覆盖运维手工修改过的行
func EnsureSchema(ctx context.Context, db *sql.DB, seed *catalog.Catalog) error {
	for i, s := range schema {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("schema stmt %d: %w", i, err)
		}
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO _countries(code, name, continent)
		VALUES($1, $2, $3)
		ON CONFLICT (code) DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range seed.Countries() {
		if _, err := stmt.ExecContext(ctx, string(c.Code), c.Name, c.Continent); err != nil {
			return fmt.Errorf("seed %s: %w", c.Code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Debug("schema_done", "seeded", seed.Len())
	return nil
}
