// 包 store：PostgreSQL 数据访问层，提供国家目录读取
package store

import (
	"context"
	"database/sql"
	"fmt"

	"been-map/internal/catalog"
	"been-map/internal/identity"
	"been-map/internal/logger"

	_ "github.com/lib/pq"
)

// Store：数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// ListCountries：按代码排序读取 _countries
func (s *Store) ListCountries(ctx context.Context) ([]catalog.Country, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, name, continent FROM _countries ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()
	var out []catalog.Country
	for rows.Next() {
		var code, name, continent string
		if err := rows.Scan(&code, &name, &continent); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		out = append(out, catalog.Country{Code: identity.Code(code), Name: name, Continent: continent})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.L().Debug("db_countries_loaded", "count", len(out))
	return out, nil
}

// LoadCatalog：读取目录并构建 catalog.Catalog；表为空时视为错误，由调用方回退到内置目录
func (s *Store) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	list, err := s.ListCountries(ctx)
	if err != nil {
		return nil, err
	}
	c := catalog.New(list)
	if c.Len() == 0 {
		return nil, fmt.Errorf("list countries: _countries is empty")
	}
	return c, nil
}
