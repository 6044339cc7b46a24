package store

import (
	"context"
	"os"
	"testing"

	"been-map/internal/catalog"
	"been-map/internal/migrate"
	"been-map/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要真实 Postgres：设置 PG_TEST=true 与 PG_* 连接参数后运行
func TestListCountriesAgainstPostgres(t *testing.T) {
	if os.Getenv("PG_TEST") != "true" {
		t.Skip("PG_TEST not set")
	}
	db, err := utils.OpenPostgresFromEnv()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, migrate.EnsureSchema(ctx, db, catalog.Default()))
	// 二次执行不报错也不重复写入
	require.NoError(t, migrate.EnsureSchema(ctx, db, catalog.Default()))

	st := AttachDB(db)
	list, err := st.ListCountries(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(list), catalog.Default().Len())

	cat, err := st.LoadCatalog(ctx)
	require.NoError(t, err)
	fr, ok := cat.Lookup("FR")
	require.True(t, ok)
	assert.Equal(t, "Europe", fr.Continent)
}
