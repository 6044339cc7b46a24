package store

import (
	"context"
	"testing"
	"time"

	"been-map/internal/catalog"
	"been-map/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestCatalogFromEnvEmbedded(t *testing.T) {
	c := CatalogFromEnv(context.Background(), "embedded", logger.Discard())
	assert.Equal(t, catalog.Default().Countries(), c.Countries())
}

func TestCatalogFromEnvFallsBackWhenPostgresUnreachable(t *testing.T) {
	t.Setenv("PG_HOST", "127.0.0.1")
	t.Setenv("PG_PORT", "1")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := CatalogFromEnv(ctx, "postgres", logger.Discard())
	assert.Equal(t, catalog.Default().Len(), c.Len())
	_, ok := c.Lookup("JP")
	assert.True(t, ok)
}
