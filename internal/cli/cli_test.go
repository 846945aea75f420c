package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gasflow-backend/internal/products"
	"github.com/angelmondragon/gasflow-backend/internal/stock"
	"github.com/angelmondragon/gasflow-backend/pkg/db/dbtest"
)

func TestSeedCatalogCreatesStarterData(t *testing.T) {
	conn := dbtest.Open(t)
	stockRepo := stock.NewRepository(conn)
	stockSvc, err := stock.NewService(stockRepo)
	require.NoError(t, err)
	productSvc, err := products.NewService(products.NewRepository(conn), stockRepo)
	require.NoError(t, err)

	ctx := context.Background()
	result, err := seedCatalog(ctx, stockSvc, productSvc)
	require.NoError(t, err)
	assert.False(t, result.skipped)
	assert.Equal(t, len(starterVariables), result.variables)
	assert.Equal(t, len(starterProducts), result.products)

	catalog, err := productSvc.List(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, len(starterProducts))

	again, err := seedCatalog(ctx, stockSvc, productSvc)
	require.NoError(t, err)
	assert.True(t, again.skipped)

	vars, err := stockSvc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, vars, len(starterVariables))
}

func TestParsePeriod(t *testing.T) {
	from, to, err := parsePeriod("2025-03-01", "2025-03-05", time.UTC)
	require.NoError(t, err)
	require.NotNil(t, from)
	require.NotNil(t, to)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *from)

	from, to, err = parsePeriod("", "", time.UTC)
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)

	_, _, err = parsePeriod("2025-03-05", "2025-03-01", time.UTC)
	assert.Error(t, err)

	_, _, err = parsePeriod("05/03/2025", "", time.UTC)
	assert.Error(t, err)
}
