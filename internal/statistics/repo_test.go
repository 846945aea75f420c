package statistics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gasflow-backend/pkg/db/dbtest"
	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
)

func record(productID, saleID uuid.UUID, line, qty int, soldAt time.Time) *models.SalesRecord {
	return &models.SalesRecord{
		ProductID:     productID,
		SaleID:        saleID,
		LineIndex:     line,
		Quantity:      qty,
		SoldAt:        soldAt,
		PaymentMethod: enums.PaymentMethodCash,
		Value:         decimal.NewFromInt(int64(qty) * 100),
	}
}

func TestRepositoryTotalQuantityInRange(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))
	product := uuid.New()

	day := func(d int) time.Time { return time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, repo.Record(ctx, record(product, uuid.New(), 0, 2, day(1))))
	require.NoError(t, repo.Record(ctx, record(product, uuid.New(), 0, 3, day(5))))
	require.NoError(t, repo.Record(ctx, record(uuid.New(), uuid.New(), 0, 9, day(5))))

	total, err := repo.TotalQuantityInRange(ctx, product, nil, nil)
	require.NoError(t, err)
	require.Equal(t, int64(5), total)

	from := day(5)
	total, err = repo.TotalQuantityInRange(ctx, product, &from, nil)
	require.NoError(t, err)
	require.Equal(t, int64(3), total, "bounds are inclusive")

	to := day(4)
	total, err = repo.TotalQuantityInRange(ctx, product, &from, &to)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestRepositoryRemoveBySaleOnlyTouchesThatSale(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))
	product := uuid.New()
	saleA, saleB := uuid.New(), uuid.New()
	now := time.Now().UTC()

	require.NoError(t, repo.Record(ctx, record(product, saleA, 0, 1, now)))
	require.NoError(t, repo.Record(ctx, record(product, saleA, 1, 1, now)))
	require.NoError(t, repo.Record(ctx, record(product, saleB, 0, 1, now)))

	removed, err := repo.RemoveBySale(ctx, saleA)
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	left, err := repo.BySale(ctx, saleB)
	require.NoError(t, err)
	require.Len(t, left, 1)
}
