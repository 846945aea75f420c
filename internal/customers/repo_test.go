package customers

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

func purchase(customerID, saleID uuid.UUID, line int, at time.Time) *models.Purchase {
	return &models.Purchase{
		CustomerID:    customerID,
		SaleID:        saleID,
		LineIndex:     line,
		ProductID:     uuid.New(),
		ProductName:   "Gás P13",
		Quantity:      1,
		Value:         decimal.NewFromInt(140),
		PaymentMethod: enums.PaymentMethodPix,
		PurchasedAt:   at,
	}
}

func TestRepositoryPurchaseHistoryScopedBySale(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	customer := &models.Customer{Name: "Ana"}
	require.NoError(t, repo.Create(ctx, customer))

	saleA, saleB := uuid.New(), uuid.New()
	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.AppendPurchase(ctx, purchase(customer.ID, saleA, 0, base)))
	require.NoError(t, repo.AppendPurchase(ctx, purchase(customer.ID, saleA, 1, base)))
	require.NoError(t, repo.AppendPurchase(ctx, purchase(customer.ID, saleB, 0, base.Add(48*time.Hour))))

	history, err := repo.PurchaseHistory(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, saleB, history[0].SaleID, "newest first")

	removed, err := repo.RemovePurchasesBySale(ctx, saleA)
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	remaining, err := repo.PurchasesBySale(ctx, saleB)
	require.NoError(t, err)
	require.Len(t, remaining, 1)

	last, err := repo.LastPurchaseTimes(ctx)
	require.NoError(t, err)
	require.True(t, last[customer.ID].Equal(base.Add(48*time.Hour)))
}

func TestRepositoryDeleteCascadesHistoryAndLinks(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewRepository(db)

	customer := &models.Customer{Name: "Pedro"}
	require.NoError(t, repo.Create(ctx, customer))
	addr := models.Address{ID: uuid.New(), Quadra: "110 Norte"}
	require.NoError(t, db.Create(&addr).Error)
	require.NoError(t, db.Create(&models.CustomerAddress{CustomerID: customer.ID, AddressID: addr.ID}).Error)
	require.NoError(t, repo.AppendPurchase(ctx, purchase(customer.ID, uuid.New(), 0, time.Now().UTC())))

	deleted, err := repo.Delete(ctx, customer.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	var purchases, links int64
	require.NoError(t, db.Model(&models.Purchase{}).Count(&purchases).Error)
	require.NoError(t, db.Model(&models.CustomerAddress{}).Count(&links).Error)
	require.Zero(t, purchases)
	require.Zero(t, links)

	exists, err := repo.Exists(ctx, customer.ID)
	require.NoError(t, err)
	require.False(t, exists)

	deleted, err = repo.Delete(ctx, customer.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestRepositoryListSearch(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))
	for _, name := range []string{"Carlos", "ana", "Beatriz"} {
		require.NoError(t, repo.Create(ctx, &models.Customer{Name: name}))
	}

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)

	found, err := repo.List(ctx, "ANA")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "ana", found[0].Name)
}
