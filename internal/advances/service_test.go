package advances

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gasflow-backend/internal/couriers"
	"github.com/angelmondragon/gasflow-backend/pkg/db/dbtest"
	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
)

var testNow = time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

type fixture struct {
	svc      Service
	courierA uuid.UUID
	courierB uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	db := dbtest.Open(t)
	courierRepo := couriers.NewRepository(db)

	a := &models.Courier{Identifier: "moto-a", Active: true}
	b := &models.Courier{Identifier: "moto-b", Active: true}
	require.NoError(t, courierRepo.Create(ctx, a))
	require.NoError(t, courierRepo.Create(ctx, b))

	svc, err := NewService(NewRepository(db), courierRepo, time.UTC, func() time.Time { return testNow })
	require.NoError(t, err)
	return fixture{svc: svc, courierA: a.ID, courierB: b.ID}
}

func at(day int) *time.Time {
	t := time.Date(2025, 3, day, 10, 0, 0, 0, time.UTC)
	return &t
}

func TestServiceCreateValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, AdvanceInput{CourierID: f.courierA, Amount: decimal.Zero})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, AdvanceInput{CourierID: uuid.New(), Amount: decimal.NewFromInt(10)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	dto, err := f.svc.Create(ctx, AdvanceInput{CourierID: f.courierA, Amount: decimal.NewFromInt(50), Description: " troco "})
	require.NoError(t, err)
	require.Equal(t, "troco", dto.Description)
	require.True(t, dto.AdvancedAt.Equal(testNow))
}

func TestServiceListAndTotalsByPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inputs := []AdvanceInput{
		{CourierID: f.courierA, Amount: decimal.NewFromInt(50), AdvancedAt: at(1)},
		{CourierID: f.courierA, Amount: decimal.NewFromInt(30), AdvancedAt: at(5)},
		{CourierID: f.courierB, Amount: decimal.NewFromInt(100), AdvancedAt: at(5)},
		{CourierID: f.courierB, Amount: decimal.NewFromInt(20), AdvancedAt: at(20)},
	}
	for _, in := range inputs {
		_, err := f.svc.Create(ctx, in)
		require.NoError(t, err)
	}

	from := time.Date(2025, 3, 5, 23, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	listed, err := f.svc.List(ctx, Filter{CourierID: f.courierA, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, listed, 1, "from is widened to the start of its day")
	require.True(t, listed[0].Amount.Equal(decimal.NewFromInt(30)))

	totals, err := f.svc.Totals(ctx, at(1), at(10))
	require.NoError(t, err)
	require.Len(t, totals, 2)
	require.Equal(t, f.courierB, totals[0].CourierID)
	require.True(t, totals[0].Total.Equal(decimal.NewFromInt(100)))
	require.True(t, totals[1].Total.Equal(decimal.NewFromInt(80)))
}

func TestServiceUpdateKeepsDateWhenOmitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto, err := f.svc.Create(ctx, AdvanceInput{CourierID: f.courierA, Amount: decimal.NewFromInt(50), AdvancedAt: at(2)})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, dto.ID, AdvanceInput{CourierID: f.courierB, Amount: decimal.NewFromInt(70)})
	require.NoError(t, err)
	require.Equal(t, f.courierB, updated.CourierID)
	require.True(t, updated.AdvancedAt.Equal(*at(2)))

	_, err = f.svc.Update(ctx, uuid.New(), AdvanceInput{CourierID: f.courierA, Amount: decimal.NewFromInt(1)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, f.svc.Delete(ctx, dto.ID))
	require.True(t, pkgerrors.IsCode(f.svc.Delete(ctx, dto.ID), pkgerrors.CodeNotFound))
}
