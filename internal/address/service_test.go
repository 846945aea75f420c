package address

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/pkg/db/dbtest"
	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
)

type customerSet map[uuid.UUID]bool

func (c customerSet) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return c[id], nil
}

func newTestService(t *testing.T, db *gorm.DB, customers customerSet) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), customers)
	require.NoError(t, err)
	return svc
}

func TestServiceCreateTrimsAndFormats(t *testing.T) {
	svc := newTestService(t, dbtest.Open(t), customerSet{})

	dto, err := svc.Create(context.Background(), AddressInput{Quadra: " 110 Norte ", Alameda: "02", Lote: "30"})
	require.NoError(t, err)
	require.Equal(t, "110 Norte", dto.Quadra)
	require.Equal(t, "Qd. 110 Norte, Al. 02, Lt. 30", dto.Formatted)

	got, err := svc.Get(context.Background(), dto.ID)
	require.NoError(t, err)
	require.Equal(t, dto.Formatted, got.Formatted)
}

func TestServiceLinkRequiresBothSides(t *testing.T) {
	db := dbtest.Open(t)
	customerID := uuid.New()
	require.NoError(t, db.Create(&models.Customer{ID: customerID, Name: "João"}).Error)
	svc := newTestService(t, db, customerSet{customerID: true})

	addr, err := svc.Create(context.Background(), AddressInput{Quadra: "203 Sul"})
	require.NoError(t, err)

	err = svc.Link(context.Background(), uuid.New(), addr.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = svc.Link(context.Background(), customerID, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, svc.Link(context.Background(), customerID, addr.ID))
	list, err := svc.ForCustomer(context.Background(), customerID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	affected, err := svc.Delete(context.Background(), addr.ID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{customerID}, affected)

	_, err = svc.Delete(context.Background(), addr.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
