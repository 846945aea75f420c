package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
)

type fakeRepository struct {
	createFn        func(ctx context.Context, variable *models.StockVariable) error
	updateFn        func(ctx context.Context, variable *models.StockVariable) error
	deleteFn        func(ctx context.Context, id uuid.UUID) (bool, error)
	findByIDFn      func(ctx context.Context, id uuid.UUID) (*models.StockVariable, error)
	nameTakenFn     func(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	countBindingsFn func(ctx context.Context, id uuid.UUID) (int64, error)
	listFn          func(ctx context.Context) ([]models.StockVariable, error)
	listLowFn       func(ctx context.Context, threshold int) ([]models.StockVariable, error)
}

func (f *fakeRepository) Create(ctx context.Context, variable *models.StockVariable) error {
	if f.createFn != nil {
		return f.createFn(ctx, variable)
	}
	variable.ID = uuid.New()
	return nil
}

func (f *fakeRepository) Update(ctx context.Context, variable *models.StockVariable) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, variable)
	}
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return true, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.StockVariable, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	if f.nameTakenFn != nil {
		return f.nameTakenFn(ctx, name, exclude)
	}
	return false, nil
}

func (f *fakeRepository) CountBindings(ctx context.Context, id uuid.UUID) (int64, error) {
	if f.countBindingsFn != nil {
		return f.countBindingsFn(ctx, id)
	}
	return 0, nil
}

func (f *fakeRepository) List(ctx context.Context) ([]models.StockVariable, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeRepository) ListAtOrBelow(ctx context.Context, threshold int) ([]models.StockVariable, error) {
	if f.listLowFn != nil {
		return f.listLowFn(ctx, threshold)
	}
	return nil, nil
}

func newTestService(t *testing.T, repo repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc
}

func TestServiceCreateValidatesInput(t *testing.T) {
	svc := newTestService(t, &fakeRepository{})

	_, err := svc.Create(context.Background(), CreateInput{Name: "  ", Quantity: 1})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(context.Background(), CreateInput{Name: "Gás", Quantity: -1})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	dto, err := svc.Create(context.Background(), CreateInput{Name: " Gás P13 ", Quantity: 70})
	require.NoError(t, err)
	require.Equal(t, "Gás P13", dto.Name)
	require.Equal(t, LevelNormal, dto.Level)
}

func TestServiceCreateRejectsDuplicateName(t *testing.T) {
	svc := newTestService(t, &fakeRepository{
		nameTakenFn: func(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
			require.Equal(t, uuid.Nil, exclude)
			return true, nil
		},
	})

	_, err := svc.Create(context.Background(), CreateInput{Name: "gás p13"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestServiceUpdate(t *testing.T) {
	id := uuid.New()
	var saved *models.StockVariable
	svc := newTestService(t, &fakeRepository{
		findByIDFn: func(ctx context.Context, got uuid.UUID) (*models.StockVariable, error) {
			return &models.StockVariable{ID: got, Name: "Brindes", Quantity: 50}, nil
		},
		nameTakenFn: func(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
			require.Equal(t, id, exclude)
			return false, nil
		},
		updateFn: func(ctx context.Context, variable *models.StockVariable) error {
			saved = variable
			return nil
		},
	})

	name := "Brindes Natal"
	qty := 4
	dto, err := svc.Update(context.Background(), id, UpdateInput{Name: &name, Quantity: &qty})
	require.NoError(t, err)
	require.Equal(t, LevelCritical, dto.Level)
	require.Equal(t, "Brindes Natal", saved.Name)
	require.Equal(t, 4, saved.Quantity)

	negative := -3
	_, err = svc.Update(context.Background(), id, UpdateInput{Quantity: &negative})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServiceGetNotFound(t *testing.T) {
	svc := newTestService(t, &fakeRepository{})
	_, err := svc.Get(context.Background(), uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestServiceDeleteRefusesBoundVariables(t *testing.T) {
	svc := newTestService(t, &fakeRepository{
		countBindingsFn: func(ctx context.Context, id uuid.UUID) (int64, error) { return 2, nil },
	})
	err := svc.Delete(context.Background(), uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	svc = newTestService(t, &fakeRepository{
		deleteFn: func(ctx context.Context, id uuid.UUID) (bool, error) { return false, nil },
	})
	err = svc.Delete(context.Background(), uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestLevelFor(t *testing.T) {
	require.Equal(t, LevelCritical, LevelFor(5))
	require.Equal(t, LevelLow, LevelFor(6))
	require.Equal(t, LevelLow, LevelFor(15))
	require.Equal(t, LevelNormal, LevelFor(16))
}

func TestServiceLowDefaultsThreshold(t *testing.T) {
	svc := newTestService(t, &fakeRepository{
		listLowFn: func(ctx context.Context, threshold int) ([]models.StockVariable, error) {
			require.Equal(t, lowThreshold, threshold)
			return []models.StockVariable{{Name: "Água", Quantity: 2}}, nil
		},
	})
	rows, err := svc.Low(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
