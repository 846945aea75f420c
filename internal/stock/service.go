package stock

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
)

type repository interface {
	Create(ctx context.Context, variable *models.StockVariable) error
	Update(ctx context.Context, variable *models.StockVariable) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.StockVariable, error)
	NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	CountBindings(ctx context.Context, id uuid.UUID) (int64, error)
	List(ctx context.Context) ([]models.StockVariable, error)
	ListAtOrBelow(ctx context.Context, threshold int) ([]models.StockVariable, error)
}

// Service manages the stock variable registry.
type Service interface {
	List(ctx context.Context) ([]VariableDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*VariableDTO, error)
	Create(ctx context.Context, input CreateInput) (*VariableDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*VariableDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Low(ctx context.Context, threshold int) ([]VariableDTO, error)
}

type service struct {
	repo repository
}

// NewService wires the stock registry.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stock repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]VariableDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock variables")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*VariableDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*row)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*VariableDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	if err := s.ensureUniqueName(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	row := &models.StockVariable{Name: name, Quantity: input.Quantity}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock variable")
	}
	dto := FromModel(*row)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*VariableDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		if err := s.ensureUniqueName(ctx, name, id); err != nil {
			return nil, err
		}
		row.Name = name
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
		}
		row.Quantity = *input.Quantity
	}
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock variable")
	}
	dto := FromModel(*row)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	bindings, err := s.repo.CountBindings(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count product bindings")
	}
	if bindings > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "stock variable is bound to products").
			WithDetails(map[string]any{"stock_variable_id": id, "bindings": bindings})
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete stock variable")
	}
	if !deleted {
		return pkgerrors.NotFound("stock variable")
	}
	return nil
}

func (s *service) Low(ctx context.Context, threshold int) ([]VariableDTO, error) {
	if threshold <= 0 {
		threshold = lowThreshold
	}
	rows, err := s.repo.ListAtOrBelow(ctx, threshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}
	return FromModels(rows), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.StockVariable, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("stock variable")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock variable")
	}
	return row, nil
}

func (s *service) ensureUniqueName(ctx context.Context, name string, exclude uuid.UUID) error {
	taken, err := s.repo.NameTaken(ctx, name, exclude)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check stock variable name")
	}
	if taken {
		return pkgerrors.New(pkgerrors.CodeConflict, "stock variable name already exists").
			WithDetails(map[string]any{"name": name})
	}
	return nil
}
