package couriers

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
	"github.com/angelmondragon/gasflow-backend/pkg/phone"
)

type repository interface {
	Create(ctx context.Context, courier *models.Courier) error
	Update(ctx context.Context, courier *models.Courier) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Courier, error)
	IdentifierTaken(ctx context.Context, identifier string, exclude uuid.UUID) (bool, error)
	List(ctx context.Context, activeOnly bool) ([]models.Courier, error)
}

// Service manages the courier directory.
type Service interface {
	List(ctx context.Context, activeOnly bool) ([]CourierDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CourierDTO, error)
	Create(ctx context.Context, input CourierInput) (*CourierDTO, error)
	Update(ctx context.Context, id uuid.UUID, input CourierInput) (*CourierDTO, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*CourierDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   repository
	region string
}

func NewService(repo repository, region string) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "courier repository required")
	}
	if region == "" {
		region = phone.DefaultRegion
	}
	return &service{repo: repo, region: region}, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]CourierDTO, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list couriers")
	}
	return FromModels(rows, s.region), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CourierDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*row, s.region)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CourierInput) (*CourierDTO, error) {
	row := &models.Courier{Active: true}
	if err := s.apply(ctx, row, input); err != nil {
		return nil, err
	}
	row.Active = true
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create courier")
	}
	dto := FromModel(*row, s.region)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input CourierInput) (*CourierDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, row, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update courier")
	}
	dto := FromModel(*row, s.region)
	return &dto, nil
}

func (s *service) ToggleActive(ctx context.Context, id uuid.UUID) (*CourierDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	row.Active = !row.Active
	if err := s.repo.SetActive(ctx, id, row.Active); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle courier")
	}
	dto := FromModel(*row, s.region)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete courier")
	}
	if !deleted {
		return pkgerrors.NotFound("courier")
	}
	return nil
}

func (s *service) apply(ctx context.Context, row *models.Courier, input CourierInput) error {
	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "identifier is required")
	}
	taken, err := s.repo.IdentifierTaken(ctx, identifier, row.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check courier identifier")
	}
	if taken {
		return pkgerrors.New(pkgerrors.CodeConflict, "courier identifier already exists").
			WithDetails(map[string]any{"identifier": identifier})
	}

	row.Identifier = identifier
	row.Name = strings.TrimSpace(input.Name)
	row.Phone = ""
	if raw := strings.TrimSpace(input.Phone); raw != "" {
		normalized, err := phone.Normalize(raw, s.region)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid phone number").
				WithDetails(map[string]any{"phone": raw})
		}
		row.Phone = normalized
	}
	if input.Active != nil {
		row.Active = *input.Active
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Courier, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("courier")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load courier")
	}
	return row, nil
}
