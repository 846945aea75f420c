package address

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
	Create(ctx context.Context, address *models.Address) error
	Update(ctx context.Context, address *models.Address) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Address, error)
	List(ctx context.Context) ([]models.Address, error)
	QuadraSummary(ctx context.Context) ([]QuadraCount, error)
	Link(ctx context.Context, customerID, addressID uuid.UUID) error
	Unlink(ctx context.Context, customerID, addressID uuid.UUID) error
	ForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Address, error)
	CustomersAt(ctx context.Context, addressID uuid.UUID) ([]uuid.UUID, error)
}

type customerLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service manages delivery addresses and their customer links.
type Service interface {
	List(ctx context.Context) ([]AddressDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*AddressDTO, error)
	Create(ctx context.Context, input AddressInput) (*AddressDTO, error)
	Update(ctx context.Context, id uuid.UUID, input AddressInput) (*AddressDTO, error)
	Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	QuadraSummary(ctx context.Context) ([]QuadraCount, error)
	Link(ctx context.Context, customerID, addressID uuid.UUID) error
	Unlink(ctx context.Context, customerID, addressID uuid.UUID) error
	ForCustomer(ctx context.Context, customerID uuid.UUID) ([]AddressDTO, error)
}

type service struct {
	repo      repository
	customers customerLookup
}

// NewService wires the address book.
func NewService(repo repository, customers customerLookup) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address repository required")
	}
	if customers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "customer repository required")
	}
	return &service{repo: repo, customers: customers}, nil
}

func (s *service) List(ctx context.Context) ([]AddressDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*AddressDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*row)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input AddressInput) (*AddressDTO, error) {
	input = input.trimmed()
	row := &models.Address{}
	input.apply(row)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}
	dto := FromModel(*row)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input AddressInput) (*AddressDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	input.trimmed().apply(row)
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}
	dto := FromModel(*row)
	return &dto, nil
}

// Delete removes the address and returns the customers that were linked to it.
func (s *service) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	affected, err := s.repo.CustomersAt(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list linked customers")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	if !deleted {
		return nil, pkgerrors.NotFound("address")
	}
	return affected, nil
}

func (s *service) QuadraSummary(ctx context.Context) ([]QuadraCount, error) {
	rows, err := s.repo.QuadraSummary(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarise quadras")
	}
	return rows, nil
}

func (s *service) Link(ctx context.Context, customerID, addressID uuid.UUID) error {
	if err := s.ensureCustomer(ctx, customerID); err != nil {
		return err
	}
	if _, err := s.load(ctx, addressID); err != nil {
		return err
	}
	if err := s.repo.Link(ctx, customerID, addressID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link address")
	}
	return nil
}

func (s *service) Unlink(ctx context.Context, customerID, addressID uuid.UUID) error {
	if err := s.repo.Unlink(ctx, customerID, addressID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unlink address")
	}
	return nil
}

func (s *service) ForCustomer(ctx context.Context, customerID uuid.UUID) ([]AddressDTO, error) {
	if err := s.ensureCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ForCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer addresses")
	}
	return FromModels(rows), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("address")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	return row, nil
}

func (s *service) ensureCustomer(ctx context.Context, id uuid.UUID) error {
	ok, err := s.customers.Exists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if !ok {
		return pkgerrors.NotFound("customer")
	}
	return nil
}

func (in AddressInput) trimmed() AddressInput {
	return AddressInput{
		Quadra:      strings.TrimSpace(in.Quadra),
		Alameda:     strings.TrimSpace(in.Alameda),
		QI:          strings.TrimSpace(in.QI),
		Lote:        strings.TrimSpace(in.Lote),
		Casa:        strings.TrimSpace(in.Casa),
		Complemento: strings.TrimSpace(in.Complemento),
	}
}
