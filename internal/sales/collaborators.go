package sales

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
)

// StockLedger moves stock variable quantities. Decrease never takes a
// quantity below zero and reports false instead.
type StockLedger interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.StockVariable, error)
	Decrease(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	Increase(ctx context.Context, id uuid.UUID, qty int) error
}

// ProductCatalog resolves products with their price table and bindings.
type ProductCatalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// CustomerRegistry resolves customers and owns their purchase history.
type CustomerRegistry interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	AppendPurchase(ctx context.Context, purchase *models.Purchase) error
	RemovePurchasesBySale(ctx context.Context, saleID uuid.UUID) (int64, error)
}

type AddressBook interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Address, error)
}

type CourierDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Courier, error)
}

// StatisticsLedger stores one record per sold line.
type StatisticsLedger interface {
	Record(ctx context.Context, record *models.SalesRecord) error
	RemoveBySale(ctx context.Context, saleID uuid.UUID) (int64, error)
}

// OrderStore is the authoritative list of sales. Only the engine writes to it.
type OrderStore interface {
	Create(ctx context.Context, sale *models.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	Save(ctx context.Context, sale *models.Sale) error
	UpdateFlags(ctx context.Context, id uuid.UUID, flags Flags) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]models.Sale, error)
	InRange(ctx context.Context, from, to *time.Time) ([]models.Sale, error)
}

// Flags carries the columns touched by the status mutators. Nil fields are
// left unchanged.
type Flags struct {
	Status         *enums.SaleStatus
	PaymentPending *bool
}

// Collaborators bundles the stores one engine operation works against. A
// UnitOfWork hands out a set bound to a single transaction.
type Collaborators struct {
	Stock      StockLedger
	Products   ProductCatalog
	Customers  CustomerRegistry
	Addresses  AddressBook
	Couriers   CourierDirectory
	Statistics StatisticsLedger
	Orders     OrderStore
}

// UnitOfWork runs fn with collaborators that commit or roll back together.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(c Collaborators) error) error
	// Read returns collaborators outside any transaction for read paths.
	Read() Collaborators
}
