package sales

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/internal/address"
	"github.com/angelmondragon/gasflow-backend/internal/couriers"
	"github.com/angelmondragon/gasflow-backend/internal/customers"
	"github.com/angelmondragon/gasflow-backend/internal/products"
	"github.com/angelmondragon/gasflow-backend/internal/statistics"
	"github.com/angelmondragon/gasflow-backend/internal/stock"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Repositories are the gorm stores the engine binds to each transaction.
type Repositories struct {
	Stock      *stock.Repository
	Products   *products.Repository
	Customers  *customers.Repository
	Addresses  *address.Repository
	Couriers   *couriers.Repository
	Statistics *statistics.Repository
	Orders     *Repository
}

// NewRepositories builds every store over one connection.
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Stock:      stock.NewRepository(db),
		Products:   products.NewRepository(db),
		Customers:  customers.NewRepository(db),
		Addresses:  address.NewRepository(db),
		Couriers:   couriers.NewRepository(db),
		Statistics: statistics.NewRepository(db),
		Orders:     NewRepository(db),
	}
}

// GormUnitOfWork binds the repositories to a db.Client transaction.
type GormUnitOfWork struct {
	tx    txRunner
	repos Repositories
}

func NewGormUnitOfWork(tx txRunner, repos Repositories) *GormUnitOfWork {
	return &GormUnitOfWork{tx: tx, repos: repos}
}

func (u *GormUnitOfWork) Do(ctx context.Context, fn func(c Collaborators) error) error {
	return u.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(Collaborators{
			Stock:      u.repos.Stock.WithTx(tx),
			Products:   u.repos.Products.WithTx(tx),
			Customers:  u.repos.Customers.WithTx(tx),
			Addresses:  u.repos.Addresses.WithTx(tx),
			Couriers:   u.repos.Couriers.WithTx(tx),
			Statistics: u.repos.Statistics.WithTx(tx),
			Orders:     u.repos.Orders.WithTx(tx),
		})
	})
}

func (u *GormUnitOfWork) Read() Collaborators {
	return Collaborators{
		Stock:      u.repos.Stock,
		Products:   u.repos.Products,
		Customers:  u.repos.Customers,
		Addresses:  u.repos.Addresses,
		Couriers:   u.repos.Couriers,
		Statistics: u.repos.Statistics,
		Orders:     u.repos.Orders,
	}
}
