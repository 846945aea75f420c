package app

import (
	"fmt"
	"time"

	"github.com/angelmondragon/gasflow-backend/api/routes"
	"github.com/angelmondragon/gasflow-backend/internal/address"
	"github.com/angelmondragon/gasflow-backend/internal/advances"
	"github.com/angelmondragon/gasflow-backend/internal/couriers"
	"github.com/angelmondragon/gasflow-backend/internal/customers"
	"github.com/angelmondragon/gasflow-backend/internal/notifications"
	"github.com/angelmondragon/gasflow-backend/internal/products"
	"github.com/angelmondragon/gasflow-backend/internal/reports"
	"github.com/angelmondragon/gasflow-backend/internal/sales"
	"github.com/angelmondragon/gasflow-backend/internal/statistics"
	"github.com/angelmondragon/gasflow-backend/internal/stock"
	"github.com/angelmondragon/gasflow-backend/pkg/config"
	"github.com/angelmondragon/gasflow-backend/pkg/db"
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
	"github.com/angelmondragon/gasflow-backend/pkg/logger"
	"github.com/angelmondragon/gasflow-backend/pkg/metrics"
)

// Params are the shared resources every binary opens before wiring services.
type Params struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      *db.Client
	Locker  sales.Locker
	Metrics *metrics.SalesMetrics
	Now     func() time.Time
}

// BuildServices wires repositories and services over one database client.
func BuildServices(p Params) (routes.Services, error) {
	var out routes.Services
	if p.Config == nil || p.DB == nil {
		return out, fmt.Errorf("config and database are required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	loc, err := p.Config.App.Location()
	if err != nil {
		return out, err
	}

	conn := p.DB.DB()
	repos := sales.NewRepositories(conn)
	advanceRepo := advances.NewRepository(conn)

	if out.Stock, err = stock.NewService(repos.Stock); err != nil {
		return out, fmt.Errorf("stock service: %w", err)
	}
	if out.Products, err = products.NewService(repos.Products, repos.Stock); err != nil {
		return out, fmt.Errorf("product service: %w", err)
	}
	if out.Addresses, err = address.NewService(repos.Addresses, repos.Customers); err != nil {
		return out, fmt.Errorf("address service: %w", err)
	}
	out.Customers, err = customers.NewService(customers.ServiceParams{
		Repo:        repos.Customers,
		Addresses:   repos.Addresses,
		PhoneRegion: p.Config.App.PhoneRegion,
		Messages:    customers.Messages{BusinessName: p.Config.App.BusinessName, Location: loc},
		Now:         p.Now,
	})
	if err != nil {
		return out, fmt.Errorf("customer service: %w", err)
	}
	if out.Couriers, err = couriers.NewService(repos.Couriers, p.Config.App.PhoneRegion); err != nil {
		return out, fmt.Errorf("courier service: %w", err)
	}
	if out.Advances, err = advances.NewService(advanceRepo, repos.Couriers, loc, p.Now); err != nil {
		return out, fmt.Errorf("advance service: %w", err)
	}
	if out.Statistics, err = statistics.NewService(repos.Statistics, repos.Products, loc); err != nil {
		return out, fmt.Errorf("statistics service: %w", err)
	}
	if out.Notifications, err = notifications.NewService(notifications.NewRepository(conn), p.Now); err != nil {
		return out, fmt.Errorf("notification service: %w", err)
	}

	out.Sales, err = sales.NewService(sales.ServiceParams{
		UnitOfWork:    sales.NewGormUnitOfWork(p.DB, repos),
		Locker:        p.Locker,
		Advances:      advanceRepo,
		Logger:        p.Logger,
		Metrics:       p.Metrics,
		Location:      loc,
		DefaultMethod: enums.PaymentMethod(p.Config.Sales.DefaultPaymentMethod),
		Now:           p.Now,
	})
	if err != nil {
		return out, fmt.Errorf("sales service: %w", err)
	}
	if out.Reports, err = reports.NewService(out.Sales, out.Statistics, loc); err != nil {
		return out, fmt.Errorf("report service: %w", err)
	}
	return out, nil
}
