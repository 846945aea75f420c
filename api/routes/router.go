package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/gasflow-backend/api/controllers"
	"github.com/angelmondragon/gasflow-backend/api/middleware"
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
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
	"github.com/angelmondragon/gasflow-backend/pkg/logger"
)

// Services groups the domain services exposed over HTTP.
type Services struct {
	Sales         sales.Service
	Stock         stock.Service
	Products      products.Service
	Customers     customers.Service
	Addresses     address.Service
	Couriers      couriers.Service
	Advances      advances.Service
	Statistics    statistics.Service
	Notifications notifications.Service
	Reports       reports.Service
}

// Infra carries health probes and shared plumbing. Nil probes and a nil
// idempotency store are treated as disabled.
type Infra struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency middleware.IdempotencyStore
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	loc, err := cfg.App.Location()
	if err != nil || loc == nil {
		loc = time.UTC
	}
	defaultMethod := enums.PaymentMethod(cfg.Sales.DefaultPaymentMethod)
	if !defaultMethod.IsValid() {
		defaultMethod = enums.PaymentMethodCash
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, infra.DB, infra.Redis))
	})
	if infra.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if infra.Idempotency != nil {
			r.Use(middleware.Idempotency(infra.Idempotency, logg))
		}

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.ListSales(svc.Sales, loc, logg))
			r.Post("/", controllers.CreateSale(svc.Sales, logg))
			r.Get("/courier-cash", controllers.CourierCash(svc.Sales, loc, logg))
			r.Post("/complete-payments", controllers.CompletePayments(defaultMethod, logg))
			r.Get("/{saleId}", controllers.GetSale(svc.Sales, logg))
			r.Patch("/{saleId}", controllers.EditSale(svc.Sales, logg))
			r.Delete("/{saleId}", controllers.DeleteSale(svc.Sales, logg))
			r.Put("/{saleId}/status", controllers.SetSaleStatus(svc.Sales, logg))
			r.Post("/{saleId}/pending", controllers.ToggleSalePending(svc.Sales, logg))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Get("/", controllers.ListStock(svc.Stock, logg))
			r.Post("/", controllers.CreateStock(svc.Stock, logg))
			r.Get("/low", controllers.LowStock(svc.Stock, logg))
			r.Get("/{stockId}", controllers.GetStock(svc.Stock, logg))
			r.Put("/{stockId}", controllers.UpdateStock(svc.Stock, logg))
			r.Delete("/{stockId}", controllers.DeleteStock(svc.Stock, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svc.Products, logg))
			r.Post("/", controllers.CreateProduct(svc.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(svc.Products, logg))
			r.Put("/{productId}", controllers.UpdateProduct(svc.Products, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(svc.Products, logg))
			r.Get("/{productId}/quote", controllers.QuoteProduct(svc.Products, defaultMethod, logg))
			r.Get("/{productId}/sales", controllers.ProductSales(svc.Statistics, loc, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.ListCustomers(svc.Customers, logg))
			r.Post("/", controllers.CreateCustomer(svc.Customers, logg))
			r.Get("/inactive", controllers.InactiveCustomers(svc.Customers, logg))
			r.Get("/{customerId}", controllers.GetCustomer(svc.Customers, logg))
			r.Put("/{customerId}", controllers.UpdateCustomer(svc.Customers, logg))
			r.Delete("/{customerId}", controllers.DeleteCustomer(svc.Customers, logg))
			r.Get("/{customerId}/purchases", controllers.CustomerPurchases(svc.Customers, logg))
			r.Get("/{customerId}/summary", controllers.CustomerSummary(svc.Customers, logg))
			r.Get("/{customerId}/whatsapp", controllers.CustomerWhatsApp(svc.Customers, logg))
			r.Get("/{customerId}/addresses", controllers.CustomerAddresses(svc.Addresses, logg))
			r.Post("/{customerId}/addresses/{addressId}", controllers.LinkCustomerAddress(svc.Addresses, logg))
			r.Delete("/{customerId}/addresses/{addressId}", controllers.UnlinkCustomerAddress(svc.Addresses, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.ListAddresses(svc.Addresses, logg))
			r.Post("/", controllers.CreateAddress(svc.Addresses, logg))
			r.Get("/quadras", controllers.AddressQuadras(svc.Addresses, logg))
			r.Get("/{addressId}", controllers.GetAddress(svc.Addresses, logg))
			r.Put("/{addressId}", controllers.UpdateAddress(svc.Addresses, logg))
			r.Delete("/{addressId}", controllers.DeleteAddress(svc.Addresses, logg))
		})

		r.Route("/couriers", func(r chi.Router) {
			r.Get("/", controllers.ListCouriers(svc.Couriers, logg))
			r.Post("/", controllers.CreateCourier(svc.Couriers, logg))
			r.Get("/{courierId}", controllers.GetCourier(svc.Couriers, logg))
			r.Put("/{courierId}", controllers.UpdateCourier(svc.Couriers, logg))
			r.Delete("/{courierId}", controllers.DeleteCourier(svc.Couriers, logg))
			r.Post("/{courierId}/toggle", controllers.ToggleCourier(svc.Couriers, logg))
		})

		r.Route("/advances", func(r chi.Router) {
			r.Get("/", controllers.ListAdvances(svc.Advances, loc, logg))
			r.Post("/", controllers.CreateAdvance(svc.Advances, logg))
			r.Get("/totals", controllers.AdvanceTotals(svc.Advances, loc, logg))
			r.Put("/{advanceId}", controllers.UpdateAdvance(svc.Advances, logg))
			r.Delete("/{advanceId}", controllers.DeleteAdvance(svc.Advances, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svc.Notifications, logg))
			r.Post("/", controllers.CreateNotification(svc.Notifications, logg))
			r.Get("/active", controllers.ActiveNotifications(svc.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svc.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svc.Notifications, logg))
			r.Delete("/{notificationId}", controllers.DeleteNotification(svc.Notifications, logg))
		})

		r.Get("/statistics/products", controllers.ProductTotals(svc.Statistics, loc, logg))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/courier-cash.xlsx", controllers.CourierCashReport(svc.Reports, loc, logg))
			r.Get("/product-sales.xlsx", controllers.ProductSalesReport(svc.Reports, loc, logg))
		})
	})

	return r
}
