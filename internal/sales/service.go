package sales

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/internal/address"
	"github.com/angelmondragon/gasflow-backend/internal/advances"
	"github.com/angelmondragon/gasflow-backend/pkg/daterange"
	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
	"github.com/angelmondragon/gasflow-backend/pkg/logger"
	"github.com/angelmondragon/gasflow-backend/pkg/metrics"
	"github.com/angelmondragon/gasflow-backend/pkg/pagination"
)

const (
	opCreate        = "create"
	opEdit          = "edit"
	opDelete        = "delete"
	opSetStatus     = "set_status"
	opTogglePending = "toggle_pending"
)

// AdvanceLedger sums salary advances per courier.
type AdvanceLedger interface {
	TotalsByCourier(ctx context.Context, filter advances.Filter) (map[uuid.UUID]decimal.Decimal, error)
}

// Service is the sale transaction engine. Every mutation keeps stock levels,
// sales statistics and customer purchase history consistent with the stored
// sale, or changes nothing.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Sale, error)
	Edit(ctx context.Context, id uuid.UUID, input EditInput) (*models.Sale, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status enums.SaleStatus) error
	TogglePending(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, filter ListFilter) (pagination.Page[models.Sale], error)
	CourierCash(ctx context.Context, from, to *time.Time) ([]CourierCashRow, error)
}

// ServiceParams groups the engine dependencies.
type ServiceParams struct {
	UnitOfWork    UnitOfWork
	Locker        Locker
	Advances      AdvanceLedger
	Logger        *logger.Logger
	Metrics       *metrics.SalesMetrics
	Location      *time.Location
	DefaultMethod enums.PaymentMethod
	Now           func() time.Time
}

type service struct {
	uow           UnitOfWork
	locker        Locker
	advances      AdvanceLedger
	logg          *logger.Logger
	metrics       *metrics.SalesMetrics
	loc           *time.Location
	defaultMethod enums.PaymentMethod
	now           func() time.Time
}

// NewService wires the engine. Locker defaults to in-process locks.
func NewService(params ServiceParams) (Service, error) {
	if params.UnitOfWork == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sales unit of work required")
	}
	if params.Locker == nil {
		params.Locker = NewLocalLocker()
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Location == nil {
		params.Location = time.UTC
	}
	if !params.DefaultMethod.IsValid() {
		params.DefaultMethod = enums.PaymentMethodCash
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		uow:           params.UnitOfWork,
		locker:        params.Locker,
		advances:      params.Advances,
		logg:          params.Logger,
		metrics:       params.Metrics,
		loc:           params.Location,
		defaultMethod: params.DefaultMethod,
		now:           params.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (sale *models.Sale, err error) {
	defer func() { s.metrics.ObserveOperation(opCreate, err) }()

	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a sale needs at least one item")
	}
	if len(input.Payments) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a sale needs at least one payment")
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}
	if err := validatePayments(input.Payments); err != nil {
		return nil, err
	}

	catalog, err := resolveCatalog(ctx, s.uow.Read().Products, inputProductIDs(input.Items), true)
	if err != nil {
		return nil, err
	}
	payments := toPayments(input.Payments)
	items, err := PriceItems(catalog, firstMethod(payments, s.defaultMethod), input.Items)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, stockKeys(catalog))
	if err != nil {
		return nil, err
	}
	defer release()

	sale = &models.Sale{
		ID:         uuid.New(),
		CustomerID: input.CustomerID,
		AddressID:  input.AddressID,
		CourierID:  input.CourierID,
		Items:      items,
		Payments:   payments,
		Status:     enums.SaleStatusToDeliver,
		Notes:      strings.TrimSpace(input.Notes),
		CreatedAt:  s.now().UTC(),
	}
	if input.Total != nil {
		sale.Total = *input.Total
	} else {
		sale.Total = ItemsTotal(items)
	}

	var adj adjustments
	err = s.uow.Do(ctx, func(c Collaborators) error {
		if err := s.snapshotCreate(ctx, c, sale); err != nil {
			return err
		}
		if err := ensureStock(ctx, c.Stock, catalog, sale.Items); err != nil {
			return err
		}
		method := firstMethod(sale.Payments, s.defaultMethod)
		for i, item := range sale.Items {
			if err := applyLine(ctx, c.Stock, catalog[item.ProductID], item.Quantity, &adj); err != nil {
				return err
			}
			if err := c.Statistics.Record(ctx, statisticsEntry(sale, i, item, method)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sales statistics")
			}
			if err := c.Customers.AppendPurchase(ctx, purchaseEntry(sale, i, item, method)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append purchase history")
			}
		}
		if err := c.Orders.Create(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store sale")
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Passthrough(err, pkgerrors.CodeDependency, "create sale")
	}

	s.recordAdjustments(ctx, sale.ID, adj)
	logCtx := s.logg.WithSaleID(ctx, sale.ID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"items": len(sale.Items),
		"total": sale.Total.String(),
	})
	s.logg.Info(logCtx, "sale.created")
	return sale, nil
}

func (s *service) Edit(ctx context.Context, id uuid.UUID, input EditInput) (sale *models.Sale, err error) {
	defer func() { s.metrics.ObserveOperation(opEdit, err) }()

	if err := validateItems(input.Items); err != nil {
		return nil, err
	}
	if input.Payments != nil {
		if err := validatePayments(input.Payments); err != nil {
			return nil, err
		}
	}

	releaseSale, err := s.locker.Lock(ctx, []string{saleKey(id)})
	if err != nil {
		return nil, err
	}
	defer releaseSale()

	read := s.uow.Read()
	current, err := s.load(ctx, read.Orders, id)
	if err != nil {
		return nil, err
	}

	replaceItems := len(input.Items) > 0
	var oldCatalog, newCatalog map[uuid.UUID]*models.Product
	var keys []string
	if replaceItems {
		if oldCatalog, err = resolveCatalog(ctx, read.Products, lineProductIDs(current.Items), false); err != nil {
			return nil, err
		}
		if newCatalog, err = resolveCatalog(ctx, read.Products, inputProductIDs(input.Items), true); err != nil {
			return nil, err
		}
		keys = append(stockKeys(oldCatalog), stockKeys(newCatalog)...)
	}
	releaseStock, err := s.locker.Lock(ctx, keys)
	if err != nil {
		return nil, err
	}
	defer releaseStock()

	var before, after decimal.Decimal
	var adj adjustments
	orphaned := false
	err = s.uow.Do(ctx, func(c Collaborators) error {
		stored, err := s.load(ctx, c.Orders, id)
		if err != nil {
			return err
		}
		sale = stored
		before = CourierCashValue(sale.Payments)

		if err := s.snapshotEdit(ctx, c, sale, input); err != nil {
			return err
		}
		if input.Payments != nil {
			sale.Payments = toPayments(input.Payments)
		}
		if input.Total != nil {
			sale.Total = *input.Total
		}
		if input.Notes != nil {
			sale.Notes = strings.TrimSpace(*input.Notes)
		}

		if replaceItems {
			if err := reverseLines(ctx, c.Stock, oldCatalog, sale.Items, &adj); err != nil {
				return err
			}
			if _, err := c.Customers.RemovePurchasesBySale(ctx, sale.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove purchase history")
			}
			// History rows reference the customer; a deleted one has none.
			if orphaned, err = customerMissing(ctx, c.Customers, sale.CustomerID); err != nil {
				return err
			}
			method := firstMethod(sale.Payments, s.defaultMethod)
			items, err := PriceItems(newCatalog, method, input.Items)
			if err != nil {
				return err
			}
			if err := ensureStock(ctx, c.Stock, newCatalog, items); err != nil {
				return err
			}
			for i, item := range items {
				if err := applyLine(ctx, c.Stock, newCatalog[item.ProductID], item.Quantity, &adj); err != nil {
					return err
				}
				if orphaned {
					continue
				}
				if err := c.Customers.AppendPurchase(ctx, purchaseEntry(sale, i, item, method)); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append purchase history")
				}
			}
			sale.Items = items
		}

		if err := c.Orders.Save(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store sale")
		}
		after = CourierCashValue(sale.Payments)
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Passthrough(err, pkgerrors.CodeDependency, "edit sale")
	}

	s.recordAdjustments(ctx, sale.ID, adj)
	delta := after.Sub(before)
	s.metrics.ObserveCashDelta(delta.InexactFloat64())
	logCtx := s.logg.WithSaleID(ctx, sale.ID.String())
	if sale.CourierID != uuid.Nil {
		logCtx = s.logg.WithCourierID(logCtx, sale.CourierID.String())
	}
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"items_replaced":      replaceItems,
		"courier_cash_before": before.String(),
		"courier_cash_after":  after.String(),
		"courier_cash_delta":  delta.String(),
	})
	if orphaned {
		s.logg.Warn(s.logg.WithField(logCtx, "customer_id", sale.CustomerID.String()), "customer no longer exists, purchase history not rebuilt")
	}
	s.logg.Info(logCtx, "sale.edited")
	return sale, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { s.metrics.ObserveOperation(opDelete, err) }()

	releaseSale, err := s.locker.Lock(ctx, []string{saleKey(id)})
	if err != nil {
		return err
	}
	defer releaseSale()

	read := s.uow.Read()
	current, err := s.load(ctx, read.Orders, id)
	if err != nil {
		return err
	}
	catalog, err := resolveCatalog(ctx, read.Products, lineProductIDs(current.Items), false)
	if err != nil {
		return err
	}
	releaseStock, err := s.locker.Lock(ctx, stockKeys(catalog))
	if err != nil {
		return err
	}
	defer releaseStock()

	var adj adjustments
	var removedStats, removedHistory int64
	err = s.uow.Do(ctx, func(c Collaborators) error {
		sale, err := s.load(ctx, c.Orders, id)
		if err != nil {
			return err
		}
		if err := reverseLines(ctx, c.Stock, catalog, sale.Items, &adj); err != nil {
			return err
		}
		if removedStats, err = c.Statistics.RemoveBySale(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove sales statistics")
		}
		if removedHistory, err = c.Customers.RemovePurchasesBySale(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove purchase history")
		}
		deleted, err := c.Orders.Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete sale")
		}
		if !deleted {
			return pkgerrors.NotFound("sale")
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Passthrough(err, pkgerrors.CodeDependency, "delete sale")
	}

	s.recordAdjustments(ctx, id, adj)
	logCtx := s.logg.WithSaleID(ctx, id.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"statistics_removed": removedStats,
		"history_removed":    removedHistory,
	})
	s.logg.Info(logCtx, "sale.deleted")
	return nil
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status enums.SaleStatus) (err error) {
	defer func() { s.metrics.ObserveOperation(opSetStatus, err) }()

	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid sale status").
			WithDetails(map[string]any{"status": status})
	}
	release, err := s.locker.Lock(ctx, []string{saleKey(id)})
	if err != nil {
		return err
	}
	defer release()

	found, err := s.uow.Read().Orders.UpdateFlags(ctx, id, Flags{Status: &status})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale status")
	}
	if !found {
		return pkgerrors.NotFound("sale")
	}
	return nil
}

func (s *service) TogglePending(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { s.metrics.ObserveOperation(opTogglePending, err) }()

	release, err := s.locker.Lock(ctx, []string{saleKey(id)})
	if err != nil {
		return err
	}
	defer release()

	orders := s.uow.Read().Orders
	sale, err := s.load(ctx, orders, id)
	if err != nil {
		return err
	}
	pending := !sale.PaymentPending
	if _, err := orders.UpdateFlags(ctx, id, Flags{PaymentPending: &pending}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle payment pending")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	return s.load(ctx, s.uow.Read().Orders, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) (pagination.Page[models.Sale], error) {
	r := daterange.Days(filter.From, filter.To, s.loc)
	filter.From, filter.To = r.From, r.To
	rows, err := s.uow.Read().Orders.List(ctx, filter)
	if err != nil {
		return pagination.Page[models.Sale]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	return pagination.Paginate(rows, filter.Limit, func(sale models.Sale) pagination.Cursor {
		return pagination.Cursor{CreatedAt: sale.CreatedAt, ID: sale.ID}
	}), nil
}

// CourierCash reconciles collected cash with advances for each courier over
// whole business days.
func (s *service) CourierCash(ctx context.Context, from, to *time.Time) ([]CourierCashRow, error) {
	r := daterange.Days(from, to, s.loc)
	read := s.uow.Read()
	rows, err := read.Orders.InRange(ctx, r.From, r.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales")
	}
	collected := CourierCashTotals(rows)

	advanced := map[uuid.UUID]decimal.Decimal{}
	if s.advances != nil {
		if advanced, err = s.advances.TotalsByCourier(ctx, advances.Filter{From: r.From, To: r.To}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum advances")
		}
	}

	identifiers := make(map[uuid.UUID]string, len(advanced))
	for courierID := range advanced {
		courier, err := read.Couriers.FindByID(ctx, courierID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load courier")
		}
		identifiers[courierID] = courier.Identifier
	}
	return reconcile(collected, advanced, identifiers), nil
}

func (s *service) load(ctx context.Context, orders OrderStore, id uuid.UUID) (*models.Sale, error) {
	sale, err := orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("sale")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return sale, nil
}

// snapshotCreate copies who and where onto a new sale. The customer must
// exist; address and courier are optional but must exist when given.
func (s *service) snapshotCreate(ctx context.Context, c Collaborators, sale *models.Sale) error {
	customer, err := c.Customers.FindByID(ctx, sale.CustomerID)
	if err != nil {
		return lookupError(err, "customer", sale.CustomerID)
	}
	sale.CustomerName = customer.Name
	sale.CustomerPhone = customer.Phone

	sale.AddressText = address.Unspecified
	if sale.AddressID != uuid.Nil {
		addr, err := c.Addresses.FindByID(ctx, sale.AddressID)
		if err != nil {
			return lookupError(err, "address", sale.AddressID)
		}
		sale.AddressText = address.Format(*addr)
	}

	if sale.CourierID != uuid.Nil {
		courier, err := c.Couriers.FindByID(ctx, sale.CourierID)
		if err != nil {
			return lookupError(err, "courier", sale.CourierID)
		}
		sale.CourierIdentifier = courier.Identifier
	}
	return nil
}

// snapshotEdit re-resolves the snapshots of the references being changed. A
// reference that no longer resolves keeps the previous snapshot text.
func (s *service) snapshotEdit(ctx context.Context, c Collaborators, sale *models.Sale, input EditInput) error {
	if input.CustomerID != nil {
		sale.CustomerID = *input.CustomerID
		customer, err := c.Customers.FindByID(ctx, sale.CustomerID)
		switch {
		case err == nil:
			sale.CustomerName = customer.Name
			sale.CustomerPhone = customer.Phone
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}
	}
	if input.AddressID != nil {
		sale.AddressID = *input.AddressID
		addr, err := c.Addresses.FindByID(ctx, sale.AddressID)
		switch {
		case err == nil:
			sale.AddressText = address.Format(*addr)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
		}
	}
	if input.CourierID != nil {
		sale.CourierID = *input.CourierID
		courier, err := c.Couriers.FindByID(ctx, sale.CourierID)
		switch {
		case err == nil:
			sale.CourierIdentifier = courier.Identifier
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load courier")
		}
	}
	return nil
}

func (s *service) recordAdjustments(ctx context.Context, saleID uuid.UUID, adj adjustments) {
	s.metrics.AddStockAdjustment(metrics.DirectionIncrease, adj.increased)
	s.metrics.AddStockAdjustment(metrics.DirectionDecrease, adj.decreased)
	for _, sf := range adj.shortfalls {
		s.metrics.AddReversalShortfall(sf.units)
		logCtx := s.logg.WithSaleID(ctx, saleID.String())
		s.logg.Warn(s.logg.WithFields(logCtx, map[string]any{
			"stock_variable_id": sf.stockVariableID.String(),
			"units":             sf.units,
		}), "stock already used, reversal left it unchanged")
	}
}

func customerMissing(ctx context.Context, customers CustomerRegistry, id uuid.UUID) (bool, error) {
	_, err := customers.FindByID(ctx, id)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return true, nil
	default:
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
}

func lookupError(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown %s", entity).
			WithDetails(map[string]any{entity + "_id": id})
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
}
