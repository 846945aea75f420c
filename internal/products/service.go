package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
)

type repository interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
}

type stockLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.StockVariable, error)
}

// Service manages the product catalogue.
type Service interface {
	List(ctx context.Context) ([]ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input ProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Quote(ctx context.Context, id uuid.UUID, method enums.PaymentMethod, quantity int) (*Quote, error)
}

type service struct {
	repo  repository
	stock stockLookup
}

// NewService wires the catalogue with the stock registry used to validate bindings.
func NewService(repo repository, stock stockLookup) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "products repository required")
	}
	if stock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stock repository required")
	}
	return &service{repo: repo, stock: stock}, nil
}

func (s *service) List(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*product)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}
	product := input.toModel()
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	dto := FromModel(*product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}
	product := input.toModel()
	product.ID = id
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	dto := FromModel(*product)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !deleted {
		return pkgerrors.NotFound("product")
	}
	return nil
}

// Quote prices quantity units of a product for the given payment method.
func (s *service) Quote(ctx context.Context, id uuid.UUID, method enums.PaymentMethod, quantity int) (*Quote, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	price, ok := product.PriceFor(method)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
			WithDetails(map[string]any{"payment_method": method})
	}
	return &Quote{
		ProductID: id,
		Method:    method,
		Quantity:  quantity,
		UnitPrice: price,
		Subtotal:  price.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) validate(ctx context.Context, input *ProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	for method, price := range map[enums.PaymentMethod]decimal.Decimal{
		enums.PaymentMethodCredit: input.Prices.Credit,
		enums.PaymentMethodDebit:  input.Prices.Debit,
		enums.PaymentMethodCash:   input.Prices.Cash,
		enums.PaymentMethodPix:    input.Prices.Pix,
	} {
		if price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "prices must not be negative").
				WithDetails(map[string]any{"payment_method": method})
		}
	}
	if len(input.Bindings) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one stock binding is required")
	}

	ids := make([]uuid.UUID, 0, len(input.Bindings))
	for _, b := range input.Bindings {
		if !b.Interaction.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid stock interaction").
				WithDetails(map[string]any{"interaction": b.Interaction})
		}
		ids = append(ids, b.StockVariableID)
	}
	known, err := s.stock.FindByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock variables")
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown stock variable").
				WithDetails(map[string]any{"stock_variable_id": id})
		}
	}
	return nil
}
