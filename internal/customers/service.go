package customers

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/internal/address"
	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
	"github.com/angelmondragon/gasflow-backend/pkg/phone"
)

type repository interface {
	Create(ctx context.Context, customer *models.Customer) error
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, search string) ([]models.Customer, error)
	PurchaseHistory(ctx context.Context, customerID uuid.UUID) ([]models.Purchase, error)
	LastPurchaseTimes(ctx context.Context) (map[uuid.UUID]time.Time, error)
}

type addressBook interface {
	ForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Address, error)
}

// Service manages the customer registry and its read-only purchase history.
// History entries are written by the sales engine only.
type Service interface {
	List(ctx context.Context, search string) ([]CustomerDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	Create(ctx context.Context, input CustomerInput) (*CustomerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input CustomerInput) (*CustomerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	PurchaseHistory(ctx context.Context, id uuid.UUID) ([]PurchaseDTO, error)
	LastPurchase(ctx context.Context, id uuid.UUID) (*PurchaseDTO, error)
	WithoutRecentPurchases(ctx context.Context, days int) ([]CustomerDTO, error)
	Summary(ctx context.Context, id uuid.UUID) (string, error)
	RegistrationMessage(ctx context.Context, id uuid.UUID) (string, error)
	WhatsAppLink(ctx context.Context, id uuid.UUID, message string) (string, error)
}

// ServiceParams groups the customer service dependencies.
type ServiceParams struct {
	Repo        repository
	Addresses   addressBook
	PhoneRegion string
	Messages    Messages
	Now         func() time.Time
}

type service struct {
	repo      repository
	addresses addressBook
	region    string
	messages  Messages
	now       func() time.Time
}

// NewService wires the customer registry.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "customer repository required")
	}
	if params.Addresses == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address repository required")
	}
	if params.PhoneRegion == "" {
		params.PhoneRegion = phone.DefaultRegion
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:      params.Repo,
		addresses: params.Addresses,
		region:    params.PhoneRegion,
		messages:  params.Messages,
		now:       params.Now,
	}, nil
}

func (s *service) List(ctx context.Context, search string) ([]CustomerDTO, error) {
	rows, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	last, err := s.repo.LastPurchaseTimes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load last purchases")
	}
	out := make([]CustomerDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.toDTO(row, last))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*row, s.region)
	history, err := s.repo.PurchaseHistory(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase history")
	}
	if len(history) > 0 {
		last := history[0].PurchasedAt
		dto.LastPurchaseAt = &last
	}
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CustomerInput) (*CustomerDTO, error) {
	row := &models.Customer{}
	if err := s.apply(row, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	dto := FromModel(*row, s.region)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input CustomerInput) (*CustomerDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(row, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	dto := FromModel(*row, s.region)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	if !deleted {
		return pkgerrors.NotFound("customer")
	}
	return nil
}

func (s *service) PurchaseHistory(ctx context.Context, id uuid.UUID) ([]PurchaseDTO, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.repo.PurchaseHistory(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase history")
	}
	out := make([]PurchaseDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, PurchaseFromModel(row))
	}
	return out, nil
}

func (s *service) LastPurchase(ctx context.Context, id uuid.UUID) (*PurchaseDTO, error) {
	history, err := s.PurchaseHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	return &history[0], nil
}

// WithoutRecentPurchases lists customers that have not bought in the last
// days days, customers that never bought first, then by oldest last purchase.
// days <= 0 ranks every customer.
func (s *service) WithoutRecentPurchases(ctx context.Context, days int) ([]CustomerDTO, error) {
	rows, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	last, err := s.repo.LastPurchaseTimes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load last purchases")
	}

	var cutoff time.Time
	if days > 0 {
		cutoff = s.now().AddDate(0, 0, -days)
	}

	out := make([]CustomerDTO, 0, len(rows))
	for _, row := range rows {
		if at, ok := last[row.ID]; ok && days > 0 && !at.Before(cutoff) {
			continue
		}
		out = append(out, s.toDTO(row, last))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastPurchaseAt, out[j].LastPurchaseAt
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return true
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})
	return out, nil
}

func (s *service) Summary(ctx context.Context, id uuid.UUID) (string, error) {
	customer, addrs, err := s.contactData(ctx, id)
	if err != nil {
		return "", err
	}
	history, err := s.repo.PurchaseHistory(ctx, id)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase history")
	}
	return s.messages.Summary(*customer, s.displayPhone(customer.Phone), addrs, history), nil
}

func (s *service) RegistrationMessage(ctx context.Context, id uuid.UUID) (string, error) {
	customer, addrs, err := s.contactData(ctx, id)
	if err != nil {
		return "", err
	}
	return s.messages.Registration(*customer, s.displayPhone(customer.Phone), addrs), nil
}

func (s *service) WhatsAppLink(ctx context.Context, id uuid.UUID, message string) (string, error) {
	customer, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if customer.Phone == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "customer has no phone number")
	}
	link, err := phone.WhatsAppLink(customer.Phone, s.region, message)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer phone")
	}
	return link, nil
}

func (s *service) contactData(ctx context.Context, id uuid.UUID) (*models.Customer, []string, error) {
	customer, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.addresses.ForCustomer(ctx, id)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer addresses")
	}
	addrs := make([]string, 0, len(rows))
	for _, row := range rows {
		addrs = append(addrs, address.Format(row))
	}
	return customer, addrs, nil
}

func (s *service) apply(row *models.Customer, input CustomerInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	row.Name = name
	row.Notes = strings.TrimSpace(input.Notes)
	row.Phone = ""
	if raw := strings.TrimSpace(input.Phone); raw != "" {
		normalized, err := phone.Normalize(raw, s.region)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid phone number").
				WithDetails(map[string]any{"phone": raw})
		}
		row.Phone = normalized
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("customer")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return row, nil
}

func (s *service) toDTO(row models.Customer, last map[uuid.UUID]time.Time) CustomerDTO {
	dto := FromModel(row, s.region)
	if at, ok := last[row.ID]; ok {
		at := at
		dto.LastPurchaseAt = &at
	}
	return dto
}

func (s *service) displayPhone(raw string) string {
	if raw == "" {
		return ""
	}
	return phone.Display(raw, s.region)
}
