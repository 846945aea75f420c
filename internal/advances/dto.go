package advances

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
)

type AdvanceDTO struct {
	ID          uuid.UUID       `json:"id"`
	CourierID   uuid.UUID       `json:"courier_id"`
	Amount      decimal.Decimal `json:"amount"`
	AdvancedAt  time.Time       `json:"advanced_at"`
	Description string          `json:"description,omitempty"`
}

// AdvanceInput creates or replaces an advance. A nil AdvancedAt means now.
type AdvanceInput struct {
	CourierID   uuid.UUID       `json:"courier_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	AdvancedAt  *time.Time      `json:"advanced_at,omitempty"`
	Description string          `json:"description" validate:"omitempty,max=500"`
}

// CourierTotal is the advanced amount of one courier in a period.
type CourierTotal struct {
	CourierID uuid.UUID       `json:"courier_id"`
	Total     decimal.Decimal `json:"total"`
}

func FromModel(m models.CashAdvance) AdvanceDTO {
	return AdvanceDTO{
		ID:          m.ID,
		CourierID:   m.CourierID,
		Amount:      m.Amount,
		AdvancedAt:  m.AdvancedAt,
		Description: m.Description,
	}
}

func FromModels(rows []models.CashAdvance) []AdvanceDTO {
	out := make([]AdvanceDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}
