package couriers

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	"github.com/angelmondragon/gasflow-backend/pkg/phone"
)

type CourierDTO struct {
	ID           uuid.UUID `json:"id"`
	Identifier   string    `json:"identifier"`
	Name         string    `json:"name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	PhoneDisplay string    `json:"phone_display,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// CourierInput is the payload accepted by create and update. Active is only
// read on update; new couriers always start active.
type CourierInput struct {
	Identifier string `json:"identifier" validate:"required,max=64"`
	Name       string `json:"name" validate:"omitempty,max=120"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	Active     *bool  `json:"active,omitempty"`
}

func FromModel(m models.Courier, region string) CourierDTO {
	dto := CourierDTO{
		ID:         m.ID,
		Identifier: m.Identifier,
		Name:       m.Name,
		Phone:      m.Phone,
		Active:     m.Active,
		CreatedAt:  m.CreatedAt,
	}
	if m.Phone != "" {
		dto.PhoneDisplay = phone.Display(m.Phone, region)
	}
	return dto
}

func FromModels(rows []models.Courier, region string) []CourierDTO {
	out := make([]CourierDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row, region))
	}
	return out
}
