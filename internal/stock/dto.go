package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
)

// Level buckets a quantity for the stock dashboard.
type Level string

const (
	LevelCritical Level = "critico"
	LevelLow      Level = "baixo"
	LevelNormal   Level = "normal"

	criticalThreshold = 5
	lowThreshold      = 15
)

// LevelFor classifies a quantity.
func LevelFor(quantity int) Level {
	switch {
	case quantity <= criticalThreshold:
		return LevelCritical
	case quantity <= lowThreshold:
		return LevelLow
	default:
		return LevelNormal
	}
}

// VariableDTO is the API view of a stock variable.
type VariableDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Level     Level     `json:"level"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromModel maps a persisted variable into its DTO.
func FromModel(m models.StockVariable) VariableDTO {
	return VariableDTO{
		ID:        m.ID,
		Name:      m.Name,
		Quantity:  m.Quantity,
		Level:     LevelFor(m.Quantity),
		UpdatedAt: m.UpdatedAt,
	}
}

// FromModels maps a slice of variables.
func FromModels(rows []models.StockVariable) []VariableDTO {
	out := make([]VariableDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}

// CreateInput holds the fields of a new stock variable.
type CreateInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// UpdateInput holds optional changes to a stock variable.
type UpdateInput struct {
	Name     *string `json:"name" validate:"omitempty,max=120"`
	Quantity *int    `json:"quantity" validate:"omitempty,gte=0"`
}
