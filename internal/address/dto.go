package address

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
)

// AddressDTO is the API view of an address, with its printable form.
type AddressDTO struct {
	ID          uuid.UUID `json:"id"`
	Quadra      string    `json:"quadra"`
	Alameda     string    `json:"alameda"`
	QI          string    `json:"qi"`
	Lote        string    `json:"lote"`
	Casa        string    `json:"casa"`
	Complemento string    `json:"complemento"`
	Formatted   string    `json:"formatted"`
}

// AddressInput carries editable address parts.
type AddressInput struct {
	Quadra      string `json:"quadra" validate:"max=60"`
	Alameda     string `json:"alameda" validate:"max=60"`
	QI          string `json:"qi" validate:"max=60"`
	Lote        string `json:"lote" validate:"max=60"`
	Casa        string `json:"casa" validate:"max=60"`
	Complemento string `json:"complemento" validate:"max=200"`
}

// FromModel maps an address into its DTO.
func FromModel(m models.Address) AddressDTO {
	return AddressDTO{
		ID:          m.ID,
		Quadra:      m.Quadra,
		Alameda:     m.Alameda,
		QI:          m.QI,
		Lote:        m.Lote,
		Casa:        m.Casa,
		Complemento: m.Complemento,
		Formatted:   Format(m),
	}
}

// FromModels maps a slice of addresses.
func FromModels(rows []models.Address) []AddressDTO {
	out := make([]AddressDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}

func (in AddressInput) apply(m *models.Address) {
	m.Quadra = in.Quadra
	m.Alameda = in.Alameda
	m.QI = in.QI
	m.Lote = in.Lote
	m.Casa = in.Casa
	m.Complemento = in.Complemento
}
