package enums

import "fmt"

// StockInteraction describes what selling one unit of a product does to a bound
// stock variable.
type StockInteraction string

const (
	StockInteractionReduces  StockInteraction = "reduz"
	StockInteractionNoEffect StockInteraction = "nao-altera"
	StockInteractionIncrease StockInteraction = "aumenta"
)

var validStockInteractions = []StockInteraction{
	StockInteractionReduces,
	StockInteractionNoEffect,
	StockInteractionIncrease,
}

// String implements fmt.Stringer.
func (s StockInteraction) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockInteraction.
func (s StockInteraction) IsValid() bool {
	for _, candidate := range validStockInteractions {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockInteraction converts raw input into a StockInteraction.
func ParseStockInteraction(value string) (StockInteraction, error) {
	for _, candidate := range validStockInteractions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock interaction %q", value)
}
