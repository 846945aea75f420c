package enums

import "fmt"

// SaleStatus is the delivery state of a sale. Any value may follow any other.
type SaleStatus string

const (
	SaleStatusToDeliver  SaleStatus = "a-entregar"
	SaleStatusDelivering SaleStatus = "entregando"
	SaleStatusDelivered  SaleStatus = "entregue"
)

var validSaleStatuses = []SaleStatus{
	SaleStatusToDeliver,
	SaleStatusDelivering,
	SaleStatusDelivered,
}

// String implements fmt.Stringer.
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleStatus.
func (s SaleStatus) IsValid() bool {
	for _, candidate := range validSaleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSaleStatus converts raw input into a SaleStatus.
func ParseSaleStatus(value string) (SaleStatus, error) {
	for _, candidate := range validSaleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale status %q", value)
}
