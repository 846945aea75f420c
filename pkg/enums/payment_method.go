package enums

import "fmt"

// PaymentMethod tags how part of a sale was settled. Each method carries its own
// product price.
type PaymentMethod string

const (
	PaymentMethodCredit PaymentMethod = "credito"
	PaymentMethodDebit  PaymentMethod = "debito"
	PaymentMethodCash   PaymentMethod = "dinheiro"
	PaymentMethodPix    PaymentMethod = "pix"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCredit,
	PaymentMethodDebit,
	PaymentMethodCash,
	PaymentMethodPix,
}

// PaymentMethods lists every accepted method in display order.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(validPaymentMethods))
	copy(out, validPaymentMethods)
	return out
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// CountsAsCourierCash reports whether money paid this way passes through the
// courier's hands. Instant transfers go straight to the business account.
func (p PaymentMethod) CountsAsCourierCash() bool {
	return p != PaymentMethodPix
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
