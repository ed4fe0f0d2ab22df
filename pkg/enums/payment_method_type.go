package enums

import "fmt"

// PaymentMethodType classifies how a payment method collects money.
type PaymentMethodType string

const (
	PaymentMethodTypeCashOnDelivery PaymentMethodType = "cod"
	PaymentMethodTypeCreditCard     PaymentMethodType = "credit_card"
	PaymentMethodTypeBankTransfer   PaymentMethodType = "bank_transfer"
	PaymentMethodTypeWallet         PaymentMethodType = "wallet"
)

var validPaymentMethodTypes = []PaymentMethodType{
	PaymentMethodTypeCashOnDelivery,
	PaymentMethodTypeCreditCard,
	PaymentMethodTypeBankTransfer,
	PaymentMethodTypeWallet,
}

// String implements fmt.Stringer.
func (t PaymentMethodType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known PaymentMethodType.
func (t PaymentMethodType) IsValid() bool {
	for _, candidate := range validPaymentMethodTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParsePaymentMethodType converts raw input into a PaymentMethodType.
func ParsePaymentMethodType(value string) (PaymentMethodType, error) {
	for _, candidate := range validPaymentMethodTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method type %q", value)
}
