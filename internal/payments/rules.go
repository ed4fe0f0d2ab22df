package payments

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
)

// IsAvailableForOrder reports whether method may pay an order of amount. An
// unset or zero maximum means no upper bound.
func IsAvailableForOrder(method models.PaymentMethod, amount decimal.Decimal) bool {
	if !method.IsActive {
		return false
	}
	if amount.LessThan(method.MinOrderAmount) {
		return false
	}
	if method.MaxOrderAmount != nil && !method.MaxOrderAmount.IsZero() && amount.GreaterThan(*method.MaxOrderAmount) {
		return false
	}
	return true
}

// CanRefund is true for captured and partially refunded payments.
func CanRefund(payment models.Payment) bool {
	switch payment.Status {
	case enums.PaymentStatusCaptured, enums.PaymentStatusPartiallyRefunded:
		return true
	}
	return false
}

// DefaultMethods are the payment methods every installation starts with.
func DefaultMethods() []models.PaymentMethod {
	return []models.PaymentMethod{
		{
			Name:                  "الدفع عند الاستلام",
			Code:                  "cash_on_delivery",
			Type:                  enums.PaymentMethodTypeCashOnDelivery,
			Description:           "ادفع نقداً عند استلام الطلب",
			IsActive:              true,
			RequiresOnlinePayment: false,
			Ordering:              1,
		},
		{
			Name:                  "بطاقة ائتمان",
			Code:                  "credit_card",
			Type:                  enums.PaymentMethodTypeCreditCard,
			Description:           "الدفع عبر البطاقة الائتمانية",
			IsActive:              true,
			RequiresOnlinePayment: true,
			Ordering:              2,
		},
	}
}
