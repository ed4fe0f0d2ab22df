package orders

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
)

// Totals are the money columns derived from an order's items.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals sums item prices and taxes. Total is subtotal plus tax plus
// shipping minus discount, rounded to cents.
func ComputeTotals(items []models.OrderItem, shipping, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.TotalPrice())
		tax = tax.Add(item.TaxAmount())
	}
	subtotal = subtotal.Round(2)
	tax = tax.Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax).Add(shipping).Sub(discount).Round(2),
	}
}

func (t Totals) apply(order *models.Order) {
	order.Subtotal = t.Subtotal
	order.TaxAmount = t.Tax
	order.Total = t.Total
}

// orderStampColumn names the timestamp set the first time an order enters
// status, or "" when the status carries none.
func orderStampColumn(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusConfirmed:
		return "confirmed_at"
	case enums.OrderStatusShipped:
		return "shipped_at"
	case enums.OrderStatusDelivered:
		return "delivered_at"
	}
	return ""
}

func quickOrderStampColumn(status enums.QuickOrderStatus) string {
	switch status {
	case enums.QuickOrderStatusConfirmed:
		return "confirmed_at"
	case enums.QuickOrderStatusProcessing:
		return "processed_at"
	}
	return ""
}

// BulkOrderStatuses are the statuses admins may apply to many orders at once.
var BulkOrderStatuses = []enums.OrderStatus{
	enums.OrderStatusConfirmed,
	enums.OrderStatusProcessing,
	enums.OrderStatusShipped,
}

// BulkQuickOrderStatuses are the statuses admins may apply to many quick
// orders at once.
var BulkQuickOrderStatuses = []enums.QuickOrderStatus{
	enums.QuickOrderStatusConfirmed,
	enums.QuickOrderStatusProcessing,
}
