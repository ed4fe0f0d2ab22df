package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
)

var hundred = decimal.NewFromInt(100)

// Summary is the live view of a cart. Nothing in it is stored.
type Summary struct {
	CartID        uuid.UUID       `json:"cart_id"`
	Count         int             `json:"count"`
	TotalQuantity int             `json:"total_quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	Total         decimal.Decimal `json:"total"`
	Items         []Line          `json:"items"`
}

// Line is one priced cart line.
type Line struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	VariantID   *uuid.UUID      `json:"variant_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Available   bool            `json:"available"`
}

// UnitPrice is the variant's final price when a variant is set and that price
// is non-zero, otherwise the product price.
func UnitPrice(item models.CartItem) decimal.Decimal {
	if item.Product == nil {
		return decimal.Zero
	}
	if item.Variant != nil {
		if price := item.Variant.FinalPrice(*item.Product); !price.IsZero() {
			return price
		}
	}
	return item.Product.Price
}

// AvailableQuantity is the stock of the variant, or of the product when the
// line has no variant.
func AvailableQuantity(item models.CartItem) int {
	if item.Variant != nil {
		return item.Variant.Quantity
	}
	if item.Product != nil {
		return item.Product.Quantity
	}
	return 0
}

func priceLine(item models.CartItem) Line {
	qty := decimal.NewFromInt(int64(item.Quantity))
	unit := UnitPrice(item)
	line := Line{
		ID:        item.ID,
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
		UnitPrice: unit,
		TaxRate:   decimal.Zero,
		Available: AvailableQuantity(item) >= item.Quantity,
	}
	if item.Product != nil {
		line.ProductName = item.Product.Name
		line.ProductSKU = item.Product.SKU
		line.TaxRate = item.Product.TaxRate
	}
	line.TotalPrice = unit.Mul(qty)
	line.TaxAmount = unit.Mul(line.TaxRate).Div(hundred).Mul(qty)
	return line
}

func summarize(cartID uuid.UUID, items []models.CartItem) *Summary {
	summary := &Summary{
		CartID:   cartID,
		Count:    len(items),
		Subtotal: decimal.Zero,
		TaxTotal: decimal.Zero,
		Items:    make([]Line, 0, len(items)),
	}
	for _, item := range items {
		line := priceLine(item)
		summary.TotalQuantity += line.Quantity
		summary.Subtotal = summary.Subtotal.Add(line.TotalPrice)
		summary.TaxTotal = summary.TaxTotal.Add(line.TaxAmount)
		summary.Items = append(summary.Items, line)
	}
	summary.Total = summary.Subtotal.Add(summary.TaxTotal)
	return summary
}
