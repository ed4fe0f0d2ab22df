package catalog

import (
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
	"github.com/angelmondragon/souq-backoffice/pkg/slug"
)

// ApplyStockRules derives StockStatus from the quantity when stock is managed.
// An exhausted product is also moved to the out_of_stock status; a low one
// keeps its status.
func ApplyStockRules(p *models.Product) {
	if p == nil || !p.ManageStock {
		return
	}
	switch {
	case p.Quantity <= 0:
		p.StockStatus = enums.StockStatusOutOfStock
		p.Status = enums.ProductStatusOutOfStock
	case p.Quantity <= p.LowStockThreshold:
		p.StockStatus = enums.StockStatusLowStock
	default:
		p.StockStatus = enums.StockStatusInStock
	}
}

// EnsureProductSlug assigns "<slug(name)>-<8 hex>" to products without a slug.
// Existing slugs are never regenerated.
func EnsureProductSlug(p *models.Product) {
	if p == nil || p.Slug != "" {
		return
	}
	p.Slug = slug.WithSuffix(p.Name)
}

// recordSale bumps the sales counter and, for managed stock, consumes quantity.
func recordSale(p *models.Product, qty int) {
	p.SalesCount += qty
	if p.ManageStock {
		p.Quantity -= qty
		ApplyStockRules(p)
	}
}

// recordVariantSale bumps the product's sales counter and, for managed stock,
// consumes the variant's quantity. The product quantity is not touched.
func recordVariantSale(p *models.Product, v *models.ProductVariant, qty int) {
	p.SalesCount += qty
	if p.ManageStock {
		v.Quantity -= qty
	}
}
