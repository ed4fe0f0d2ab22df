package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
	"github.com/angelmondragon/souq-backoffice/pkg/pagination"
)

// ProductFilters narrows the admin product listing. Zero values are ignored.
type ProductFilters struct {
	Status      *enums.ProductStatus
	IsActive    *bool
	StockStatus *enums.StockStatus
	ProductType *enums.ProductType
	CategoryID  *uuid.UUID
	BrandID     *uuid.UUID
	Search      string
}

// ListProductsQuery is the repository form of a product listing request.
type ListProductsQuery struct {
	ProductFilters
	Limit  int
	Cursor *pagination.Cursor
}

// productRules mirrors the product columns that carry input constraints.
type productRules struct {
	Name              string              `json:"name" validate:"required,max=200"`
	SKU               string              `json:"sku" validate:"required,max=100"`
	Barcode           string              `json:"barcode" validate:"max=100"`
	ShortDescription  string              `json:"short_description" validate:"max=500"`
	ProductType       enums.ProductType   `json:"product_type" validate:"enum"`
	Status            enums.ProductStatus `json:"status" validate:"enum"`
	Price             decimal.Decimal     `json:"price" validate:"gte=0"`
	ComparePrice      *decimal.Decimal    `json:"compare_price" validate:"omitempty,gte=0"`
	CostPrice         *decimal.Decimal    `json:"cost_price" validate:"omitempty,gte=0"`
	TaxRate           decimal.Decimal     `json:"tax_rate" validate:"gte=0,lte=100"`
	Quantity          int                 `json:"quantity" validate:"gte=0"`
	LowStockThreshold int                 `json:"low_stock_threshold" validate:"gte=0"`
	MetaTitle         string              `json:"meta_title" validate:"max=200"`
	MetaDescription   string              `json:"meta_description" validate:"max=500"`
}

func rulesForProduct(p *models.Product) productRules {
	return productRules{
		Name:              p.Name,
		SKU:               p.SKU,
		Barcode:           p.Barcode,
		ShortDescription:  p.ShortDescription,
		ProductType:       p.ProductType,
		Status:            p.Status,
		Price:             p.Price,
		ComparePrice:      p.ComparePrice,
		CostPrice:         p.CostPrice,
		TaxRate:           p.TaxRate,
		Quantity:          p.Quantity,
		LowStockThreshold: p.LowStockThreshold,
		MetaTitle:         p.MetaTitle,
		MetaDescription:   p.MetaDescription,
	}
}

type variantRules struct {
	SKU          string           `json:"sku" validate:"required,max=100"`
	Price        *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	ComparePrice *decimal.Decimal `json:"compare_price" validate:"omitempty,gte=0"`
	Quantity     int              `json:"quantity" validate:"gte=0"`
}

// CategoryInput creates a category. The slug is derived from the name.
type CategoryInput struct {
	Name            string     `json:"name" validate:"required,max=100"`
	Description     string     `json:"description"`
	ParentID        *uuid.UUID `json:"parent_id"`
	ImagePath       *string    `json:"image_path"`
	IsActive        *bool      `json:"is_active"`
	Ordering        int        `json:"ordering"`
	MetaTitle       string     `json:"meta_title" validate:"max=200"`
	MetaDescription string     `json:"meta_description" validate:"max=500"`
}

type BrandInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	LogoPath    *string `json:"logo_path"`
	Description string  `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type AttributeInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type AttributeValueInput struct {
	AttributeID uuid.UUID `json:"attribute_id" validate:"required"`
	Value       string    `json:"value" validate:"required,max=100"`
	Color       string    `json:"color" validate:"omitempty,hexcolor"`
}
