package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/pkg/enums"
)

// Product is the canonical catalog listing. StockStatus and, when stock is
// managed and exhausted, Status are derived on every save.
type Product struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name              string              `gorm:"column:name;not null"`
	Slug              string              `gorm:"column:slug;not null;uniqueIndex"`
	SKU               string              `gorm:"column:sku;not null;uniqueIndex"`
	Barcode           string              `gorm:"column:barcode;not null;default:'';index"`
	Description       string              `gorm:"column:description;not null"`
	ShortDescription  string              `gorm:"column:short_description;not null"`
	ProductType       enums.ProductType   `gorm:"column:product_type;not null;default:'simple'"`
	BrandID           *uuid.UUID          `gorm:"column:brand_id;type:uuid;index"`
	Price             decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null;index"`
	ComparePrice      *decimal.Decimal    `gorm:"column:compare_price;type:numeric(12,2)"`
	CostPrice         *decimal.Decimal    `gorm:"column:cost_price;type:numeric(12,2)"`
	TaxRate           decimal.Decimal     `gorm:"column:tax_rate;type:numeric(5,2);not null"`
	Quantity          int                 `gorm:"column:quantity;not null;default:0"`
	LowStockThreshold int                 `gorm:"column:low_stock_threshold;not null"`
	ManageStock       bool                `gorm:"column:manage_stock;not null"`
	StockStatus       enums.StockStatus   `gorm:"column:stock_status;not null;default:'in_stock'"`
	Weight            *decimal.Decimal    `gorm:"column:weight;type:numeric(8,3)"`
	Length            *decimal.Decimal    `gorm:"column:length;type:numeric(8,2)"`
	Width             *decimal.Decimal    `gorm:"column:width;type:numeric(8,2)"`
	Height            *decimal.Decimal    `gorm:"column:height;type:numeric(8,2)"`
	MetaTitle         string              `gorm:"column:meta_title;not null;default:''"`
	MetaDescription   string              `gorm:"column:meta_description;not null;default:''"`
	MetaKeywords      string              `gorm:"column:meta_keywords;not null;default:''"`
	Views             int                 `gorm:"column:views;not null;default:0"`
	SalesCount        int                 `gorm:"column:sales_count;not null;default:0"`
	WishlistCount     int                 `gorm:"column:wishlist_count;not null;default:0"`
	Status            enums.ProductStatus `gorm:"column:status;not null;default:'draft';index:idx_products_status_active"`
	IsActive          bool                `gorm:"column:is_active;not null;index:idx_products_status_active"`
	IsFeatured        bool                `gorm:"column:is_featured;not null;default:false"`
	IsBestseller      bool                `gorm:"column:is_bestseller;not null;default:false"`
	IsNew             bool                `gorm:"column:is_new;not null;default:false"`
	Ordering          int                 `gorm:"column:ordering;not null;default:0"`
	Brand             *Brand              `gorm:"foreignKey:BrandID;constraint:OnDelete:SET NULL"`
	Images            []ProductImage      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Variants          []ProductVariant    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

var hundred = decimal.NewFromInt(100)

// DiscountPercentage is the saving against the compare price, rounded to one
// decimal place, or zero when there is no higher compare price.
func (p Product) DiscountPercentage() decimal.Decimal {
	if p.ComparePrice == nil || !p.ComparePrice.GreaterThan(p.Price) {
		return decimal.Zero
	}
	return p.ComparePrice.Sub(p.Price).Div(*p.ComparePrice).Mul(hundred).Round(1)
}

func (p Product) PriceWithTax() decimal.Decimal {
	return p.Price.Add(p.Price.Mul(p.TaxRate).Div(hundred))
}
