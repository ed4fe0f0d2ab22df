package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category is a node of the catalog tree; children are removed with their parent.
type Category struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name            string     `gorm:"column:name;not null"`
	Slug            string     `gorm:"column:slug;not null;uniqueIndex"`
	Description     string     `gorm:"column:description;not null;default:''"`
	ParentID        *uuid.UUID `gorm:"column:parent_id;type:uuid;index"`
	ImagePath       *string    `gorm:"column:image_path"`
	IsActive        bool       `gorm:"column:is_active;not null"`
	Ordering        int        `gorm:"column:ordering;not null;default:0"`
	MetaTitle       string     `gorm:"column:meta_title;not null;default:''"`
	MetaDescription string     `gorm:"column:meta_description;not null;default:''"`
	Parent          *Category  `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

type Brand struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null;uniqueIndex"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex"`
	LogoPath    *string   `gorm:"column:logo_path"`
	Description string    `gorm:"column:description;not null;default:''"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// ProductCategory links products and categories.
type ProductCategory struct {
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;primaryKey;index"`
}

// ProductImage stores the path of an uploaded image; the file itself lives elsewhere.
type ProductImage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Path      string    `gorm:"column:path;not null"`
	AltText   string    `gorm:"column:alt_text;not null;default:''"`
	Ordering  int       `gorm:"column:ordering;not null;default:0"`
	IsPrimary bool      `gorm:"column:is_primary;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *ProductImage) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

type Attribute struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name        string           `gorm:"column:name;not null;uniqueIndex"`
	Slug        string           `gorm:"column:slug;not null;uniqueIndex"`
	Description string           `gorm:"column:description;not null;default:''"`
	Values      []AttributeValue `gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Attribute) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// AttributeValue is unique per attribute; Color holds an optional hex code.
type AttributeValue struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	AttributeID uuid.UUID `gorm:"column:attribute_id;type:uuid;not null;uniqueIndex:idx_attribute_values_value"`
	Value       string    `gorm:"column:value;not null;uniqueIndex:idx_attribute_values_value"`
	Color       string    `gorm:"column:color;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *AttributeValue) BeforeCreate(tx *gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

// ProductVariant overrides price and stock of its product for one attribute combination.
type ProductVariant struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	ProductID    uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index"`
	SKU          string           `gorm:"column:sku;not null;uniqueIndex"`
	Price        *decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	ComparePrice *decimal.Decimal `gorm:"column:compare_price;type:numeric(12,2)"`
	Quantity     int              `gorm:"column:quantity;not null;default:0"`
	Weight       *decimal.Decimal `gorm:"column:weight;type:numeric(8,3)"`
	ImageID      *uuid.UUID       `gorm:"column:image_id;type:uuid"`
	IsActive     bool             `gorm:"column:is_active;not null"`
	Image        *ProductImage    `gorm:"foreignKey:ImageID;constraint:OnDelete:SET NULL"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

// ProductVariantAttribute links variants to the attribute values that define them.
type ProductVariantAttribute struct {
	VariantID        uuid.UUID `gorm:"column:variant_id;type:uuid;primaryKey"`
	AttributeValueID uuid.UUID `gorm:"column:attribute_value_id;type:uuid;primaryKey;index"`
}

// FinalPrice is the variant price, falling back to the product price.
func (v ProductVariant) FinalPrice(product Product) decimal.Decimal {
	if v.Price != nil {
		return *v.Price
	}
	return product.Price
}

// FinalComparePrice falls back to the product compare price; nil when neither is set.
func (v ProductVariant) FinalComparePrice(product Product) *decimal.Decimal {
	if v.ComparePrice != nil {
		return v.ComparePrice
	}
	return product.ComparePrice
}
