package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/pkg/enums"
)

// Order is the snapshot of a purchase. OrderNumber is assigned once and the
// money columns are only refreshed by an explicit totals calculation.
type Order struct {
	ID                     uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber            string            `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID             *uuid.UUID        `gorm:"column:customer_id;type:uuid;index"`
	CustomerName           string            `gorm:"column:customer_name;not null"`
	CustomerEmail          string            `gorm:"column:customer_email;not null;default:''"`
	CustomerPhone          string            `gorm:"column:customer_phone;not null"`
	OrderType              enums.OrderType   `gorm:"column:order_type;not null;default:'regular'"`
	ShippingCountry        string            `gorm:"column:shipping_country;not null;default:'Saudi Arabia'"`
	ShippingCity           string            `gorm:"column:shipping_city;not null"`
	ShippingDistrict       string            `gorm:"column:shipping_district;not null;default:''"`
	ShippingAddress        string            `gorm:"column:shipping_address;not null"`
	ShippingBuildingNumber string            `gorm:"column:shipping_building_number;size:50;not null;default:''"`
	ShippingPostalCode     string            `gorm:"column:shipping_postal_code;size:20;not null;default:''"`
	Subtotal               decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxAmount              decimal.Decimal   `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	ShippingCost           decimal.Decimal   `gorm:"column:shipping_cost;type:numeric(10,2);not null"`
	DiscountAmount         decimal.Decimal   `gorm:"column:discount_amount;type:numeric(10,2);not null"`
	Total                  decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentMethodID        uuid.UUID         `gorm:"column:payment_method_id;type:uuid;not null;index"`
	PaymentStatus          bool              `gorm:"column:payment_status;not null;default:false"`
	Status                 enums.OrderStatus `gorm:"column:status;not null;default:'pending';index"`
	Notes                  string            `gorm:"column:notes;not null;default:''"`
	Customer               *User             `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL"`
	PaymentMethod          *PaymentMethod    `gorm:"foreignKey:PaymentMethodID;constraint:OnDelete:RESTRICT"`
	Items                  []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ConfirmedAt            *time.Time        `gorm:"column:confirmed_at"`
	ShippedAt              *time.Time        `gorm:"column:shipped_at"`
	DeliveredAt            *time.Time        `gorm:"column:delivered_at"`
	CreatedAt              time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt              time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem copies product name, sku, price and tax rate at purchase time.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	VariantID   *uuid.UUID      `gorm:"column:variant_id;type:uuid;index"`
	ProductName string          `gorm:"column:product_name;not null"`
	ProductSKU  string          `gorm:"column:product_sku;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	TaxRate     decimal.Decimal `gorm:"column:tax_rate;type:numeric(5,2);not null"`
	Product     *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Variant     *ProductVariant `gorm:"foreignKey:VariantID;constraint:OnDelete:RESTRICT"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

func (i OrderItem) TotalPrice() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i OrderItem) TaxAmount() decimal.Decimal {
	return i.Price.Mul(i.TaxRate).Div(hundred).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i OrderItem) TotalWithTax() decimal.Decimal {
	return i.TotalPrice().Add(i.TaxAmount())
}

// QuickOrder is an account-free request for a single product. It is never
// linked to an Order.
type QuickOrder struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	Phone       string                 `gorm:"column:phone;not null"`
	Name        string                 `gorm:"column:name;not null"`
	Email       string                 `gorm:"column:email;not null;default:''"`
	ProductID   uuid.UUID              `gorm:"column:product_id;type:uuid;not null;index"`
	VariantID   *uuid.UUID             `gorm:"column:variant_id;type:uuid"`
	Quantity    int                    `gorm:"column:quantity;not null"`
	City        string                 `gorm:"column:city;not null"`
	District    string                 `gorm:"column:district;not null;default:''"`
	Address     string                 `gorm:"column:address;not null;default:''"`
	Notes       string                 `gorm:"column:notes;not null;default:''"`
	Status      enums.QuickOrderStatus `gorm:"column:status;not null;default:'pending';index"`
	IPAddress   *string                `gorm:"column:ip_address"`
	UserAgent   string                 `gorm:"column:user_agent;not null;default:''"`
	Product     *Product               `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Variant     *ProductVariant        `gorm:"foreignKey:VariantID;constraint:OnDelete:SET NULL"`
	ConfirmedAt *time.Time             `gorm:"column:confirmed_at"`
	ProcessedAt *time.Time             `gorm:"column:processed_at"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (q *QuickOrder) BeforeCreate(tx *gorm.DB) error {
	ensureID(&q.ID)
	return nil
}
