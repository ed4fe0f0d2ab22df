package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/pkg/enums"
)

type PaymentMethod struct {
	ID                    uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	Name                  string                  `gorm:"column:name;not null"`
	Code                  string                  `gorm:"column:code;not null;uniqueIndex"`
	Type                  enums.PaymentMethodType `gorm:"column:type;not null"`
	IsActive              bool                    `gorm:"column:is_active;not null"`
	Description           string                  `gorm:"column:description;not null;default:''"`
	Instructions          string                  `gorm:"column:instructions;not null;default:''"`
	Icon                  string                  `gorm:"column:icon;not null;default:''"`
	Ordering              int                     `gorm:"column:ordering;not null;default:0"`
	RequiresOnlinePayment bool                    `gorm:"column:requires_online_payment;not null;default:false"`
	ExtraFee              decimal.Decimal         `gorm:"column:extra_fee;type:numeric(10,2);not null"`
	MinOrderAmount        decimal.Decimal         `gorm:"column:min_order_amount;type:numeric(10,2);not null"`
	MaxOrderAmount        *decimal.Decimal        `gorm:"column:max_order_amount;type:numeric(10,2)"`
	CreatedAt             time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *PaymentMethod) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// Payment is the single payment attempt of an order.
type Payment struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	PaymentMethodID uuid.UUID           `gorm:"column:payment_method_id;type:uuid;not null;index"`
	Amount          decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency        string              `gorm:"column:currency;not null;default:'SAR'"`
	Status          enums.PaymentStatus `gorm:"column:status;not null;default:'pending';index"`
	TransactionID   string              `gorm:"column:transaction_id;not null;default:''"`
	GatewayResponse map[string]any      `gorm:"column:gateway_response;type:jsonb;serializer:json"`
	ReceiptPath     *string             `gorm:"column:receipt_path"`
	Order           *Order              `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaymentMethod   *PaymentMethod      `gorm:"foreignKey:PaymentMethodID;constraint:OnDelete:RESTRICT"`
	AuthorizedAt    *time.Time          `gorm:"column:authorized_at"`
	CapturedAt      *time.Time          `gorm:"column:captured_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
