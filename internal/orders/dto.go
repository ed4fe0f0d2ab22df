package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
	"github.com/angelmondragon/souq-backoffice/pkg/pagination"
)

// ShippingInput is the customer and delivery block shared by order inputs.
type ShippingInput struct {
	CustomerID             *uuid.UUID      `json:"customer_id"`
	CustomerName           string          `json:"customer_name" validate:"required,max=100"`
	CustomerEmail          string          `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone          string          `json:"customer_phone" validate:"required,phone"`
	ShippingCountry        string          `json:"shipping_country" validate:"max=100"`
	ShippingCity           string          `json:"shipping_city" validate:"required,max=100"`
	ShippingDistrict       string          `json:"shipping_district" validate:"max=100"`
	ShippingAddress        string          `json:"shipping_address" validate:"required"`
	ShippingBuildingNumber string          `json:"shipping_building_number" validate:"max=50"`
	ShippingPostalCode     string          `json:"shipping_postal_code" validate:"max=20"`
	ShippingCost           decimal.Decimal `json:"shipping_cost" validate:"gte=0"`
	DiscountAmount         decimal.Decimal `json:"discount_amount" validate:"gte=0"`
	PaymentMethodID        uuid.UUID       `json:"payment_method_id" validate:"required"`
	Notes                  string          `json:"notes"`
}

// CreateOrderInput opens an order without items.
type CreateOrderInput struct {
	ShippingInput
	OrderType enums.OrderType `json:"order_type" validate:"omitempty,enum"`
}

// PlaceOrderInput checks out a cart.
type PlaceOrderInput struct {
	ShippingInput
	CartID uuid.UUID `json:"cart_id" validate:"required"`
}

// AddOrderItemInput adds one product line to an order.
type AddOrderItemInput struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  int        `json:"quantity" validate:"gte=1"`
}

func (in ShippingInput) toModel(defaultCountry string) *models.Order {
	country := in.ShippingCountry
	if country == "" {
		country = defaultCountry
	}
	return &models.Order{
		CustomerID:             in.CustomerID,
		CustomerName:           in.CustomerName,
		CustomerEmail:          in.CustomerEmail,
		CustomerPhone:          in.CustomerPhone,
		ShippingCountry:        country,
		ShippingCity:           in.ShippingCity,
		ShippingDistrict:       in.ShippingDistrict,
		ShippingAddress:        in.ShippingAddress,
		ShippingBuildingNumber: in.ShippingBuildingNumber,
		ShippingPostalCode:     in.ShippingPostalCode,
		ShippingCost:           in.ShippingCost,
		DiscountAmount:         in.DiscountAmount,
		PaymentMethodID:        in.PaymentMethodID,
		Notes:                  in.Notes,
		Status:                 enums.OrderStatusPending,
	}
}

// OrderFilters narrow the admin order list.
type OrderFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *bool
	OrderType     *enums.OrderType
	Search        string
}

// ListOrdersQuery is the repository form of an order listing.
type ListOrdersQuery struct {
	OrderFilters
	Limit  int
	Cursor *pagination.Cursor
}

// QuickOrderInput is an account-free order request.
type QuickOrderInput struct {
	Name      string     `json:"name" validate:"required,max=100"`
	Phone     string     `json:"phone" validate:"required,phone"`
	Email     string     `json:"email" validate:"omitempty,email"`
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  int        `json:"quantity" validate:"gte=0"`
	City      string     `json:"city" validate:"required,max=100"`
	District  string     `json:"district" validate:"max=100"`
	Address   string     `json:"address"`
	Notes     string     `json:"notes"`
	IPAddress string     `json:"ip_address" validate:"omitempty,ip"`
	UserAgent string     `json:"user_agent"`
}

// QuickOrderFilters narrow the admin quick order list. Search matches name,
// phone, email and product name.
type QuickOrderFilters struct {
	Status *enums.QuickOrderStatus
	City   string
	Search string
}

// ListQuickOrdersQuery is the repository form of a quick order listing.
type ListQuickOrdersQuery struct {
	QuickOrderFilters
	Limit  int
	Cursor *pagination.Cursor
}
