package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/pagination"
)

// Repository defines the persistence surface for orders and quick orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	CreateItems(ctx context.Context, items []models.OrderItem) error
	ListItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	UpdateTotals(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status any, stampColumn string, at time.Time) error
	ListOrders(ctx context.Context, query ListOrdersQuery) ([]models.Order, *pagination.Cursor, error)

	CreateQuickOrder(ctx context.Context, order *models.QuickOrder) error
	FindQuickOrder(ctx context.Context, id uuid.UUID) (*models.QuickOrder, error)
	UpdateQuickOrderStatus(ctx context.Context, id uuid.UUID, status any, stampColumn string, at time.Time) error
	ListQuickOrders(ctx context.Context, query ListQuickOrdersQuery) ([]models.QuickOrder, *pagination.Cursor, error)

	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	FindPaymentMethod(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error)
}

// SalesRecorder decrements stock and bumps sales counters for a sold product
// or variant.
type SalesRecorder interface {
	RecordSale(ctx context.Context, tx *gorm.DB, productID uuid.UUID, variantID *uuid.UUID, qty int) error
}

// CartSource yields the lines of a cart being checked out and empties it.
type CartSource interface {
	Lines(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) ([]models.CartItem, error)
	Clear(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}
