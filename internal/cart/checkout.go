package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
)

// CheckoutStore exposes a cart's lines to order placement inside the caller's
// transaction.
type CheckoutStore struct {
	carts CartRepository
	items CartItemRepository
}

// NewCheckoutStore wraps the cart repositories for checkout.
func NewCheckoutStore(carts CartRepository, items CartItemRepository) (*CheckoutStore, error) {
	if carts == nil || items == nil {
		return nil, fmt.Errorf("cart repositories required")
	}
	return &CheckoutStore{carts: carts, items: items}, nil
}

// Lines returns the cart's lines with product and variant loaded. A missing
// cart surfaces as gorm.ErrRecordNotFound.
func (c *CheckoutStore) Lines(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) ([]models.CartItem, error) {
	if _, err := c.carts.WithTx(tx).FindByID(ctx, cartID); err != nil {
		return nil, err
	}
	return c.items.WithTx(tx).ListByCart(ctx, cartID)
}

// Clear empties the cart after its lines were turned into an order.
func (c *CheckoutStore) Clear(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
	return clearCart(ctx, c.carts.WithTx(tx), c.items.WithTx(tx), cartID)
}
