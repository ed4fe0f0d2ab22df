package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/internal/cart"
	"github.com/angelmondragon/souq-backoffice/internal/payments"
	"github.com/angelmondragon/souq-backoffice/internal/repo"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
	"github.com/angelmondragon/souq-backoffice/pkg/validation"
)

// PlaceOrder turns a cart into an order in one transaction: items are
// snapshotted, totals stored, stock and sales recorded and the cart emptied.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		lines, err := s.carts.Lines(ctx, tx, input.CartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return err
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		if err := checkStock(lines); err != nil {
			return err
		}

		built := input.toModel(s.defaultCountry)
		built.OrderType = enums.OrderTypeRegular
		assignOrderNumber(built, s.numberPrefix)
		built.ID = uuid.New()

		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, snapshotItem(built.ID, *line.Product, line.Variant, line.Quantity))
		}
		ComputeTotals(items, built.ShippingCost, built.DiscountAmount).apply(built)

		method, err := r.FindPaymentMethod(ctx, built.PaymentMethodID)
		if err != nil {
			return repo.MapError(err, "payment method")
		}
		if !payments.IsAvailableForOrder(*method, built.Total) {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment method is not available for this order").WithDetails(map[string]any{
				"payment_method": method.Code,
				"total":          built.Total.StringFixed(2),
			})
		}

		if err := r.CreateOrder(ctx, built); err != nil {
			return repo.MapError(err, "order")
		}
		if err := r.CreateItems(ctx, items); err != nil {
			return repo.MapError(err, "order item")
		}
		for _, item := range items {
			if err := s.sales.RecordSale(ctx, tx, item.ProductID, item.VariantID, item.Quantity); err != nil {
				return err
			}
		}
		if err := s.carts.Clear(ctx, tx, input.CartID); err != nil {
			return repo.MapError(err, "cart")
		}
		built.Items = items
		order = built
		return nil
	})
	if err != nil {
		return nil, repo.MapError(err, "order")
	}

	s.metrics.OrderPlaced(string(order.OrderType))
	s.logg.Info(s.logg.WithFields(s.logg.WithOrderNumber(ctx, order.OrderNumber), map[string]any{
		"cart_id": input.CartID.String(),
		"total":   order.Total.StringFixed(2),
	}), "order placed from cart")
	return order, nil
}

// checkStock rejects lines asking for more than a stock-managed product holds.
func checkStock(lines []models.CartItem) error {
	short := map[string]any{}
	for _, line := range lines {
		if line.Product == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart line refers to a missing product")
		}
		if !line.Product.ManageStock {
			continue
		}
		if available := cart.AvailableQuantity(line); line.Quantity > available {
			short[line.Product.SKU] = available
		}
	}
	if len(short) > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").WithDetails(short)
	}
	return nil
}
