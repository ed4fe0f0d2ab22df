package orders

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/internal/cart"
	"github.com/angelmondragon/souq-backoffice/internal/repo"
	"github.com/angelmondragon/souq-backoffice/pkg/config"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
	"github.com/angelmondragon/souq-backoffice/pkg/logger"
	"github.com/angelmondragon/souq-backoffice/pkg/metrics"
	"github.com/angelmondragon/souq-backoffice/pkg/pagination"
	"github.com/angelmondragon/souq-backoffice/pkg/validation"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order and quick order operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	AddItem(ctx context.Context, orderID uuid.UUID, input AddOrderItemInput) (*models.OrderItem, error)
	CalculateTotals(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	SetStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
	BulkSetStatus(ctx context.Context, ids []uuid.UUID, status enums.OrderStatus) (int, error)
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	ListOrders(ctx context.Context, filters OrderFilters, params pagination.Params) (pagination.Page[models.Order], error)

	CreateQuickOrder(ctx context.Context, input QuickOrderInput) (*models.QuickOrder, error)
	GetQuickOrder(ctx context.Context, id uuid.UUID) (*models.QuickOrder, error)
	SetQuickOrderStatus(ctx context.Context, id uuid.UUID, status enums.QuickOrderStatus) error
	BulkSetQuickOrderStatus(ctx context.Context, ids []uuid.UUID, status enums.QuickOrderStatus) (int, error)
	ListQuickOrders(ctx context.Context, filters QuickOrderFilters, params pagination.Params) (pagination.Page[models.QuickOrder], error)
}

type service struct {
	repo           Repository
	tx             txRunner
	sales          SalesRecorder
	carts          CartSource
	numberPrefix   string
	defaultCountry string
	metrics        *metrics.Domain
	logg           *logger.Logger
	now            func() time.Time
}

// ServiceParams bundles the order service dependencies. Sales and Carts are
// only needed by PlaceOrder.
type ServiceParams struct {
	Repo     Repository
	TxRunner txRunner
	Sales    SalesRecorder
	Carts    CartSource
	Config   config.OrdersConfig
	Metrics  *metrics.Domain
	Logger   *logger.Logger
}

// NewService builds the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Sales == nil {
		return nil, fmt.Errorf("sales recorder required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart source required")
	}
	prefix := params.Config.NumberPrefix
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	return &service{
		repo:           params.Repo,
		tx:             params.TxRunner,
		sales:          params.Sales,
		carts:          params.Carts,
		numberPrefix:   prefix,
		defaultCountry: params.Config.DefaultCountry,
		metrics:        params.Metrics,
		logg:           params.Logger,
		now:            time.Now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	order := input.toModel(s.defaultCountry)
	order.OrderType = input.OrderType
	if order.OrderType == "" {
		order.OrderType = enums.OrderTypeRegular
	}
	if _, err := s.repo.FindPaymentMethod(ctx, order.PaymentMethodID); err != nil {
		return nil, repo.MapError(err, "payment method")
	}
	assignOrderNumber(order, s.numberPrefix)
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, repo.MapError(err, "order")
	}
	s.metrics.OrderPlaced(string(order.OrderType))
	s.logg.Info(s.logg.WithOrderNumber(ctx, order.OrderNumber), "order created")
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		return nil, repo.MapError(err, "order")
	}
	return order, nil
}

// AddItem snapshots the product's name, sku, tax rate and price. A variant
// line is priced the way the cart prices it. Order totals are left as they
// are until CalculateTotals runs.
func (s *service) AddItem(ctx context.Context, orderID uuid.UUID, input AddOrderItemInput) (*models.OrderItem, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	var item *models.OrderItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if _, err := r.FindOrder(ctx, orderID); err != nil {
			return repo.MapError(err, "order")
		}
		product, err := r.FindProduct(ctx, input.ProductID)
		if err != nil {
			return repo.MapError(err, "product")
		}
		var variant *models.ProductVariant
		if input.VariantID != nil {
			variant, err = r.FindVariant(ctx, *input.VariantID)
			if err != nil {
				return repo.MapError(err, "variant")
			}
			if variant.ProductID != product.ID {
				return pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to product")
			}
		}
		built := snapshotItem(orderID, *product, variant, input.Quantity)
		if err := r.CreateItems(ctx, []models.OrderItem{built}); err != nil {
			return err
		}
		item = &built
		return nil
	})
	if err != nil {
		return nil, repo.MapError(err, "order item")
	}
	return item, nil
}

func snapshotItem(orderID uuid.UUID, product models.Product, variant *models.ProductVariant, qty int) models.OrderItem {
	item := models.OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   product.ID,
		ProductName: product.Name,
		ProductSKU:  product.SKU,
		Price:       cart.UnitPrice(models.CartItem{Product: &product, Variant: variant}),
		Quantity:    qty,
		TaxRate:     product.TaxRate,
	}
	if variant != nil {
		id := variant.ID
		item.VariantID = &id
	}
	return item
}

// CalculateTotals recomputes and stores subtotal, tax and total from the
// order's current items.
func (s *service) CalculateTotals(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		found, err := r.FindOrder(ctx, orderID)
		if err != nil {
			return repo.MapError(err, "order")
		}
		ComputeTotals(found.Items, found.ShippingCost, found.DiscountAmount).apply(found)
		if err := r.UpdateTotals(ctx, found); err != nil {
			return err
		}
		order = found
		return nil
	})
	if err != nil {
		return nil, repo.MapError(err, "order")
	}
	return order, nil
}

// SetStatus moves the order to any known status. Entering confirmed, shipped
// or delivered stamps the matching time once.
func (s *service) SetStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").WithDetails(map[string]string{"status": "is not a known value"})
	}
	if err := s.repo.UpdateStatus(ctx, orderID, status, orderStampColumn(status), s.now().UTC()); err != nil {
		return repo.MapError(err, "order")
	}
	s.metrics.StatusChanged("order", string(status))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"order_id": orderID.String(), "status": string(status)}), "order status changed")
	return nil
}

// BulkSetStatus applies one of BulkOrderStatuses to every id and reports how
// many orders changed. Failures for single ids are collected, not fatal.
func (s *service) BulkSetStatus(ctx context.Context, ids []uuid.UUID, status enums.OrderStatus) (int, error) {
	if !slices.Contains(BulkOrderStatuses, status) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "status not allowed for bulk update").WithDetails(map[string]string{"status": string(status)})
	}
	var (
		updated int
		errs    error
	)
	for _, id := range ids {
		if err := s.SetStatus(ctx, id, status); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", id, err))
			continue
		}
		updated++
	}
	return updated, errs
}

func (s *service) ListOrders(ctx context.Context, filters OrderFilters, params pagination.Params) (pagination.Page[models.Order], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[models.Order]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	details := map[string]string{}
	if filters.Status != nil && !filters.Status.IsValid() {
		details["status"] = "is not a known value"
	}
	if filters.OrderType != nil && !filters.OrderType.IsValid() {
		details["order_type"] = "is not a known value"
	}
	if len(details) > 0 {
		return pagination.Page[models.Order]{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid filters").WithDetails(details)
	}

	rows, next, err := s.repo.ListOrders(ctx, ListOrdersQuery{OrderFilters: filters, Limit: params.Limit, Cursor: cursor})
	if err != nil {
		return pagination.Page[models.Order]{}, repo.MapError(err, "order")
	}
	page := pagination.Page[models.Order]{Items: rows}
	if next != nil {
		page.NextCursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}
