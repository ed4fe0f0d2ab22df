package orders

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/internal/repo"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
	"github.com/angelmondragon/souq-backoffice/pkg/pagination"
	"github.com/angelmondragon/souq-backoffice/pkg/validation"
)

// CreateQuickOrder records a pending account-free order. Quantity defaults
// to one; the request's IP and user agent are kept for review.
func (s *service) CreateQuickOrder(ctx context.Context, input QuickOrderInput) (*models.QuickOrder, error) {
	input.Phone = strings.TrimSpace(input.Phone)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	order := &models.QuickOrder{
		Name:      input.Name,
		Phone:     input.Phone,
		Email:     input.Email,
		ProductID: input.ProductID,
		VariantID: input.VariantID,
		Quantity:  input.Quantity,
		City:      input.City,
		District:  input.District,
		Address:   input.Address,
		Notes:     input.Notes,
		Status:    enums.QuickOrderStatusPending,
		UserAgent: input.UserAgent,
	}
	if input.IPAddress != "" {
		ip := input.IPAddress
		order.IPAddress = &ip
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		product, err := r.FindProduct(ctx, input.ProductID)
		if err != nil {
			return repo.MapError(err, "product")
		}
		if input.VariantID != nil {
			variant, err := r.FindVariant(ctx, *input.VariantID)
			if err != nil {
				return repo.MapError(err, "variant")
			}
			if variant.ProductID != product.ID {
				return pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to product")
			}
		}
		return r.CreateQuickOrder(ctx, order)
	})
	if err != nil {
		return nil, repo.MapError(err, "quick order")
	}
	s.metrics.OrderPlaced("quick_order")
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"quick_order_id": order.ID.String(),
		"product_id":     order.ProductID.String(),
	}), "quick order created")
	return order, nil
}

func (s *service) GetQuickOrder(ctx context.Context, id uuid.UUID) (*models.QuickOrder, error) {
	order, err := s.repo.FindQuickOrder(ctx, id)
	if err != nil {
		return nil, repo.MapError(err, "quick order")
	}
	return order, nil
}

// SetQuickOrderStatus stamps confirmed_at or processed_at the first time the
// matching status is entered.
func (s *service) SetQuickOrderStatus(ctx context.Context, id uuid.UUID, status enums.QuickOrderStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid quick order status").WithDetails(map[string]string{"status": "is not a known value"})
	}
	if err := s.repo.UpdateQuickOrderStatus(ctx, id, status, quickOrderStampColumn(status), s.now().UTC()); err != nil {
		return repo.MapError(err, "quick order")
	}
	s.metrics.StatusChanged("quick_order", string(status))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"quick_order_id": id.String(), "status": string(status)}), "quick order status changed")
	return nil
}

func (s *service) BulkSetQuickOrderStatus(ctx context.Context, ids []uuid.UUID, status enums.QuickOrderStatus) (int, error) {
	if !slices.Contains(BulkQuickOrderStatuses, status) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "status not allowed for bulk update").WithDetails(map[string]string{"status": string(status)})
	}
	var (
		updated int
		errs    error
	)
	for _, id := range ids {
		if err := s.SetQuickOrderStatus(ctx, id, status); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("quick order %s: %w", id, err))
			continue
		}
		updated++
	}
	return updated, errs
}

func (s *service) ListQuickOrders(ctx context.Context, filters QuickOrderFilters, params pagination.Params) (pagination.Page[models.QuickOrder], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[models.QuickOrder]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if filters.Status != nil && !filters.Status.IsValid() {
		return pagination.Page[models.QuickOrder]{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid filters").WithDetails(map[string]string{"status": "is not a known value"})
	}

	rows, next, err := s.repo.ListQuickOrders(ctx, ListQuickOrdersQuery{QuickOrderFilters: filters, Limit: params.Limit, Cursor: cursor})
	if err != nil {
		return pagination.Page[models.QuickOrder]{}, repo.MapError(err, "quick order")
	}
	page := pagination.Page[models.QuickOrder]{Items: rows}
	if next != nil {
		page.NextCursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}
