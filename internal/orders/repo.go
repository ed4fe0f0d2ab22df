package orders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/souq-backoffice/internal/repo"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/pagination"
)

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Rebind(tx)}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("product_name ASC, id ASC") }).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB(ctx).Omit(clause.Associations).Create(&items).Error
}

func (r *repository) ListItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.DB(ctx).
		Where("order_id = ?", orderID).
		Order("product_name ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateTotals writes only the derived money columns.
func (r *repository) UpdateTotals(ctx context.Context, order *models.Order) error {
	return r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"subtotal":   order.Subtotal,
			"tax_amount": order.TaxAmount,
			"total":      order.Total,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status any, stampColumn string, at time.Time) error {
	return r.setStatus(ctx, &models.Order{}, id, status, stampColumn, at)
}

func (r *repository) UpdateQuickOrderStatus(ctx context.Context, id uuid.UUID, status any, stampColumn string, at time.Time) error {
	return r.setStatus(ctx, &models.QuickOrder{}, id, status, stampColumn, at)
}

// setStatus writes status and, when stampColumn is set, fills that timestamp
// unless it already holds a value.
func (r *repository) setStatus(ctx context.Context, model any, id uuid.UUID, status any, stampColumn string, at time.Time) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": at,
	}
	if stampColumn != "" {
		updates[stampColumn] = gorm.Expr("COALESCE("+stampColumn+", ?)", at)
	}
	res := r.DB(ctx).Model(model).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ListOrders(ctx context.Context, query ListOrdersQuery) ([]models.Order, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)
	qb := r.DB(ctx).Model(&models.Order{})

	f := query.OrderFilters
	if f.Status != nil {
		qb = qb.Where("status = ?", *f.Status)
	}
	if f.PaymentStatus != nil {
		qb = qb.Where("payment_status = ?", *f.PaymentStatus)
	}
	if f.OrderType != nil {
		qb = qb.Where("order_type = ?", *f.OrderType)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		qb = qb.Where(
			"(LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ? OR customer_phone LIKE ?)",
			pattern, pattern, pattern, pattern,
		)
	}
	if query.Cursor != nil {
		qb = qb.Where("(created_at, id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var rows []models.Order
	if err := qb.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
		rows = rows[:limit]
	}
	return rows, next, nil
}

func (r *repository) CreateQuickOrder(ctx context.Context, order *models.QuickOrder) error {
	return r.DB(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) FindQuickOrder(ctx context.Context, id uuid.UUID) (*models.QuickOrder, error) {
	var order models.QuickOrder
	if err := r.DB(ctx).Preload("Product").Preload("Variant").Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListQuickOrders(ctx context.Context, query ListQuickOrdersQuery) ([]models.QuickOrder, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)
	qb := r.DB(ctx).Model(&models.QuickOrder{}).Preload("Product")

	f := query.QuickOrderFilters
	if f.Status != nil {
		qb = qb.Where("status = ?", *f.Status)
	}
	if city := strings.TrimSpace(f.City); city != "" {
		qb = qb.Where("city = ?", city)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		named := r.DB(ctx).Model(&models.Product{}).Select("id").Where("LOWER(name) LIKE ?", pattern)
		qb = qb.Where(
			"(LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ? OR product_id IN (?))",
			pattern, pattern, pattern, named,
		)
	}
	if query.Cursor != nil {
		qb = qb.Where("(created_at, id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var rows []models.QuickOrder
	if err := qb.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
		rows = rows[:limit]
	}
	return rows, next, nil
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.DB(ctx).Where("id = ?", id).First(&variant).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) FindPaymentMethod(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.DB(ctx).Where("id = ?", id).First(&method).Error; err != nil {
		return nil, err
	}
	return &method, nil
}
