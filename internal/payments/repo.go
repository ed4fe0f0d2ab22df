package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/souq-backoffice/internal/repo"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
)

// Repository defines payment and payment method persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateMethod(ctx context.Context, method *models.PaymentMethod) error
	FindMethod(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error)
	FindMethodByCode(ctx context.Context, code string) (*models.PaymentMethod, error)
	ListActiveMethods(ctx context.Context) ([]models.PaymentMethod, error)
	CountMethodReferences(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteMethod(ctx context.Context, id uuid.UUID) error

	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	UpdatePayment(ctx context.Context, payment *models.Payment) error

	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ConfirmPaidOrder(ctx context.Context, orderID uuid.UUID, at time.Time) error
}

type repository struct {
	repo.Base
}

// NewRepository binds a payments repository to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Rebind(tx)}
}

func (r *repository) CreateMethod(ctx context.Context, method *models.PaymentMethod) error {
	return r.DB(ctx).Create(method).Error
}

func (r *repository) FindMethod(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.DB(ctx).First(&method, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *repository) FindMethodByCode(ctx context.Context, code string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.DB(ctx).Where("code = ?", code).First(&method).Error; err != nil {
		return nil, err
	}
	return &method, nil
}

// ListActiveMethods returns active methods by ordering, then name.
func (r *repository) ListActiveMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := r.DB(ctx).
		Where("is_active = ?", true).
		Order("ordering ASC").
		Order("name ASC").
		Find(&methods).Error
	return methods, err
}

// CountMethodReferences counts orders and payments pointing at the method.
func (r *repository) CountMethodReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	orders, err := r.Count(ctx, &models.Order{}, "payment_method_id = ?", id)
	if err != nil {
		return 0, err
	}
	payments, err := r.Count(ctx, &models.Payment{}, "payment_method_id = ?", id)
	if err != nil {
		return 0, err
	}
	return orders + payments, nil
}

func (r *repository) DeleteMethod(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Delete(&models.PaymentMethod{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.DB(ctx).Omit(clause.Associations).Create(payment).Error
}

func (r *repository) FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.DB(ctx).Preload("PaymentMethod").First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	return r.DB(ctx).Omit(clause.Associations).Save(payment).Error
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ConfirmPaidOrder flips the order to confirmed and paid. confirmed_at keeps
// its first value.
func (r *repository) ConfirmPaidOrder(ctx context.Context, orderID uuid.UUID, at time.Time) error {
	res := r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"status":         enums.OrderStatusConfirmed,
			"payment_status": true,
			"confirmed_at":   gorm.Expr("COALESCE(confirmed_at, ?)", at),
			"updated_at":     at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
