package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
)

// ItemRepository manages persistent cart lines.
type ItemRepository struct {
	db *gorm.DB
}

// NewItemRepository binds the repository to the provided DB handle.
func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *ItemRepository) WithTx(tx *gorm.DB) CartItemRepository {
	if tx == nil {
		return r
	}
	return &ItemRepository{db: tx}
}

func lineScope(cartID, productID uuid.UUID, variantID *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("cart_id = ? AND product_id = ?", cartID, productID)
		if variantID == nil {
			return db.Where("variant_id IS NULL")
		}
		return db.Where("variant_id = ?", *variantID)
	}
}

func (r *ItemRepository) FindLine(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).Scopes(lineScope(cartID, productID, variantID)).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByCart returns the lines with their product and variant, oldest first.
func (r *ItemRepository) ListByCart(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Variant").
		Where("cart_id = ?", cartID).
		Order("added_at ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *ItemRepository) Save(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", id).Error
}

func (r *ItemRepository) DeleteLine(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(lineScope(cartID, productID, variantID)).Delete(&models.CartItem{}).Error
}

func (r *ItemRepository) DeleteByCart(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
