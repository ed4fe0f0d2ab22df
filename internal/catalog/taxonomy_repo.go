package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
)

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.DB(ctx).Omit("Parent").Create(category).Error
}

func (r *repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.DB(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListChildCategoryIDs(ctx context.Context, parentIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(parentIDs) == 0 {
		return ids, nil
	}
	err := r.DB(ctx).
		Model(&models.Category{}).
		Where("parent_id IN ?", parentIDs).
		Pluck("id", &ids).Error
	return ids, err
}

// DeleteCategories removes the categories and their product links. Products stay.
func (r *repository) DeleteCategories(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	db := r.DB(ctx)
	if err := db.Where("category_id IN ?", ids).Delete(&models.ProductCategory{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", ids).Delete(&models.Category{}).Error
}

func (r *repository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	return r.DB(ctx).Create(brand).Error
}

// DeleteBrand detaches the brand's products before removing it.
func (r *repository) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	db := r.DB(ctx)
	if err := db.Model(&models.Product{}).Where("brand_id = ?", id).Update("brand_id", nil).Error; err != nil {
		return err
	}
	res := db.Delete(&models.Brand{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateAttribute(ctx context.Context, attribute *models.Attribute) error {
	return r.DB(ctx).Omit("Values").Create(attribute).Error
}

func (r *repository) CreateAttributeValue(ctx context.Context, value *models.AttributeValue) error {
	return r.DB(ctx).Create(value).Error
}

func (r *repository) FindAttribute(ctx context.Context, id uuid.UUID) (*models.Attribute, error) {
	var attribute models.Attribute
	if err := r.DB(ctx).Preload("Values").First(&attribute, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attribute, nil
}
