package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/souq-backoffice/internal/repo"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
	"github.com/angelmondragon/souq-backoffice/pkg/pagination"
)

type repository struct {
	repo.Base
}

// NewRepository binds a catalog repository to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Rebind(tx)}
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Omit(clause.Associations).Create(product).Error
}

func (r *repository) UpdateProduct(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Omit(clause.Associations).Save(product).Error
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductForUpdate locks the product row on Postgres; SQLite serialises
// writers already and ignores the clause.
func (r *repository) FindProductForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	db := r.DB(ctx)
	if db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) ReplaceProductCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	db := r.DB(ctx)
	if err := db.Where("product_id = ?", productID).Delete(&models.ProductCategory{}).Error; err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	links := make([]models.ProductCategory, 0, len(categoryIDs))
	seen := map[uuid.UUID]struct{}{}
	for _, id := range categoryIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		links = append(links, models.ProductCategory{ProductID: productID, CategoryID: id})
	}
	return db.Create(&links).Error
}

func (r *repository) ListProductCategoryIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB(ctx).
		Model(&models.ProductCategory{}).
		Where("product_id = ?", productID).
		Pluck("category_id", &ids).Error
	return ids, err
}

func (r *repository) IncrementProductViews(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListProducts returns products ordered by created_at DESC, id DESC plus the
// cursor of the next page, if any.
func (r *repository) ListProducts(ctx context.Context, query ListProductsQuery) ([]models.Product, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)
	qb := r.DB(ctx).Model(&models.Product{})

	f := query.ProductFilters
	if f.Status != nil {
		qb = qb.Where("status = ?", *f.Status)
	}
	if f.IsActive != nil {
		qb = qb.Where("is_active = ?", *f.IsActive)
	}
	if f.StockStatus != nil {
		qb = qb.Where("stock_status = ?", *f.StockStatus)
	}
	if f.ProductType != nil {
		qb = qb.Where("product_type = ?", *f.ProductType)
	}
	if f.BrandID != nil {
		qb = qb.Where("brand_id = ?", *f.BrandID)
	}
	if f.CategoryID != nil {
		linked := r.DB(ctx).Model(&models.ProductCategory{}).Select("product_id").Where("category_id = ?", *f.CategoryID)
		qb = qb.Where("id IN (?)", linked)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		qb = qb.Where(
			"(LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(barcode) LIKE ? OR LOWER(description) LIKE ?)",
			pattern, pattern, pattern, pattern,
		)
	}
	if query.Cursor != nil {
		qb = qb.Where("(created_at, id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var rows []models.Product
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

func (r *repository) CountProductOrderItems(ctx context.Context, productID uuid.UUID) (int64, error) {
	return r.Count(ctx, &models.OrderItem{}, "product_id = ?", productID)
}

// DeleteProduct removes the product and every row that cascades from it.
func (r *repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	db := r.DB(ctx)
	variantIDs := db.Model(&models.ProductVariant{}).Select("id").Where("product_id = ?", id)

	steps := []func() error{
		func() error {
			return db.Where("variant_id IN (?)", variantIDs).Delete(&models.ProductVariantAttribute{}).Error
		},
		func() error { return db.Where("product_id = ?", id).Delete(&models.CartItem{}).Error },
		func() error { return db.Where("product_id = ?", id).Delete(&models.QuickOrder{}).Error },
		func() error { return db.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error },
		func() error { return db.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error },
		func() error { return db.Where("product_id = ?", id).Delete(&models.ProductCategory{}).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	res := db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) SaveImage(ctx context.Context, image *models.ProductImage) error {
	if image.ID == uuid.Nil {
		return r.DB(ctx).Create(image).Error
	}
	return r.DB(ctx).Save(image).Error
}

func (r *repository) ClearPrimaryImages(ctx context.Context, productID uuid.UUID) error {
	return r.DB(ctx).
		Model(&models.ProductImage{}).
		Where("product_id = ? AND is_primary = ?", productID, true).
		Update("is_primary", false).Error
}

// FindPrimaryImage prefers the flagged image and falls back to the first by ordering.
func (r *repository) FindPrimaryImage(ctx context.Context, productID uuid.UUID) (*models.ProductImage, error) {
	var image models.ProductImage
	err := r.DB(ctx).
		Where("product_id = ?", productID).
		Order("is_primary DESC").
		Order("ordering ASC").
		Order("created_at ASC").
		First(&image).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *repository) SaveVariant(ctx context.Context, variant *models.ProductVariant) error {
	if variant.ID == uuid.Nil {
		return r.DB(ctx).Omit(clause.Associations).Create(variant).Error
	}
	return r.DB(ctx).Omit(clause.Associations).Save(variant).Error
}

func (r *repository) ReplaceVariantAttributes(ctx context.Context, variantID uuid.UUID, valueIDs []uuid.UUID) error {
	db := r.DB(ctx)
	if err := db.Where("variant_id = ?", variantID).Delete(&models.ProductVariantAttribute{}).Error; err != nil {
		return err
	}
	if len(valueIDs) == 0 {
		return nil
	}
	links := make([]models.ProductVariantAttribute, 0, len(valueIDs))
	for _, id := range valueIDs {
		links = append(links, models.ProductVariantAttribute{VariantID: variantID, AttributeValueID: id})
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

func (r *repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.DB(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) FindVariantForUpdate(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	db := r.DB(ctx)
	if db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var variant models.ProductVariant
	if err := db.First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) CountVariantOrderItems(ctx context.Context, variantID uuid.UUID) (int64, error) {
	return r.Count(ctx, &models.OrderItem{}, "variant_id = ?", variantID)
}

// DeleteVariant drops cart lines of the variant and detaches quick orders.
func (r *repository) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	db := r.DB(ctx)
	if err := db.Where("variant_id = ?", id).Delete(&models.ProductVariantAttribute{}).Error; err != nil {
		return err
	}
	if err := db.Where("variant_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if err := db.Model(&models.QuickOrder{}).Where("variant_id = ?", id).Update("variant_id", nil).Error; err != nil {
		return err
	}
	res := db.Delete(&models.ProductVariant{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CountActiveProducts(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB(ctx).
		Model(&models.Product{}).
		Joins("JOIN product_categories pc ON pc.product_id = products.id").
		Where("pc.category_id = ?", categoryID).
		Where("products.is_active = ? AND products.status = ?", true, enums.ProductStatusPublished).
		Count(&n).Error
	return n, err
}
