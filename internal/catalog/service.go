package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/internal/repo"
	"github.com/angelmondragon/souq-backoffice/pkg/config"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
	"github.com/angelmondragon/souq-backoffice/pkg/logger"
	"github.com/angelmondragon/souq-backoffice/pkg/pagination"
	"github.com/angelmondragon/souq-backoffice/pkg/validation"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns catalog writes and the rules derived on save.
type Service interface {
	NewProduct(name, sku string, price decimal.Decimal) *models.Product
	SaveProduct(ctx context.Context, product *models.Product, categoryIDs []uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	IncrementSales(ctx context.Context, id uuid.UUID, qty int) error
	RecordSale(ctx context.Context, tx *gorm.DB, productID uuid.UUID, variantID *uuid.UUID, qty int) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, filters ProductFilters, params pagination.Params) (pagination.Page[models.Product], error)

	SaveImage(ctx context.Context, image *models.ProductImage) error
	PrimaryImage(ctx context.Context, productID uuid.UUID) (*models.ProductImage, error)

	SaveVariant(ctx context.Context, variant *models.ProductVariant, attributeValueIDs []uuid.UUID) error
	DeleteVariant(ctx context.Context, id uuid.UUID) error

	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ActiveProductsCount(ctx context.Context, categoryID uuid.UUID) (int64, error)
	CreateBrand(ctx context.Context, input BrandInput) (*models.Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error
	CreateAttribute(ctx context.Context, input AttributeInput) (*models.Attribute, error)
	CreateAttributeValue(ctx context.Context, input AttributeValueInput) (*models.AttributeValue, error)
}

type service struct {
	repo              Repository
	tx                txRunner
	defaultTaxRate    decimal.Decimal
	lowStockThreshold int
	logg              *logger.Logger
}

// NewService builds the catalog service. Defaults for new products come from cfg.
func NewService(repository Repository, tx txRunner, cfg config.CatalogConfig, logg *logger.Logger) (Service, error) {
	if repository == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	rate := decimal.NewFromInt(15)
	if raw := strings.TrimSpace(cfg.DefaultTaxRate); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse default tax rate: %w", err)
		}
		rate = parsed
	}
	threshold := cfg.DefaultLowStockThreshold
	if threshold <= 0 {
		threshold = 5
	}
	return &service{
		repo:              repository,
		tx:                tx,
		defaultTaxRate:    rate,
		lowStockThreshold: threshold,
		logg:              logg,
	}, nil
}

// NewProduct returns an unsaved product carrying the catalog defaults.
func (s *service) NewProduct(name, sku string, price decimal.Decimal) *models.Product {
	return &models.Product{
		Name:              name,
		SKU:               sku,
		Price:             price,
		TaxRate:           s.defaultTaxRate,
		LowStockThreshold: s.lowStockThreshold,
		ManageStock:       true,
		ProductType:       enums.ProductTypeSimple,
		Status:            enums.ProductStatusDraft,
		StockStatus:       enums.StockStatusInStock,
		IsActive:          true,
	}
}

// SaveProduct validates and normalises the product, then writes it with its
// category links in one transaction. A nil categoryIDs leaves links untouched.
func (s *service) SaveProduct(ctx context.Context, product *models.Product, categoryIDs []uuid.UUID) error {
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}
	if product.ProductType == "" {
		product.ProductType = enums.ProductTypeSimple
	}
	if product.Status == "" {
		product.Status = enums.ProductStatusDraft
	}
	if product.StockStatus == "" {
		product.StockStatus = enums.StockStatusInStock
	}
	if err := validation.Struct(rulesForProduct(product)); err != nil {
		return err
	}

	EnsureProductSlug(product)
	ApplyStockRules(product)

	isNew := product.ID == uuid.Nil
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if isNew {
			if err := r.CreateProduct(ctx, product); err != nil {
				return err
			}
		} else if err := r.UpdateProduct(ctx, product); err != nil {
			return err
		}
		if categoryIDs == nil {
			return nil
		}
		for _, id := range categoryIDs {
			if _, err := r.FindCategory(ctx, id); err != nil {
				return repo.MapError(err, "category")
			}
		}
		return r.ReplaceProductCategories(ctx, product.ID, categoryIDs)
	})
	if err != nil {
		if isNew {
			product.ID = uuid.Nil
		}
		return repo.MapError(err, "product")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"product_id":   product.ID.String(),
		"stock_status": product.StockStatus.String(),
	}), "product saved")
	return nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, repo.MapError(err, "product")
	}
	return product, nil
}

func (s *service) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return repo.MapError(s.repo.IncrementProductViews(ctx, id), "product")
}

func (s *service) IncrementSales(ctx context.Context, id uuid.UUID, qty int) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.RecordSale(ctx, tx, id, nil, qty)
	})
}

// RecordSale applies a sale of qty units inside the caller's transaction.
// With a variant, stock is checked and taken from the variant.
func (s *service) RecordSale(ctx context.Context, tx *gorm.DB, productID uuid.UUID, variantID *uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	r := s.repo.WithTx(tx)
	product, err := r.FindProductForUpdate(ctx, productID)
	if err != nil {
		return repo.MapError(err, "product")
	}
	if variantID != nil {
		return s.recordVariantSale(ctx, r, product, *variantID, qty)
	}
	if product.ManageStock && product.Quantity < qty {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").WithDetails(map[string]any{
			"product_id": productID.String(),
			"available":  product.Quantity,
			"requested":  qty,
		})
	}
	recordSale(product, qty)
	if err := r.UpdateProduct(ctx, product); err != nil {
		return repo.MapError(err, "product")
	}
	return nil
}

func (s *service) recordVariantSale(ctx context.Context, r Repository, product *models.Product, variantID uuid.UUID, qty int) error {
	variant, err := r.FindVariantForUpdate(ctx, variantID)
	if err != nil {
		return repo.MapError(err, "variant")
	}
	if variant.ProductID != product.ID {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to product")
	}
	if product.ManageStock && variant.Quantity < qty {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").WithDetails(map[string]any{
			"product_id": product.ID.String(),
			"variant_id": variant.ID.String(),
			"available":  variant.Quantity,
			"requested":  qty,
		})
	}
	recordVariantSale(product, variant, qty)
	if err := r.SaveVariant(ctx, variant); err != nil {
		return repo.MapError(err, "variant")
	}
	if err := r.UpdateProduct(ctx, product); err != nil {
		return repo.MapError(err, "product")
	}
	return nil
}

// DeleteProduct refuses products referenced by order items.
func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		n, err := r.CountProductOrderItems(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "product is referenced by orders")
		}
		return r.DeleteProduct(ctx, id)
	})
	return repo.MapError(err, "product")
}

func (s *service) ListProducts(ctx context.Context, filters ProductFilters, params pagination.Params) (pagination.Page[models.Product], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[models.Product]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if err := validateProductFilters(filters); err != nil {
		return pagination.Page[models.Product]{}, err
	}

	rows, next, err := s.repo.ListProducts(ctx, ListProductsQuery{
		ProductFilters: filters,
		Limit:          params.Limit,
		Cursor:         cursor,
	})
	if err != nil {
		return pagination.Page[models.Product]{}, repo.MapError(err, "product")
	}
	page := pagination.Page[models.Product]{Items: rows}
	if next != nil {
		page.NextCursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}

func validateProductFilters(f ProductFilters) error {
	details := map[string]string{}
	if f.Status != nil && !f.Status.IsValid() {
		details["status"] = "is not a known value"
	}
	if f.StockStatus != nil && !f.StockStatus.IsValid() {
		details["stock_status"] = "is not a known value"
	}
	if f.ProductType != nil && !f.ProductType.IsValid() {
		details["product_type"] = "is not a known value"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid filters").WithDetails(details)
	}
	return nil
}

// SaveImage writes the image; a primary image demotes the product's other
// primaries in the same transaction.
func (s *service) SaveImage(ctx context.Context, image *models.ProductImage) error {
	if image == nil || image.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if strings.TrimSpace(image.Path) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "path is required")
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if _, err := r.FindProduct(ctx, image.ProductID); err != nil {
			return repo.MapError(err, "product")
		}
		if image.IsPrimary {
			if err := r.ClearPrimaryImages(ctx, image.ProductID); err != nil {
				return err
			}
		}
		return r.SaveImage(ctx, image)
	})
	return repo.MapError(err, "product image")
}

func (s *service) PrimaryImage(ctx context.Context, productID uuid.UUID) (*models.ProductImage, error) {
	image, err := s.repo.FindPrimaryImage(ctx, productID)
	if err != nil {
		return nil, repo.MapError(err, "product image")
	}
	return image, nil
}

// SaveVariant writes the variant and, when attributeValueIDs is non-nil,
// replaces its attribute values.
func (s *service) SaveVariant(ctx context.Context, variant *models.ProductVariant, attributeValueIDs []uuid.UUID) error {
	if variant == nil || variant.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if err := validation.Struct(variantRules{
		SKU:          variant.SKU,
		Price:        variant.Price,
		ComparePrice: variant.ComparePrice,
		Quantity:     variant.Quantity,
	}); err != nil {
		return err
	}

	isNew := variant.ID == uuid.Nil
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if _, err := r.FindProduct(ctx, variant.ProductID); err != nil {
			return repo.MapError(err, "product")
		}
		if err := r.SaveVariant(ctx, variant); err != nil {
			return err
		}
		if attributeValueIDs == nil {
			return nil
		}
		return r.ReplaceVariantAttributes(ctx, variant.ID, attributeValueIDs)
	})
	if err != nil {
		if isNew {
			variant.ID = uuid.Nil
		}
		return repo.MapError(err, "product variant")
	}
	return nil
}

func (s *service) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		n, err := r.CountVariantOrderItems(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "variant is referenced by orders")
		}
		return r.DeleteVariant(ctx, id)
	})
	return repo.MapError(err, "product variant")
}
