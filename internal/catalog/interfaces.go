package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/pagination"
)

// Repository defines the persistence surface of the catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ReplaceProductCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error
	ListProductCategoryIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)
	IncrementProductViews(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, query ListProductsQuery) ([]models.Product, *pagination.Cursor, error)
	CountProductOrderItems(ctx context.Context, productID uuid.UUID) (int64, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	SaveImage(ctx context.Context, image *models.ProductImage) error
	ClearPrimaryImages(ctx context.Context, productID uuid.UUID) error
	FindPrimaryImage(ctx context.Context, productID uuid.UUID) (*models.ProductImage, error)

	SaveVariant(ctx context.Context, variant *models.ProductVariant) error
	ReplaceVariantAttributes(ctx context.Context, variantID uuid.UUID, valueIDs []uuid.UUID) error
	FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	FindVariantForUpdate(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	CountVariantOrderItems(ctx context.Context, variantID uuid.UUID) (int64, error)
	DeleteVariant(ctx context.Context, id uuid.UUID) error

	CreateCategory(ctx context.Context, category *models.Category) error
	FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListChildCategoryIDs(ctx context.Context, parentIDs []uuid.UUID) ([]uuid.UUID, error)
	DeleteCategories(ctx context.Context, ids []uuid.UUID) error
	CountActiveProducts(ctx context.Context, categoryID uuid.UUID) (int64, error)

	CreateBrand(ctx context.Context, brand *models.Brand) error
	DeleteBrand(ctx context.Context, id uuid.UUID) error

	CreateAttribute(ctx context.Context, attribute *models.Attribute) error
	CreateAttributeValue(ctx context.Context, value *models.AttributeValue) error
	FindAttribute(ctx context.Context, id uuid.UUID) (*models.Attribute, error)
}
