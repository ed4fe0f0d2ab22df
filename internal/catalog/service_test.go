package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/pkg/config"
	"github.com/angelmondragon/souq-backoffice/pkg/db"
	"github.com/angelmondragon/souq-backoffice/pkg/db/dbtest"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
	"github.com/angelmondragon/souq-backoffice/pkg/logger"
	"github.com/angelmondragon/souq-backoffice/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), client, config.CatalogConfig{
		DefaultTaxRate:           "15",
		DefaultLowStockThreshold: 5,
	}, logger.Nop())
	require.NoError(t, err)
	return svc, client
}

func mustSaveProduct(t *testing.T, svc Service, name, sku string, price string, qty int) *models.Product {
	t.Helper()
	p := svc.NewProduct(name, sku, decimal.RequireFromString(price))
	p.Quantity = qty
	p.Status = enums.ProductStatusPublished
	require.NoError(t, svc.SaveProduct(context.Background(), p, nil))
	return p
}

func TestNewServiceValidatesConfig(t *testing.T) {
	client := dbtest.Open(t)
	_, err := NewService(nil, client, config.CatalogConfig{}, nil)
	require.Error(t, err)

	_, err = NewService(NewRepository(client.DB()), client, config.CatalogConfig{DefaultTaxRate: "abc"}, nil)
	require.ErrorContains(t, err, "tax rate")
}

func TestNewProductDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	p := svc.NewProduct("Tea", "TEA-1", decimal.NewFromInt(10))

	assert.True(t, p.TaxRate.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, 5, p.LowStockThreshold)
	assert.True(t, p.ManageStock)
	assert.True(t, p.IsActive)
	assert.Equal(t, enums.ProductStatusDraft, p.Status)
	assert.True(t, p.PriceWithTax().Equal(decimal.RequireFromString("11.5")))
}

func TestSaveProductDerivesSlugAndStock(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	p := mustSaveProduct(t, svc, "Arabic Coffee", "COF-1", "45.50", 0)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Regexp(t, `^arabic-coffee-[0-9a-f]{8}$`, p.Slug)
	assert.Equal(t, enums.StockStatusOutOfStock, p.StockStatus)
	assert.Equal(t, enums.ProductStatusOutOfStock, p.Status)

	originalSlug := p.Slug
	p.Name = "Arabic Coffee Premium"
	p.Quantity = 3
	require.NoError(t, svc.SaveProduct(ctx, p, nil))

	stored, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, originalSlug, stored.Slug)
	assert.Equal(t, enums.StockStatusLowStock, stored.StockStatus)
	assert.True(t, stored.Price.Equal(decimal.RequireFromString("45.5")))

	var count int64
	require.NoError(t, client.DB().Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSaveProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p := svc.NewProduct("Bad", "BAD-1", decimal.NewFromInt(-1))
	err := svc.SaveProduct(ctx, p, nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	assert.Equal(t, uuid.Nil, p.ID)

	p = svc.NewProduct("", "BAD-2", decimal.NewFromInt(1))
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(svc.SaveProduct(ctx, p, nil)))

	negative := decimal.NewFromInt(-5)
	p = svc.NewProduct("Bad", "BAD-3", decimal.NewFromInt(1))
	p.CostPrice = &negative
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(svc.SaveProduct(ctx, p, nil)))
}

func TestSaveProductDuplicateSKUConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	mustSaveProduct(t, svc, "One", "DUP", "1", 10)

	p := svc.NewProduct("Two", "DUP", decimal.NewFromInt(2))
	err := svc.SaveProduct(context.Background(), p, nil)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	assert.Equal(t, uuid.Nil, p.ID)
}

func TestSaveProductCategoryLinks(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	food, err := svc.CreateCategory(ctx, CategoryInput{Name: "Food"})
	require.NoError(t, err)
	drinks, err := svc.CreateCategory(ctx, CategoryInput{Name: "Drinks"})
	require.NoError(t, err)

	p := svc.NewProduct("Dates", "DAT-1", decimal.NewFromInt(20))
	p.Quantity = 10
	require.NoError(t, svc.SaveProduct(ctx, p, []uuid.UUID{food.ID, drinks.ID, food.ID}))

	ids, err := NewRepository(client.DB()).ListProductCategoryIDs(ctx, p.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{food.ID, drinks.ID}, ids)

	require.NoError(t, svc.SaveProduct(ctx, p, []uuid.UUID{drinks.ID}))
	ids, err = NewRepository(client.DB()).ListProductCategoryIDs(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{drinks.ID}, ids)

	err = svc.SaveProduct(ctx, p, []uuid.UUID{uuid.New()})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestIncrementViewsAndSales(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustSaveProduct(t, svc, "Honey", "HON-1", "30", 7)

	require.NoError(t, svc.IncrementViews(ctx, p.ID))
	require.NoError(t, svc.IncrementViews(ctx, p.ID))
	require.NoError(t, svc.IncrementSales(ctx, p.ID, 3))

	stored, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Views)
	assert.Equal(t, 3, stored.SalesCount)
	assert.Equal(t, 4, stored.Quantity)
	assert.Equal(t, enums.StockStatusLowStock, stored.StockStatus)

	err = svc.IncrementSales(ctx, p.ID, 5)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	require.NoError(t, svc.IncrementSales(ctx, p.ID, 4))
	stored, err = svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Quantity)
	assert.Equal(t, enums.ProductStatusOutOfStock, stored.Status)

	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(svc.IncrementViews(ctx, uuid.New())))
}

func TestRecordSaleConsumesVariantStock(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	p := mustSaveProduct(t, svc, "Shirt", "SHI-1", "100", 1)
	variant := &models.ProductVariant{ProductID: p.ID, SKU: "SHI-1-L", Quantity: 5, IsActive: true}
	require.NoError(t, svc.SaveVariant(ctx, variant, nil))

	sell := func(variantID *uuid.UUID, qty int) error {
		return client.WithTx(ctx, func(tx *gorm.DB) error {
			return svc.RecordSale(ctx, tx, p.ID, variantID, qty)
		})
	}

	require.NoError(t, sell(&variant.ID, 3))

	var stored models.ProductVariant
	require.NoError(t, client.DB().First(&stored, "id = ?", variant.ID).Error)
	assert.Equal(t, 2, stored.Quantity)
	product, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, product.Quantity)
	assert.Equal(t, 3, product.SalesCount)

	err = sell(&variant.ID, 3)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	missing := uuid.New()
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(sell(&missing, 1)))

	other := mustSaveProduct(t, svc, "Mug", "MUG-1", "20", 4)
	foreign := &models.ProductVariant{ProductID: other.ID, SKU: "MUG-1-B", Quantity: 4, IsActive: true}
	require.NoError(t, svc.SaveVariant(ctx, foreign, nil))
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(sell(&foreign.ID, 1)))

	require.NoError(t, client.DB().First(&stored, "id = ?", variant.ID).Error)
	assert.Equal(t, 2, stored.Quantity)
}

func TestSaveImageKeepsSinglePrimary(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	p := mustSaveProduct(t, svc, "Lamp", "LMP-1", "99", 10)

	_, err := svc.PrimaryImage(ctx, p.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	second := &models.ProductImage{ProductID: p.ID, Path: "b.jpg", Ordering: 2}
	first := &models.ProductImage{ProductID: p.ID, Path: "a.jpg", Ordering: 1}
	require.NoError(t, svc.SaveImage(ctx, second))
	require.NoError(t, svc.SaveImage(ctx, first))

	img, err := svc.PrimaryImage(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, img.ID, "falls back to lowest ordering")

	second.IsPrimary = true
	require.NoError(t, svc.SaveImage(ctx, second))
	third := &models.ProductImage{ProductID: p.ID, Path: "c.jpg", IsPrimary: true}
	require.NoError(t, svc.SaveImage(ctx, third))

	var primaries []models.ProductImage
	require.NoError(t, client.DB().Where("product_id = ? AND is_primary = ?", p.ID, true).Find(&primaries).Error)
	require.Len(t, primaries, 1)
	assert.Equal(t, third.ID, primaries[0].ID)

	img, err = svc.PrimaryImage(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, third.ID, img.ID)

	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(svc.SaveImage(ctx, &models.ProductImage{ProductID: uuid.New(), Path: "x.jpg"})))
}

func TestSaveVariantAndFinalPrice(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	p := mustSaveProduct(t, svc, "Shirt", "SHI-1", "100", 10)

	size, err := svc.CreateAttribute(ctx, AttributeInput{Name: "Size"})
	require.NoError(t, err)
	large, err := svc.CreateAttributeValue(ctx, AttributeValueInput{AttributeID: size.ID, Value: "L"})
	require.NoError(t, err)
	_, err = svc.CreateAttributeValue(ctx, AttributeValueInput{AttributeID: size.ID, Value: "L"})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	variant := &models.ProductVariant{ProductID: p.ID, SKU: "SHI-1-L", Quantity: 2, IsActive: true}
	require.NoError(t, svc.SaveVariant(ctx, variant, []uuid.UUID{large.ID}))
	assert.True(t, variant.FinalPrice(*p).Equal(decimal.NewFromInt(100)))

	price := decimal.NewFromInt(120)
	variant.Price = &price
	require.NoError(t, svc.SaveVariant(ctx, variant, nil))
	assert.True(t, variant.FinalPrice(*p).Equal(price))

	var links int64
	require.NoError(t, client.DB().Model(&models.ProductVariantAttribute{}).Where("variant_id = ?", variant.ID).Count(&links).Error)
	assert.EqualValues(t, 1, links)

	dup := &models.ProductVariant{ProductID: p.ID, SKU: "SHI-1-L"}
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(svc.SaveVariant(ctx, dup, nil)))
}

func TestDeleteProductProtectedByOrders(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	conn := client.DB()
	p := mustSaveProduct(t, svc, "Rug", "RUG-1", "250", 3)

	require.NoError(t, conn.Create(&models.OrderItem{
		OrderID:     uuid.New(),
		ProductID:   p.ID,
		ProductName: p.Name,
		ProductSKU:  p.SKU,
		Price:       p.Price,
		Quantity:    1,
		TaxRate:     p.TaxRate,
	}).Error)

	err := svc.DeleteProduct(ctx, p.ID)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	_, err = svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
}

func TestDeleteProductCascades(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	conn := client.DB()
	p := mustSaveProduct(t, svc, "Vase", "VAS-1", "60", 3)
	category, err := svc.CreateCategory(ctx, CategoryInput{Name: "Decor"})
	require.NoError(t, err)
	require.NoError(t, svc.SaveProduct(ctx, p, []uuid.UUID{category.ID}))
	require.NoError(t, svc.SaveImage(ctx, &models.ProductImage{ProductID: p.ID, Path: "v.jpg"}))
	variant := &models.ProductVariant{ProductID: p.ID, SKU: "VAS-1-B"}
	require.NoError(t, svc.SaveVariant(ctx, variant, nil))
	require.NoError(t, conn.Create(&models.CartItem{CartID: uuid.New(), ProductID: p.ID, Quantity: 1}).Error)
	require.NoError(t, conn.Create(&models.QuickOrder{Phone: "+966500000000", Name: "A", ProductID: p.ID, Quantity: 1, City: "Riyadh"}).Error)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))

	for _, model := range []any{&models.Product{}, &models.ProductImage{}, &models.ProductVariant{}, &models.CartItem{}, &models.QuickOrder{}, &models.ProductCategory{}} {
		var n int64
		require.NoError(t, conn.Model(model).Count(&n).Error)
		assert.Zerof(t, n, "%T rows left", model)
	}
	_, err = NewRepository(conn).FindCategory(ctx, category.ID)
	require.NoError(t, err)

	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(svc.DeleteProduct(ctx, p.ID)))
}

func TestDeleteVariant(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	conn := client.DB()
	p := mustSaveProduct(t, svc, "Cup", "CUP-1", "5", 30)
	variant := &models.ProductVariant{ProductID: p.ID, SKU: "CUP-1-R"}
	require.NoError(t, svc.SaveVariant(ctx, variant, nil))
	quick := &models.QuickOrder{Phone: "+966500000000", Name: "A", ProductID: p.ID, VariantID: &variant.ID, Quantity: 1, City: "Riyadh"}
	require.NoError(t, conn.Create(quick).Error)

	require.NoError(t, svc.DeleteVariant(ctx, variant.ID))

	var reloaded models.QuickOrder
	require.NoError(t, conn.First(&reloaded, "id = ?", quick.ID).Error)
	assert.Nil(t, reloaded.VariantID)

	referenced := &models.ProductVariant{ProductID: p.ID, SKU: "CUP-1-B"}
	require.NoError(t, svc.SaveVariant(ctx, referenced, nil))
	require.NoError(t, conn.Create(&models.OrderItem{OrderID: uuid.New(), ProductID: p.ID, VariantID: &referenced.ID, ProductName: "Cup", ProductSKU: "CUP-1", Price: decimal.NewFromInt(5), Quantity: 1, TaxRate: decimal.NewFromInt(15)}).Error)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(svc.DeleteVariant(ctx, referenced.ID)))
}

func TestListProductsFiltersAndPaginates(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	conn := client.DB()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	for i, sku := range []string{"A-1", "A-2", "A-3", "B-1"} {
		p := svc.NewProduct("Item "+sku, sku, decimal.NewFromInt(10))
		p.Quantity = 20
		p.Status = enums.ProductStatusPublished
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if sku == "B-1" {
			p.Status = enums.ProductStatusDraft
			p.Barcode = "628100"
		}
		require.NoError(t, svc.SaveProduct(ctx, p, nil))
	}
	require.NoError(t, conn.Model(&models.Product{}).Where("sku = ?", "A-1").Update("is_active", false).Error)

	published := enums.ProductStatusPublished
	page, err := svc.ListProducts(ctx, ProductFilters{Status: &published}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "A-3", page.Items[0].SKU)
	assert.Equal(t, "A-2", page.Items[1].SKU)
	require.NotEmpty(t, page.NextCursor)

	page, err = svc.ListProducts(ctx, ProductFilters{Status: &published}, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "A-1", page.Items[0].SKU)
	assert.Empty(t, page.NextCursor)

	active := true
	page, err = svc.ListProducts(ctx, ProductFilters{IsActive: &active, Search: "a-"}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = svc.ListProducts(ctx, ProductFilters{Search: "6281"}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "B-1", page.Items[0].SKU)

	bad := enums.ProductStatus("gone")
	_, err = svc.ListProducts(ctx, ProductFilters{Status: &bad}, pagination.Params{})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.ListProducts(ctx, ProductFilters{}, pagination.Params{Cursor: "%%%"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}
