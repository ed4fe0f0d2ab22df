package orders

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/souq-backoffice/internal/cart"
	"github.com/angelmondragon/souq-backoffice/internal/catalog"
	"github.com/angelmondragon/souq-backoffice/pkg/config"
	"github.com/angelmondragon/souq-backoffice/pkg/db"
	"github.com/angelmondragon/souq-backoffice/pkg/db/dbtest"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
	"github.com/angelmondragon/souq-backoffice/pkg/metrics"
	"github.com/angelmondragon/souq-backoffice/pkg/pagination"
)

type fixture struct {
	svc    Service
	client *db.Client
	reg    *prometheus.Registry
	method *models.PaymentMethod
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Open(t)
	reg := prometheus.NewRegistry()

	catalogSvc, err := catalog.NewService(catalog.NewRepository(client.DB()), client, config.CatalogConfig{DefaultTaxRate: "15"}, nil)
	require.NoError(t, err)
	store, err := cart.NewCheckoutStore(cart.NewRepository(client.DB()), cart.NewItemRepository(client.DB()))
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(client.DB()),
		TxRunner: client,
		Sales:    catalogSvc,
		Carts:    store,
		Config:   config.OrdersConfig{NumberPrefix: "ORD", DefaultCountry: "Saudi Arabia"},
		Metrics:  metrics.NewDomain(reg),
	})
	require.NoError(t, err)
	f := fixture{svc: svc, client: client, reg: reg}
	f.method = f.paymentMethod(t, "default-cod", "0", nil)
	return f
}

func (f fixture) product(t *testing.T, sku, price string, qty int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:              "Product " + sku,
		Slug:              "product-" + sku,
		SKU:               sku,
		Price:             decimal.RequireFromString(price),
		TaxRate:           decimal.NewFromInt(15),
		Quantity:          qty,
		LowStockThreshold: 5,
		ManageStock:       true,
		Status:            enums.ProductStatusPublished,
		StockStatus:       enums.StockStatusInStock,
		ProductType:       enums.ProductTypeSimple,
		IsActive:          true,
	}
	require.NoError(t, f.client.DB().Create(p).Error)
	return p
}

func (f fixture) variant(t *testing.T, product *models.Product, sku string, price string, qty int) *models.ProductVariant {
	t.Helper()
	p := decimal.RequireFromString(price)
	v := &models.ProductVariant{ProductID: product.ID, SKU: sku, Price: &p, Quantity: qty, IsActive: true}
	require.NoError(t, f.client.DB().Create(v).Error)
	return v
}

func (f fixture) cartWith(t *testing.T, lines ...models.CartItem) *models.Cart {
	t.Helper()
	session := "session-" + uuid.NewString()
	c := &models.Cart{SessionKey: &session}
	require.NoError(t, f.client.DB().Create(c).Error)
	for _, line := range lines {
		line.CartID = c.ID
		require.NoError(t, f.client.DB().Create(&line).Error)
	}
	return c
}

func (f fixture) paymentMethod(t *testing.T, code string, min string, max *decimal.Decimal) *models.PaymentMethod {
	t.Helper()
	m := &models.PaymentMethod{
		Name:           code,
		Code:           code,
		Type:           enums.PaymentMethodTypeCashOnDelivery,
		IsActive:       true,
		MinOrderAmount: decimal.RequireFromString(min),
		MaxOrderAmount: max,
	}
	require.NoError(t, f.client.DB().Create(m).Error)
	return m
}

func (f fixture) shipping() ShippingInput {
	return ShippingInput{
		CustomerName:    "Sara Ali",
		CustomerEmail:   "sara@example.com",
		CustomerPhone:   "+966501234567",
		ShippingCity:    "Riyadh",
		ShippingAddress: "King Fahd Rd 12",
		PaymentMethodID: f.method.ID,
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestCreateOrderAssignsNumberAndDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: f.shipping()})
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-[0-9A-F]{8}$`, order.OrderNumber)
	assert.Equal(t, enums.OrderTypeRegular, order.OrderType)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, "Saudi Arabia", order.ShippingCountry)
	assert.False(t, order.PaymentStatus)

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, stored.OrderNumber)
}

func TestCreateOrderValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.shipping()
	in.CustomerPhone = "call me"
	_, err := f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: in})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	in = f.shipping()
	in.DiscountAmount = decimal.NewFromInt(-1)
	_, err = f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: in})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: f.shipping(), OrderType: "wholesale"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	in = f.shipping()
	in.PaymentMethodID = uuid.Nil
	_, err = f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: in})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	in.PaymentMethodID = uuid.New()
	_, err = f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: in})
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	in = f.shipping()
	in.ShippingBuildingNumber = strings.Repeat("7", 51)
	_, err = f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: in})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	in = f.shipping()
	in.ShippingPostalCode = strings.Repeat("1", 21)
	_, err = f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: in})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestCreateOrderKeepsLongAddressParts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.shipping()
	in.ShippingBuildingNumber = strings.Repeat("7", 50)
	in.ShippingPostalCode = strings.Repeat("1", 20)
	order, err := f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: in})
	require.NoError(t, err)

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, in.ShippingBuildingNumber, stored.ShippingBuildingNumber)
	assert.Equal(t, in.ShippingPostalCode, stored.ShippingPostalCode)
	assert.Equal(t, f.method.ID, stored.PaymentMethodID)
}

func TestAddItemSnapshotsAndTotalsAreExplicit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shirt := f.product(t, "SHIRT", "100", 10)
	large := f.variant(t, shirt, "SHIRT-L", "120", 5)
	mug := f.product(t, "MUG", "20", 10)

	in := f.shipping()
	in.ShippingCost = decimal.NewFromInt(25)
	in.DiscountAmount = decimal.NewFromInt(5)
	order, err := f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: in})
	require.NoError(t, err)

	item, err := f.svc.AddItem(ctx, order.ID, AddOrderItemInput{ProductID: shirt.ID, VariantID: &large.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "Product SHIRT", item.ProductName)
	assert.Equal(t, "SHIRT", item.ProductSKU)
	assert.True(t, item.Price.Equal(decimal.NewFromInt(120)))
	assert.True(t, item.TaxRate.Equal(decimal.NewFromInt(15)))

	_, err = f.svc.AddItem(ctx, order.ID, AddOrderItemInput{ProductID: mug.ID, Quantity: 1})
	require.NoError(t, err)

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.True(t, stored.Total.IsZero())

	// later price changes do not touch the snapshot
	require.NoError(t, f.client.DB().Model(&models.Product{}).Where("id = ?", mug.ID).Update("price", decimal.NewFromInt(99)).Error)

	totals, err := f.svc.CalculateTotals(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(260)), totals.Subtotal.String())
	assert.True(t, totals.TaxAmount.Equal(decimal.NewFromInt(39)), totals.TaxAmount.String())
	assert.True(t, totals.Total.Equal(decimal.NewFromInt(319)), totals.Total.String())

	stored, err = f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(319)))
	assert.Equal(t, order.OrderNumber, stored.OrderNumber)
}

func TestAddItemErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shirt := f.product(t, "SHIRT", "100", 10)
	mug := f.product(t, "MUG", "20", 10)
	mugBlue := f.variant(t, mug, "MUG-B", "22", 3)
	order, err := f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: f.shipping()})
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, uuid.New(), AddOrderItemInput{ProductID: shirt.ID, Quantity: 1})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = f.svc.AddItem(ctx, order.ID, AddOrderItemInput{ProductID: uuid.New(), Quantity: 1})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = f.svc.AddItem(ctx, order.ID, AddOrderItemInput{ProductID: shirt.ID, Quantity: 0})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = f.svc.AddItem(ctx, order.ID, AddOrderItemInput{ProductID: shirt.ID, VariantID: &mugBlue.ID, Quantity: 1})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestSetStatusStampsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: f.shipping()})
	require.NoError(t, err)

	impl := f.svc.(*service)
	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	impl.now = func() time.Time { return first }
	require.NoError(t, f.svc.SetStatus(ctx, order.ID, enums.OrderStatusConfirmed))

	impl.now = func() time.Time { return first.Add(48 * time.Hour) }
	require.NoError(t, f.svc.SetStatus(ctx, order.ID, enums.OrderStatusPending))
	require.NoError(t, f.svc.SetStatus(ctx, order.ID, enums.OrderStatusConfirmed))
	require.NoError(t, f.svc.SetStatus(ctx, order.ID, enums.OrderStatusShipped))

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, stored.Status)
	require.NotNil(t, stored.ConfirmedAt)
	assert.True(t, stored.ConfirmedAt.Equal(first))
	require.NotNil(t, stored.ShippedAt)
	assert.True(t, stored.ShippedAt.Equal(first.Add(48*time.Hour)))
	assert.Nil(t, stored.DeliveredAt)

	err = f.svc.SetStatus(ctx, order.ID, "lost")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	err = f.svc.SetStatus(ctx, uuid.New(), enums.OrderStatusCancelled)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestBulkSetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: f.shipping()})
	require.NoError(t, err)
	b, err := f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: f.shipping()})
	require.NoError(t, err)

	_, err = f.svc.BulkSetStatus(ctx, []uuid.UUID{a.ID}, enums.OrderStatusCancelled)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	updated, err := f.svc.BulkSetStatus(ctx, []uuid.UUID{a.ID, uuid.New(), b.ID}, enums.OrderStatusProcessing)
	assert.Error(t, err)
	assert.Equal(t, 2, updated)

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		stored, err := f.svc.GetOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, enums.OrderStatusProcessing, stored.Status)
	}
}

func TestPlaceOrderFromCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shirt := f.product(t, "SHIRT", "100", 10)
	large := f.variant(t, shirt, "SHIRT-L", "120", 5)
	mug := f.product(t, "MUG", "20", 10)
	method := f.paymentMethod(t, "cod", "0", nil)

	c := f.cartWith(t,
		models.CartItem{ProductID: shirt.ID, VariantID: &large.ID, Quantity: 2},
		models.CartItem{ProductID: mug.ID, Quantity: 3},
	)

	in := PlaceOrderInput{ShippingInput: f.shipping(), CartID: c.ID}
	in.ShippingCost = decimal.NewFromInt(30)
	in.PaymentMethodID = method.ID
	order, err := f.svc.PlaceOrder(ctx, in)
	require.NoError(t, err)
	assert.Len(t, order.Items, 2)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(300)), order.Subtotal.String())
	assert.True(t, order.TaxAmount.Equal(decimal.NewFromInt(45)), order.TaxAmount.String())
	assert.True(t, order.Total.Equal(decimal.NewFromInt(375)), order.Total.String())

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(375)))
	assert.Equal(t, method.ID, stored.PaymentMethodID)

	var reloaded models.Product
	require.NoError(t, f.client.DB().First(&reloaded, "id = ?", mug.ID).Error)
	assert.Equal(t, 7, reloaded.Quantity)
	assert.Equal(t, 3, reloaded.SalesCount)
	require.NoError(t, f.client.DB().First(&reloaded, "id = ?", shirt.ID).Error)
	assert.Equal(t, 10, reloaded.Quantity)
	assert.Equal(t, 2, reloaded.SalesCount)

	var variant models.ProductVariant
	require.NoError(t, f.client.DB().First(&variant, "id = ?", large.ID).Error)
	assert.Equal(t, 3, variant.Quantity)

	var lines int64
	require.NoError(t, f.client.DB().Model(&models.CartItem{}).Where("cart_id = ?", c.ID).Count(&lines).Error)
	assert.Zero(t, lines)

	assert.Equal(t, 1.0, counterValue(t, f.reg, "souq_orders_placed_total"))
}

func TestPlaceOrderRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mug := f.product(t, "MUG", "20", 2)
	max := decimal.NewFromInt(10)
	small := f.paymentMethod(t, "small", "0", &max)

	_, err := f.svc.PlaceOrder(ctx, PlaceOrderInput{ShippingInput: f.shipping(), CartID: uuid.New()})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	empty := f.cartWith(t)
	_, err = f.svc.PlaceOrder(ctx, PlaceOrderInput{ShippingInput: f.shipping(), CartID: empty.ID})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	tooMany := f.cartWith(t, models.CartItem{ProductID: mug.ID, Quantity: 3})
	_, err = f.svc.PlaceOrder(ctx, PlaceOrderInput{ShippingInput: f.shipping(), CartID: tooMany.ID})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	ok := f.cartWith(t, models.CartItem{ProductID: mug.ID, Quantity: 1})
	in := PlaceOrderInput{ShippingInput: f.shipping(), CartID: ok.ID}
	in.PaymentMethodID = small.ID
	_, err = f.svc.PlaceOrder(ctx, in)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	in.PaymentMethodID = uuid.Nil
	_, err = f.svc.PlaceOrder(ctx, in)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	in.PaymentMethodID = uuid.New()
	_, err = f.svc.PlaceOrder(ctx, in)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	var orders int64
	require.NoError(t, f.client.DB().Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)

	var lines int64
	require.NoError(t, f.client.DB().Model(&models.CartItem{}).Where("cart_id = ?", ok.ID).Count(&lines).Error)
	assert.EqualValues(t, 1, lines)

	var reloaded models.Product
	require.NoError(t, f.client.DB().First(&reloaded, "id = ?", mug.ID).Error)
	assert.Equal(t, 2, reloaded.Quantity)
}

func TestPlaceOrderTakesVariantStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shirt := f.product(t, "SHIRT", "100", 1)
	large := f.variant(t, shirt, "SHIRT-L", "120", 5)

	c := f.cartWith(t, models.CartItem{ProductID: shirt.ID, VariantID: &large.ID, Quantity: 3})
	order, err := f.svc.PlaceOrder(ctx, PlaceOrderInput{ShippingInput: f.shipping(), CartID: c.ID})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	require.NotNil(t, order.Items[0].VariantID)
	assert.Equal(t, large.ID, *order.Items[0].VariantID)

	var variant models.ProductVariant
	require.NoError(t, f.client.DB().First(&variant, "id = ?", large.ID).Error)
	assert.Equal(t, 2, variant.Quantity)

	var product models.Product
	require.NoError(t, f.client.DB().First(&product, "id = ?", shirt.ID).Error)
	assert.Equal(t, 1, product.Quantity)
	assert.Equal(t, 3, product.SalesCount)

	again := f.cartWith(t, models.CartItem{ProductID: shirt.ID, VariantID: &large.ID, Quantity: 3})
	_, err = f.svc.PlaceOrder(ctx, PlaceOrderInput{ShippingInput: f.shipping(), CartID: again.ID})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	require.NoError(t, f.client.DB().First(&variant, "id = ?", large.ID).Error)
	assert.Equal(t, 2, variant.Quantity)
}

func TestUnpricedVariantSnapshotsProductPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shirt := f.product(t, "SHIRT", "100", 10)
	plain := f.variant(t, shirt, "SHIRT-P", "0", 5)

	order, err := f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: f.shipping()})
	require.NoError(t, err)
	added, err := f.svc.AddItem(ctx, order.ID, AddOrderItemInput{ProductID: shirt.ID, VariantID: &plain.ID, Quantity: 1})
	require.NoError(t, err)

	c := f.cartWith(t, models.CartItem{ProductID: shirt.ID, VariantID: &plain.ID, Quantity: 1})
	placed, err := f.svc.PlaceOrder(ctx, PlaceOrderInput{ShippingInput: f.shipping(), CartID: c.ID})
	require.NoError(t, err)
	require.Len(t, placed.Items, 1)

	assert.True(t, added.Price.Equal(decimal.NewFromInt(100)), added.Price.String())
	assert.True(t, placed.Items[0].Price.Equal(added.Price), placed.Items[0].Price.String())
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.shipping()
	in.CustomerName = "Khalid"
	khalid, err := f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: in})
	require.NoError(t, err)
	quick, err := f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: f.shipping(), OrderType: enums.OrderTypeQuickOrder})
	require.NoError(t, err)
	third, err := f.svc.CreateOrder(ctx, CreateOrderInput{ShippingInput: f.shipping()})
	require.NoError(t, err)
	require.NoError(t, f.svc.SetStatus(ctx, third.ID, enums.OrderStatusShipped))

	page, err := f.svc.ListOrders(ctx, OrderFilters{Search: "khal"}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, khalid.ID, page.Items[0].ID)

	page, err = f.svc.ListOrders(ctx, OrderFilters{Search: quick.OrderNumber[4:]}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, quick.ID, page.Items[0].ID)

	orderType := enums.OrderTypeQuickOrder
	page, err = f.svc.ListOrders(ctx, OrderFilters{OrderType: &orderType}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	status := enums.OrderStatusShipped
	page, err = f.svc.ListOrders(ctx, OrderFilters{Status: &status}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, third.ID, page.Items[0].ID)

	paid := false
	first, err := f.svc.ListOrders(ctx, OrderFilters{PaymentStatus: &paid}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)
	second, err := f.svc.ListOrders(ctx, OrderFilters{PaymentStatus: &paid}, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Empty(t, second.NextCursor)

	bad := enums.OrderStatus("lost")
	_, err = f.svc.ListOrders(ctx, OrderFilters{Status: &bad}, pagination.Params{})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	_, err = f.svc.ListOrders(ctx, OrderFilters{}, pagination.Params{Cursor: "%%%"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	total := 0.0
	found := false
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		found = true
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	if !found {
		t.Fatalf("metric %s not exported", name)
	}
	return total
}
