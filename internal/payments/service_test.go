package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/souq-backoffice/pkg/config"
	"github.com/angelmondragon/souq-backoffice/pkg/db"
	"github.com/angelmondragon/souq-backoffice/pkg/db/dbtest"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
	"github.com/angelmondragon/souq-backoffice/pkg/metrics"
)

type fixture struct {
	svc    Service
	client *db.Client
	reg    *prometheus.Registry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Open(t)
	reg := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(client.DB()),
		TxRunner: client,
		Config:   config.PaymentsConfig{Currency: "sar"},
		Metrics:  metrics.NewDomain(reg),
	})
	require.NoError(t, err)
	return fixture{svc: svc, client: client, reg: reg}
}

func (f fixture) order(t *testing.T, total string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:     "ORD-" + uuid.NewString()[:8],
		CustomerName:    "Sara",
		CustomerPhone:   "+966500000000",
		OrderType:       enums.OrderTypeRegular,
		ShippingCountry: "Saudi Arabia",
		ShippingCity:    "Riyadh",
		ShippingAddress: "King Fahd Rd",
		Total:           decimal.RequireFromString(total),
		Status:          enums.OrderStatusPending,
	}
	require.NoError(t, f.client.DB().Create(order).Error)
	return order
}

func (f fixture) method(t *testing.T, code string) *models.PaymentMethod {
	t.Helper()
	method, err := f.svc.CreateMethod(context.Background(), MethodInput{
		Name: code,
		Code: code,
		Type: enums.PaymentMethodTypeCashOnDelivery,
	})
	require.NoError(t, err)
	return method
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)

	client := dbtest.Open(t)
	_, err = NewService(ServiceParams{Repo: NewRepository(client.DB())})
	require.Error(t, err)
}

func TestCreateMethodValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateMethod(ctx, MethodInput{Name: "x", Code: "x", Type: "barter"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = f.svc.CreateMethod(ctx, MethodInput{Name: "x", Code: "x", Type: enums.PaymentMethodTypeWallet, ExtraFee: decimal.NewFromInt(-1)})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	method := f.method(t, "wallet")
	assert.True(t, method.IsActive)

	_, err = f.svc.CreateMethod(ctx, MethodInput{Name: "again", Code: "wallet", Type: enums.PaymentMethodTypeWallet})
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestListAvailableMethodsFiltersByAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	max := decimal.NewFromInt(1000)
	inactive := false

	_, err := f.svc.CreateMethod(ctx, MethodInput{Name: "Cash", Code: "cod", Type: enums.PaymentMethodTypeCashOnDelivery, Ordering: 2, MaxOrderAmount: &max})
	require.NoError(t, err)
	_, err = f.svc.CreateMethod(ctx, MethodInput{Name: "Card", Code: "card", Type: enums.PaymentMethodTypeCreditCard, Ordering: 1, MinOrderAmount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	_, err = f.svc.CreateMethod(ctx, MethodInput{Name: "Wallet", Code: "wallet", Type: enums.PaymentMethodTypeWallet, IsActive: &inactive})
	require.NoError(t, err)

	small, err := f.svc.ListAvailableMethods(ctx, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.Len(t, small, 1)
	assert.Equal(t, "cod", small[0].Code)

	mid, err := f.svc.ListAvailableMethods(ctx, decimal.NewFromInt(500))
	require.NoError(t, err)
	require.Len(t, mid, 2)
	assert.Equal(t, "card", mid[0].Code)
	assert.Equal(t, "cod", mid[1].Code)

	large, err := f.svc.ListAvailableMethods(ctx, decimal.NewFromInt(5000))
	require.NoError(t, err)
	require.Len(t, large, 1)
	assert.Equal(t, "card", large[0].Code)
}

func TestSeedDefaultMethodsIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.SeedDefaultMethods(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cash_on_delivery", "credit_card"}, created)

	created, err = f.svc.SeedDefaultMethods(ctx)
	require.NoError(t, err)
	assert.Empty(t, created)

	var count int64
	require.NoError(t, f.client.DB().Model(&models.PaymentMethod{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestDeleteMethodRefusesReferencedMethods(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	used := f.method(t, "cod")
	unused := f.method(t, "bank")

	order := f.order(t, "100")
	_, err := f.svc.CreatePayment(ctx, CreatePaymentInput{OrderID: order.ID, PaymentMethodID: used.ID})
	require.NoError(t, err)

	err = f.svc.DeleteMethod(ctx, used.ID)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	require.NoError(t, f.svc.DeleteMethod(ctx, unused.ID))
	err = f.svc.DeleteMethod(ctx, unused.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestCreatePaymentDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	method := f.method(t, "cod")
	order := f.order(t, "230.50")

	payment, err := f.svc.CreatePayment(ctx, CreatePaymentInput{OrderID: order.ID, PaymentMethodID: method.ID})
	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(decimal.RequireFromString("230.50")))
	assert.Equal(t, "SAR", payment.Currency)
	assert.Equal(t, enums.PaymentStatusPending, payment.Status)

	_, err = f.svc.CreatePayment(ctx, CreatePaymentInput{OrderID: uuid.New(), PaymentMethodID: method.ID})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = f.svc.CreatePayment(ctx, CreatePaymentInput{OrderID: order.ID, PaymentMethodID: uuid.New()})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	negative := decimal.NewFromInt(-5)
	_, err = f.svc.CreatePayment(ctx, CreatePaymentInput{OrderID: order.ID, PaymentMethodID: method.ID, Amount: &negative})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestMarkAsPaidCapturesAndConfirmsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	method := f.method(t, "cod")
	order := f.order(t, "99")

	payment, err := f.svc.CreatePayment(ctx, CreatePaymentInput{OrderID: order.ID, PaymentMethodID: method.ID})
	require.NoError(t, err)
	refundable, err := f.svc.CanRefund(ctx, payment.ID)
	require.NoError(t, err)
	assert.False(t, refundable)

	paid, err := f.svc.MarkAsPaid(ctx, payment.ID, "txn-1", nil)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusCaptured, paid.Status)
	assert.Equal(t, "txn-1", paid.TransactionID)
	assert.NotNil(t, paid.CapturedAt)

	stored, err := f.svc.GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, stored.GatewayResponse)
	assert.Equal(t, enums.PaymentStatusCaptured, stored.Status)
	require.NotNil(t, stored.PaymentMethod)
	assert.Equal(t, "cod", stored.PaymentMethod.Code)

	var reloaded models.Order
	require.NoError(t, f.client.DB().First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusConfirmed, reloaded.Status)
	assert.True(t, reloaded.PaymentStatus)
	require.NotNil(t, reloaded.ConfirmedAt)

	refundable, err = f.svc.CanRefund(ctx, payment.ID)
	require.NoError(t, err)
	assert.True(t, refundable)

	assert.Equal(t, 1.0, counterValue(t, f.reg, "souq_payments_captured_total"))
}

func TestMarkAsPaidKeepsFirstConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	method := f.method(t, "cod")
	order := f.order(t, "10")
	confirmed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, f.client.DB().Model(&models.Order{}).Where("id = ?", order.ID).Update("confirmed_at", confirmed).Error)

	payment, err := f.svc.CreatePayment(ctx, CreatePaymentInput{OrderID: order.ID, PaymentMethodID: method.ID})
	require.NoError(t, err)
	_, err = f.svc.MarkAsPaid(ctx, payment.ID, "txn-2", map[string]any{"code": "00"})
	require.NoError(t, err)

	var reloaded models.Order
	require.NoError(t, f.client.DB().First(&reloaded, "id = ?", order.ID).Error)
	require.NotNil(t, reloaded.ConfirmedAt)
	assert.True(t, reloaded.ConfirmedAt.Equal(confirmed))

	stored, err := f.svc.GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "00", stored.GatewayResponse["code"])
}

func TestMarkAsPaidUnknownPayment(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.MarkAsPaid(context.Background(), uuid.New(), "txn", nil)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not exported", name)
	return 0
}
