package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/internal/repo"
	"github.com/angelmondragon/souq-backoffice/pkg/config"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
	"github.com/angelmondragon/souq-backoffice/pkg/logger"
	"github.com/angelmondragon/souq-backoffice/pkg/metrics"
	"github.com/angelmondragon/souq-backoffice/pkg/validation"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages payment methods and order payments.
type Service interface {
	CreateMethod(ctx context.Context, input MethodInput) (*models.PaymentMethod, error)
	ListAvailableMethods(ctx context.Context, amount decimal.Decimal) ([]models.PaymentMethod, error)
	SeedDefaultMethods(ctx context.Context) ([]string, error)
	DeleteMethod(ctx context.Context, id uuid.UUID) error

	CreatePayment(ctx context.Context, input CreatePaymentInput) (*models.Payment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	CanRefund(ctx context.Context, id uuid.UUID) (bool, error)
	MarkAsPaid(ctx context.Context, paymentID uuid.UUID, transactionID string, gatewayResponse map[string]any) (*models.Payment, error)
}

// MethodInput creates a payment method.
type MethodInput struct {
	Name                  string                  `json:"name" validate:"required,max=100"`
	Code                  string                  `json:"code" validate:"required,max=50"`
	Type                  enums.PaymentMethodType `json:"type" validate:"required,enum"`
	IsActive              *bool                   `json:"is_active"`
	Description           string                  `json:"description"`
	Instructions          string                  `json:"instructions"`
	Icon                  string                  `json:"icon" validate:"max=50"`
	Ordering              int                     `json:"ordering"`
	RequiresOnlinePayment bool                    `json:"requires_online_payment"`
	ExtraFee              decimal.Decimal         `json:"extra_fee" validate:"gte=0"`
	MinOrderAmount        decimal.Decimal         `json:"min_order_amount" validate:"gte=0"`
	MaxOrderAmount        *decimal.Decimal        `json:"max_order_amount" validate:"omitempty,gte=0"`
}

// CreatePaymentInput opens a payment for an order. A nil Amount charges the
// order total.
type CreatePaymentInput struct {
	OrderID         uuid.UUID        `json:"order_id" validate:"required"`
	PaymentMethodID uuid.UUID        `json:"payment_method_id" validate:"required"`
	Amount          *decimal.Decimal `json:"amount" validate:"omitempty,gte=0"`
	Currency        string           `json:"currency" validate:"omitempty,len=3"`
	ReceiptPath     *string          `json:"receipt_path"`
}

type service struct {
	repo     Repository
	tx       txRunner
	currency string
	metrics  *metrics.Domain
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams bundles the payment service dependencies.
type ServiceParams struct {
	Repo     Repository
	TxRunner txRunner
	Config   config.PaymentsConfig
	Metrics  *metrics.Domain
	Logger   *logger.Logger
}

// NewService constructs the payments service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	currency := strings.ToUpper(strings.TrimSpace(params.Config.Currency))
	if currency == "" {
		currency = "SAR"
	}
	return &service{
		repo:     params.Repo,
		tx:       params.TxRunner,
		currency: currency,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

func (s *service) CreateMethod(ctx context.Context, input MethodInput) (*models.PaymentMethod, error) {
	input.Code = strings.TrimSpace(input.Code)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	method := &models.PaymentMethod{
		Name:                  input.Name,
		Code:                  input.Code,
		Type:                  input.Type,
		IsActive:              input.IsActive == nil || *input.IsActive,
		Description:           input.Description,
		Instructions:          input.Instructions,
		Icon:                  input.Icon,
		Ordering:              input.Ordering,
		RequiresOnlinePayment: input.RequiresOnlinePayment,
		ExtraFee:              input.ExtraFee,
		MinOrderAmount:        input.MinOrderAmount,
		MaxOrderAmount:        input.MaxOrderAmount,
	}
	if err := s.repo.CreateMethod(ctx, method); err != nil {
		return nil, repo.MapError(err, "payment method")
	}
	return method, nil
}

// ListAvailableMethods returns the active methods that accept amount.
func (s *service) ListAvailableMethods(ctx context.Context, amount decimal.Decimal) ([]models.PaymentMethod, error) {
	methods, err := s.repo.ListActiveMethods(ctx)
	if err != nil {
		return nil, repo.MapError(err, "payment method")
	}
	available := make([]models.PaymentMethod, 0, len(methods))
	for _, method := range methods {
		if IsAvailableForOrder(method, amount) {
			available = append(available, method)
		}
	}
	return available, nil
}

// SeedDefaultMethods creates the default methods that are missing, matched by
// code, and returns the codes it created. Existing rows are left untouched.
func (s *service) SeedDefaultMethods(ctx context.Context) ([]string, error) {
	var (
		created []string
		errs    error
	)
	for _, method := range DefaultMethods() {
		method := method
		_, err := s.repo.FindMethodByCode(ctx, method.Code)
		if err == nil {
			s.logg.Info(s.logg.WithField(ctx, "code", method.Code), "payment method already exists")
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup payment method "+method.Code))
			continue
		}
		if err := s.repo.CreateMethod(ctx, &method); err != nil {
			errs = multierr.Append(errs, repo.MapError(err, "payment method "+method.Code))
			continue
		}
		created = append(created, method.Code)
		s.logg.Info(s.logg.WithField(ctx, "code", method.Code), "payment method created")
	}
	return created, errs
}

// DeleteMethod refuses methods still referenced by orders or payments.
func (s *service) DeleteMethod(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		n, err := r.CountMethodReferences(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "payment method is in use")
		}
		return r.DeleteMethod(ctx, id)
	})
	return repo.MapError(err, "payment method")
}

func (s *service) CreatePayment(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	var payment *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		order, err := r.FindOrder(ctx, input.OrderID)
		if err != nil {
			return repo.MapError(err, "order")
		}
		if _, err := r.FindMethod(ctx, input.PaymentMethodID); err != nil {
			return repo.MapError(err, "payment method")
		}
		amount := order.Total
		if input.Amount != nil {
			amount = *input.Amount
		}
		currency := strings.ToUpper(input.Currency)
		if currency == "" {
			currency = s.currency
		}
		payment = &models.Payment{
			OrderID:         order.ID,
			PaymentMethodID: input.PaymentMethodID,
			Amount:          amount,
			Currency:        currency,
			Status:          enums.PaymentStatusPending,
			ReceiptPath:     input.ReceiptPath,
		}
		return r.CreatePayment(ctx, payment)
	})
	if err != nil {
		return nil, repo.MapError(err, "payment")
	}
	return payment, nil
}

func (s *service) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.repo.FindPayment(ctx, id)
	if err != nil {
		return nil, repo.MapError(err, "payment")
	}
	return payment, nil
}

func (s *service) CanRefund(ctx context.Context, id uuid.UUID) (bool, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return false, err
	}
	return CanRefund(*payment), nil
}

// MarkAsPaid captures the payment and confirms its order in one transaction.
// A nil gateway response is stored as an empty object.
func (s *service) MarkAsPaid(ctx context.Context, paymentID uuid.UUID, transactionID string, gatewayResponse map[string]any) (*models.Payment, error) {
	if gatewayResponse == nil {
		gatewayResponse = map[string]any{}
	}
	now := s.now().UTC()

	var payment *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		found, err := r.FindPayment(ctx, paymentID)
		if err != nil {
			return repo.MapError(err, "payment")
		}
		found.Status = enums.PaymentStatusCaptured
		found.TransactionID = transactionID
		found.GatewayResponse = gatewayResponse
		found.CapturedAt = &now
		if err := r.UpdatePayment(ctx, found); err != nil {
			return err
		}
		if err := r.ConfirmPaidOrder(ctx, found.OrderID, now); err != nil {
			return repo.MapError(err, "order")
		}
		payment = found
		return nil
	})
	if err != nil {
		return nil, repo.MapError(err, "payment")
	}

	methodCode := ""
	if payment.PaymentMethod != nil {
		methodCode = payment.PaymentMethod.Code
	}
	s.metrics.PaymentCaptured(methodCode, payment.Currency, payment.Amount)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"payment_id":     payment.ID.String(),
		"order_id":       payment.OrderID.String(),
		"transaction_id": transactionID,
	}), "payment captured")
	return payment, nil
}
