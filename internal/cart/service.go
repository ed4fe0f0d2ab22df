package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/internal/repo"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
	"github.com/angelmondragon/souq-backoffice/pkg/logger"
	"github.com/angelmondragon/souq-backoffice/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Identity is who a cart belongs to: a user, an anonymous session, or a user
// who still carries the session they shopped with before logging in.
type Identity struct {
	UserID     *uuid.UUID
	SessionKey string
}

// AddItemInput describes one line change. Override replaces the quantity
// instead of adding to it.
type AddItemInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
	Override  bool
}

// Service defines the cart operations.
type Service interface {
	GetOrCreate(ctx context.Context, identity Identity) (*models.Cart, error)
	AddItem(ctx context.Context, cartID uuid.UUID, input AddItemInput) (bool, error)
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
	Merge(ctx context.Context, targetID, sourceID uuid.UUID) error
	Summary(ctx context.Context, cartID uuid.UUID) (*Summary, error)
}

type service struct {
	carts    CartRepository
	items    CartItemRepository
	products ProductLookup
	tx       txRunner
	lock     Locker
	metrics  *metrics.Domain
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	Carts    CartRepository
	Items    CartItemRepository
	Products ProductLookup
	TxRunner txRunner
	Lock     Locker
	Metrics  *metrics.Domain
	Logger   *logger.Logger
}

// NewService constructs a cart service. A nil Lock merges without a
// cross-process guard.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Items == nil {
		return nil, fmt.Errorf("cart item repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	lock := params.Lock
	if lock == nil {
		lock = noopLocker{}
	}
	return &service{
		carts:    params.Carts,
		items:    params.Items,
		products: params.Products,
		tx:       params.TxRunner,
		lock:     lock,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// GetOrCreate resolves the cart for identity. For a user that still carries a
// session cart, the session lines are merged into the user cart and the
// session cart is deleted in the same transaction.
func (s *service) GetOrCreate(ctx context.Context, identity Identity) (*models.Cart, error) {
	sessionKey := strings.TrimSpace(identity.SessionKey)
	if identity.UserID == nil || *identity.UserID == uuid.Nil {
		if sessionKey == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "session key is required for anonymous carts")
		}
		return s.sessionCart(ctx, sessionKey)
	}

	userID := *identity.UserID
	if sessionKey == "" {
		return s.userCart(ctx, s.carts, userID)
	}

	unlock, err := s.lock.Lock(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrMergeInProgress) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart merge in progress")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire cart merge lock")
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logg.Warn(s.logg.WithUserID(ctx, userID.String()), "release cart merge lock: "+err.Error())
		}
	}()

	var cart *models.Cart
	merged := false
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		userCart, err := s.userCart(ctx, carts, userID)
		if err != nil {
			return err
		}
		cart = userCart

		sessionCart, err := carts.FindBySession(ctx, sessionKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if sessionCart.ID == userCart.ID {
			return nil
		}
		if err := s.mergeLines(ctx, tx, userCart.ID, sessionCart.ID); err != nil {
			return err
		}
		merged = true
		return carts.Delete(ctx, sessionCart.ID)
	})
	if err != nil {
		return nil, repo.MapError(err, "cart")
	}
	if merged {
		s.metrics.CartMerged()
		s.logg.Info(s.logg.WithCartID(ctx, cart.ID.String()), "session cart merged")
	}
	return cart, nil
}

func (s *service) userCart(ctx context.Context, carts CartRepository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := carts.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.MapError(err, "cart")
	}
	cart = &models.Cart{UserID: &userID}
	if err := carts.Create(ctx, cart); err != nil {
		return nil, repo.MapError(err, "cart")
	}
	return cart, nil
}

func (s *service) sessionCart(ctx context.Context, sessionKey string) (*models.Cart, error) {
	cart, err := s.carts.FindBySession(ctx, sessionKey)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.MapError(err, "cart")
	}
	cart = &models.Cart{SessionKey: &sessionKey}
	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, repo.MapError(err, "cart")
	}
	return cart, nil
}

// AddItem upserts the (product, variant) line. It reports false when the
// resulting quantity is not positive: the line is then removed, or never created.
func (s *service) AddItem(ctx context.Context, cartID uuid.UUID, input AddItemInput) (bool, error) {
	if input.ProductID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if err := s.checkLineTarget(ctx, input.ProductID, input.VariantID); err != nil {
		return false, err
	}

	var added bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.carts.WithTx(tx).FindByID(ctx, cartID); err != nil {
			return err
		}
		var err error
		added, err = s.addLine(ctx, tx, cartID, input)
		if err != nil {
			return err
		}
		return s.carts.WithTx(tx).Touch(ctx, cartID)
	})
	if err != nil {
		return false, repo.MapError(err, "cart")
	}
	return added, nil
}

func (s *service) addLine(ctx context.Context, tx *gorm.DB, cartID uuid.UUID, input AddItemInput) (bool, error) {
	items := s.items.WithTx(tx)
	line, err := items.FindLine(ctx, cartID, input.ProductID, input.VariantID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if line == nil {
		if input.Quantity <= 0 {
			return false, nil
		}
		line = &models.CartItem{
			CartID:    cartID,
			ProductID: input.ProductID,
			VariantID: input.VariantID,
			Quantity:  input.Quantity,
		}
		return true, items.Save(ctx, line)
	}

	if input.Override {
		line.Quantity = input.Quantity
	} else {
		line.Quantity += input.Quantity
	}
	if line.Quantity <= 0 {
		return false, items.Delete(ctx, line.ID)
	}
	return true, items.Save(ctx, line)
}

func (s *service) checkLineTarget(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) error {
	if _, err := s.products.FindProduct(ctx, productID); err != nil {
		return repo.MapError(err, "product")
	}
	if variantID == nil {
		return nil
	}
	variant, err := s.products.FindVariant(ctx, *variantID)
	if err != nil {
		return repo.MapError(err, "product variant")
	}
	if variant.ProductID != productID {
		return pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to product")
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.items.WithTx(tx).DeleteLine(ctx, cartID, productID, variantID); err != nil {
			return err
		}
		return s.carts.WithTx(tx).Touch(ctx, cartID)
	})
	return repo.MapError(err, "cart")
}

func (s *service) Clear(ctx context.Context, cartID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return clearCart(ctx, s.carts.WithTx(tx), s.items.WithTx(tx), cartID)
	})
	return repo.MapError(err, "cart")
}

func clearCart(ctx context.Context, carts CartRepository, items CartItemRepository, cartID uuid.UUID) error {
	if err := items.DeleteByCart(ctx, cartID); err != nil {
		return err
	}
	return carts.Touch(ctx, cartID)
}

// Merge adds every line of source into target. The source cart is left intact.
func (s *service) Merge(ctx context.Context, targetID, sourceID uuid.UUID) error {
	if targetID == sourceID {
		return nil
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		if _, err := carts.FindByID(ctx, targetID); err != nil {
			return err
		}
		if _, err := carts.FindByID(ctx, sourceID); err != nil {
			return err
		}
		return s.mergeLines(ctx, tx, targetID, sourceID)
	})
	return repo.MapError(err, "cart")
}

func (s *service) mergeLines(ctx context.Context, tx *gorm.DB, targetID, sourceID uuid.UUID) error {
	lines, err := s.items.WithTx(tx).ListByCart(ctx, sourceID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := s.addLine(ctx, tx, targetID, AddItemInput{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
		}); err != nil {
			return err
		}
	}
	return s.carts.WithTx(tx).Touch(ctx, targetID)
}

// Summary prices the cart from the current product and variant rows.
func (s *service) Summary(ctx context.Context, cartID uuid.UUID) (*Summary, error) {
	if _, err := s.carts.FindByID(ctx, cartID); err != nil {
		return nil, repo.MapError(err, "cart")
	}
	lines, err := s.items.ListByCart(ctx, cartID)
	if err != nil {
		return nil, repo.MapError(err, "cart")
	}
	return summarize(cartID, lines), nil
}
