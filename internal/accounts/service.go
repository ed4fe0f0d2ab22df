package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/internal/repo"
	"github.com/angelmondragon/souq-backoffice/pkg/config"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
	"github.com/angelmondragon/souq-backoffice/pkg/logger"
	"github.com/angelmondragon/souq-backoffice/pkg/validation"
)

const invalidCredentialsMessage = "invalid credentials"

// Service manages users and their addresses.
type Service interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
	CreateSuperuser(ctx context.Context, input CreateUserInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	SaveAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*models.Address, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	DefaultAddress(ctx context.Context, userID uuid.UUID, addressType enums.AddressType) (*models.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

type service struct {
	users          UserRepository
	addresses      AddressRepository
	tx             txRunner
	hasher         passwordHasher
	defaultCountry string
	logg           *logger.Logger
}

// ServiceParams bundles the dependencies required to build an accounts service.
type ServiceParams struct {
	Users     UserRepository
	Addresses AddressRepository
	TxRunner  txRunner
	Hasher    passwordHasher
	Orders    config.OrdersConfig
	Logger    *logger.Logger
}

// NewService constructs an accounts service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Addresses == nil {
		return nil, fmt.Errorf("address repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	country := strings.TrimSpace(params.Orders.DefaultCountry)
	if country == "" {
		country = "Saudi Arabia"
	}
	return &service{
		users:          params.Users,
		addresses:      params.Addresses,
		tx:             params.TxRunner,
		hasher:         params.Hasher,
		defaultCountry: country,
		logg:           params.Logger,
	}, nil
}

// NormalizeEmail trims the address and lower-cases its domain part. The local
// part keeps its case.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

func (s *service) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "the email must be set")
	}
	input.Email = email
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	// An empty password leaves the account without a usable login.
	hash := ""
	if input.Password != "" {
		var err error
		hash, err = s.hasher.Hash(input.Password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
	}

	user := input.toModel(email, hash)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, repo.MapError(err, "user")
	}

	ctx = s.logg.WithUserID(ctx, user.ID.String())
	s.logg.Info(ctx, "user created")
	return user, nil
}

func (s *service) CreateSuperuser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if input.IsStaff != nil && !*input.IsStaff {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "superuser must have is_staff=true")
	}
	if input.IsSuperuser != nil && !*input.IsSuperuser {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "superuser must have is_superuser=true")
	}
	yes := true
	input.IsStaff = &yes
	input.IsSuperuser = &yes
	input.IsActive = &yes
	return s.CreateUser(ctx, input)
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user.PasswordHash == "" || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now
	return user, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, repo.MapError(err, "user")
	}
	return user, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.users.SetActive(ctx, id, false); err != nil {
		return repo.MapError(err, "user")
	}
	s.logg.Info(s.logg.WithUserID(ctx, id.String()), "user deactivated")
	return nil
}

func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.addresses.WithTx(tx).DeleteByUser(ctx, id); err != nil {
			return err
		}
		return s.users.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return repo.MapError(err, "user")
	}
	s.logg.Info(s.logg.WithUserID(ctx, id.String()), "user deleted")
	return nil
}
