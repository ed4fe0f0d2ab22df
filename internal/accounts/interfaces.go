package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
)

// UserRepository defines the persistence surface for users.
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AddressRepository defines the persistence surface for addresses.
type AddressRepository interface {
	WithTx(tx *gorm.DB) AddressRepository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Address, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	FindDefault(ctx context.Context, userID uuid.UUID, addressType enums.AddressType) (*models.Address, error)
	ClearDefaults(ctx context.Context, userID uuid.UUID, addressType enums.AddressType) error
	Save(ctx context.Context, addr *models.Address) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
