package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/internal/repo"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
	"github.com/angelmondragon/souq-backoffice/pkg/validation"
)

// SaveAddress creates or updates an address owned by userID. Marking it as
// default clears the flag on the user's other addresses of the same type in
// the same transaction.
func (s *service) SaveAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user_id is required")
	}
	if input.AddressType == "" {
		input.AddressType = enums.AddressTypeShipping
	}
	if strings.TrimSpace(input.Country) == "" {
		input.Country = s.defaultCountry
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	var saved *models.Address
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		addresses := s.addresses.WithTx(tx)

		addr := &models.Address{UserID: userID}
		if input.ID != uuid.Nil {
			existing, err := addresses.FindByID(ctx, input.ID)
			if err != nil {
				return err
			}
			if existing.UserID != userID {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			addr = existing
		}
		input.apply(addr)

		if addr.IsDefault {
			if err := addresses.ClearDefaults(ctx, userID, addr.AddressType); err != nil {
				return err
			}
		}
		if err := addresses.Save(ctx, addr); err != nil {
			return err
		}
		saved = addr
		return nil
	})
	if err != nil {
		return nil, repo.MapError(err, "address")
	}
	return saved, nil
}

func (s *service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	rows, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, repo.MapError(err, "address")
	}
	return rows, nil
}

// DefaultAddress returns the user's default address of the given type. When
// none exists, a default address of type "both" is returned instead.
func (s *service) DefaultAddress(ctx context.Context, userID uuid.UUID, addressType enums.AddressType) (*models.Address, error) {
	if !addressType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid address type")
	}
	addr, err := s.addresses.FindDefault(ctx, userID, addressType)
	if err == nil {
		return addr, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) || addressType == enums.AddressTypeBoth {
		return nil, repo.MapError(err, "default address")
	}
	addr, err = s.addresses.FindDefault(ctx, userID, enums.AddressTypeBoth)
	if err != nil {
		return nil, repo.MapError(err, "default address")
	}
	return addr, nil
}

func (s *service) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	addr, err := s.addresses.FindByID(ctx, addressID)
	if err != nil {
		return repo.MapError(err, "address")
	}
	if addr.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	if err := s.addresses.Delete(ctx, addressID); err != nil {
		return repo.MapError(err, "address")
	}
	return nil
}
