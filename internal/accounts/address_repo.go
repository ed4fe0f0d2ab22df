package accounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/souq-backoffice/internal/repo"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
)

// AddressRepo persists user addresses.
type AddressRepo struct {
	repo.Base
}

func NewAddressRepo(db *gorm.DB) *AddressRepo {
	return &AddressRepo{Base: repo.NewBase(db)}
}

func (r *AddressRepo) WithTx(tx *gorm.DB) AddressRepository {
	return &AddressRepo{Base: r.Rebind(tx)}
}

func (r *AddressRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	var addr models.Address
	if err := r.DB(ctx).First(&addr, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}

// ListByUser returns the default address first, then the newest.
func (r *AddressRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var rows []models.Address
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *AddressRepo) FindDefault(ctx context.Context, userID uuid.UUID, addressType enums.AddressType) (*models.Address, error) {
	var addr models.Address
	err := r.DB(ctx).
		Where("user_id = ? AND address_type = ? AND is_default = ?", userID, addressType, true).
		Order("updated_at DESC").
		First(&addr).Error
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// ClearDefaults unsets is_default on every address of the (user, type) pair.
func (r *AddressRepo) ClearDefaults(ctx context.Context, userID uuid.UUID, addressType enums.AddressType) error {
	return r.DB(ctx).
		Model(&models.Address{}).
		Where("user_id = ? AND address_type = ? AND is_default = ?", userID, addressType, true).
		Update("is_default", false).Error
}

// Save inserts new addresses and overwrites existing ones.
func (r *AddressRepo) Save(ctx context.Context, addr *models.Address) error {
	if addr.ID == uuid.Nil {
		return r.DB(ctx).Omit(clause.Associations).Create(addr).Error
	}
	return r.DB(ctx).Omit(clause.Associations).Save(addr).Error
}

func (r *AddressRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Delete(&models.Address{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *AddressRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.DB(ctx).Where("user_id = ?", userID).Delete(&models.Address{}).Error
}
