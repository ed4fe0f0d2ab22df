package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/pkg/enums"
)

// Address belongs to exactly one user. At most one address per
// (user, address_type) carries IsDefault.
type Address struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID         uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index:idx_addresses_user_type"`
	AddressType    enums.AddressType `gorm:"column:address_type;not null;default:'shipping';index:idx_addresses_user_type"`
	FullName       string            `gorm:"column:full_name;not null"`
	Phone          string            `gorm:"column:phone;not null"`
	Country        string            `gorm:"column:country;not null;default:'Saudi Arabia'"`
	City           string            `gorm:"column:city;not null"`
	District       string            `gorm:"column:district;not null;default:''"`
	StreetAddress  string            `gorm:"column:street_address;not null"`
	BuildingNumber string            `gorm:"column:building_number;size:50;not null;default:''"`
	PostalCode     string            `gorm:"column:postal_code;size:20;not null;default:''"`
	IsDefault      bool              `gorm:"column:is_default;not null;default:false"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
