package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	"github.com/angelmondragon/souq-backoffice/pkg/enums"
)

// CreateUserInput carries the fields accepted when registering a user. Nil
// flags fall back to the regular-user defaults.
type CreateUserInput struct {
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password"`
	FirstName   string     `json:"first_name" validate:"max=50"`
	LastName    string     `json:"last_name" validate:"max=50"`
	Phone       *string    `json:"phone" validate:"omitempty,phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	IsStaff     *bool      `json:"is_staff"`
	IsSuperuser *bool      `json:"is_superuser"`
	IsActive    *bool      `json:"is_active"`
	IsCustomer  *bool      `json:"is_customer"`
}

func (in CreateUserInput) toModel(email, passwordHash string) *models.User {
	return &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		DateOfBirth:  in.DateOfBirth,
		IsStaff:      boolOr(in.IsStaff, false),
		IsSuperuser:  boolOr(in.IsSuperuser, false),
		IsActive:     boolOr(in.IsActive, true),
		IsCustomer:   boolOr(in.IsCustomer, true),
	}
}

// AddressInput is the editable part of an address. ID is set when updating.
type AddressInput struct {
	ID             uuid.UUID         `json:"id"`
	AddressType    enums.AddressType `json:"address_type" validate:"omitempty,enum"`
	FullName       string            `json:"full_name" validate:"required,max=100"`
	Phone          string            `json:"phone" validate:"required,max=17"`
	Country        string            `json:"country" validate:"max=100"`
	City           string            `json:"city" validate:"required,max=100"`
	District       string            `json:"district" validate:"max=100"`
	StreetAddress  string            `json:"street_address" validate:"required,max=255"`
	BuildingNumber string            `json:"building_number" validate:"max=50"`
	PostalCode     string            `json:"postal_code" validate:"max=20"`
	IsDefault      bool              `json:"is_default"`
}

func (in AddressInput) apply(addr *models.Address) {
	addr.AddressType = in.AddressType
	addr.FullName = in.FullName
	addr.Phone = in.Phone
	addr.Country = in.Country
	addr.City = in.City
	addr.District = in.District
	addr.StreetAddress = in.StreetAddress
	addr.BuildingNumber = in.BuildingNumber
	addr.PostalCode = in.PostalCode
	addr.IsDefault = in.IsDefault
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
