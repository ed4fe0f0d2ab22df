package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the back-office identity; email is the login name.
type User struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Email         string     `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash  string     `gorm:"column:password_hash;not null"`
	FirstName     string     `gorm:"column:first_name;not null"`
	LastName      string     `gorm:"column:last_name;not null"`
	Phone         *string    `gorm:"column:phone"`
	DateOfBirth   *time.Time `gorm:"column:date_of_birth"`
	IsStaff       bool       `gorm:"column:is_staff;not null"`
	IsSuperuser   bool       `gorm:"column:is_superuser;not null"`
	IsActive      bool       `gorm:"column:is_active;not null"`
	IsCustomer    bool       `gorm:"column:is_customer;not null"`
	EmailVerified bool       `gorm:"column:email_verified;not null"`
	PhoneVerified bool       `gorm:"column:phone_verified;not null"`
	LastLoginAt   *time.Time `gorm:"column:last_login_at"`
	Addresses     []Address  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	DateJoined    time.Time  `gorm:"column:date_joined;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// FullName joins first and last name, trimming the gap when either is empty.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) ShortName() string {
	return u.FirstName
}
