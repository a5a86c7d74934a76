package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserType distinguishes shop owners from buyers
type UserType string

const (
	UserTypeShop  UserType = "shop"
	UserTypeBuyer UserType = "buyer"
)

// User is a marketplace account; e-mail is the login
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Email       string     `gorm:"type:varchar(254);not null;uniqueIndex" json:"email" validate:"required,email"`
	Password    string     `gorm:"type:varchar(128);not null" json:"password"`
	Username    string     `gorm:"type:varchar(150)" json:"username"`
	FirstName   string     `gorm:"type:varchar(150)" json:"first_name"`
	LastName    string     `gorm:"type:varchar(150)" json:"last_name"`
	Company     string     `gorm:"type:varchar(40)" json:"company"`
	Position    string     `gorm:"type:varchar(40)" json:"position"`
	Type        UserType   `gorm:"type:varchar(5);not null" json:"type" validate:"oneof=shop buyer"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	IsStaff     bool       `gorm:"not null" json:"is_staff"`
	IsSuperuser bool       `gorm:"not null" json:"is_superuser"`
	DateJoined  time.Time  `gorm:"not null" json:"date_joined"`
	LastLogin   *time.Time `json:"last_login"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate fills date_joined for records that do not carry one and hashes
// plain-text passwords. Encoded hashes ("algorithm$...") are stored as given and
// an empty password stays empty, which leaves the account without a usable login.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now()
	}
	if u.Password != "" && !isPasswordHash(u.Password) {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		u.Password = string(hash)
	}
	return nil
}

// isPasswordHash reports whether password is already an encoded hash
func isPasswordHash(password string) bool {
	return strings.Contains(password, "$")
}


// Contact is a delivery address of a user
type Contact struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"not null;index" json:"user_id" validate:"required"`
	City      string `gorm:"type:varchar(50);not null" json:"city" validate:"required"`
	Street    string `gorm:"type:varchar(100);not null" json:"street" validate:"required"`
	House     string `gorm:"type:varchar(15)" json:"house"`
	Structure string `gorm:"type:varchar(15)" json:"structure"`
	Building  string `gorm:"type:varchar(15)" json:"building"`
	Apartment string `gorm:"type:varchar(15)" json:"apartment"`
	Phone     string `gorm:"type:varchar(20);not null" json:"phone" validate:"required"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Contact
func (Contact) TableName() string {
	return "contacts"
}
