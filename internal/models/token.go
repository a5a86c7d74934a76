package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"gorm.io/gorm"
)

// ConfirmEmailToken confirms ownership of a user's e-mail address
type ConfirmEmailToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id" validate:"required"`
	Key       string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"key"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for ConfirmEmailToken
func (ConfirmEmailToken) TableName() string {
	return "confirm_email_tokens"
}

// BeforeCreate generates a key when none was supplied
func (t *ConfirmEmailToken) BeforeCreate(tx *gorm.DB) error {
	if t.Key != "" {
		return nil
	}
	key, err := GenerateTokenKey()
	if err != nil {
		return err
	}
	t.Key = key
	return nil
}

// GenerateTokenKey returns 64 random hex characters
func GenerateTokenKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
