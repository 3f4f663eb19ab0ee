package models

import (
	"time"

	"github.com/google/uuid"
)

// Device is an installed client that authenticates against the API. The
// secret is stored only as a bcrypt hash.
type Device struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	SecretHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
