package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims represents the claims carried by a device bearer token
type TokenClaims struct {
	jwt.RegisteredClaims
	DeviceID   uuid.UUID `json:"device_id"`
	DeviceName string    `json:"device_name"`
}
