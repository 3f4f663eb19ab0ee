package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cuppa-app/backend/internal/models"
	"github.com/cuppa-app/backend/internal/types"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid device credentials")
	ErrDeviceExists       = errors.New("device name already registered")
)

// AuthService registers devices and issues the bearer tokens the API
// requires. Device secrets are stored only as bcrypt hashes.
type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

// NewAuthService creates a new AuthService instance
func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
	}
}

// Register creates a device and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, name, secret string) (*models.Device, string, error) {
	name = strings.TrimSpace(name)
	if name == "" || secret == "" {
		return nil, "", types.NewInputError("device name and secret are required", nil)
	}

	var existing models.Device
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, "", ErrDeviceExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	device := models.Device{
		ID:         uuid.New(),
		Name:       name,
		SecretHash: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(&device).Error; err != nil {
		return nil, "", &types.PersistenceError{Op: "register device", Err: err}
	}

	token, err := s.GenerateToken(&device)
	if err != nil {
		return nil, "", err
	}
	return &device, token, nil
}

// Login checks the device secret and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, name, secret string) (*models.Device, string, error) {
	var device models.Device
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&device).Error; err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(device.SecretHash), []byte(secret)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.GenerateToken(&device)
	if err != nil {
		return nil, "", err
	}
	return &device, token, nil
}

// GenerateToken signs a bearer token for the device.
func (s *AuthService) GenerateToken(device *models.Device) (string, error) {
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   device.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour)),
		},
		DeviceID:   device.ID,
		DeviceName: device.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses and verifies a bearer token.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &types.TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*types.TokenClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
