package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuppa-app/backend/internal/service"
	"github.com/cuppa-app/backend/internal/types"
)

// AuthHandler registers and authenticates devices. A device only needs a
// name and a shared secret; no user accounts exist.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	devices := router.Group("/devices")
	{
		devices.POST("/register", h.Register)
		devices.POST("/login", h.Login)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and secret are required"})
		return
	}

	device, token, err := h.authService.Register(c.Request.Context(), req.Name, req.Secret)
	if err != nil {
		if errors.Is(err, service.ErrDeviceExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"device_id": device.ID,
		"name":      device.Name,
		"token":     token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and secret are required"})
		return
	}

	device, token, err := h.authService.Login(c.Request.Context(), req.Name, req.Secret)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"device_id": device.ID,
		"name":      device.Name,
		"token":     token,
	})
}
