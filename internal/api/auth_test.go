package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuppa-app/backend/internal/types"
)

func TestDeviceRegisterAndLogin(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := PerformRequest(router, http.MethodPost, "/api/v1/devices/register", "",
		types.RegisterDeviceRequest{Name: "phone", Secret: "s3cret"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		DeviceID string `json:"device_id"`
		Name     string `json:"name"`
		Token    string `json:"token"`
	}
	decodeJSON(t, w.Body.Bytes(), &resp)
	assert.NotEmpty(t, resp.DeviceID)
	assert.NotEmpty(t, resp.Token)

	// Duplicate registration conflicts.
	w = PerformRequest(router, http.MethodPost, "/api/v1/devices/register", "",
		types.RegisterDeviceRequest{Name: "phone", Secret: "other"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = PerformRequest(router, http.MethodPost, "/api/v1/devices/login", "",
		types.LoginDeviceRequest{Name: "phone", Secret: "s3cret"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = PerformRequest(router, http.MethodPost, "/api/v1/devices/login", "",
		types.LoginDeviceRequest{Name: "phone", Secret: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeviceRegisterValidation(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := PerformRequest(router, http.MethodPost, "/api/v1/devices/register", "", map[string]string{"name": "phone"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIssuedTokenOpensProtectedRoutes(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := PerformRequest(router, http.MethodPost, "/api/v1/devices/register", "",
		types.RegisterDeviceRequest{Name: "phone", Secret: "s3cret"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	decodeJSON(t, w.Body.Bytes(), &resp)

	w = PerformRequest(router, http.MethodGet, "/api/v1/tastings", resp.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = PerformRequest(router, http.MethodGet, "/api/v1/tastings", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
