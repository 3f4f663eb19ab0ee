package api

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuppa-app/backend/internal/roast"
	"github.com/cuppa-app/backend/internal/types"
)

// allowAllValidator accepts any token; scan tests exercise the classifier,
// not the auth stack.
type allowAllValidator struct{}

func (allowAllValidator) ValidateToken(string) (*types.TokenClaims, error) {
	return &types.TokenClaims{DeviceID: uuid.Nil, DeviceName: "test"}, nil
}

func scanRouter(t *testing.T, init bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	classifier := roast.New()
	if init {
		require.NoError(t, classifier.Init(context.Background()))
	}

	router := gin.New()
	NewScanHandler(classifier, allowAllValidator{}, nil).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func solidPNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestScanRawBody(t *testing.T) {
	router := scanRouter(t, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", bytes.NewReader(solidPNG(t, color.RGBA{25, 20, 18, 255})))
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result roast.Result
	decodeJSON(t, w.Body.Bytes(), &result)
	assert.Equal(t, roast.LevelVeryDark, result.RoastLevel)
	assert.NotEmpty(t, result.Recommendation)
}

func TestScanMultipartUpload(t *testing.T) {
	router := scanRouter(t, true)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "beans.png")
	require.NoError(t, err)
	_, err = part.Write(solidPNG(t, color.RGBA{230, 230, 230, 255}))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result roast.Result
	decodeJSON(t, w.Body.Bytes(), &result)
	assert.Equal(t, roast.LevelVeryLight, result.RoastLevel)
}

func TestScanBeforeInitReturns503(t *testing.T) {
	router := scanRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", bytes.NewReader(solidPNG(t, color.RGBA{100, 100, 100, 255})))
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestScanUndecodableImage(t *testing.T) {
	router := scanRouter(t, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", bytes.NewReader([]byte("not an image")))
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScanStatusEndpoint(t *testing.T) {
	router := scanRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scan/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		State string `json:"state"`
	}
	decodeJSON(t, w.Body.Bytes(), &resp)
	assert.Equal(t, "ready", resp.State)
}
