package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuppa-app/backend/internal/middleware"
	"github.com/cuppa-app/backend/internal/roast"
)

// ScanHandler exposes the roast classifier over HTTP.
type ScanHandler struct {
	classifier  *roast.Classifier
	authService middleware.TokenValidator
	limiter     *middleware.RateLimiter
}

func NewScanHandler(classifier *roast.Classifier, authService middleware.TokenValidator, limiter *middleware.RateLimiter) *ScanHandler {
	return &ScanHandler{classifier: classifier, authService: authService, limiter: limiter}
}

func (h *ScanHandler) RegisterRoutes(router *gin.RouterGroup) {
	scan := router.Group("/scan")
	{
		// The limiter keys off the authenticated device, so auth runs first.
		analyze := []gin.HandlerFunc{middleware.AuthMiddleware(h.authService)}
		if h.limiter != nil {
			analyze = append(analyze, h.limiter.RateLimitMiddleware())
		}
		scan.POST("", append(analyze, h.Analyze)...)
		scan.GET("/status", h.Status)
	}
}

// Status reports the classifier lifecycle state so clients can poll while
// the model warms up.
func (h *ScanHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.classifier.State().String()})
}

// Analyze accepts a bean photo, either as a multipart "image" field or as
// the raw request body, and returns the roast classification.
func (h *ScanHandler) Analyze(c *gin.Context) {
	var result *roast.Result
	var err error

	if file, ferrHeader := c.FormFile("image"); ferrHeader == nil {
		f, openErr := file.Open()
		if openErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded image"})
			return
		}
		defer f.Close()
		result, err = h.classifier.Analyze(c.Request.Context(), f)
	} else {
		result, err = h.classifier.Analyze(c.Request.Context(), c.Request.Body)
	}

	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
