package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cuppa-app/backend/internal/middleware"
	"github.com/cuppa-app/backend/internal/models"
	"github.com/cuppa-app/backend/internal/service"
	"github.com/cuppa-app/backend/internal/types"
)

// TastingHandler exposes the tasting-record pipeline: CRUD, grouping,
// chart capture, flavor toggles, similarity lookup and PDF export.
type TastingHandler struct {
	tastings      *service.TastingService
	exports       *service.ExportService
	authService   middleware.TokenValidator
	exportLimiter *middleware.RateLimiter
}

func NewTastingHandler(tastings *service.TastingService, exports *service.ExportService, authService middleware.TokenValidator, exportLimiter *middleware.RateLimiter) *TastingHandler {
	return &TastingHandler{
		tastings:      tastings,
		exports:       exports,
		authService:   authService,
		exportLimiter: exportLimiter,
	}
}

func (h *TastingHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)

	tastings := router.Group("/tastings", auth)
	{
		tastings.GET("", h.List)
		tastings.POST("", h.Create)
		tastings.GET("/:id", h.Get)
		tastings.DELETE("/:id", h.Delete)
		tastings.PATCH("/:id/chart", h.UpdateChart)
		tastings.POST("/:id/flavors/toggle", h.ToggleFlavor)
		tastings.GET("/:id/similar", h.Similar)
		if h.exportLimiter != nil {
			tastings.POST("/:id/export", h.exportLimiter.RateLimitMiddleware(), h.Export)
		} else {
			tastings.POST("/:id/export", h.Export)
		}
	}

	groups := router.Group("/groups", auth)
	{
		groups.GET("", h.ListGroups)
		groups.POST("", h.AddGroup)
	}

	snapshot := router.Group("/snapshot", auth)
	{
		snapshot.GET("", h.Snapshot)
		snapshot.PUT("", h.Restore)
	}

	router.GET("/flavors", h.ListFlavors)
}

func recordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return 0, false
	}
	return id, true
}

// List returns every stored record, or only the records of one group when
// the "group" query parameter is present.
func (h *TastingHandler) List(c *gin.Context) {
	var (
		records []models.TastingRecord
		err     error
	)

	if group, ok := c.GetQuery("group"); ok {
		records, err = h.tastings.ListByGroup(c.Request.Context(), group)
	} else {
		records, err = h.tastings.ListAll(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tastings": records})
}

func (h *TastingHandler) Create(c *gin.Context) {
	var req types.CreateTastingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record := &models.TastingRecord{
		Name:       req.Name,
		Origin:     req.Origin,
		Notes:      req.Notes,
		Group:      req.Group,
		Ratings:    models.RatingsMap(req.Ratings),
		Flavors:    models.FlavorList(req.Flavors),
		ChartImage: req.ChartImage,
	}

	saved, err := h.tastings.Save(c.Request.Context(), record)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *TastingHandler) Get(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	record, err := h.tastings.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// Delete removes a record. Deleting an absent id succeeds; the end state
// (no such record) is the same either way.
func (h *TastingHandler) Delete(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	if err := h.tastings.DeleteByID(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TastingHandler) UpdateChart(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	var req types.UpdateChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chart_image is required"})
		return
	}

	if err := h.tastings.UpdateChart(c.Request.Context(), id, req.ChartImage); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *TastingHandler) ToggleFlavor(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	var req types.ToggleFlavorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "flavor is required"})
		return
	}

	record, err := h.tastings.ToggleFlavor(c.Request.Context(), id, req.Flavor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *TastingHandler) Similar(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	limit := 5
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.tastings.FindSimilar(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tastings": records})
}

func (h *TastingHandler) Export(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	result, err := h.exports.Export(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *TastingHandler) ListGroups(c *gin.Context) {
	groups, err := h.tastings.Groups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (h *TastingHandler) AddGroup(c *gin.Context) {
	var req types.AddGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	groups, err := h.tastings.AddGroup(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// Snapshot returns the whole record list in storage order, matching the
// shape Restore accepts.
func (h *TastingHandler) Snapshot(c *gin.Context) {
	records, err := h.tastings.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// Restore replaces the stored record list with the posted one.
func (h *TastingHandler) Restore(c *gin.Context) {
	var records []models.TastingRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.tastings.Restore(c.Request.Context(), records); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"restored": len(records)})
}

// ListFlavors returns the fixed flavor vocabulary clients build tag pickers from.
func (h *TastingHandler) ListFlavors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"flavors": models.FlavorVocabulary})
}
