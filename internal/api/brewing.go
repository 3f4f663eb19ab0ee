package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cuppa-app/backend/internal/service"
)

// BrewingHandler serves the static brewing catalog: methods, scaled doses
// and step schedules. All routes are public.
type BrewingHandler struct {
	brewing *service.BrewingService
}

func NewBrewingHandler(brewing *service.BrewingService) *BrewingHandler {
	return &BrewingHandler{brewing: brewing}
}

func (h *BrewingHandler) RegisterRoutes(router *gin.RouterGroup) {
	brewing := router.Group("/brewing")
	{
		brewing.GET("/methods", h.ListMethods)
		brewing.GET("/methods/:id", h.GetMethod)
		brewing.GET("/methods/:id/dose", h.GetDose)
		brewing.GET("/methods/:id/schedule", h.GetSchedule)
	}
}

func (h *BrewingHandler) ListMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": h.brewing.Methods()})
}

func (h *BrewingHandler) GetMethod(c *gin.Context) {
	method, err := h.brewing.Method(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, method)
}

func (h *BrewingHandler) GetDose(c *gin.Context) {
	servings := 1
	if raw := c.Query("servings"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "servings must be an integer"})
			return
		}
		servings = n
	}

	dose, err := h.brewing.Dose(c.Param("id"), servings)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dose)
}

func (h *BrewingHandler) GetSchedule(c *gin.Context) {
	schedule, err := h.brewing.Schedule(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"steps": schedule})
}
