package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	meterapp "github.com/dormhub/backend/internal/application/metering"
	"github.com/dormhub/backend/internal/domain/metering"
)

// MeterHandler serves meter reading endpoints
type MeterHandler struct {
	BaseHandler
	meterService *meterapp.MeterService
}

// NewMeterHandler creates a new MeterHandler
func NewMeterHandler(meterService *meterapp.MeterService) *MeterHandler {
	return &MeterHandler{meterService: meterService}
}

// RegisterRoutes registers meter reading routes
func (h *MeterHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/meter-readings", h.RecordReading)
	rooms := rg.Group("/rooms")
	{
		rooms.GET("/:id/readings", h.ReadingHistory)
		rooms.GET("/:id/readings/latest", h.LatestReading)
	}
}

// RecordReading handles POST /meter-readings
func (h *MeterHandler) RecordReading(c *gin.Context) {
	var input meterapp.RecordReadingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "invalid reading payload: "+err.Error())
		return
	}

	reading, err := h.meterService.RecordReading(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reading)
}

// LatestReading handles GET /rooms/:id/readings/latest
func (h *MeterHandler) LatestReading(c *gin.Context) {
	roomID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	utility, ok := h.utilityQuery(c)
	if !ok {
		return
	}

	reading, err := h.meterService.LatestReading(c.Request.Context(), roomID, utility)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reading)
}

// ReadingHistory handles GET /rooms/:id/readings
func (h *MeterHandler) ReadingHistory(c *gin.Context) {
	roomID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	utility, ok := h.utilityQuery(c)
	if !ok {
		return
	}

	limit := 12
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			h.BadRequest(c, "invalid limit: expected an integer between 1 and 100")
			return
		}
		limit = parsed
	}

	readings, err := h.meterService.ReadingHistory(c.Request.Context(), roomID, utility, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, readings)
}

func (h *MeterHandler) utilityQuery(c *gin.Context) (metering.UtilityType, bool) {
	utility := metering.UtilityType(strings.ToUpper(c.Query("utility")))
	if !utility.IsValid() {
		h.BadRequest(c, "invalid utility: expected WATER or ELECTRIC")
		return "", false
	}
	return utility, true
}
