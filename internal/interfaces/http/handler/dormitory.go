package handler

import (
	"github.com/gin-gonic/gin"

	dormapp "github.com/dormhub/backend/internal/application/dormitory"
	"github.com/dormhub/backend/internal/domain/dormitory"
)

// DormitoryHandler serves dormitory and room management endpoints
type DormitoryHandler struct {
	BaseHandler
	dormService   *dormapp.DormitoryService
	statusService *dormapp.RoomStatusService
}

// NewDormitoryHandler creates a new DormitoryHandler
func NewDormitoryHandler(dormService *dormapp.DormitoryService, statusService *dormapp.RoomStatusService) *DormitoryHandler {
	return &DormitoryHandler{
		dormService:   dormService,
		statusService: statusService,
	}
}

// RegisterRoutes registers dormitory and room routes
func (h *DormitoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dorms := rg.Group("/dormitories")
	{
		dorms.POST("", h.CreateDormitory)
		dorms.GET("", h.ListDormitories)
		dorms.GET("/:id", h.GetDormitory)
		dorms.PUT("/:id/config", h.UpdateConfig)
		dorms.GET("/:id/rooms", h.ListRooms)
	}

	rooms := rg.Group("/rooms")
	{
		rooms.POST("", h.CreateRoom)
		rooms.GET("/:id", h.GetRoom)
		rooms.PUT("/:id/services", h.UpdateRoomServices)
		rooms.POST("/:id/resolve-abnormal", h.ResolveAbnormal)
		rooms.POST("/:id/maintenance", h.StartMaintenance)
		rooms.DELETE("/:id/maintenance", h.EndMaintenance)
	}
}

// CreateDormitory handles POST /dormitories
func (h *DormitoryHandler) CreateDormitory(c *gin.Context) {
	var input dormapp.CreateDormitoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "invalid dormitory payload: "+err.Error())
		return
	}

	dorm, err := h.dormService.CreateDormitory(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dorm)
}

// GetDormitory handles GET /dormitories/:id
func (h *DormitoryHandler) GetDormitory(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	dorm, err := h.dormService.GetDormitory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dorm)
}

// ListDormitories handles GET /dormitories
func (h *DormitoryHandler) ListDormitories(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	dorms, err := h.dormService.ListDormitories(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dorms)
}

// UpdateConfig handles PUT /dormitories/:id/config
func (h *DormitoryHandler) UpdateConfig(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var config dormitory.DormitoryConfig
	if err := c.ShouldBindJSON(&config); err != nil {
		h.BadRequest(c, "invalid dormitory config: "+err.Error())
		return
	}

	dorm, err := h.dormService.UpdateConfig(c.Request.Context(), id, config)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dorm)
}

// CreateRoom handles POST /rooms
func (h *DormitoryHandler) CreateRoom(c *gin.Context) {
	var input dormapp.CreateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "invalid room payload: "+err.Error())
		return
	}

	room, err := h.dormService.CreateRoom(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, room)
}

// GetRoom handles GET /rooms/:id
func (h *DormitoryHandler) GetRoom(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	room, err := h.dormService.GetRoom(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, room)
}

// ListRooms handles GET /dormitories/:id/rooms
func (h *DormitoryHandler) ListRooms(c *gin.Context) {
	dormitoryID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	rooms, err := h.dormService.ListRooms(c.Request.Context(), dormitoryID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rooms)
}

// UpdateRoomServicesRequest sets the service items attached to a room
type UpdateRoomServicesRequest struct {
	ServiceItemIDs []string `json:"service_item_ids"`
}

// UpdateRoomServices handles PUT /rooms/:id/services
func (h *DormitoryHandler) UpdateRoomServices(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateRoomServicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid services payload: "+err.Error())
		return
	}

	room, err := h.dormService.UpdateRoomServices(c.Request.Context(), id, req.ServiceItemIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, room)
}

// ResolveAbnormal handles POST /rooms/:id/resolve-abnormal
func (h *DormitoryHandler) ResolveAbnormal(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	room, err := h.statusService.ResolveAbnormal(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, room)
}

// StartMaintenance handles POST /rooms/:id/maintenance
func (h *DormitoryHandler) StartMaintenance(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	room, err := h.statusService.StartMaintenance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, room)
}

// EndMaintenance handles DELETE /rooms/:id/maintenance
func (h *DormitoryHandler) EndMaintenance(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	room, err := h.statusService.EndMaintenance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, room)
}
