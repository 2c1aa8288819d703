package handler

import (
	"github.com/gin-gonic/gin"

	billingapp "github.com/dormhub/backend/internal/application/billing"
	tenancyapp "github.com/dormhub/backend/internal/application/tenancy"
)

// TenantHandler serves tenant lifecycle endpoints
type TenantHandler struct {
	BaseHandler
	tenantService  *tenancyapp.TenantService
	balanceService *billingapp.BalanceService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService *tenancyapp.TenantService, balanceService *billingapp.BalanceService) *TenantHandler {
	return &TenantHandler{
		tenantService:  tenantService,
		balanceService: balanceService,
	}
}

// RegisterRoutes registers tenant routes
func (h *TenantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tenants := rg.Group("/tenants")
	{
		tenants.POST("/move-in", h.MoveIn)
		tenants.GET("/:id", h.GetTenant)
		tenants.POST("/:id/move-out", h.StartMoveOut)
		tenants.POST("/:id/move-out/complete", h.CompleteMoveOut)
		tenants.POST("/:id/special-items", h.AddSpecialItem)
		tenants.DELETE("/:id/special-items/:itemId", h.RemoveSpecialItem)
		tenants.POST("/:id/balance/recompute", h.RecomputeBalance)
	}
	rg.GET("/dormitories/:id/tenants", h.ListTenants)
}

// MoveIn handles POST /tenants/move-in
func (h *TenantHandler) MoveIn(c *gin.Context) {
	var input tenancyapp.MoveInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "invalid move-in payload: "+err.Error())
		return
	}

	tenant, err := h.tenantService.MoveIn(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tenant)
}

// GetTenant handles GET /tenants/:id
func (h *TenantHandler) GetTenant(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	tenant, err := h.tenantService.GetTenant(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// ListTenants handles GET /dormitories/:id/tenants
func (h *TenantHandler) ListTenants(c *gin.Context) {
	dormitoryID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	tenants, err := h.tenantService.ListTenants(c.Request.Context(), dormitoryID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenants)
}

// StartMoveOut handles POST /tenants/:id/move-out
func (h *TenantHandler) StartMoveOut(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	tenant, err := h.tenantService.StartMoveOut(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// CompleteMoveOut handles POST /tenants/:id/move-out/complete
func (h *TenantHandler) CompleteMoveOut(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	tenant, err := h.tenantService.CompleteMoveOut(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// AddSpecialItem handles POST /tenants/:id/special-items
func (h *TenantHandler) AddSpecialItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var input tenancyapp.SpecialItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "invalid special item payload: "+err.Error())
		return
	}

	tenant, err := h.tenantService.AddSpecialItem(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// RemoveSpecialItem handles DELETE /tenants/:id/special-items/:itemId
func (h *TenantHandler) RemoveSpecialItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.uuidParam(c, "itemId")
	if !ok {
		return
	}

	tenant, err := h.tenantService.RemoveSpecialItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// RecomputeBalance handles POST /tenants/:id/balance/recompute
func (h *TenantHandler) RecomputeBalance(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	balance, err := h.balanceService.Recompute(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"tenant_id": id, "outstanding_balance": balance})
}
