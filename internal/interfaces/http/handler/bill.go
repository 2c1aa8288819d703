package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	billingapp "github.com/dormhub/backend/internal/application/billing"
)

// BillHandler serves bill lifecycle endpoints
type BillHandler struct {
	BaseHandler
	billingService *billingapp.BillingService
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(billingService *billingapp.BillingService) *BillHandler {
	return &BillHandler{billingService: billingService}
}

// RegisterRoutes registers bill routes
func (h *BillHandler) RegisterRoutes(rg *gin.RouterGroup) {
	bills := rg.Group("/bills")
	{
		bills.POST("", h.CreateBill)
		bills.POST("/batch", h.CreateBillsBatch)
		bills.POST("/sweep-overdue", h.SweepOverdue)
		bills.GET("/:id", h.GetBill)
		bills.DELETE("/:id", h.DeleteBill)
		bills.POST("/:id/revert", h.RevertBill)
	}
	rg.GET("/dormitories/:id/bills", h.ListBills)
	rg.GET("/rooms/:id/price", h.CalculateRoomPrice)
}

// CreateBill handles POST /bills
func (h *BillHandler) CreateBill(c *gin.Context) {
	var input billingapp.CreateBillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "invalid bill payload: "+err.Error())
		return
	}

	bill, err := h.billingService.CreateBill(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bill)
}

// CreateBillsBatch handles POST /bills/batch
func (h *BillHandler) CreateBillsBatch(c *gin.Context) {
	var input billingapp.CreateBillsBatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "invalid batch payload: "+err.Error())
		return
	}

	results, err := h.billingService.CreateBillsBatch(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, results)
}

// GetBill handles GET /bills/:id
func (h *BillHandler) GetBill(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	bill, err := h.billingService.GetBill(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// ListBills handles GET /dormitories/:id/bills
func (h *BillHandler) ListBills(c *gin.Context) {
	dormitoryID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	page, err := h.billingService.ListBills(c.Request.Context(), dormitoryID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// DeleteBill handles DELETE /bills/:id
func (h *BillHandler) DeleteBill(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.billingService.DeleteBill(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RevertBillRequest voids a bill with an audit note
type RevertBillRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RevertBill handles POST /bills/:id/revert
func (h *BillHandler) RevertBill(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req RevertBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid revert payload: "+err.Error())
		return
	}

	bill, err := h.billingService.RevertBillToDraft(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// SweepOverdue handles POST /bills/sweep-overdue
func (h *BillHandler) SweepOverdue(c *gin.Context) {
	swept, err := h.billingService.SweepOverdueBills(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"swept": swept})
}

// CalculateRoomPrice handles GET /rooms/:id/price
func (h *BillHandler) CalculateRoomPrice(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	quote, err := h.billingService.CalculateRoomPrice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}
