package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	billingapp "github.com/dormhub/backend/internal/application/billing"
	"github.com/dormhub/backend/internal/domain/billing"
)

// maxEvidenceSize caps uploaded payment slips at 10 MiB
const maxEvidenceSize = 10 << 20

// PaymentHandler serves payment recording and evidence endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	bills := rg.Group("/bills")
	{
		bills.POST("/:id/payments", h.RecordPayment)
		bills.GET("/:id/payments/:paymentId/evidence", h.EvidenceURL)
	}
}

// RecordPayment handles POST /bills/:id/payments. The body is
// multipart form data so transfer and PromptPay slips can ride along
// with the amount in a single request.
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	billID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	amount, err := decimal.NewFromString(c.PostForm("amount"))
	if err != nil {
		h.BadRequest(c, "invalid amount: expected a decimal string")
		return
	}

	input := billingapp.RecordPaymentInput{
		BillID:        billID,
		Amount:        amount,
		Method:        billing.PaymentMethod(c.PostForm("method")),
		ReferenceCode: c.PostForm("reference_code"),
	}

	if fileHeader, err := c.FormFile("evidence"); err == nil {
		if fileHeader.Size > maxEvidenceSize {
			h.BadRequest(c, "evidence file exceeds the 10MB limit")
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			h.BadRequest(c, "unreadable evidence file: "+err.Error())
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxEvidenceSize))
		if err != nil {
			h.BadRequest(c, "unreadable evidence file: "+err.Error())
			return
		}
		input.EvidenceData = data
		input.EvidenceContentType = fileHeader.Header.Get("Content-Type")
	}

	bill, err := h.paymentService.RecordPayment(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bill)
}

// EvidenceURL handles GET /bills/:id/payments/:paymentId/evidence and
// returns a short-lived download link for the stored slip.
func (h *PaymentHandler) EvidenceURL(c *gin.Context) {
	billID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	paymentID, ok := h.uuidParam(c, "paymentId")
	if !ok {
		return
	}

	url, err := h.paymentService.EvidenceURL(c.Request.Context(), billID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"url": url})
}
