package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash      PaymentMethod = "CASH"
	PaymentMethodTransfer  PaymentMethod = "TRANSFER"
	PaymentMethodPromptPay PaymentMethod = "PROMPTPAY"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodPromptPay:
		return true
	}
	return false
}

// RequiresEvidence returns true for methods that need a reference code
// and an uploaded slip before the payment may be recorded.
func (m PaymentMethod) RequiresEvidence() bool {
	return m == PaymentMethodTransfer || m == PaymentMethodPromptPay
}

// PaymentStatus is the outcome of a payment attempt
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Payment is one payment applied to a bill. Payments are append-only;
// a bill's paid amount is the sum of its completed payments.
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	Status        PaymentStatus   `json:"status"`
	ReferenceCode string          `json:"reference_code,omitempty"`
	EvidenceKey   string          `json:"evidence_key,omitempty"`
	EvidenceURL   string          `json:"evidence_url,omitempty"`
	PaidAt        time.Time       `json:"paid_at"`
}

// NewPayment creates a completed payment record
func NewPayment(amount decimal.Decimal, method PaymentMethod) Payment {
	return Payment{
		ID:     uuid.New(),
		Amount: amount,
		Method: method,
		Status: PaymentStatusCompleted,
		PaidAt: time.Now(),
	}
}

// WithEvidence attaches the transfer reference and uploaded slip location
func (p Payment) WithEvidence(referenceCode, evidenceKey, evidenceURL string) Payment {
	p.ReferenceCode = referenceCode
	p.EvidenceKey = evidenceKey
	p.EvidenceURL = evidenceURL
	return p
}

// IsCompleted returns true when the payment counts toward the paid amount
func (p Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

// Payments is the append-only payment list stored as JSONB
type Payments []Payment

// Value implements driver.Valuer for JSONB storage
func (p Payments) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB retrieval
func (p *Payments) Scan(value interface{}) error {
	if value == nil {
		*p = Payments{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Payments: unsupported type")
	}
	if len(bytes) == 0 {
		*p = Payments{}
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// CompletedTotal sums the completed payment amounts
func (p Payments) CompletedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, payment := range p {
		if payment.IsCompleted() {
			total = total.Add(payment.Amount)
		}
	}
	return total
}
