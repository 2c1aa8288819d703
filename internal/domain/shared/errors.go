package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Error codes shared across the billing and occupancy domain.
// Handlers map these to HTTP statuses; services attach context-specific messages.
const (
	ErrCodeConfigurationMissing = "CONFIGURATION_MISSING"
	ErrCodeInvalidReading       = "INVALID_READING"
	ErrCodeDuplicateBill        = "DUPLICATE_BILL"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeMissingEvidence      = "MISSING_EVIDENCE"
	ErrCodeEvidenceUploadFailed = "EVIDENCE_UPLOAD_FAILED"
	ErrCodeRoomStateConflict    = "ROOM_STATE_CONFLICT"
	ErrCodeOutstandingBalance   = "OUTSTANDING_BALANCE"
)
