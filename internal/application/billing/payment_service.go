package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dormhub/backend/internal/domain/billing"
	"github.com/dormhub/backend/internal/domain/shared"
)

// EvidenceStorage stores payment slips in an object store and hands
// back a retrievable URL. Implemented by the S3 adapter and an
// in-memory stub for development.
type EvidenceStorage interface {
	// Upload writes the object and returns its public or presigned URL
	Upload(ctx context.Context, storageKey, contentType string, data []byte) (string, error)
	// GenerateDownloadURL returns a time-limited URL for an existing object
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// PaymentService records payments against bills. Evidence upload
// happens before any mutation; if the upload fails nothing is
// persisted, and the bill, room and balance updates commit as one
// transaction.
type PaymentService struct {
	billRepo   billing.BillRepository
	roomStatus RoomStatusCoordinator
	balance    *BalanceService
	evidence   EvidenceStorage
	tx         shared.TransactionManager
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	billRepo billing.BillRepository,
	roomStatus RoomStatusCoordinator,
	balance *BalanceService,
	evidence EvidenceStorage,
	tx shared.TransactionManager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		billRepo:   billRepo,
		roomStatus: roomStatus,
		balance:    balance,
		evidence:   evidence,
		tx:         tx,
		publisher:  publisher,
		logger:     logger,
	}
}

// RecordPaymentInput contains input for recording a payment
type RecordPaymentInput struct {
	BillID              uuid.UUID             `json:"bill_id" binding:"required"`
	Amount              decimal.Decimal       `json:"amount" binding:"required"`
	Method              billing.PaymentMethod `json:"method" binding:"required"`
	ReferenceCode       string                `json:"reference_code"`
	EvidenceData        []byte                `json:"-"`
	EvidenceContentType string                `json:"-"`
}

// RecordPayment applies a payment to a bill. Cash needs no evidence;
// transfer and PromptPay require a reference code and an uploaded
// slip. Room status follows the outcome: full settlement returns the
// room to OCCUPIED, a partial payment parks it in PENDING_PAYMENT.
func (s *PaymentService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*billing.Bill, error) {
	if !input.Method.IsValid() {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code,
			fmt.Sprintf("unknown payment method %q", input.Method))
	}

	bill, err := s.billRepo.FindByID(ctx, input.BillID)
	if err != nil {
		return nil, err
	}
	// Fail fast on amount problems before touching the object store.
	if err := bill.CanApplyPayment(input.Amount); err != nil {
		return nil, err
	}

	payment := billing.NewPayment(input.Amount, input.Method)
	if input.Method.RequiresEvidence() {
		if input.ReferenceCode == "" || len(input.EvidenceData) == 0 {
			return nil, shared.NewDomainError(shared.ErrCodeMissingEvidence,
				fmt.Sprintf("%s payments require a reference code and an evidence slip", input.Method))
		}
		storageKey := fmt.Sprintf("payments/%s/%s", bill.ID, payment.ID)
		evidenceURL, err := s.evidence.Upload(ctx, storageKey, input.EvidenceContentType, input.EvidenceData)
		if err != nil {
			s.logger.Error("evidence upload failed",
				zap.String("bill_id", bill.ID.String()), zap.Error(err))
			return nil, shared.NewDomainError(shared.ErrCodeEvidenceUploadFailed,
				"evidence upload failed, payment was not recorded")
		}
		payment = payment.WithEvidence(input.ReferenceCode, storageKey, evidenceURL)
	}

	if err := bill.ApplyPayment(payment); err != nil {
		return nil, err
	}

	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		if err := s.billRepo.SaveWithLock(ctx, bill); err != nil {
			return err
		}
		_, err := s.roomStatus.OnPaymentRecorded(ctx, bill.RoomID, bill.IsSettled())
		return err
	})
	if err != nil {
		return nil, err
	}

	if bill.TenantID != nil {
		if _, err := s.balance.Recompute(ctx, *bill.TenantID); err != nil {
			s.logger.Warn("balance recompute after payment failed",
				zap.String("tenant_id", bill.TenantID.String()), zap.Error(err))
		}
	}

	events := bill.GetDomainEvents()
	if len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish payment events",
				zap.String("bill_id", bill.ID.String()), zap.Error(err))
		}
		bill.ClearDomainEvents()
	}

	s.logger.Info("payment recorded",
		zap.String("bill_id", bill.ID.String()),
		zap.String("amount", input.Amount.StringFixed(2)),
		zap.String("method", string(input.Method)),
		zap.String("status", string(bill.Status)))
	return bill, nil
}

// EvidenceURL returns a fresh time-limited download URL for a
// payment's stored slip.
func (s *PaymentService) EvidenceURL(ctx context.Context, billID, paymentID uuid.UUID) (string, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return "", err
	}
	for _, payment := range bill.PaymentRecords {
		if payment.ID == paymentID {
			if payment.EvidenceKey == "" {
				return "", shared.NewDomainError(shared.ErrCodeMissingEvidence, "payment has no stored evidence")
			}
			url, _, err := s.evidence.GenerateDownloadURL(ctx, payment.EvidenceKey, 15*time.Minute)
			return url, err
		}
	}
	return "", shared.ErrNotFound
}
