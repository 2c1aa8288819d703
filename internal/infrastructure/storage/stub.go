package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	billingapp "github.com/dormhub/backend/internal/application/billing"
)

// Ensure StubEvidenceStorage implements EvidenceStorage
var _ billingapp.EvidenceStorage = (*StubEvidenceStorage)(nil)

// StubEvidenceStorage keeps uploaded slips in memory. Used in
// development and tests; production rejects it at config validation.
type StubEvidenceStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubEvidenceStorage creates a new StubEvidenceStorage
func NewStubEvidenceStorage() *StubEvidenceStorage {
	return &StubEvidenceStorage{
		BaseURL: "https://storage.invalid",
		objects: make(map[string][]byte),
	}
}

// Upload stores the slip in memory and returns a synthetic URL
func (s *StubEvidenceStorage) Upload(ctx context.Context, storageKey, contentType string, data []byte) (string, error) {
	if storageKey == "" {
		return "", errors.New("storage key is required")
	}
	if len(data) == 0 {
		return "", errors.New("evidence payload is empty")
	}

	s.mu.Lock()
	s.objects[storageKey] = data
	s.mu.Unlock()

	return s.BaseURL + "/" + storageKey, nil
}

// GenerateDownloadURL returns a synthetic URL for a stored slip
func (s *StubEvidenceStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	s.mu.RLock()
	_, ok := s.objects[storageKey]
	s.mu.RUnlock()
	if !ok {
		return "", time.Time{}, errors.New("object not found: " + storageKey)
	}

	return s.BaseURL + "/" + storageKey, time.Now().Add(expiresIn), nil
}

// Object returns a stored slip, for tests
func (s *StubEvidenceStorage) Object(storageKey string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[storageKey]
	return data, ok
}
