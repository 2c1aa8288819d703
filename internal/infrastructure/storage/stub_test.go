package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubEvidenceStorage_UploadAndDownload(t *testing.T) {
	stub := NewStubEvidenceStorage()
	ctx := context.Background()

	url, err := stub.Upload(ctx, "payments/bill-1/pay-1", "image/jpeg", []byte("slip"))
	require.NoError(t, err)
	assert.Contains(t, url, "payments/bill-1/pay-1")

	data, ok := stub.Object("payments/bill-1/pay-1")
	require.True(t, ok)
	assert.Equal(t, []byte("slip"), data)

	dlURL, expiresAt, err := stub.GenerateDownloadURL(ctx, "payments/bill-1/pay-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, url, dlURL)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 2*time.Second)
}

func TestStubEvidenceStorage_Validation(t *testing.T) {
	stub := NewStubEvidenceStorage()
	ctx := context.Background()

	_, err := stub.Upload(ctx, "", "image/jpeg", []byte("slip"))
	assert.Error(t, err)

	_, err = stub.Upload(ctx, "key", "image/jpeg", nil)
	assert.Error(t, err)

	_, _, err = stub.GenerateDownloadURL(ctx, "missing", time.Minute)
	assert.Error(t, err)
}
