package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_AlwaysOK(t *testing.T) {
	engine := newTestRouter(NewSystemHandler(stubPinger{err: errors.New("db down")}))

	rec := performJSON(t, engine, http.MethodGet, "/api/v1/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
}

func TestReady_OKWhenDatabaseReachable(t *testing.T) {
	engine := newTestRouter(NewSystemHandler(stubPinger{}))

	rec := performJSON(t, engine, http.MethodGet, "/api/v1/ready", nil)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReady_UnavailableWhenDatabaseDown(t *testing.T) {
	engine := newTestRouter(NewSystemHandler(stubPinger{err: errors.New("connection refused")}))

	rec := performJSON(t, engine, http.MethodGet, "/api/v1/ready", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
