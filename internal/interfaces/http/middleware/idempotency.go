package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dormhub/backend/internal/infrastructure/cache"
)

// IdempotencyKeyHeader lets clients retry POSTs safely. Payment and
// bill creation endpoints honor it.
const IdempotencyKeyHeader = "X-Idempotency-Key"

const (
	idempotencyTTL          = 24 * time.Hour
	maxIdempotencyKeyLength = 128
)

// responseRecorder duplicates the response body so a successful
// outcome can be stored for replay
type responseRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency deduplicates requests carrying X-Idempotency-Key.
// The first request executes and its response is stored; replays get
// the stored response back with the same status and body. A replay
// arriving while the original is still running gets 409.
func Idempotency(store cache.IdempotencyStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || len(key) > maxIdempotencyKeyLength {
			c.Next()
			return
		}
		// scope the key by route so the same key on different
		// endpoints cannot collide
		key = c.Request.Method + ":" + c.FullPath() + ":" + key

		ctx := c.Request.Context()
		stored, err := store.Begin(ctx, key, idempotencyTTL)
		if err != nil {
			if errors.Is(err, cache.ErrInFlight) {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "REQUEST_IN_FLIGHT",
						"message": "A request with this idempotency key is still being processed",
					},
				})
				return
			}
			// the store being down must not block payments
			log.Warn("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		if stored != nil {
			c.Header("Content-Type", stored.ContentType)
			c.Data(stored.StatusCode, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		recorder := &responseRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		status := recorder.Status()
		if status >= 200 && status < 300 {
			resp := &cache.StoredResponse{
				StatusCode:  status,
				ContentType: recorder.Header().Get("Content-Type"),
				Body:        recorder.body.Bytes(),
			}
			if err := store.Complete(ctx, key, resp, idempotencyTTL); err != nil {
				log.Warn("failed to store idempotent response", zap.Error(err))
			}
			return
		}

		// failed requests release the key so the client may retry
		if err := store.Release(ctx, key); err != nil {
			log.Warn("failed to release idempotency key", zap.Error(err))
		}
	}
}
