package middleware

import (
	"net/http"

	apperrors "github.com/petcare/rfid-gateway/internal/errors"
	"github.com/petcare/rfid-gateway/internal/httputil"
)

// DefaultMaxBodySize comfortably fits any REST request the gateway accepts.
const DefaultMaxBodySize = 64 << 10

// BodyLimitMiddleware rejects bodies that declare a length above maxSize and
// caps the rest with http.MaxBytesReader.
type BodyLimitMiddleware struct {
	maxSize int64
}

func NewBodyLimitMiddleware(maxSize int64) *BodyLimitMiddleware {
	if maxSize <= 0 {
		maxSize = DefaultMaxBodySize
	}
	return &BodyLimitMiddleware{maxSize: maxSize}
}

func (m *BodyLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Body == http.NoBody {
			next.ServeHTTP(w, r)
			return
		}

		if r.ContentLength > m.maxSize {
			httputil.WriteError(w, apperrors.PayloadTooLarge(m.maxSize))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, m.maxSize)
		next.ServeHTTP(w, r)
	})
}
