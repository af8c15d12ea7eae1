// Package pairing holds the time-bounded association between a reader and
// the pet it is waiting to enroll a tag for.
package pairing

import (
	"context"
	"time"

	"github.com/petcare/rfid-gateway/internal/model"
)

// DefaultTimeout is how long a reader waits for a tag after pairing starts.
const DefaultTimeout = 60 * time.Second

// Store keeps at most one live session per reader. A session expires
// Timeout() after its creation; expired sessions are never returned.
type Store interface {
	// Start replaces any session for the reader.
	Start(ctx context.Context, readerID, petID string) (*model.PairingSession, error)
	// Cancel removes the reader's session. Missing sessions are not an error.
	Cancel(ctx context.Context, readerID string) error
	// Status returns the live session or nil.
	Status(ctx context.Context, readerID string) (*model.PairingSession, error)
	// Claim atomically returns and removes the live session, or nil.
	Claim(ctx context.Context, readerID string) (*model.PairingSession, error)
	// Sweep evicts expired sessions and reports how many were removed.
	Sweep(ctx context.Context) (int64, error)
	Timeout() time.Duration
}
