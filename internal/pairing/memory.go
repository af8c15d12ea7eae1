package pairing

import (
	"context"
	"sync"
	"time"

	"github.com/petcare/rfid-gateway/internal/model"
)

// MemoryStore is a process-local Store. Expired sessions are evicted on every
// access, so no timer is needed for correctness.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]model.PairingSession
	timeout  time.Duration
	now      func() time.Time
}

func NewMemoryStore(timeout time.Duration) *MemoryStore {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &MemoryStore{
		sessions: make(map[string]model.PairingSession),
		timeout:  timeout,
		now:      time.Now,
	}
}

// NewMemoryStoreWithClock is NewMemoryStore with an injected clock.
func NewMemoryStoreWithClock(timeout time.Duration, now func() time.Time) *MemoryStore {
	s := NewMemoryStore(timeout)
	s.now = now
	return s
}

func (s *MemoryStore) Timeout() time.Duration {
	return s.timeout
}

func (s *MemoryStore) Start(ctx context.Context, readerID, petID string) (*model.PairingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	session := model.PairingSession{
		ReaderID:  readerID,
		PetID:     petID,
		CreatedAt: now,
	}
	s.sessions[readerID] = session
	return &session, nil
}

func (s *MemoryStore) Cancel(ctx context.Context, readerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(s.now())
	delete(s.sessions, readerID)
	return nil
}

func (s *MemoryStore) Status(ctx context.Context, readerID string) (*model.PairingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(s.now())
	session, ok := s.sessions[readerID]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (s *MemoryStore) Claim(ctx context.Context, readerID string) (*model.PairingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(s.now())
	session, ok := s.sessions[readerID]
	if !ok {
		return nil, nil
	}
	delete(s.sessions, readerID)
	return &session, nil
}

func (s *MemoryStore) Sweep(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sweepLocked(s.now()), nil
}

// Len reports the number of stored sessions, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemoryStore) sweepLocked(now time.Time) int64 {
	var removed int64
	for readerID, session := range s.sessions {
		if now.Sub(session.CreatedAt) > s.timeout {
			delete(s.sessions, readerID)
			removed++
		}
	}
	return removed
}
