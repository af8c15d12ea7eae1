package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petcare/rfid-gateway/internal/pairing"
)

type countingSweeper struct {
	calls atomic.Int64
	err   error
}

func (s *countingSweeper) Sweep(ctx context.Context) (int64, error) {
	s.calls.Add(1)
	return 1, s.err
}

func TestReaperJob_SweepsOnInterval(t *testing.T) {
	ok := &countingSweeper{}
	failing := &countingSweeper{err: errors.New("redis down")}

	job := NewReaperJob(map[string]Sweeper{"ok": ok, "failing": failing}, 10*time.Millisecond)
	job.Start()

	require.Eventually(t, func() bool {
		return ok.calls.Load() >= 2 && failing.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	job.Stop()

	after := ok.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, ok.calls.Load(), "no sweeps after Stop")
}

func TestReaperJob_EvictsExpiredPairingSessions(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := pairing.NewMemoryStoreWithClock(time.Minute, clock)

	ctx := context.Background()
	_, err := store.Start(ctx, "R1", "P1")
	require.NoError(t, err)
	_, err = store.Start(ctx, "R2", "P2")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)

	job := NewReaperJob(map[string]Sweeper{"pairing sessions": store}, time.Hour)
	job.sweep()

	assert.Equal(t, 0, store.Len())
}
