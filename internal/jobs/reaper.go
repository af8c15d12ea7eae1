package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper evicts expired entries and reports how many were removed.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// ReaperJob periodically sweeps idle readers' expired pairing sessions.
// Expiry is enforced on access; the job only bounds memory for readers that
// never come back.
type ReaperJob struct {
	sweepers map[string]Sweeper
	interval time.Duration
	done     chan struct{}
	stopped  chan struct{}
}

func NewReaperJob(sweepers map[string]Sweeper, interval time.Duration) *ReaperJob {
	return &ReaperJob{
		sweepers: sweepers,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (j *ReaperJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("reaper job started")
}

// Stop signals the job and waits for an in-progress sweep to finish.
func (j *ReaperJob) Stop() {
	close(j.done)
	<-j.stopped
	log.Info().Msg("reaper job stopped")
}

func (j *ReaperJob) run() {
	defer close(j.stopped)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *ReaperJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for name, s := range j.sweepers {
		j.runSweep(ctx, name, s.Sweep)
	}
}

func (j *ReaperJob) runSweep(ctx context.Context, name string, fn func(context.Context) (int64, error)) {
	count, err := fn(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("failed to sweep %s", name)
	} else if count > 0 {
		log.Info().Int64("count", count).Msgf("swept %s", name)
	}
}
