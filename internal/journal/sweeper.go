package journal

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sweeper prunes old jobs from a Store on a schedule
type Sweeper struct {
	cron      *cron.Cron
	store     *Store
	retention time.Duration
	logger    zerolog.Logger
}

// NewSweeper creates a sweeper that hourly removes jobs older than the
// retention window
func NewSweeper(logger zerolog.Logger, store *Store, retention time.Duration) *Sweeper {
	s := &Sweeper{
		cron:      cron.New(),
		store:     store,
		retention: retention,
		logger:    logger.With().Str("component", "journal-sweeper").Logger(),
	}
	s.cron.AddFunc("@hourly", s.sweep)
	return s
}

// Start starts the sweeper
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop stops the sweeper and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweep() {
	cutoff := time.Now().Add(-s.retention)
	removed, err := s.store.PruneBefore(cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("journal sweep failed")
		return
	}
	if removed > 0 {
		s.logger.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("journal swept")
	}
}
