// Package scheduler owns the periodic sweep that keeps sessions moving when
// no user action arrives: expired voting phases advance, overrun game clocks
// end, and unclaimed portions default.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// VotingSweeper advances voting sessions whose phase deadline passed.
type VotingSweeper interface {
	CheckAndTransitionSessions(ctx context.Context) error
}

// GameSweeper ends overrun play clocks and garbage-collects idle sessions.
type GameSweeper interface {
	SweepSessions(ctx context.Context) error
}

// PortionSweeper defaults participants whose portion deadline passed.
type PortionSweeper interface {
	DefaultExpiredParticipants(ctx context.Context) (int, error)
}

// Config holds the scheduler knobs.
type Config struct {
	Interval time.Duration
}

// DefaultConfig returns the production sweep interval.
func DefaultConfig() Config {
	return Config{Interval: 60 * time.Second}
}

// Scheduler runs the sweeps on a fixed interval. Each sweep is isolated: one
// failing does not stop the others, and a failing session inside a sweep does
// not stop that sweep (the managers guarantee the latter).
type Scheduler struct {
	voting   VotingSweeper
	games    GameSweeper
	portions PortionSweeper
	clock    clockwork.Clock
	cfg      Config

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a scheduler over the given sweepers.
func New(voting VotingSweeper, games GameSweeper, portions PortionSweeper, clock clockwork.Clock, cfg Config) *Scheduler {
	return &Scheduler{
		voting:   voting,
		games:    games,
		portions: portions,
		clock:    clock,
		cfg:      cfg,
		stopChan: make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)

	log.Info().Dur("interval", s.cfg.Interval).Msg("session scheduler started")
	return nil
}

// Stop halts the sweep loop and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler not running")
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()

	log.Info().Msg("session scheduler stopped")
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	// Sweep immediately on start so a restart catches up on deadlines that
	// expired while the process was down.
	s.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.Chan():
			s.Tick(ctx)
		}
	}
}

// Tick runs one sweep pass. Exported so on-demand callers can force a sweep
// without waiting for the interval.
func (s *Scheduler) Tick(ctx context.Context) {
	if err := s.voting.CheckAndTransitionSessions(ctx); err != nil {
		log.Error().Err(err).Msg("voting session sweep failed")
	}
	if err := s.games.SweepSessions(ctx); err != nil {
		log.Error().Err(err).Msg("game session sweep failed")
	}
	defaulted, err := s.portions.DefaultExpiredParticipants(ctx)
	if err != nil {
		log.Error().Err(err).Msg("portion defaulting sweep failed")
	} else if defaulted > 0 {
		log.Info().Int("defaulted", defaulted).Msg("defaulted expired portions")
	}
}
