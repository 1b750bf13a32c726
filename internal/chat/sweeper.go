package chat

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically expires stale upload sessions.
type Sweeper struct {
	cron *cron.Cron
}

// NewSweeper schedules ExpireStale on the machine at the given interval.
func NewSweeper(m *Machine, every time.Duration) (*Sweeper, error) {
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", every), func() {
		m.ExpireStale(time.Now())
	}); err != nil {
		return nil, fmt.Errorf("schedule session sweep: %w", err)
	}
	return &Sweeper{cron: c}, nil
}

// Start begins sweeping in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
