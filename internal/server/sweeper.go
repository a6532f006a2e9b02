package server

import (
	"log"
	"time"

	"github.com/gorhill/cronexpr"

	"github.com/shelfside/shelfside/internal/conversation"
)

// Sweeper evicts expired conversation bindings on a cron schedule. Only
// needed for the in-memory registry when a TTL is configured; Redis handles
// its own expiry.
type Sweeper struct {
	Registry *conversation.MemoryRegistry
	Cron     string
	Stop     chan struct{}
	logger   *log.Logger
}

func (s *Sweeper) Start() error {
	expr, err := cronexpr.Parse(s.Cron)
	if err != nil {
		return err
	}
	s.logger = log.New(log.Writer(), "[SWEEPER] ", log.LstdFlags)
	go func() {
		for {
			next := expr.Next(time.Now())
			if next.IsZero() {
				s.logger.Printf("cron %q yields no further run times, stopping", s.Cron)
				return
			}
			select {
			case <-s.Stop:
				return
			case <-time.After(time.Until(next)):
			}
			if n := s.Registry.Sweep(); n > 0 {
				s.logger.Printf("evicted %d expired conversation bindings (%d live)", n, s.Registry.Len())
			}
		}
	}()
	return nil
}
