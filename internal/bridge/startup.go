package bridge

import (
	"context"
	"time"

	"github.com/Coubiac/signstamp/internal/logger"
)

// Startup holds the launch candidates until the UI is ready, then forwards them once.
type Startup struct {
	queue []string
}

// NewStartup queues launch arguments (program name already excluded).
func NewStartup(args []string) *Startup {
	return &Startup{queue: append([]string(nil), args...)}
}

// Pending returns the number of candidates not yet drained.
func (s *Startup) Pending() int {
	return len(s.queue)
}

// Run waits for ready (or timeout) and drains the queue through b. It returns the number of
// forwarded candidates. A canceled ctx drops the queue. Later calls find an empty queue.
func (s *Startup) Run(ctx context.Context, b *Bridge, ready <-chan struct{}, timeout time.Duration) int {
	if len(s.queue) == 0 {
		return 0
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ready:
	case <-timer.C:
		logger.WithComponent("bridge").Warnf("ui not ready after %s, forwarding %d launch candidates anyway", timeout, len(s.queue))
	case <-ctx.Done():
		s.queue = nil
		return 0
	}

	forwarded := 0
	for len(s.queue) > 0 {
		candidate := s.queue[0]
		s.queue = s.queue[1:]
		if b.Dispatch(candidate) {
			forwarded++
		}
	}
	return forwarded
}
