package bootstrap

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/webhub/internal/logging"
)

// phaseTimer records how long each startup phase of the hub takes.
type phaseTimer struct {
	mu     sync.Mutex
	now    func() time.Time
	start  time.Time
	last   time.Time
	phases []phase
}

type phase struct {
	name string
	took time.Duration
}

func newPhaseTimer(now func() time.Time) *phaseTimer {
	if now == nil {
		now = time.Now
	}
	t := now()
	return &phaseTimer{now: now, start: t, last: t}
}

// Mark closes the phase that started at the previous mark.
func (t *phaseTimer) Mark(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.now()
	t.phases = append(t.phases, phase{name: name, took: n.Sub(t.last)})
	t.last = n
}

// Total is the time since the timer was created.
func (t *phaseTimer) Total() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now().Sub(t.start)
}

// Log writes one debug line with every phase in the order they were marked.
func (t *phaseTimer) Log(ctx context.Context) {
	total := t.Total()

	t.mu.Lock()
	defer t.mu.Unlock()
	event := logging.FromContext(ctx).Debug().Dur("total", total)
	for _, p := range t.phases {
		event = event.Dur(p.name, p.took)
	}
	event.Msg("startup timing")
}
