package daemon

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/jmylchreest/imepop/internal/config"
)

// Observer receives input method names from event sources.
type Observer interface {
	Observe(name string)
}

type observation struct {
	name  string
	force bool
}

// Tracker turns input method observations into display requests.
// The last seen input method is owned by the Run goroutine; sources only
// hand it names through Observe and Force.
type Tracker struct {
	in     *Queue[observation]
	out    *RequestQueue
	cfg    atomic.Pointer[config.Config]
	logger *slog.Logger

	last string
	seen bool

	published atomic.Pointer[string]
}

// NewTracker creates a tracker that sends display text to out.
func NewTracker(cfg *config.Config, out *RequestQueue, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		in:     NewQueue[observation](),
		out:    out,
		logger: logger,
	}
	t.cfg.Store(cfg)
	return t
}

// Observe reports the input method currently active. Repeats of the last
// observed name are ignored.
func (t *Tracker) Observe(name string) {
	t.in.Send(observation{name: name})
}

// Force requests an overlay for name even if it is already active.
func (t *Tracker) Force(name string) {
	t.in.Send(observation{name: name, force: true})
}

// UpdateConfig swaps the configuration used for display text.
func (t *Tracker) UpdateConfig(cfg *config.Config) {
	t.cfg.Store(cfg)
}

// Last returns the most recently observed input method.
func (t *Tracker) Last() (string, bool) {
	p := t.published.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}

// Run processes observations until ctx is done.
func (t *Tracker) Run(ctx context.Context) error {
	for {
		o, err := t.in.Receive(ctx)
		if err != nil {
			return nil
		}
		t.handle(o)
	}
}

func (t *Tracker) handle(o observation) {
	if o.name == "" {
		return
	}
	if !o.force && t.seen && o.name == t.last {
		return
	}

	first := !t.seen
	t.last = o.name
	t.seen = true
	name := o.name
	t.published.Store(&name)

	cfg := t.cfg.Load()
	if first && !o.force && !cfg.Watcher.ShowOnStartup {
		t.logger.Debug("recorded initial input method", "input_method", o.name)
		return
	}

	text := cfg.DisplayText(o.name)
	t.logger.Debug("input method changed", "input_method", o.name, "text", text)
	t.out.Send(text)
}
