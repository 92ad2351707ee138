package daemon

import (
	"context"
	"log/slog"
	"time"
)

// InputMethodSource reports the active input method.
type InputMethodSource interface {
	CurrentInputMethod(ctx context.Context) (string, error)
}

// SignalSource reports the active input method and notifies on changes.
type SignalSource interface {
	InputMethodSource
	Watch(ctx context.Context, fn func()) error
}

// Poller queries the input method on a fixed interval. It backs up the
// signal watcher for fcitx5 builds that do not emit change signals.
type Poller struct {
	source   InputMethodSource
	observer Observer
	interval time.Duration
	reset    chan time.Duration
	logger   *slog.Logger
}

// NewPoller creates a poller. An interval of zero or less disables polling.
func NewPoller(source InputMethodSource, observer Observer, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		source:   source,
		observer: observer,
		interval: interval,
		reset:    make(chan time.Duration, 1),
		logger:   logger,
	}
}

// SetInterval changes the polling interval of a running poller.
func (p *Poller) SetInterval(interval time.Duration) {
	select {
	case <-p.reset:
	default:
	}
	p.reset <- interval
}

// Run polls until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	var ticker *time.Ticker
	var tick <-chan time.Time

	start := func(interval time.Duration) {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
		p.interval = interval
		if interval <= 0 {
			p.logger.Debug("input method polling disabled")
			return
		}
		p.poll(ctx)
		ticker = time.NewTicker(interval)
		tick = ticker.C
		p.logger.Debug("input method polling started", "interval", interval)
	}
	start(p.interval)
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case interval := <-p.reset:
			if interval != p.interval {
				start(interval)
			}
		case <-tick:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	name, err := p.source.CurrentInputMethod(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Debug("input method poll failed", "error", err)
		}
		return
	}
	p.observer.Observe(name)
}

// WatchSignals reports the current input method once, then again after
// every change signal, until ctx is done.
func WatchSignals(ctx context.Context, source SignalSource, observer Observer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	query := func() {
		name, err := source.CurrentInputMethod(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Debug("input method query failed", "error", err)
			}
			return
		}
		observer.Observe(name)
	}

	query()
	return source.Watch(ctx, query)
}
