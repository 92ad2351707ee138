package display

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/imepop/internal/config"
	"github.com/jmylchreest/imepop/internal/easing"
	"github.com/jmylchreest/imepop/internal/geometry"
	"github.com/jmylchreest/imepop/internal/overlay"
	"github.com/jmylchreest/imepop/internal/render"
)

// Source hands out display requests one at a time.
type Source interface {
	// Receive blocks until a request is available or ctx is done.
	Receive(ctx context.Context) (string, error)
}

// ResolverFactory creates a geometry resolver by name.
type ResolverFactory func(name string) (geometry.Resolver, error)

// Options configure a Worker.
type Options struct {
	Config      *config.Config
	Session     *overlay.Session
	Rasterizer  render.Rasterizer
	NewResolver ResolverFactory // defaults to geometry.NewResolver
	Sleeper     Sleeper         // defaults to TimerSleeper
	Logger      *slog.Logger

	// OnStateChange, if set, is called from the worker goroutine on every
	// state transition.
	OnStateChange func(State)
}

// Worker runs display cycles strictly one after another.
// The overlay session and render cache belong to the worker goroutine.
type Worker struct {
	session    *overlay.Session
	rasterizer render.Rasterizer
	newResolve ResolverFactory
	sleeper    Sleeper
	logger     *slog.Logger
	onState    func(State)

	// Owned by the worker goroutine
	cfg      *config.Config
	style    render.Style
	cache    *render.Cache
	placer   *Placer
	resolver string
	ease     easing.Func

	pending atomic.Pointer[config.Config]
	state   atomic.Int32
	cycles  atomic.Uint64
}

// NewWorker creates a worker for opts.Session.
func NewWorker(opts Options) (*Worker, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.NewResolver == nil {
		opts.NewResolver = geometry.NewResolver
	}
	if opts.Sleeper == nil {
		opts.Sleeper = TimerSleeper{}
	}
	if opts.Session == nil {
		return nil, &DisplayError{Message: "no overlay session"}
	}
	if opts.Rasterizer == nil {
		return nil, &DisplayError{Message: "no rasterizer"}
	}

	w := &Worker{
		session:    opts.Session,
		rasterizer: opts.Rasterizer,
		newResolve: opts.NewResolver,
		sleeper:    opts.Sleeper,
		logger:     opts.Logger,
		onState:    opts.OnStateChange,
	}
	if err := w.apply(opts.Config); err != nil {
		return nil, err
	}
	return w, nil
}

// Run serves requests from src until ctx is done.
func (w *Worker) Run(ctx context.Context, src Source) error {
	w.logger.Info("display worker started")
	defer w.logger.Info("display worker stopped")

	for {
		w.setState(StateIdle)

		text, err := src.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to receive display request: %w", err)
		}

		if err := w.Show(ctx, text); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Warn("display cycle abandoned", "text", text, "error", err)
		}
	}
}

// Show runs one complete display cycle for text.
// Cycle failures are returned; the session stays usable.
func (w *Worker) Show(ctx context.Context, text string) error {
	defer w.setState(StateIdle)

	w.applyPending()

	id := ulid.Make()
	log := w.logger.With("cycle", id.String(), "text", text)
	w.cycles.Add(1)

	width, height := w.cfg.Overlay.Width, w.cfg.Overlay.Height
	anim := w.cfg.Animation

	w.setState(StateRendering)
	hit := w.cache.Has(text)
	if _, err := w.cache.Ensure(text); err != nil {
		return &DisplayError{Message: "failed to render overlay", Cause: err}
	}
	log.Debug("overlay image ready", "cache_hit", hit)

	w.setState(StatePositioning)
	placement := w.placer.Place(ctx, width, height)
	log.Debug("overlay placed",
		"anchor", placement.Anchor.String(),
		"top", placement.Margins.Top,
		"left", placement.Margins.Left,
	)

	w.setState(StateShowing)
	surf, err := w.session.BeginCycle(ctx, width, height, placement)
	if err != nil {
		return &DisplayError{Message: "failed to create overlay surface", Cause: err}
	}
	defer w.session.EndCycle(surf)

	full, ok := w.cache.Derive(text, 1.0)
	if !ok {
		return &DisplayError{Message: "overlay image missing from cache"}
	}
	if err := w.session.Upload(ctx, surf, full, overlay.CommitSync); err != nil {
		return &DisplayError{Message: "failed to show overlay", Cause: err}
	}

	w.setState(StateHoldingSteady)
	if err := w.sleeper.Sleep(ctx, anim.DisplayDuration.Duration()); err != nil {
		return err
	}

	w.setState(StateFadingOut)
	interval := anim.FrameInterval()
	for k := 1; k <= anim.FadeFrames; k++ {
		alpha := easing.FadeAlpha(k, anim.FadeFrames, w.ease)
		buf, ok := w.cache.Derive(text, alpha)
		if !ok {
			return &DisplayError{Message: "overlay image missing from cache"}
		}
		if err := w.session.Upload(ctx, surf, buf, overlay.CommitAsync); err != nil {
			return &DisplayError{Message: fmt.Sprintf("failed to upload fade frame %d", k), Cause: err}
		}
		if err := w.sleeper.Sleep(ctx, interval); err != nil {
			return err
		}
	}

	log.Debug("display cycle complete")
	return nil
}

// UpdateConfig replaces the configuration. It takes effect at the start of
// the next cycle; a cycle in progress is not affected.
func (w *Worker) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	w.pending.Store(cfg)
}

// State returns the current state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Cycles returns the number of display cycles started.
func (w *Worker) Cycles() uint64 {
	return w.cycles.Load()
}

func (w *Worker) setState(s State) {
	if State(w.state.Swap(int32(s))) == s {
		return
	}
	if w.onState != nil {
		w.onState(s)
	}
}

func (w *Worker) applyPending() {
	cfg := w.pending.Swap(nil)
	if cfg == nil {
		return
	}
	if err := w.apply(cfg); err != nil {
		w.logger.Warn("ignoring display config update", "error", err)
		return
	}
	w.logger.Info("display config updated")
}

// apply installs cfg. The render cache is replaced when anything that
// affects rendered pixels changed.
func (w *Worker) apply(cfg *config.Config) error {
	style, err := render.StyleFromConfig(cfg.Overlay)
	if err != nil {
		return &DisplayError{Message: "invalid overlay style", Cause: err}
	}

	ease, ok := easing.ByName(cfg.Animation.Easing)
	if !ok {
		return &DisplayError{Message: fmt.Sprintf("unknown easing %q", cfg.Animation.Easing)}
	}

	if w.placer == nil || cfg.Placement.Resolver != w.resolver {
		resolver, err := w.newResolve(cfg.Placement.Resolver)
		if err != nil {
			// Leave w.resolver unset so the next config update retries.
			w.logger.Warn("geometry resolver unavailable, overlay will be centered", "error", err)
			resolver = nil
			w.resolver = ""
		} else {
			w.logger.Debug("geometry resolver selected", "resolver", resolver.Name())
			w.resolver = cfg.Placement.Resolver
		}
		w.placer = NewPlacer(resolver, cfg.Placement, w.logger)
	} else {
		w.placer = NewPlacer(w.placer.resolver, cfg.Placement, w.logger)
	}

	if w.cache == nil || style != w.style ||
		cfg.Overlay.Width != w.cfg.Overlay.Width || cfg.Overlay.Height != w.cfg.Overlay.Height {
		if w.cache != nil {
			w.logger.Debug("overlay style changed, dropping render cache", "entries", w.cache.Len())
		}
		w.cache = render.NewCache(w.rasterizer, cfg.Overlay.Width, cfg.Overlay.Height, style, w.logger)
	}

	w.session.SetConfigureTimeout(cfg.Session.ConfigureTimeout.Duration())
	w.cfg = cfg
	w.style = style
	w.ease = ease
	return nil
}
