package overlay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/imepop/internal/render"
)

var (
	// ErrServiceUnavailable means the compositor connection could not be made.
	ErrServiceUnavailable = errors.New("overlay service unavailable")

	// ErrSurfaceClosed means the surface was ended or closed by the compositor.
	ErrSurfaceClosed = errors.New("overlay surface closed")

	// ErrConfigureTimeout means the compositor did not configure a new
	// surface in time.
	ErrConfigureTimeout = errors.New("timed out waiting for surface configure")

	// errConnectionLost means the backend closed its event channel.
	errConnectionLost = errors.New("overlay connection lost")
)

// DefaultConfigureTimeout is used when Options.ConfigureTimeout is zero.
const DefaultConfigureTimeout = 2 * time.Second

// Options configure a Session.
type Options struct {
	Namespace        string
	ConfigureTimeout time.Duration
	Logger           *slog.Logger
}

// Session is a long-lived overlay connection.
// A Session is not safe for concurrent use; it belongs to the display worker.
type Session struct {
	backend Backend
	opts    Options
	logger  *slog.Logger

	nextID   SurfaceID
	surfaces map[SurfaceID]*Surface
	closed   bool
}

// Surface is one overlay surface. It lives for exactly one display cycle.
type Surface struct {
	id         SurfaceID
	width      int
	height     int
	placement  Placement
	configured bool
	serial     uint32
	closed     bool
	ended      bool
}

// ID returns the surface identifier.
func (s *Surface) ID() SurfaceID { return s.id }

// Size returns the surface size in pixels.
func (s *Surface) Size() (width, height int) { return s.width, s.height }

// Placement returns where the surface was placed.
func (s *Surface) Placement() Placement { return s.placement }

// Open connects backend and returns a session.
// A connection failure wraps ErrServiceUnavailable.
func Open(ctx context.Context, backend Backend, opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ConfigureTimeout <= 0 {
		opts.ConfigureTimeout = DefaultConfigureTimeout
	}

	if err := backend.Connect(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	opts.Logger.Debug("overlay session opened", "namespace", opts.Namespace)

	return &Session{
		backend:  backend,
		opts:     opts,
		logger:   opts.Logger,
		surfaces: make(map[SurfaceID]*Surface),
	}, nil
}

// SetConfigureTimeout changes the configure wait for later cycles.
func (s *Session) SetConfigureTimeout(d time.Duration) {
	if d > 0 {
		s.opts.ConfigureTimeout = d
	}
}

// BeginCycle creates a surface of the given size, commits its initial state
// and waits until the compositor configures it. Any surface still alive from a
// previous cycle is ended first. On failure the new surface is destroyed.
func (s *Session) BeginCycle(ctx context.Context, width, height int, placement Placement) (*Surface, error) {
	if s.closed {
		return nil, ErrServiceUnavailable
	}

	for _, live := range s.surfaces {
		s.logger.Warn("ending stale overlay surface", "surface", live.id)
		s.EndCycle(live)
	}

	s.nextID++
	surf := &Surface{
		id:        s.nextID,
		width:     width,
		height:    height,
		placement: placement,
	}
	s.surfaces[surf.id] = surf

	spec := LayerSpec{
		Namespace:        s.opts.Namespace,
		Output:           placement.Output,
		Layer:            LayerOverlay,
		Width:            width,
		Height:           height,
		Anchor:           placement.Anchor,
		Margins:          placement.Margins,
		Keyboard:         KeyboardNone,
		ExclusiveZone:    -1,
		EmptyInputRegion: true,
	}

	if err := s.backend.CreateSurface(ctx, surf.id, spec); err != nil {
		s.EndCycle(surf)
		return nil, fmt.Errorf("failed to create overlay surface: %w", err)
	}

	if err := s.awaitConfigure(ctx, surf); err != nil {
		s.EndCycle(surf)
		return nil, err
	}

	s.logger.Debug("overlay surface configured",
		"surface", surf.id,
		"serial", surf.serial,
		"anchor", placement.Anchor.String(),
	)

	return surf, nil
}

// awaitConfigure dispatches events until surf is configured, closed, or the
// configure timeout expires.
func (s *Session) awaitConfigure(ctx context.Context, surf *Surface) error {
	timer := time.NewTimer(s.opts.ConfigureTimeout)
	defer timer.Stop()

	events := s.backend.Events()
	for !surf.configured {
		select {
		case ev, ok := <-events:
			if !ok {
				return errConnectionLost
			}
			s.dispatch(ev)
			if surf.closed {
				return ErrSurfaceClosed
			}
		case <-timer.C:
			return fmt.Errorf("%w after %s", ErrConfigureTimeout, s.opts.ConfigureTimeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Upload shows buf on surf. CommitSync waits for the compositor round trip,
// CommitAsync does not.
func (s *Session) Upload(ctx context.Context, surf *Surface, buf *render.PixelBuffer, mode CommitMode) error {
	s.drain()

	if surf == nil || surf.ended || surf.closed {
		return ErrSurfaceClosed
	}
	if buf.Width != surf.width || buf.Height != surf.height {
		return fmt.Errorf("buffer is %dx%d, surface is %dx%d", buf.Width, buf.Height, surf.width, surf.height)
	}

	if err := s.backend.Attach(ctx, surf.id, buf, mode); err != nil {
		return fmt.Errorf("failed to upload frame: %w", err)
	}
	return nil
}

// EndCycle destroys surf. Calling it again, or on nil, does nothing.
func (s *Session) EndCycle(surf *Surface) {
	if surf == nil || surf.ended {
		return
	}
	surf.ended = true
	delete(s.surfaces, surf.id)

	if err := s.backend.DestroySurface(surf.id); err != nil {
		s.logger.Warn("failed to destroy overlay surface", "surface", surf.id, "error", err)
	}
}

// Close ends any live surface and disconnects.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	for _, surf := range s.surfaces {
		s.EndCycle(surf)
	}
	s.closed = true
	return s.backend.Close()
}

// LiveSurfaces returns the number of surfaces not yet ended.
func (s *Session) LiveSurfaces() int {
	return len(s.surfaces)
}

// drain dispatches all pending events without blocking.
func (s *Session) drain() {
	events := s.backend.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.dispatch(ev)
		default:
			return
		}
	}
}

// dispatch routes one event to the surface it names.
// Events for surfaces that were already ended are dropped.
func (s *Session) dispatch(ev Event) {
	surf, ok := s.surfaces[ev.SurfaceID()]
	if !ok {
		s.logger.Debug("dropping event for unknown surface", "surface", ev.SurfaceID())
		return
	}

	switch e := ev.(type) {
	case ConfigureEvent:
		if err := s.backend.AckConfigure(e.Surface, e.Serial); err != nil {
			s.logger.Warn("failed to acknowledge configure", "surface", e.Surface, "error", err)
			return
		}
		surf.serial = e.Serial
		surf.configured = true
		if e.Width > 0 && e.Height > 0 && (e.Width != surf.width || e.Height != surf.height) {
			s.logger.Debug("compositor suggested a different size",
				"surface", e.Surface,
				"width", e.Width,
				"height", e.Height,
			)
		}
	case ClosedEvent:
		surf.closed = true
		s.logger.Debug("overlay surface closed by compositor", "surface", e.Surface)
	}
}
