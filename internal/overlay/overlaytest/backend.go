// Package overlaytest provides an in-memory overlay.Backend for tests.
package overlaytest

import (
	"context"
	"errors"
	"sync"

	"github.com/jmylchreest/imepop/internal/overlay"
	"github.com/jmylchreest/imepop/internal/render"
)

// ErrNotConnected is returned by calls made before Connect or after Close.
var ErrNotConnected = errors.New("overlaytest: not connected")

// Frame is one recorded Attach call.
type Frame struct {
	Surface overlay.SurfaceID
	Mode    overlay.CommitMode
	Pix     []byte
}

// Backend records every call and answers CreateSurface with a configure
// event unless told otherwise.
type Backend struct {
	mu sync.Mutex

	// Scripted behavior. Set before use.
	ConnectErr    error
	CreateErr     error
	AttachErr     error
	NoConfigure   bool // never send a configure event
	CloseOnCreate bool // send ClosedEvent instead of configure

	events    chan overlay.Event
	connected bool
	serial    uint32

	specs     []overlay.LayerSpec
	acked     []uint32
	frames    []Frame
	destroyed []overlay.SurfaceID
	live      map[overlay.SurfaceID]bool
	maxLive   int
}

// New creates a Backend.
func New() *Backend {
	return &Backend{
		events: make(chan overlay.Event, 64),
		live:   make(map[overlay.SurfaceID]bool),
	}
}

// Connect implements overlay.Backend.
func (b *Backend) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ConnectErr != nil {
		return b.ConnectErr
	}
	b.connected = true
	return nil
}

// CreateSurface implements overlay.Backend.
func (b *Backend) CreateSurface(ctx context.Context, id overlay.SurfaceID, spec overlay.LayerSpec) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.connected {
		return ErrNotConnected
	}
	if b.CreateErr != nil {
		return b.CreateErr
	}

	b.specs = append(b.specs, spec)
	b.live[id] = true
	if len(b.live) > b.maxLive {
		b.maxLive = len(b.live)
	}

	switch {
	case b.CloseOnCreate:
		b.events <- overlay.ClosedEvent{Surface: id}
	case !b.NoConfigure:
		b.serial++
		b.events <- overlay.ConfigureEvent{Surface: id, Serial: b.serial, Width: spec.Width, Height: spec.Height}
	}
	return nil
}

// AckConfigure implements overlay.Backend.
func (b *Backend) AckConfigure(id overlay.SurfaceID, serial uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.acked = append(b.acked, serial)
	return nil
}

// Attach implements overlay.Backend.
func (b *Backend) Attach(ctx context.Context, id overlay.SurfaceID, buf *render.PixelBuffer, mode overlay.CommitMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.live[id] {
		return errors.New("overlaytest: attach to unknown surface")
	}
	if b.AttachErr != nil {
		return b.AttachErr
	}
	pix := make([]byte, len(buf.Pix))
	copy(pix, buf.Pix)
	b.frames = append(b.frames, Frame{Surface: id, Mode: mode, Pix: pix})
	return nil
}

// DestroySurface implements overlay.Backend.
func (b *Backend) DestroySurface(id overlay.SurfaceID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.live, id)
	b.destroyed = append(b.destroyed, id)
	return nil
}

// Events implements overlay.Backend.
func (b *Backend) Events() <-chan overlay.Event {
	return b.events
}

// Close implements overlay.Backend.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = false
	return nil
}

// Emit queues an event as if the compositor had sent it.
func (b *Backend) Emit(ev overlay.Event) {
	b.events <- ev
}

// Specs returns the specs of all created surfaces.
func (b *Backend) Specs() []overlay.LayerSpec {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]overlay.LayerSpec(nil), b.specs...)
}

// Frames returns all attached frames in order.
func (b *Backend) Frames() []Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Frame(nil), b.frames...)
}

// Acked returns the acknowledged configure serials.
func (b *Backend) Acked() []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]uint32(nil), b.acked...)
}

// Destroyed returns destroyed surface IDs in order.
func (b *Backend) Destroyed() []overlay.SurfaceID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]overlay.SurfaceID(nil), b.destroyed...)
}

// Live returns the number of surfaces not yet destroyed.
func (b *Backend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}

// MaxLive returns the largest number of surfaces alive at the same time.
func (b *Backend) MaxLive() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxLive
}

// Connected reports whether Connect succeeded and Close was not called.
func (b *Backend) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}
