// Package gtkshell implements overlay.Backend with GTK4 and gtk4-layer-shell.
//
// Every GTK call is marshalled onto the GTK main loop with glib.IdleAdd, so
// the backend may be driven from the display worker goroutine while the
// application runs on the main thread.
package gtkshell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/cairo"
	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/imepop/internal/overlay"
	"github.com/jmylchreest/imepop/internal/render"
)

// cssClass is added to every overlay window.
const cssClass = "imepop-overlay"

// transparentCSS clears the default window background so only the uploaded
// pixels are visible.
const transparentCSS = `
window.imepop-overlay,
window.imepop-overlay > picture {
	background: none;
	background-color: transparent;
	box-shadow: none;
	border: none;
}
`

var errClosed = errors.New("gtk backend closed")

// Backend drives layer-shell windows owned by a GTK application.
type Backend struct {
	app    *gtk.Application
	logger *slog.Logger
	events chan overlay.Event

	mu      sync.Mutex
	windows map[overlay.SurfaceID]*surface
	serial  uint32
	closed  bool
}

type surface struct {
	window  *gtk.Window
	picture *gtk.Picture
	spec    overlay.LayerSpec
}

// New creates a backend for app. The application must be running its main
// loop before Connect is called.
func New(app *gtk.Application, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		app:     app,
		logger:  logger,
		events:  make(chan overlay.Event, 64),
		windows: make(map[overlay.SurfaceID]*surface),
	}
}

// Connect checks for a display with layer-shell support and installs the
// overlay stylesheet.
func (b *Backend) Connect(ctx context.Context) error {
	return b.call(ctx, func() error {
		display := gdk.DisplayGetDefault()
		if display == nil {
			return errors.New("no display available")
		}
		if !layershell.IsSupported() {
			return errors.New("compositor does not support wlr-layer-shell")
		}

		provider := gtk.NewCSSProvider()
		provider.LoadFromString(transparentCSS)
		gtk.StyleContextAddProviderForDisplay(
			display,
			provider,
			gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
		)
		return nil
	})
}

// CreateSurface creates and presents a layer-shell window. The map signal is
// reported as the configure event: gtk4-layer-shell acknowledges the
// compositor's configure itself before the window maps.
func (b *Backend) CreateSurface(ctx context.Context, id overlay.SurfaceID, spec overlay.LayerSpec) error {
	return b.call(ctx, func() error {
		win := gtk.NewWindow()
		win.SetApplication(b.app)
		win.SetDecorated(false)
		win.SetResizable(false)
		win.SetDefaultSize(spec.Width, spec.Height)
		win.SetSizeRequest(spec.Width, spec.Height)
		win.AddCSSClass(cssClass)

		layershell.InitForWindow(win)
		layershell.SetLayer(win, toLayer(spec.Layer))
		layershell.SetExclusiveZone(win, spec.ExclusiveZone)
		layershell.SetKeyboardMode(win, toKeyboardMode(spec.Keyboard))
		layershell.SetNamespace(win, spec.Namespace)
		if spec.Output != "" {
			if m := monitorByConnector(gdk.DisplayGetDefault(), spec.Output); m != nil {
				layershell.SetMonitor(win, m)
			} else {
				b.logger.Debug("output not found, compositor picks the monitor", "output", spec.Output)
			}
		}
		applyAnchor(win, spec.Anchor, spec.Margins)

		pic := gtk.NewPicture()
		pic.SetCanShrink(false)
		win.SetChild(pic)

		win.ConnectMap(func() {
			if spec.EmptyInputRegion {
				if err := clearInputRegion(win); err != nil {
					b.logger.Error("failed to clear input region", "surface", id, "error", err)
					b.emit(overlay.ClosedEvent{Surface: id})
					return
				}
			}
			b.emit(overlay.ConfigureEvent{
				Surface: id,
				Serial:  b.nextSerial(),
				Width:   win.Width(),
				Height:  win.Height(),
			})
		})
		win.ConnectCloseRequest(func() bool {
			b.emit(overlay.ClosedEvent{Surface: id})
			return false
		})

		b.mu.Lock()
		b.windows[id] = &surface{window: win, picture: pic, spec: spec}
		b.mu.Unlock()

		win.Present()
		return nil
	})
}

// AckConfigure is a no-op; gtk4-layer-shell acknowledges configures itself.
func (b *Backend) AckConfigure(id overlay.SurfaceID, serial uint32) error {
	return nil
}

// Attach shows buf as a memory texture. CommitSync waits until the main loop
// has applied the texture.
func (b *Backend) Attach(ctx context.Context, id overlay.SurfaceID, buf *render.PixelBuffer, mode overlay.CommitMode) error {
	// The texture takes ownership of its bytes, so hand it a private copy.
	pix := make([]byte, len(buf.Pix))
	copy(pix, buf.Pix)

	apply := func() error {
		b.mu.Lock()
		s, ok := b.windows[id]
		b.mu.Unlock()
		if !ok {
			return fmt.Errorf("unknown surface %d", id)
		}

		tex := gdk.NewMemoryTexture(
			buf.Width,
			buf.Height,
			gdk.MemoryB8G8R8A8Premultiplied,
			glib.NewBytes(pix),
			uint(buf.Stride),
		)
		s.picture.SetPaintable(tex)
		s.window.QueueDraw()
		return nil
	}

	if mode == overlay.CommitAsync {
		if b.isClosed() {
			return errClosed
		}
		glib.IdleAdd(func() {
			if err := apply(); err != nil {
				b.logger.Debug("dropped async frame", "surface", id, "error", err)
			}
		})
		return nil
	}

	return b.call(ctx, apply)
}

// DestroySurface destroys the window for id.
func (b *Backend) DestroySurface(id overlay.SurfaceID) error {
	b.mu.Lock()
	s, ok := b.windows[id]
	delete(b.windows, id)
	b.mu.Unlock()
	if !ok {
		return nil
	}

	glib.IdleAdd(func() {
		s.window.Destroy()
	})
	return nil
}

// Events implements overlay.Backend.
func (b *Backend) Events() <-chan overlay.Event {
	return b.events
}

// Close destroys remaining windows. The application is left running.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	windows := b.windows
	b.windows = make(map[overlay.SurfaceID]*surface)
	b.mu.Unlock()

	glib.IdleAdd(func() {
		for _, s := range windows {
			s.window.Destroy()
		}
	})
	return nil
}

// call runs fn on the GTK main loop and waits for its result.
func (b *Backend) call(ctx context.Context, fn func() error) error {
	if b.isClosed() {
		return errClosed
	}

	done := make(chan error, 1)
	glib.IdleAdd(func() {
		done <- fn()
	})

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Backend) emit(ev overlay.Event) {
	b.mu.Lock()
	_, live := b.windows[ev.SurfaceID()]
	b.mu.Unlock()
	if !live {
		return
	}

	select {
	case b.events <- ev:
	default:
		b.logger.Warn("overlay event queue full, dropping event", "surface", ev.SurfaceID())
	}
}

func (b *Backend) nextSerial() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.serial++
	return b.serial
}

func (b *Backend) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// applyAnchor sets the layer-shell anchors and margins.
func applyAnchor(win *gtk.Window, anchor overlay.Anchor, m overlay.Margins) {
	edges := []struct {
		flag   overlay.Anchor
		edge   layershell.Edge
		margin int
	}{
		{overlay.AnchorTop, layershell.LayerShellEdgeTop, m.Top},
		{overlay.AnchorBottom, layershell.LayerShellEdgeBottom, m.Bottom},
		{overlay.AnchorLeft, layershell.LayerShellEdgeLeft, m.Left},
		{overlay.AnchorRight, layershell.LayerShellEdgeRight, m.Right},
	}

	for _, e := range edges {
		on := anchor.Has(e.flag)
		layershell.SetAnchor(win, e.edge, on)
		if on {
			layershell.SetMargin(win, e.edge, e.margin)
		} else {
			layershell.SetMargin(win, e.edge, 0)
		}
	}
}

// clearInputRegion makes the window ignore all pointer and touch input.
func clearInputRegion(win *gtk.Window) error {
	s := win.Surface()
	if s == nil {
		return errors.New("window has no surface")
	}
	region, err := cairo.RegionCreate()
	if err != nil {
		return fmt.Errorf("failed to create empty region: %w", err)
	}
	gdk.BaseSurface(s).SetInputRegion(region)
	return nil
}

// monitorByConnector returns the monitor whose connector name is name, or nil.
func monitorByConnector(display *gdk.Display, name string) *gdk.Monitor {
	if display == nil {
		return nil
	}
	monitors := display.Monitors()
	if monitors == nil {
		return nil
	}
	for i := uint(0); i < monitors.NItems(); i++ {
		m := wrapMonitor(monitors.Item(i))
		if m != nil && m.Connector() == name {
			return m
		}
	}
	return nil
}

// wrapMonitor views a list model item as a gdk.Monitor; gotk4 keeps its own
// wrapper unexported.
func wrapMonitor(obj *coreglib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*coreglib.Object
	}
	return (*gdk.Monitor)(unsafe.Pointer(&monitor{Object: obj}))
}

func toLayer(l overlay.Layer) layershell.Layer {
	switch l {
	case overlay.LayerBackground:
		return layershell.LayerShellLayerBackground
	case overlay.LayerBottom:
		return layershell.LayerShellLayerBottom
	case overlay.LayerTop:
		return layershell.LayerShellLayerTop
	default:
		return layershell.LayerShellLayerOverlay
	}
}

func toKeyboardMode(k overlay.KeyboardMode) layershell.KeyboardMode {
	switch k {
	case overlay.KeyboardExclusive:
		return layershell.LayerShellKeyboardModeExclusive
	case overlay.KeyboardOnDemand:
		return layershell.LayerShellKeyboardModeOnDemand
	default:
		return layershell.LayerShellKeyboardModeNone
	}
}
