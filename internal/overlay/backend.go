package overlay

import (
	"context"
	"strings"

	"github.com/jmylchreest/imepop/internal/render"
)

// SurfaceID identifies one surface within a session. IDs are never reused.
type SurfaceID uint64

// Layer is the layer-shell stacking layer.
type Layer int

const (
	LayerBackground Layer = iota
	LayerBottom
	LayerTop
	LayerOverlay
)

// KeyboardMode controls whether a surface can take keyboard focus.
type KeyboardMode int

const (
	KeyboardNone KeyboardMode = iota
	KeyboardExclusive
	KeyboardOnDemand
)

// Anchor is a set of output edges a surface is attached to.
// The zero value anchors to nothing, which centers the surface on its output.
type Anchor uint8

const (
	AnchorTop Anchor = 1 << iota
	AnchorBottom
	AnchorLeft
	AnchorRight
)

// Has reports whether all edges in e are set.
func (a Anchor) Has(e Anchor) bool {
	return a&e == e
}

func (a Anchor) String() string {
	if a == 0 {
		return "none"
	}
	var parts []string
	for _, e := range []struct {
		edge Anchor
		name string
	}{
		{AnchorTop, "top"},
		{AnchorBottom, "bottom"},
		{AnchorLeft, "left"},
		{AnchorRight, "right"},
	} {
		if a.Has(e.edge) {
			parts = append(parts, e.name)
		}
	}
	return strings.Join(parts, "|")
}

// Margins are distances from anchored edges, in surface-local pixels.
type Margins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// Placement is where a surface should appear on its output. An empty Output
// lets the compositor choose.
type Placement struct {
	Output  string
	Anchor  Anchor
	Margins Margins
}

// LayerSpec is the full initial state of a layer surface.
type LayerSpec struct {
	Namespace        string
	Output           string
	Layer            Layer
	Width            int
	Height           int
	Anchor           Anchor
	Margins          Margins
	Keyboard         KeyboardMode
	ExclusiveZone    int
	EmptyInputRegion bool
}

// CommitMode selects whether Attach waits for the compositor.
type CommitMode int

const (
	// CommitSync blocks until the compositor has processed the commit.
	CommitSync CommitMode = iota
	// CommitAsync returns as soon as the commit has been queued.
	CommitAsync
)

func (m CommitMode) String() string {
	if m == CommitSync {
		return "sync"
	}
	return "async"
}

// Backend is the connection to a compositor that supports layer surfaces.
//
// Backends deliver ConfigureEvent and ClosedEvent on the Events channel.
// All methods are called from the goroutine that owns the Session.
type Backend interface {
	// Connect establishes the connection and binds the required globals.
	Connect(ctx context.Context) error

	// CreateSurface creates a layer surface with spec and commits it without
	// a buffer so the compositor sends its first configure.
	CreateSurface(ctx context.Context, id SurfaceID, spec LayerSpec) error

	// AckConfigure acknowledges a configure event.
	AckConfigure(id SurfaceID, serial uint32) error

	// Attach attaches buf, damages the whole surface and commits.
	Attach(ctx context.Context, id SurfaceID, buf *render.PixelBuffer, mode CommitMode) error

	// DestroySurface destroys the surface, its input region and layer role.
	DestroySurface(id SurfaceID) error

	// Events returns the channel protocol events are delivered on.
	Events() <-chan Event

	// Close disconnects from the compositor.
	Close() error
}
