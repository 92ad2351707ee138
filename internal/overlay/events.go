package overlay

// Event is a protocol event delivered by a Backend.
// The set of events is closed: only types in this package implement it.
type Event interface {
	SurfaceID() SurfaceID
	event()
}

// ConfigureEvent is sent when the compositor has assigned a size to a
// surface. The surface must be acknowledged before its first frame is shown.
type ConfigureEvent struct {
	Surface SurfaceID
	Serial  uint32
	Width   int
	Height  int
}

// SurfaceID returns the surface the event is for.
func (e ConfigureEvent) SurfaceID() SurfaceID { return e.Surface }

func (ConfigureEvent) event() {}

// ClosedEvent is sent when the compositor has closed a surface on its own,
// for example because its output went away.
type ClosedEvent struct {
	Surface SurfaceID
}

// SurfaceID returns the surface the event is for.
func (e ClosedEvent) SurfaceID() SurfaceID { return e.Surface }

func (ClosedEvent) event() {}
