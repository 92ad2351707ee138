package display

// State is the worker's position in the display cycle.
type State int32

const (
	StateIdle State = iota
	StateRendering
	StatePositioning
	StateShowing
	StateHoldingSteady
	StateFadingOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	case StatePositioning:
		return "positioning"
	case StateShowing:
		return "showing"
	case StateHoldingSteady:
		return "holding"
	case StateFadingOut:
		return "fading"
	default:
		return "unknown"
	}
}
