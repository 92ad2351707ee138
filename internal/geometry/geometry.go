// Package geometry finds the focused window so the overlay can be placed over it.
package geometry

import (
	"context"
	"os"
	"os/exec"
)

// Rect is a rectangle in output-local logical coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
	// Output is the connector name of the output the rectangle is on, such
	// as "DP-1". Empty when unknown.
	Output string
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Resolver reports the geometry of the active window.
type Resolver interface {
	// Name returns the resolver identifier (e.g., "hyprland", "sway").
	Name() string

	// ActiveWindow returns the focused window relative to its output.
	// The bool is false when no window has focus.
	ActiveWindow(ctx context.Context) (Rect, bool, error)
}

// runFunc executes a command and returns its stdout.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Detect returns the name of the resolver for the running compositor.
// Returns "none" if no supported compositor is found.
func Detect(getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}

	if getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return "hyprland"
	}
	if getenv("SWAYSOCK") != "" {
		return "sway"
	}

	return "none"
}

// NewResolver creates a Resolver by name.
// "auto" picks one based on the environment.
func NewResolver(name string) (Resolver, error) {
	if name == "" || name == "auto" {
		name = Detect(nil)
	}

	switch name {
	case "hyprland":
		return NewHyprland(), nil
	case "sway":
		return NewSway(), nil
	case "none":
		return None{}, nil
	default:
		return nil, &ResolverError{
			Source:  name,
			Message: "unknown geometry resolver",
		}
	}
}

// None never reports a window, so the overlay is centered by the compositor.
type None struct{}

// Name returns the resolver identifier.
func (None) Name() string { return "none" }

// ActiveWindow always reports no window.
func (None) ActiveWindow(context.Context) (Rect, bool, error) {
	return Rect{}, false, nil
}

// ResolverError represents a geometry query failure.
type ResolverError struct {
	Source  string
	Message string
	Err     error
}

func (e *ResolverError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Source + ": " + e.Message
}

func (e *ResolverError) Unwrap() error {
	return e.Err
}
