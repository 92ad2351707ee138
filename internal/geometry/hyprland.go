package geometry

import (
	"context"
	"encoding/json"
)

// Hyprland queries the active window through hyprctl.
type Hyprland struct {
	run runFunc
}

// NewHyprland creates a new Hyprland resolver.
func NewHyprland() *Hyprland {
	return &Hyprland{run: execOutput}
}

// Name returns the resolver identifier.
func (h *Hyprland) Name() string {
	return "hyprland"
}

// ActiveWindow returns the focused window relative to its monitor.
func (h *Hyprland) ActiveWindow(ctx context.Context) (Rect, bool, error) {
	winData, err := h.run(ctx, "hyprctl", "activewindow", "-j")
	if err != nil {
		return Rect{}, false, &ResolverError{
			Source:  "hyprland",
			Message: "failed to execute hyprctl activewindow",
			Err:     err,
		}
	}

	win, ok, err := ParseHyprlandWindow(winData)
	if err != nil || !ok {
		return Rect{}, false, err
	}

	monData, err := h.run(ctx, "hyprctl", "monitors", "-j")
	if err != nil {
		return Rect{}, false, &ResolverError{
			Source:  "hyprland",
			Message: "failed to execute hyprctl monitors",
			Err:     err,
		}
	}

	monitors, err := ParseHyprlandMonitors(monData)
	if err != nil {
		return Rect{}, false, err
	}

	return HyprlandWindowRect(win, monitors)
}

// HyprlandWindow is the subset of `hyprctl activewindow -j` that placement needs.
type HyprlandWindow struct {
	Address string `json:"address"`
	At      [2]int `json:"at"`
	Size    [2]int `json:"size"`
	Monitor int    `json:"monitor"`
}

// HyprlandMonitor is the subset of `hyprctl monitors -j` that placement needs.
type HyprlandMonitor struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Focused bool   `json:"focused"`
}

// ParseHyprlandWindow parses `hyprctl activewindow -j` output.
// hyprctl prints an empty object when nothing has focus.
func ParseHyprlandWindow(data []byte) (HyprlandWindow, bool, error) {
	var win HyprlandWindow
	if err := json.Unmarshal(data, &win); err != nil {
		return HyprlandWindow{}, false, &ResolverError{
			Source:  "hyprland",
			Message: "failed to parse active window JSON",
			Err:     err,
		}
	}
	if win.Address == "" {
		return HyprlandWindow{}, false, nil
	}
	return win, true, nil
}

// ParseHyprlandMonitors parses `hyprctl monitors -j` output.
func ParseHyprlandMonitors(data []byte) ([]HyprlandMonitor, error) {
	var monitors []HyprlandMonitor
	if err := json.Unmarshal(data, &monitors); err != nil {
		return nil, &ResolverError{
			Source:  "hyprland",
			Message: "failed to parse monitors JSON",
			Err:     err,
		}
	}
	return monitors, nil
}

// HyprlandWindowRect converts a window's global position to one relative to
// the monitor it is on.
func HyprlandWindowRect(win HyprlandWindow, monitors []HyprlandMonitor) (Rect, bool, error) {
	for _, m := range monitors {
		if m.ID != win.Monitor {
			continue
		}
		r := Rect{
			X:      win.At[0] - m.X,
			Y:      win.At[1] - m.Y,
			Width:  win.Size[0],
			Height: win.Size[1],
			Output: m.Name,
		}
		if r.Empty() {
			return Rect{}, false, nil
		}
		return r, true, nil
	}

	return Rect{}, false, &ResolverError{
		Source:  "hyprland",
		Message: "active window is on an unknown monitor",
	}
}
