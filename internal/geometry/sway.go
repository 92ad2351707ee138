package geometry

import (
	"context"
	"encoding/json"
)

// Sway queries the focused window through swaymsg.
type Sway struct {
	run runFunc
}

// NewSway creates a new Sway resolver.
func NewSway() *Sway {
	return &Sway{run: execOutput}
}

// Name returns the resolver identifier.
func (s *Sway) Name() string {
	return "sway"
}

// ActiveWindow returns the focused window relative to its output.
func (s *Sway) ActiveWindow(ctx context.Context) (Rect, bool, error) {
	data, err := s.run(ctx, "swaymsg", "-t", "get_tree", "-r")
	if err != nil {
		return Rect{}, false, &ResolverError{
			Source:  "sway",
			Message: "failed to execute swaymsg get_tree",
			Err:     err,
		}
	}
	return ParseSwayTree(data)
}

// swayNode is one node of the `swaymsg -t get_tree` output.
type swayNode struct {
	Type          string     `json:"type"`
	Name          string     `json:"name"`
	Focused       bool       `json:"focused"`
	Rect          swayRect   `json:"rect"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

type swayRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ParseSwayTree finds the focused window in a sway layout tree.
// A focused workspace or output means no window has focus.
func ParseSwayTree(data []byte) (Rect, bool, error) {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return Rect{}, false, &ResolverError{
			Source:  "sway",
			Message: "failed to parse layout tree JSON",
			Err:     err,
		}
	}

	node, output, ok := findFocused(&root, nil)
	if !ok || output == nil {
		return Rect{}, false, nil
	}
	if node.Type != "con" && node.Type != "floating_con" {
		return Rect{}, false, nil
	}

	r := Rect{
		X:      node.Rect.X - output.Rect.X,
		Y:      node.Rect.Y - output.Rect.Y,
		Width:  node.Rect.Width,
		Height: node.Rect.Height,
		Output: output.Name,
	}
	if r.Empty() {
		return Rect{}, false, nil
	}
	return r, true, nil
}

// findFocused walks the tree depth-first, tracking the enclosing output.
func findFocused(n *swayNode, output *swayNode) (*swayNode, *swayNode, bool) {
	if n.Type == "output" {
		output = n
	}
	if n.Focused {
		return n, output, true
	}
	for i := range n.Nodes {
		if f, o, ok := findFocused(&n.Nodes[i], output); ok {
			return f, o, true
		}
	}
	for i := range n.FloatingNodes {
		if f, o, ok := findFocused(&n.FloatingNodes[i], output); ok {
			return f, o, true
		}
	}
	return nil, nil, false
}
