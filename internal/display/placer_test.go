package display

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/imepop/internal/config"
	"github.com/jmylchreest/imepop/internal/geometry"
	"github.com/jmylchreest/imepop/internal/overlay"
)

type stubResolver struct {
	rect  geometry.Rect
	ok    bool
	err   error
	block bool
	calls int
}

func (r *stubResolver) Name() string { return "stub" }

func (r *stubResolver) ActiveWindow(ctx context.Context) (geometry.Rect, bool, error) {
	r.calls++
	if r.block {
		<-ctx.Done()
		return geometry.Rect{}, false, ctx.Err()
	}
	return r.rect, r.ok, r.err
}

func placementConfig(mode config.PlacementMode) config.PlacementConfig {
	cfg := config.DefaultConfig().Placement
	cfg.Mode = string(mode)
	return cfg
}

func TestCenterOn(t *testing.T) {
	tests := []struct {
		name string
		rect geometry.Rect
		want overlay.Margins
	}{
		{"centered", geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, overlay.Margins{Top: 465, Left: 810}},
		{"offset window", geometry.Rect{X: 100, Y: 50, Width: 500, Height: 350}, overlay.Margins{Top: 150, Left: 200}},
		{"window smaller than overlay", geometry.Rect{X: 0, Y: 0, Width: 100, Height: 100}, overlay.Margins{Top: 0, Left: 0}},
		{"small window away from edge", geometry.Rect{X: 500, Y: 400, Width: 100, Height: 50}, overlay.Margins{Top: 350, Left: 400}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CenterOn(tt.rect, 300, 150)
			assert.Equal(t, overlay.AnchorTop|overlay.AnchorLeft, p.Anchor)
			assert.Equal(t, tt.want, p.Margins)
		})
	}
}

func TestCenterOn_KeepsOutput(t *testing.T) {
	p := CenterOn(geometry.Rect{Width: 800, Height: 600, Output: "DP-1"}, 300, 150)
	assert.Equal(t, "DP-1", p.Output)
}

func TestPlacer_ActiveWindow(t *testing.T) {
	r := &stubResolver{rect: geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080, Output: "eDP-1"}, ok: true}
	p := NewPlacer(r, placementConfig(config.PlacementActiveWindow), nil)

	got := p.Place(context.Background(), 300, 150)
	assert.Equal(t, overlay.AnchorTop|overlay.AnchorLeft, got.Anchor)
	assert.Equal(t, 810, got.Margins.Left)
	assert.Equal(t, "eDP-1", got.Output)
}

func TestPlacer_FallsBackToCenter(t *testing.T) {
	tests := []struct {
		name     string
		resolver geometry.Resolver
	}{
		{"no window", &stubResolver{ok: false}},
		{"resolver error", &stubResolver{err: errors.New("hyprctl not found")}},
		{"none resolver", geometry.None{}},
		{"nil resolver", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlacer(tt.resolver, placementConfig(config.PlacementActiveWindow), nil)
			assert.Equal(t, overlay.Placement{}, p.Place(context.Background(), 300, 150))
		})
	}
}

func TestPlacer_CenterModeSkipsResolver(t *testing.T) {
	r := &stubResolver{rect: geometry.Rect{Width: 1000, Height: 1000}, ok: true}
	p := NewPlacer(r, placementConfig(config.PlacementCenter), nil)

	assert.Equal(t, overlay.Placement{}, p.Place(context.Background(), 300, 150))
	assert.Zero(t, r.calls)
}

func TestPlacer_Timeout(t *testing.T) {
	r := &stubResolver{block: true}
	cfg := placementConfig(config.PlacementActiveWindow)
	cfg.ResolveTimeout = config.Duration(10 * time.Millisecond)
	p := NewPlacer(r, cfg, nil)

	start := time.Now()
	got := p.Place(context.Background(), 300, 150)
	assert.Equal(t, overlay.Placement{}, got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPlacer_ZeroTimeoutUsesDefault(t *testing.T) {
	r := &stubResolver{block: true}
	cfg := placementConfig(config.PlacementActiveWindow)
	cfg.ResolveTimeout = 0
	p := NewPlacer(r, cfg, nil)
	assert.Equal(t, DefaultResolveTimeout, p.timeout)

	start := time.Now()
	got := p.Place(context.Background(), 300, 150)
	assert.Equal(t, overlay.Placement{}, got)
	assert.Less(t, time.Since(start), 5*DefaultResolveTimeout)
}
