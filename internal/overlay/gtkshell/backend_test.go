package gtkshell

import (
	"testing"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/imepop/internal/overlay"
)

var _ overlay.Backend = (*Backend)(nil)

func TestToLayer(t *testing.T) {
	tests := []struct {
		in   overlay.Layer
		want layershell.Layer
	}{
		{overlay.LayerBackground, layershell.LayerShellLayerBackground},
		{overlay.LayerBottom, layershell.LayerShellLayerBottom},
		{overlay.LayerTop, layershell.LayerShellLayerTop},
		{overlay.LayerOverlay, layershell.LayerShellLayerOverlay},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, toLayer(tt.in))
	}
}

func TestToKeyboardMode(t *testing.T) {
	assert.Equal(t, layershell.LayerShellKeyboardModeNone, toKeyboardMode(overlay.KeyboardNone))
	assert.Equal(t, layershell.LayerShellKeyboardModeExclusive, toKeyboardMode(overlay.KeyboardExclusive))
	assert.Equal(t, layershell.LayerShellKeyboardModeOnDemand, toKeyboardMode(overlay.KeyboardOnDemand))
}

func TestMonitorByConnector_NoDisplay(t *testing.T) {
	assert.Nil(t, monitorByConnector(nil, "DP-1"))
	assert.Nil(t, wrapMonitor(nil))
}

func TestNew_DefaultsLogger(t *testing.T) {
	b := New(nil, nil)
	assert.NotNil(t, b.logger)
	assert.False(t, b.isClosed())
	assert.NoError(t, b.DestroySurface(1))
}
