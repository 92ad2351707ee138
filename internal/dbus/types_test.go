package dbus

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUrgency_String(t *testing.T) {
	tests := []struct {
		urgency  Urgency
		expected string
	}{
		{UrgencyLow, "low"},
		{UrgencyNormal, "normal"},
		{UrgencyCritical, "critical"},
		{Urgency(9), "normal"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.urgency.String())
		})
	}
}

func TestNotification_Hints(t *testing.T) {
	n := &Notification{Urgency: UrgencyCritical}
	hints := n.Hints()
	require.Len(t, hints, 1)
	assert.Equal(t, byte(2), hints["urgency"].Value())

	n = &Notification{
		Urgency:      UrgencyLow,
		Category:     "im.received",
		DesktopEntry: "imepop",
		Transient:    true,
	}
	hints = n.Hints()
	assert.Equal(t, "im.received", hints["category"].Value())
	assert.Equal(t, "imepop", hints["desktop-entry"].Value())
	assert.Equal(t, true, hints["transient"].Value())
}

func TestNotification_Args(t *testing.T) {
	n := &Notification{
		AppName:       "imepopd",
		Summary:       "Configuration reloaded",
		ExpireTimeout: -1,
	}
	args := n.args()
	require.Len(t, args, 8)
	assert.Equal(t, "imepopd", args[0])
	assert.Equal(t, uint32(0), args[1])
	assert.Equal(t, "Configuration reloaded", args[3])
	assert.Equal(t, []string{}, args[5], "nil actions are sent as an empty array")
	assert.IsType(t, map[string]dbus.Variant{}, args[6])
	assert.Equal(t, int32(-1), args[7])
}

func TestDefaultServerInfo(t *testing.T) {
	info := DefaultServerInfo()
	assert.Equal(t, "imepopd", info.Name)
	assert.NotEmpty(t, info.Version)
}
