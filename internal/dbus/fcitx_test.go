package dbus

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func TestIsInputMethodSignal(t *testing.T) {
	tests := []struct {
		name     string
		sig      *dbus.Signal
		expected bool
	}{
		{"nil", nil, false},
		{
			"current im changed",
			&dbus.Signal{Name: "org.fcitx.Fcitx.InputMethod1.CurrentIMChanged", Body: []any{"mozc", "Mozc", "ja"}},
			true,
		},
		{
			"fcitx properties",
			&dbus.Signal{Name: "org.freedesktop.DBus.Properties.PropertiesChanged", Body: []any{"org.fcitx.Fcitx.Controller1"}},
			true,
		},
		{
			"other properties",
			&dbus.Signal{Name: "org.freedesktop.DBus.Properties.PropertiesChanged", Body: []any{"org.mpris.MediaPlayer2.Player"}},
			false,
		},
		{
			"properties without body",
			&dbus.Signal{Name: "org.freedesktop.DBus.Properties.PropertiesChanged"},
			false,
		},
		{
			"properties with non-string body",
			&dbus.Signal{Name: "org.freedesktop.DBus.Properties.PropertiesChanged", Body: []any{uint32(1)}},
			false,
		},
		{
			"unrelated signal",
			&dbus.Signal{Name: "org.freedesktop.Notifications.NotificationClosed", Body: []any{uint32(1), uint32(2)}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsInputMethodSignal(tt.sig))
		})
	}
}

func TestNewFcitx5_DefaultTimeout(t *testing.T) {
	f := NewFcitx5(nil, 0, nil)
	assert.Equal(t, 5*time.Second, f.timeout)
	assert.NotNil(t, f.logger)

	f = NewFcitx5(nil, time.Second, nil)
	assert.Equal(t, time.Second, f.timeout)
}

func TestMatchRules(t *testing.T) {
	assert.Len(t, matchRules(), 2)
}
