package geometry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"hyprland", map[string]string{"HYPRLAND_INSTANCE_SIGNATURE": "abc"}, "hyprland"},
		{"sway", map[string]string{"SWAYSOCK": "/run/user/1000/sway.sock"}, "sway"},
		{"hyprland wins", map[string]string{"HYPRLAND_INSTANCE_SIGNATURE": "abc", "SWAYSOCK": "x"}, "hyprland"},
		{"unknown", map[string]string{}, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(func(k string) string { return tt.env[k] })
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewResolver(t *testing.T) {
	for _, name := range []string{"hyprland", "sway", "none"} {
		r, err := NewResolver(name)
		require.NoError(t, err)
		assert.Equal(t, name, r.Name())
	}

	_, err := NewResolver("kwin")
	var rerr *ResolverError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "kwin", rerr.Source)
}

func TestNone(t *testing.T) {
	r, ok, err := None{}.ActiveWindow(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, r.Empty())
}

func TestResolverError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := &ResolverError{Source: "sway", Message: "failed", Err: cause}

	assert.Equal(t, "sway: failed: exit status 1", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "sway: failed", (&ResolverError{Source: "sway", Message: "failed"}).Error())
}
