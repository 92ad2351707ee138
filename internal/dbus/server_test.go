package dbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlServer_Show(t *testing.T) {
	s := NewControlServer(nil)

	var got []string
	s.SetShowHandler(func(text string) { got = append(got, text) })

	assert.Nil(t, s.Show("かな"))
	assert.NotNil(t, s.Show("   "), "blank text is rejected")
	assert.Equal(t, []string{"かな"}, got)
}

func TestControlServer_ShowInputMethod(t *testing.T) {
	s := NewControlServer(nil)

	var got []string
	s.SetInputMethodHandler(func(name string) { got = append(got, name) })

	assert.Nil(t, s.ShowInputMethod("mozc"))
	assert.NotNil(t, s.ShowInputMethod(""))
	assert.Equal(t, []string{"mozc"}, got)
}

func TestControlServer_NoHandlers(t *testing.T) {
	s := NewControlServer(nil)
	assert.Nil(t, s.Show("en"))
	assert.Nil(t, s.ShowInputMethod("keyboard-us"))
}

func TestControlServer_GetServerInformation(t *testing.T) {
	s := NewControlServer(nil)
	s.SetServerInfo(ServerInfo{Name: "imepopd", Vendor: "imepop", Version: "1.2.3"})

	name, vendor, version, dbusErr := s.GetServerInformation()
	require.Nil(t, dbusErr)
	assert.Equal(t, "imepopd", name)
	assert.Equal(t, "imepop", vendor)
	assert.Equal(t, "1.2.3", version)
}

func TestControlServer_StartRequiresConn(t *testing.T) {
	s := NewControlServer(nil)
	assert.Error(t, s.Start(nil))
	assert.False(t, s.Running())
	assert.NoError(t, s.Stop(), "stopping an idle server is a no-op")
}

func TestControlMethods(t *testing.T) {
	methods := controlMethods()
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"Show", "ShowInputMethod", "GetServerInformation"}, names)
}
