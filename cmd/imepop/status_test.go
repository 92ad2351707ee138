package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/imepop/internal/config"
	"github.com/jmylchreest/imepop/internal/dbus"
)

func TestGenerateStatus(t *testing.T) {
	c := config.DefaultConfig()

	tests := []struct {
		name     string
		in       statusInput
		expected WaybarStatus
	}{
		{
			name: "fcitx5 unavailable",
			in:   statusInput{inputErr: errors.New("name has no owner")},
			expected: WaybarStatus{
				Alt:     "error",
				Tooltip: "fcitx5 unavailable: name has no owner",
				Class:   "error",
			},
		},
		{
			name: "empty input method",
			in:   statusInput{},
			expected: WaybarStatus{
				Alt:     "error",
				Tooltip: "fcitx5 is not running",
				Class:   "error",
			},
		},
		{
			name: "daemon running",
			in: statusInput{
				inputMethod:   "mozc",
				daemonRunning: true,
				daemonInfo:    dbus.ServerInfo{Name: "imepopd", Version: "1.0.0"},
			},
			expected: WaybarStatus{
				Text:    "かな",
				Alt:     "mozc",
				Tooltip: "Input method: mozc\nimepopd: running (1.0.0)",
				Class:   "active",
			},
		},
		{
			name: "daemon not running",
			in:   statusInput{inputMethod: "keyboard-us"},
			expected: WaybarStatus{
				Text:    "en",
				Alt:     "keyboard-us",
				Tooltip: "Input method: keyboard-us\nimepopd: not running",
				Class:   "no-daemon",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, generateStatus(c, tt.in))
		})
	}
}

func TestOutputStatus(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputStatus(&buf, WaybarStatus{Text: "かな", Alt: "mozc", Class: "active"}))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "かな", decoded["text"])
	assert.Equal(t, "mozc", decoded["alt"])
	_, hasTooltip := decoded["tooltip"]
	assert.False(t, hasTooltip, "empty tooltip is omitted")
}

func TestWriteConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeConfig(&buf, config.DefaultConfig()))

	out := buf.String()
	assert.Contains(t, out, "# overlay 300x150, 176 KiB per cached image, 10 fade frames every 100ms")

	parsed, err := config.Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Overlay, parsed.Overlay)
}

func TestFormatCurrent(t *testing.T) {
	out := CurrentInputMethod{InputMethod: "mozc", Text: "かな"}

	tests := []struct {
		format   string
		expected string
	}{
		{"plain", "mozc\tかな\n"},
		{"", "mozc\tかな\n"},
		{"json", `{"input_method":"mozc","text":"かな"}` + "\n"},
		{"yaml", "input_method: mozc\ntext: かな\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, formatCurrent(&buf, tt.format, out))
			assert.Equal(t, tt.expected, buf.String())
		})
	}

	var buf bytes.Buffer
	assert.Error(t, formatCurrent(&buf, "xml", out))
}
