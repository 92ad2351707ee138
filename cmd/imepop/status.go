package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/imepop/internal/config"
	"github.com/jmylchreest/imepop/internal/dbus"
)

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text    string `json:"text"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Class   string `json:"class,omitempty"`
}

// statusInput collects what the status command learned from the session bus.
type statusInput struct {
	inputMethod   string
	inputErr      error
	daemonRunning bool
	daemonInfo    dbus.ServerInfo
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Output Waybar-compatible JSON status",
	Long: `Output the active input method in Waybar's custom module JSON format.

This is designed to be used with Waybar's custom module:

  "custom/ime": {
    "exec": "imepop status",
    "interval": 1,
    "return-type": "json",
    "on-click": "fcitx5-remote -t"
  }

The output includes:
  - text: Configured overlay text for the active input method
  - alt: Input method name (or "error")
  - tooltip: Input method and daemon state
  - class: "active", "no-daemon" or "error"`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	c := getConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	in := statusInput{}

	conn, err := godbus.SessionBus()
	if err != nil {
		in.inputErr = err
		return outputStatus(os.Stdout, generateStatus(c, in))
	}

	client := dbus.NewClient(conn)
	if running, err := client.DaemonRunning(ctx); err == nil && running {
		in.daemonRunning = true
		if info, err := client.ServerInformation(ctx); err == nil {
			in.daemonInfo = info
		}
	}

	fcitx := dbus.NewFcitx5(conn, c.Watcher.DBusTimeout.Duration(), logger)
	in.inputMethod, in.inputErr = fcitx.CurrentInputMethod(ctx)

	return outputStatus(os.Stdout, generateStatus(c, in))
}

// generateStatus creates a WaybarStatus from the queried state.
func generateStatus(c *config.Config, in statusInput) WaybarStatus {
	if in.inputErr != nil || in.inputMethod == "" {
		tooltip := "fcitx5 is not running"
		if in.inputErr != nil {
			tooltip = "fcitx5 unavailable: " + in.inputErr.Error()
		}
		return WaybarStatus{
			Text:    "",
			Alt:     "error",
			Tooltip: tooltip,
			Class:   "error",
		}
	}

	lines := []string{fmt.Sprintf("Input method: %s", in.inputMethod)}
	class := "active"
	if in.daemonRunning {
		daemon := "imepopd: running"
		if in.daemonInfo.Version != "" {
			daemon += " (" + in.daemonInfo.Version + ")"
		}
		lines = append(lines, daemon)
	} else {
		lines = append(lines, "imepopd: not running")
		class = "no-daemon"
	}

	return WaybarStatus{
		Text:    c.DisplayText(in.inputMethod),
		Alt:     in.inputMethod,
		Tooltip: strings.Join(lines, "\n"),
		Class:   class,
	}
}

// outputStatus writes the status as JSON.
func outputStatus(w io.Writer, status WaybarStatus) error {
	encoder := json.NewEncoder(w)
	return encoder.Encode(status)
}
