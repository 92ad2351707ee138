package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	godbus "github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/imepop/internal/dbus"
)

var currentOpts struct {
	format string
}

// CurrentInputMethod is the structured output of the current command.
type CurrentInputMethod struct {
	InputMethod string `json:"input_method" yaml:"input_method"`
	Text        string `json:"text" yaml:"text"`
}

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the active fcitx5 input method",
	Long: `Query fcitx5 for the active input method and print its name together
with the text imepopd would show for it.`,
	RunE: runCurrent,
}

func init() {
	rootCmd.AddCommand(currentCmd)

	currentCmd.Flags().StringVarP(&currentOpts.format, "format", "f", "plain",
		"Output format: plain, json, yaml")
}

func runCurrent(cmd *cobra.Command, args []string) error {
	c := getConfig()

	ctx, cancel := context.WithTimeout(context.Background(), c.Watcher.DBusTimeout.Duration())
	defer cancel()

	conn, err := godbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	name, err := dbus.NewFcitx5(conn, c.Watcher.DBusTimeout.Duration(), logger).CurrentInputMethod(ctx)
	if err != nil {
		return err
	}

	out := CurrentInputMethod{
		InputMethod: name,
		Text:        c.DisplayText(name),
	}

	return formatCurrent(os.Stdout, currentOpts.format, out)
}

// formatCurrent writes out in the requested format.
func formatCurrent(w io.Writer, format string, out CurrentInputMethod) error {
	switch format {
	case "json":
		return json.NewEncoder(w).Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(out)
	case "plain", "":
		_, err := fmt.Fprintf(w, "%s\t%s\n", out.InputMethod, out.Text)
		return err
	default:
		return fmt.Errorf("unknown format %q, must be one of: plain, json, yaml", format)
	}
}
