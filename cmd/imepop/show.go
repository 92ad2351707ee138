package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/imepop/internal/dbus"
)

var showOpts struct {
	inputMethod bool
	timeout     time.Duration
}

var showCmd = &cobra.Command{
	Use:   "show <text>",
	Short: "Show text on the overlay",
	Long: `Ask the running imepopd to show text on the overlay.

With --input-method the argument is an fcitx5 input method name and the
daemon shows the text configured for it:

  imepop show "あ"
  imepop show --input-method mozc`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVarP(&showOpts.inputMethod, "input-method", "i", false,
		"Treat the argument as an input method name")
	showCmd.Flags().DurationVar(&showOpts.timeout, "timeout", 2*time.Second,
		"D-Bus call timeout")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), showOpts.timeout)
	defer cancel()

	client, err := dbus.Connect()
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if showOpts.inputMethod {
		logger.Debug("requesting input method overlay", "input_method", text)
		err = client.ShowInputMethod(ctx, text)
	} else {
		logger.Debug("requesting overlay", "text", text)
		err = client.Show(ctx, text)
	}
	if err != nil {
		return fmt.Errorf("is imepopd running? %w", err)
	}
	return nil
}
