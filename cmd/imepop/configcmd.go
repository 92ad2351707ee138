package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/imepop/internal/config"
	"github.com/jmylchreest/imepop/internal/render"
)

var configOpts struct {
	defaults bool
	path     bool
	write    bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration imepopd would use, as TOML.

Use --default to print the built-in defaults instead, and --write to save
them to the config file as a starting point.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&configOpts.defaults, "default", false,
		"Print the default configuration")
	configCmd.Flags().BoolVar(&configOpts.path, "path", false,
		"Print the config file path and exit")
	configCmd.Flags().BoolVar(&configOpts.write, "write", false,
		"Write the default configuration to the config file if it does not exist")
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := globalOpts.configPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if configOpts.path {
		fmt.Println(path)
		return nil
	}

	c := getConfig()
	if configOpts.defaults || configOpts.write {
		c = config.DefaultConfig()
	}

	if configOpts.write {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
		if err := c.Save(path); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "wrote", path)
		return nil
	}

	return writeConfig(os.Stdout, c)
}

// writeConfig prints c as TOML preceded by a short summary comment.
func writeConfig(w io.Writer, c *config.Config) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	perImage := uint64(c.Overlay.Width * c.Overlay.Height * render.BytesPerPixel)
	fmt.Fprintf(w, "# overlay %dx%d, %s per cached image, %d fade frames every %s\n",
		c.Overlay.Width, c.Overlay.Height,
		humanize.IBytes(perImage),
		c.Animation.FadeFrames, c.Animation.FrameInterval())
	_, err = w.Write(data)
	return err
}
