package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// FontLocator maps a fontconfig pattern to a font file path.
type FontLocator func(ctx context.Context, pattern string) (string, error)

const fcMatchTimeout = 2 * time.Second

// FcMatch resolves a pattern with fc-match.
func FcMatch(ctx context.Context, pattern string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fcMatchTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "fc-match", "--format=%{file}", pattern)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("fc-match %q failed: %w", pattern, err)
	}

	path := strings.TrimSpace(stdout.String())
	if path == "" {
		return "", fmt.Errorf("fc-match %q returned no file", pattern)
	}
	return path, nil
}

// fontPattern builds the fontconfig pattern for a family in bold weight.
func fontPattern(family string) string {
	if family == "" {
		family = "sans-serif"
	}
	return family + ":weight=bold"
}

// loadFontFile parses a TrueType/OpenType file or the first face of a collection.
func loadFontFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttc", ".otc":
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font collection %s: %w", path, err)
		}
		f, err := coll.Font(0)
		if err != nil {
			return nil, fmt.Errorf("failed to read font collection %s: %w", path, err)
		}
		return f, nil
	default:
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
		}
		return f, nil
	}
}

// builtinFont returns the embedded Go Bold font.
func builtinFont() (*opentype.Font, error) {
	return opentype.Parse(gobold.TTF)
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
