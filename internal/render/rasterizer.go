package render

import (
	"fmt"
	"image/color"

	"github.com/jmylchreest/imepop/internal/config"
)

// Rasterizer draws the overlay box with centered text.
// Implementations return a width x height ARGB8888 premultiplied buffer where
// every color is drawn at the given alpha.
type Rasterizer interface {
	Render(width, height int, text string, alpha float64, style Style) (*PixelBuffer, error)
}

// Style describes how the overlay is drawn.
type Style struct {
	FontFamily   string
	FontPath     string
	FontSize     float64
	CornerRadius float64
	Inset        float64
	Box          color.NRGBA
	Text         color.NRGBA
}

// StyleFromConfig builds a Style from the overlay section of the config.
func StyleFromConfig(cfg config.OverlayConfig) (Style, error) {
	box, err := config.ParseColor(cfg.BoxColor)
	if err != nil {
		return Style{}, fmt.Errorf("invalid box_color: %w", err)
	}
	text, err := config.ParseColor(cfg.TextColor)
	if err != nil {
		return Style{}, fmt.Errorf("invalid text_color: %w", err)
	}
	return Style{
		FontFamily:   cfg.FontFamily,
		FontPath:     cfg.FontPath,
		FontSize:     cfg.FontSize,
		CornerRadius: cfg.CornerRadius,
		Inset:        cfg.Inset,
		Box:          box,
		Text:         text,
	}, nil
}

func fade(c color.NRGBA, alpha float64) color.NRGBA {
	if alpha >= 1 {
		return c
	}
	if alpha <= 0 {
		return color.NRGBA{R: c.R, G: c.G, B: c.B}
	}
	c.A = uint8(float64(c.A) * alpha)
	return c
}
