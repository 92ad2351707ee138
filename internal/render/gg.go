package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

type faceKey struct {
	family string
	path   string
	size   float64
}

// GGRasterizer draws overlays with fogleman/gg.
type GGRasterizer struct {
	mu     sync.Mutex
	locate FontLocator
	faces  map[faceKey]font.Face
	warned map[string]bool
	logger *slog.Logger
}

// NewGGRasterizer creates a rasterizer. A nil locator uses FcMatch.
func NewGGRasterizer(locate FontLocator, logger *slog.Logger) *GGRasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	if locate == nil {
		locate = FcMatch
	}
	return &GGRasterizer{
		locate: locate,
		faces:  make(map[faceKey]font.Face),
		warned: make(map[string]bool),
		logger: logger,
	}
}

// Render draws a rounded box inset from the surface edges with the text
// centered on the surface.
func (r *GGRasterizer) Render(width, height int, text string, alpha float64, style Style) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if text == "" {
		return nil, ErrEmptyText
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	face, err := r.face(style)
	if err != nil {
		return nil, err
	}
	r.checkGlyphs(face, text)

	w, h := float64(width), float64(height)
	dc := gg.NewContext(width, height)

	boxW := w - 2*style.Inset
	boxH := h - 2*style.Inset
	if boxW > 0 && boxH > 0 {
		dc.SetColor(fade(style.Box, alpha))
		dc.DrawRoundedRectangle(style.Inset, style.Inset, boxW, boxH, style.CornerRadius)
		dc.Fill()
	}

	dc.SetFontFace(face)
	dc.SetColor(fade(style.Text, alpha))
	dc.DrawStringAnchored(text, w/2, h/2, 0.5, 0.5)

	return FromImage(dc.Image()), nil
}

// face returns the cached font face for style, loading it on first use.
// Must be called with r.mu held.
func (r *GGRasterizer) face(style Style) (font.Face, error) {
	key := faceKey{family: style.FontFamily, path: style.FontPath, size: style.FontSize}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}

	f, err := r.loadFont(style)
	if err != nil {
		return nil, err
	}
	face, err := newFace(f, style.FontSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}

	r.faces[key] = face
	return face, nil
}

func (r *GGRasterizer) loadFont(style Style) (*opentype.Font, error) {
	if style.FontPath != "" {
		f, err := loadFontFile(style.FontPath)
		if err == nil {
			return f, nil
		}
		r.logger.Warn("failed to load font_path, trying font_family", "path", style.FontPath, "error", err)
	}

	pattern := fontPattern(style.FontFamily)
	path, err := r.locate(context.Background(), pattern)
	if err == nil {
		f, err := loadFontFile(path)
		if err == nil {
			r.logger.Debug("resolved font", "pattern", pattern, "path", path)
			return f, nil
		}
		r.logger.Warn("failed to load resolved font", "path", path, "error", err)
	} else {
		r.logger.Debug("font lookup failed, using builtin font", "pattern", pattern, "error", err)
	}

	f, err := builtinFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load builtin font: %w", err)
	}
	return f, nil
}

// checkGlyphs warns once per text when the face cannot draw some of it.
func (r *GGRasterizer) checkGlyphs(face font.Face, text string) {
	if r.warned[text] {
		return
	}
	for _, ch := range text {
		if _, ok := face.GlyphAdvance(ch); !ok {
			r.warned[text] = true
			r.logger.Warn("font has no glyph for overlay text, set overlay.font_family or overlay.font_path",
				"text", text, "rune", string(ch))
			return
		}
	}
}
