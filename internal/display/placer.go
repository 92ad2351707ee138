package display

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmylchreest/imepop/internal/config"
	"github.com/jmylchreest/imepop/internal/geometry"
	"github.com/jmylchreest/imepop/internal/overlay"
)

// DefaultResolveTimeout bounds the geometry query when the configured
// timeout is not positive.
const DefaultResolveTimeout = 200 * time.Millisecond

// Placer decides where the overlay surface goes.
type Placer struct {
	resolver geometry.Resolver
	mode     config.PlacementMode
	timeout  time.Duration
	logger   *slog.Logger
}

// NewPlacer creates a placer. A nil resolver always centers the overlay.
func NewPlacer(resolver geometry.Resolver, cfg config.PlacementConfig, logger *slog.Logger) *Placer {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.ResolveTimeout.Duration()
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	return &Placer{
		resolver: resolver,
		mode:     config.PlacementMode(cfg.Mode),
		timeout:  timeout,
		logger:   logger,
	}
}

// Place returns the placement for a width x height overlay.
// It centers the overlay on the active window when one is known and falls
// back to the compositor's centered placement otherwise. It never fails.
func (p *Placer) Place(ctx context.Context, width, height int) overlay.Placement {
	if p.mode == config.PlacementCenter || p.resolver == nil {
		return overlay.Placement{}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rect, ok, err := p.resolver.ActiveWindow(ctx)
	if err != nil {
		p.logger.Debug("active window lookup failed, centering overlay",
			"resolver", p.resolver.Name(),
			"error", err,
		)
		return overlay.Placement{}
	}
	if !ok {
		return overlay.Placement{}
	}

	return CenterOn(rect, width, height)
}

// CenterOn returns a top-left anchored placement on r's output whose margins
// put the center of a width x height overlay on the center of r. Margins are
// clamped to zero.
func CenterOn(r geometry.Rect, width, height int) overlay.Placement {
	left := max(0, r.X+(r.Width-width)/2)
	top := max(0, r.Y+(r.Height-height)/2)

	return overlay.Placement{
		Output: r.Output,
		Anchor: overlay.AnchorTop | overlay.AnchorLeft,
		Margins: overlay.Margins{
			Top:  top,
			Left: left,
		},
	}
}
