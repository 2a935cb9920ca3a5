package scene

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphscope/pkg/config"
	"github.com/matzehuels/graphscope/pkg/density"
	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/hittest"
	"github.com/matzehuels/graphscope/pkg/layout"
	"github.com/matzehuels/graphscope/pkg/spatial"
	"github.com/matzehuels/graphscope/pkg/tween"
	"github.com/matzehuels/graphscope/pkg/viewport"
)

// OptionsFromConfig maps a loaded configuration onto scene options. The
// registry may be nil, in which case New builds the default one.
func OptionsFromConfig(cfg *config.Config, c Container, reg *layout.Registry, logger *log.Logger) (Options, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	mode, err := spatial.ParseEdgeMode(cfg.Index.EdgeMode)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "index.edge_mode")
	}
	easing := tween.CubicInOut
	if cfg.Viewport.Easing != "" {
		e, ok := tween.EasingByName(cfg.Viewport.Easing)
		if !ok {
			return Options{}, errors.New(errors.ErrCodeInvalidConfig, "unknown easing %q (available: %v)", cfg.Viewport.Easing, tween.EasingNames())
		}
		easing = e
	}

	return Options{
		Container: c,
		Layout:    cfg.Layout.Name,
		Registry:  reg,
		EdgeMode:  mode,
		Viewport: viewport.Options{
			MinScale:          cfg.Viewport.MinScale,
			MaxScale:          cfg.Viewport.MaxScale,
			AnimationDuration: time.Duration(cfg.Viewport.AnimationDuration),
			SettleDelay:       time.Duration(cfg.Viewport.SettleDelay),
			Easing:            easing,
		},
		Density: density.Options{Threshold: cfg.Density.Threshold},
		HitTest: hittest.Options{
			BaseRadius: cfg.HitTest.BaseRadius,
			Interval:   time.Duration(cfg.HitTest.Interval),
		},
		Labels: LabelOptions{
			Disabled:  !cfg.Labels.Enabled,
			Threshold: cfg.Density.Threshold,
			Fade:      time.Duration(cfg.Labels.FadeDuration),
		},
		FitPadding: cfg.Viewport.FitPadding,
		FitMaxZoom: cfg.Viewport.FitMaxZoom,
		Logger:     logger,
	}, nil
}
