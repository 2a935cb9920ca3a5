package tween

import (
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Easing is a gween easing function: it maps elapsed time t of duration d
// onto a value that starts at b and changes by c.
type Easing = ease.TweenFunc

// Easings used by the viewport and the overlays.
var (
	Linear     Easing = ease.Linear
	QuadIn     Easing = ease.InQuad
	QuadOut    Easing = ease.OutQuad
	QuadInOut  Easing = ease.InOutQuad
	CubicInOut Easing = ease.InOutCubic
)

// Smoothstep is the Hermite ease 3t²-2t³, which gween does not ship.
func Smoothstep(t, b, c, d float32) float32 {
	t /= d
	return c*t*t*(3-2*t) + b
}

var easings = map[string]Easing{
	"linear":      Linear,
	"quad-in":     QuadIn,
	"quad-out":    QuadOut,
	"quad-in-out": QuadInOut,
	"cubic":       CubicInOut,
	"smoothstep":  Smoothstep,
	"sine":        ease.InOutSine,
	"back-out":    ease.OutBack,
	"bounce-out":  ease.OutBounce,
	"ease-in":     QuadIn,
	"ease-out":    QuadOut,
	"ease-in-out": QuadInOut,
}

// EasingByName resolves a configuration name such as "smoothstep" or
// "ease-in-out". Names are case-insensitive.
func EasingByName(name string) (Easing, bool) {
	e, ok := easings[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// EasingNames lists the accepted names for help text.
func EasingNames() []string {
	return []string{"linear", "quad-in", "quad-out", "quad-in-out", "cubic", "smoothstep", "sine", "back-out", "bounce-out", "ease-in", "ease-out", "ease-in-out"}
}

// Ease maps linear progress p in [0, 1] to eased progress. Progress outside
// the range is clamped; the endpoints map exactly to 0 and 1.
func Ease(e Easing, p float64) float64 {
	if e == nil {
		e = Linear
	}
	v, _ := gween.New(0, 1, 1, e).Set(float32(p))
	return float64(v)
}
