// Package easing converts animation progress into display alpha.
package easing

import "sort"

// Func maps progress t in [0,1] to an eased value in [0,1].
// Every Func is monotonically non-decreasing with f(0) = 0 and f(1) = 1.
type Func func(t float64) float64

// Default is the easing used when none is configured.
const Default = "ease-out-cubic"

var funcs = map[string]Func{
	"linear":            Linear,
	"ease-out-quad":     EaseOutQuad,
	"ease-out-cubic":    EaseOutCubic,
	"ease-in-out-cubic": EaseInOutCubic,
}

// ByName returns the easing function registered under name.
func ByName(name string) (Func, bool) {
	f, ok := funcs[name]
	return f, ok
}

// Names returns the registered easing names in sorted order.
func Names() []string {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func clamp(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	default:
		return t
	}
}

// Linear returns t unchanged.
func Linear(t float64) float64 {
	return clamp(t)
}

// EaseOutQuad decelerates quadratically.
func EaseOutQuad(t float64) float64 {
	t = clamp(t)
	return 1 - (1-t)*(1-t)
}

// EaseOutCubic decelerates cubically: 1 - (1-t)^3.
func EaseOutCubic(t float64) float64 {
	t = clamp(t)
	u := 1 - t
	return 1 - u*u*u
}

// EaseInOutCubic accelerates then decelerates.
func EaseInOutCubic(t float64) float64 {
	t = clamp(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// FadeAlpha returns the alpha for fade step k of n: 1 - f(k/n).
// Step 0 is fully opaque and step n is fully transparent.
func FadeAlpha(k, n int, f Func) float64 {
	if n <= 0 {
		return 0
	}
	if f == nil {
		f = EaseOutCubic
	}
	return clamp(1 - f(float64(k)/float64(n)))
}

// FadeSchedule returns the alphas for steps 1..n.
func FadeSchedule(n int, f Func) []float64 {
	if n <= 0 {
		return nil
	}
	alphas := make([]float64, n)
	for k := 1; k <= n; k++ {
		alphas[k-1] = FadeAlpha(k, n, f)
	}
	return alphas
}
