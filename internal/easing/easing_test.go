package easing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncs_Endpoints(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			f, ok := ByName(name)
			require.True(t, ok)
			assert.Equal(t, 0.0, f(0))
			assert.InDelta(t, 1.0, f(1), 1e-12)
		})
	}
}

func TestFuncs_Monotonic(t *testing.T) {
	const steps = 1000
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			f, _ := ByName(name)
			prev := f(0)
			for i := 1; i <= steps; i++ {
				v := f(float64(i) / steps)
				assert.GreaterOrEqual(t, v, prev, "t=%v", float64(i)/steps)
				prev = v
			}
		})
	}
}

func TestFuncs_ClampOutOfRange(t *testing.T) {
	assert.Equal(t, 0.0, EaseOutCubic(-0.5))
	assert.Equal(t, 1.0, EaseOutCubic(1.5))
	assert.Equal(t, 0.0, Linear(-1))
}

func TestEaseOutCubic_Values(t *testing.T) {
	assert.InDelta(t, 0.875, EaseOutCubic(0.5), 1e-12)
	assert.InDelta(t, 0.271, EaseOutCubic(0.1), 1e-12)
}

func TestByName_Unknown(t *testing.T) {
	_, ok := ByName("bounce")
	assert.False(t, ok)
	_, ok = ByName(Default)
	assert.True(t, ok)
}

func TestFadeSchedule_Decreasing(t *testing.T) {
	for _, n := range []int{1, 2, 3, 10, 60} {
		alphas := FadeSchedule(n, EaseOutCubic)
		require.Len(t, alphas, n)

		for i := 1; i < len(alphas); i++ {
			assert.Less(t, alphas[i], alphas[i-1], "n=%d step=%d", n, i+1)
		}
		assert.Less(t, alphas[n-1], 1.0)
		assert.Equal(t, 0.0, alphas[n-1], "final step is transparent")
	}
}

func TestFadeAlpha(t *testing.T) {
	assert.Equal(t, 1.0, FadeAlpha(0, 10, EaseOutCubic))
	assert.InDelta(t, 0.729, FadeAlpha(1, 10, EaseOutCubic), 1e-12)
	assert.Equal(t, 0.0, FadeAlpha(10, 10, EaseOutCubic))
	assert.Equal(t, 0.0, FadeAlpha(1, 0, EaseOutCubic))
	assert.InDelta(t, 0.729, FadeAlpha(1, 10, nil), 1e-12)
}
