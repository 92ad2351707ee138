package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuffer() *PixelBuffer {
	buf := NewPixelBuffer(2, 2)
	copy(buf.Pix, []byte{
		255, 128, 1, 255,
		0, 0, 0, 0,
		100, 200, 51, 240,
		3, 7, 9, 10,
	})
	return buf
}

func TestScaleAlpha_FullAlphaIsExactCopy(t *testing.T) {
	src := testBuffer()

	for _, alpha := range []float64{1.0, 1.5} {
		dst := ScaleAlpha(src, alpha)
		assert.Equal(t, src.Pix, dst.Pix)
		assert.Equal(t, src.Width, dst.Width)
		assert.Equal(t, src.Stride, dst.Stride)

		dst.Pix[0] = 0
		assert.Equal(t, byte(255), src.Pix[0], "copy must not alias the source")
	}
}

func TestScaleAlpha_ZeroAlphaIsTransparent(t *testing.T) {
	src := testBuffer()

	for _, alpha := range []float64{0, -0.5} {
		dst := ScaleAlpha(src, alpha)
		require.Len(t, dst.Pix, len(src.Pix))
		for i, v := range dst.Pix {
			assert.Zero(t, v, "byte %d", i)
		}
	}
}

func TestScaleAlpha_TruncatesTowardZero(t *testing.T) {
	src := testBuffer()
	orig := append([]byte(nil), src.Pix...)

	dst := ScaleAlpha(src, 0.5)

	want := []byte{
		127, 64, 0, 127,
		0, 0, 0, 0,
		50, 100, 25, 120,
		1, 3, 4, 5,
	}
	assert.Equal(t, want, dst.Pix)
	assert.Equal(t, orig, src.Pix, "source must be unchanged")
}

func TestScaleAlpha_EveryByteValue(t *testing.T) {
	src := NewPixelBuffer(64, 1)
	for i := range src.Pix {
		src.Pix[i] = byte(i)
	}

	alpha := 0.729
	dst := ScaleAlpha(src, alpha)
	for i, v := range src.Pix {
		assert.Equal(t, byte(float64(v)*alpha), dst.Pix[i])
		assert.LessOrEqual(t, dst.Pix[i], v)
	}
}
