package render

import (
	"image"
	"image/draw"
)

// BytesPerPixel is the size of one ARGB8888 pixel.
const BytesPerPixel = 4

// PixelBuffer is an ARGB8888 image with premultiplied alpha.
// Pixels are stored as 32-bit little-endian words, so the byte order in Pix
// is B, G, R, A. This matches wl_shm ARGB8888 and GDK's B8G8R8A8 premultiplied.
type PixelBuffer struct {
	Width  int
	Height int
	Stride int
	Pix    []byte
}

// NewPixelBuffer allocates a transparent buffer of the given size.
func NewPixelBuffer(width, height int) *PixelBuffer {
	stride := width * BytesPerPixel
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Stride: stride,
		Pix:    make([]byte, stride*height),
	}
}

// Size returns the number of bytes in the buffer.
func (b *PixelBuffer) Size() int {
	return len(b.Pix)
}

// Clone returns a deep copy of the buffer.
func (b *PixelBuffer) Clone() *PixelBuffer {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)
	return &PixelBuffer{
		Width:  b.Width,
		Height: b.Height,
		Stride: b.Stride,
		Pix:    pix,
	}
}

// At returns the premultiplied (a, r, g, b) channels of pixel (x, y).
func (b *PixelBuffer) At(x, y int) (a, r, g, bl uint8) {
	i := y*b.Stride + x*BytesPerPixel
	return b.Pix[i+3], b.Pix[i+2], b.Pix[i+1], b.Pix[i]
}

// FromImage converts any image into an ARGB8888 premultiplied buffer.
func FromImage(img image.Image) *PixelBuffer {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		bounds := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return FromRGBA(rgba)
}

// FromRGBA converts a premultiplied RGBA image into ARGB8888 byte order.
func FromRGBA(img *image.RGBA) *PixelBuffer {
	bounds := img.Bounds()
	buf := NewPixelBuffer(bounds.Dx(), bounds.Dy())

	for y := 0; y < buf.Height; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+buf.Width*BytesPerPixel]
		dst := buf.Pix[y*buf.Stride : y*buf.Stride+buf.Width*BytesPerPixel]
		for i := 0; i < len(src); i += BytesPerPixel {
			dst[i+0] = src[i+2] // B
			dst[i+1] = src[i+1] // G
			dst[i+2] = src[i+0] // R
			dst[i+3] = src[i+3] // A
		}
	}
	return buf
}
