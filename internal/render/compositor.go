package render

// ScaleAlpha returns a copy of src with every channel multiplied by alpha.
//
// Source pixels are premultiplied, so scaling the color channels together with
// the alpha channel yields the same image drawn at the lower opacity. Values
// are truncated toward zero. alpha >= 1 returns an exact copy and alpha <= 0 a
// fully transparent buffer. src is never modified.
func ScaleAlpha(src *PixelBuffer, alpha float64) *PixelBuffer {
	if alpha >= 1 {
		return src.Clone()
	}

	dst := &PixelBuffer{
		Width:  src.Width,
		Height: src.Height,
		Stride: src.Stride,
		Pix:    make([]byte, len(src.Pix)),
	}
	if alpha <= 0 {
		return dst
	}

	var lut [256]byte
	for v := range lut {
		lut[v] = byte(float64(v) * alpha)
	}
	for i, v := range src.Pix {
		dst.Pix[i] = lut[v]
	}
	return dst
}
