// Package render turns overlay text into ARGB8888 pixel buffers.
// It owns the render cache that maps text to its fully opaque image and the
// compositor that derives translucent copies of cached images for fade frames.
package render
