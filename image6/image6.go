// Package image6 provides an 18-bit RGB image format with 6 bits per channel.
//
// Pixels are stored as three consecutive bytes per pixel (R, G, B), matching
// the frame record layout read from block storage and the resolution of the
// resistor-ladder DACs. This package provides the RGB6 color type and the
// Image implementation.
package image6

import (
	"image"
	"image/color"
)

// ChannelMax is the largest representable channel intensity (6 bits).
const ChannelMax = 0x3F

// RGB6 represents a color with 6 bits per channel (0-63 intensity levels).
// Only the lower 6 bits of each channel are used.
type RGB6 struct {
	R, G, B uint8
}

// RGBA converts the RGB6 color to standard RGBA.
// Each 6-bit value (0-63) is scaled to 16-bit (0-65535) by bit replication.
func (c RGB6) RGBA() (r, g, b, a uint32) {
	// 0x3F -> 0xFFFF, 0x00 -> 0x0000, linear in between.
	r = scale6to16(c.R)
	g = scale6to16(c.G)
	b = scale6to16(c.B)
	return r, g, b, 0xFFFF
}

// scale6to16 expands a 6-bit value to 16 bits by replicating the bit pattern.
func scale6to16(v uint8) uint32 {
	x := uint32(v & ChannelMax)
	return x<<10 | x<<4 | x>>2
}

// toRGB6 converts any color.Color to RGB6.
func toRGB6(c color.Color) color.Color {
	if r, ok := c.(RGB6); ok {
		return RGB6{R: r.R & ChannelMax, G: r.G & ChannelMax, B: r.B & ChannelMax}
	}
	r, g, b, _ := c.RGBA()
	// RGBA returns 16-bit values, keep the top 6 bits of each.
	return RGB6{R: uint8(r >> 10), G: uint8(g >> 10), B: uint8(b >> 10)}
}

// RGB6Model converts colors to RGB6.
var RGB6Model = color.ModelFunc(toRGB6)

// Image is an 18-bit RGB image where each pixel occupies three consecutive
// bytes: red, green, blue. Pix is laid out exactly like a frame record on
// block storage, so a full image can be loaded with a single read.
type Image struct {
	Pix    []byte          // Pixel data (3 bytes per pixel)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// New creates a new Image with the specified bounds.
func New(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Image{Rect: r}
	}

	stride := w * 3
	return &Image{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *Image) ColorModel() color.Model {
	return RGB6Model
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (p *Image) At(x, y int) color.Color {
	return p.RGB6At(x, y)
}

// RGB6At returns the RGB6 color of the pixel at (x, y).
func (p *Image) RGB6At(x, y int) RGB6 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return RGB6{}
	}
	offset := p.PixOffset(x, y)
	return RGB6{
		R: p.Pix[offset] & ChannelMax,
		G: p.Pix[offset+1] & ChannelMax,
		B: p.Pix[offset+2] & ChannelMax,
	}
}

// Set sets the color of the pixel at (x, y).
func (p *Image) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	p.setRGB6(p.PixOffset(x, y), RGB6Model.Convert(c).(RGB6))
}

// SetRGB6 sets the RGB6 color of the pixel at (x, y).
// This is faster than Set() as it doesn't require color conversion.
func (p *Image) SetRGB6(x, y int, c RGB6) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	p.setRGB6(p.PixOffset(x, y), c)
}

func (p *Image) setRGB6(offset int, c RGB6) {
	p.Pix[offset] = c.R & ChannelMax
	p.Pix[offset+1] = c.G & ChannelMax
	p.Pix[offset+2] = c.B & ChannelMax
}

// PixOffset returns the byte offset of the first channel of the pixel at (x, y).
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}
