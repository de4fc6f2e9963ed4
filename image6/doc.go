// Package image6 provides an 18-bit RGB image format for resistor-ladder DAC output.
//
// The nipkow driver drives three 6-bit R2R ladder DACs, one per color channel,
// so a pixel carries 6 significant bits per channel (intensity levels 0-63).
// Pixels are stored as three consecutive bytes (R, G, B), which is also the
// on-storage frame record layout consumed by the frame loader.
//
// Memory layout example for a 2-pixel row:
//
//	Pixels: 0           1
//	Values: R=63 G=0 B=21   R=10 G=10 B=10
//	Bytes:  0x3F 0x00 0x15  0x0A 0x0A 0x0A
//
// This package provides:
//
// - RGB6: A color type with three 6-bit channels (0-63)
// - RGB6Model: A color model for converting standard Go colors to RGB6
// - Image: An image.Image implementation with 3-byte pixel packing
// - Test pattern generators (color bars, gradients, checkerboard)
//
// Example usage:
//
//	// Create a 32x32 image (one disk revolution at 1024 pixels)
//	img := image6.New(image.Rect(0, 0, 32, 32))
//
//	// Set a pixel to full red
//	img.SetRGB6(10, 20, image6.RGB6{R: 63})
//
//	// Get a pixel
//	c := img.RGB6At(10, 20)
//	println(c.R) // Output: 63
//
//	// Use with standard Go image operations
//	draw.Draw(img, img.Bounds(), image.NewUniform(image6.RGB6{R: 63, G: 63, B: 63}), image.Point{}, draw.Src)
package image6
