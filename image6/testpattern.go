package image6

// Test patterns for disk alignment and DAC checks. The original front-panel
// unit ships a handful of built-in pictures for use without storage media;
// these generators serve the same purpose.

// colorBars holds the classic seven vertical bars at 75% intensity,
// expressed in 6-bit channel values (75% of 63 ≈ 47).
var colorBars = [7]RGB6{
	{R: 47, G: 47, B: 47}, // Gray
	{R: 47, G: 47, B: 0},  // Yellow
	{R: 0, G: 47, B: 47},  // Cyan
	{R: 0, G: 47, B: 0},   // Green
	{R: 47, G: 0, B: 47},  // Magenta
	{R: 47, G: 0, B: 0},   // Red
	{R: 0, G: 0, B: 47},   // Blue
}

// ColorBars fills the image with seven vertical color bars.
func ColorBars(p *Image) {
	w := p.Rect.Dx()
	barWidth := w / len(colorBars)
	if barWidth == 0 {
		barWidth = 1
	}
	for y := p.Rect.Min.Y; y < p.Rect.Max.Y; y++ {
		for x := p.Rect.Min.X; x < p.Rect.Max.X; x++ {
			idx := (x - p.Rect.Min.X) / barWidth
			if idx >= len(colorBars) {
				idx = len(colorBars) - 1
			}
			p.SetRGB6(x, y, colorBars[idx])
		}
	}
}

// Gradient fills the image with a horizontal white ramp from black (left)
// to full intensity (right).
func Gradient(p *Image) {
	w := p.Rect.Dx()
	if w <= 1 {
		return
	}
	for y := p.Rect.Min.Y; y < p.Rect.Max.Y; y++ {
		for x := p.Rect.Min.X; x < p.Rect.Max.X; x++ {
			v := uint8((x - p.Rect.Min.X) * ChannelMax / (w - 1))
			p.SetRGB6(x, y, RGB6{R: v, G: v, B: v})
		}
	}
}

// Checkerboard fills the image with alternating cells of colors a and b.
// cell is the square size in pixels; values below 1 are treated as 1.
func Checkerboard(p *Image, cell int, a, b RGB6) {
	if cell < 1 {
		cell = 1
	}
	for y := p.Rect.Min.Y; y < p.Rect.Max.Y; y++ {
		for x := p.Rect.Min.X; x < p.Rect.Max.X; x++ {
			cx := (x - p.Rect.Min.X) / cell
			cy := (y - p.Rect.Min.Y) / cell
			if (cx+cy)%2 == 0 {
				p.SetRGB6(x, y, a)
			} else {
				p.SetRGB6(x, y, b)
			}
		}
	}
}
