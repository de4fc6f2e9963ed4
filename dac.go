package nipkow

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// PortGroup drives one resistor-ladder DAC from a set of parallel GPIO
// output pins, ordered least significant bit first.
type PortGroup struct {
	pins []gpio.PinOut
	max  uint8 // largest representable device code
}

// NewPortGroup assembles a ladder DAC port from 1 to 8 output pins.
// Pins are given least significant bit first.
func NewPortGroup(pins ...gpio.PinOut) (*PortGroup, error) {
	if len(pins) == 0 || len(pins) > 8 {
		return nil, errors.New("nipkow: port group needs between 1 and 8 pins")
	}
	for i, p := range pins {
		if p == nil {
			return nil, fmt.Errorf("nipkow: port group pin %d is nil", i)
		}
	}
	return &PortGroup{
		pins: pins,
		max:  uint8(1<<len(pins) - 1),
	}, nil
}

// Bits returns the bit width of the group.
func (g *PortGroup) Bits() int {
	return len(g.pins)
}

// Write drives the group's pins with the device code for v. Values above
// the representable range are clamped, never rejected.
func (g *PortGroup) Write(v uint8) error {
	if v > g.max {
		v = g.max
	}
	for i, p := range g.pins {
		if err := p.Out(gpio.Level(v&(1<<i) != 0)); err != nil {
			return fmt.Errorf("nipkow: port group bit %d: %w", i, err)
		}
	}
	return nil
}

// LadderDAC converts a pixel's three channel intensities into the bit
// patterns written to the three DAC port groups.
type LadderDAC struct {
	red, green, blue *PortGroup
}

// NewLadderDAC combines three equally wide port groups, one per color
// channel, into a pixel output stage.
func NewLadderDAC(red, green, blue *PortGroup) (*LadderDAC, error) {
	if red == nil || green == nil || blue == nil {
		return nil, errors.New("nipkow: all three DAC port groups are required")
	}
	if red.Bits() != green.Bits() || green.Bits() != blue.Bits() {
		return nil, fmt.Errorf("nipkow: channel widths differ (R:%d G:%d B:%d)",
			red.Bits(), green.Bits(), blue.Bits())
	}
	return &LadderDAC{red: red, green: green, blue: blue}, nil
}

// Resolution returns the bit width per channel.
func (d *LadderDAC) Resolution() int {
	return d.red.Bits()
}

// WritePixel latches one pixel's channel values onto the three port
// groups. Called once per pixel tick; a failed write shows as one wrong
// pixel on this revolution.
func (d *LadderDAC) WritePixel(r, g, b uint8) error {
	if err := d.red.Write(r); err != nil {
		return err
	}
	if err := d.green.Write(g); err != nil {
		return err
	}
	return d.blue.Write(b)
}

// Blank drives all channels to zero, turning the light source off.
func (d *LadderDAC) Blank() error {
	return d.WritePixel(0, 0, 0)
}
