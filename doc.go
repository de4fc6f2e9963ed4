// Package nipkow drives a rotating Nipkow-disk display.
//
// A Nipkow disk is a mechanical image scanning device: a spinning disk with a
// spiral of holes, lit from behind by an RGB light source. Modulating the
// light in step with the disk's rotation paints an image. This driver
// implements the rotation-synchronized pixel streaming engine: it measures
// the disk's revolution period from an optical sync pulse, derives a
// per-pixel output period with phase-offset compensation, and streams pixel
// channel values to three resistor-ladder DACs through parallel GPIO pins.
//
// # Engine Characteristics
//
//   - 6-bit per channel RGB output through three ladder-DAC port groups
//   - Per-revolution re-timing tracks rotational speed variation
//   - Drift correction keeps the pixel count per revolution locked to the
//     disk's hole count
//   - Double-buffered frame store: block-storage reads never stall emission
//   - Still-image and sequential-video playback
//   - Blank (not garbled) output while rotation sync is lost
//
// # Hardware Connection
//
//	Disk assembly → System
//	IR sync sensor       → one GPIO input (edge per revolution)
//	R2R ladder DAC red   → 6 GPIO outputs, LSB first
//	R2R ladder DAC green → 6 GPIO outputs, LSB first
//	R2R ladder DAC blue  → 6 GPIO outputs, LSB first
//	Frame storage        → file on a mounted SD card (or any FrameSource)
//
// # Basic Usage
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/mechtv/nipkow"
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		host.Init()
//
//		red, _ := nipkow.NewPortGroup(
//			gpioreg.ByName("GPIO2"), gpioreg.ByName("GPIO3"),
//			gpioreg.ByName("GPIO4"), gpioreg.ByName("GPIO5"),
//			gpioreg.ByName("GPIO6"), gpioreg.ByName("GPIO7"))
//		// ... green and blue port groups likewise ...
//		dac, _ := nipkow.NewLadderDAC(red, green, blue)
//
//		src, _ := nipkow.NewFileSource("/media/sd/movie.nkv", 32*32*3)
//
//		dev, err := nipkow.New(gpioreg.ByName("GPIO17"), dac, src, nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer dev.Halt()
//
//		dev.Start()
//		dev.SetMode(nipkow.ModeVideo)
//		dev.Play()
//		select {}
//	}
//
// # Rotation Sync and Phase Offset
//
// The disk carries a reference mark sensed once per revolution. The measured
// inter-pulse period, divided by the pixels-per-revolution count, gives the
// pixel output period for the next revolution. Because the sensor sits some
// mechanical angle away from the disk's visual reference position, frame
// start is delayed by Opts.PhaseOffset pixel-clock ticks after each pulse.
// The offset is disk-specific: tune it until the image stands upright.
//
// Implausibly short or long periods (sensor noise, stalled disk) are
// rejected and never reach the pixel timing. If no pulse arrives within
// Opts.PulseTimeout the output blanks; it recovers by itself once valid
// pulses resume.
//
// # Frame Storage
//
// A frame is W*H pixels of 3 bytes each (R, G, B; only the low 6 bits are
// significant), the unit of one full revolution's light output. FileSource
// reads such records packed back to back from a file; any other source can
// be plugged in through the FrameSource interface.
//
// Two frame-sized buffer regions alternate between an active role (read by
// the pixel clock) and a standby role (written by the loader). Roles swap at
// pixel-index wraparound, and only when the standby fill has completed; a
// slow or failed read re-displays the previous frame for another revolution
// rather than ever emitting a partial one.
//
// # Playback
//
// The controller is a {Stopped, Playing} x {Image, Video} machine driven
// entirely by external events (front-panel buttons, a command interface):
//
//	dev.SetMode(nipkow.ModeVideo) // or ModeImage
//	dev.Play()                    // advance one frame per revolution
//	dev.Stop()                    // hold position; timing keeps running
//	dev.Next()                    // step to the following frame
//	dev.Seek(42)                  // jump to frame 42
//
// A storage failure halts frame advancement and is reported by
// Dev.LastError; the last good frame keeps displaying. Play retries.
//
// # Showing Arbitrary Images
//
// Dev implements display.Drawer from periph.io. Draw converts any
// image.Image through the image6 color model and shows it as a still:
//
//	img := image6.New(dev.Bounds())
//	image6.ColorBars(img)
//	dev.Draw(dev.Bounds(), img, image.Point{})
//
// # Diagnostics
//
// Dev.Stats returns a snapshot of the measured revolution period, smoothed
// rotation rate, accumulated pixel error and playback position. Nothing in
// the engine depends on it being read.
//
// # Compatibility with periph.io
//
// This driver builds on periph.io GPIO primitives and implements the
// display.Drawer interface:
// https://pkg.go.dev/periph.io/x/conn/v3/display
package nipkow
