// Package nipkow drives a rotating Nipkow-disk display: it streams pixel
// color values, phase-locked to the disk's rotation, to three resistor-
// ladder DACs that modulate an RGB light source.
//
// See the examples for how to use this package.
package nipkow

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mechtv/nipkow/image6"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Opts is the configuration for the disk engine.
type Opts struct {
	// Disk geometry in pixels. W*H is the pixels-per-revolution count
	// (the disk's hole count) and is fixed for the life of the device.
	W int // Width (default: 32)
	H int // Height (default: 32)

	// PhaseOffset is the number of pixel-clock ticks between the sync
	// pulse and the disk reaching its visual reference position.
	// Disk-specific; tune it for your disk. The zero value means no
	// offset; nil opts use DefaultPhaseOffset.
	PhaseOffset int

	// MinPeriod and MaxPeriod bound plausible revolution periods.
	// Measurements outside the window are rejected as sensor noise or a
	// stalled disk. Defaults: 5ms and 500ms.
	MinPeriod time.Duration
	MaxPeriod time.Duration

	// PulseTimeout is how long the engine waits for a sync pulse before
	// declaring rotation lost and blanking the output. Default: 1s.
	PulseTimeout time.Duration

	// FPSAlpha is the smoothing coefficient of the revolutions-per-second
	// low-pass estimate, in (0, 1]. Default: 0.1.
	FPSAlpha float64

	// Loop restarts video playback from frame 0 at end of data instead
	// of holding the last frame.
	Loop bool
}

func (o *Opts) setDefaults() {
	if o.W == 0 {
		o.W = 32
	}
	if o.H == 0 {
		o.H = 32
	}
	if o.MinPeriod == 0 {
		o.MinPeriod = 5 * time.Millisecond
	}
	if o.MaxPeriod == 0 {
		o.MaxPeriod = 500 * time.Millisecond
	}
	if o.PulseTimeout == 0 {
		o.PulseTimeout = time.Second
	}
	if o.FPSAlpha == 0 {
		o.FPSAlpha = 0.1
	}
}

func (o *Opts) validate() error {
	if o.W <= 0 || o.H <= 0 {
		return errors.New("nipkow: width and height must be positive")
	}
	n := o.W * o.H
	if n > 1<<16 {
		return errors.New("nipkow: more than 65536 pixels per revolution")
	}
	if o.PhaseOffset < 0 || o.PhaseOffset >= n {
		return errors.New("nipkow: phase offset must be in [0, pixels per revolution)")
	}
	if o.MinPeriod <= 0 || o.MaxPeriod <= o.MinPeriod {
		return errors.New("nipkow: need 0 < MinPeriod < MaxPeriod")
	}
	if o.PulseTimeout < o.MaxPeriod {
		return errors.New("nipkow: pulse timeout shorter than the longest plausible revolution")
	}
	if o.FPSAlpha <= 0 || o.FPSAlpha > 1 {
		return errors.New("nipkow: FPSAlpha must be in (0, 1]")
	}
	return nil
}

// DefaultPhaseOffset is the phase offset of the reference disk, used when
// New is given nil opts.
const DefaultPhaseOffset = 94

var errHalted = errors.New("nipkow: halted")

// Dev is the device handle for the disk engine.
type Dev struct {
	// Hardware
	pulse gpio.PinIn // rotation-sync input, one edge per revolution
	dac   *LadderDAC // pixel output stage

	// Geometry
	rect image.Rectangle
	n    int // pixels per revolution

	opts Opts
	src  FrameSource

	fb     *frameBuffer
	timing *syncState
	pb     *playback

	// Staging image for Draw/Write; guarded by stagingMu, copied into the
	// standby region by the loader.
	staging   *image6.Image
	stagingMu sync.Mutex

	emitted atomic.Int64  // pixels emitted since the last sync pulse
	frames  atomic.Uint64 // frames swapped into the active region

	pulseCh  chan struct{}
	refillCh chan struct{}
	done     chan struct{}
	closing  atomic.Bool
	wg       sync.WaitGroup

	mu      sync.Mutex
	started bool
	halted  bool
}

// Dev streams images, so it can serve as a display.Drawer.
var _ display.Drawer = &Dev{}

// New creates a disk engine. pulse is the rotation-sync input (one edge
// per revolution), dac the three-channel output stage, and src the block
// storage the frame loader reads from.
//
// opts can be nil to use defaults (32x32 disk, phase offset 94).
func New(pulse gpio.PinIn, dac *LadderDAC, src FrameSource, opts *Opts) (*Dev, error) {
	if pulse == nil {
		return nil, errors.New("nipkow: rotation-sync pin is required")
	}
	if dac == nil {
		return nil, errors.New("nipkow: DAC output stage is required")
	}
	if src == nil {
		return nil, errors.New("nipkow: frame source is required")
	}

	o := Opts{PhaseOffset: DefaultPhaseOffset}
	if opts != nil {
		o = *opts
	}
	o.setDefaults()
	if err := o.validate(); err != nil {
		return nil, err
	}

	if err := pulse.In(gpio.PullNoChange, gpio.RisingEdge); err != nil {
		return nil, fmt.Errorf("nipkow: configuring sync pin: %w", err)
	}

	n := o.W * o.H
	d := &Dev{
		pulse:    pulse,
		dac:      dac,
		rect:     image.Rect(0, 0, o.W, o.H),
		n:        n,
		opts:     o,
		src:      src,
		fb:       newFrameBuffer(n * 3),
		timing:   newSyncState(n, o.MinPeriod, o.MaxPeriod, o.FPSAlpha),
		pb:       newPlayback(),
		staging:  image6.New(image.Rect(0, 0, o.W, o.H)),
		pulseCh:  make(chan struct{}, 1),
		refillCh: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	return d, nil
}

// Start launches the engine: the pulse watcher, the pixel clock and the
// frame loader. The output stays blank until the first plausible pulse
// arrives; the initial frame is loaded immediately so it can be swapped
// in at the first wraparound.
func (d *Dev) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errHalted
	}
	if d.started {
		return errors.New("nipkow: already started")
	}
	d.started = true

	d.wg.Add(3)
	go d.watchPulses()
	go d.runPixelClock()
	go d.runLoader()

	d.requestRefill()
	return nil
}

// Halt stops the engine and blanks the output. The device cannot be
// restarted after Halt.
func (d *Dev) Halt() error {
	d.mu.Lock()
	if d.halted {
		d.mu.Unlock()
		return nil
	}
	d.halted = true
	started := d.started
	d.mu.Unlock()

	d.closing.Store(true)
	close(d.done)
	if started {
		d.wg.Wait()
	}
	return d.dac.Blank()
}

func (d *Dev) isHalted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.halted
}

// Play starts (or resumes) frame advancement. Any latched storage error
// is cleared so playback can be retried.
func (d *Dev) Play() error {
	if d.isHalted() {
		return errHalted
	}
	d.pb.play()
	d.requestRefill()
	return nil
}

// Stop halts frame advancement while keeping the pixel clock and pulse
// timing running, so Play resumes without a resynchronization delay.
func (d *Dev) Stop() error {
	if d.isHalted() {
		return errHalted
	}
	d.pb.stop()
	return nil
}

// Next advances to the following frame, also while stopped or in image
// mode.
func (d *Dev) Next() error {
	if d.isHalted() {
		return errHalted
	}
	d.pb.next()
	d.requestRefill()
	return nil
}

// Seek selects frame k as the next frame to display.
func (d *Dev) Seek(k int) error {
	if d.isHalted() {
		return errHalted
	}
	if k < 0 {
		return fmt.Errorf("nipkow: negative frame index %d", k)
	}
	d.pb.seek(k)
	d.requestRefill()
	return nil
}

// SetMode switches between still-image and sequential-video display. The
// frame position is kept across switches.
func (d *Dev) SetMode(m Mode) error {
	if d.isHalted() {
		return errHalted
	}
	if m != ModeImage && m != ModeVideo {
		return fmt.Errorf("nipkow: unknown mode %d", m)
	}
	d.pb.setMode(m)
	d.requestRefill()
	return nil
}

// LastError returns the storage failure that halted frame advancement,
// if any. Play clears it.
func (d *Dev) LastError() error {
	return d.pb.err()
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image6.RGB6Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw renders an image for still display on the disk. It switches the
// controller to stopped image mode; the image becomes visible at the next
// pixel-index wraparound.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.isHalted() {
		return errHalted
	}
	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}

	d.stagingMu.Lock()
	draw.Draw(d.staging, dst, src, sp, draw.Src)
	d.stagingMu.Unlock()

	d.pb.stage()
	d.requestRefill()
	return nil
}

// Write displays raw pixel data, 3 bytes per pixel in disk scan order.
// The data must be exactly W*H*3 bytes. Channel values wider than the DAC
// resolution are clamped at the output stage.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.isHalted() {
		return 0, errHalted
	}
	if len(pixels) != d.n*3 {
		return 0, errors.New("nipkow: invalid buffer size")
	}

	d.stagingMu.Lock()
	copy(d.staging.Pix, pixels)
	d.stagingMu.Unlock()

	d.pb.stage()
	d.requestRefill()
	return len(pixels), nil
}

// Stats is a point-in-time snapshot of the engine's diagnostics.
type Stats struct {
	Synced      bool             // a plausible pulse arrived within the timeout window
	Period      time.Duration    // last valid revolution period
	PixelPeriod time.Duration    // derived per-pixel output period
	Rate        physic.Frequency // smoothed rotation rate
	FPS         float64          // smoothed revolutions per second
	PixelError  int              // accumulated emitted-minus-nominal pixel count
	Revolutions uint64           // valid revolutions measured
	Frames      uint64           // frames swapped into the active region
	Mode        Mode
	Playing     bool
	Frame       int // next frame the loader will fetch
}

// Stats returns current timing and playback diagnostics. Safe to call
// from any goroutine; purely observational.
func (d *Dev) Stats() Stats {
	mode, playing, frame := d.pb.snapshot()
	fps := d.timing.loadFPS()
	return Stats{
		Synced:      d.timing.isValid(),
		Period:      time.Duration(d.timing.period.Load()),
		PixelPeriod: d.timing.pixPeriod(),
		Rate:        physic.Frequency(fps * float64(physic.Hertz)),
		FPS:         fps,
		PixelError:  int(d.timing.pixErr.Load()),
		Revolutions: d.timing.revs.Load(),
		Frames:      d.frames.Load(),
		Mode:        mode,
		Playing:     playing,
		Frame:       frame,
	}
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("nipkow.Dev{%dx%d@%dpx}", d.rect.Dx(), d.rect.Dy(), d.n)
}
