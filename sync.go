package nipkow

import (
	"math"
	"sync/atomic"
	"time"
)

// maxErrDivisor bounds the drift correction: the corrected per-pixel
// period never moves by more than 1/8 of nominal in a single revolution.
const maxErrDivisor = 8

// syncState carries the rotation timing shared between the pulse watcher,
// the pixel clock and diagnostics. The pulse watcher is the only writer;
// everything crossing goroutines is accessed atomically.
type syncState struct {
	pixelsPerRev int
	minPeriod    time.Duration
	maxPeriod    time.Duration
	fpsAlpha     float64

	valid       atomic.Bool   // a plausible pulse arrived within the expected window
	period      atomic.Int64  // last valid revolution period, ns
	pixelPeriod atomic.Int64  // derived per-pixel output period, ns
	fps         atomic.Uint64 // float64 bits, low-passed revolutions per second
	pixErr      atomic.Int64  // signed accumulator: emitted minus nominal pixels per revolution
	revs        atomic.Uint64 // valid revolutions measured

	lastPulse time.Time // pulse watcher only
}

func newSyncState(pixelsPerRev int, minPeriod, maxPeriod time.Duration, fpsAlpha float64) *syncState {
	return &syncState{
		pixelsPerRev: pixelsPerRev,
		minPeriod:    minPeriod,
		maxPeriod:    maxPeriod,
		fpsAlpha:     fpsAlpha,
	}
}

// onPulse folds one rotation-sync pulse into the timing state. emitted is
// the number of pixels the clock produced since the previous pulse; pass
// 0 when unknown. Returns the per-pixel period for the next revolution
// and whether the measurement was usable. Implausible periods (sensor
// noise, stalled disk) are rejected and never reach the pixel timing.
// Runs on the pulse path: no I/O, no allocation.
func (s *syncState) onPulse(now time.Time, emitted int) (time.Duration, bool) {
	last := s.lastPulse
	s.lastPulse = now
	if last.IsZero() {
		return 0, false
	}

	p := now.Sub(last)
	if p < s.minPeriod || p > s.maxPeriod {
		return 0, false
	}

	// Low-pass the revolution rate for diagnostics.
	inst := float64(time.Second) / float64(p)
	fps := s.loadFPS()
	if fps == 0 {
		fps = inst
	} else {
		fps += (inst - fps) * s.fpsAlpha
	}
	s.storeFPS(fps)

	// Fold the emission count into the drift accumulator. A revolution
	// that emitted too many pixels leaves a positive error, which slows
	// the next revolution's clock; a shortfall speeds it up. The residual
	// is carried forward, not dropped.
	if emitted > 0 {
		s.pixErr.Add(int64(emitted - s.pixelsPerRev))
	}
	errNow := s.pixErr.Load()
	maxErr := int64(s.pixelsPerRev / maxErrDivisor)
	if errNow > maxErr {
		errNow = maxErr
		s.pixErr.Store(errNow)
	} else if errNow < -maxErr {
		errNow = -maxErr
		s.pixErr.Store(errNow)
	}

	per := time.Duration(int64(p) / (int64(s.pixelsPerRev) - errNow))
	s.period.Store(int64(p))
	s.pixelPeriod.Store(int64(per))
	s.valid.Store(true)
	s.revs.Add(1)
	return per, true
}

// markStale flags the timing as unusable; the pixel clock idles blank
// until a valid pulse resumes.
func (s *syncState) markStale() {
	s.valid.Store(false)
}

func (s *syncState) isValid() bool {
	return s.valid.Load()
}

func (s *syncState) pixPeriod() time.Duration {
	return time.Duration(s.pixelPeriod.Load())
}

func (s *syncState) loadFPS() float64 {
	return math.Float64frombits(s.fps.Load())
}

func (s *syncState) storeFPS(v float64) {
	s.fps.Store(math.Float64bits(v))
}
