package nipkow

import (
	"math"
	"testing"
	"time"
)

func TestSyncStateFirstPulseUnusable(t *testing.T) {
	s := newSyncState(1024, 5*time.Millisecond, 500*time.Millisecond, 0.1)

	if _, ok := s.onPulse(time.Now(), 0); ok {
		t.Error("first pulse produced a period with no prior reference")
	}
	if s.isValid() {
		t.Error("timing valid after a single pulse")
	}
}

func TestSyncStateSteadyRotation(t *testing.T) {
	// Pulses at a steady 33ms, 1024 pixels per revolution: per-pixel
	// period ~32.2us, fps converging to ~30.3.
	const n = 1024
	s := newSyncState(n, 5*time.Millisecond, 500*time.Millisecond, 0.1)

	now := time.Unix(0, 0)
	var per time.Duration
	var ok bool
	for i := 0; i < 101; i++ {
		per, ok = s.onPulse(now, n)
		now = now.Add(33 * time.Millisecond)
	}
	if !ok {
		t.Fatal("steady pulse rejected")
	}
	if !s.isValid() {
		t.Fatal("timing not valid under steady rotation")
	}

	wantPer := 33 * time.Millisecond / n
	if diff := per - wantPer; diff < -time.Microsecond || diff > time.Microsecond {
		t.Errorf("per-pixel period = %v, want ~%v", per, wantPer)
	}

	if fps := s.loadFPS(); math.Abs(fps-30.303) > 0.1 {
		t.Errorf("fps = %f, want ~30.303", fps)
	}
	if errs := s.pixErr.Load(); errs != 0 {
		t.Errorf("pixel error = %d after exact emission counts, want 0", errs)
	}
	if revs := s.revs.Load(); revs != 100 {
		t.Errorf("revolutions = %d, want 100", revs)
	}
}

func TestSyncStateRejectsImplausiblePeriods(t *testing.T) {
	s := newSyncState(1024, 5*time.Millisecond, 500*time.Millisecond, 0.1)

	now := time.Unix(0, 0)
	s.onPulse(now, 0)

	tests := []struct {
		name  string
		delta time.Duration
	}{
		{"noise double-pulse", time.Millisecond},
		{"near zero", time.Nanosecond},
		{"stalled disk", 2 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = now.Add(tt.delta)
			if _, ok := s.onPulse(now, 1024); ok {
				t.Errorf("period %v accepted, want rejected", tt.delta)
			}
		})
	}

	// A plausible period afterwards recovers.
	now = now.Add(33 * time.Millisecond)
	if _, ok := s.onPulse(now, 0); !ok {
		t.Error("plausible period after noise rejected")
	}
}

func TestSyncStateMarkStale(t *testing.T) {
	s := newSyncState(1024, 5*time.Millisecond, 500*time.Millisecond, 0.1)

	now := time.Unix(0, 0)
	s.onPulse(now, 0)
	s.onPulse(now.Add(33*time.Millisecond), 0)
	if !s.isValid() {
		t.Fatal("timing not valid after two plausible pulses")
	}

	s.markStale()
	if s.isValid() {
		t.Error("timing still valid after markStale")
	}
}

func TestSyncStateDriftCorrection(t *testing.T) {
	// The clock overran by 4 pixels: the next revolution must run slower
	// (larger per-pixel period) so the error does not accumulate.
	const n = 1024
	p := 33 * time.Millisecond
	s := newSyncState(n, 5*time.Millisecond, 500*time.Millisecond, 0.1)

	now := time.Unix(0, 0)
	s.onPulse(now, 0)
	now = now.Add(p)
	nominal, _ := s.onPulse(now, n)

	now = now.Add(p)
	slower, ok := s.onPulse(now, n+4)
	if !ok {
		t.Fatal("pulse rejected")
	}
	if slower <= nominal {
		t.Errorf("overrun correction: per = %v, want > %v", slower, nominal)
	}
	if got := s.pixErr.Load(); got != 4 {
		t.Errorf("pixel error = %d, want 4", got)
	}
	if want := time.Duration(int64(p) / (n - 4)); slower != want {
		t.Errorf("per = %v, want %v", slower, want)
	}

	// An equal shortfall cancels the carried residual.
	now = now.Add(p)
	recovered, _ := s.onPulse(now, n-4)
	if got := s.pixErr.Load(); got != 0 {
		t.Errorf("pixel error = %d after compensating revolution, want 0", got)
	}
	if want := time.Duration(int64(p) / n); recovered != want {
		t.Errorf("per = %v after recovery, want %v", recovered, want)
	}
}

func TestSyncStateDriftErrorBounded(t *testing.T) {
	// A persistently wrong emission count must clamp, not grow without
	// bound or push the per-pixel period outside a sane range.
	const n = 1024
	s := newSyncState(n, 5*time.Millisecond, 500*time.Millisecond, 0.1)

	now := time.Unix(0, 0)
	s.onPulse(now, 0)
	var per time.Duration
	for i := 0; i < 50; i++ {
		now = now.Add(33 * time.Millisecond)
		per, _ = s.onPulse(now, n+100)
	}

	maxErr := int64(n / maxErrDivisor)
	if got := s.pixErr.Load(); got != maxErr {
		t.Errorf("pixel error = %d, want clamped at %d", got, maxErr)
	}
	want := time.Duration(int64(33*time.Millisecond) / (n - maxErr))
	if per != want {
		t.Errorf("per = %v, want %v", per, want)
	}

	// Same on the underrun side.
	for i := 0; i < 50; i++ {
		now = now.Add(33 * time.Millisecond)
		per, _ = s.onPulse(now, n-100)
	}
	if got := s.pixErr.Load(); got != -maxErr {
		t.Errorf("pixel error = %d, want clamped at %d", got, -maxErr)
	}
}

func TestSyncStateFPSSmoothing(t *testing.T) {
	const n = 1024
	s := newSyncState(n, 5*time.Millisecond, 500*time.Millisecond, 0.1)

	// Establish 33ms rotation, then slow to 66ms: the estimate must move
	// toward the new rate gradually, not jump.
	now := time.Unix(0, 0)
	s.onPulse(now, 0)
	now = now.Add(33 * time.Millisecond)
	s.onPulse(now, n)
	initial := s.loadFPS()

	now = now.Add(66 * time.Millisecond)
	s.onPulse(now, n)
	after := s.loadFPS()

	slow := float64(time.Second) / float64(66*time.Millisecond)
	if after >= initial {
		t.Errorf("fps did not decrease: %f -> %f", initial, after)
	}
	if after <= slow {
		t.Errorf("fps jumped straight to the new rate: %f <= %f", after, slow)
	}

	// Keep rotating slowly; the estimate converges.
	for i := 0; i < 200; i++ {
		now = now.Add(66 * time.Millisecond)
		s.onPulse(now, n)
	}
	if got := s.loadFPS(); math.Abs(got-slow) > 0.1 {
		t.Errorf("fps = %f after convergence, want ~%f", got, slow)
	}
}
