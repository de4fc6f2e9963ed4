package nipkow

import (
	"errors"
	"testing"
)

// drain collects the frame indices the loader would fetch until the
// controller runs out of work, with a safety cap.
func drain(p *playback, limit int) []int {
	var got []int
	for i := 0; i < limit; i++ {
		req, ok := p.nextLoad()
		if !ok {
			break
		}
		if !req.staged {
			got = append(got, req.frame)
		}
	}
	return got
}

func TestPlaybackInitialLoad(t *testing.T) {
	p := newPlayback()

	mode, playing, frame := p.snapshot()
	if mode != ModeImage || playing || frame != 0 {
		t.Fatalf("fresh controller = (%v, %v, %d), want (image, stopped, 0)", mode, playing, frame)
	}

	// Exactly one startup load of frame 0, then idle.
	if got := drain(p, 10); len(got) != 1 || got[0] != 0 {
		t.Errorf("initial loads = %v, want [0]", got)
	}
}

func TestPlaybackVideoAdvancesWhilePlaying(t *testing.T) {
	p := newPlayback()
	drain(p, 10)

	p.setMode(ModeVideo)
	p.play()

	if got := drain(p, 4); len(got) != 4 || got[0] != 0 || got[3] != 3 {
		t.Errorf("playing video loads = %v, want [0 1 2 3]", got)
	}

	p.stop()
	if _, ok := p.nextLoad(); ok {
		t.Error("stopped video still advancing")
	}

	// Re-entering play resumes where it left off.
	p.play()
	if got := drain(p, 1); len(got) != 1 || got[0] != 4 {
		t.Errorf("resumed load = %v, want [4]", got)
	}
}

func TestPlaybackImageModeHolds(t *testing.T) {
	p := newPlayback()
	drain(p, 10)

	p.play()
	// Playing in image mode never advances on its own.
	if _, ok := p.nextLoad(); ok {
		t.Error("image mode advanced without an external event")
	}

	p.next()
	if got := drain(p, 10); len(got) != 1 || got[0] != 1 {
		t.Errorf("after next(), loads = %v, want [1]", got)
	}

	p.seek(42)
	if got := drain(p, 10); len(got) != 1 || got[0] != 42 {
		t.Errorf("after seek(42), loads = %v, want [42]", got)
	}
}

func TestPlaybackSeekWhilePlayingDoesNotRepeat(t *testing.T) {
	p := newPlayback()
	drain(p, 10)
	p.setMode(ModeVideo)
	p.play()
	drain(p, 2) // frames 0 and 1

	// The one-shot load of the seek target counts as this revolution's
	// advance; the target frame must not be fetched twice.
	p.seek(10)
	if got := drain(p, 3); len(got) != 3 || got[0] != 10 || got[1] != 11 || got[2] != 12 {
		t.Errorf("loads after seek = %v, want [10 11 12]", got)
	}

	p.next()
	if got := drain(p, 2); len(got) != 2 || got[0] != 14 || got[1] != 15 {
		t.Errorf("loads after next = %v, want [14 15]", got)
	}
}

func TestPlaybackModeSwitchIdempotent(t *testing.T) {
	// Switching to image mode and back at the same frame index reproduces
	// the same sequence as if no switch occurred.
	run := func(interrupt bool) []int {
		p := newPlayback()
		drain(p, 10)
		p.setMode(ModeVideo)
		p.play()

		var got []int
		for len(got) < 6 {
			if interrupt && len(got) == 3 {
				p.setMode(ModeImage)
				// The held still is the frame the sequence would show
				// next; discard its one-shot load from the comparison.
				if req, ok := p.nextLoad(); !ok || req.frame != got[len(got)-1]+1 {
					t.Fatalf("held still = %v, want frame %d", req, got[len(got)-1]+1)
				}
				p.setMode(ModeVideo)
			}
			req, ok := p.nextLoad()
			if !ok {
				t.Fatal("video stopped advancing")
			}
			got = append(got, req.frame)
		}
		return got
	}

	plain := run(false)
	switched := run(true)
	for i := range plain {
		if plain[i] != switched[i] {
			t.Fatalf("sequence diverged at %d: %v vs %v", i, plain, switched)
		}
	}
}

func TestPlaybackErrorHaltsAdvancement(t *testing.T) {
	p := newPlayback()
	drain(p, 10)
	p.setMode(ModeVideo)
	p.play()
	drain(p, 3)

	readErr := errors.New("boom")
	p.recordError(readErr)

	if _, ok := p.nextLoad(); ok {
		t.Error("controller kept advancing after a storage failure")
	}
	if _, playing, _ := p.snapshot(); playing {
		t.Error("still in playing state after a storage failure")
	}
	if got := p.err(); !errors.Is(got, readErr) {
		t.Errorf("err() = %v, want %v", got, readErr)
	}

	// Play clears the latched error and retries.
	p.play()
	if got := p.err(); got != nil {
		t.Errorf("err() = %v after play, want nil", got)
	}
	if _, ok := p.nextLoad(); !ok {
		t.Error("controller did not resume after play")
	}
}

func TestPlaybackRewind(t *testing.T) {
	p := newPlayback()
	drain(p, 10)

	if _, ok := p.rewind(); ok {
		t.Error("rewind succeeded while stopped in image mode")
	}

	p.setMode(ModeVideo)
	p.play()
	drain(p, 5)

	k, ok := p.rewind()
	if !ok || k != 0 {
		t.Fatalf("rewind() = (%d, %v), want (0, true)", k, ok)
	}
	if got := drain(p, 2); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("loads after rewind = %v, want [1 2]", got)
	}
}

func TestPlaybackStage(t *testing.T) {
	p := newPlayback()
	drain(p, 10)
	p.setMode(ModeVideo)
	p.play()

	p.stage()

	req, ok := p.nextLoad()
	if !ok || !req.staged {
		t.Fatalf("nextLoad() = (%v, %v), want staged request", req, ok)
	}
	mode, playing, _ := p.snapshot()
	if mode != ModeImage || playing {
		t.Errorf("after stage, state = (%v, %v), want (image, stopped)", mode, playing)
	}
	if _, ok := p.nextLoad(); ok {
		t.Error("staged image loaded more than once")
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeImage, "image"},
		{ModeVideo, "video"},
		{Mode(7), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
