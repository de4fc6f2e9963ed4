package nipkow

import "sync"

// Mode selects what the playback controller feeds the frame loader.
type Mode uint8

const (
	// ModeImage displays a single frame indefinitely.
	ModeImage Mode = iota
	// ModeVideo advances through frames sequentially while playing,
	// one frame per disk revolution.
	ModeVideo
)

func (m Mode) String() string {
	switch m {
	case ModeImage:
		return "image"
	case ModeVideo:
		return "video"
	default:
		return "unknown"
	}
}

// loadRequest is what the playback controller hands the frame loader.
type loadRequest struct {
	frame  int
	staged bool // copy the staged Draw/Write image instead of reading storage
}

// playback tracks transport state: {Stopped, Playing} x {Image, Video}.
// Mutated by the control surface (buttons, command interface), consumed
// by the frame loader. Never touched from the emission path. Transitions
// are driven by external events only; there are no autonomous ones.
type playback struct {
	mu      sync.Mutex
	mode    Mode
	playing bool
	frame   int   // frame the loader fetches next
	dirty   bool  // a one-shot load is due (selection, seek, mode switch)
	staged  bool  // a Draw()n image is waiting in the staging buffer
	lastErr error // latched storage failure; cleared by Play
}

func newPlayback() *playback {
	// The initial frame is loaded once at startup, like a freshly
	// selected still image.
	return &playback{mode: ModeImage, dirty: true}
}

// nextLoad returns the loader's next piece of work, if any. In video mode
// while playing it advances the frame index; a latched storage error
// suppresses advancement so the last good frame keeps displaying.
func (p *playback) nextLoad() (loadRequest, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.staged {
		p.staged = false
		return loadRequest{staged: true}, true
	}
	if p.dirty {
		p.dirty = false
		f := p.frame
		// While playing video the one-shot load takes the place of this
		// revolution's advance, so the sequence continues past it instead
		// of fetching the same index twice.
		if p.mode == ModeVideo && p.playing && p.lastErr == nil {
			p.frame++
		}
		return loadRequest{frame: f}, true
	}
	if p.mode == ModeVideo && p.playing && p.lastErr == nil {
		f := p.frame
		p.frame++
		return loadRequest{frame: f}, true
	}
	return loadRequest{}, false
}

// rewind restarts video playback at frame 0. Used by the loader when it
// hits end of data and looping is enabled. Returns false when not in a
// playing-video state.
func (p *playback) rewind() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != ModeVideo || !p.playing {
		return 0, false
	}
	p.frame = 1
	return 0, true
}

// recordError latches a storage failure and halts frame advancement.
func (p *playback) recordError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
	p.playing = false
}

func (p *playback) err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// play enters the playing state and clears any latched storage error so
// playback can be retried.
func (p *playback) play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
	p.lastErr = nil
}

// stop suppresses frame advancement. The pixel clock and pulse timer keep
// running so re-entering play resumes without a resynchronization delay.
func (p *playback) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

// next advances to the following frame and schedules a one-shot load so
// the change is visible even while stopped or in image mode.
func (p *playback) next() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frame++
	p.dirty = true
}

// seek selects frame k and schedules a one-shot load.
func (p *playback) seek(k int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frame = k
	p.dirty = true
}

// setMode switches between still-image and video display. The frame
// position is kept, so switching to image mode and back resumes the
// sequence where it left off. Entering image mode schedules a one-shot
// load of the current frame.
func (p *playback) setMode(m Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == m {
		return
	}
	p.mode = m
	if m == ModeImage {
		p.dirty = true
	}
}

// stage marks the staging buffer as holding an externally drawn image and
// switches to stopped still-image display of it.
func (p *playback) stage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = ModeImage
	p.playing = false
	p.staged = true
	p.dirty = false
}

// snapshot returns the externally visible transport state.
func (p *playback) snapshot() (Mode, bool, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode, p.playing, p.frame
}
