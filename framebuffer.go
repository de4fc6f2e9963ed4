package nipkow

import "sync/atomic"

// stateReady flags a completed standby fill; bit 0 of the state word is
// the active region index.
const stateReady = 0b10

// frameBuffer is a double buffer of two frame-sized byte regions. The
// pixel clock reads the active region; the frame loader writes the
// standby region. The two views are always disjoint and roles swap only
// at pixel-index wraparound, and only once the loader has marked the
// standby fill complete.
//
// Role index and ready flag live in one atomic word so a swap is a single
// transition: a fill the loader has claimed can never be swapped in, and a
// completed fill can never be overwritten mid-swap.
type frameBuffer struct {
	regions [2][]byte
	state   atomic.Uint32
}

func newFrameBuffer(frameLen int) *frameBuffer {
	b := &frameBuffer{}
	b.regions[0] = make([]byte, frameLen)
	b.regions[1] = make([]byte, frameLen)
	return b
}

// activeRegion returns the region currently serving pixel emission.
// Read-only to the output path.
func (b *frameBuffer) activeRegion() []byte {
	return b.regions[b.state.Load()&1]
}

// standbyRegion returns the region not serving emission. Writers obtain
// it through claim instead.
func (b *frameBuffer) standbyRegion() []byte {
	return b.regions[(b.state.Load()&1)^1]
}

// claim revokes any pending (completed but not yet swapped) fill and
// returns the standby region for writing. Once claimed, no swap can occur
// until markReady, so the loader never races a role flip mid-write.
func (b *frameBuffer) claim() []byte {
	for {
		s := b.state.Load()
		if s&stateReady == 0 || b.state.CompareAndSwap(s, s&^stateReady) {
			return b.regions[(s&1)^1]
		}
	}
}

// markReady flags the standby region as completely written. Called by the
// loader once a claimed fill has finished without error; a partial write
// never sets it.
func (b *frameBuffer) markReady() {
	for {
		s := b.state.Load()
		if b.state.CompareAndSwap(s, s|stateReady) {
			return
		}
	}
}

// pending reports whether a completed standby fill is waiting to be
// swapped in.
func (b *frameBuffer) pending() bool {
	return b.state.Load()&stateReady != 0
}

// trySwap exchanges the region roles if the standby fill has completed
// and reports whether it did. Called by the pixel clock at wraparound; if
// the loader has not finished, the previous active region is re-read for
// one more revolution instead of swapping into a partial write.
func (b *frameBuffer) trySwap() bool {
	for {
		s := b.state.Load()
		if s&stateReady == 0 {
			return false
		}
		if b.state.CompareAndSwap(s, (s^1)&^stateReady) {
			return true
		}
	}
}
