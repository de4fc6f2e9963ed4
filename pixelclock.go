package nipkow

import "time"

// parkedPeriod keeps the pixel ticker effectively dormant until the first
// valid pulse re-arms it.
const parkedPeriod = time.Hour

// watchPulses blocks on the rotation-sync pin and re-times the pixel
// clock once per revolution. Highest-priority event source: it does no
// storage I/O and no blocking work beyond the edge wait itself.
func (d *Dev) watchPulses() {
	defer d.wg.Done()
	for {
		edge := d.pulse.WaitForEdge(d.opts.PulseTimeout)
		if d.closing.Load() {
			return
		}
		if !edge {
			// No pulse within the expected window: disk stopped or
			// sensor fault. The pixel clock must not keep emitting on a
			// stale period.
			d.timing.markStale()
			d.notifyClock()
			continue
		}
		now := time.Now()
		emitted := int(d.emitted.Swap(0))
		if _, ok := d.timing.onPulse(now, emitted); ok {
			d.notifyClock()
		}
	}
}

// notifyClock nudges the pixel clock without blocking; one pending
// notification is enough.
func (d *Dev) notifyClock() {
	select {
	case d.pulseCh <- struct{}{}:
	default:
	}
}

// requestRefill asks the loader for a standby fill without blocking.
func (d *Dev) requestRefill() {
	select {
	case d.refillCh <- struct{}{}:
	default:
	}
}

// runPixelClock owns pixel emission. A single ticker is re-armed with the
// newly derived per-pixel period once per revolution; each tick emits one
// pixel from the active region. Pixel-index wraparound is the buffer-swap
// fence. Nothing on this path allocates or waits on a lock.
func (d *Dev) runPixelClock() {
	defer d.wg.Done()

	ticker := time.NewTicker(parkedPeriod)
	defer ticker.Stop()

	var (
		idx        int           // current pixel index into the active region
		per        time.Duration // period the ticker is currently armed with
		phase      int           // phase-offset ticks left before frame start realigns
		phaseArmed bool
	)
	blanked := true
	_ = d.dac.Blank()

	for {
		select {
		case <-d.done:
			_ = d.dac.Blank()
			return

		case <-d.pulseCh:
			if !d.timing.isValid() {
				blanked = d.blankOnce(blanked)
				continue
			}
			if np := d.timing.pixPeriod(); np > 0 && np != per {
				per = np
				ticker.Reset(per)
			}
			// Start the countdown that realigns frame start with the
			// disk's visual reference mark.
			if d.opts.PhaseOffset == 0 {
				idx = 0
				phaseArmed = false
			} else {
				phase = d.opts.PhaseOffset
				phaseArmed = true
			}

		case <-ticker.C:
			if !d.timing.isValid() {
				blanked = d.blankOnce(blanked)
				continue
			}
			if phaseArmed {
				phase--
				if phase == 0 {
					phaseArmed = false
					idx = 0
				}
			}

			off := idx * 3
			active := d.fb.activeRegion()
			_ = d.dac.WritePixel(active[off], active[off+1], active[off+2])
			blanked = false
			d.emitted.Add(1)

			idx++
			if idx >= d.n {
				idx = 0
				if d.fb.trySwap() {
					d.frames.Add(1)
					d.requestRefill()
				}
			}
		}
	}
}

// blankOnce turns the light source off if it isn't already.
func (d *Dev) blankOnce(blanked bool) bool {
	if !blanked {
		_ = d.dac.Blank()
	}
	return true
}
