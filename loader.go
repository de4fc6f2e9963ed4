package nipkow

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// FrameSource supplies fixed-size frame records from block storage. A
// record is PixelsPerRev*3 bytes: three channel bytes per pixel in disk
// scan order. Implementations are only called from the loader goroutine
// and need not be safe for concurrent use.
type FrameSource interface {
	// SeekFrame positions the source at frame index k. Seeking past the
	// last frame returns io.EOF.
	SeekFrame(k int) error
	// ReadFrame fills dst with the next frame record, exactly len(dst)
	// bytes, and advances to the following record. A short read is an
	// error; dst contents are then undefined but are never displayed.
	ReadFrame(dst []byte) error
	// Frames returns the number of frames available, or -1 if unknown.
	Frames() int
}

// FileSource reads frame records packed back to back in a single file,
// typically on a mounted SD card.
type FileSource struct {
	f        *os.File
	frameLen int
	frames   int
}

// NewFileSource opens path and treats it as a sequence of frameLen-byte
// records. A trailing partial record is ignored.
func NewFileSource(path string, frameLen int) (*FileSource, error) {
	if frameLen <= 0 {
		return nil, fmt.Errorf("nipkow: invalid frame length %d", frameLen)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nipkow: open frame source: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("nipkow: stat frame source: %w", err)
	}
	frames := int(fi.Size() / int64(frameLen))
	if frames == 0 {
		f.Close()
		return nil, fmt.Errorf("nipkow: %s holds no complete frame", path)
	}
	return &FileSource{f: f, frameLen: frameLen, frames: frames}, nil
}

// Frames returns the number of complete frame records in the file.
func (s *FileSource) Frames() int {
	return s.frames
}

// SeekFrame positions the source at frame index k.
func (s *FileSource) SeekFrame(k int) error {
	if k < 0 {
		return fmt.Errorf("nipkow: negative frame index %d", k)
	}
	if k >= s.frames {
		return io.EOF
	}
	if _, err := s.f.Seek(int64(k)*int64(s.frameLen), io.SeekStart); err != nil {
		return fmt.Errorf("nipkow: seek frame %d: %w", k, err)
	}
	return nil
}

// ReadFrame fills dst with the record at the current position.
func (s *FileSource) ReadFrame(dst []byte) error {
	if len(dst) != s.frameLen {
		return fmt.Errorf("nipkow: frame buffer is %d bytes, want %d", len(dst), s.frameLen)
	}
	switch _, err := io.ReadFull(s.f, dst); err {
	case nil:
		return nil
	case io.EOF:
		return io.EOF
	default:
		return fmt.Errorf("nipkow: frame read: %w", err)
	}
}

// Close releases the underlying file.
func (s *FileSource) Close() error {
	return s.f.Close()
}

// runLoader services refill requests outside the emission path. It is the
// only writer of the standby region and the only place storage I/O
// happens; emission continues from the active region while a load is in
// flight.
func (d *Dev) runLoader() {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case <-d.refillCh:
			d.loadNext()
		}
	}
}

// loadNext performs at most one standby fill. The write goes through
// claim, which revokes any still-pending previous fill first: a swap can
// then not land while the write is in flight. The ready flag is only set
// after a complete, error-free fill, so a partial write can never be
// swapped in.
func (d *Dev) loadNext() {
	req, ok := d.pb.nextLoad()
	if !ok {
		return
	}
	dst := d.fb.claim()

	if req.staged {
		d.stagingMu.Lock()
		copy(dst, d.staging.Pix)
		d.stagingMu.Unlock()
		d.fb.markReady()
		return
	}

	err := d.readFrame(req.frame, dst)
	if err != nil && errors.Is(err, io.EOF) && d.opts.Loop {
		if k, ok := d.pb.rewind(); ok {
			err = d.readFrame(k, dst)
		}
	}
	if err != nil {
		// Hold the last good frame: the active region is untouched and
		// the partial standby fill is never marked ready.
		d.pb.recordError(err)
		return
	}
	d.fb.markReady()
}

func (d *Dev) readFrame(k int, dst []byte) error {
	if err := d.src.SeekFrame(k); err != nil {
		return err
	}
	return d.src.ReadFrame(dst)
}
