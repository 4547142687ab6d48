package proto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Delimiter separates frames on the wire. Gateway messages are plain
// JSON objects with no length prefix; a frame ends where the next
// delimiter begins.
const Delimiter = "\r\n\r\n"

// Decoder extracts delimited frames from a growing byte buffer. Feed
// appends newly read bytes; Decode pops at most one complete frame.
//
// The search cursor only rewinds by len(Delimiter)-1 bytes past the
// last scanned position instead of restarting from the buffer head,
// so a long run of Feed/Decode calls on a single connection does
// O(total bytes) work rather than O(bytes^2): a delimiter split
// across two reads is still found because the rewind re-examines the
// trailing proper suffix that could be its prefix.
type Decoder struct {
	buf     []byte
	scanned int
}

// Feed appends newly read bytes to the decode buffer.
func (d *Decoder) Feed(data []byte) {
	d.buf = append(d.buf, data...)
}

// Decode pops the next complete frame, if one is buffered. The
// returned slice excludes the delimiter and is only valid until the
// next Feed or Decode call.
func (d *Decoder) Decode() (frame []byte, ok bool, err error) {
	start := d.scanned
	if start > len(d.buf) {
		start = len(d.buf)
	}

	idx := bytes.Index(d.buf[start:], []byte(Delimiter))
	if idx < 0 {
		lookback := len(Delimiter) - 1
		if newScanned := len(d.buf) - lookback; newScanned > d.scanned {
			d.scanned = newScanned
		}
		return nil, false, nil
	}

	frameEnd := start + idx
	frame = d.buf[:frameEnd:frameEnd]
	rest := d.buf[frameEnd+len(Delimiter):]

	buf := make([]byte, len(rest))
	copy(buf, rest)
	d.buf = buf
	d.scanned = 0

	return frame, true, nil
}

// Buffered reports how many bytes are waiting, undecoded, in the buffer.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Encode renders v as a delimited frame ready to write to the wire.
func Encode(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("proto: encode frame: %w", err)
	}
	return append(body, []byte(Delimiter)...), nil
}

// FrameReader pulls complete frames out of an io.Reader, buffering
// partial reads across calls.
type FrameReader struct {
	r       io.Reader
	dec     Decoder
	scratch []byte
}

// NewFrameReader wraps r for frame-at-a-time reads.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r, scratch: make([]byte, 4096)}
}

// ReadFrame blocks until a complete frame is available, or returns the
// error from the underlying reader (io.EOF when the peer closes
// cleanly between frames, io.ErrUnexpectedEOF when it closes partway
// through one).
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	for {
		frame, ok, err := fr.dec.Decode()
		if err != nil {
			return nil, err
		}
		if ok {
			return frame, nil
		}

		n, err := fr.r.Read(fr.scratch)
		if n > 0 {
			fr.dec.Feed(fr.scratch[:n])
		}
		if err != nil {
			if err == io.EOF && fr.dec.Buffered() > 0 {
				if n > 0 {
					continue // decode what arrived with EOF; the next Read reports EOF again
				}
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
}
