package ffmpeg

import "io"

// RepeatReader yields the same buffer count times, then io.EOF.
type RepeatReader struct {
	buf       []byte
	remaining int
	offset    int
}

// NewRepeatReader returns a reader over count copies of buf.
func NewRepeatReader(buf []byte, count int) *RepeatReader {
	if len(buf) == 0 || count < 0 {
		count = 0
	}
	return &RepeatReader{buf: buf, remaining: count}
}

func (r *RepeatReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if r.remaining == 0 {
			break
		}
		copied := copy(p[n:], r.buf[r.offset:])
		n += copied
		r.offset += copied
		if r.offset == len(r.buf) {
			r.offset = 0
			r.remaining--
		}
	}
	if n == 0 && r.remaining == 0 {
		return 0, io.EOF
	}
	return n, nil
}
