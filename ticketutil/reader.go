package ticketutil

import (
	"errors"
	"io"
)

// ErrLimitExceeded is returned when the input is longer than the Reader limit.
var ErrLimitExceeded = errors.New("ticketutil: input exceeds limit")

// Reader wraps another Reader to track the offset and bound the amount of data read.
type Reader struct {
	inner  io.Reader
	offset int64
	limit  int64
	err    error
}

var _ io.Reader = &Reader{}

// NewReader wraps the given Reader so that reading more than limit bytes fails with
// ErrLimitExceeded instead of being truncated silently.
func NewReader(inner io.Reader, limit int64) *Reader {
	return &Reader{
		inner:  inner,
		offset: 0,
		limit:  limit,
		err:    nil,
	}
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}

	if r.offset >= r.limit {
		// Probe one byte to tell EOF from an overflow.
		var probe [1]byte
		n, err := r.inner.Read(probe[:])
		if n > 0 {
			r.err = ErrLimitExceeded
		} else {
			r.err = err
		}
		return 0, r.err
	}

	if remaining := r.limit - r.offset; int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err := r.inner.Read(p)
	r.offset += int64(n)
	r.err = err
	return n, err
}

// Offset of the next byte to be read.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Err that has been returned by the last Read.
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads the whole input, failing with ErrLimitExceeded past limit bytes.
func ReadAll(input io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(NewReader(input, limit))
}
