package filekit

import (
	"fmt"
	"io"
)

// SizeLimitReader counts bytes read and fails once more than Limit bytes
// have passed. A Limit of zero or less disables the check.
type SizeLimitReader struct {
	R     io.Reader
	Limit int64
	N     int64
}

func (l *SizeLimitReader) Read(p []byte) (n int, err error) {
	n, err = l.R.Read(p)
	l.N += int64(n)
	if l.Limit > 0 && l.N > l.Limit {
		return n, fmt.Errorf("%w: exceeds limit of %d bytes", ErrTooLarge, l.Limit)
	}
	return n, err
}
