package volume

import (
	"errors"
	"fmt"
)

var (
	// ErrShortStream means the input ended before every sample was read.
	ErrShortStream = errors.New("stream shorter than volume")

	// ErrTrailingData means the input holds more bytes than the volume needs.
	ErrTrailingData = errors.New("stream longer than volume")
)

// LoadError reports a volume that could not be loaded. No dataset is
// returned alongside it.
type LoadError struct {
	Op   string // "open", "read" or "decode"
	Path string // empty for plain streams
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load volume: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("load volume %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DegenerateRangeError reports a volume whose samples all share one value,
// so intensities cannot be normalised.
type DegenerateRangeError struct {
	Value int16
}

func (e *DegenerateRangeError) Error() string {
	return fmt.Sprintf("degenerate intensity range: every sample equals %d", e.Value)
}
