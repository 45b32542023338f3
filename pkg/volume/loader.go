package volume

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"ctheadviewer/internal/models"
)

// BytesPerSample is the size of one stored sample.
const BytesPerSample = 2

// StreamSize returns the exact byte length of a raw stream for dims.
func StreamSize(dims models.Dims) int64 {
	return int64(dims.Len()) * BytesPerSample
}

// Load reads a raw volume of the given geometry from r. The stream holds
// W*H*D samples with width varying fastest and depth slowest; each sample is
// two bytes, low byte first. The stream must end exactly after the last
// sample.
func Load(r io.Reader, dims models.Dims) (*Dataset, error) {
	return load(r, dims, "")
}

func load(r io.Reader, dims models.Dims, path string) (*Dataset, error) {
	if err := dims.Validate(); err != nil {
		return nil, &LoadError{Op: "decode", Path: path, Err: err}
	}

	buf := make([]byte, StreamSize(dims))
	n, err := io.ReadFull(r, buf)
	switch {
	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		return nil, &LoadError{Op: "read", Path: path,
			Err: fmt.Errorf("%w: got %d of %d bytes", ErrShortStream, n, len(buf))}
	case err != nil:
		return nil, &LoadError{Op: "read", Path: path, Err: err}
	}

	var extra [1]byte
	if m, err := io.ReadFull(r, extra[:]); m > 0 {
		return nil, &LoadError{Op: "read", Path: path, Err: ErrTrailingData}
	} else if err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Op: "read", Path: path, Err: err}
	}

	samples := make([]int16, dims.Len())
	var min, max int16 = math.MaxInt16, math.MinInt16
	for i := range samples {
		// Low byte first: (b2 << 8) | b1 as two's complement.
		s := int16(binary.LittleEndian.Uint16(buf[i*BytesPerSample:]))
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
		samples[i] = s
	}

	return &Dataset{dims: dims, samples: samples, min: min, max: max}, nil
}

// LoadFile loads a raw volume from path. Files ending in .gz, .zst or .sz are
// decompressed first; the decompressed bytes must still be the raw grid.
func LoadFile(path string, dims models.Dims) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	r, closer, err := decompressor(f, path)
	if err != nil {
		return nil, &LoadError{Op: "open", Path: path, Err: err}
	}
	if closer != nil {
		defer closer()
	}

	return load(bufio.NewReaderSize(r, 1<<20), dims, path)
}

// decompressor wraps f according to the file extension.
func decompressor(f io.Reader, path string) (io.Reader, func(), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip header: %w", err)
		}
		return zr, func() { zr.Close() }, nil
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd header: %w", err)
		}
		return zr, zr.Close, nil
	case ".sz", ".snappy":
		return snappy.NewReader(f), nil, nil
	default:
		return f, nil, nil
	}
}

// Write encodes ds as a raw stream readable by Load.
func Write(w io.Writer, ds *Dataset) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, ds.samples); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	return bw.Flush()
}

// WriteFile writes ds to path, compressing it when the extension asks for it.
func WriteFile(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.WriteCloser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		w = gzip.NewWriter(f)
	case ".zst", ".zstd":
		zw, err := zstd.NewWriter(f)
		if err != nil {
			return err
		}
		w = zw
	case ".sz", ".snappy":
		w = snappy.NewBufferedWriter(f)
	}

	if w == nil {
		if err := Write(f, ds); err != nil {
			return err
		}
		return f.Close()
	}

	if err := Write(w, ds); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish compressed stream: %w", err)
	}
	return f.Close()
}
