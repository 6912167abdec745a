// Package source opens MARC input. Compressed input is recognized by its
// magic bytes, so compressed data works on stdin as well as in files.
package source

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ulikunitz/xz"
)

// Stdin is the input name that selects standard input.
const Stdin = "-"

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// ErrNotFound is returned when the input file does not exist.
var ErrNotFound = errors.New("file not found")

type reader struct {
	io.Reader
	closers []io.Closer
}

func (r *reader) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open opens path for reading, or stdin when path is Stdin. Gzip and xz
// input is decompressed transparently.
func Open(path string) (io.ReadCloser, error) {
	var f io.ReadCloser
	if path == Stdin {
		f = io.NopCloser(os.Stdin)
	} else {
		file, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		f = file
	}
	r, err := newReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closers = append([]io.Closer{f}, r.closers...)
	return r, nil
}

// NewReader wraps r, decompressing it when it starts with a gzip or xz
// header. Closing the result does not close r.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	rd, err := newReader(r)
	if err != nil {
		return nil, err
	}
	return rd, nil
}

func newReader(r io.Reader) (*reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(xzMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read input: %w", err)
	}
	switch {
	case bytes.HasPrefix(head, xzMagic):
		xzr, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		return &reader{Reader: xzr}, nil
	case bytes.HasPrefix(head, gzipMagic):
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return &reader{Reader: gzr, closers: []io.Closer{gzr}}, nil
	}
	return &reader{Reader: br}, nil
}
