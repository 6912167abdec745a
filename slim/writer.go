package slim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mitlibraries/marcxml/marc"
)

// ErrClosed is returned when writing to a closed CollectionWriter.
var ErrClosed = errors.New("collection writer closed")

// CollectionWriter writes records into a single marc:collection document.
// The XML declaration and opening tag are written with the first record, or
// by Close when there were none, so an empty input still produces a
// well-formed document.
type CollectionWriter struct {
	w       io.Writer
	enc     Encoder
	buf     bytes.Buffer
	started bool
	closed  bool
	count   int
}

// NewCollectionWriter returns a CollectionWriter writing to w. Closing the
// CollectionWriter does not close w.
func NewCollectionWriter(w io.Writer, enc Encoder) *CollectionWriter {
	return &CollectionWriter{w: w, enc: enc}
}

// Write appends r to the collection.
func (c *CollectionWriter) Write(r marc.Record) error {
	if c.closed {
		return ErrClosed
	}
	c.buf.Reset()
	c.header()
	level := 1
	if c.enc.Compact {
		level = 0
	}
	c.enc.writeRecord(&c.buf, r, level, false)
	c.enc.newline(&c.buf)
	if err := c.flush(); err != nil {
		return err
	}
	c.count++
	return nil
}

// Close writes the closing collection tag.
func (c *CollectionWriter) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.buf.Reset()
	c.header()
	c.buf.WriteString("</marc:collection>\n")
	return c.flush()
}

// Count returns the number of records written.
func (c *CollectionWriter) Count() int {
	return c.count
}

func (c *CollectionWriter) header() {
	if c.started {
		return
	}
	c.started = true
	c.buf.WriteString(declaration)
	c.enc.newline(&c.buf)
	c.buf.WriteString("<marc:collection")
	writeNamespaces(&c.buf)
	c.buf.WriteString(">")
	c.enc.newline(&c.buf)
}

func (c *CollectionWriter) flush() error {
	if _, err := c.w.Write(c.buf.Bytes()); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	return nil
}

// IndividualWriter writes each record as its own document, named
// record_NNNNNN.xml after the record's 1-based index. Files are written to a
// temporary name and renamed into place, so a reader never sees a partial
// document.
type IndividualWriter struct {
	// Tee, when set, receives a copy of every document written.
	Tee io.Writer

	dir  string
	enc  Encoder
	perm os.FileMode
}

// NewIndividualWriter returns an IndividualWriter for dir, creating dir
// when it does not exist.
func NewIndividualWriter(dir string, enc Encoder) (*IndividualWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return &IndividualWriter{dir: dir, enc: enc, perm: 0o644}, nil
}

// Path returns the file name used for the record at index.
func (w *IndividualWriter) Path(index int) string {
	return filepath.Join(w.dir, fmt.Sprintf("record_%06d.xml", index))
}

// Write writes r to the file for index and returns its path.
func (w *IndividualWriter) Write(index int, r marc.Record) (string, error) {
	dest := w.Path(index)
	doc := w.enc.Document(r)
	if err := writeAtomic(dest, doc, w.perm); err != nil {
		return dest, fmt.Errorf("write %s: %w", dest, err)
	}
	if w.Tee != nil {
		if _, err := w.Tee.Write(doc); err != nil {
			return dest, err
		}
	}
	return dest, nil
}

func writeAtomic(dest string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".record-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
