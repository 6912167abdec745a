package marc

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// MaxRecordSize bounds the bytes buffered while looking for a record
// terminator. ISO 2709 lengths stop at 99999; the slack tolerates records
// with a wrong leader.
const MaxRecordSize = 1 << 20

// MarcIterator will iterate over a set of MARC records using the Next()
// and Value() methods. Use the NewMarcIterator function to create a
// MarcIterator. Decoder controls how Value decodes each record.
type MarcIterator struct {
	Decoder Decoder

	scanner *bufio.Scanner
	offset  int64
	start   int64
	index   int
}

// NewMarcIterator creates and returns a new instance of a MarcIterator.
// This function should be used to create a MarcIterator rather than
// instantiating one yourself.
func NewMarcIterator(r io.Reader) *MarcIterator {
	m := &MarcIterator{}
	m.scanner = bufio.NewScanner(r)
	m.scanner.Buffer(make([]byte, 0, 64*1024), MaxRecordSize)
	m.scanner.Split(m.split)
	return m
}

// Next advances the MarcIterator to the next record, which will be
// available through the Value method. It returns false when the
// MarcIterator has reached the end of the input or has encountered an
// error. Any error will be accessible from the Err method.
func (m *MarcIterator) Next() bool {
	if !m.scanner.Scan() {
		return false
	}
	m.index++
	return true
}

// Value decodes the current record. A decode error affects only this
// record; Next can still advance past it.
func (m *MarcIterator) Value() (Record, error) {
	return m.Decoder.Decode(m.scanner.Bytes())
}

// Raw returns the current record's bytes, including its terminator. The
// slice is only valid until the next call to Next.
func (m *MarcIterator) Raw() []byte {
	return m.scanner.Bytes()
}

// Index returns the 1-based position of the current record in the input.
func (m *MarcIterator) Index() int {
	return m.index
}

// Offset returns the byte offset of the current record in the input.
func (m *MarcIterator) Offset() int64 {
	return m.start
}

// Err will return the first error encountered by the MarcIterator. Input
// that ends inside a record, or a record that never terminates, is reported
// as a *TruncatedError.
func (m *MarcIterator) Err() error {
	err := m.scanner.Err()
	if errors.Is(err, bufio.ErrTooLong) {
		return &TruncatedError{Offset: m.offset, Len: MaxRecordSize}
	}
	return err
}

func (m *MarcIterator) split(data []byte, atEOF bool) (advance int, token []byte, err error) {
	skip := 0
	for skip < len(data) && isSpace(data[skip]) {
		skip++
	}
	if i := bytes.IndexByte(data[skip:], rt); i >= 0 {
		advance = skip + i + 1
		m.start = m.offset + int64(skip)
		m.offset += int64(advance)
		return advance, data[skip:advance], nil
	}
	if skip == len(data) {
		m.offset += int64(skip)
		return skip, nil, nil
	}
	if atEOF {
		return 0, nil, &TruncatedError{Offset: m.offset + int64(skip), Len: len(data) - skip}
	}
	return 0, nil, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
