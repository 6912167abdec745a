package marc

import (
	"errors"
	"fmt"
)

// Sentinel errors for the four kinds of decode failure. Every typed error in
// this package unwraps to one of them, so callers can test with errors.Is.
var (
	// ErrTruncatedRecord indicates the input ended in the middle of a record.
	ErrTruncatedRecord = errors.New("truncated record")
	// ErrInvalidLeader indicates a short leader or bad numeric leader data.
	ErrInvalidLeader = errors.New("invalid leader")
	// ErrInvalidDirectory indicates a malformed or unterminated directory.
	ErrInvalidDirectory = errors.New("invalid directory")
	// ErrInvalidField indicates a directory entry that does not describe a
	// usable field.
	ErrInvalidField = errors.New("invalid field")
)

// TruncatedError is returned by MarcIterator.Err when input ends after
// partial record data.
type TruncatedError struct {
	Offset int64 // Byte offset of the partial record in the stream
	Len    int   // Bytes of partial data dropped
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated record at offset %d: %d bytes without record terminator", e.Offset, e.Len)
}

func (e *TruncatedError) Unwrap() error {
	return ErrTruncatedRecord
}

// LeaderError describes why a leader could not be parsed.
type LeaderError struct {
	Message string
}

func (e *LeaderError) Error() string {
	return "invalid leader: " + e.Message
}

func (e *LeaderError) Unwrap() error {
	return ErrInvalidLeader
}

// LengthError reports a record whose leader length disagrees with the number
// of bytes actually read. It is a warning unless the decoder is strict.
type LengthError struct {
	Declared int
	Actual   int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("invalid leader: record length %d declared, %d read", e.Declared, e.Actual)
}

func (e *LengthError) Unwrap() error {
	return ErrInvalidLeader
}

// DirectoryError describes a malformed directory.
type DirectoryError struct {
	Entry   int // Zero-based entry index, -1 when not entry specific
	Message string
}

func (e *DirectoryError) Error() string {
	if e.Entry >= 0 {
		return fmt.Sprintf("invalid directory entry %d: %s", e.Entry, e.Message)
	}
	return "invalid directory: " + e.Message
}

func (e *DirectoryError) Unwrap() error {
	return ErrInvalidDirectory
}

// FieldError reports a field that could not be extracted. Index is the
// field's position in the directory.
type FieldError struct {
	Index   int
	Tag     string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid field %d (%s): %s", e.Index, e.Tag, e.Message)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}
