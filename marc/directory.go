package marc

import (
	"fmt"
)

// DirEntry is one 12 byte directory entry: a three character tag, a four
// digit field length and a five digit starting position relative to the
// leader's base address.
type DirEntry struct {
	Tag    string
	Length int
	Start  int
}

// ParseDirectory decodes the directory bytes that follow the leader, not
// including the field terminator that ends the directory.
func ParseDirectory(b []byte) ([]DirEntry, error) {
	if len(b)%entryLen != 0 {
		return nil, &DirectoryError{
			Entry:   -1,
			Message: fmt.Sprintf("length %d is not a multiple of %d", len(b), entryLen),
		}
	}
	entries := make([]DirEntry, 0, len(b)/entryLen)
	for i := 0; len(b) >= entryLen; i++ {
		length, err := parseDigits(b[3:7])
		if err != nil {
			return nil, &DirectoryError{Entry: i, Message: "field length: " + err.Error()}
		}
		start, err := parseDigits(b[7:12])
		if err != nil {
			return nil, &DirectoryError{Entry: i, Message: "field start: " + err.Error()}
		}
		entries = append(entries, DirEntry{Tag: string(b[:3]), Length: length, Start: start})
		b = b[entryLen:]
	}
	return entries, nil
}
