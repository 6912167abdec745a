package marc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIteratorMultipleRecords(t *testing.T) {
	one := rawRecord([]string{"001000200000"}, "1\x1e")
	two := rawRecord([]string{"001000200000"}, "2\x1e")
	input := bytes.Join([][]byte{one, two}, nil)

	iter := NewMarcIterator(bytes.NewReader(input))
	var got []string
	var offsets []int64
	for iter.Next() {
		r, err := iter.Value()
		require.NoError(t, err)
		got = append(got, r.ControlNum())
		offsets = append(offsets, iter.Offset())
		assert.Equal(t, len(got), iter.Index())
	}
	require.NoError(t, iter.Err())
	assert.Equal(t, []string{"1", "2"}, got)
	assert.Equal(t, []int64{0, int64(len(one))}, offsets)
}

func TestIteratorEmptyInput(t *testing.T) {
	iter := NewMarcIterator(strings.NewReader(""))
	assert.False(t, iter.Next())
	assert.NoError(t, iter.Err())
}

func TestIteratorTrailingNewline(t *testing.T) {
	one := rawRecord([]string{"001000200000"}, "1\x1e")
	input := append(append([]byte{}, one...), "\r\n"...)
	input = append(input, one...)
	input = append(input, '\n')

	iter := NewMarcIterator(bytes.NewReader(input))
	n := 0
	for iter.Next() {
		_, err := iter.Value()
		require.NoError(t, err)
		n++
	}
	require.NoError(t, iter.Err())
	assert.Equal(t, 2, n)
}

func TestIteratorTruncated(t *testing.T) {
	one := rawRecord([]string{"001000200000"}, "1\x1e")
	input := append(append([]byte{}, one...), one[:30]...)

	iter := NewMarcIterator(bytes.NewReader(input))
	require.True(t, iter.Next())
	_, err := iter.Value()
	require.NoError(t, err)

	assert.False(t, iter.Next())
	err = iter.Err()
	require.ErrorIs(t, err, ErrTruncatedRecord)
	var terr *TruncatedError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, int64(len(one)), terr.Offset)
	assert.Equal(t, 30, terr.Len)
}

func TestIteratorSkipsBadRecord(t *testing.T) {
	good := rawRecord([]string{"001000200000"}, "1\x1e")
	bad := []byte("garbage\x1d")
	input := bytes.Join([][]byte{good, bad, good}, nil)

	iter := NewMarcIterator(bytes.NewReader(input))
	var errs, ok int
	for iter.Next() {
		if _, err := iter.Value(); err != nil {
			assert.ErrorIs(t, err, ErrInvalidLeader)
			assert.Equal(t, 2, iter.Index())
			errs++
			continue
		}
		ok++
	}
	require.NoError(t, iter.Err())
	assert.Equal(t, 1, errs)
	assert.Equal(t, 2, ok)
}

func TestIteratorStrictDecoder(t *testing.T) {
	raw := rawRecord([]string{"245009900000"}, "10\x1faX\x1e")
	iter := NewMarcIterator(bytes.NewReader(raw))
	iter.Decoder = Decoder{Strict: true}
	require.True(t, iter.Next())
	_, err := iter.Value()
	assert.ErrorIs(t, err, ErrInvalidField)
	assert.Equal(t, raw, iter.Raw())
}
