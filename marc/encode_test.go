package marc

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBinaryFixture(t *testing.T) {
	raw, err := os.ReadFile("testdata/record1.mrc")
	require.NoError(t, err)
	r, err := Decode(raw)
	require.NoError(t, err)

	out, err := r.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestMarshalBinaryFiltered(t *testing.T) {
	raw, err := os.ReadFile("testdata/record1.mrc")
	require.NoError(t, err)
	r, err := Decode(raw)
	require.NoError(t, err)

	out, err := r.Filter(NewTagSet("001", "245")).MarshalBinary()
	require.NoError(t, err)
	back, err := Decoder{Strict: true}.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"001", "245"}, back.Tags())
	assert.Equal(t, r.DataField("245"), back.DataField("245"))
	assert.Equal(t, len(out), back.Leader.Length)
	assert.Equal(t, "cam a22", string(back.Leader.Raw[5:12]))
}

func TestMarshalBinaryZeroLeader(t *testing.T) {
	r := Record{Fields: []Field{
		DataField{Tag: "245", Indicator1: "1", Indicator2: "0", SubFields: []SubField{{"a", "Test Title"}}},
	}}
	out, err := r.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, "00053nam a2200037   4500245001500000\x1e10\x1faTest Title\x1e\x1d", string(out))
}

func TestMarshalBinaryLimits(t *testing.T) {
	t.Run("bad tag", func(t *testing.T) {
		_, err := Record{Fields: []Field{ControlField{Tag: "01", Value: "x"}}}.MarshalBinary()
		assert.ErrorIs(t, err, ErrInvalidField)
	})
	t.Run("field too long", func(t *testing.T) {
		long := ControlField{Tag: "005", Value: strings.Repeat("x", 10000)}
		_, err := Record{Fields: []Field{long}}.MarshalBinary()
		assert.ErrorIs(t, err, ErrInvalidField)
	})
	t.Run("record too long", func(t *testing.T) {
		var fields []Field
		for i := 0; i < 12; i++ {
			fields = append(fields, ControlField{Tag: "005", Value: strings.Repeat("x", 9000)})
		}
		_, err := Record{Fields: fields}.MarshalBinary()
		assert.ErrorIs(t, err, ErrInvalidLeader)
	})
}
