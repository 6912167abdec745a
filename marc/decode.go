package marc

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Decoder turns raw ISO 2709 records into Records.
//
// By default a field whose directory entry points outside the record is
// skipped and reported in Record.Warnings, so one corrupt field does not
// discard an otherwise usable record. With Strict set, any such field, or a
// leader length that disagrees with the data, rejects the whole record.
type Decoder struct {
	Strict bool
	Logger *zap.Logger
}

// Decode decodes one record with the default, lenient Decoder.
func Decode(data []byte) (Record, error) {
	return Decoder{}.Decode(data)
}

// Decode decodes one raw record. The trailing record terminator is optional.
// The returned Record owns a copy of data.
func (d Decoder) Decode(data []byte) (Record, error) {
	rec := Record{}
	leader, err := ParseLeader(data)
	if err != nil {
		return rec, err
	}
	rec.Leader = leader

	body := data
	if body[len(body)-1] == rt {
		body = body[:len(body)-1]
	}
	if leader.Length != len(body)+1 {
		lerr := &LengthError{Declared: leader.Length, Actual: len(body) + 1}
		if d.Strict {
			return rec, lerr
		}
		d.warn(&rec, lerr)
	}

	base := leader.BaseAddress
	if base <= leaderLen || base > len(body) {
		return rec, &LeaderError{Message: fmt.Sprintf("base address %d outside record of %d bytes", base, len(body))}
	}
	if body[base-1] != ft {
		return rec, &DirectoryError{Entry: -1, Message: "missing field terminator"}
	}
	entries, err := ParseDirectory(body[leaderLen : base-1])
	if err != nil {
		return rec, err
	}

	region := body[base:]
	rec.Fields = make([]Field, 0, len(entries))
	for i, e := range entries {
		f, err := extractField(i, e, region)
		if err != nil {
			if d.Strict {
				return rec, err
			}
			d.warn(&rec, err)
			continue
		}
		if df, ok := f.(DataField); ok && len(df.SubFields) == 0 {
			d.warn(&rec, &FieldError{Index: i, Tag: e.Tag, Message: "no subfields"})
		}
		rec.Fields = append(rec.Fields, f)
	}
	rec.Data = append([]byte(nil), data...)
	return rec, nil
}

func (d Decoder) warn(rec *Record, err error) {
	rec.Warnings = append(rec.Warnings, err)
	if d.Logger != nil {
		d.Logger.Warn("record anomaly", zap.Error(err))
	}
}

func extractField(index int, e DirEntry, region []byte) (Field, error) {
	end := e.Start + e.Length
	if end > len(region) {
		return nil, &FieldError{
			Index:   index,
			Tag:     e.Tag,
			Message: fmt.Sprintf("bytes %d-%d outside %d byte field area", e.Start, end, len(region)),
		}
	}
	raw := bytes.TrimSuffix(region[e.Start:end], []byte{ft})
	if IsControlTag(e.Tag) {
		return ControlField{Tag: e.Tag, Value: string(raw)}, nil
	}
	return makeDataField(index, e.Tag, raw)
}

func makeDataField(index int, tag string, data []byte) (DataField, error) {
	d := DataField{Tag: tag}
	if len(data) < 2 {
		return d, &FieldError{Index: index, Tag: tag, Message: "missing indicators"}
	}
	d.Indicator1 = string(data[0:1])
	d.Indicator2 = string(data[1:2])
	for _, sf := range bytes.Split(data[2:], []byte{st}) {
		if len(sf) == 0 {
			continue
		}
		_, n := utf8.DecodeRune(sf)
		d.SubFields = append(d.SubFields, SubField{Code: string(sf[:n]), Value: string(sf[n:])})
	}
	return d, nil
}
