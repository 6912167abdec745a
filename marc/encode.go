package marc

import (
	"bytes"
	"fmt"
)

const (
	maxFieldLen  = 9999
	maxRecordLen = 99999
)

// MarshalBinary serializes r as an ISO 2709 record. The leader is copied
// from r.Leader with the record length and base address recomputed; a zero
// Leader gets blanks and the standard "22" / "4500" constants. Fields are
// written in order, data fields with their indicators and subfields.
func (r Record) MarshalBinary() ([]byte, error) {
	var dir, area bytes.Buffer
	for i, f := range r.Fields {
		start := area.Len()
		switch f := f.(type) {
		case ControlField:
			area.WriteString(f.Value)
		case DataField:
			area.WriteString(indicator(f.Indicator1))
			area.WriteString(indicator(f.Indicator2))
			for _, sf := range f.SubFields {
				area.WriteByte(st)
				area.WriteString(sf.Code)
				area.WriteString(sf.Value)
			}
		}
		area.WriteByte(ft)
		length := area.Len() - start
		tag := f.FieldTag()
		if len(tag) != 3 {
			return nil, &FieldError{Index: i, Tag: tag, Message: "tag must be 3 characters"}
		}
		if length > maxFieldLen {
			return nil, &FieldError{Index: i, Tag: tag, Message: fmt.Sprintf("length %d exceeds %d", length, maxFieldLen)}
		}
		if start > maxRecordLen {
			return nil, &FieldError{Index: i, Tag: tag, Message: fmt.Sprintf("start %d exceeds %d", start, maxRecordLen)}
		}
		fmt.Fprintf(&dir, "%s%04d%05d", tag, length, start)
	}
	dir.WriteByte(ft)

	base := leaderLen + dir.Len()
	total := base + area.Len() + 1
	if total > maxRecordLen {
		return nil, &LeaderError{Message: fmt.Sprintf("record length %d exceeds %d", total, maxRecordLen)}
	}

	leader := r.Leader.Raw
	if leader == ([leaderLen]byte{}) {
		copy(leader[:], "     nam a22        4500")
	}
	copy(leader[0:5], fmt.Sprintf("%05d", total))
	copy(leader[12:17], fmt.Sprintf("%05d", base))

	out := make([]byte, 0, total)
	out = append(out, leader[:]...)
	out = append(out, dir.Bytes()...)
	out = append(out, area.Bytes()...)
	return append(out, rt), nil
}

func indicator(s string) string {
	if len(s) != 1 {
		return " "
	}
	return s
}
