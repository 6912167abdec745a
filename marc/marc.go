/*

Package marc is a library for parsing MARC 21 records in their ISO 2709
binary serialization.

*/
package marc

import (
	"strings"
)

const (
	rt = 0x1d // End of record
	ft = 0x1e // End of field
	st = 0x1f // Subfield delimiter

	leaderLen = 24
	entryLen  = 12
)

// Record is a struct representing a MARC record. Fields holds both
// ControlFields and DataFields in directory order. Data is the raw record
// the Record was decoded from; it is nil for records built or filtered in
// memory. Warnings collects recoverable anomalies found while decoding.
type Record struct {
	Data     []byte
	Fields   []Field
	Leader   Leader
	Warnings []error
}

// Field is implemented by ControlField and DataField.
type Field interface {
	FieldTag() string
	field()
}

// ControlField just contains a Tag and a Value.
type ControlField struct {
	Tag   string
	Value string
}

// DataField contains two Indicators, a Tag, and a slice of SubFields. If
// you want a specific subfield or subfields you should use the SubField
// method.
type DataField struct {
	Indicator1 string
	Indicator2 string
	Tag        string
	SubFields  []SubField
}

// SubField contains a Code and a Value.
type SubField struct {
	Code  string
	Value string
}

func (c ControlField) FieldTag() string { return c.Tag }
func (d DataField) FieldTag() string    { return d.Tag }

func (ControlField) field() {}
func (DataField) field()    {}

// IsControlTag reports whether tag names a control field. Control fields
// occupy the 00X range.
func IsControlTag(tag string) bool {
	return strings.HasPrefix(tag, "00")
}

// ControlNum returns the record's control number, or an empty string when
// the record has no 001 field.
func (r Record) ControlNum() string {
	cfs := r.ControlField("001")
	if len(cfs) == 0 {
		return ""
	}
	return strings.TrimSpace(cfs[0].Value)
}

// Tags returns the tag of every field in record order.
func (r Record) Tags() []string {
	tags := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		tags = append(tags, f.FieldTag())
	}
	return tags
}

// DataField method takes an arbitrary number of tag strings and returns
// a slice of matching DataFields. Note that one tag may return multiple
// DataFields as they can be repeated.
func (r Record) DataField(tag ...string) []DataField {
	fields := make([]DataField, 0, len(tag))
	for _, t := range tag {
		for _, f := range r.Fields {
			field, ok := f.(DataField)
			if ok && field.Tag == t {
				fields = append(fields, field)
			}
		}
	}
	return fields
}

// ControlField method takes an arbitrary number of tag strings and returns
// a slice of matching ControlFields.
func (r Record) ControlField(tag ...string) []ControlField {
	fields := make([]ControlField, 0, len(tag))
	for _, t := range tag {
		for _, f := range r.Fields {
			field, ok := f.(ControlField)
			if ok && field.Tag == t {
				fields = append(fields, field)
			}
		}
	}
	return fields
}

// SubField takes an arbitrary number of subfield code strings and returns
// a slice of SubFields.
func (d DataField) SubField(subfield ...string) []SubField {
	fields := make([]SubField, 0, len(subfield))
	for _, s := range subfield {
		for _, f := range d.SubFields {
			if f.Code == s {
				fields = append(fields, f)
			}
		}
	}
	return fields
}

func (d DataField) matches(tag string, ind1 string, ind2 string) bool {
	t := d.Tag == tag
	i1 := ind1 == "*" || d.Indicator1 == ind1
	i2 := ind2 == "*" || d.Indicator2 == ind2
	return t && i1 && i2
}

// Query takes one or more tag queries and returns a slice of strings
// matching the selected subfield values. A tag query consists of the
// three digit MARC tag optionally followed by one or more subfield codes,
// for example: "245ac", "650x" or "100". Filtering for indicators can be
// done by including the two desired indicators between pipes after the tag.
// An * character can be used for any indicator, for example: "245|*1|ac"
// or 650|01|x. Queries shorter than a tag are ignored.
func (r Record) Query(query ...string) [][]string {
	var res [][]string
	for _, q := range query {
		if len(q) < 3 {
			continue
		}
		tag := q[:3]
		ind1, ind2 := "*", "*"
		subs := q[3:]
		if ind := strings.Index(q, "|"); ind > -1 && len(q) >= ind+4 {
			ind1, ind2 = string(q[ind+1]), string(q[ind+2])
			subs = q[ind+4:]
		}
		for _, field := range r.Fields {
			var values []string
			switch f := field.(type) {
			case ControlField:
				if f.Tag == tag {
					values = append(values, f.Value)
					res = append(res, values)
				}
			case DataField:
				if !f.matches(tag, ind1, ind2) {
					continue
				}
				if len(subs) != 0 {
					for _, sf := range f.SubField(strings.Split(subs, "")...) {
						values = append(values, sf.Value)
					}
				} else {
					for _, sf := range f.SubFields {
						values = append(values, sf.Value)
					}
				}
				if len(values) > 0 {
					res = append(res, values)
				}
			}
		}
	}
	return res
}
