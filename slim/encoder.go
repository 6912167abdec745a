// Package slim writes MARC records as MARCXML, the MARC21 slim schema
// published by the Library of Congress.
//
// Elements are always written with the "marc" prefix. A record written
// inside a collection relies on the collection's namespace declaration; a
// standalone record document declares the namespace on marc:record itself.
package slim

import (
	"bytes"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mitlibraries/marcxml/marc"
)

const (
	// Namespace is the MARC21 slim namespace URI.
	Namespace = "http://www.loc.gov/MARC21/slim"
	// SchemaLocation is the published location of the MARC21 slim schema.
	SchemaLocation = "http://www.loc.gov/standards/marcxml/schema/MARC21slim.xsd"
	// XSINamespace is the XML Schema instance namespace URI.
	XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"

	declaration   = `<?xml version="1.0" encoding="UTF-8"?>`
	defaultIndent = "  "
)

// Encoder controls the layout of encoded records. The zero value writes
// pretty, two-space indented XML.
type Encoder struct {
	// Compact suppresses all whitespace between elements.
	Compact bool
	// Indent is the per-level indentation in pretty mode.
	Indent string
	// Normalize converts text to Unicode NFC before escaping.
	Normalize bool
}

// EncodeRecord returns r as a marc:record fragment with no XML declaration
// and no namespace declaration.
func EncodeRecord(r marc.Record, pretty bool) string {
	var b bytes.Buffer
	Encoder{Compact: !pretty}.AppendRecord(&b, r)
	return b.String()
}

// AppendRecord writes r to b as a marc:record fragment.
func (e Encoder) AppendRecord(b *bytes.Buffer, r marc.Record) {
	e.writeRecord(b, r, 0, false)
}

// Document returns r as a standalone MARCXML document.
func (e Encoder) Document(r marc.Record) []byte {
	var b bytes.Buffer
	b.WriteString(declaration)
	e.newline(&b)
	e.writeRecord(&b, r, 0, true)
	e.newline(&b)
	return b.Bytes()
}

func (e Encoder) writeRecord(b *bytes.Buffer, r marc.Record, level int, declare bool) {
	e.indent(b, level)
	b.WriteString("<marc:record")
	if declare {
		writeNamespaces(b)
	}
	b.WriteString(">")
	e.newline(b)

	e.indent(b, level+1)
	b.WriteString("<marc:leader>")
	e.text(b, r.Leader.String())
	b.WriteString("</marc:leader>")
	e.newline(b)

	for _, f := range r.Fields {
		switch f := f.(type) {
		case marc.ControlField:
			e.indent(b, level+1)
			b.WriteString(`<marc:controlfield tag="`)
			e.attr(b, f.Tag)
			b.WriteString(`">`)
			e.text(b, f.Value)
			b.WriteString("</marc:controlfield>")
			e.newline(b)
		case marc.DataField:
			e.writeDataField(b, f, level+1)
		}
	}

	e.indent(b, level)
	b.WriteString("</marc:record>")
}

func (e Encoder) writeDataField(b *bytes.Buffer, f marc.DataField, level int) {
	e.indent(b, level)
	b.WriteString(`<marc:datafield tag="`)
	e.attr(b, f.Tag)
	b.WriteString(`" ind1="`)
	e.attr(b, f.Indicator1)
	b.WriteString(`" ind2="`)
	e.attr(b, f.Indicator2)
	b.WriteString(`">`)
	e.newline(b)
	for _, sf := range f.SubFields {
		e.indent(b, level+1)
		b.WriteString(`<marc:subfield code="`)
		e.attr(b, sf.Code)
		b.WriteString(`">`)
		e.text(b, sf.Value)
		b.WriteString("</marc:subfield>")
		e.newline(b)
	}
	e.indent(b, level)
	b.WriteString("</marc:datafield>")
	e.newline(b)
}

func writeNamespaces(b *bytes.Buffer) {
	b.WriteString(` xmlns:marc="` + Namespace + `"`)
	b.WriteString(` xmlns:xsi="` + XSINamespace + `"`)
	b.WriteString(` xsi:schemaLocation="` + Namespace + " " + SchemaLocation + `"`)
}

func (e Encoder) text(b *bytes.Buffer, s string) {
	escapeText(b, e.normalize(s))
}

func (e Encoder) attr(b *bytes.Buffer, s string) {
	escapeAttr(b, e.normalize(s))
}

func (e Encoder) normalize(s string) string {
	if e.Normalize {
		return norm.NFC.String(s)
	}
	return s
}

func (e Encoder) indent(b *bytes.Buffer, level int) {
	if e.Compact || level == 0 {
		return
	}
	in := e.Indent
	if in == "" {
		in = defaultIndent
	}
	b.WriteString(strings.Repeat(in, level))
}

func (e Encoder) newline(b *bytes.Buffer) {
	if !e.Compact {
		b.WriteByte('\n')
	}
}
