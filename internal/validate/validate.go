// Package validate checks that written MARCXML is well-formed XML. It does
// not validate against the MARC21 slim schema.
package validate

import (
	"bytes"
	"fmt"
	"os"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

var countRecords = xpath.MustCompile("count(//*[local-name()='record'])")

// Result reports the outcome of a well-formedness check.
type Result struct {
	WellFormed bool
	Root       string // Qualified name of the root element
	Records    int    // Number of record elements
	Err        error  // Parse error when not well-formed
}

// Bytes checks data.
func Bytes(data []byte) Result {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return Result{Err: fmt.Errorf("parsing XML: %w", err)}
	}
	root := rootElement(doc)
	if root == nil {
		return Result{Err: fmt.Errorf("parsing XML: no root element")}
	}
	res := Result{WellFormed: true, Root: root.Data}
	if root.Prefix != "" {
		res.Root = root.Prefix + ":" + root.Data
	}
	if n, ok := countRecords.Evaluate(xmlquery.CreateXPathNavigator(doc)).(float64); ok {
		res.Records = int(n)
	}
	return res
}

// File checks the file at path. The error is non-nil only when the file
// cannot be read.
func File(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Bytes(data), nil
}

func rootElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}
