package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitlibraries/marcxml/internal/validate"
	"github.com/mitlibraries/marcxml/marc"
)

const fixture = "../../marc/testdata/record1.mrc"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(append([]string{"marcxml", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestExport(t *testing.T) {
	out, err := run(t, "export", fixture)
	require.NoError(t, err)
	res := validate.Bytes([]byte(out))
	assert.True(t, res.WellFormed)
	assert.Equal(t, "marc:collection", res.Root)
	assert.Equal(t, 1, res.Records)
}

func TestExportToFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.xml")
	out, err := run(t, "export", "-c", "-f", "245,650", "-v", "-o", dest, fixture)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<marc:datafield tag="245" ind1="1" ind2="0">`)
	assert.NotContains(t, string(data), `tag="100"`)
}

func TestExportArgs(t *testing.T) {
	_, err := run(t, "export")
	assert.Error(t, err)
}

func TestPick(t *testing.T) {
	raw, err := os.ReadFile(fixture)
	require.NoError(t, err)

	out, err := run(t, "pick", "92005291", fixture)
	require.NoError(t, err)
	assert.Equal(t, string(raw), out)

	out, err = run(t, "pick", "--xml", "92005291", fixture)
	require.NoError(t, err)
	res := validate.Bytes([]byte(out))
	assert.True(t, res.WellFormed)
	assert.Equal(t, "marc:record", res.Root)

	out, err = run(t, "pick", "-f", "001,245", "92005291", fixture)
	require.NoError(t, err)
	r, err := marc.Decode([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"001", "245"}, r.Tags())

	_, err = run(t, "pick", "nope", fixture)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.xml")
	bad := filepath.Join(dir, "bad.xml")
	require.NoError(t, os.WriteFile(good, []byte(`<marc:collection xmlns:marc="http://www.loc.gov/MARC21/slim"><marc:record/></marc:collection>`), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(`<marc:collection>`), 0o644))

	out, err := run(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "Well-formed (marc:collection, 1 records)")

	_, err = run(t, "validate", bad)
	assert.Error(t, err)
}
