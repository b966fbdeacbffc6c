// # internal/output/output_test.go
package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bindgen/internal/emit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindingPath(t *testing.T) {
	root := filepath.Join("data", "json")
	src := filepath.Join(root, "common", "point_types.json")

	got := BindingPath("pybind11-gen", root, src, "")
	assert.Equal(t, filepath.Join("pybind11-gen", "common", "point_types.cpp"), got)

	got = BindingPath("out", root, src, ".cc")
	assert.Equal(t, filepath.Join("out", "common", "point_types.cc"), got)
}

func TestWriteBinding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "common", "point_types.cpp")
	require.NoError(t, WriteBinding(path, []string{"#include <point_types.h>", "}"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#include <point_types.h>\n}\n", string(data))
}

func TestTSVGenerator(t *testing.T) {
	rows := []SkippedRow{
		{Source: "b.json", SkippedRecord: emit.SkippedRecord{Line: 3, Column: 1, Kind: "FUNCTION_DECL", Name: "f", Reason: emit.ReasonNeedsReview}},
		{Source: "a.json", SkippedRecord: emit.SkippedRecord{Line: 9, Column: 4, Kind: "CXX_METHOD", Name: "PCL_DEPRECATED", Reason: emit.ReasonDeprecated}},
		{Source: "a.json", SkippedRecord: emit.SkippedRecord{Line: 2, Column: 7, Kind: "CONSTRUCTOR", Name: "odd\tname", Reason: emit.ReasonUnresolvedType}},
	}

	tsv, err := NewTSVGenerator(rows).Generate()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(tsv), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "File\tLine\tColumn\tKind\tName\tReason", lines[0])
	assert.Equal(t, "a.json\t2\t7\tCONSTRUCTOR\todd name\tunresolved_type", lines[1])
	assert.Equal(t, "a.json\t9\t4\tCXX_METHOD\tPCL_DEPRECATED\tdeprecated", lines[2])
	assert.Equal(t, "b.json\t3\t1\tFUNCTION_DECL\tf\tneeds_review", lines[3])
}

func TestReplaceBetweenMarkers(t *testing.T) {
	doc := "# Bindings\n<!-- bindgen:skipped:start -->\nold\n<!-- bindgen:skipped:end -->\ntail\n"
	got, err := ReplaceBetweenMarkers(doc, "skipped", "new table\n")
	require.NoError(t, err)
	assert.Equal(t, "# Bindings\n<!-- bindgen:skipped:start -->\nnew table\n<!-- bindgen:skipped:end -->\ntail\n", got)

	_, err = ReplaceBetweenMarkers("no markers", "skipped", "x")
	require.Error(t, err)

	_, err = ReplaceBetweenMarkers("<!-- bindgen:skipped:end --><!-- bindgen:skipped:start -->", "skipped", "x")
	require.Error(t, err)

	_, err = ReplaceBetweenMarkers(doc, " ", "x")
	require.Error(t, err)
}

func TestReplaceBetweenMarkersKeepsCRLF(t *testing.T) {
	doc := "<!-- bindgen:s:start -->\r\n<!-- bindgen:s:end -->\r\n"
	got, err := ReplaceBetweenMarkers(doc, "s", "a\nb")
	require.NoError(t, err)
	assert.Equal(t, "<!-- bindgen:s:start -->\r\na\r\nb\r\n<!-- bindgen:s:end -->\r\n", got)
}

func TestSkippedMarkdown(t *testing.T) {
	assert.Equal(t, "No skipped nodes.\n", SkippedMarkdown(nil))

	md := SkippedMarkdown([]SkippedRow{
		{Source: "a.json", SkippedRecord: emit.SkippedRecord{Line: 1, Column: 2, Kind: "FUNCTION_DECL", Name: "f", Reason: emit.ReasonNeedsReview}},
		{Source: "a.json", SkippedRecord: emit.SkippedRecord{Line: 5, Column: 1, Kind: "FUNCTION_DECL", Name: "operator|", Reason: emit.ReasonNeedsReview}},
		{Source: "b.json", SkippedRecord: emit.SkippedRecord{Line: 9, Column: 3, Kind: "CXX_METHOD", Name: "PCL_DEPRECATED", Reason: emit.ReasonDeprecated}},
	})
	lines := strings.Split(md, "\n")
	assert.Equal(t, "| `FUNCTION_DECL` | needs_review | 2 |", lines[2])
	assert.Equal(t, "| `CXX_METHOD` | deprecated | 1 |", lines[3])
	assert.Contains(t, md, `| a.json | 5:1 | `+"`FUNCTION_DECL`"+` | operator\| | needs_review |`)
}

func TestInjectReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "REVIEW.md")
	require.NoError(t, os.WriteFile(path, []byte("<!-- bindgen:skipped:start -->\n<!-- bindgen:skipped:end -->\n"), 0o644))

	require.NoError(t, InjectReport(path, "skipped", "No skipped nodes.\n"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<!-- bindgen:skipped:start -->\nNo skipped nodes.\n<!-- bindgen:skipped:end -->\n", string(data))

	require.Error(t, InjectReport(filepath.Join(t.TempDir(), "missing.md"), "skipped", "x"))
}
