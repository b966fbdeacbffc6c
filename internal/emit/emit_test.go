package emit

import (
	"testing"

	"bindgen/internal/ast"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitterKeepsOrder(t *testing.T) {
	e := NewEmitter()
	e.Append(FragmentNamespaceOpen, "namespace pcl{")
	e.Append(FragmentRegistration, `py::class_<A>(m, "A")`)
	e.Append(FragmentConstructor, ".def(py::init<>())")
	e.Append(FragmentScopeClose, ";")
	e.Append(FragmentScopeClose, "}")

	require.Len(t, e.Fragments(), 5)
	assert.Equal(t, []string{
		"namespace pcl{",
		`py::class_<A>(m, "A")`,
		".def(py::init<>())",
		";",
		"}",
	}, Lines(e.Fragments()))
	assert.Equal(t, FragmentRegistration, e.Fragments()[1].Kind)
}

func TestSkipRecordsPosition(t *testing.T) {
	e := NewEmitter()
	e.Skip(&ast.Node{Kind: ast.KindCXXMethod, Name: "PCL_DEPRECATED", Line: 12, Column: 3}, ReasonDeprecated)
	e.Skip(&ast.Node{RawKind: "FUNCTION_DECL", Kind: ast.KindFunctionDecl, Name: "foo", Line: 40, Column: 1}, ReasonNeedsReview)

	require.Len(t, e.Skipped(), 2)
	assert.Equal(t, SkippedRecord{Line: 12, Column: 3, Kind: "CXX_METHOD", Name: "PCL_DEPRECATED", Reason: ReasonDeprecated}, e.Skipped()[0])
	assert.Equal(t, 40, e.Skipped()[1].Line)
	assert.Equal(t, 1, e.Skipped()[1].Column)
	assert.Empty(t, e.Fragments(), "skips never produce fragments")

	counts := CountByReason(e.Skipped())
	assert.Equal(t, 1, counts[ReasonDeprecated])
	assert.Equal(t, 1, counts[ReasonNeedsReview])
}
