package ast

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	bgerrors "bindgen/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTree = `{
  "kind": "TRANSLATION_UNIT",
  "name": "include/pcl/point_types.h",
  "element_type": "Invalid",
  "depth": 0,
  "line": 0,
  "column": 0,
  "members": [
    {
      "kind": "NAMESPACE", "name": "pcl", "element_type": "Invalid",
      "depth": 1, "line": 3, "column": 11,
      "members": [
        {
          "kind": "STRUCT_DECL", "name": "PointXYZ", "element_type": "Record",
          "depth": 2, "line": 5, "column": 10,
          "members": [
            {"kind": "FIELD_DECL", "name": "data", "element_type": "ConstantArray", "depth": 3, "line": 6, "column": 11, "members": []}
          ]
        }
      ]
    }
  ]
}`

func TestDecode(t *testing.T) {
	root, err := Decode(strings.NewReader(sampleTree))
	require.NoError(t, err)

	assert.Equal(t, KindTranslationUnit, root.Kind)
	assert.Equal(t, "point_types.h", root.HeaderName())
	require.Len(t, root.Members, 1)

	ns := root.Members[0]
	assert.Equal(t, KindNamespace, ns.Kind)
	assert.Equal(t, "3:11", ns.Position())

	field := ns.Members[0].Members[0]
	assert.Equal(t, KindFieldDecl, field.Kind)
	assert.Equal(t, ElementConstantArray, field.ElementType)
	assert.Equal(t, 3, field.Depth)

	require.NoError(t, Validate(root, 0))
}

func TestDecodeUnknownKindKeepsRawName(t *testing.T) {
	root, err := Decode(strings.NewReader(`{"kind": "LAMBDA_EXPR", "name": "", "depth": 0, "members": []}`))
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, root.Kind)
	assert.Equal(t, "LAMBDA_EXPR", root.KindName())
}

func TestDecodeEmpty(t *testing.T) {
	for _, input := range []string{"", "null", "{}"} {
		_, err := Decode(strings.NewReader(input))
		require.Error(t, err, "input %q", input)
		assert.True(t, bgerrors.IsCode(err, bgerrors.CodeInvalidInput), "input %q", input)
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"kind": `))
	require.Error(t, err)
	assert.True(t, bgerrors.IsCode(err, bgerrors.CodeInvalidInput))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "point_types.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleTree), 0o644))

	root, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "point_types.h", root.HeaderName())

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, bgerrors.IsCode(err, bgerrors.CodeNotFound))
}

func TestValidateDepthInvariant(t *testing.T) {
	root := &Node{Kind: KindTranslationUnit, Name: "a.h", Members: []*Node{
		{Kind: KindNamespace, Name: "pcl", Depth: 2},
	}}
	err := Validate(root, 0)
	require.Error(t, err)
	assert.True(t, bgerrors.IsCode(err, bgerrors.CodeInvalidInput))
	assert.Contains(t, err.Error(), "expected 1")
}

func TestValidateMaxDepth(t *testing.T) {
	root := &Node{Kind: KindTranslationUnit, Name: "a.h"}
	cur := root
	for i := 1; i <= 5; i++ {
		child := &Node{Kind: KindCompoundStmt, Depth: i}
		cur.Members = []*Node{child}
		cur = child
	}
	require.NoError(t, Validate(root, 5))
	require.Error(t, Validate(root, 4))
}

func TestKindNamesAreUnique(t *testing.T) {
	seen := make(map[string]Kind)
	for _, k := range Kinds() {
		name := k.String()
		require.NotEmpty(t, name, "kind %d has no name", int(k))
		if prev, ok := seen[name]; ok {
			t.Fatalf("kinds %d and %d share name %s", prev, k, name)
		}
		seen[name] = k

		parsed, ok := ParseKind(name)
		require.True(t, ok)
		assert.Equal(t, k, parsed)
	}
	_, ok := ParseKind("UNKNOWN")
	assert.False(t, ok)
}
