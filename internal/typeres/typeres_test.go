package typeres

import (
	"testing"

	"bindgen/internal/ast"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func param(elem string, members ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindParmDecl, Name: "p", ElementType: elem, Members: members}
}

func ref(kind ast.Kind, name string) *ast.Node {
	return &ast.Node{Kind: kind, Name: name}
}

func TestNormalize(t *testing.T) {
	n := DefaultNormalizer()
	assert.Equal(t, "Bar", n.Normalize("struct pcl::Bar"))
	assert.Equal(t, "Foo<PointXYZ>", n.Normalize("Foo<pcl::PointXYZ>"))
	assert.Equal(t, "std::vector<int>", n.Normalize("std::vector<int>"))
	assert.Equal(t, "Bar,Baz", n.NormalizeList([]string{"struct pcl::Bar", "pcl::Baz"}))

	custom := Normalizer{Keywords: []string{"class ", ""}, Namespaces: []string{"Eigen::"}}
	assert.Equal(t, "Matrix3f", custom.Normalize("class Eigen::Matrix3f"))
}

func TestResolveParam(t *testing.T) {
	r := NewResolver(DefaultNormalizer())

	tests := []struct {
		name      string
		param     *ast.Node
		want      string
		confident bool
	}{
		{
			name:      "reference to named type",
			param:     param(ast.ElementLValueReference, ref(ast.KindTypeRef, "struct pcl::PointXYZ")),
			want:      "PointXYZ &",
			confident: true,
		},
		{
			name: "namespace qualified",
			param: param(ast.ElementElaborated,
				ref(ast.KindNamespaceRef, "pcl"),
				ref(ast.KindNamespaceRef, "io"),
				ref(ast.KindTypeRef, "Reader")),
			want:      "pcl::io::Reader",
			confident: true,
		},
		{
			name:      "float",
			param:     param("Float"),
			want:      "float",
			confident: true,
		},
		{
			name:      "int",
			param:     param("Int"),
			want:      "int",
			confident: true,
		},
		{
			name:      "unsigned builtin",
			param:     param("UInt"),
			want:      "unsigned int",
			confident: true,
		},
		{
			name:  "pointer falls back to tag",
			param: param("Pointer"),
			want:  "Pointer",
		},
		{
			name:  "reference without type ref",
			param: param(ast.ElementLValueReference),
			want:  ast.ElementLValueReference,
		},
		{
			name:  "elaborated without type ref",
			param: param(ast.ElementElaborated, ref(ast.KindNamespaceRef, "pcl")),
			want:  ast.ElementElaborated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ResolveParam(tt.param)
			assert.Equal(t, tt.want, got.Text)
			assert.Equal(t, tt.confident, got.Confident)
		})
	}
}

func TestResolveParamsKeepsOrder(t *testing.T) {
	r := NewResolver(DefaultNormalizer())
	ctor := &ast.Node{Kind: ast.KindConstructor, Name: "PointXYZ", Members: []*ast.Node{
		param("Float"),
		ref(ast.KindCompoundStmt, ""),
		param("Int"),
		param(ast.ElementLValueReference, ref(ast.KindTypeRef, "const struct pcl::PointXYZ")),
	}}
	got := r.ResolveParams(ctor)
	require.Len(t, got, 3)
	assert.Same(t, ctor.Members[2], got[1].Param)
	assert.Equal(t, "float,int,const PointXYZ &", Join(got))
}

func TestResolveParamsEmpty(t *testing.T) {
	r := NewResolver(DefaultNormalizer())
	got := r.ResolveParams(&ast.Node{Kind: ast.KindConstructor})
	assert.Empty(t, got)
	assert.Equal(t, "", Join(got))
}
