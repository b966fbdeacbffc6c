package assemble

import (
	"strings"
	"testing"

	"bindgen/internal/ast"
	"bindgen/internal/binder"
	bgerrors "bindgen/internal/core/errors"
	"bindgen/internal/emit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frag(kind emit.FragmentKind, text string) emit.Fragment {
	return emit.Fragment{Kind: kind, Text: text}
}

func TestAssembleInjectsModuleAfterNamespaces(t *testing.T) {
	res := &binder.Result{
		Header: "point_types.h",
		Fragments: []emit.Fragment{
			frag(emit.FragmentNamespaceOpen, "namespace pcl{"),
			frag(emit.FragmentRegistration, `py::class_<PointXYZ>(m, "PointXYZ")`),
			frag(emit.FragmentConstructor, ".def(py::init<>())"),
			frag(emit.FragmentScopeClose, ";"),
			frag(emit.FragmentScopeClose, "}"),
		},
	}

	got, err := Assemble(res, Options{Module: "pcl"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"#include <point_types.h>",
		"#include <pybind11/pybind11.h>",
		"#include <pybind11/stl.h>",
		"#include <pybind11/stl_bind.h>",
		"namespace py = pybind11;",
		"using namespace py::literals;",
		"namespace pcl{",
		`PYBIND11_MODULE(pcl, m){py::class_<PointXYZ>(m, "PointXYZ")`,
		".def(py::init<>())",
		";",
		"}",
		"}",
	}, got)
}

func TestAssembleWithoutDeclarations(t *testing.T) {
	res := &binder.Result{
		Header:    "empty.h",
		Fragments: []emit.Fragment{frag(emit.FragmentNamespaceOpen, "namespace pcl{")},
	}
	// an unterminated namespace cannot be balanced
	_, err := Assemble(res, Options{Module: "pcl"})
	require.Error(t, err)

	res.Fragments = nil
	got, err := Assemble(res, Options{Module: "pcl", Preamble: []string{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"#include <empty.h>", "PYBIND11_MODULE(pcl, m){", "}"}, got)
}

func TestAssembleInclusionsAndPreamble(t *testing.T) {
	res := &binder.Result{Header: "a.h"}
	got, err := Assemble(res, Options{
		Module:     "ext",
		Preamble:   []string{"namespace py = pybind11;"},
		Inclusions: []string{"pcl/point_cloud.h"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"#include <a.h>",
		"namespace py = pybind11;",
		"#include <pcl/point_cloud.h>",
		"PYBIND11_MODULE(ext, m){",
		"}",
	}, got)
}

func TestModuleFragmentKinds(t *testing.T) {
	res := &binder.Result{
		Header:    "a.h",
		Fragments: []emit.Fragment{frag(emit.FragmentRegistration, `py::class_<A>(m, "A")`), frag(emit.FragmentScopeClose, ";")},
	}
	got, err := moduleFragments(res, Options{
		Module:     "ext",
		Preamble:   []string{"namespace py = pybind11;"},
		Inclusions: []string{"b.h"},
	})
	require.NoError(t, err)

	kinds := make([]emit.FragmentKind, len(got))
	for i, f := range got {
		kinds[i] = f.Kind
	}
	assert.Equal(t, []emit.FragmentKind{
		emit.FragmentInclude,
		emit.FragmentPreamble,
		emit.FragmentInclude,
		emit.FragmentRegistration,
		emit.FragmentScopeClose,
		emit.FragmentModuleClose,
	}, kinds)
}

func TestAssembleValidation(t *testing.T) {
	_, err := Assemble(nil, Options{Module: "pcl"})
	assert.True(t, bgerrors.IsCode(err, bgerrors.CodeInvalidInput))

	_, err = Assemble(&binder.Result{Header: "a.h"}, Options{Module: " "})
	assert.True(t, bgerrors.IsCode(err, bgerrors.CodeValidationError))
}

func TestVerifyBalance(t *testing.T) {
	require.NoError(t, VerifyBalance([]string{"a{", `.def_property_readonly("d", [](A& obj) {return obj.d; })`, "}"}))

	err := VerifyBalance([]string{"}", "{"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	require.Error(t, VerifyBalance([]string{"namespace a{", "namespace b{", "}"}))
}

func node(kind ast.Kind, name string, members ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: kind, Name: name, Members: members}
}

func renumber(n *ast.Node, depth int) *ast.Node {
	n.Depth = depth
	for _, m := range n.Members {
		renumber(m, depth+1)
	}
	return n
}

func TestGeneratedModulesAreBalanced(t *testing.T) {
	arrayField := &ast.Node{Kind: ast.KindFieldDecl, Name: "data", ElementType: ast.ElementConstantArray}
	trees := map[string]*ast.Node{
		"empty unit": node(ast.KindTranslationUnit, "a.h"),
		"namespace only": node(ast.KindTranslationUnit, "a.h",
			node(ast.KindNamespace, "pcl", node(ast.KindNamespace, "detail"))),
		"struct in namespaces": node(ast.KindTranslationUnit, "a.h",
			node(ast.KindNamespace, "pcl",
				node(ast.KindNamespace, "io",
					node(ast.KindStructDecl, "A", arrayField, node(ast.KindCXXMethod, "f"))))),
		"skipped nodes": node(ast.KindTranslationUnit, "a.h",
			node(ast.KindFunctionDecl, "f", node(ast.KindCompoundStmt, "")),
			node(ast.KindClassTemplate, "T", node(ast.KindStructDecl, "Inner")),
			node(ast.KindNamespace, "pcl",
				node(ast.KindMacroInstantiation, "PCL_EXPORTS"),
				node(ast.KindClassDecl, "B",
					node(ast.KindCXXMethod, "PCL_DEPRECATED"),
					node(ast.KindConstructor, "B", &ast.Node{Kind: ast.KindParmDecl, ElementType: "Pointer"})))),
		"sibling namespaces": node(ast.KindTranslationUnit, "a.h",
			node(ast.KindNamespace, "a"),
			node(ast.KindNamespace, "b", node(ast.KindStructDecl, "C"))),
	}

	for name, tree := range trees {
		t.Run(name, func(t *testing.T) {
			res, err := binder.Generate(renumber(tree, 0), binder.DefaultOptions())
			require.NoError(t, err)

			lines, err := Assemble(res, Options{Module: "pcl"})
			require.NoError(t, err)
			require.NoError(t, VerifyBalance(lines))
			assert.Equal(t, "#include <a.h>", lines[0])
			assert.Equal(t, "}", lines[len(lines)-1])
			assert.Equal(t, 1, strings.Count(strings.Join(lines, "\n"), "PYBIND11_MODULE("))
		})
	}
}

func TestFilterInclusions(t *testing.T) {
	names := []string{"pcl/point_types.h", "pcl/memory.h", "pcl/io/pcd_io.h", "Eigen/Core", "boost/shared_ptr.hpp"}

	all, err := FilterInclusions(names, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, names, all)

	got, err := FilterInclusions(names, []string{"pcl/**"}, []string{"pcl/memory.h"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pcl/point_types.h", "pcl/io/pcd_io.h"}, got)

	shallow, err := FilterInclusions(names, []string{"pcl/*"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"pcl/point_types.h", "pcl/memory.h"}, shallow)

	_, err = FilterInclusions(names, []string{"pcl/["}, nil)
	require.Error(t, err)
	assert.True(t, bgerrors.IsCode(err, bgerrors.CodeValidationError))
}
