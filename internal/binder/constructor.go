package binder

import (
	"bindgen/internal/ast"
	"bindgen/internal/emit"
	"bindgen/internal/typeres"
)

// handleConstructor appends an init registration for a constructor that
// takes parameters. The no-argument form is already emitted with the class.
func (v *Visitor) handleConstructor(n *ast.Node, st *state) {
	if _, ok := st.scopes.Enclosing(ast.KindStructDecl, ast.KindClassDecl); !ok {
		// out-of-line definition: there is no open registration chain to extend
		st.out.Skip(n, emit.ReasonOutsideAggregate)
		return
	}

	params := v.resolver.ResolveParams(n)
	for _, p := range params {
		if !p.Confident {
			st.out.Skip(p.Param, emit.ReasonUnresolvedType)
		}
	}
	if len(params) == 0 {
		return
	}
	st.out.Append(emit.FragmentConstructor, constructor(typeres.Join(params)))
}
