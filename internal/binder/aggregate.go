package binder

import (
	"fmt"
	"log/slog"

	"bindgen/internal/ast"
	"bindgen/internal/emit"
)

// handleAggregate emits the registration chain of a struct or class: the
// class line, the default constructor, flattened anonymous fields, direct
// fields, then methods. Explicit constructors are appended by their own
// handler when the walk reaches them.
func (v *Visitor) handleAggregate(n *ast.Node, st *state) {
	norm := v.resolver.Normalizer()

	name := n.Name
	var bases []string
	for _, m := range n.Members {
		switch m.Kind {
		case ast.KindTypeRef:
			name = fmt.Sprintf("%s<%s>", n.Name, norm.Normalize(m.Name))
		case ast.KindCXXBaseSpecifier:
			bases = append(bases, m.Name)
		}
	}

	slog.Debug("binding aggregate", "scope", st.scopes.Path(), "name", name, "line", n.Line)
	st.out.Append(emit.FragmentRegistration, classRegistration(name, norm.NormalizeList(bases)))
	st.out.Append(emit.FragmentConstructor, defaultConstructor())

	for _, m := range n.Members {
		if !m.Kind.IsAnonymousAggregate() {
			continue
		}
		for _, field := range flattenAnonymous(m) {
			st.out.Append(emit.FragmentMember, fieldBinding(n.Name, field))
		}
	}

	for _, m := range n.Members {
		if m.Kind == ast.KindFieldDecl {
			st.out.Append(emit.FragmentMember, fieldBinding(n.Name, m))
		}
	}

	for _, m := range n.Members {
		if m.Kind != ast.KindCXXMethod {
			continue
		}
		if v.deprecated[m.Name] {
			st.out.Skip(m, emit.ReasonDeprecated)
			continue
		}
		st.out.Append(emit.FragmentMethod, method(n.Name, m.Name))
	}
}

func fieldBinding(owner string, field *ast.Node) string {
	if field.ElementType == ast.ElementConstantArray {
		return readOnlyArray(owner, field.Name)
	}
	return readWriteField(owner, field.Name)
}

// flattenAnonymous collects the fields of an anonymous union or struct,
// descending through nested anonymous wrappers in encounter order.
func flattenAnonymous(n *ast.Node) []*ast.Node {
	var fields []*ast.Node
	for _, m := range n.Members {
		switch {
		case m.Kind == ast.KindFieldDecl:
			fields = append(fields, m)
		case m.Kind.IsAnonymousAggregate():
			fields = append(fields, flattenAnonymous(m)...)
		}
	}
	return fields
}
