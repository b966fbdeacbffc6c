// Package typeres rebuilds C++ type names from the reference nodes the
// producer hangs under parameters and declarations.
package typeres

import (
	"strings"

	"bindgen/internal/ast"
)

const scopeSeparator = "::"

// builtinTypes maps clang builtin type categories to their C++ spelling.
var builtinTypes = map[string]string{
	"Bool":       "bool",
	"Char_S":     "char",
	"Char_U":     "char",
	"SChar":      "signed char",
	"UChar":      "unsigned char",
	"Short":      "short",
	"UShort":     "unsigned short",
	"Int":        "int",
	"UInt":       "unsigned int",
	"Long":       "long",
	"ULong":      "unsigned long",
	"LongLong":   "long long",
	"ULongLong":  "unsigned long long",
	"Float":      "float",
	"Double":     "double",
	"LongDouble": "long double",
}

// Normalizer strips elaboration keywords and known library namespaces from
// type names.
type Normalizer struct {
	Keywords   []string
	Namespaces []string
}

func DefaultNormalizer() Normalizer {
	return Normalizer{
		Keywords:   []string{"struct "},
		Namespaces: []string{"pcl::"},
	}
}

func (n Normalizer) Normalize(name string) string {
	for _, kw := range n.Keywords {
		if kw != "" {
			name = strings.ReplaceAll(name, kw, "")
		}
	}
	for _, ns := range n.Namespaces {
		if ns != "" {
			name = strings.ReplaceAll(name, ns, "")
		}
	}
	return name
}

// NormalizeList normalizes each name and joins them with ",".
func (n Normalizer) NormalizeList(names []string) string {
	return n.Normalize(strings.Join(names, ","))
}

type Resolved struct {
	Text string
	// Confident is false when Text is a best-effort fallback.
	Confident bool
	// Param is the PARM_DECL the text was rebuilt from.
	Param *ast.Node
}

type Resolver struct {
	norm Normalizer
}

func NewResolver(norm Normalizer) *Resolver {
	return &Resolver{norm: norm}
}

func (r *Resolver) Normalizer() Normalizer {
	return r.norm
}

// ResolveParam reconstructs the type of a PARM_DECL from its members.
func (r *Resolver) ResolveParam(param *ast.Node) Resolved {
	res := r.resolve(param)
	res.Param = param
	return res
}

func (r *Resolver) resolve(param *ast.Node) Resolved {
	switch param.ElementType {
	case ast.ElementLValueReference:
		if ref := lastTypeRef(param); ref != nil {
			return Resolved{Text: r.norm.Normalize(ref.Name) + " &", Confident: true}
		}
	case ast.ElementElaborated:
		if text, ok := qualifiedName(param); ok {
			return Resolved{Text: text, Confident: true}
		}
	default:
		if spelled, ok := builtinTypes[param.ElementType]; ok {
			return Resolved{Text: spelled, Confident: true}
		}
	}
	return Resolved{Text: param.ElementType}
}

// ResolveParams resolves every PARM_DECL member of fn in declaration order.
func (r *Resolver) ResolveParams(fn *ast.Node) []Resolved {
	var out []Resolved
	for _, m := range fn.Members {
		if m.Kind == ast.KindParmDecl {
			out = append(out, r.ResolveParam(m))
		}
	}
	return out
}

// qualifiedName accumulates NAMESPACE_REF members into a prefix and appends
// the TYPE_REF that follows them.
func qualifiedName(n *ast.Node) (string, bool) {
	var prefix strings.Builder
	text, found := "", false
	for _, m := range n.Members {
		switch m.Kind {
		case ast.KindNamespaceRef:
			prefix.WriteString(m.Name)
			prefix.WriteString(scopeSeparator)
		case ast.KindTypeRef:
			text, found = prefix.String()+m.Name, true
		}
	}
	return text, found
}

func lastTypeRef(n *ast.Node) *ast.Node {
	var ref *ast.Node
	for _, m := range n.Members {
		if m.Kind == ast.KindTypeRef {
			ref = m
		}
	}
	return ref
}

// Join renders resolved types as a template argument list.
func Join(types []Resolved) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.Text
	}
	return strings.Join(parts, ",")
}
