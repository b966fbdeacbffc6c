// Package binder walks a producer AST and emits pybind11 registration
// fragments for the declarations it finds.
package binder

import (
	"log/slog"

	"bindgen/internal/ast"
	bgerrors "bindgen/internal/core/errors"
	"bindgen/internal/emit"
	"bindgen/internal/registry"
	"bindgen/internal/scope"
	"bindgen/internal/typeres"
)

const DefaultMaxDepth = 512

type Options struct {
	Registry           *registry.Registry
	Normalizer         typeres.Normalizer
	DeprecationMarkers []string
	// MaxDepth bounds tree nesting; zero disables the bound.
	MaxDepth int
}

func DefaultOptions() Options {
	return Options{
		Registry:           registry.Default(),
		Normalizer:         typeres.DefaultNormalizer(),
		DeprecationMarkers: []string{"PCL_DEPRECATED"},
		MaxDepth:           DefaultMaxDepth,
	}
}

type Result struct {
	Header     string
	Fragments  []emit.Fragment
	Skipped    []emit.SkippedRecord
	Inclusions []string
}

// Visitor holds the configuration for traversals. It keeps no per-traversal
// state, so one Visitor may serve many Generate calls.
type Visitor struct {
	registry   *registry.Registry
	resolver   *typeres.Resolver
	deprecated map[string]bool
	maxDepth   int
}

// state is owned by a single traversal.
type state struct {
	scopes     *scope.Stack
	out        *emit.Emitter
	inclusions []string
	included   map[string]bool
}

type handlerFunc func(v *Visitor, n *ast.Node, st *state)

func NewVisitor(opts Options) *Visitor {
	reg := opts.Registry
	if reg == nil {
		reg = registry.Default()
	}
	deprecated := make(map[string]bool, len(opts.DeprecationMarkers))
	for _, m := range opts.DeprecationMarkers {
		deprecated[m] = true
	}
	return &Visitor{
		registry:   reg,
		resolver:   typeres.NewResolver(opts.Normalizer),
		deprecated: deprecated,
		maxDepth:   opts.MaxDepth,
	}
}

// Generate binds the tree rooted at root using opts.
func Generate(root *ast.Node, opts Options) (*Result, error) {
	return NewVisitor(opts).Generate(root)
}

func (v *Visitor) Generate(root *ast.Node) (*Result, error) {
	if err := ast.Validate(root, v.maxDepth); err != nil {
		return nil, err
	}
	if err := v.checkKinds(root); err != nil {
		return nil, err
	}

	st := &state{
		scopes:   scope.NewStack(),
		out:      emit.NewEmitter(),
		included: make(map[string]bool),
	}
	if err := v.visit(root, st); err != nil {
		return nil, err
	}
	if st.scopes.Len() != 0 {
		return nil, bgerrors.Newf(bgerrors.CodeInternal, "scope stack not empty after traversal (%d frames)", st.scopes.Len())
	}

	return &Result{
		Header:     root.HeaderName(),
		Fragments:  st.out.Fragments(),
		Skipped:    st.out.Skipped(),
		Inclusions: st.inclusions,
	}, nil
}

func (v *Visitor) visit(n *ast.Node, st *state) error {
	st.scopes.Push(n)

	policy, err := v.policyFor(n)
	if err != nil {
		return err
	}

	switch policy {
	case registry.EmitBinding:
		handler := handlerFor(n.Kind)
		if handler == nil {
			return bgerrors.AddContext(
				bgerrors.Newf(bgerrors.CodeInternal, "kind %s is registered for binding but has no handler", n.Kind),
				bgerrors.CtxKind, n.Kind.String())
		}
		handler(v, n, st)
	case registry.NeedsReview:
		st.out.Skip(n, emit.ReasonNeedsReview)
	}

	if policy.Walks() {
		for _, m := range n.Members {
			if err := v.visit(m, st); err != nil {
				return err
			}
		}
		v.closeScope(st)
	}

	st.scopes.Pop()
	return nil
}

// checkKinds resolves a policy for every node, including the subtrees the
// traversal never walks.
func (v *Visitor) checkKinds(n *ast.Node) error {
	if _, err := v.policyFor(n); err != nil {
		return err
	}
	for _, m := range n.Members {
		if err := v.checkKinds(m); err != nil {
			return err
		}
	}
	return nil
}

func (v *Visitor) policyFor(n *ast.Node) (registry.Policy, error) {
	if n.Kind == ast.KindUnknown {
		err := bgerrors.Newf(bgerrors.CodeUnhandledKind, "unknown node kind %q at %s", n.KindName(), n.Position())
		return registry.PolicyNone, bgerrors.AddContext(err, bgerrors.CtxKind, n.KindName())
	}
	policy, err := v.registry.PolicyFor(n.Kind)
	if err != nil {
		return registry.PolicyNone, bgerrors.AddContext(err, bgerrors.CtxLine, n.Line)
	}
	return policy, nil
}

// closeScope appends the closing token of the frame on top of the stack.
func (v *Visitor) closeScope(st *state) {
	top, ok := st.scopes.Top()
	if !ok {
		return
	}
	if tok := scope.CloseToken(top.Kind); tok != "" {
		st.out.Append(emit.FragmentScopeClose, tok)
	}
}

func handlerFor(k ast.Kind) handlerFunc {
	switch k {
	case ast.KindNamespace:
		return (*Visitor).handleNamespace
	case ast.KindStructDecl, ast.KindClassDecl:
		return (*Visitor).handleAggregate
	case ast.KindConstructor:
		return (*Visitor).handleConstructor
	case ast.KindInclusionDirective:
		return (*Visitor).handleInclusion
	default:
		return nil
	}
}

// TODO: collapse nested `namespace a::b` chains into one opening line.
func (v *Visitor) handleNamespace(n *ast.Node, st *state) {
	st.out.Append(emit.FragmentNamespaceOpen, namespaceOpen(n.Name))
}

func (v *Visitor) handleInclusion(n *ast.Node, st *state) {
	if n.Name == "" || st.included[n.Name] {
		return
	}
	st.included[n.Name] = true
	st.inclusions = append(st.inclusions, n.Name)
	slog.Debug("inclusion directive", "name", n.Name)
}
