package registry

import (
	"fmt"
	"sort"
	"strings"

	"bindgen/internal/ast"
	bgerrors "bindgen/internal/core/errors"
)

// Policy says how the binder treats a node kind.
type Policy int

const (
	// PolicyNone marks a missing entry; it is never stored in a registry.
	PolicyNone Policy = iota
	// EmitBinding kinds own a handler that appends fragments; their members
	// are walked.
	EmitBinding
	// DelegateToParent kinds are interpreted by an ancestor's handler; their
	// members are not walked.
	DelegateToParent
	// Ignore kinds produce nothing; their members are walked.
	Ignore
	// NeedsReview kinds are not classified yet; they are recorded as skipped
	// and their members are not walked.
	NeedsReview
)

func (p Policy) String() string {
	switch p {
	case EmitBinding:
		return "emit"
	case DelegateToParent:
		return "delegate"
	case Ignore:
		return "ignore"
	case NeedsReview:
		return "needs_review"
	default:
		return "none"
	}
}

// Walks reports whether the members of a node with this policy are visited
// by the traversal.
func (p Policy) Walks() bool {
	return p == EmitBinding || p == Ignore
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "emit", "emit_binding":
		return EmitBinding, nil
	case "delegate", "delegate_to_parent":
		return DelegateToParent, nil
	case "ignore":
		return Ignore, nil
	case "needs_review", "review":
		return NeedsReview, nil
	default:
		return PolicyNone, fmt.Errorf("unknown policy %q", s)
	}
}

// Registry maps every node kind to its policy.
type Registry struct {
	policies map[ast.Kind]Policy
}

// DefaultPolicy returns the built-in policy for k.
func DefaultPolicy(k ast.Kind) (Policy, bool) {
	switch k {
	case ast.KindNamespace,
		ast.KindConstructor,
		ast.KindInclusionDirective,
		ast.KindStructDecl,
		ast.KindClassDecl:
		return EmitBinding, true

	case ast.KindCXXBaseSpecifier,
		ast.KindCXXMethod,
		ast.KindParmDecl,
		ast.KindFieldDecl,
		ast.KindAnonymousUnionDecl,
		ast.KindAnonymousStructDecl,
		ast.KindNamespaceRef,
		ast.KindTypeRef,
		ast.KindTemplateNonTypeParameter:
		return DelegateToParent, true

	case ast.KindTranslationUnit,
		ast.KindVarDecl,
		ast.KindCallExpr,
		ast.KindArraySubscriptExpr,
		ast.KindCXXThrowExpr,
		ast.KindInitListExpr,
		ast.KindCXXNullPtrLiteralExpr,
		ast.KindCXXStaticCastExpr,
		ast.KindParenExpr,
		ast.KindCXXDeleteExpr,
		ast.KindStringLiteral,
		ast.KindObjCStringLiteral,
		ast.KindAlignedAttr,
		ast.KindBinaryOperator,
		ast.KindUnaryOperator,
		ast.KindMemberRef,
		ast.KindVariableRef,
		ast.KindCompoundStmt,
		ast.KindReturnStmt,
		ast.KindIfStmt,
		ast.KindForStmt,
		ast.KindSwitchStmt,
		ast.KindCaseStmt,
		ast.KindDefaultStmt,
		ast.KindCXXTryStmt,
		ast.KindCXXCatchStmt:
		return Ignore, true

	case ast.KindFriendDecl,
		ast.KindFunctionDecl,
		ast.KindUnexposedExpr,
		ast.KindMemberRefExpr,
		ast.KindDeclRefExpr,
		ast.KindObjBoolLiteralExpr,
		ast.KindIntegerLiteral,
		ast.KindFloatingLiteral,
		ast.KindMacroDefinition,
		ast.KindMacroInstantiation,
		ast.KindOverloadedDeclRef,
		ast.KindTemplateRef,
		ast.KindDeclStmt,
		ast.KindClassTemplate,
		ast.KindFunctionTemplate,
		ast.KindAnonymousEnumDecl:
		return NeedsReview, true
	}
	return PolicyNone, false
}

func Default() *Registry {
	r := &Registry{policies: make(map[ast.Kind]Policy)}
	for _, k := range ast.Kinds() {
		if p, ok := DefaultPolicy(k); ok {
			r.policies[k] = p
		}
	}
	return r
}

// Build returns the default registry with overrides applied. Overrides are
// keyed by kind name and may move a kind between delegate, ignore and
// needs_review; a kind cannot be promoted to emit or demoted from it since
// handlers are fixed.
func Build(overrides map[string]string) (*Registry, error) {
	r := Default()
	for _, name := range sortedKeys(overrides) {
		kind, ok := ast.ParseKind(name)
		if !ok {
			return nil, bgerrors.Newf(bgerrors.CodeValidationError, "unknown kind override %q", name)
		}
		policy, err := ParsePolicy(overrides[name])
		if err != nil {
			return nil, bgerrors.Wrap(err, bgerrors.CodeValidationError, "kind override "+name)
		}
		if policy == EmitBinding {
			return nil, bgerrors.Newf(bgerrors.CodeNotSupported, "kind %s has no binding handler", name)
		}
		if r.policies[kind] == EmitBinding {
			return nil, bgerrors.Newf(bgerrors.CodeNotSupported, "kind %s owns a binding handler and cannot be overridden", name)
		}
		r.policies[kind] = policy
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// PolicyFor returns the policy for k. A kind without an entry is a hard
// failure.
func (r *Registry) PolicyFor(k ast.Kind) (Policy, error) {
	if p, ok := r.policies[k]; ok {
		return p, nil
	}
	return PolicyNone, bgerrors.AddContext(
		bgerrors.Newf(bgerrors.CodeUnhandledKind, "no registry entry for kind %s", k),
		bgerrors.CtxKind, k.String())
}

// Validate checks that every known kind has a policy.
func (r *Registry) Validate() error {
	var missing []string
	for _, k := range ast.Kinds() {
		if _, ok := r.policies[k]; !ok {
			missing = append(missing, k.String())
		}
	}
	if len(missing) > 0 {
		return bgerrors.Newf(bgerrors.CodeInternal, "registry has no entry for %s", strings.Join(missing, ", "))
	}
	return nil
}

// Count returns how many kinds are registered under each policy.
func (r *Registry) Count() map[Policy]int {
	out := make(map[Policy]int, 4)
	for _, p := range r.policies {
		out[p]++
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
