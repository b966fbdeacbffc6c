package emit

import (
	"log/slog"

	"bindgen/internal/ast"
)

type FragmentKind int

const (
	FragmentPreamble FragmentKind = iota
	FragmentInclude
	FragmentModuleOpen
	FragmentNamespaceOpen
	FragmentRegistration
	FragmentConstructor
	FragmentMember
	FragmentMethod
	FragmentScopeClose
	FragmentModuleClose
)

func (k FragmentKind) String() string {
	switch k {
	case FragmentPreamble:
		return "preamble"
	case FragmentInclude:
		return "include"
	case FragmentModuleOpen:
		return "module_open"
	case FragmentNamespaceOpen:
		return "namespace_open"
	case FragmentRegistration:
		return "registration"
	case FragmentConstructor:
		return "constructor"
	case FragmentMember:
		return "member"
	case FragmentMethod:
		return "method"
	case FragmentScopeClose:
		return "scope_close"
	case FragmentModuleClose:
		return "module_close"
	default:
		return "unknown"
	}
}

// Fragment is one line of generated binding text.
type Fragment struct {
	Kind FragmentKind
	Text string
}

type Reason string

const (
	ReasonNeedsReview    Reason = "needs_review"
	ReasonDeprecated     Reason = "deprecated"
	ReasonUnresolvedType Reason = "unresolved_type"
	// ReasonOutsideAggregate marks constructors met outside any struct or
	// class scope.
	ReasonOutsideAggregate Reason = "outside_aggregate"
)

// SkippedRecord notes a node the binder did not bind. It never affects the
// generated text.
type SkippedRecord struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Reason Reason `json:"reason"`
}

// Emitter is the append-only fragment log of one traversal.
type Emitter struct {
	fragments []Fragment
	skipped   []SkippedRecord
}

func NewEmitter() *Emitter {
	return &Emitter{}
}

func (e *Emitter) Append(kind FragmentKind, text string) {
	e.fragments = append(e.fragments, Fragment{Kind: kind, Text: text})
}

func (e *Emitter) Skip(n *ast.Node, reason Reason) {
	rec := SkippedRecord{
		Line:   n.Line,
		Column: n.Column,
		Kind:   n.KindName(),
		Name:   n.Name,
		Reason: reason,
	}
	slog.Debug("skipped node", "kind", rec.Kind, "name", rec.Name, "line", rec.Line, "reason", rec.Reason)
	e.skipped = append(e.skipped, rec)
}

func (e *Emitter) Fragments() []Fragment {
	return e.fragments
}

func (e *Emitter) Skipped() []SkippedRecord {
	return e.skipped
}

// Lines serializes fragments to plain text, one line each.
func Lines(fragments []Fragment) []string {
	out := make([]string, len(fragments))
	for i, f := range fragments {
		out[i] = f.Text
	}
	return out
}

// CountByReason tallies skipped records per reason.
func CountByReason(records []SkippedRecord) map[Reason]int {
	out := make(map[Reason]int)
	for _, r := range records {
		out[r.Reason]++
	}
	return out
}
