package assemble

import (
	"fmt"
	"strings"

	"bindgen/internal/binder"
	bgerrors "bindgen/internal/core/errors"
	"bindgen/internal/emit"

	"github.com/gobwas/glob"
)

// DefaultPreamble is written after the header include of every module.
var DefaultPreamble = []string{
	"#include <pybind11/pybind11.h>",
	"#include <pybind11/stl.h>",
	"#include <pybind11/stl_bind.h>",
	"namespace py = pybind11;",
	"using namespace py::literals;",
}

type Options struct {
	Module   string
	Preamble []string
	// Inclusions are extra headers written after the preamble.
	Inclusions []string
}

// Assemble wraps the fragments of r into a complete binding module and
// verifies that the result is balanced.
func Assemble(r *binder.Result, opts Options) ([]string, error) {
	out, err := moduleFragments(r, opts)
	if err != nil {
		return nil, err
	}
	lines := emit.Lines(out)
	if err := VerifyBalance(lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// moduleFragments lays out the header include, the preamble, the extra
// inclusions and the wrapped body in output order.
func moduleFragments(r *binder.Result, opts Options) ([]emit.Fragment, error) {
	if r == nil {
		return nil, bgerrors.New(bgerrors.CodeInvalidInput, "nothing to assemble")
	}
	if strings.TrimSpace(opts.Module) == "" {
		return nil, bgerrors.New(bgerrors.CodeValidationError, "module name must not be empty")
	}
	preamble := opts.Preamble
	if preamble == nil {
		preamble = DefaultPreamble
	}

	body := wrapModule(r.Fragments, opts.Module)

	out := make([]emit.Fragment, 0, len(body)+len(preamble)+len(opts.Inclusions)+1)
	out = append(out, emit.Fragment{Kind: emit.FragmentInclude, Text: includeLine(r.Header)})
	for _, p := range preamble {
		out = append(out, emit.Fragment{Kind: emit.FragmentPreamble, Text: p})
	}
	for _, inc := range opts.Inclusions {
		out = append(out, emit.Fragment{Kind: emit.FragmentInclude, Text: includeLine(inc)})
	}
	return append(out, body...), nil
}

// wrapModule opens the module declaration in front of the first fragment
// that is not a namespace opening and closes it at the end.
func wrapModule(fragments []emit.Fragment, module string) []emit.Fragment {
	open := moduleOpen(module)
	out := make([]emit.Fragment, 0, len(fragments)+2)
	opened := false
	for _, f := range fragments {
		if !opened && f.Kind != emit.FragmentNamespaceOpen {
			f = emit.Fragment{Kind: f.Kind, Text: open + f.Text}
			opened = true
		}
		out = append(out, f)
	}
	if !opened {
		out = append(out, emit.Fragment{Kind: emit.FragmentModuleOpen, Text: open})
	}
	return append(out, emit.Fragment{Kind: emit.FragmentModuleClose, Text: "}"})
}

func moduleOpen(module string) string {
	return fmt.Sprintf("PYBIND11_MODULE(%s, m){", module)
}

func includeLine(header string) string {
	return fmt.Sprintf("#include <%s>", header)
}

// VerifyBalance checks that braces never close more than is open and that
// every brace opened is closed.
func VerifyBalance(lines []string) error {
	depth := 0
	for i, line := range lines {
		for _, r := range line {
			switch r {
			case '{':
				depth++
			case '}':
				depth--
				if depth < 0 {
					return bgerrors.AddContext(
						bgerrors.Newf(bgerrors.CodeInternal, "unbalanced output: stray '}' on line %d", i+1),
						bgerrors.CtxLine, i+1)
				}
			}
		}
	}
	if depth != 0 {
		return bgerrors.Newf(bgerrors.CodeInternal, "unbalanced output: %d unclosed '{'", depth)
	}
	return nil
}

// FilterInclusions keeps the names matching any allow pattern and no block
// pattern. An empty allow list admits everything.
func FilterInclusions(names, allow, block []string) ([]string, error) {
	allowGlobs, err := compileAll(allow)
	if err != nil {
		return nil, err
	}
	blockGlobs, err := compileAll(block)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		if len(allowGlobs) > 0 && !matchAny(allowGlobs, name) {
			continue
		}
		if matchAny(blockGlobs, name) {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, bgerrors.Wrap(err, bgerrors.CodeValidationError, fmt.Sprintf("invalid inclusion pattern %q", p))
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
