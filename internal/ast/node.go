package ast

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	bgerrors "bindgen/internal/core/errors"
)

// Element type tags written by the producer for the types the binder
// inspects.
const (
	ElementConstantArray   = "ConstantArray"
	ElementLValueReference = "LValueReference"
	ElementElaborated      = "Elaborated"
)

type Node struct {
	Kind        Kind
	RawKind     string // kind name as read from the input
	Name        string
	ElementType string
	Members     []*Node
	Depth       int
	Line        int
	Column      int
}

type wireNode struct {
	Kind        string  `json:"kind"`
	Name        string  `json:"name"`
	ElementType string  `json:"element_type"`
	Members     []*Node `json:"members"`
	Depth       int     `json:"depth"`
	Line        int     `json:"line"`
	Column      int     `json:"column"`
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind, _ := ParseKind(w.Kind)
	*n = Node{
		Kind:        kind,
		RawKind:     w.Kind,
		Name:        w.Name,
		ElementType: w.ElementType,
		Members:     w.Members,
		Depth:       w.Depth,
		Line:        w.Line,
		Column:      w.Column,
	}
	return nil
}

// KindName returns the name the producer used for this node's kind.
func (n *Node) KindName() string {
	if n.RawKind != "" {
		return n.RawKind
	}
	return n.Kind.String()
}

// IsEmpty reports whether n carries no usable content.
func (n *Node) IsEmpty() bool {
	return n == nil || (n.RawKind == "" && n.Kind == KindUnknown && n.Name == "" && len(n.Members) == 0)
}

// HeaderName returns the file name of the header a translation unit was
// parsed from.
func (n *Node) HeaderName() string {
	name := strings.ReplaceAll(n.Name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func (n *Node) Position() string {
	return fmt.Sprintf("%d:%d", n.Line, n.Column)
}

// Decode reads a single AST document.
func Decode(r io.Reader) (*Node, error) {
	var root *Node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		if err == io.EOF {
			return nil, bgerrors.New(bgerrors.CodeInvalidInput, "empty json")
		}
		return nil, bgerrors.Wrap(err, bgerrors.CodeInvalidInput, "decode ast")
	}
	if root.IsEmpty() {
		return nil, bgerrors.New(bgerrors.CodeInvalidInput, "empty json")
	}
	return root, nil
}

// Load decodes the AST document at path.
func Load(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, bgerrors.AddContext(
			bgerrors.Wrap(err, bgerrors.CodeNotFound, "open ast"), bgerrors.CtxPath, path)
	}
	defer f.Close()

	root, err := Decode(f)
	if err != nil {
		return nil, bgerrors.AddContext(err, bgerrors.CtxPath, path)
	}
	return root, nil
}

// Validate checks the depth invariant (every member sits one level below its
// parent) and that the tree does not nest deeper than maxDepth levels. A
// maxDepth of zero disables the depth bound.
func Validate(root *Node, maxDepth int) error {
	if root.IsEmpty() {
		return bgerrors.New(bgerrors.CodeInvalidInput, "empty tree")
	}
	return validate(root, root.Depth, 0, maxDepth)
}

func validate(n *Node, want, level, maxDepth int) error {
	if n == nil {
		return bgerrors.Newf(bgerrors.CodeInvalidInput, "nil member at depth %d", want)
	}
	if maxDepth > 0 && level > maxDepth {
		return bgerrors.Newf(bgerrors.CodeInvalidInput, "tree nests deeper than %d levels", maxDepth)
	}
	if n.Depth != want {
		err := bgerrors.Newf(bgerrors.CodeInvalidInput,
			"%s %q has depth %d, expected %d", n.KindName(), n.Name, n.Depth, want)
		return bgerrors.AddContext(err, bgerrors.CtxLine, n.Line)
	}
	for _, m := range n.Members {
		if err := validate(m, want+1, level+1, maxDepth); err != nil {
			return err
		}
	}
	return nil
}
