package scope

import (
	"strings"

	"bindgen/internal/ast"
)

type Frame struct {
	Kind  ast.Kind
	Name  string
	Depth int
}

// Stack records the frames of the nodes currently being visited, innermost
// last. One frame is pushed per visited node, so Len equals the recursion
// depth.
type Stack struct {
	frames []Frame
}

func NewStack() *Stack {
	return &Stack{frames: make([]Frame, 0, 16)}
}

func (s *Stack) Push(n *ast.Node) {
	s.frames = append(s.frames, Frame{Kind: n.Kind, Name: n.Name, Depth: n.Depth})
}

func (s *Stack) Pop() (Frame, bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top, true
}

func (s *Stack) Top() (Frame, bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

func (s *Stack) Len() int {
	return len(s.frames)
}

// Enclosing returns the innermost open frame of one of the given kinds.
func (s *Stack) Enclosing(kinds ...ast.Kind) (Frame, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		for _, k := range kinds {
			if s.frames[i].Kind == k {
				return s.frames[i], true
			}
		}
	}
	return Frame{}, false
}

// Path renders the open scope-introducing frames as a qualified name, for
// log output.
func (s *Stack) Path() string {
	parts := make([]string, 0, len(s.frames))
	for _, f := range s.frames {
		if IsScope(f.Kind) && f.Name != "" {
			parts = append(parts, f.Name)
		}
	}
	return strings.Join(parts, "::")
}

// IsScope reports whether k opens a lexical scope that needs a closing token.
func IsScope(k ast.Kind) bool {
	return CloseToken(k) != ""
}

// CloseToken returns the text that ends a scope of kind k, or "" when k does
// not introduce one.
func CloseToken(k ast.Kind) string {
	switch k {
	case ast.KindNamespace:
		return "}"
	case ast.KindStructDecl, ast.KindClassDecl:
		return ";"
	case ast.KindClassTemplate:
		return ";"
	default:
		return ""
	}
}
