// Package respath implements response paths: immutable linked lists of field
// names and list indices that locate a value or an error in the response tree.
//
// A nil *Path is the root. Children point to their parent and are never
// mutated after construction, so branches share their common prefix and can be
// handed to concurrent goroutines without copying.
package respath

import (
	"strconv"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

type Path struct {
	parent  *Path
	key     string
	index   int
	isIndex bool
	// ordinal is the position of the segment among its siblings: the index of
	// the response key in its grouped field set, or the list index.
	ordinal int
	depth   int
}

// WithKey returns a child path for the response key at the given ordinal
// position of its selection set.
func (p *Path) WithKey(key string, ordinal int) *Path {
	return &Path{parent: p, key: key, ordinal: ordinal, depth: p.Len() + 1}
}

// WithIndex returns a child path for a list element.
func (p *Path) WithIndex(index int) *Path {
	return &Path{parent: p, index: index, isIndex: true, ordinal: index, depth: p.Len() + 1}
}

func (p *Path) Parent() *Path {
	if p == nil {
		return nil
	}
	return p.parent
}

// Len returns the number of segments.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return p.depth
}

// Key returns the response key of the last segment, or "" for an index segment.
func (p *Path) Key() string {
	if p == nil || p.isIndex {
		return ""
	}
	return p.key
}

// Index returns the list index of the last segment and whether it is one.
func (p *Path) Index() (int, bool) {
	if p == nil || !p.isIndex {
		return 0, false
	}
	return p.index, true
}

// Segments returns the path as a slice of string and int values, root first.
func (p *Path) Segments() []any {
	out := make([]any, p.Len())
	for cur := p; cur != nil; cur = cur.parent {
		if cur.isIndex {
			out[cur.depth-1] = cur.index
		} else {
			out[cur.depth-1] = cur.key
		}
	}
	return out
}

// AsAST converts the path into the gqlparser representation used by
// gqlerror.Error.
func (p *Path) AsAST() ast.Path {
	if p == nil {
		return nil
	}
	out := make(ast.Path, p.Len())
	for cur := p; cur != nil; cur = cur.parent {
		if cur.isIndex {
			out[cur.depth-1] = ast.PathIndex(cur.index)
		} else {
			out[cur.depth-1] = ast.PathName(cur.key)
		}
	}
	return out
}

func (p *Path) String() string {
	var b strings.Builder
	for i, seg := range p.Segments() {
		switch v := seg.(type) {
		case int:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v))
			b.WriteByte(']')
		case string:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		}
	}
	return b.String()
}

func (p *Path) ordinals() []int {
	out := make([]int, p.Len())
	for cur := p; cur != nil; cur = cur.parent {
		out[cur.depth-1] = cur.ordinal
	}
	return out
}

// Compare orders two paths by their position in the response: siblings by
// ordinal, and a prefix before its descendants. It returns -1, 0 or +1.
func Compare(a, b *Path) int {
	ao, bo := a.ordinals(), b.ordinals()
	for i := 0; i < len(ao) && i < len(bo); i++ {
		if ao[i] != bo[i] {
			if ao[i] < bo[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ao) < len(bo):
		return -1
	case len(ao) > len(bo):
		return 1
	}
	return 0
}
