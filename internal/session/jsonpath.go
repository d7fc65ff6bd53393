package session

import (
	"fmt"

	"github.com/theory/jsonpath"
	"github.com/theory/jsonpath/spec"

	"github.com/oakwood-commons/treepick/internal/pathindex"
	"github.com/oakwood-commons/treepick/pkg/tree"
)

// ResolveJSONPath returns the tree paths of every node expr selects, in the
// order the query produced them.
func (s *Session) ResolveJSONPath(expr string) ([]string, error) {
	p, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath %q: %w", expr, err)
	}
	located := p.SelectLocated(tree.ToPlain(s.doc))
	out := make([]string, 0, len(located))
	for _, ln := range located {
		if path, ok := treePath(ln.Path); ok && s.idx.Has(path) {
			out = append(out, path)
		}
	}
	return out, nil
}

// SelectJSONPath selects every node expr matches.
func (s *Session) SelectJSONPath(expr string) (Change, error) {
	paths, err := s.ResolveJSONPath(expr)
	if err != nil {
		return Change{}, err
	}
	ch := s.SelectPaths(paths)
	s.log.V(1).Info("jsonpath selection", "expr", expr, "matched", len(paths), "changed", len(ch.Paths))
	return ch, nil
}

func treePath(np spec.NormalizedPath) (string, bool) {
	path := pathindex.Root
	for _, sel := range np {
		switch v := sel.(type) {
		case spec.Name:
			path = pathindex.JoinKey(path, string(v))
		case spec.Index:
			path = pathindex.JoinIndex(path, int(v))
		default:
			return "", false
		}
	}
	return path, true
}
