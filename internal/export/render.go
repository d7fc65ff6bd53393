package export

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/treepick/internal/pathindex"
	"github.com/oakwood-commons/treepick/pkg/tree"
)

// TreeOptions controls RenderTree output.
type TreeOptions struct {
	// NoValues hides leaf values (structure only).
	NoValues bool
	// MaxDepth limits depth (0 = unlimited).
	MaxDepth int
}

// RenderTree draws doc as an ASCII tree with summaries at the leaves.
func RenderTree(doc any, opts TreeOptions) string {
	root := treeprint.NewWithRoot(pathindex.Root)
	addChildren(root, doc, opts, 0)
	return root.String()
}

func addChildren(branch treeprint.Tree, v any, opts TreeOptions, depth int) {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		if tree.Len(v) > 0 {
			branch.AddNode("...")
		}
		return
	}
	switch t := v.(type) {
	case *tree.Object:
		for _, k := range t.Keys() {
			child, _ := t.Get(k)
			addValue(branch, k, child, opts, depth)
		}
	case []any:
		for i, child := range t {
			addValue(branch, pathindex.IndexSegment(i), child, opts, depth)
		}
	}
}

func addValue(branch treeprint.Tree, label string, v any, opts TreeOptions, depth int) {
	if tree.Len(v) == 0 {
		if opts.NoValues {
			branch.AddNode(label)
			return
		}
		branch.AddNode(fmt.Sprintf("%s: %s", label, pathindex.Summarize(v)))
		return
	}
	child := branch.AddBranch(label)
	addChildren(child, v, opts, depth+1)
}
