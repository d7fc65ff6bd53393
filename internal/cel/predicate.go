package cel

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/interpreter"

	"github.com/oakwood-commons/treepick/internal/pathindex"
	"github.com/oakwood-commons/treepick/pkg/tree"
)

// ErrNotPredicate is returned when an expression does not produce a bool.
var ErrNotPredicate = errors.New("expression must evaluate to a bool")

// Predicate is a compiled boolean expression over one node.
type Predicate struct {
	expr string
	vars []string
	prg  cel.Program
}

// Compile parses and type-checks expr.
func Compile(expr string) (*Predicate, error) {
	env, err := newNodeEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	switch ast.OutputType().String() {
	case "bool", "dyn":
	default:
		return nil, fmt.Errorf("%w, got %s", ErrNotPredicate, ast.OutputType())
	}
	vars, err := referencedVars(ast)
	if err != nil {
		return nil, fmt.Errorf("compilation error: %w", err)
	}
	if len(vars) == 0 {
		return nil, ErrConstantPredicate
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Predicate{expr: expr, vars: vars, prg: prg}, nil
}

// String returns the source expression.
func (p *Predicate) String() string { return p.expr }

// Vars lists the node variables the predicate reads, sorted.
func (p *Predicate) Vars() []string { return p.vars }

// Match evaluates the predicate for n. Evaluation errors, such as selecting
// a field of a scalar, are returned and callers treat them as no match.
func (p *Predicate) Match(n *pathindex.Node) (bool, error) {
	out, _, err := p.prg.Eval(&nodeActivation{node: n})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w, got %T", ErrNotPredicate, out.Value())
	}
	return b, nil
}

// nodeActivation resolves variables on demand so that value is only
// converted for predicates that read it.
type nodeActivation struct {
	node  *pathindex.Node
	value any
	done  bool
}

func (a *nodeActivation) ResolveName(name string) (any, bool) {
	n := a.node
	switch name {
	case VarKey:
		return n.Name, true
	case VarSummary:
		return n.Summary, true
	case VarPath:
		return n.Path, true
	case VarDepth:
		return int64(n.Depth), true
	case VarKind:
		return n.Kind.String(), true
	case VarValue:
		if !a.done {
			a.value = tree.ToPlain(n.Value)
			a.done = true
		}
		return a.value, true
	}
	return nil, false
}

func (a *nodeActivation) Parent() interpreter.Activation { return nil }
