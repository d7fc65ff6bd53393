package cel

import (
	"errors"
	"sort"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// ErrConstantPredicate is returned for an expression that reads no node
// variable and would match every node or none.
var ErrConstantPredicate = errors.New("expression must reference key, value, summary, path, depth or kind")

var nodeVars = map[string]bool{
	VarKey: true, VarValue: true, VarSummary: true,
	VarPath: true, VarDepth: true, VarKind: true,
}

// referencedVars returns the node variables expr reads, sorted.
func referencedVars(ast *cel.Ast) ([]string, error) {
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	collectIdents(parsed.GetExpr(), seen)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func collectIdents(e *exprpb.Expr, seen map[string]bool) {
	if e == nil {
		return
	}
	switch k := e.ExprKind.(type) {
	case *exprpb.Expr_IdentExpr:
		if name := k.IdentExpr.GetName(); nodeVars[name] {
			seen[name] = true
		}
	case *exprpb.Expr_SelectExpr:
		collectIdents(k.SelectExpr.GetOperand(), seen)
	case *exprpb.Expr_CallExpr:
		collectIdents(k.CallExpr.GetTarget(), seen)
		for _, arg := range k.CallExpr.GetArgs() {
			collectIdents(arg, seen)
		}
	case *exprpb.Expr_ListExpr:
		for _, el := range k.ListExpr.GetElements() {
			collectIdents(el, seen)
		}
	case *exprpb.Expr_StructExpr:
		for _, entry := range k.StructExpr.GetEntries() {
			collectIdents(entry.GetMapKey(), seen)
			collectIdents(entry.GetValue(), seen)
		}
	case *exprpb.Expr_ComprehensionExpr:
		c := k.ComprehensionExpr
		for _, sub := range []*exprpb.Expr{c.GetIterRange(), c.GetAccuInit(), c.GetLoopCondition(), c.GetLoopStep(), c.GetResult()} {
			collectIdents(sub, seen)
		}
	}
}
