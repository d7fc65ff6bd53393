// Package cel compiles CEL predicates that are evaluated against individual
// document nodes.
package cel

import (
	"github.com/google/cel-go/cel"
	celext "github.com/google/cel-go/ext"
)

// Variables visible to a node predicate.
const (
	VarKey     = "key"
	VarValue   = "value"
	VarSummary = "summary"
	VarPath    = "path"
	VarDepth   = "depth"
	VarKind    = "kind"
)

// newNodeEnv creates the CEL environment for node predicates with the
// common extension libraries enabled.
func newNodeEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 10+len(opts))
	allOpts = append(allOpts,
		cel.Variable(VarKey, cel.StringType),
		cel.Variable(VarValue, cel.DynType),
		cel.Variable(VarSummary, cel.StringType),
		cel.Variable(VarPath, cel.StringType),
		cel.Variable(VarDepth, cel.IntType),
		cel.Variable(VarKind, cel.StringType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}
