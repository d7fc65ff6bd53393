package settings

import (
	"context"
)

type runKey struct{}

// IntoContext attaches the settings of the current run to ctx.
func IntoContext(ctx context.Context, s *Run) context.Context {
	return context.WithValue(ctx, runKey{}, s)
}

// FromContext returns the run settings stored by IntoContext.
func FromContext(ctx context.Context) (*Run, bool) {
	s, ok := ctx.Value(runKey{}).(*Run)
	return s, ok && s != nil
}

// SetSource records where the document of the run came from. It reports
// false when ctx carries no run settings.
func SetSource(ctx context.Context, src Source) bool {
	run, ok := FromContext(ctx)
	if ok {
		run.Source = src
	}
	return ok
}
