package lazyview

import (
	"github.com/oakwood-commons/treepick/internal/pathset"
	"github.com/oakwood-commons/treepick/internal/schedule"
)

// Batch is a chunked row refresh. Each Step applies one chunk; a batch whose
// token was superseded applies nothing.
type Batch struct {
	view   *View
	token  schedule.Token
	chunks [][]string
}

// Token identifies the batch.
func (b *Batch) Token() schedule.Token { return b.token }

// Remaining reports how many chunks are left.
func (b *Batch) Remaining() int { return len(b.chunks) }

// Stale reports whether a newer batch replaced b.
func (b *Batch) Stale() bool { return !b.view.gen.IsCurrent(b.token) }

// Step applies the next chunk and reports whether more remain.
func (b *Batch) Step() bool {
	if b.Stale() || len(b.chunks) == 0 {
		return false
	}
	b.view.refresh(b.chunks[0])
	b.chunks = b.chunks[1:]
	if len(b.chunks) == 0 {
		b.view.pending = nil
		return false
	}
	return true
}

// Propagate refreshes the rows bound to paths. Small updates apply at once
// and return nil. Larger ones return a batch to be stepped on later turns;
// it absorbs whatever an unfinished earlier batch still had to apply.
func (v *View) Propagate(paths []string) *Batch {
	var bound []string
	for _, p := range paths {
		if _, ok := v.rows[p]; ok {
			bound = append(bound, p)
		}
	}
	if len(bound) < v.opts.BatchThreshold {
		v.refresh(bound)
		return nil
	}
	if v.pending != nil && !v.pending.Stale() {
		seen := pathset.New(bound...)
		for _, chunk := range v.pending.chunks {
			for _, p := range chunk {
				if !seen.Has(p) {
					seen.Add(p)
					bound = append(bound, p)
				}
			}
		}
	}
	b := &Batch{
		view:   v,
		token:  v.gen.Next(),
		chunks: schedule.Chunk(bound, v.opts.BatchSize),
	}
	v.pending = b
	return b
}

// Pending returns the batch still being applied, if any.
func (v *View) Pending() *Batch {
	if v.pending == nil || v.pending.Stale() || len(v.pending.chunks) == 0 {
		return nil
	}
	return v.pending
}

// StepPending advances the pending batch if tok still identifies it.
func (v *View) StepPending(tok schedule.Token) bool {
	b := v.Pending()
	if b == nil || b.token != tok {
		return false
	}
	return b.Step()
}

// RefreshAll rebinds every materialized row synchronously and drops any
// pending batch.
func (v *View) RefreshAll() {
	v.gen.Cancel()
	v.pending = nil
	for _, r := range v.rows {
		v.bind(r)
	}
}

func (v *View) refresh(paths []string) {
	for _, p := range paths {
		if r, ok := v.rows[p]; ok {
			v.bind(r)
		}
	}
}
