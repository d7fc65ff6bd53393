// Package schedule provides generation tokens for deferred work that may be
// superseded before it runs (debounced searches, chunked row updates).
package schedule

// Token identifies one scheduled unit of work. The zero Token is never current.
type Token uint64

// Generation hands out tokens; only the most recent one is current.
type Generation struct {
	cur Token
}

// Next supersedes any outstanding token and returns a fresh one.
func (g *Generation) Next() Token {
	g.cur++
	return g.cur
}

// Current returns the latest token, or zero when none was issued.
func (g *Generation) Current() Token { return g.cur }

// IsCurrent reports whether t is the latest issued token.
func (g *Generation) IsCurrent(t Token) bool {
	return t != 0 && t == g.cur
}

// Cancel invalidates every outstanding token.
func (g *Generation) Cancel() { g.cur++ }

// Chunk splits paths into consecutive slices of at most size entries.
func Chunk(paths []string, size int) [][]string {
	if size <= 0 {
		size = len(paths)
	}
	var out [][]string
	for start := 0; start < len(paths); start += size {
		end := start + size
		if end > len(paths) {
			end = len(paths)
		}
		out = append(out, paths[start:end])
	}
	return out
}
