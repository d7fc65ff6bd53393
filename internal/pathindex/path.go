package pathindex

import (
	"regexp"
	"strconv"
	"strings"
)

// Root is the path of the document root.
const Root = "root"

var indexLike = regexp.MustCompile(`^\[\d+\]$`)

// Segment is one step of a path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// String renders the segment as it appears in a path, escaping keys.
func (s Segment) String() string {
	if s.IsIndex {
		return IndexSegment(s.Index)
	}
	return EscapeKey(s.Key)
}

// IndexSegment renders an array position as a path segment.
func IndexSegment(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// EscapeKey escapes an object key so the joined path splits unambiguously.
func EscapeKey(key string) string {
	if !strings.ContainsAny(key, `.\`) && !indexLike.MatchString(key) {
		return key
	}
	var b strings.Builder
	if indexLike.MatchString(key) {
		b.WriteByte('\\')
	}
	for _, r := range key {
		if r == '.' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// JoinKey appends an object key segment to parent.
func JoinKey(parent, key string) string {
	return parent + "." + EscapeKey(key)
}

// JoinIndex appends an array index segment to parent.
func JoinIndex(parent string, i int) string {
	return parent + "." + IndexSegment(i)
}

// Split parses a path into its segments, excluding the leading root segment.
// ok is false when the path does not start at root or has a dangling escape.
func Split(path string) (segs []Segment, ok bool) {
	if path == Root {
		return nil, true
	}
	if !strings.HasPrefix(path, Root+".") {
		return nil, false
	}
	rest := path[len(Root)+1:]
	var (
		cur     strings.Builder
		escaped bool
		literal bool
	)
	flush := func() {
		s := cur.String()
		if !literal && indexLike.MatchString(s) {
			n, _ := strconv.Atoi(s[1 : len(s)-1])
			segs = append(segs, Segment{Index: n, IsIndex: true})
		} else {
			segs = append(segs, Segment{Key: s})
		}
		cur.Reset()
		literal = false
	}
	for _, r := range rest {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			if cur.Len() == 0 {
				literal = true
			}
			escaped = true
		case r == '.':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		return nil, false
	}
	flush()
	return segs, true
}

// Join renders segments back into a rooted path.
func Join(segs []Segment) string {
	var b strings.Builder
	b.WriteString(Root)
	for _, s := range segs {
		b.WriteByte('.')
		b.WriteString(s.String())
	}
	return b.String()
}
