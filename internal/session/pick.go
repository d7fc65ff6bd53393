package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oakwood-commons/treepick/internal/export"
	"github.com/oakwood-commons/treepick/internal/search"
)

// Format names an export rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTree Format = "tree"
)

// ErrUnknownFormat is returned for a format other than json, yaml or tree.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts json, yaml (or yml) and tree, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "tree":
		return FormatTree, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Pick is a non-interactive selection: an optional search that filters the
// document, then explicit paths and JSONPath queries to select.
type Pick struct {
	Search     string
	Expression bool
	// SelectMatched selects every search hit.
	SelectMatched bool
	Paths         []string
	JSONPath      []string
}

// Apply runs p against the session. The search is applied first so the
// export is limited to the filtered part of the document.
func (s *Session) Apply(p Pick) error {
	if p.Expression {
		opts := s.opts.Search
		opts.Mode = search.ModeExpression
		if err := s.SetMatchOptions(opts); err != nil {
			return err
		}
	}
	if p.Search != "" {
		if err := s.RunSearch(p.Search); err != nil {
			return err
		}
	}
	if p.SelectMatched {
		s.SelectMatched()
	}
	if len(p.Paths) > 0 {
		s.SelectPaths(p.Paths)
	}
	for _, expr := range p.JSONPath {
		if _, err := s.SelectJSONPath(expr); err != nil {
			return err
		}
	}
	return nil
}

// Render exports the selection in format f.
func (s *Session) Render(f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return s.ExportJSON()
	case FormatYAML:
		return s.ExportYAML()
	case FormatTree:
		out, err := s.Export()
		if err != nil {
			return nil, err
		}
		return []byte(export.RenderTree(out, export.TreeOptions{}) + "\n"), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
