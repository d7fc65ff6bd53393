// Package loader parses raw document bytes into the tree model, detecting
// the input format.
package loader

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/oakwood-commons/treepick/pkg/tree"
)

// ErrEmptyInput is returned for blank input.
var ErrEmptyInput = errors.New("empty input")

// Load parses data into a single root value. It is the parser entry point
// used by the session controller and the HTTP server.
func Load(data []byte) (any, error) {
	return LoadRoot(string(data))
}

// LoadData loads structured data from a string, auto-detecting format.
// Supports:
//   - JWT tokens (3-part base64url-encoded tokens)
//   - Single JSON object/array
//   - Newline-delimited JSON (NDJSON): one JSON value per line
//   - TOML
//   - YAML: single document or multi-document (separated by ---), including
//     Unity serialized assets
//
// Every format returns one element per parsed document.
func LoadData(input string) ([]any, error) {
	input = strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if input == "" {
		return nil, ErrEmptyInput
	}

	if IsJWT(input) {
		return loadJWT(input)
	}

	if strings.Contains(input, "\n---") || strings.HasPrefix(input, "---") || strings.HasPrefix(input, "%YAML") {
		return loadYAMLDocs(input)
	}

	lines := strings.Split(input, "\n")
	if len(lines) > 1 && isLikelyNDJSON(lines) {
		return loadNDJSON(lines)
	}

	// TOML [section] headers look like JSON arrays, so check TOML first
	if isLikelyTOML(lines) {
		return loadTOML(input)
	}

	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		if v, err := DecodeJSON([]byte(input)); err == nil {
			return []any{v}, nil
		}
	}

	return loadYAMLDocs(input)
}

// LoadRoot parses input into a single root node. Multi-document inputs are
// returned as an array of documents.
func LoadRoot(input string) (any, error) {
	results, err := LoadData(input)
	if err != nil {
		return nil, err
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

// LoadFile reads a file and parses it into a single root node.
func LoadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// loadNDJSON parses newline-delimited JSON. Lines that are not valid JSON
// are kept as plain strings.
func loadNDJSON(lines []string) ([]any, error) {
	results := make([]any, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := DecodeJSON([]byte(line))
		if err != nil {
			results = append(results, line)
			continue
		}
		results = append(results, v)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no data found in input")
	}
	return results, nil
}

// isLikelyNDJSON requires several non-empty lines, most of which start like
// a JSON object or array. YAML lists ("- name") do not qualify.
func isLikelyNDJSON(lines []string) bool {
	jsonCount := 0
	nonEmptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmptyCount++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}
	return nonEmptyCount > 1 && jsonCount > nonEmptyCount/2
}

var (
	// [server], [[items]], ["table name"], [database.credentials]; not [1, 2, 3]
	tomlSection = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// name = "value", but not YAML's name: value
	tomlKeyValue = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// isLikelyTOML looks for section headers or a majority of key = value lines.
func isLikelyTOML(lines []string) bool {
	keyValueCount := 0
	nonEmptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++
		if tomlSection.MatchString(line) {
			return true
		}
		if tomlKeyValue.MatchString(line) {
			keyValueCount++
		}
	}
	return nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2
}

// loadTOML parses TOML. TOML tables carry no usable order once decoded, so
// keys come out sorted.
func loadTOML(input string) ([]any, error) {
	var data map[string]any
	if err := toml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return []any{tree.FromPlain(data)}, nil
}
