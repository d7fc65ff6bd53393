package loader

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/treepick/pkg/tree"
)

// maxAliasExpansions bounds alias expansion so a small document cannot
// expand into an enormous tree.
const maxAliasExpansions = 10000

var (
	verbatimTag = regexp.MustCompile(`!(<[^>]*>)`)
	// Unity document headers: "--- !u!1 &100000" with an optional "stripped"
	unityHeader = regexp.MustCompile(`(?m)^--- !u!\d+( &-?\d+)?(?: stripped)?[ \t]*$`)
)

// loadYAMLDocs parses every YAML document in input. When the first attempt
// fails, verbatim tags are quoted and Unity document headers are reduced to
// their anchors, and the parse is retried once.
func loadYAMLDocs(input string) ([]any, error) {
	docs, err := decodeYAML(input)
	if err == nil {
		return docs, nil
	}
	cleaned := verbatimTag.ReplaceAllString(input, `"$0"`)
	cleaned = unityHeader.ReplaceAllString(cleaned, "---$1")
	if cleaned == input {
		return nil, err
	}
	docs, retryErr := decodeYAML(cleaned)
	if retryErr != nil {
		return nil, err
	}
	return docs, nil
}

func decodeYAML(input string) ([]any, error) {
	dec := yaml.NewDecoder(strings.NewReader(input))
	var results []any
	for {
		var n yaml.Node
		if err := dec.Decode(&n); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		c := &yamlConverter{}
		v, err := c.convert(&n)
		if err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if v != nil {
			results = append(results, v)
		}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no documents found in YAML")
	}
	return results, nil
}

type yamlConverter struct {
	aliases int
}

func (c *yamlConverter) convert(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0])
	case yaml.MappingNode:
		obj := tree.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Tag == "!!merge" {
				if err := c.merge(obj, v); err != nil {
					return nil, err
				}
				continue
			}
			val, err := c.convert(v)
			if err != nil {
				return nil, err
			}
			obj.Set(k.Value, val)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := c.convert(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.AliasNode:
		c.aliases++
		if c.aliases > maxAliasExpansions {
			return nil, fmt.Errorf("too many alias expansions (limit %d)", maxAliasExpansions)
		}
		return c.convert(n.Alias)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			// unknown tags decode as their literal text
			return n.Value, nil
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d", n.Kind)
	}
}

// merge applies a "<<" merge key: keys already set win.
func (c *yamlConverter) merge(obj *tree.Object, v *yaml.Node) error {
	sources := []*yaml.Node{v}
	if v.Kind == yaml.SequenceNode {
		sources = v.Content
	}
	for _, s := range sources {
		val, err := c.convert(s)
		if err != nil {
			return err
		}
		src, ok := val.(*tree.Object)
		if !ok {
			return fmt.Errorf("merge value is not a mapping")
		}
		for _, k := range src.Keys() {
			if _, exists := obj.Get(k); !exists {
				sv, _ := src.Get(k)
				obj.Set(k, sv)
			}
		}
	}
	return nil
}
