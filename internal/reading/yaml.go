package reading

import (
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/duyamin/aria-ng/internal/collections"
)

// YAMLReader parses YAML content, preserving mapping order and recording a
// locator node for every container and scalar. YAML merge keys
// (`<<: *anchor`) are flattened into the current mapping, with explicit
// keys winning over merged ones.
type YAMLReader struct{}

var yamlErrLine = regexp.MustCompile(`(?:yaml: )?line (\d+):\s*(.*)`)

// Read parses content originating at location.
func (YAMLReader) Read(content []byte, location string) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, yamlSyntaxError(err, content, location)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		// Empty document reads as an empty mapping.
		return &Document{
			Raw:     collections.NewOrderedMap(),
			Locator: NewLocator(location, 0, 0),
		}, nil
	}
	node := root.Content[0]
	locator := NewLocator(location, node.Line, node.Column)
	raw, err := buildRaw(node, locator, location)
	if err != nil {
		return nil, err
	}
	return &Document{Raw: raw, Locator: locator}, nil
}

func yamlSyntaxError(err error, content []byte, location string) error {
	msg := err.Error()
	se := &SyntaxError{Message: "YAML: " + strings.TrimPrefix(msg, "yaml: "), Location: location, Cause: err}
	if m := yamlErrLine.FindStringSubmatch(msg); m != nil {
		if line, convErr := strconv.Atoi(m[1]); convErr == nil {
			se.Line = line
			se.Snippet = lineSnippet(content, line)
		}
	}
	return se
}

func lineSnippet(content []byte, line int) string {
	lines := strings.Split(string(content), "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}

func buildRaw(node *yaml.Node, locator *Locator, location string) (any, error) {
	for node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.MappingNode:
		return buildMapping(node, locator, location)
	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			cl := NewLocator(location, child.Line, child.Column)
			locator.ListChildren = append(locator.ListChildren, cl)
			v, err := buildRaw(child, cl, location)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.ScalarNode:
		return scalarValue(node, location)
	default:
		return nil, &SyntaxError{
			Message:  "YAML: unsupported node kind",
			Location: location,
			Line:     node.Line,
			Column:   node.Column,
		}
	}
}

func buildMapping(node *yaml.Node, locator *Locator, location string) (any, error) {
	m := collections.NewOrderedMap()
	// Merged entries never override explicit ones, so collect explicit
	// keys first and spread merges afterwards.
	type pending struct {
		node    *yaml.Node
		locator *Locator
	}
	var merges []pending
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.Tag == "!!merge" {
			merges = append(merges, pending{node: valNode, locator: locator})
			continue
		}
		key := keyNode.Value
		cl := NewLocator(location, valNode.Line, valNode.Column)
		locator.setKey(key, cl)
		v, err := buildRaw(valNode, cl, location)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	for _, merge := range merges {
		if err := spreadMerge(merge.node, m, merge.locator, location); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func spreadMerge(node *yaml.Node, into *collections.OrderedMap, locator *Locator, location string) error {
	for node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.MappingNode:
		child := NewLocator(location, node.Line, node.Column)
		raw, err := buildMapping(node, child, location)
		if err != nil {
			return err
		}
		AsMap(raw).Each(func(key string, value any) bool {
			if !into.Has(key) {
				into.Set(key, value)
				if kl, ok := child.MapChildren[key]; ok {
					locator.setKey(key, kl)
				}
			}
			return true
		})
		return nil
	case yaml.SequenceNode:
		for _, e := range node.Content {
			if err := spreadMerge(e, into, locator, location); err != nil {
				return err
			}
		}
		return nil
	default:
		return &SyntaxError{
			Message:  "YAML: merge value must be a mapping or sequence of mappings",
			Location: location,
			Line:     node.Line,
			Column:   node.Column,
		}
	}
}

func scalarValue(node *yaml.Node, location string) (any, error) {
	switch node.Tag {
	case "!!null":
		return nil, nil
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(node.Value))
		if err != nil {
			return nil, scalarError(node, location, err)
		}
		return b, nil
	case "!!int":
		i, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return nil, scalarError(node, location, err)
		}
		return int(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return nil, scalarError(node, location, err)
		}
		return f, nil
	default:
		// Strings, timestamps, and unrecognized tags stay textual; data
		// type coercion decides later what they mean.
		return node.Value, nil
	}
}

func scalarError(node *yaml.Node, location string, cause error) error {
	return &SyntaxError{
		Message:  "YAML: invalid scalar " + strconv.Quote(node.Value),
		Location: location,
		Line:     node.Line,
		Column:   node.Column,
		Cause:    cause,
	}
}
