package reading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/duyamin/aria-ng/internal/collections"
)

// MarshalYAML serializes a raw tree to YAML, preserving mapping order.
func MarshalYAML(raw any, indent int) ([]byte, error) {
	node, err := rawToNode(raw)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if indent > 0 {
		enc.SetIndent(indent)
	}
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func rawToNode(raw any) (*yaml.Node, error) {
	switch t := raw.(type) {
	case *collections.OrderedMap:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		t.Each(func(key string, value any) bool {
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
			var valNode *yaml.Node
			valNode, err = rawToNode(value)
			if err != nil {
				return false
			}
			node.Content = append(node.Content, keyNode, valNode)
			return true
		})
		return node, err
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			child, err := rawToNode(e)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(raw); err != nil {
			return nil, err
		}
		return node, nil
	}
}

// MarshalJSON serializes a raw tree to JSON, preserving mapping order.
func MarshalJSON(raw any, indent int) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, raw, indent, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, raw any, indent, depth int) error {
	switch t := raw.(type) {
	case *collections.OrderedMap:
		buf.WriteByte('{')
		first := true
		var err error
		t.Each(func(key string, value any) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			writeJSONIndent(buf, indent, depth+1)
			k, _ := json.Marshal(key)
			buf.Write(k)
			buf.WriteString(": ")
			err = writeJSON(buf, value, indent, depth+1)
			return err == nil
		})
		if err != nil {
			return err
		}
		if !first {
			writeJSONIndent(buf, indent, depth)
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONIndent(buf, indent, depth+1)
			if err := writeJSON(buf, e, indent, depth+1); err != nil {
				return err
			}
		}
		if len(t) > 0 {
			writeJSONIndent(buf, indent, depth)
		}
		buf.WriteByte(']')
		return nil
	case time.Time:
		fmt.Fprintf(buf, "%q", t.Format(time.RFC3339))
		return nil
	default:
		out, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(out)
		return nil
	}
}

func writeJSONIndent(buf *bytes.Buffer, indent, depth int) {
	if indent <= 0 {
		return
	}
	buf.WriteByte('\n')
	for i := 0; i < indent*depth; i++ {
		buf.WriteByte(' ')
	}
}
