package reading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/duyamin/aria-ng/internal/collections"
)

// JSONReader parses JSON content into the same ordered raw shape the YAML
// reader produces. Locations are coarser: every node carries the document
// position only.
type JSONReader struct{}

// Read parses content originating at location.
func (JSONReader) Read(content []byte, location string) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	raw, err := decodeJSON(dec)
	if err != nil {
		se := &SyntaxError{Message: "JSON: " + err.Error(), Location: location, Cause: err}
		if syn, ok := err.(*json.SyntaxError); ok {
			line, col := offsetPosition(content, syn.Offset)
			se.Line, se.Column = line, col
			se.Snippet = lineSnippet(content, line)
		}
		return nil, se
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &SyntaxError{Message: "JSON: trailing content", Location: location}
	}
	return &Document{Raw: raw, Locator: NewLocator(location, 0, 0)}, nil
}

func offsetPosition(content []byte, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func decodeJSON(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeJSONValue(dec, tok)
}

func decodeJSONValue(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := collections.NewOrderedMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string")
				}
				val, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // closing brace
				return nil, err
			}
			return m, nil
		case '[':
			var list []any
			for dec.More() {
				val, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, val)
			}
			if _, err := dec.Token(); err != nil { // closing bracket
				return nil, err
			}
			if list == nil {
				list = []any{}
			}
			return list, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return tok, nil
	}
}
