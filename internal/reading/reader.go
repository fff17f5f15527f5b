package reading

import (
	"strings"

	"github.com/duyamin/aria-ng/internal/loading"
)

// Reader parses loader content into a located document.
type Reader interface {
	Read(content []byte, location string) (*Document, error)
}

// ReaderFor picks a reader for a canonical location by extension. YAML is
// the default; .json selects the JSON reader.
func ReaderFor(loc loading.Location) Reader {
	name := strings.ToLower(loc.String())
	if strings.HasSuffix(name, ".json") {
		return JSONReader{}
	}
	return YAMLReader{}
}
