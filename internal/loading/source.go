package loading

import "context"

// Source selects the loader appropriate for a location.
type Source struct {
	SearchPaths []string
	HTTP        URLLoader
}

// NewSource returns a loader source with the given search roots.
func NewSource(searchPaths ...string) *Source {
	return &Source{SearchPaths: searchPaths}
}

// Open resolves loc against origin with whichever loader variant matches
// and returns the content plus the canonical location actually read.
func (s *Source) Open(ctx context.Context, loc, origin Location) ([]byte, Location, error) {
	switch loc.(type) {
	case LiteralLocation:
		return LiteralLoader{}.Open(ctx, loc, origin)
	case URLLocation:
		return s.HTTP.Open(ctx, loc, origin)
	default:
		return SearchPathLoader{Roots: s.SearchPaths}.Open(ctx, loc, origin)
	}
}
