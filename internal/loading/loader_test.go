package loading

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoader_ResolvesAgainstOrigin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "imported.yaml"), []byte("x: 1\n"), 0o644))

	origin := FileLocation{Path: filepath.Join(dir, "main.yaml")}
	content, canonical, err := FileLoader{}.Open(context.Background(), FileLocation{Path: "imported.yaml"}, origin)
	require.NoError(t, err)
	assert.Equal(t, "x: 1\n", string(content))
	assert.Equal(t, filepath.Join(dir, "imported.yaml"), canonical.String())
}

func TestFileLoader_NotFound(t *testing.T) {
	_, _, err := FileLoader{}.Open(context.Background(), FileLocation{Path: "/does/not/exist.yaml"}, nil)
	var notFound *DocumentNotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestLiteralLoader(t *testing.T) {
	loc := LiteralLocation{Content: "a: 1\n", Name: "inline"}
	content, canonical, err := LiteralLoader{}.Open(context.Background(), loc, nil)
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(content))
	assert.Equal(t, "inline", canonical.String())
}

func TestLiteralLocation_CanonicalIdentity(t *testing.T) {
	a := LiteralLocation{Content: "same"}
	b := LiteralLocation{Content: "same"}
	c := LiteralLocation{Content: "different"}
	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.NotEqual(t, a.Canonical(), c.Canonical())
}

func TestSearchPathLoader(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "types.yaml"), []byte("t: 1\n"), 0o644))

	loader := SearchPathLoader{Roots: []string{root}}
	content, _, err := loader.Open(context.Background(), FileLocation{Path: "types.yaml"}, FileLocation{Path: "/elsewhere/main.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "t: 1\n", string(content))

	_, _, err = loader.Open(context.Background(), FileLocation{Path: "missing.yaml"}, nil)
	var notFound *DocumentNotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestParse(t *testing.T) {
	assert.IsType(t, URLLocation{}, Parse("https://example.org/t.yaml"))
	assert.IsType(t, FileLocation{}, Parse("file:///tmp/t.yaml"))
	assert.IsType(t, FileLocation{}, Parse("relative/t.yaml"))
}

func TestResolve_URLOrigin(t *testing.T) {
	resolved := Resolve(FileLocation{Path: "types.yaml"}, URLLocation{URL: "https://example.org/dir/main.yaml"})
	url, ok := resolved.(URLLocation)
	require.True(t, ok)
	assert.Equal(t, "https://example.org/dir/types.yaml", url.URL)
}
