package loading

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Loader opens a resolved location and yields its content. Open returns the
// canonical location actually loaded, which may differ from the requested
// one when search paths are in play.
type Loader interface {
	Open(ctx context.Context, loc, origin Location) (content []byte, canonical Location, err error)
}

// FileLoader reads from the filesystem.
type FileLoader struct{}

func (FileLoader) Open(_ context.Context, loc, origin Location) ([]byte, Location, error) {
	resolved, ok := Resolve(loc, origin).(FileLocation)
	if !ok {
		return nil, nil, &DocumentNotFoundError{Location: loc.String()}
	}
	data, err := os.ReadFile(resolved.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, &DocumentNotFoundError{Location: resolved.Path}
		}
		return nil, nil, &LoaderError{Location: resolved.Path, Err: err}
	}
	return data, resolved, nil
}

// URLLoader fetches over http(s).
type URLLoader struct {
	Client *http.Client
}

func (l URLLoader) Open(ctx context.Context, loc, origin Location) ([]byte, Location, error) {
	resolved, ok := Resolve(loc, origin).(URLLocation)
	if !ok {
		return nil, nil, &DocumentNotFoundError{Location: loc.String()}
	}
	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved.URL, nil)
	if err != nil {
		return nil, nil, &LoaderError{Location: resolved.URL, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, &LoaderError{Location: resolved.URL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil, &DocumentNotFoundError{Location: resolved.URL}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, &LoaderError{Location: resolved.URL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &LoaderError{Location: resolved.URL, Err: err}
	}
	return data, resolved, nil
}

// LiteralLoader serves in-memory content.
type LiteralLoader struct{}

func (LiteralLoader) Open(_ context.Context, loc, _ Location) ([]byte, Location, error) {
	lit, ok := loc.(LiteralLocation)
	if !ok {
		return nil, nil, &DocumentNotFoundError{Location: loc.String()}
	}
	return []byte(lit.Content), lit, nil
}

// SearchPathLoader tries a relative file location against a list of roots,
// in order, falling back to the plain file loader first.
type SearchPathLoader struct {
	Roots []string
	file  FileLoader
}

func (l SearchPathLoader) Open(ctx context.Context, loc, origin Location) ([]byte, Location, error) {
	data, canonical, err := l.file.Open(ctx, loc, origin)
	if err == nil {
		return data, canonical, nil
	}
	var notFound *DocumentNotFoundError
	if !errors.As(err, &notFound) {
		return nil, nil, err
	}
	fl, ok := loc.(FileLocation)
	if !ok || filepath.IsAbs(fl.Path) {
		return nil, nil, err
	}
	for _, root := range l.Roots {
		candidate := FileLocation{Path: filepath.Join(root, fl.Path)}
		data, canonical, err := l.file.Open(ctx, candidate, nil)
		if err == nil {
			return data, canonical, nil
		}
		if !errors.As(err, &notFound) {
			return nil, nil, err
		}
	}
	return nil, nil, &DocumentNotFoundError{Location: loc.String()}
}
