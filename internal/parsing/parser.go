// Package parsing drives the load, read, present cycle, resolving imports
// concurrently with a bounded worker pool and merging them into the root
// presenter.
package parsing

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/duyamin/aria-ng/internal/loading"
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/reading"
)

// DefaultWorkers is the import pool size when none is configured.
const DefaultWorkers = 10

// DefaultTimeout bounds each import's load, read, present cycle.
const DefaultTimeout = 10 * time.Second

// Parser resolves a root location and its transitive imports into one
// merged presentation.
type Parser struct {
	Loaders    *loading.Source
	Presenters *presentation.Source
	Workers    int
	Timeout    time.Duration
}

// NewParser returns a parser over the given loader and presenter sources.
func NewParser(loaders *loading.Source, presenters *presentation.Source) *Parser {
	return &Parser{
		Loaders:    loaders,
		Presenters: presenters,
		Workers:    DefaultWorkers,
		Timeout:    DefaultTimeout,
	}
}

// Parse loads, reads, and presents the root document, then resolves every
// import concurrently. Each unique canonical location is parsed at most
// once; imports are merged into the root presenter with the root's
// entries winning. Worker failures are reported into pctx's sink rather
// than aborting the parse.
func (p *Parser) Parse(ctx context.Context, pctx *presentation.Context, loc loading.Location) (presentation.Presenter, error) {
	workers := p.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	doc, canonical, err := p.parseOne(ctx, loc, nil)
	if err != nil {
		return nil, err
	}
	class, ok := p.Presenters.FindClass(doc.Raw)
	if !ok {
		return nil, &presentation.NotFoundError{Location: doc.Locator.Location}
	}
	root := class.New(doc)
	pctx.Root = root
	presentation.Link(pctx, root)

	importing := &lockedSet{seen: map[string]struct{}{canonical.Canonical(): {}}}
	var (
		mu       sync.Mutex
		imported []presentation.Presenter
	)

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(workers))

	var submit func(loc, origin loading.Location)
	submit = func(loc, origin loading.Location) {
		resolved := loading.Resolve(loc, origin)
		if !importing.admit(resolved.Canonical()) {
			return
		}
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			tctx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			doc, canonical, err := p.parseOne(tctx, resolved, origin)
			if err != nil {
				pctx.Reporter.ReportError(err)
				return nil
			}
			pres := class.New(doc)
			presentation.Link(pctx, pres)
			mu.Lock()
			imported = append(imported, pres)
			mu.Unlock()
			if imp, ok := pres.(presentation.Importer); ok {
				for _, nested := range imp.ImportLocations() {
					submit(nested, canonical)
				}
			}
			return nil
		})
	}

	if imp, ok := root.(presentation.Importer); ok {
		for _, il := range imp.ImportLocations() {
			submit(il, canonical)
		}
	}
	_ = g.Wait()

	if merger, ok := root.(presentation.ImportMerger); ok {
		for _, pres := range imported {
			merger.MergeImport(pres)
		}
	}
	return root, nil
}

// parseOne runs one load and read cycle, returning the located document
// and the canonical location actually loaded.
func (p *Parser) parseOne(ctx context.Context, loc, origin loading.Location) (*reading.Document, loading.Location, error) {
	content, canonical, err := p.Loaders.Open(ctx, loc, origin)
	if err != nil {
		return nil, nil, err
	}
	reader := reading.ReaderFor(canonical)
	doc, err := reader.Read(content, canonical.String())
	if err != nil {
		return nil, nil, err
	}
	return doc, canonical, nil
}

// lockedSet admits each key exactly once across concurrent workers.
type lockedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func (s *lockedSet) admit(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}
