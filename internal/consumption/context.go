// Package consumption defines the context threaded through every pipeline
// stage and the consumer chain that sequences the stages.
package consumption

import (
	"io"
	"os"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/modeling"
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/validation"
)

// DumpFormat selects how a consumer chain renders its result.
type DumpFormat int

const (
	DumpDefault DumpFormat = iota
	DumpYAML
	DumpJSON
	DumpTypes
	DumpGraph
)

// Options carries the runtime switches the original CLI surfaced
// (--yaml, --json, --types, --graph, --indent).
type Options struct {
	Format DumpFormat
	Indent int
}

// Context is the consumption context: the issue sink, the logger, the
// output stream, and the artifacts each stage deposits for the next.
// It is passed explicitly on every call path; nothing is thread-local.
type Context struct {
	Out      io.Writer
	Logger   *zap.Logger
	Reporter *validation.Reporter
	Options  Options

	// Inputs are the user-provided input values overriding template
	// input defaults.
	Inputs map[string]any

	// LegacyGroupMembers lists contained members in groups too; nested
	// groups still flatten one level.
	LegacyGroupMembers bool

	// Presentation holds the merged root presenter.
	Presentation struct {
		Presenter presentation.Presenter
	}

	// Modeling holds the derived template, the instantiated plan, and
	// any profile-specific converted plan a consumer deposits.
	Modeling struct {
		Template    *modeling.Template
		Plan        *modeling.Plan
		ClassicPlan *collections.OrderedMap
	}

	halted atomic.Bool
}

// NewContext returns a context writing to stdout with a no-op logger.
func NewContext() *Context {
	c := &Context{
		Out:      os.Stdout,
		Logger:   zap.NewNop(),
		Reporter: validation.NewReporter(),
		Options:  Options{Indent: 2},
	}
	return c
}

// ModelingContext builds the modeling-layer view of this context.
func (c *Context) ModelingContext() *modeling.Context {
	return &modeling.Context{
		Reporter:           c.Reporter,
		Logger:             c.Logger,
		Inputs:             c.Inputs,
		LegacyGroupMembers: c.LegacyGroupMembers,
	}
}

// PresentationContext builds the presentation-layer view of this context.
func (c *Context) PresentationContext() *presentation.Context {
	return &presentation.Context{
		Reporter: c.Reporter,
		Logger:   c.Logger,
		Root:     c.Presentation.Presenter,
	}
}

// Halt requests cooperative cancellation; the chain stops before the next
// consumer.
func (c *Context) Halt() { c.halted.Store(true) }

// Halted reports whether a halt was requested.
func (c *Context) Halted() bool { return c.halted.Load() }
