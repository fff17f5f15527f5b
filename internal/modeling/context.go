// Package modeling holds the deployment template and plan models: type
// hierarchies, template derivation building blocks, instantiation,
// requirement satisfaction, intrinsic-function coercion, and capability
// validation.
//
// All cross-template references are relational: stored as names or ids and
// resolved through the owning index, never as ownership edges.
package modeling

import (
	"go.uber.org/zap"

	"github.com/duyamin/aria-ng/internal/validation"
)

// Context is what the modeling passes need: the issue sink, the logger,
// and the user-provided input values.
type Context struct {
	Reporter *validation.Reporter
	Logger   *zap.Logger
	Inputs   map[string]any

	// LegacyGroupMembers keeps members whose template is contained in a
	// host in group membership, which is otherwise filtered to top-level
	// members. Nested groups flatten one level either way.
	LegacyGroupMembers bool
}

// NewContext returns a modeling context with a fresh reporter.
func NewContext() *Context {
	return &Context{Reporter: validation.NewReporter(), Logger: zap.NewNop()}
}
