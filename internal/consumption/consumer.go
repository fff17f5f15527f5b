package consumption

import (
	"go.uber.org/zap"

	"github.com/duyamin/aria-ng/internal/modeling"
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/validation"
)

// Consumer is one pipeline stage. Stages convert failures into issues on
// the context and return; they never panic across the boundary.
type Consumer interface {
	Name() string
	Consume(c *Context)
}

// Chain runs consumers in order, stopping when a halt is requested.
type Chain struct {
	ChainName string
	Consumers []Consumer
}

func (ch *Chain) Name() string { return ch.ChainName }

func (ch *Chain) Consume(c *Context) {
	for _, consumer := range ch.Consumers {
		if c.Halted() {
			return
		}
		c.Logger.Debug("consuming", zap.String("stage", consumer.Name()))
		consumer.Consume(c)
	}
}

// TemplateDeriver is implemented by root presenters that can derive a
// deployment template.
type TemplateDeriver interface {
	DeriveTemplate(mctx *modeling.Context) *modeling.Template
}

// ValidatePresentation validates the merged presentation.
type ValidatePresentation struct{}

func (ValidatePresentation) Name() string { return "validate" }

func (ValidatePresentation) Consume(c *Context) {
	if c.Presentation.Presenter == nil {
		c.Reporter.Reportf(validation.Platform, "validate consumer: missing presenter")
		c.Halt()
		return
	}
	presentation.Validate(c.PresentationContext(), c.Presentation.Presenter)
}

// Derive derives the deployment template from the presentation.
type Derive struct{}

func (Derive) Name() string { return "derive" }

func (Derive) Consume(c *Context) {
	if c.Presentation.Presenter == nil {
		c.Reporter.Reportf(validation.Platform, "derive consumer: missing presenter")
		c.Halt()
		return
	}
	deriver, ok := c.Presentation.Presenter.(TemplateDeriver)
	if !ok {
		c.Reporter.Reportf(validation.Platform,
			"derive consumer: presenter cannot derive a deployment template")
		c.Halt()
		return
	}
	c.Modeling.Template = deriver.DeriveTemplate(c.ModelingContext())
	if c.Modeling.Template == nil {
		c.Halt()
	}
}

// ValidateTemplate validates the derived deployment template.
type ValidateTemplate struct{}

func (ValidateTemplate) Name() string { return "validate template" }

func (ValidateTemplate) Consume(c *Context) {
	if c.Modeling.Template == nil {
		c.Reporter.Reportf(validation.Platform, "validate template consumer: missing deployment template")
		c.Halt()
		return
	}
	c.Modeling.Template.Validate(c.ModelingContext())
}

// Instantiate instantiates the deployment plan from the template.
type Instantiate struct{}

func (Instantiate) Name() string { return "instantiate" }

func (Instantiate) Consume(c *Context) {
	if c.Modeling.Template == nil {
		c.Reporter.Reportf(validation.Platform, "instantiate consumer: missing deployment template")
		c.Halt()
		return
	}
	c.Modeling.Plan = c.Modeling.Template.Instantiate(c.ModelingContext())
	if c.Modeling.Plan == nil {
		c.Halt()
	}
}

// CoerceValues resolves intrinsic functions in the plan. It appears
// several times in the plan chain to flush values made visible by later
// stages.
type CoerceValues struct{}

func (CoerceValues) Name() string { return "coerce values" }

func (CoerceValues) Consume(c *Context) {
	if c.Modeling.Plan == nil {
		return
	}
	c.Modeling.Plan.CoerceValues(c.ModelingContext())
}

// ValidatePlan checks plan invariants.
type ValidatePlan struct{}

func (ValidatePlan) Name() string { return "validate plan" }

func (ValidatePlan) Consume(c *Context) {
	if c.Modeling.Plan == nil {
		return
	}
	c.Modeling.Plan.Validate(c.ModelingContext())
}

// SatisfyRequirements matches requirements to target instances.
type SatisfyRequirements struct{}

func (SatisfyRequirements) Name() string { return "satisfy requirements" }

func (SatisfyRequirements) Consume(c *Context) {
	if c.Modeling.Plan == nil {
		return
	}
	c.Modeling.Plan.SatisfyRequirements(c.ModelingContext())
}

// ValidateCapabilities checks capability occurrence bounds.
type ValidateCapabilities struct{}

func (ValidateCapabilities) Name() string { return "validate capabilities" }

func (ValidateCapabilities) Consume(c *Context) {
	if c.Modeling.Plan == nil {
		return
	}
	c.Modeling.Plan.ValidateCapabilities(c.ModelingContext())
}

// NewTemplateChain derives and validates the deployment template.
func NewTemplateChain() *Chain {
	return &Chain{ChainName: "template", Consumers: []Consumer{
		Derive{}, ValidateTemplate{},
	}}
}

// NewPlanChain instantiates the plan and runs the interleaved coercion,
// satisfaction, and capability validation passes.
func NewPlanChain() *Chain {
	return &Chain{ChainName: "plan", Consumers: []Consumer{
		Instantiate{},
		CoerceValues{},
		ValidatePlan{},
		CoerceValues{},
		SatisfyRequirements{},
		CoerceValues{},
		ValidateCapabilities{},
		CoerceValues{},
	}}
}
