package consumption

import (
	"fmt"

	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/reading"
)

// DumpTemplate writes the derived template in the selected format:
// --types renders the type hierarchies, --yaml/--json the raw template,
// default a YAML rendering.
func (c *Context) DumpTemplate() error {
	if c.Modeling.Template == nil {
		return fmt.Errorf("no deployment template")
	}
	switch c.Options.Format {
	case DumpTypes:
		return c.writeRaw(c.Modeling.Template.TypesAsRaw(), DumpYAML)
	case DumpJSON:
		return c.writeRaw(c.Modeling.Template.AsRaw(), DumpJSON)
	default:
		return c.writeRaw(c.Modeling.Template.AsRaw(), DumpYAML)
	}
}

// DumpPlan writes the instantiated plan. --graph renders the containment
// and relationship edges; --yaml/--json the canonical plan shape.
func (c *Context) DumpPlan() error {
	if c.Modeling.Plan == nil {
		return fmt.Errorf("no deployment plan")
	}
	if c.Options.Format == DumpGraph {
		return c.dumpGraph()
	}
	format := c.Options.Format
	if format != DumpJSON {
		format = DumpYAML
	}
	return c.writeRaw(c.Modeling.Plan.AsRaw(), format)
}

func (c *Context) writeRaw(raw *collections.OrderedMap, format DumpFormat) error {
	var (
		out []byte
		err error
	)
	if format == DumpJSON {
		out, err = reading.MarshalJSON(raw, c.Options.Indent)
	} else {
		out, err = reading.MarshalYAML(raw, c.Options.Indent)
	}
	if err != nil {
		return err
	}
	_, err = c.Out.Write(out)
	return err
}

func (c *Context) dumpGraph() error {
	plan := c.Modeling.Plan
	var err error
	plan.NodeInstances.Each(func(id string, v any) bool {
		inst := plan.Instance(id)
		if _, err = fmt.Fprintf(c.Out, "%s\n", id); err != nil {
			return false
		}
		for _, rel := range inst.Relationships {
			if _, err = fmt.Fprintf(c.Out, "  -[%s]-> %s\n", rel.TypeName, rel.TargetID); err != nil {
				return false
			}
		}
		return true
	})
	return err
}
