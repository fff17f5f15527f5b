package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/duyamin/aria-ng/internal/consumption"
	"github.com/duyamin/aria-ng/internal/loading"
	"github.com/duyamin/aria-ng/internal/parsing"
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/tosca"
	"github.com/duyamin/aria-ng/internal/validation"

	"github.com/duyamin/aria-ng/internal/cloudify"
)

// newContext assembles a consumption context from the global flags.
func newContext() (*consumption.Context, error) {
	c := consumption.NewContext()
	c.Logger = logger
	c.Options.Indent = indent
	switch {
	case showTypes:
		c.Options.Format = consumption.DumpTypes
	case showGraph:
		c.Options.Format = consumption.DumpGraph
	case asJSON:
		c.Options.Format = consumption.DumpJSON
	case asYAML:
		c.Options.Format = consumption.DumpYAML
	}
	inputs, err := parseInputs(inputsSpec)
	if err != nil {
		return nil, err
	}
	c.Inputs = inputs
	return c, nil
}

// parseInputs decodes --inputs: inline JSON/YAML, or @file.
func parseInputs(spec string) (map[string]any, error) {
	if spec == "" {
		return nil, nil
	}
	data := []byte(spec)
	if strings.HasPrefix(spec, "@") {
		var err error
		data, err = os.ReadFile(spec[1:])
		if err != nil {
			return nil, fmt.Errorf("reading inputs: %w", err)
		}
	}
	inputs := make(map[string]any)
	if err := yaml.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("decoding inputs: %w", err)
	}
	return inputs, nil
}

// parse runs the load-read-present cycle with concurrent imports and
// deposits the merged presenter on the context.
func parse(ctx context.Context, c *consumption.Context, uri string) {
	loaders := loading.NewSource(cfg.SearchPaths...)
	presenters := presentation.NewSource(tosca.Class, cloudify.Class)
	parser := parsing.NewParser(loaders, presenters)
	parser.Workers = cfg.ImportWorkers
	parser.Timeout = cfg.ImportTimeout

	presenter, err := parser.Parse(ctx, c.PresentationContext(), loading.Parse(uri))
	if err != nil {
		c.Reporter.ReportError(err)
		c.Halt()
		return
	}
	c.Presentation.Presenter = presenter
}

var (
	levelStyles = map[validation.Level]lipgloss.Style{
		validation.Platform:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		validation.Syntax:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		validation.Field:         lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		validation.BetweenFields: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		validation.BetweenTypes:  lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		validation.External:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
	locationStyle = lipgloss.NewStyle().Faint(true)
)

// reportIssues prints the sorted, deduplicated issues with per-level
// counts and returns an error when any issue reaches the threshold.
func reportIssues(c *consumption.Context) error {
	issues := c.Reporter.Issues()
	for _, issue := range issues {
		style, ok := levelStyles[issue.Level]
		if !ok {
			style = lipgloss.NewStyle()
		}
		line := style.Render(fmt.Sprintf("[%s] %s", issue.Level, issue.Message))
		if issue.Location != "" {
			where := issue.Location
			if issue.Line > 0 {
				where = fmt.Sprintf("%s:%d:%d", issue.Location, issue.Line, issue.Column)
			}
			line += " " + locationStyle.Render("@"+where)
		}
		fmt.Fprintln(os.Stderr, line)
		if issue.Snippet != "" {
			fmt.Fprintln(os.Stderr, locationStyle.Render("  "+issue.Snippet))
		}
	}
	if len(issues) > 0 {
		counts := c.Reporter.CountsByLevel()
		levels := make([]validation.Level, 0, len(counts))
		for level := range counts {
			levels = append(levels, level)
		}
		sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
		parts := make([]string, 0, len(levels))
		for _, level := range levels {
			parts = append(parts, fmt.Sprintf("%s: %d", level, counts[level]))
		}
		fmt.Fprintf(os.Stderr, "%d issues (%s)\n", len(issues), strings.Join(parts, ", "))
	}
	if c.Reporter.HasAtOrAbove(threshold()) {
		return fmt.Errorf("issues at or above %s", threshold())
	}
	return nil
}
