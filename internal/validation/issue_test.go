package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_Deduplicates(t *testing.T) {
	r := NewReporter()
	issue := Issue{Level: Field, Message: "bad value", Location: "a.yaml", Line: 3, Column: 1}
	r.Report(issue)
	r.Report(issue)
	r.Report(Issue{Level: Field, Message: "bad value", Location: "a.yaml", Line: 4, Column: 1})

	assert.Equal(t, 2, r.Len())
}

func TestReporter_SortsIssues(t *testing.T) {
	r := NewReporter()
	r.Report(Issue{Level: Field, Message: "z", Location: "b.yaml", Line: 9})
	r.Report(Issue{Level: Syntax, Message: "a", Location: "a.yaml", Line: 2})
	r.Report(Issue{Level: Field, Message: "m", Location: "a.yaml", Line: 2})

	issues := r.Issues()
	require.Len(t, issues, 3)
	assert.Equal(t, "a.yaml", issues[0].Location)
	assert.Equal(t, Syntax, issues[0].Level)
	assert.Equal(t, "m", issues[1].Message)
	assert.Equal(t, "b.yaml", issues[2].Location)
}

func TestReporter_Threshold(t *testing.T) {
	r := NewReporter()
	r.Report(Issue{Level: Field, Message: "field issue"})

	assert.True(t, r.HasAtOrAbove(Syntax))
	assert.True(t, r.HasAtOrAbove(Field))
	assert.False(t, r.HasAtOrAbove(BetweenTypes))
	assert.True(t, r.HasAtOrAbove(All))
}

func TestReporter_ReportError(t *testing.T) {
	r := NewReporter()
	r.ReportError(&InvalidValueError{Name: "port", Value: "x", Reason: "not an integer", Location: "a.yaml", Line: 7})
	r.ReportError(errors.New("disk on fire"))

	issues := r.Issues()
	require.Len(t, issues, 2)
	// Located issue keeps its level and position.
	var found bool
	for _, issue := range issues {
		if issue.Level == Field && issue.Line == 7 {
			found = true
		}
	}
	assert.True(t, found, "typed error should carry its location")
	assert.Equal(t, 1, r.CountsByLevel()[Platform])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, BetweenTypes, ParseLevel("between-types"))
	assert.Equal(t, All, ParseLevel("all"))
	assert.Equal(t, Syntax, ParseLevel("bogus"))
}
