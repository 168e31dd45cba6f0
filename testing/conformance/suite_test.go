package conformance_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zoobzio/vdba"
	"github.com/zoobzio/vdba/memory"
	"github.com/zoobzio/vdba/testing/conformance"
)

func TestMemory(t *testing.T) {
	conformance.Run(t, conformance.Env{
		Driver: memory.New(),
		Config: vdba.Config{Logger: zaptest.NewLogger(t)},
	})
}

func TestCases(t *testing.T) {
	seen := make(map[string]bool)
	groups := make(map[string]bool)
	for _, c := range conformance.Cases() {
		assert.False(t, seen[c.Path()], "duplicate case %s", c.Path())
		seen[c.Path()] = true
		groups[c.Group] = true
		assert.NotNil(t, c.Run, c.Path())
	}
	for _, g := range conformance.Groups {
		assert.True(t, groups[g], "group %s has no cases", g)
	}
	assert.Len(t, groups, len(conformance.Groups))
}

func TestCheck(t *testing.T) {
	var outcomes []conformance.Outcome
	failed := conformance.Check(context.Background(), conformance.Env{
		Driver:  memory.New(),
		Pattern: regexp.MustCompile(`^query-agg/`),
	}, func(o conformance.Outcome) {
		outcomes = append(outcomes, o)
	})

	assert.Zero(t, failed)
	require.NotEmpty(t, outcomes)
	for _, o := range outcomes {
		assert.True(t, strings.HasPrefix(o.Case.Path(), "query-agg/"), o.Case.Path())
		assert.True(t, o.Passed, "%s: %v", o.Case.Path(), o.Failures)
	}
}

// broken fails every connection attempt.
type broken struct{}

func (broken) Name() string      { return "broken" }
func (broken) Aliases() []string { return nil }
func (broken) Connect(context.Context, vdba.Config) (vdba.Backend, error) {
	return nil, errors.New("connection refused")
}

func TestCheck_Failures(t *testing.T) {
	var outcomes []conformance.Outcome
	failed := conformance.Check(context.Background(), conformance.Env{
		Driver:  broken{},
		Pattern: regexp.MustCompile(`^(driver/unknown name|connection/open|table-dql/count)$`),
	}, func(o conformance.Outcome) {
		outcomes = append(outcomes, o)
	})

	require.Len(t, outcomes, 3)
	assert.Equal(t, 2, failed)

	byPath := make(map[string]conformance.Outcome)
	for _, o := range outcomes {
		byPath[o.Case.Path()] = o
	}
	assert.True(t, byPath["driver/unknown name"].Passed)
	for _, p := range []string{"connection/open", "table-dql/count"} {
		o := byPath[p]
		assert.False(t, o.Passed, p)
		require.NotEmpty(t, o.Failures, p)
		assert.Contains(t, o.Failures[0], "connection refused", p)
	}
}

func TestCheck_NilReport(t *testing.T) {
	failed := conformance.Check(context.Background(), conformance.Env{
		Driver:  memory.New(),
		Pattern: regexp.MustCompile(`^connection/`),
	}, nil)
	assert.Zero(t, failed)
}
