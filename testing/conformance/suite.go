// Package conformance checks that a driver reproduces the reference
// semantics of the vdba API. The same cases run under go test through Run
// and from any other program through Check.
//
//	func TestConformance(t *testing.T) {
//		conformance.Run(t, conformance.Env{
//			Driver: sqlite.New(),
//			Config: vdba.Config{Database: "conformance"},
//		})
//	}
package conformance

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zoobzio/vdba"
)

// Env is the driver under test.
type Env struct {
	// Driver opens the backends every case works on.
	Driver vdba.Driver
	// Config is passed to every connection. Database defaults to
	// "conformance".
	Config vdba.Config
	// Registry resolves the driver by name in the driver group. It
	// defaults to a registry holding Driver alone.
	Registry *vdba.Registry
	// Pattern selects cases by their "group/name" path. Nil runs all.
	Pattern *regexp.Regexp
}

func (e Env) withDefaults() Env {
	if e.Config.Database == "" {
		e.Config.Database = "conformance"
	}
	if e.Registry == nil {
		e.Registry = vdba.NewRegistry(e.Driver)
	}
	return e
}

// Case is one conformance check.
type Case struct {
	Group string
	Name  string
	Run   func(t require.TestingT, f *Fixture)
}

// Path returns "group/name".
func (c Case) Path() string { return c.Group + "/" + c.Name }

// Groups lists the case groups in run order.
var Groups = []string{
	"driver",
	"connection",
	"database",
	"table-indexes",
	"table-dml",
	"table-update",
	"table-dql",
	"query-simple",
	"query-operators",
	"query-multitable",
	"query-agg",
	"query-multitable-agg",
}

// Cases returns every case, grouped in the order of Groups.
func Cases() []Case {
	var all []Case
	all = append(all, driverCases()...)
	all = append(all, connectionCases()...)
	all = append(all, databaseCases()...)
	all = append(all, indexCases()...)
	all = append(all, dmlCases()...)
	all = append(all, updateCases()...)
	all = append(all, dqlCases()...)
	all = append(all, querySimpleCases()...)
	all = append(all, queryOperatorCases()...)
	all = append(all, queryMultiTableCases()...)
	all = append(all, queryAggCases()...)
	all = append(all, queryMultiTableAggCases()...)
	return all
}

// Run runs every case as a subtest of t, one subtest per group.
func Run(t *testing.T, env Env) {
	t.Helper()
	env = env.withDefaults()
	require.NotNil(t, env.Driver, "conformance: Env.Driver is required")

	byGroup := make(map[string][]Case)
	for _, c := range Cases() {
		byGroup[c.Group] = append(byGroup[c.Group], c)
	}
	for _, g := range Groups {
		t.Run(g, func(t *testing.T) {
			for _, c := range byGroup[g] {
				if env.Pattern != nil && !env.Pattern.MatchString(c.Path()) {
					continue
				}
				t.Run(c.Name, func(t *testing.T) {
					f := newFixture(t.Context(), env)
					defer f.cleanup()
					c.Run(t, f)
				})
			}
		})
	}
}

// Outcome is the result of one case run by Check.
type Outcome struct {
	Case     Case
	Passed   bool
	Failures []string
	Duration time.Duration
}

// Check runs every case selected by env.Pattern outside of go test and
// reports each outcome as it completes. It returns the number of failed
// cases.
func Check(ctx context.Context, env Env, report func(Outcome)) int {
	env = env.withDefaults()
	failed := 0
	for _, c := range Cases() {
		if env.Pattern != nil && !env.Pattern.MatchString(c.Path()) {
			continue
		}
		o := checkOne(ctx, env, c)
		if !o.Passed {
			failed++
		}
		if report != nil {
			report(o)
		}
	}
	return failed
}

func checkOne(ctx context.Context, env Env, c Case) Outcome {
	start := time.Now()
	r := &recorder{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if p := recover(); p != nil {
				r.Errorf("panic: %v", p)
			}
		}()
		f := newFixture(ctx, env)
		defer f.cleanup()
		c.Run(r, f)
	}()
	<-done
	return Outcome{
		Case:     c,
		Passed:   !r.failed,
		Failures: r.failures,
		Duration: time.Since(start),
	}
}

// recorder collects failures the way *testing.T does. FailNow stops the
// calling goroutine, so cases must run on their own goroutine.
type recorder struct {
	failed   bool
	failures []string
}

func (r *recorder) Errorf(format string, args ...any) {
	r.failed = true
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

func (r *recorder) FailNow() {
	r.failed = true
	runtime.Goexit()
}
