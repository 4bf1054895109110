package fixture

import (
	"fmt"
	"math"
	"slices"

	"github.com/GoSim-25-26J-441/tpe-golden/pkg/models"
	"github.com/GoSim-25-26J-441/tpe-golden/pkg/utils"
)

const (
	// AbsTolerance is the absolute floor of the numeric comparison
	AbsTolerance = 1e-12
	// RelTolerance scales with the magnitude of the expected value
	RelTolerance = 1e-9
)

// Mismatch is one difference between an expected and an actual fixture
type Mismatch struct {
	Path   string
	Reason string
}

func (m Mismatch) String() string {
	return m.Path + ": " + m.Reason
}

// Close reports whether actual is within tolerance of expected:
// |actual-expected| <= max(AbsTolerance, |expected|*RelTolerance).
func Close(expected, actual float64) bool {
	return utils.AlmostEqual(expected, actual, AbsTolerance, RelTolerance)
}

type comparer struct {
	out []Mismatch
}

func (c *comparer) add(path, format string, args ...any) {
	c.out = append(c.out, Mismatch{Path: path, Reason: fmt.Sprintf(format, args...)})
}

func (c *comparer) number(path string, expected, actual float64) {
	if !Close(expected, actual) {
		c.add(path, "expected=%v, actual=%v, diff=%v", expected, actual, math.Abs(actual-expected))
	}
}

func (c *comparer) optional(path string, expected, actual *float64) {
	switch {
	case expected == nil && actual == nil:
	case expected == nil:
		c.add(path, "expected null, actual=%v", *actual)
	case actual == nil:
		c.add(path, "expected=%v, actual null", *expected)
	default:
		c.number(path, *expected, *actual)
	}
}

func (c *comparer) vector(path string, expected, actual []float64) {
	switch {
	case expected == nil && actual == nil:
		return
	case expected == nil:
		c.add(path, "expected null, actual has %d entries", len(actual))
		return
	case actual == nil:
		c.add(path, "expected %d entries, actual null", len(expected))
		return
	case len(expected) != len(actual):
		c.add(path, "array length: expected %d, actual %d", len(expected), len(actual))
		return
	}
	for i := range expected {
		c.number(fmt.Sprintf("%s[%d]", path, i), expected[i], actual[i])
	}
}

func (c *comparer) params(path string, expected, actual models.Params) {
	en, an := expected.Names(), actual.Names()
	slices.Sort(en)
	slices.Sort(an)
	if !slices.Equal(en, an) {
		c.add(path, "object keys: expected %v, actual %v", en, an)
		return
	}
	for _, name := range en {
		e, _ := expected.Get(name)
		a, _ := actual.Get(name)
		p := path + "." + name
		switch {
		case e.IsNumber() && a.IsNumber():
			c.number(p, e.Number, a.Number)
		case e.IsNumber() != a.IsNumber():
			c.add(p, "expected %s, actual %s", e, a)
		case e.Text != a.Text:
			c.add(p, "expected %q, actual %q", e.Text, a.Text)
		}
	}
}

func (c *comparer) trial(path string, expected, actual models.TrialRecord) {
	if expected.Number != actual.Number {
		c.add(path+".number", "expected %d, actual %d", expected.Number, actual.Number)
	}
	c.params(path+".params", expected.Params, actual.Params)
	if expected.State != actual.State {
		c.add(path+".state", "expected %s, actual %s", expected.State, actual.State)
	}
	c.optional(path+".value", expected.Value, actual.Value)
	c.vector(path+".values", expected.Values, actual.Values)

	ivPath := path + ".intermediate_values"
	if len(expected.IntermediateValues) != len(actual.IntermediateValues) {
		c.add(ivPath, "array length: expected %d, actual %d", len(expected.IntermediateValues), len(actual.IntermediateValues))
	} else {
		for i, e := range expected.IntermediateValues {
			a := actual.IntermediateValues[i]
			if e.Step != a.Step {
				c.add(fmt.Sprintf("%s[%d][0]", ivPath, i), "expected step %d, actual %d", e.Step, a.Step)
			}
			c.number(fmt.Sprintf("%s[%d][1]", ivPath, i), e.Value, a.Value)
		}
	}
	c.vector(path+".constraint", expected.Constraint, actual.Constraint)
}

// Compare returns every difference between expected and actual. Scenarios
// are matched by name and runs by seed; metadata is not compared. Numbers
// compare with Close, text exactly.
func Compare(expected, actual *models.Fixture) []Mismatch {
	c := &comparer{}
	for _, es := range expected.Scenarios {
		as, ok := actual.Scenario(es.Name)
		if !ok {
			c.add(es.Name, "scenario missing from actual fixture")
			continue
		}
		if es.TellLag != as.TellLag {
			c.add(es.Name+".tellLag", "expected %d, actual %d", es.TellLag, as.TellLag)
		}
		if !slices.Equal(es.ObjectiveDirections, as.ObjectiveDirections) {
			c.add(es.Name+".objectiveDirections", "expected %v, actual %v", es.ObjectiveDirections, as.ObjectiveDirections)
		}

		for _, er := range es.Runs {
			runPath := fmt.Sprintf("%s/seed=%d", es.Name, er.Seed)
			ar, ok := findRun(as.Runs, er.Seed)
			if !ok {
				c.add(runPath, "run missing from actual fixture")
				continue
			}
			if len(er.Trials) != len(ar.Trials) {
				c.add(runPath, "expected %d trials, actual %d", len(er.Trials), len(ar.Trials))
			}
			n := min(len(er.Trials), len(ar.Trials))
			for i := 0; i < n; i++ {
				c.trial(trialPath(es.Name, er.Seed, i), er.Trials[i], ar.Trials[i])
			}
		}
	}
	for _, as := range actual.Scenarios {
		if _, ok := expected.Scenario(as.Name); !ok {
			c.add(as.Name, "unexpected scenario in actual fixture")
		}
	}
	return c.out
}

func findRun(runs []models.ScenarioRun, seed int) (models.ScenarioRun, bool) {
	for _, r := range runs {
		if r.Seed == seed {
			return r, true
		}
	}
	return models.ScenarioRun{}, false
}
