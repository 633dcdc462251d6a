// Package validation decides whether a form step may be left. Rules are pure
// functions of the step state evaluated in a fixed order; the first error
// recorded for a field wins.
package validation

import (
	"onboarding/internal/fielderr"
	"onboarding/internal/form/models"
)

// Report is the outcome of evaluating one step.
type Report struct {
	Errors fielderr.Errors `json:"errors"`
	// Age is set once a valid date of birth is known.
	Age   *int `json:"age,omitempty"`
	Valid bool `json:"valid"`
}

// Gate evaluates the rules of a step.
type Gate struct {
	rules map[models.StepID][]Rule
}

// NewGate builds a gate with the default rule lists.
func NewGate(fv FieldValidator) *Gate {
	return &Gate{rules: DefaultRules(fv)}
}

// NewGateWithRules builds a gate from explicit rule lists.
func NewGateWithRules(rules map[models.StepID][]Rule) *Gate {
	return &Gate{rules: rules}
}

// Rules returns the rule names of a step in evaluation order.
func (g *Gate) Rules(step models.StepID) []string {
	names := make([]string, 0, len(g.rules[step]))
	for _, r := range g.rules[step] {
		names = append(names, r.Name)
	}
	return names
}

// Evaluate runs every rule of step against s. A step without rules is valid.
func (g *Gate) Evaluate(step models.StepID, s State) Report {
	errs := fielderr.Errors{}
	for _, r := range g.rules[step] {
		for _, fe := range r.Check(s) {
			errs.Add(fe)
		}
	}
	rep := Report{Errors: errs, Valid: len(errs) == 0}
	if age, ok := s.Age(); ok {
		rep.Age = &age
	}
	return rep
}
