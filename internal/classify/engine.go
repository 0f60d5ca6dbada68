// Package classify decides between Movie and Series for files that look
// like both, using an ordered list of signed scoring rules.
package classify

import (
	"fmt"
)

// Outcome is the result of running the rule list.
type Outcome int

const (
	Ambiguous Outcome = iota
	Series
	Movie
)

func (o Outcome) String() string {
	switch o {
	case Series:
		return "series"
	case Movie:
		return "movie"
	default:
		return "ambiguous"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Rule adds its scores to the accumulators when Predicate returns true.
// A Predicate error aborts the whole decision.
type Rule struct {
	Name        string
	SeriesScore int
	MovieScore  int
	Predicate   func() (bool, error)
}

// Decision records the outcome and how it was reached.
type Decision struct {
	Outcome     Outcome `json:"outcome"`
	SeriesScore int     `json:"series_score"`
	MovieScore  int     `json:"movie_score"`
	// Evaluated is the number of rules whose predicate ran.
	Evaluated int `json:"evaluated"`
	// Fired lists the rules whose predicate returned true, in order.
	Fired []string `json:"fired"`
}

// Last returns the name of the last rule that fired, or "".
func (d Decision) Last() string {
	if len(d.Fired) == 0 {
		return ""
	}
	return d.Fired[len(d.Fired)-1]
}

// RuleError wraps a predicate failure with the rule that raised it.
type RuleError struct {
	Rule string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// Decide evaluates rules in order. After every rule it checks for a
// decisive margin: series >= 1 with movie <= -1 means Series, and the
// mirror image means Movie. Evaluation stops at the first decisive margin;
// running out of rules leaves the file Ambiguous.
func Decide(rules []Rule) (Decision, error) {
	var d Decision
	for _, r := range rules {
		ok, err := r.Predicate()
		d.Evaluated++
		if err != nil {
			return d, &RuleError{Rule: r.Name, Err: err}
		}
		if ok {
			d.SeriesScore += r.SeriesScore
			d.MovieScore += r.MovieScore
			d.Fired = append(d.Fired, r.Name)
		}

		switch {
		case d.SeriesScore >= 1 && d.MovieScore <= -1:
			d.Outcome = Series
			return d, nil
		case d.MovieScore >= 1 && d.SeriesScore <= -1:
			d.Outcome = Movie
			return d, nil
		}
	}
	return d, nil
}
