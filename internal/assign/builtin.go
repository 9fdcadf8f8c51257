// Package assign collects example AssignmentFunc implementations a
// host can register on a Brain (spec.md §3's "Assignments as named
// functions"). None of these are required by the core engine; they
// exist to demonstrate the registration pattern.
package assign

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gitrdm/ruleforge/pkg/ruleengine"
)

// Concat joins the string answers of a rule's dependencies, in
// sorted-by-name order, with a single space. It fails with an
// AssignmentError if any dependency did not resolve to a String.
func Concat(rule ruleengine.Rule, facts *ruleengine.Facts, dependencies ruleengine.QuestionSet) (ruleengine.AnswerWithDependencies, *ruleengine.AssignmentError) {
	questions := dependencies.Slice()
	sort.Slice(questions, func(i, j int) bool { return questions[i] < questions[j] })
	parts := make([]string, 0, len(questions))
	for _, q := range questions {
		s, err := facts.AskString(q)
		if err != nil {
			return ruleengine.AnswerWithDependencies{}, &ruleengine.AssignmentError{
				Name:   "concat",
				Reason: fmt.Sprintf("dependency %q did not resolve to a string: %v", q, err),
			}
		}
		parts = append(parts, s)
	}
	return ruleengine.AnswerWithDependencies{
		Answer:       ruleengine.StringAnswer(strings.Join(parts, " ")),
		Dependencies: dependencies,
	}, nil
}

// CountTrue counts how many of a rule's dependencies resolve to a
// Bool answer equal to true, returning the count as an Int.
func CountTrue(rule ruleengine.Rule, facts *ruleengine.Facts, dependencies ruleengine.QuestionSet) (ruleengine.AnswerWithDependencies, *ruleengine.AssignmentError) {
	var n int64
	for _, q := range dependencies.Slice() {
		b, err := facts.AskBool(q)
		if err != nil {
			return ruleengine.AnswerWithDependencies{}, &ruleengine.AssignmentError{
				Name:   "count_true",
				Reason: fmt.Sprintf("dependency %q did not resolve to a bool: %v", q, err),
			}
		}
		if b {
			n++
		}
	}
	return ruleengine.AnswerWithDependencies{
		Answer:       ruleengine.IntAnswer(n),
		Dependencies: dependencies,
	}, nil
}

// SumInts sums the Int answers of a rule's dependencies.
func SumInts(rule ruleengine.Rule, facts *ruleengine.Facts, dependencies ruleengine.QuestionSet) (ruleengine.AnswerWithDependencies, *ruleengine.AssignmentError) {
	var sum int64
	for _, q := range dependencies.Slice() {
		i, err := facts.AskInt(q)
		if err != nil {
			return ruleengine.AnswerWithDependencies{}, &ruleengine.AssignmentError{
				Name:   "sum_ints",
				Reason: fmt.Sprintf("dependency %q did not resolve to an int: %v", q, err),
			}
		}
		sum += i
	}
	return ruleengine.AnswerWithDependencies{
		Answer:       ruleengine.IntAnswer(sum),
		Dependencies: dependencies,
	}, nil
}

// EchoPayload returns rule.Answer unchanged. It is useful for an
// assignment rule whose "payload" (the text following the assignment
// name in a human rule line) is itself the literal answer, with the
// named assignment used only to mark the rule as host-computed for
// diagnostics.
func EchoPayload(rule ruleengine.Rule, facts *ruleengine.Facts, dependencies ruleengine.QuestionSet) (ruleengine.AnswerWithDependencies, *ruleengine.AssignmentError) {
	return ruleengine.AnswerWithDependencies{
		Answer:       rule.Answer,
		Dependencies: dependencies,
	}, nil
}
