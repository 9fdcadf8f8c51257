package ruleengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLintDetectsDuplicateRuleText reproduces spec.md §4.6's "identical
// source lines appear once only" against what ParseRuleFile actually
// produces: two lines with identical content but distinct line
// numbers (every parsed rule gets its own SourceLine, so the check has
// to compare SourceText, not SourceLine).
func TestLintDetectsDuplicateRuleText(t *testing.T) {
	lines := []string{
		`1: True => q = a`,
		`1: True => q = a`,
	}
	rules, errs := ParseRuleFile(lines, testParsePredicate)
	require.Empty(t, errs)
	require.Len(t, rules, 2)
	require.NotEqual(t, rules[0].SourceLine, rules[1].SourceLine)

	issues := Lint(rules, nil)
	require.Len(t, issues, 1)
	require.Contains(t, issues[0].Message, "duplicate rule text")
}

func TestLintIgnoresRulesWithoutSourceText(t *testing.T) {
	rules := []Rule{
		{Priority: 1, Predicate: True(), Question: "q", Answer: StringAnswer("a"), SourceLine: 3},
		{Priority: 1, Predicate: True(), Question: "q", Answer: StringAnswer("a"), SourceLine: 3},
	}
	issues := Lint(rules, nil)
	require.Empty(t, issues)
}

func TestLintDetectsOrderingOnPredicatePair(t *testing.T) {
	rules := []Rule{
		{
			Priority:   1,
			Predicate:  Comparison(PredicateExpr(True()), OpLt, PredicateExpr(False())),
			Question:   "q",
			Answer:     StringAnswer("a"),
			SourceLine: 1,
		},
	}
	issues := Lint(rules, nil)
	require.Len(t, issues, 1)
	require.Contains(t, issues[0].Message, "ordering operator")
}

func TestLintDetectsPredicateComparedWithAnswer(t *testing.T) {
	rules := []Rule{
		{
			Priority:   1,
			Predicate:  Comparison(PredicateExpr(True()), OpEq, AnswerExpr(BoolAnswer(true))),
			Question:   "q",
			Answer:     StringAnswer("a"),
			SourceLine: 1,
		},
	}
	issues := Lint(rules, nil)
	require.Len(t, issues, 1)
	require.Contains(t, issues[0].Message, "predicate compared directly")
}

func TestLintAgainstSpecRequiresDeclaredRHS(t *testing.T) {
	rules := []Rule{{Priority: 0, Predicate: True(), Question: "undeclared", Answer: StringAnswer("x"), SourceLine: 1}}
	spec := &LintSpec{RHS: map[Question]AnswerConstraint{}}
	issues := Lint(rules, spec)
	require.Len(t, issues, 1)
	require.Contains(t, issues[0].Message, "not declared")
}

func TestLintAgainstSpecRequiresFallback(t *testing.T) {
	rules := []Rule{
		{Priority: 1, Predicate: True(), Question: "q", Answer: StringAnswer("x"), SourceLine: 1},
	}
	spec := &LintSpec{RHS: map[Question]AnswerConstraint{"q": StringConstraint()}}
	issues := Lint(rules, spec)
	require.Len(t, issues, 1)
	require.Contains(t, issues[0].Message, "no fallback rule")
}

func TestLintAgainstSpecAnswerConstraintMismatch(t *testing.T) {
	rules := []Rule{
		{Priority: 0, Predicate: True(), Question: "q", Answer: IntAnswer(1), SourceLine: 1},
	}
	spec := &LintSpec{RHS: map[Question]AnswerConstraint{"q": StringConstraint()}}
	issues := Lint(rules, spec)
	require.Len(t, issues, 1)
	require.Contains(t, issues[0].Message, "does not satisfy")
}

func TestLintAgainstSpecLHSBoolRejectsLiteralComparison(t *testing.T) {
	rules := []Rule{
		{
			Priority:   0,
			Predicate:  Comparison(QuestionExpr("flag"), OpEq, AnswerExpr(BoolAnswer(true))),
			Question:   "q",
			Answer:     StringAnswer("x"),
			SourceLine: 1,
		},
	}
	spec := &LintSpec{
		LHS: map[Question]AnswerConstraint{"flag": BoolConstraint()},
		RHS: map[Question]AnswerConstraint{"q": StringConstraint()},
	}
	issues := Lint(rules, spec)
	found := false
	for _, issue := range issues {
		if issue.Message == `question "flag" is declared bool and may not be compared to a literal` {
			found = true
		}
	}
	require.True(t, found)
}

func TestLintAgainstSpecLHSTypeMismatch(t *testing.T) {
	rules := []Rule{
		{
			Priority:   0,
			Predicate:  Comparison(QuestionExpr("age"), OpEq, AnswerExpr(StringAnswer("old"))),
			Question:   "q",
			Answer:     StringAnswer("x"),
			SourceLine: 1,
		},
	}
	spec := &LintSpec{
		LHS: map[Question]AnswerConstraint{"age": IntConstraint()},
		RHS: map[Question]AnswerConstraint{"q": StringConstraint()},
	}
	issues := Lint(rules, spec)
	found := false
	for _, issue := range issues {
		if issue.Message == `question "age" is compared to a literal of the wrong type` {
			found = true
		}
	}
	require.True(t, found)
}

func TestLintIssuesSortedByLineThenMessage(t *testing.T) {
	rules := []Rule{
		{Priority: 1, Predicate: True(), Question: "q", Answer: StringAnswer("b"), SourceLine: 4, SourceText: "1: True => q = b"},
		{Priority: 1, Predicate: True(), Question: "q", Answer: StringAnswer("b"), SourceLine: 5, SourceText: "1: True => q = b"},
		{Priority: 1, Predicate: True(), Question: "q", Answer: StringAnswer("a"), SourceLine: 1, SourceText: "1: True => q = a"},
		{Priority: 1, Predicate: True(), Question: "q", Answer: StringAnswer("a"), SourceLine: 2, SourceText: "1: True => q = a"},
	}
	issues := Lint(rules, nil)
	require.Len(t, issues, 2)
	require.Equal(t, 2, issues[0].Line)
	require.Equal(t, 5, issues[1].Line)
}
