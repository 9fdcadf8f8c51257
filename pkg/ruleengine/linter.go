package ruleengine

import (
	"fmt"
	"sort"
)

// ConstraintKind identifies an AnswerConstraint's dynamic variant
// (spec.md §4.6's "AnswerConstraint ∈ {Strings([s…]), String, Bool,
// Int, Double, Any}").
type ConstraintKind int

const (
	ConstraintAny ConstraintKind = iota
	ConstraintString
	ConstraintBool
	ConstraintInt
	ConstraintDouble
	ConstraintStrings
)

// AnswerConstraint restricts the answers a linted question may carry.
// ConstraintStrings additionally restricts a String answer to a fixed
// enumeration.
type AnswerConstraint struct {
	Kind    ConstraintKind
	Strings []string // only meaningful when Kind == ConstraintStrings
}

// AnyConstraint accepts any answer.
func AnyConstraint() AnswerConstraint { return AnswerConstraint{Kind: ConstraintAny} }

// StringConstraint accepts any String answer.
func StringConstraint() AnswerConstraint { return AnswerConstraint{Kind: ConstraintString} }

// BoolConstraint accepts any Bool answer.
func BoolConstraint() AnswerConstraint { return AnswerConstraint{Kind: ConstraintBool} }

// IntConstraint accepts any Int answer.
func IntConstraint() AnswerConstraint { return AnswerConstraint{Kind: ConstraintInt} }

// DoubleConstraint accepts any Double answer.
func DoubleConstraint() AnswerConstraint { return AnswerConstraint{Kind: ConstraintDouble} }

// StringsConstraint accepts a String answer from the given enumeration.
func StringsConstraint(values ...string) AnswerConstraint {
	return AnswerConstraint{Kind: ConstraintStrings, Strings: values}
}

// matches reports whether a satisfies c.
func (c AnswerConstraint) matches(a Answer) bool {
	switch c.Kind {
	case ConstraintAny:
		return true
	case ConstraintString:
		_, ok := a.Str()
		return ok
	case ConstraintBool:
		_, ok := a.Bool()
		return ok
	case ConstraintInt:
		_, ok := a.Int()
		return ok
	case ConstraintDouble:
		_, ok := a.Double()
		return ok
	case ConstraintStrings:
		s, ok := a.Str()
		if !ok {
			return false
		}
		for _, v := range c.Strings {
			if v == s {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// LintSpec is the optional specification a Linter checks a rule set
// against (spec.md §4.6's "an optional specification
// {lhs: Map<Question, AnswerConstraint>, rhs: Map<Question,
// AnswerConstraint>}").
type LintSpec struct {
	LHS map[Question]AnswerConstraint
	RHS map[Question]AnswerConstraint
}

// LintIssue is a single linter finding, always carrying the source
// line it was raised against so issues can be sorted and reported
// deterministically (spec.md §6's "sorted by line number and then by
// message").
type LintIssue struct {
	Line    int
	Message string
}

// Lint runs every check in spec.md §4.6 against rules, returning every
// issue found sorted by line then message. spec may be nil, in which
// case only the spec-independent checks (duplicates, predicate
// well-formedness) run.
func Lint(rules []Rule, spec *LintSpec) []LintIssue {
	var issues []LintIssue

	issues = append(issues, lintDuplicates(rules)...)
	issues = append(issues, lintWellFormedness(rules)...)
	if spec != nil {
		issues = append(issues, lintAgainstSpec(rules, spec)...)
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].Message < issues[j].Message
	})
	return issues
}

// lintDuplicates flags a rule whose SourceText (the parsed line with
// its comment and surrounding whitespace stripped) repeats one already
// seen (spec.md §4.6 "duplicates: identical source lines appear once
// only"). Two rules never share a SourceLine — ParseRuleFile assigns
// each line its own number — so the comparison has to be on content,
// not position. Rules with no SourceText (built directly rather than
// parsed) carry nothing to compare and are skipped.
func lintDuplicates(rules []Rule) []LintIssue {
	seen := make(map[string]bool)
	var issues []LintIssue
	for _, r := range rules {
		if r.SourceText == "" {
			continue
		}
		if seen[r.SourceText] {
			issues = append(issues, LintIssue{Line: r.SourceLine, Message: fmt.Sprintf("duplicate rule text: %q", r.SourceText)})
			continue
		}
		seen[r.SourceText] = true
	}
	return issues
}

// lintWellFormedness statically flags the structural rejects the
// evaluator would otherwise only discover at evaluation time:
// predicate-vs-predicate with an ordering operator, and
// predicate-vs-answer of any operator (spec.md §4.6).
func lintWellFormedness(rules []Rule) []LintIssue {
	var issues []LintIssue
	for _, r := range rules {
		walkPredicate(r.Predicate, func(p Predicate) {
			if p.Kind() != PredComparison {
				return
			}
			lhs, op, rhs := p.Comparison()
			lk, rk := lhs.Kind(), rhs.Kind()
			switch {
			case lk == ExprPredicate && rk == ExprPredicate && op != OpEq && op != OpNe:
				issues = append(issues, LintIssue{Line: r.SourceLine, Message: "ordering operator applied to two predicates"})
			case lk == ExprPredicate && rk == ExprAnswer, lk == ExprAnswer && rk == ExprPredicate:
				issues = append(issues, LintIssue{Line: r.SourceLine, Message: "predicate compared directly with an answer literal"})
			}
		})
	}
	return issues
}

// walkPredicate visits p and every predicate reachable through its
// operands and comparison operands, in no particular order.
func walkPredicate(p Predicate, visit func(Predicate)) {
	visit(p)
	switch p.Kind() {
	case PredNot:
		walkPredicate(p.Operand(), visit)
	case PredAnd, PredOr:
		for _, operand := range p.Operands() {
			walkPredicate(operand, visit)
		}
	case PredComparison:
		lhs, _, rhs := p.Comparison()
		if nested, ok := lhs.AsPredicate(); ok {
			walkPredicate(nested, visit)
		}
		if nested, ok := rhs.AsPredicate(); ok {
			walkPredicate(nested, visit)
		}
	}
}

// lintAgainstSpec implements spec.md §4.6's spec-dependent checks (a)
// through (d).
func lintAgainstSpec(rules []Rule, spec *LintSpec) []LintIssue {
	var issues []LintIssue

	rhsQuestions := make(map[Question][]Rule)
	for _, r := range rules {
		rhsQuestions[r.Question] = append(rhsQuestions[r.Question], r)
	}

	for q, rhsRules := range rhsQuestions {
		constraint, declared := spec.RHS[q]
		if !declared {
			issues = append(issues, LintIssue{
				Line:    firstLine(rhsRules),
				Message: fmt.Sprintf("question %q has rules but is not declared in the lint spec's rhs", q),
			})
			continue
		}

		hasFallback := false
		for _, r := range rhsRules {
			if r.Priority == 0 && r.Predicate.Kind() == PredTrue {
				hasFallback = true
			}
			if !r.HasAssignment() && !constraint.matches(r.Answer) {
				issues = append(issues, LintIssue{
					Line:    r.SourceLine,
					Message: fmt.Sprintf("answer for %q does not satisfy its declared constraint", q),
				})
			}
		}
		if !hasFallback {
			issues = append(issues, LintIssue{
				Line:    firstLine(rhsRules),
				Message: fmt.Sprintf("question %q has no fallback rule (priority 0, predicate True)", q),
			})
		}
	}

	for _, r := range rules {
		walkPredicate(r.Predicate, func(p Predicate) {
			if p.Kind() != PredComparison {
				return
			}
			lhs, _, rhs := p.Comparison()
			issues = append(issues, lintComparisonAgainstSpec(r, lhs, rhs, spec)...)
			issues = append(issues, lintComparisonAgainstSpec(r, rhs, lhs, spec)...)
		})
	}

	return issues
}

// lintComparisonAgainstSpec checks one Question side of a comparison
// against its declared lhs constraint (spec.md §4.6 check (d)): a
// question declared int/double/string may not be compared to a
// literal of a different kind, and a question declared bool may only
// be compared against another Question (a predicate–question
// comparison), never against a literal Answer.
func lintComparisonAgainstSpec(r Rule, side, other Expr, spec *LintSpec) []LintIssue {
	q, ok := side.AsQuestion()
	if !ok {
		return nil
	}
	constraint, declared := spec.LHS[q]
	if !declared || constraint.Kind == ConstraintAny {
		return nil
	}

	literal, isLiteral := other.AsAnswer()
	if !isLiteral {
		return nil
	}

	if constraint.Kind == ConstraintBool {
		return []LintIssue{{
			Line:    r.SourceLine,
			Message: fmt.Sprintf("question %q is declared bool and may not be compared to a literal", q),
		}}
	}
	if !constraint.matches(literal) {
		return []LintIssue{{
			Line:    r.SourceLine,
			Message: fmt.Sprintf("question %q is compared to a literal of the wrong type", q),
		}}
	}
	return nil
}

// firstLine returns the smallest SourceLine among rules, or 0 if none
// carry one.
func firstLine(rules []Rule) int {
	best := 0
	for _, r := range rules {
		if best == 0 || (r.SourceLine != 0 && r.SourceLine < best) {
			best = r.SourceLine
		}
	}
	return best
}
