package ruleengine

// AssignmentName identifies a host-registered AssignmentFunc by name
// (spec.md §3's "Rule.assignment"). Keeping assignments named rather
// than embedded as function values is what makes a Rule fully
// serializable (spec.md §9 "Assignments as named functions").
type AssignmentName string

// AssignmentFunc computes a rule's final answer given the rule that
// fired, the Facts it fired against, and the dependency set captured
// while evaluating the rule's predicate (spec.md §4.3 step 6).
type AssignmentFunc func(rule Rule, facts *Facts, dependencies QuestionSet) (AnswerWithDependencies, *AssignmentError)

// Rule is a conditional implication: if Predicate evaluates true
// against a Facts store, Question resolves to Answer (or, when
// Assignment is set, to whatever the named AssignmentFunc computes)
// (spec.md §3).
type Rule struct {
	Priority   int
	Predicate  Predicate
	Question   Question
	Answer     Answer
	Assignment AssignmentName // empty means "no assignment"

	// SourceLine and Comment are optional diagnostics carried from the
	// human rule-file parser (spec.md §4.6); they round-trip through
	// JSON as optional fields and are never required for structural
	// equality.
	SourceLine int
	Comment    string

	// SourceText is the rule's source line with its trailing comment
	// stripped and surrounding whitespace trimmed, as produced by
	// ParseRuleLine. The linter's duplicate check compares this field,
	// not SourceLine, since two rules never share a line number but
	// can share identical content. Empty for rules built directly
	// rather than parsed from text.
	SourceText string
}

// HasAssignment reports whether the rule names an assignment function.
func (r Rule) HasAssignment() bool { return r.Assignment != "" }

// String renders the rule for diagnostics.
func (r Rule) String() string {
	if r.HasAssignment() {
		return string(r.Question) + " = (" + string(r.Assignment) + ") <= " + r.Predicate.String()
	}
	return string(r.Question) + " = " + r.Answer.String() + " <= " + r.Predicate.String()
}

// dominates reports whether (priority, size) of r is not strictly
// less than (priority, size) of other — i.e. r is a peer of, or
// stronger than, other (spec.md §4.2's sort key, §4.3 step 2).
func dominates(priority, size, otherPriority, otherSize int) bool {
	if priority != otherPriority {
		return priority > otherPriority
	}
	return size >= otherSize
}

// tied reports whether two (priority, size) pairs are exactly equal —
// the ambiguity condition of spec.md §4.2.
func tied(priority, size, otherPriority, otherSize int) bool {
	return priority == otherPriority && size == otherSize
}
