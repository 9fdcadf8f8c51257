package ruleengine

// AmbiguousRules is a set of rules sharing the maximum (priority,
// size) that all matched during a single rule-selection pass
// (spec.md §4.3 step 5, under StrategyUndefined).
type AmbiguousRules []Rule

// AnswerWithDependencies pairs an Answer with the set of Questions
// consulted while deriving it, plus any rule-selection ambiguities
// journaled while doing so (spec.md §3).
type AnswerWithDependencies struct {
	Answer          Answer
	Dependencies    QuestionSet
	AmbiguousRules  []AmbiguousRules
}

// Known wraps a as a client-supplied known fact: no dependencies, no
// ambiguities (spec.md §4.4 "know").
func Known(a Answer) AnswerWithDependencies {
	return AnswerWithDependencies{Answer: a, Dependencies: NewQuestionSet()}
}
