package ruleengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBrainCandidatesSortedByPriorityThenSize(t *testing.T) {
	brain := NewBrain(nil)
	low := Rule{Priority: 1, Predicate: True(), Question: "q", Answer: StringAnswer("low")}
	high := Rule{Priority: 2, Predicate: True(), Question: "q", Answer: StringAnswer("high")}
	brain.Add(low, high)

	candidates := brain.Candidates("q")
	require.Len(t, candidates, 2)
	require.Equal(t, "high", func() string { s, _ := candidates[0].Answer.Str(); return s }())
}

// TestBrainAmbiguityJournaledAtInsertion reproduces spec.md §8
// invariant 6's insertion half: two rules sharing (priority, size)
// are recorded as an ambiguous pair as soon as both are added.
func TestBrainAmbiguityJournaledAtInsertion(t *testing.T) {
	brain := NewBrain(nil)
	a := Rule{Priority: 1, Predicate: True(), Question: "q", Answer: StringAnswer("a")}
	b := Rule{Priority: 1, Predicate: True(), Question: "q", Answer: StringAnswer("b")}
	brain.Add(a, b)

	pairs := brain.Ambiguities("q")
	require.Len(t, pairs, 1)
}

// TestAskAmbiguousUnderFail reproduces spec.md §8 scenario 3.
func TestAskAmbiguousUnderFail(t *testing.T) {
	brain := NewBrain(&BrainConfig{Strategy: StrategyFail})
	brain.Add(
		Rule{Priority: 1, Predicate: True(), Question: "q", Answer: StringAnswer("a")},
		Rule{Priority: 1, Predicate: True(), Question: "q", Answer: StringAnswer("b")},
	)
	facts := NewFacts(brain, nil)

	_, err := facts.Ask("q")
	var ambiguous *AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	require.Equal(t, Question("q"), ambiguous.Question)
	require.Len(t, ambiguous.Candidates, 2)
}

// TestAskAmbiguousUnderUndefined reproduces spec.md §8 scenario 4.
func TestAskAmbiguousUnderUndefined(t *testing.T) {
	brain := NewBrain(&BrainConfig{Strategy: StrategyUndefined})
	brain.Add(
		Rule{Priority: 1, Predicate: True(), Question: "q", Answer: StringAnswer("a")},
		Rule{Priority: 1, Predicate: True(), Question: "q", Answer: StringAnswer("b")},
	)
	facts := NewFacts(brain, nil)

	result, err := facts.Ask("q")
	require.NoError(t, err)
	s, _ := result.Answer.Str()
	require.Equal(t, "a", s)
	require.Len(t, result.AmbiguousRules, 1)
	require.Len(t, result.AmbiguousRules[0], 2)
}

// TestAskPriorityThenSizeExcludesWeakerCandidates reproduces spec.md
// §8 invariant 7: a strictly stronger rule hides a weaker one from the
// candidate set entirely.
func TestAskPriorityThenSizeExcludesWeakerCandidates(t *testing.T) {
	brain := NewBrain(&BrainConfig{Strategy: StrategyFail})
	brain.Add(
		Rule{Priority: 1, Predicate: True(), Question: "q", Answer: StringAnswer("weak")},
		Rule{Priority: 2, Predicate: True(), Question: "q", Answer: StringAnswer("strong")},
	)
	facts := NewFacts(brain, nil)

	result, err := facts.Ask("q")
	require.NoError(t, err)
	s, _ := result.Answer.Str()
	require.Equal(t, "strong", s)
	require.Empty(t, result.AmbiguousRules)
}

func TestAskNoRuleFound(t *testing.T) {
	brain := NewBrain(nil)
	facts := NewFacts(brain, nil)
	_, err := facts.Ask("missing")
	var notFound *NoRuleFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestAskFiresNamedAssignment(t *testing.T) {
	brain := NewBrain(nil)
	brain.AddAssignment("shout", func(rule Rule, facts *Facts, deps QuestionSet) (AnswerWithDependencies, *AssignmentError) {
		return AnswerWithDependencies{Answer: StringAnswer("SHOUT"), Dependencies: deps}, nil
	})
	brain.Add(Rule{Priority: 1, Predicate: True(), Question: "q", Assignment: "shout"})
	facts := NewFacts(brain, nil)

	result, err := facts.Ask("q")
	require.NoError(t, err)
	s, _ := result.Answer.Str()
	require.Equal(t, "SHOUT", s)
}

func TestAskUnknownAssignmentFails(t *testing.T) {
	brain := NewBrain(nil)
	brain.Add(Rule{Priority: 1, Predicate: True(), Question: "q", Assignment: "missing"})
	facts := NewFacts(brain, nil)

	_, err := facts.Ask("q")
	var failed *AssignmentFailedError
	require.ErrorAs(t, err, &failed)
	require.ErrorIs(t, failed.Err, ErrAssignmentNotFound)
}
