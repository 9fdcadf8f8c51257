package assign

import (
	"testing"

	"github.com/gitrdm/ruleforge/pkg/ruleengine"
	"github.com/stretchr/testify/require"
)

func TestConcatJoinsStringDependencies(t *testing.T) {
	facts := ruleengine.NewFacts(ruleengine.NewBrain(nil), nil)
	facts.Know("a", ruleengine.StringAnswer("hello"))
	facts.Know("b", ruleengine.StringAnswer("world"))

	deps := ruleengine.NewQuestionSet("a", "b")
	result, err := Concat(ruleengine.Rule{}, facts, deps)
	require.Nil(t, err)
	s, ok := result.Answer.Str()
	require.True(t, ok)
	require.Contains(t, s, "hello")
	require.Contains(t, s, "world")
}

func TestConcatFailsOnNonStringDependency(t *testing.T) {
	facts := ruleengine.NewFacts(ruleengine.NewBrain(nil), nil)
	facts.Know("a", ruleengine.IntAnswer(3))

	deps := ruleengine.NewQuestionSet("a")
	_, err := Concat(ruleengine.Rule{}, facts, deps)
	require.NotNil(t, err)
	require.Equal(t, "concat", err.Name)
}

func TestCountTrueCountsBoolDependencies(t *testing.T) {
	facts := ruleengine.NewFacts(ruleengine.NewBrain(nil), nil)
	facts.Know("a", ruleengine.BoolAnswer(true))
	facts.Know("b", ruleengine.BoolAnswer(false))
	facts.Know("c", ruleengine.BoolAnswer(true))

	deps := ruleengine.NewQuestionSet("a", "b", "c")
	result, err := CountTrue(ruleengine.Rule{}, facts, deps)
	require.Nil(t, err)
	n, ok := result.Answer.Int()
	require.True(t, ok)
	require.Equal(t, int64(2), n)
}

func TestCountTrueFailsOnNonBoolDependency(t *testing.T) {
	facts := ruleengine.NewFacts(ruleengine.NewBrain(nil), nil)
	facts.Know("a", ruleengine.StringAnswer("nope"))

	deps := ruleengine.NewQuestionSet("a")
	_, err := CountTrue(ruleengine.Rule{}, facts, deps)
	require.NotNil(t, err)
	require.Equal(t, "count_true", err.Name)
}

func TestSumIntsSumsIntDependencies(t *testing.T) {
	facts := ruleengine.NewFacts(ruleengine.NewBrain(nil), nil)
	facts.Know("a", ruleengine.IntAnswer(2))
	facts.Know("b", ruleengine.IntAnswer(5))

	deps := ruleengine.NewQuestionSet("a", "b")
	result, err := SumInts(ruleengine.Rule{}, facts, deps)
	require.Nil(t, err)
	n, ok := result.Answer.Int()
	require.True(t, ok)
	require.Equal(t, int64(7), n)
}

func TestSumIntsFailsOnNonIntDependency(t *testing.T) {
	facts := ruleengine.NewFacts(ruleengine.NewBrain(nil), nil)
	facts.Know("a", ruleengine.DoubleAnswer(1.5))

	deps := ruleengine.NewQuestionSet("a")
	_, err := SumInts(ruleengine.Rule{}, facts, deps)
	require.NotNil(t, err)
	require.Equal(t, "sum_ints", err.Name)
}

func TestEchoPayloadReturnsRuleAnswerUnchanged(t *testing.T) {
	facts := ruleengine.NewFacts(ruleengine.NewBrain(nil), nil)
	rule := ruleengine.Rule{Answer: ruleengine.StringAnswer("verbatim")}

	result, err := EchoPayload(rule, facts, ruleengine.NewQuestionSet())
	require.Nil(t, err)
	s, ok := result.Answer.Str()
	require.True(t, ok)
	require.Equal(t, "verbatim", s)
}
