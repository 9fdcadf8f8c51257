package ruleengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func samplePredicate() Predicate {
	return And(
		Comparison(QuestionExpr("sky"), OpEq, AnswerExpr(StringAnswer("blue"))),
		Not(Comparison(QuestionExpr("n"), OpLt, AnswerExpr(IntAnswer(5)))),
		Or(True(), False()),
	)
}

func TestPredicateJSONRoundTrip(t *testing.T) {
	p := samplePredicate()
	data, err := EncodePredicateJSON(p)
	require.NoError(t, err)

	decoded, err := DecodePredicateJSON(data, nil)
	require.NoError(t, err)
	require.Equal(t, p.String(), decoded.String())
}

func TestPredicateYAMLRoundTrip(t *testing.T) {
	p := samplePredicate()
	data, err := EncodePredicateYAML(p)
	require.NoError(t, err)

	decoded, err := DecodePredicateYAML(data, nil)
	require.NoError(t, err)
	require.Equal(t, p.String(), decoded.String())
}

// TestRuleJSONRoundTrip reproduces spec.md §8 invariant 1 for a rule
// with no extension-type answer.
func TestRuleJSONRoundTrip(t *testing.T) {
	r := Rule{
		Priority:   2,
		Predicate:  samplePredicate(),
		Question:   "beach",
		Answer:     StringAnswer("full"),
		SourceLine: 5,
		Comment:    "full beach rule",
		SourceText: `5: sky == "blue" => beach = full`,
	}
	data, err := EncodeRuleJSON(r)
	require.NoError(t, err)

	decoded, err := DecodeRuleJSON(data, nil)
	require.NoError(t, err)
	require.Equal(t, r.Priority, decoded.Priority)
	require.Equal(t, r.Question, decoded.Question)
	require.Equal(t, r.Predicate.String(), decoded.Predicate.String())
	require.Equal(t, r.SourceLine, decoded.SourceLine)
	require.Equal(t, r.Comment, decoded.Comment)
	require.Equal(t, r.SourceText, decoded.SourceText)
}

// TestRuleJSONRoundTripWithComparableAnswer reproduces spec.md §8
// invariant 1 "for every Rule whose extension types are registered".
func TestRuleJSONRoundTripWithComparableAnswer(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterComparable("fake", func(data []byte) (Comparable, error) {
		return fakeComparable{n: int(data[0])}, nil
	})

	r := Rule{Priority: 1, Predicate: True(), Question: "q", Answer: ComparableAnswer(fakeComparable{n: 9})}
	data, err := EncodeRuleJSON(r)
	require.NoError(t, err)

	decoded, err := DecodeRuleJSON(data, reg)
	require.NoError(t, err)
	c, ok := decoded.Answer.ComparableValue()
	require.True(t, ok)
	require.Equal(t, fakeComparable{n: 9}, c)
}

func TestRuleJSONRoundTripWithAssignment(t *testing.T) {
	r := Rule{Priority: 1, Predicate: True(), Question: "q", Assignment: "concat"}
	data, err := EncodeRuleJSON(r)
	require.NoError(t, err)

	decoded, err := DecodeRuleJSON(data, nil)
	require.NoError(t, err)
	require.Equal(t, AssignmentName("concat"), decoded.Assignment)
	require.True(t, decoded.HasAssignment())
}

func TestDecodeComparableAnswerWithoutRegistryFails(t *testing.T) {
	r := Rule{Priority: 1, Predicate: True(), Question: "q", Answer: ComparableAnswer(fakeComparable{n: 1})}
	data, err := EncodeRuleJSON(r)
	require.NoError(t, err)

	_, err = DecodeRuleJSON(data, nil)
	require.Error(t, err)
}
