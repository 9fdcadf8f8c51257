package ruleengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuestionSetUnionAndContains(t *testing.T) {
	a := NewQuestionSet("x", "y")
	b := NewQuestionSet("y", "z")
	union := a.Union(b)

	require.True(t, union.Contains("x"))
	require.True(t, union.Contains("y"))
	require.True(t, union.Contains("z"))
	require.ElementsMatch(t, []Question{"x", "y", "z"}, union.Slice())
}

func TestQuestionSetAdd(t *testing.T) {
	s := NewQuestionSet()
	s.Add("q")
	require.True(t, s.Contains("q"))
}
