package ruleengine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnswerEqualWidensIntDouble(t *testing.T) {
	eq, err := IntAnswer(3).Equal(DoubleAnswer(3.0))
	require.NoError(t, err)
	require.True(t, eq)
}

func TestAnswerEqualBoolNeverWidens(t *testing.T) {
	_, err := BoolAnswer(true).Equal(IntAnswer(1))
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestAnswerLessWidensIntDouble(t *testing.T) {
	lt, err := IntAnswer(2).Less(DoubleAnswer(2.5))
	require.NoError(t, err)
	require.True(t, lt)
}

func TestAnswerLessStringOrders(t *testing.T) {
	lt, err := StringAnswer("a").Less(StringAnswer("b"))
	require.NoError(t, err)
	require.True(t, lt)
}

func TestAnswerLessBoolRejected(t *testing.T) {
	_, err := BoolAnswer(true).Less(BoolAnswer(false))
	require.ErrorIs(t, err, ErrPredicatesNotComparable)
}

type fakeComparable struct{ n int }

func (f fakeComparable) TypeName() string { return "fake" }
func (f fakeComparable) EqualTo(other Equatable) bool {
	o, ok := other.(fakeComparable)
	return ok && o.n == f.n
}
func (f fakeComparable) LessThan(other Comparable) bool {
	o, _ := other.(fakeComparable)
	return f.n < o.n
}
func (f fakeComparable) Encode() ([]byte, error) { return []byte{byte(f.n)}, nil }

func TestAnswerComparableEqualAndLess(t *testing.T) {
	a := ComparableAnswer(fakeComparable{n: 1})
	b := ComparableAnswer(fakeComparable{n: 2})

	eq, err := a.Equal(a)
	require.NoError(t, err)
	require.True(t, eq)

	lt, err := a.Less(b)
	require.NoError(t, err)
	require.True(t, lt)
}

func TestAnswerComparableMismatchedTypeNames(t *testing.T) {
	a := ComparableAnswer(fakeComparable{n: 1})
	b := BoolAnswer(true)
	_, err := a.Equal(b)
	require.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestAnswerString(t *testing.T) {
	require.Equal(t, `String("hi")`, StringAnswer("hi").String())
	require.Equal(t, "Int(5)", IntAnswer(5).String())
}
