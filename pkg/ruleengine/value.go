package ruleengine

import "fmt"

// AnswerKind identifies the dynamic variant of an Answer.
type AnswerKind int

const (
	// KindBool marks an Answer holding a bool.
	KindBool AnswerKind = iota
	// KindInt marks an Answer holding an int64.
	KindInt
	// KindDouble marks an Answer holding a float64.
	KindDouble
	// KindString marks an Answer holding a string.
	KindString
	// KindComparable marks an Answer holding a registered Comparable value.
	KindComparable
	// KindEquatable marks an Answer holding a registered Equatable value.
	KindEquatable
)

// String renders the kind for diagnostics.
func (k AnswerKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindComparable:
		return "comparable"
	case KindEquatable:
		return "equatable"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Equatable is a host-registered answer type supporting total equality
// and a stable canonical encoding. TypeName must be unique across a
// Registry and is used both as a serialization discriminator and as
// the key clients pass to typed asks.
type Equatable interface {
	TypeName() string
	EqualTo(other Equatable) bool
	Encode() ([]byte, error)
}

// Comparable extends Equatable with a total order. LessThan is only
// ever called with another value of the same TypeName.
type Comparable interface {
	Equatable
	LessThan(other Comparable) bool
}

// Answer is a tagged union over the value variants a question can
// resolve to. The zero Answer is Bool(false); use the constructors
// below rather than struct literals.
type Answer struct {
	kind AnswerKind
	b    bool
	i    int64
	d    float64
	s    string
	cmp  Comparable
	eq   Equatable
}

// BoolAnswer wraps a bool.
func BoolAnswer(b bool) Answer { return Answer{kind: KindBool, b: b} }

// IntAnswer wraps an int64.
func IntAnswer(i int64) Answer { return Answer{kind: KindInt, i: i} }

// DoubleAnswer wraps a float64.
func DoubleAnswer(d float64) Answer { return Answer{kind: KindDouble, d: d} }

// StringAnswer wraps a string.
func StringAnswer(s string) Answer { return Answer{kind: KindString, s: s} }

// ComparableAnswer wraps a host-registered Comparable value.
func ComparableAnswer(c Comparable) Answer { return Answer{kind: KindComparable, cmp: c} }

// EquatableAnswer wraps a host-registered Equatable value.
func EquatableAnswer(e Equatable) Answer { return Answer{kind: KindEquatable, eq: e} }

// Kind returns the dynamic variant of the answer.
func (a Answer) Kind() AnswerKind { return a.kind }

// Bool returns the wrapped bool and whether the kind matched.
func (a Answer) Bool() (bool, bool) { return a.b, a.kind == KindBool }

// Int returns the wrapped int64 and whether the kind matched.
func (a Answer) Int() (int64, bool) { return a.i, a.kind == KindInt }

// Double returns the wrapped float64 and whether the kind matched.
func (a Answer) Double() (float64, bool) { return a.d, a.kind == KindDouble }

// Str returns the wrapped string and whether the kind matched.
func (a Answer) Str() (string, bool) { return a.s, a.kind == KindString }

// ComparableValue returns the wrapped Comparable and whether the kind matched.
func (a Answer) ComparableValue() (Comparable, bool) { return a.cmp, a.kind == KindComparable }

// EquatableValue returns the wrapped Equatable and whether the kind matched.
func (a Answer) EquatableValue() (Equatable, bool) { return a.eq, a.kind == KindEquatable }

// TypeName returns the registered type name for extension-kind
// answers, or the empty string for the built-in kinds.
func (a Answer) TypeName() string {
	switch a.kind {
	case KindComparable:
		if a.cmp != nil {
			return a.cmp.TypeName()
		}
	case KindEquatable:
		if a.eq != nil {
			return a.eq.TypeName()
		}
	}
	return ""
}

// String renders the answer for diagnostics and log fields.
func (a Answer) String() string {
	switch a.kind {
	case KindBool:
		return fmt.Sprintf("Bool(%v)", a.b)
	case KindInt:
		return fmt.Sprintf("Int(%d)", a.i)
	case KindDouble:
		return fmt.Sprintf("Double(%v)", a.d)
	case KindString:
		return fmt.Sprintf("String(%q)", a.s)
	case KindComparable:
		return fmt.Sprintf("Comparable(%s, %v)", a.TypeName(), a.cmp)
	case KindEquatable:
		return fmt.Sprintf("Equatable(%s, %v)", a.TypeName(), a.eq)
	default:
		return "Answer(?)"
	}
}

// widen reports whether lhs and rhs are both numeric (Int/Double),
// returning both as float64 when at least one side is a Double. ok is
// false when the pair isn't a pure Int/Double pair.
func widen(lhs, rhs Answer) (l, r float64, ok bool) {
	li, liOK := lhs.Int()
	ld, ldOK := lhs.Double()
	ri, riOK := rhs.Int()
	rd, rdOK := rhs.Double()

	switch {
	case liOK && riOK:
		return float64(li), float64(ri), true
	case liOK && rdOK:
		return float64(li), rd, true
	case ldOK && riOK:
		return ld, float64(ri), true
	case ldOK && rdOK:
		return ld, rd, true
	default:
		return 0, 0, false
	}
}

// Equal reports structural/value equality between two answers,
// widening Int/Double pairs per spec.md §3. It returns
// ErrTypeMismatch when the two answers are not type-compatible for
// comparison.
func (a Answer) Equal(b Answer) (bool, error) {
	if l, r, ok := widen(a, b); ok {
		return l == r, nil
	}
	if a.kind != b.kind {
		return false, ErrTypeMismatch
	}
	switch a.kind {
	case KindBool:
		return a.b == b.b, nil
	case KindString:
		return a.s == b.s, nil
	case KindComparable:
		if a.cmp == nil || b.cmp == nil || a.cmp.TypeName() != b.cmp.TypeName() {
			return false, ErrTypeMismatch
		}
		return a.cmp.EqualTo(b.cmp), nil
	case KindEquatable:
		if a.eq == nil || b.eq == nil || a.eq.TypeName() != b.eq.TypeName() {
			return false, ErrTypeMismatch
		}
		return a.eq.EqualTo(b.eq), nil
	default:
		return false, ErrTypeMismatch
	}
}

// Less reports whether a orders strictly before b, widening
// Int/Double pairs. Bool and Equatable-only values are never
// orderable: per spec.md §9's open question, ordering never widens
// from Bool, and only registered Comparable values (not bare
// Equatable ones) support LessThan.
func (a Answer) Less(b Answer) (bool, error) {
	if l, r, ok := widen(a, b); ok {
		return l < r, nil
	}
	if a.kind != b.kind {
		return false, ErrTypeMismatch
	}
	switch a.kind {
	case KindString:
		return a.s < b.s, nil
	case KindComparable:
		if a.cmp == nil || b.cmp == nil || a.cmp.TypeName() != b.cmp.TypeName() {
			return false, ErrTypeMismatch
		}
		return a.cmp.LessThan(b.cmp), nil
	default:
		return false, ErrPredicatesNotComparable
	}
}
