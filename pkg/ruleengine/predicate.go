package ruleengine

import "strings"

// Question is a non-empty string identifier for a fact slot. Equality
// and hashing are plain identifier equality.
type Question string

// Op is a comparison operator.
type Op int

const (
	// OpEq is the equality operator (==).
	OpEq Op = iota
	// OpNe is the inequality operator (!=).
	OpNe
	// OpLt is the strictly-less-than operator.
	OpLt
	// OpGt is the strictly-greater-than operator.
	OpGt
	// OpLe is the less-than-or-equal operator.
	OpLe
	// OpGe is the greater-than-or-equal operator.
	OpGe
)

// String renders the operator's canonical wire name (spec.md §4.5).
func (o Op) String() string {
	switch o {
	case OpEq:
		return "isEqualTo"
	case OpNe:
		return "isNotEqualTo"
	case OpLt:
		return "isLessThan"
	case OpGt:
		return "isGreaterThan"
	case OpLe:
		return "isLessThanOrEqualTo"
	case OpGe:
		return "isGreaterThanOrEqualTo"
	default:
		return "unknown"
	}
}

// swap returns the operator to use when the literal and question
// operands of a Comparison are exchanged (spec.md §4.1 "Operator
// swapping"): eq<->eq, ne<->ne, lt<->gt, le<->ge.
func (o Op) swap() Op {
	switch o {
	case OpLt:
		return OpGt
	case OpGt:
		return OpLt
	case OpLe:
		return OpGe
	case OpGe:
		return OpLe
	default:
		return o
	}
}

// isOrdering reports whether o is one of lt/gt/le/ge.
func (o Op) isOrdering() bool {
	return o == OpLt || o == OpGt || o == OpLe || o == OpGe
}

// ExprKind identifies the dynamic variant of an Expr.
type ExprKind int

const (
	// ExprQuestion marks an Expr that resolves through Facts.Ask.
	ExprQuestion ExprKind = iota
	// ExprAnswer marks an Expr that is a literal Answer.
	ExprAnswer
	// ExprPredicate marks an Expr that is a nested Predicate.
	ExprPredicate
)

// Expr is a comparison operand: a Question, a literal Answer, or a
// nested Predicate (spec.md §3).
type Expr struct {
	kind ExprKind
	q    Question
	a    Answer
	p    Predicate
}

// QuestionExpr builds an Expr that resolves a Question.
func QuestionExpr(q Question) Expr { return Expr{kind: ExprQuestion, q: q} }

// AnswerExpr builds an Expr wrapping a literal Answer.
func AnswerExpr(a Answer) Expr { return Expr{kind: ExprAnswer, a: a} }

// PredicateExpr builds an Expr wrapping a nested Predicate.
func PredicateExpr(p Predicate) Expr { return Expr{kind: ExprPredicate, p: p} }

// Kind returns the dynamic variant of the expression.
func (e Expr) Kind() ExprKind { return e.kind }

// AsQuestion returns the wrapped Question and whether the kind matched.
func (e Expr) AsQuestion() (Question, bool) { return e.q, e.kind == ExprQuestion }

// AsAnswer returns the wrapped Answer and whether the kind matched.
func (e Expr) AsAnswer() (Answer, bool) { return e.a, e.kind == ExprAnswer }

// AsPredicate returns the wrapped Predicate and whether the kind matched.
func (e Expr) AsPredicate() (Predicate, bool) { return e.p, e.kind == ExprPredicate }

// PredicateKind identifies the dynamic variant of a Predicate.
type PredicateKind int

const (
	// PredFalse is the always-false predicate.
	PredFalse PredicateKind = iota
	// PredTrue is the always-true predicate.
	PredTrue
	// PredNot negates a single operand predicate.
	PredNot
	// PredAnd is a conjunction over zero or more operands.
	PredAnd
	// PredOr is a disjunction over zero or more operands.
	PredOr
	// PredComparison compares two expressions with an operator.
	PredComparison
)

// Predicate is the recursive boolean-algebra AST: False, True,
// Not(p), And(ps), Or(ps), or Comparison(lhs, op, rhs) (spec.md §3).
// The zero Predicate is False. A Predicate holds slices, so it is not
// comparable with == and cannot be a map key; reflect.DeepEqual (or
// comparing String() renderings) compares two trees structurally.
type Predicate struct {
	kind     PredicateKind
	operand  *Predicate // Not
	operands []Predicate // And/Or
	lhs      Expr        // Comparison
	op       Op          // Comparison
	rhs      Expr        // Comparison

	size int // memoized, computed once at construction
}

// False is the always-false predicate.
func False() Predicate { return Predicate{kind: PredFalse} }

// True is the always-true predicate.
func True() Predicate { return Predicate{kind: PredTrue} }

// Not builds the negation of p.
func Not(p Predicate) Predicate {
	cp := p
	return Predicate{kind: PredNot, operand: &cp, size: p.size}
}

// And builds a conjunction over ps. And(nil) is True.
func And(ps ...Predicate) Predicate {
	cp := make([]Predicate, len(ps))
	copy(cp, ps)
	return Predicate{kind: PredAnd, operands: cp, size: len(cp)}
}

// Or builds a disjunction over ps. Or(nil) is False.
func Or(ps ...Predicate) Predicate {
	cp := make([]Predicate, len(ps))
	copy(cp, ps)
	max := 0
	for _, p := range cp {
		if p.size > max {
			max = p.size
		}
	}
	return Predicate{kind: PredOr, operands: cp, size: max}
}

// Comparison builds a Comparison(lhs, op, rhs) predicate.
func Comparison(lhs Expr, op Op, rhs Expr) Predicate {
	return Predicate{kind: PredComparison, lhs: lhs, op: op, rhs: rhs, size: 1}
}

// Kind returns the dynamic variant of the predicate.
func (p Predicate) Kind() PredicateKind { return p.kind }

// Size returns the predicate's structural specificity measure
// (spec.md §3 "Predicate.size"): False/True are 0, Not(p) is p's
// size, And(ps) is len(ps), Or(ps) is the max operand size (0 for
// empty), and Comparison is 1. Computed once at construction.
func (p Predicate) Size() int { return p.size }

// Operand returns Not's single operand.
func (p Predicate) Operand() Predicate {
	if p.operand == nil {
		return Predicate{}
	}
	return *p.operand
}

// Operands returns And/Or's operand slice.
func (p Predicate) Operands() []Predicate { return p.operands }

// Comparison returns the Comparison predicate's operands and operator.
func (p Predicate) Comparison() (lhs Expr, op Op, rhs Expr) { return p.lhs, p.op, p.rhs }

// String renders the predicate for diagnostics.
func (p Predicate) String() string {
	switch p.kind {
	case PredFalse:
		return "False"
	case PredTrue:
		return "True"
	case PredNot:
		return "Not(" + p.Operand().String() + ")"
	case PredAnd:
		return "And(" + joinPredicates(p.operands) + ")"
	case PredOr:
		return "Or(" + joinPredicates(p.operands) + ")"
	case PredComparison:
		return p.lhs.String() + " " + p.op.String() + " " + p.rhs.String()
	default:
		return "Predicate(?)"
	}
}

func joinPredicates(ps []Predicate) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// String renders the expression for diagnostics.
func (e Expr) String() string {
	switch e.kind {
	case ExprQuestion:
		return string(e.q)
	case ExprAnswer:
		return e.a.String()
	case ExprPredicate:
		return "(" + e.p.String() + ")"
	default:
		return "Expr(?)"
	}
}
