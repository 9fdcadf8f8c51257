package ruleengine

// Evaluation is the result of evaluating a Predicate against a Facts
// store: a boolean value, the set of Questions consulted to produce
// it, and any rule-selection ambiguities journaled along the way
// (spec.md §4.1).
type Evaluation struct {
	Value          bool
	Dependencies   QuestionSet
	AmbiguousRules []AmbiguousRules
}

func leafEvaluation(v bool) Evaluation {
	return Evaluation{Value: v, Dependencies: NewQuestionSet()}
}

// Evaluate runs the recursive, short-circuiting boolean algebra over
// p against facts (spec.md §4.1's Algorithm). It is deterministic and
// side-effect-free except through facts.Ask, which may cache inferred
// answers.
func Evaluate(p Predicate, facts *Facts) (Evaluation, error) {
	switch p.Kind() {
	case PredFalse:
		return leafEvaluation(false), nil
	case PredTrue:
		return leafEvaluation(true), nil
	case PredNot:
		inner, err := Evaluate(p.Operand(), facts)
		if err != nil {
			return Evaluation{}, err
		}
		inner.Value = !inner.Value
		return inner, nil
	case PredAnd:
		return evaluateFold(p.Operands(), facts, true, false)
	case PredOr:
		return evaluateFold(p.Operands(), facts, false, true)
	case PredComparison:
		lhs, op, rhs := p.Comparison()
		return evaluateComparison(lhs, op, rhs, facts)
	default:
		return Evaluation{}, ErrTypeMismatch
	}
}

// evaluateFold implements And (identity=true, shortCircuitOn=false)
// and Or (identity=false, shortCircuitOn=true) with cumulative
// dependency/ambiguity collection, per spec.md §4.1.
func evaluateFold(ps []Predicate, facts *Facts, identity, shortCircuitOn bool) (Evaluation, error) {
	deps := NewQuestionSet()
	var ambig []AmbiguousRules
	for _, sub := range ps {
		r, err := Evaluate(sub, facts)
		if err != nil {
			return Evaluation{}, err
		}
		deps = deps.Union(r.Dependencies)
		ambig = append(ambig, r.AmbiguousRules...)
		if r.Value == shortCircuitOn {
			return Evaluation{Value: shortCircuitOn, Dependencies: deps, AmbiguousRules: ambig}, nil
		}
	}
	return Evaluation{Value: identity, Dependencies: deps, AmbiguousRules: ambig}, nil
}

// evaluateComparison dispatches Comparison(lhs, op, rhs) through the
// type-aware table in spec.md §4.1.
func evaluateComparison(lhsExpr Expr, op Op, rhsExpr Expr, facts *Facts) (Evaluation, error) {
	lk, rk := lhsExpr.Kind(), rhsExpr.Kind()

	switch {
	case lk == ExprPredicate && rk == ExprPredicate:
		return comparePredicates(lhsExpr, op, rhsExpr, facts)
	case lk == ExprPredicate && rk == ExprAnswer:
		return Evaluation{}, ErrTypeMismatch
	case lk == ExprAnswer && rk == ExprPredicate:
		return Evaluation{}, ErrTypeMismatch
	case lk == ExprPredicate && rk == ExprQuestion:
		return comparePredicateAndQuestion(lhsExpr, op, rhsExpr, facts, false)
	case lk == ExprQuestion && rk == ExprPredicate:
		return comparePredicateAndQuestion(rhsExpr, op, lhsExpr, facts, true)
	default:
		return compareAnswerOperands(lhsExpr, op, rhsExpr, facts)
	}
}

func comparePredicates(lhsExpr Expr, op Op, rhsExpr Expr, facts *Facts) (Evaluation, error) {
	if op != OpEq && op != OpNe {
		return Evaluation{}, ErrPredicatesNotComparable
	}
	lp, _ := lhsExpr.AsPredicate()
	rp, _ := rhsExpr.AsPredicate()

	lv, err := Evaluate(lp, facts)
	if err != nil {
		return Evaluation{}, err
	}
	rv, err := Evaluate(rp, facts)
	if err != nil {
		return Evaluation{}, err
	}
	deps := lv.Dependencies.Union(rv.Dependencies)
	ambig := append(append([]AmbiguousRules{}, lv.AmbiguousRules...), rv.AmbiguousRules...)
	return Evaluation{Value: applyBoolOp(lv.Value, op, rv.Value), Dependencies: deps, AmbiguousRules: ambig}, nil
}

// comparePredicateAndQuestion handles both Predicate-vs-Question and,
// when mirrored is true, Question-vs-Predicate (spec.md §4.1's "mirror
// of row above"). predExpr is always the predicate-kind operand;
// qExpr is always the question-kind operand.
func comparePredicateAndQuestion(predExpr Expr, op Op, qExpr Expr, facts *Facts, mirrored bool) (Evaluation, error) {
	if op != OpEq && op != OpNe {
		return Evaluation{}, ErrTypeMismatch
	}
	pred, _ := predExpr.AsPredicate()
	predEval, err := Evaluate(pred, facts)
	if err != nil {
		return Evaluation{}, err
	}

	q, _ := qExpr.AsQuestion()
	awd, err := facts.Ask(q)
	if err != nil {
		return Evaluation{}, &QuestionEvaluationFailedError{Question: q, Err: err}
	}
	b, ok := awd.Answer.Bool()
	if !ok {
		return Evaluation{}, ErrTypeMismatch
	}

	deps := predEval.Dependencies.Union(awd.Dependencies)
	deps.Add(q)
	ambig := append(append([]AmbiguousRules{}, predEval.AmbiguousRules...), awd.AmbiguousRules...)

	var value bool
	if mirrored {
		value = applyBoolOp(b, op, predEval.Value)
	} else {
		value = applyBoolOp(predEval.Value, op, b)
	}
	return Evaluation{Value: value, Dependencies: deps, AmbiguousRules: ambig}, nil
}

func applyBoolOp(l bool, op Op, r bool) bool {
	if op == OpEq {
		return l == r
	}
	return l != r
}

// compareAnswerOperands handles the Question×Question, Question×Answer,
// Answer×Question, and Answer×Answer cells, all of which reduce to
// comparing two resolved Answer values (spec.md §4.1).
func compareAnswerOperands(lhsExpr Expr, op Op, rhsExpr Expr, facts *Facts) (Evaluation, error) {
	lAns, lDeps, lAmbig, err := resolveAnswerOperand(lhsExpr, facts)
	if err != nil {
		return Evaluation{}, err
	}
	rAns, rDeps, rAmbig, err := resolveAnswerOperand(rhsExpr, facts)
	if err != nil {
		return Evaluation{}, err
	}
	deps := lDeps.Union(rDeps)
	ambig := append(append([]AmbiguousRules{}, lAmbig...), rAmbig...)

	value, err := compareAnswers(lAns, op, rAns)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{Value: value, Dependencies: deps, AmbiguousRules: ambig}, nil
}

func resolveAnswerOperand(e Expr, facts *Facts) (Answer, QuestionSet, []AmbiguousRules, error) {
	switch e.Kind() {
	case ExprAnswer:
		a, _ := e.AsAnswer()
		return a, NewQuestionSet(), nil, nil
	case ExprQuestion:
		q, _ := e.AsQuestion()
		awd, err := facts.Ask(q)
		if err != nil {
			return Answer{}, nil, nil, &QuestionEvaluationFailedError{Question: q, Err: err}
		}
		deps := awd.Dependencies.Union(NewQuestionSet(q))
		return awd.Answer, deps, awd.AmbiguousRules, nil
	default:
		return Answer{}, nil, nil, ErrTypeMismatch
	}
}

// compareAnswers applies op to two already-resolved Answer values.
func compareAnswers(lhs Answer, op Op, rhs Answer) (bool, error) {
	switch op {
	case OpEq:
		return lhs.Equal(rhs)
	case OpNe:
		eq, err := lhs.Equal(rhs)
		if err != nil {
			return false, err
		}
		return !eq, nil
	case OpLt:
		return lhs.Less(rhs)
	case OpGt:
		return rhs.Less(lhs)
	case OpLe:
		gt, err := rhs.Less(lhs)
		if err != nil {
			return false, err
		}
		return !gt, nil
	case OpGe:
		lt, err := lhs.Less(rhs)
		if err != nil {
			return false, err
		}
		return !lt, nil
	default:
		return false, ErrTypeMismatch
	}
}
