package ruleengine

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Serialization targets the canonical tagged-union wire shape of
// spec.md §4.5. Both JSON (primary) and YAML (secondary, carried from
// the pack's yaml.v3 dependency) share one intermediate representation
// built from plain maps and slices, so the two formats can never drift
// out of sync with each other.
//
// Extension-type payloads are wrapped as a one-element array holding
// the base64 encoding of the type's own Encode() bytes, matching
// spec.md §4.5's "`[<payload>]` wraps the extension-type's own
// canonical encoding" note; original_source did not survive retrieval
// in a form that pinned down its exact byte layout, so this is an
// implementation choice of this package.

// EncodePredicateJSON renders p as canonical JSON.
func EncodePredicateJSON(p Predicate) ([]byte, error) {
	return json.Marshal(predicateToWire(p))
}

// DecodePredicateJSON parses canonical JSON into a Predicate,
// resolving any extension-type answers through reg.
func DecodePredicateJSON(data []byte, reg *Registry) (Predicate, error) {
	var wire map[string]interface{}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Predicate{}, fmt.Errorf("ruleengine: decode predicate json: %w", err)
	}
	return wireToPredicate(wire, reg)
}

// EncodePredicateYAML renders p as canonical YAML.
func EncodePredicateYAML(p Predicate) ([]byte, error) {
	return yaml.Marshal(predicateToWire(p))
}

// DecodePredicateYAML parses canonical YAML into a Predicate,
// resolving any extension-type answers through reg.
func DecodePredicateYAML(data []byte, reg *Registry) (Predicate, error) {
	var wire map[string]interface{}
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return Predicate{}, fmt.Errorf("ruleengine: decode predicate yaml: %w", err)
	}
	return wireToPredicate(wire, reg)
}

// EncodeRuleJSON renders r as canonical JSON.
func EncodeRuleJSON(r Rule) ([]byte, error) {
	return json.Marshal(ruleToWire(r))
}

// DecodeRuleJSON parses canonical JSON into a Rule, resolving any
// extension-type answer through reg.
func DecodeRuleJSON(data []byte, reg *Registry) (Rule, error) {
	var wire map[string]interface{}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Rule{}, fmt.Errorf("ruleengine: decode rule json: %w", err)
	}
	return wireToRule(wire, reg)
}

// EncodeRuleYAML renders r as canonical YAML.
func EncodeRuleYAML(r Rule) ([]byte, error) {
	return yaml.Marshal(ruleToWire(r))
}

// DecodeRuleYAML parses canonical YAML into a Rule, resolving any
// extension-type answer through reg.
func DecodeRuleYAML(data []byte, reg *Registry) (Rule, error) {
	var wire map[string]interface{}
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return Rule{}, fmt.Errorf("ruleengine: decode rule yaml: %w", err)
	}
	return wireToRule(wire, reg)
}

func predicateToWire(p Predicate) map[string]interface{} {
	switch p.Kind() {
	case PredFalse:
		return map[string]interface{}{"type": "false"}
	case PredTrue:
		return map[string]interface{}{"type": "true"}
	case PredNot:
		return map[string]interface{}{"type": "not", "operand": predicateToWire(p.Operand())}
	case PredAnd:
		return map[string]interface{}{"type": "and", "operands": operandsToWire(p.Operands())}
	case PredOr:
		return map[string]interface{}{"type": "or", "operands": operandsToWire(p.Operands())}
	case PredComparison:
		lhs, op, rhs := p.Comparison()
		return map[string]interface{}{
			"type": "comparison",
			"lhs":  exprToWire(lhs),
			"op":   op.String(),
			"rhs":  exprToWire(rhs),
		}
	default:
		return map[string]interface{}{"type": "false"}
	}
}

func operandsToWire(ps []Predicate) []interface{} {
	out := make([]interface{}, len(ps))
	for i, p := range ps {
		out[i] = predicateToWire(p)
	}
	return out
}

func exprToWire(e Expr) map[string]interface{} {
	switch e.Kind() {
	case ExprQuestion:
		q, _ := e.AsQuestion()
		return map[string]interface{}{"question": string(q)}
	case ExprAnswer:
		a, _ := e.AsAnswer()
		return map[string]interface{}{"answer": answerToWire(a)}
	case ExprPredicate:
		p, _ := e.AsPredicate()
		return map[string]interface{}{"predicate": predicateToWire(p)}
	default:
		return map[string]interface{}{}
	}
}

func answerToWire(a Answer) map[string]interface{} {
	switch a.Kind() {
	case KindBool:
		b, _ := a.Bool()
		return map[string]interface{}{"bool": b}
	case KindInt:
		i, _ := a.Int()
		return map[string]interface{}{"int": i}
	case KindDouble:
		d, _ := a.Double()
		return map[string]interface{}{"double": d}
	case KindString:
		s, _ := a.Str()
		return map[string]interface{}{"string": s}
	case KindComparable:
		c, _ := a.ComparableValue()
		payload, err := c.Encode()
		if err != nil {
			payload = nil
		}
		return map[string]interface{}{
			"comparableType": c.TypeName(),
			"comparable":     []interface{}{base64.StdEncoding.EncodeToString(payload)},
		}
	case KindEquatable:
		eq, _ := a.EquatableValue()
		payload, err := eq.Encode()
		if err != nil {
			payload = nil
		}
		return map[string]interface{}{
			"equatableType": eq.TypeName(),
			"equatable":     []interface{}{base64.StdEncoding.EncodeToString(payload)},
		}
	default:
		return map[string]interface{}{"bool": false}
	}
}

func ruleToWire(r Rule) map[string]interface{} {
	wire := map[string]interface{}{
		"priority":  r.Priority,
		"predicate": predicateToWire(r.Predicate),
		"question":  string(r.Question),
		"answer":    answerToWire(r.Answer),
	}
	if r.HasAssignment() {
		wire["assignment"] = string(r.Assignment)
	}
	if r.SourceLine != 0 {
		wire["sourceLine"] = r.SourceLine
	}
	if r.Comment != "" {
		wire["comment"] = r.Comment
	}
	if r.SourceText != "" {
		wire["sourceText"] = r.SourceText
	}
	return wire
}

func wireToRule(wire map[string]interface{}, reg *Registry) (Rule, error) {
	priority, err := wireInt(wire["priority"])
	if err != nil {
		return Rule{}, fmt.Errorf("ruleengine: rule.priority: %w", err)
	}
	predWire, ok := wire["predicate"].(map[string]interface{})
	if !ok {
		return Rule{}, fmt.Errorf("ruleengine: rule.predicate: missing or not an object")
	}
	pred, err := wireToPredicate(predWire, reg)
	if err != nil {
		return Rule{}, err
	}
	question, ok := wire["question"].(string)
	if !ok {
		return Rule{}, fmt.Errorf("ruleengine: rule.question: missing or not a string")
	}
	answerWire, ok := wire["answer"].(map[string]interface{})
	if !ok {
		return Rule{}, fmt.Errorf("ruleengine: rule.answer: missing or not an object")
	}
	answer, err := wireToAnswer(answerWire, reg)
	if err != nil {
		return Rule{}, err
	}

	r := Rule{
		Priority:  int(priority),
		Predicate: pred,
		Question:  Question(question),
		Answer:    answer,
	}
	if assignment, ok := wire["assignment"].(string); ok {
		r.Assignment = AssignmentName(assignment)
	}
	if sourceLine, ok := wire["sourceLine"]; ok {
		n, err := wireInt(sourceLine)
		if err == nil {
			r.SourceLine = int(n)
		}
	}
	if comment, ok := wire["comment"].(string); ok {
		r.Comment = comment
	}
	if sourceText, ok := wire["sourceText"].(string); ok {
		r.SourceText = sourceText
	}
	return r, nil
}

func wireToPredicate(wire map[string]interface{}, reg *Registry) (Predicate, error) {
	typ, _ := wire["type"].(string)
	switch typ {
	case "false":
		return False(), nil
	case "true":
		return True(), nil
	case "not":
		operandWire, ok := wire["operand"].(map[string]interface{})
		if !ok {
			return Predicate{}, fmt.Errorf("ruleengine: not.operand: missing or not an object")
		}
		operand, err := wireToPredicate(operandWire, reg)
		if err != nil {
			return Predicate{}, err
		}
		return Not(operand), nil
	case "and", "or":
		rawOperands, ok := wire["operands"].([]interface{})
		if !ok {
			return Predicate{}, fmt.Errorf("ruleengine: %s.operands: missing or not an array", typ)
		}
		operands := make([]Predicate, len(rawOperands))
		for i, raw := range rawOperands {
			operandWire, ok := raw.(map[string]interface{})
			if !ok {
				return Predicate{}, fmt.Errorf("ruleengine: %s.operands[%d]: not an object", typ, i)
			}
			operand, err := wireToPredicate(operandWire, reg)
			if err != nil {
				return Predicate{}, err
			}
			operands[i] = operand
		}
		if typ == "and" {
			return And(operands...), nil
		}
		return Or(operands...), nil
	case "comparison":
		lhsWire, ok := wire["lhs"].(map[string]interface{})
		if !ok {
			return Predicate{}, fmt.Errorf("ruleengine: comparison.lhs: missing or not an object")
		}
		rhsWire, ok := wire["rhs"].(map[string]interface{})
		if !ok {
			return Predicate{}, fmt.Errorf("ruleengine: comparison.rhs: missing or not an object")
		}
		opStr, _ := wire["op"].(string)
		op, err := wireToOp(opStr)
		if err != nil {
			return Predicate{}, err
		}
		lhs, err := wireToExpr(lhsWire, reg)
		if err != nil {
			return Predicate{}, err
		}
		rhs, err := wireToExpr(rhsWire, reg)
		if err != nil {
			return Predicate{}, err
		}
		return Comparison(lhs, op, rhs), nil
	default:
		return Predicate{}, fmt.Errorf("ruleengine: predicate.type: unrecognized discriminator %q", typ)
	}
}

func wireToExpr(wire map[string]interface{}, reg *Registry) (Expr, error) {
	if q, ok := wire["question"].(string); ok {
		return QuestionExpr(Question(q)), nil
	}
	if answerWire, ok := wire["answer"].(map[string]interface{}); ok {
		a, err := wireToAnswer(answerWire, reg)
		if err != nil {
			return Expr{}, err
		}
		return AnswerExpr(a), nil
	}
	if predWire, ok := wire["predicate"].(map[string]interface{}); ok {
		p, err := wireToPredicate(predWire, reg)
		if err != nil {
			return Expr{}, err
		}
		return PredicateExpr(p), nil
	}
	return Expr{}, fmt.Errorf("ruleengine: expr: none of question/answer/predicate present")
}

func wireToAnswer(wire map[string]interface{}, reg *Registry) (Answer, error) {
	if b, ok := wire["bool"].(bool); ok {
		return BoolAnswer(b), nil
	}
	if raw, ok := wire["int"]; ok {
		i, err := wireInt(raw)
		if err != nil {
			return Answer{}, fmt.Errorf("ruleengine: answer.int: %w", err)
		}
		return IntAnswer(i), nil
	}
	if raw, ok := wire["double"]; ok {
		d, err := wireFloat(raw)
		if err != nil {
			return Answer{}, fmt.Errorf("ruleengine: answer.double: %w", err)
		}
		return DoubleAnswer(d), nil
	}
	if s, ok := wire["string"].(string); ok {
		return StringAnswer(s), nil
	}
	if typeName, ok := wire["comparableType"].(string); ok {
		payload, err := wirePayload(wire["comparable"])
		if err != nil {
			return Answer{}, fmt.Errorf("ruleengine: answer.comparable: %w", err)
		}
		if reg == nil {
			return Answer{}, fmt.Errorf("ruleengine: answer.comparable: no registry supplied to decode %q", typeName)
		}
		c, err := reg.DecodeComparable(typeName, payload)
		if err != nil {
			return Answer{}, err
		}
		return ComparableAnswer(c), nil
	}
	if typeName, ok := wire["equatableType"].(string); ok {
		payload, err := wirePayload(wire["equatable"])
		if err != nil {
			return Answer{}, fmt.Errorf("ruleengine: answer.equatable: %w", err)
		}
		if reg == nil {
			return Answer{}, fmt.Errorf("ruleengine: answer.equatable: no registry supplied to decode %q", typeName)
		}
		eq, err := reg.DecodeEquatable(typeName, payload)
		if err != nil {
			return Answer{}, err
		}
		return EquatableAnswer(eq), nil
	}
	return Answer{}, fmt.Errorf("ruleengine: answer: no recognized field present")
}

func wirePayload(raw interface{}) ([]byte, error) {
	arr, ok := raw.([]interface{})
	if !ok || len(arr) != 1 {
		return nil, fmt.Errorf("expected a one-element array payload")
	}
	encoded, ok := arr[0].(string)
	if !ok {
		return nil, fmt.Errorf("payload element is not a base64 string")
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func wireToOp(s string) (Op, error) {
	switch s {
	case "isEqualTo":
		return OpEq, nil
	case "isNotEqualTo":
		return OpNe, nil
	case "isLessThan":
		return OpLt, nil
	case "isGreaterThan":
		return OpGt, nil
	case "isLessThanOrEqualTo":
		return OpLe, nil
	case "isGreaterThanOrEqualTo":
		return OpGe, nil
	default:
		return 0, fmt.Errorf("ruleengine: op: unrecognized discriminator %q", s)
	}
}

// wireInt accepts the numeric shapes both decoders can hand back:
// json.Unmarshal into interface{} always produces float64, while
// yaml.v3 produces int or int64 for bare integers.
func wireInt(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", raw)
	}
}

func wireFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", raw)
	}
}
