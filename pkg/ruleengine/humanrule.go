package ruleengine

import (
	"strconv"
	"strings"
)

// PredNodeKind identifies the dynamic variant of a PredNode, the
// host-agnostic generic predicate AST an external tokenizer builds
// before handing it to ConvertPredicateAST (spec.md §1/§4.6; the
// tokenizer itself lives outside this package, e.g. cmd/ruleconv's
// tokenizer.go).
type PredNodeKind int

const (
	NodeFalse PredNodeKind = iota
	NodeTrue
	NodeNot
	NodeAnd
	NodeOr
	NodeComparison
	// NodeQuestion and NodeAnswer are leaf operand nodes, valid only
	// as a child of a NodeComparison or as the nested predicate of
	// another node's operand.
	NodeQuestion
	NodeAnswer
)

// PredNode is the generic predicate AST exchanged across the tokenizer
// boundary (spec.md §1's "the tokenizer... is explicitly out of
// scope", §4.6's "[FULL] Tokenizer boundary"). Operands holds a node's
// children: one for Not, zero or more for And/Or, exactly two (lhs,
// rhs) for Comparison. Question and Answer are populated only on leaf
// nodes of the matching Kind.
type PredNode struct {
	Kind     PredNodeKind
	Operands []PredNode
	Operator Op
	Question Question
	Answer   Answer
}

// ConvertPredicateAST converts a generic PredNode tree into a
// Predicate, raising ConversionError for structurally invalid input
// (spec.md §7's ConversionError kinds). This is the one core entry
// point a host predicate parser must call after building its own AST.
func ConvertPredicateAST(n PredNode) (Predicate, error) {
	switch n.Kind {
	case NodeFalse:
		return False(), nil
	case NodeTrue:
		return True(), nil
	case NodeNot:
		if len(n.Operands) != 1 {
			return Predicate{}, &ConversionError{Reason: ReasonCompoundHasNoSubpredicates}
		}
		operand, err := ConvertPredicateAST(n.Operands[0])
		if err != nil {
			return Predicate{}, err
		}
		return Not(operand), nil
	case NodeAnd, NodeOr:
		operands := make([]Predicate, len(n.Operands))
		for i, child := range n.Operands {
			p, err := ConvertPredicateAST(child)
			if err != nil {
				return Predicate{}, err
			}
			operands[i] = p
		}
		if n.Kind == NodeAnd {
			return And(operands...), nil
		}
		return Or(operands...), nil
	case NodeComparison:
		if len(n.Operands) != 2 {
			return Predicate{}, &ConversionError{Reason: ReasonCompoundHasNoSubpredicates}
		}
		lhs, err := convertOperand(n.Operands[0])
		if err != nil {
			return Predicate{}, err
		}
		rhs, err := convertOperand(n.Operands[1])
		if err != nil {
			return Predicate{}, err
		}
		if !validOp(n.Operator) {
			return Predicate{}, &ConversionError{Reason: ReasonUnsupportedOperator}
		}
		return Comparison(lhs, n.Operator, rhs), nil
	default:
		return Predicate{}, &ConversionError{Reason: ReasonInputWasNotRecognized}
	}
}

// convertOperand converts a comparison child node into the Expr it
// denotes: a Question leaf, an Answer leaf, or a nested predicate.
func convertOperand(n PredNode) (Expr, error) {
	switch n.Kind {
	case NodeQuestion:
		return QuestionExpr(n.Question), nil
	case NodeAnswer:
		return AnswerExpr(n.Answer), nil
	case NodeFalse, NodeTrue, NodeNot, NodeAnd, NodeOr, NodeComparison:
		p, err := ConvertPredicateAST(n)
		if err != nil {
			return Expr{}, err
		}
		return PredicateExpr(p), nil
	default:
		return Expr{}, &ConversionError{Reason: ReasonUnsupportedExpression}
	}
}

func validOp(op Op) bool {
	return op == OpEq || op == OpNe || op == OpLt || op == OpGt || op == OpLe || op == OpGe
}

// PredicateParser parses the predicate-format text between a rule
// line's priority and its "=>" delimiter into a PredNode. It is the
// host collaborator spec.md §1 and §4.6 place outside the core;
// cmd/ruleconv/tokenizer.go supplies the concrete implementation used
// by the converter binary.
type PredicateParser func(text string) (PredNode, error)

// ParseRuleLine parses one human rule-file line (spec.md §4.6's
// grammar) at lineNo, delegating the predicate portion to
// parsePredicate. Blank lines and comment-only lines are not valid
// input to this function; use ParseRuleFile to skip them.
func ParseRuleLine(line string, lineNo int, parsePredicate PredicateParser) (Rule, error) {
	text, comment := splitComment(line)
	text = strings.TrimSpace(text)

	colon := strings.Index(text, ":")
	if colon < 0 {
		return Rule{}, &ParseError{Line: lineNo, Reason: ReasonMissingColon}
	}
	priority, err := strconv.Atoi(strings.TrimSpace(text[:colon]))
	if err != nil {
		return Rule{}, &ParseError{Line: lineNo, Reason: ReasonInvalidPriority}
	}
	rest := text[colon+1:]

	arrow := strings.Index(rest, "=>")
	if arrow < 0 {
		return Rule{}, &ParseError{Line: lineNo, Reason: ReasonMissingArrow}
	}
	predicateText := strings.TrimSpace(rest[:arrow])
	afterArrow := rest[arrow+2:]

	eq := strings.Index(afterArrow, "=")
	if eq < 0 {
		return Rule{}, &ParseError{Line: lineNo, Reason: ReasonMissingEquals}
	}
	questionText := strings.TrimSpace(afterArrow[:eq])
	answerSpecText := strings.TrimSpace(afterArrow[eq+1:])

	node, err := parsePredicate(predicateText)
	if err != nil {
		return Rule{}, &ParseError{Line: lineNo, Reason: ReasonPredicateSyntax + ": " + err.Error()}
	}
	predicate, err := ConvertPredicateAST(node)
	if err != nil {
		return Rule{}, &ParseError{Line: lineNo, Reason: ReasonPredicateSyntax + ": " + err.Error()}
	}

	r := Rule{
		Priority:   priority,
		Predicate:  predicate,
		Question:   Question(questionText),
		SourceLine: lineNo,
		Comment:    comment,
		SourceText: text,
	}
	if err := parseAnswerSpec(answerSpecText, lineNo, &r); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// parseAnswerSpec fills in r.Answer and, when the bracketed name names
// an assignment rather than a type, r.Assignment (spec.md §4.6's
// <answer-spec> grammar).
func parseAnswerSpec(spec string, lineNo int, r *Rule) error {
	if !strings.HasPrefix(spec, "(") {
		r.Answer = StringAnswer(spec)
		return nil
	}
	closeIdx := strings.Index(spec, ")")
	if closeIdx < 0 {
		r.Answer = StringAnswer(spec)
		return nil
	}
	name := spec[1:closeIdx]
	answerText := strings.TrimSpace(spec[closeIdx+1:])
	if answerText == "" {
		return &ParseError{Line: lineNo, Reason: ReasonEmptyAssignedValue}
	}

	switch name {
	case "bool":
		switch answerText {
		case "true":
			r.Answer = BoolAnswer(true)
		case "false":
			r.Answer = BoolAnswer(false)
		default:
			return &ParseError{Line: lineNo, Reason: ReasonUnknownTypeKeyword}
		}
	case "int":
		n, err := strconv.ParseInt(answerText, 10, 64)
		if err != nil {
			return &ParseError{Line: lineNo, Reason: ReasonUnknownTypeKeyword}
		}
		r.Answer = IntAnswer(n)
	case "double":
		d, err := strconv.ParseFloat(answerText, 64)
		if err != nil {
			return &ParseError{Line: lineNo, Reason: ReasonUnknownTypeKeyword}
		}
		r.Answer = DoubleAnswer(d)
	case "string":
		r.Answer = StringAnswer(answerText)
	default:
		r.Assignment = AssignmentName(name)
		r.Answer = StringAnswer(answerText)
	}
	return nil
}

// splitComment separates a "// ..." trailing comment from line,
// ignoring any "//" that appears inside a double-quoted string
// literal (so string answer text containing a URL, say, isn't
// truncated).
func splitComment(line string) (text, comment string) {
	inString := false
	for i := 0; i < len(line)-1; i++ {
		switch line[i] {
		case '"':
			inString = !inString
		case '/':
			if !inString && line[i+1] == '/' {
				return line[:i], strings.TrimSpace(line[i+2:])
			}
		}
	}
	return line, ""
}

// ParseRuleFile parses every rule line in lines (spec.md §6's "Lines
// whose first non-whitespace character is a digit are rule lines;
// other content is an error"), skipping blank and comment-only lines.
// It returns every successfully parsed rule and every parse error
// encountered, rather than stopping at the first failure, so a linter
// or CLI can report all of them at once.
func ParseRuleFile(lines []string, parsePredicate PredicateParser) ([]Rule, []error) {
	var rules []Rule
	var errs []error

	for i, raw := range lines {
		lineNo := i + 1
		text, _ := splitComment(raw)
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		if trimmed[0] < '0' || trimmed[0] > '9' {
			errs = append(errs, &ParseError{Line: lineNo, Reason: ReasonInvalidPriority})
			continue
		}
		r, err := ParseRuleLine(raw, lineNo, parsePredicate)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rules = append(rules, r)
	}
	return rules, errs
}
