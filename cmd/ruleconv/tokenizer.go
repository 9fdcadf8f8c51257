package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/gitrdm/ruleforge/pkg/ruleengine"
)

// ParsePredicate tokenizes and parses the predicate-format text
// between a rule line's priority and its "=>" delimiter (spec.md
// §4.6), producing the generic AST ruleengine.ConvertPredicateAST
// consumes. This collaborator is intentionally outside pkg/ruleengine
// (spec.md §1's "the tokenizer... is explicitly out of scope"); it is
// this binary's own implementation of that boundary.
//
// Grammar:
//
//	predicate := orExpr
//	orExpr     := andExpr ( "OR" andExpr )*
//	andExpr    := notExpr ( "AND" notExpr )*
//	notExpr    := "NOT" notExpr | atom
//	atom       := "(" predicate ")" | "True" | "False" | comparison
//	comparison := operand op operand
//	operand    := identifier | stringLiteral | numberLiteral | "true" | "false"
//	op         := "==" | "!=" | "<=" | ">=" | "<" | ">"
func ParsePredicate(text string) (ruleengine.PredNode, error) {
	toks, err := tokenize(text)
	if err != nil {
		return ruleengine.PredNode{}, err
	}
	p := &predParser{toks: toks}
	node, err := p.parseOr()
	if err != nil {
		return ruleengine.PredNode{}, err
	}
	if p.pos != len(p.toks) {
		return ruleengine.PredNode{}, fmt.Errorf("unexpected trailing token %q", p.toks[p.pos].text)
	}
	return node, nil
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(text string) ([]token, error) {
	var toks []token
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		case r == '"':
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				j++
			}
			if j >= len(runes) {
				return nil, fmt.Errorf("unterminated string literal at position %d", i)
			}
			toks = append(toks, token{kind: tokString, text: string(runes[i+1 : j])})
			i = j + 1
		case strings.ContainsRune("=!<>", r):
			if i+1 < len(runes) && runes[i+1] == '=' {
				toks = append(toks, token{kind: tokOp, text: string(runes[i : i+2])})
				i += 2
			} else if r == '<' || r == '>' {
				toks = append(toks, token{kind: tokOp, text: string(r)})
				i++
			} else {
				return nil, fmt.Errorf("unexpected character %q at position %d", r, i)
			}
		case unicode.IsDigit(r) || (r == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			j := i + 1
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: string(runes[i:j])})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: string(runes[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", r, i)
		}
	}
	return toks, nil
}

type predParser struct {
	toks []token
	pos  int
}

func (p *predParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *predParser) isKeyword(kw string) bool {
	t, ok := p.peek()
	return ok && t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

func (p *predParser) parseOr() (ruleengine.PredNode, error) {
	first, err := p.parseAnd()
	if err != nil {
		return ruleengine.PredNode{}, err
	}
	operands := []ruleengine.PredNode{first}
	for p.isKeyword("OR") {
		p.pos++
		next, err := p.parseAnd()
		if err != nil {
			return ruleengine.PredNode{}, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return ruleengine.PredNode{Kind: ruleengine.NodeOr, Operands: operands}, nil
}

func (p *predParser) parseAnd() (ruleengine.PredNode, error) {
	first, err := p.parseNot()
	if err != nil {
		return ruleengine.PredNode{}, err
	}
	operands := []ruleengine.PredNode{first}
	for p.isKeyword("AND") {
		p.pos++
		next, err := p.parseNot()
		if err != nil {
			return ruleengine.PredNode{}, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return ruleengine.PredNode{Kind: ruleengine.NodeAnd, Operands: operands}, nil
}

func (p *predParser) parseNot() (ruleengine.PredNode, error) {
	if p.isKeyword("NOT") {
		p.pos++
		inner, err := p.parseNot()
		if err != nil {
			return ruleengine.PredNode{}, err
		}
		return ruleengine.PredNode{Kind: ruleengine.NodeNot, Operands: []ruleengine.PredNode{inner}}, nil
	}
	return p.parseAtom()
}

func (p *predParser) parseAtom() (ruleengine.PredNode, error) {
	t, ok := p.peek()
	if !ok {
		return ruleengine.PredNode{}, fmt.Errorf("unexpected end of predicate")
	}
	if t.kind == tokLParen {
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return ruleengine.PredNode{}, err
		}
		closeTok, ok := p.peek()
		if !ok || closeTok.kind != tokRParen {
			return ruleengine.PredNode{}, fmt.Errorf("expected ')'")
		}
		p.pos++
		return inner, nil
	}
	if t.kind == tokIdent && strings.EqualFold(t.text, "True") {
		p.pos++
		return ruleengine.PredNode{Kind: ruleengine.NodeTrue}, nil
	}
	if t.kind == tokIdent && strings.EqualFold(t.text, "False") {
		p.pos++
		return ruleengine.PredNode{Kind: ruleengine.NodeFalse}, nil
	}
	return p.parseComparison()
}

func (p *predParser) parseComparison() (ruleengine.PredNode, error) {
	lhs, err := p.parseOperand()
	if err != nil {
		return ruleengine.PredNode{}, err
	}
	opTok, ok := p.peek()
	if !ok || opTok.kind != tokOp {
		return ruleengine.PredNode{}, fmt.Errorf("expected a comparison operator")
	}
	op, err := opFromToken(opTok.text)
	if err != nil {
		return ruleengine.PredNode{}, err
	}
	p.pos++
	rhs, err := p.parseOperand()
	if err != nil {
		return ruleengine.PredNode{}, err
	}
	return ruleengine.PredNode{
		Kind:     ruleengine.NodeComparison,
		Operator: op,
		Operands: []ruleengine.PredNode{lhs, rhs},
	}, nil
}

func (p *predParser) parseOperand() (ruleengine.PredNode, error) {
	t, ok := p.peek()
	if !ok {
		return ruleengine.PredNode{}, fmt.Errorf("unexpected end of comparison operand")
	}
	switch t.kind {
	case tokString:
		p.pos++
		return ruleengine.PredNode{Kind: ruleengine.NodeAnswer, Answer: ruleengine.StringAnswer(t.text)}, nil
	case tokNumber:
		p.pos++
		if strings.Contains(t.text, ".") {
			d, err := strconv.ParseFloat(t.text, 64)
			if err != nil {
				return ruleengine.PredNode{}, fmt.Errorf("invalid number literal %q: %w", t.text, err)
			}
			return ruleengine.PredNode{Kind: ruleengine.NodeAnswer, Answer: ruleengine.DoubleAnswer(d)}, nil
		}
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return ruleengine.PredNode{}, fmt.Errorf("invalid number literal %q: %w", t.text, err)
		}
		return ruleengine.PredNode{Kind: ruleengine.NodeAnswer, Answer: ruleengine.IntAnswer(n)}, nil
	case tokIdent:
		p.pos++
		switch strings.ToLower(t.text) {
		case "true":
			return ruleengine.PredNode{Kind: ruleengine.NodeAnswer, Answer: ruleengine.BoolAnswer(true)}, nil
		case "false":
			return ruleengine.PredNode{Kind: ruleengine.NodeAnswer, Answer: ruleengine.BoolAnswer(false)}, nil
		default:
			return ruleengine.PredNode{Kind: ruleengine.NodeQuestion, Question: ruleengine.Question(t.text)}, nil
		}
	default:
		return ruleengine.PredNode{}, fmt.Errorf("unexpected token %q in comparison operand", t.text)
	}
}

func opFromToken(s string) (ruleengine.Op, error) {
	switch s {
	case "==":
		return ruleengine.OpEq, nil
	case "!=":
		return ruleengine.OpNe, nil
	case "<":
		return ruleengine.OpLt, nil
	case ">":
		return ruleengine.OpGt, nil
	case "<=":
		return ruleengine.OpLe, nil
	case ">=":
		return ruleengine.OpGe, nil
	default:
		return 0, fmt.Errorf("unrecognized operator %q", s)
	}
}
