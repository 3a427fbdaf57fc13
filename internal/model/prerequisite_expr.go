package model

import (
	"errors"
	"fmt"
	"strings"
)

// Prerequisite expressions are the text form of a prerequisite tree used in
// scenario files and by catalog imports:
//
//	(CSCI 1300 & MATH 1510) | CSCI 2100
//	CSCI 1000-1999 & MATH 1510*
//
// A requisite is "MAJOR NUMBER" with an optional "-END" range and an optional
// trailing "*" marking concurrent enrollment as allowed.  & binds tighter
// than |.

type exprTokenType int

const (
	tokenRequisite exprTokenType = iota
	tokenLParen
	tokenRParen
	tokenAnd
	tokenOr
	tokenEnd
)

type exprToken struct {
	typ   exprTokenType
	value string
}

func tokenizeExpression(s string) []exprToken {
	var tokens []exprToken
	var buf strings.Builder
	flush := func() {
		if v := strings.TrimSpace(buf.String()); v != "" {
			tokens = append(tokens, exprToken{typ: tokenRequisite, value: v})
		}
		buf.Reset()
	}
	for _, ch := range s {
		switch ch {
		case '(':
			flush()
			tokens = append(tokens, exprToken{typ: tokenLParen, value: "("})
		case ')':
			flush()
			tokens = append(tokens, exprToken{typ: tokenRParen, value: ")"})
		case '&':
			flush()
			tokens = append(tokens, exprToken{typ: tokenAnd, value: "&"})
		case '|':
			flush()
			tokens = append(tokens, exprToken{typ: tokenOr, value: "|"})
		default:
			buf.WriteRune(ch)
		}
	}
	flush()
	return append(tokens, exprToken{typ: tokenEnd, value: "$"})
}

type exprParser struct {
	tokens []exprToken
}

func (p *exprParser) peek() exprTokenType { return p.tokens[0].typ }

func (p *exprParser) eat(t exprTokenType) (string, error) {
	if len(p.tokens) == 0 {
		return "", errors.New("no token to eat")
	}
	tok := p.tokens[0]
	if tok.typ != t {
		return "", fmt.Errorf("unexpected token %q", tok.value)
	}
	if tok.typ != tokenEnd {
		p.tokens = p.tokens[1:]
	}
	return tok.value, nil
}

// ParsePrerequisiteExpression parses the text form of a prerequisite tree.
// An empty or blank expression yields a nil tree.
func ParsePrerequisiteExpression(s string) (PrerequisiteNode, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	p := &exprParser{tokens: tokenizeExpression(s)}
	node, err := p.expression()
	if err != nil {
		return nil, fmt.Errorf("parse prerequisites %q: %w", s, err)
	}
	if _, err := p.eat(tokenEnd); err != nil {
		return nil, fmt.Errorf("parse prerequisites %q: %w", s, err)
	}
	return node, nil
}

func (p *exprParser) expression() (PrerequisiteNode, error) {
	head, err := p.term()
	if err != nil {
		return nil, err
	}
	operands := []PrerequisiteNode{head}
	for p.peek() == tokenOr {
		p.eat(tokenOr)
		next, err := p.term()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return head, nil
	}
	return &PrerequisiteGroup{Operator: OperatorOr, Operands: operands}, nil
}

func (p *exprParser) term() (PrerequisiteNode, error) {
	head, err := p.factor()
	if err != nil {
		return nil, err
	}
	operands := []PrerequisiteNode{head}
	for p.peek() == tokenAnd {
		p.eat(tokenAnd)
		next, err := p.factor()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return head, nil
	}
	return &PrerequisiteGroup{Operator: OperatorAnd, Operands: operands}, nil
}

func (p *exprParser) factor() (PrerequisiteNode, error) {
	switch p.peek() {
	case tokenRequisite:
		v, err := p.eat(tokenRequisite)
		if err != nil {
			return nil, err
		}
		return parseRequisite(v)
	case tokenLParen:
		p.eat(tokenLParen)
		node, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(tokenRParen); err != nil {
			return nil, err
		}
		return node, nil
	}
	return nil, fmt.Errorf("unexpected token %q", p.tokens[0].value)
}

func parseRequisite(s string) (*PrerequisiteLeaf, error) {
	leaf := &PrerequisiteLeaf{}
	if trimmed, ok := strings.CutSuffix(s, "*"); ok {
		leaf.ConcurrentAllowed = true
		s = trimmed
	}
	code, ok := ParseCourseCode(s)
	if !ok {
		return nil, fmt.Errorf("invalid requisite %q", s)
	}
	leaf.MajorCode = code.MajorCode
	leaf.CourseNumber = code.CourseNumber
	if start, end, found := strings.Cut(code.CourseNumber, "-"); found {
		n, ok := parseCourseNumber(end)
		if !ok {
			return nil, fmt.Errorf("invalid range end in %q", s)
		}
		leaf.CourseNumber = start
		leaf.EndNumber = &n
	}
	return leaf, nil
}
