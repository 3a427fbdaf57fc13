package model

import "testing"

func TestParsePrerequisiteExpressionPrecedence(t *testing.T) {
	node, err := ParsePrerequisiteExpression("CSCI 1300 & MATH 1510 | CSCI 2100")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	or, ok := node.(*PrerequisiteGroup)
	if !ok || or.Operator != OperatorOr || len(or.Operands) != 2 {
		t.Fatalf("expected OR at the root, got %#v", node)
	}
	and, ok := or.Operands[0].(*PrerequisiteGroup)
	if !ok || and.Operator != OperatorAnd || len(and.Operands) != 2 {
		t.Fatalf("expected AND to bind tighter, got %#v", or.Operands[0])
	}
	if !PrerequisitesSatisfied(node, taken(code("CSCI", "2100"))) {
		t.Fatalf("expected CSCI 2100 alone to satisfy")
	}
	if PrerequisitesSatisfied(node, taken(code("CSCI", "1300"))) {
		t.Fatalf("expected CSCI 1300 alone not to satisfy")
	}
}

func TestParsePrerequisiteExpressionParentheses(t *testing.T) {
	node, err := ParsePrerequisiteExpression("CSCI 1300 & (MATH 1510 | MATH 1520)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !PrerequisitesSatisfied(node, taken(code("CSCI", "1300"), code("MATH", "1520"))) {
		t.Fatalf("expected CSCI 1300 + MATH 1520 to satisfy")
	}
	if PrerequisitesSatisfied(node, taken(code("MATH", "1510"), code("MATH", "1520"))) {
		t.Fatalf("expected missing CSCI 1300 to fail")
	}
}

func TestParsePrerequisiteExpressionLeafForms(t *testing.T) {
	node, err := ParsePrerequisiteExpression("CSCI 1000-1999*")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	leaf, ok := node.(*PrerequisiteLeaf)
	if !ok {
		t.Fatalf("expected a single leaf, got %#v", node)
	}
	if leaf.MajorCode != "CSCI" || leaf.CourseNumber != "1000" {
		t.Fatalf("unexpected leaf %#v", leaf)
	}
	if leaf.EndNumber == nil || *leaf.EndNumber != 1999 {
		t.Fatalf("expected range end 1999")
	}
	if !leaf.ConcurrentAllowed {
		t.Fatalf("expected concurrent flag from trailing *")
	}
}

func TestParsePrerequisiteExpressionErrors(t *testing.T) {
	for _, expr := range []string{"CSCI 1300 &", "(CSCI 1300", "CSCI", "CSCI 1300 )", "CSCI 1000-abc"} {
		if _, err := ParsePrerequisiteExpression(expr); err == nil {
			t.Fatalf("%q: expected error", expr)
		}
	}
	node, err := ParsePrerequisiteExpression("   ")
	if err != nil || node != nil {
		t.Fatalf("blank expression: expected nil tree, got %v, %v", node, err)
	}
}
