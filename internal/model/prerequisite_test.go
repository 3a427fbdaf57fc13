package model

import "testing"

func code(major, number string) CourseCode {
	return CourseCode{MajorCode: major, CourseNumber: number}
}

func taken(codes ...CourseCode) CourseSet {
	s := make(CourseSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

func intPtr(n int) *int { return &n }

func TestLeafRangeBounds(t *testing.T) {
	leaf := &PrerequisiteLeaf{MajorCode: "CSCI", CourseNumber: "1000", EndNumber: intPtr(1999)}
	cases := []struct {
		code CourseCode
		want bool
	}{
		{code("CSCI", "1000"), true},
		{code("CSCI", "1999"), true},
		{code("CSCI", "1500"), true},
		{code("CSCI", "0999"), false},
		{code("CSCI", "2000"), false},
		{code("MATH", "1500"), false},
	}
	for _, tc := range cases {
		if got := PrerequisitesSatisfied(leaf, taken(tc.code)); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.code, tc.want, got)
		}
	}
}

func TestLeafWithoutEndMatchesSingleNumber(t *testing.T) {
	leaf := &PrerequisiteLeaf{MajorCode: "CSCI", CourseNumber: "1300"}
	if !PrerequisitesSatisfied(leaf, taken(code("CSCI", "1300"))) {
		t.Fatalf("expected CSCI 1300 to satisfy its own leaf")
	}
	if PrerequisitesSatisfied(leaf, taken(code("CSCI", "1301"))) {
		t.Fatalf("expected CSCI 1301 not to satisfy a single-number leaf")
	}
}

func TestLeafFallsBackToStringEquality(t *testing.T) {
	leaf := &PrerequisiteLeaf{MajorCode: "CSCI", CourseNumber: "4999X"}
	if !PrerequisitesSatisfied(leaf, taken(code("CSCI", "4999X"))) {
		t.Fatalf("expected exact string match for non-numeric number")
	}
	if PrerequisitesSatisfied(leaf, taken(code("CSCI", "4999"))) {
		t.Fatalf("expected 4999 not to match 4999X")
	}
}

func TestNilTreeIsSatisfied(t *testing.T) {
	if !PrerequisitesSatisfied(nil, nil) {
		t.Fatalf("nil tree must be satisfied by nothing")
	}
	if !PrerequisitesSatisfied(nil, taken(code("CSCI", "1000"))) {
		t.Fatalf("nil tree must be satisfied by anything")
	}
}

func TestGroupOperators(t *testing.T) {
	x := &PrerequisiteLeaf{MajorCode: "CSCI", CourseNumber: "1000"}
	y := &PrerequisiteLeaf{MajorCode: "MATH", CourseNumber: "1510"}
	and := &PrerequisiteGroup{Operator: OperatorAnd, Operands: []PrerequisiteNode{x, y}}
	or := &PrerequisiteGroup{Operator: OperatorOr, Operands: []PrerequisiteNode{x, y}}

	sets := []CourseSet{
		taken(),
		taken(code("CSCI", "1000")),
		taken(code("MATH", "1510")),
		taken(code("CSCI", "1000"), code("MATH", "1510")),
	}
	for i, s := range sets {
		xs, ys := PrerequisitesSatisfied(x, s), PrerequisitesSatisfied(y, s)
		if got := PrerequisitesSatisfied(and, s); got != (xs && ys) {
			t.Fatalf("set %d: AND expected %v, got %v", i, xs && ys, got)
		}
		if got := PrerequisitesSatisfied(or, s); got != (xs || ys) {
			t.Fatalf("set %d: OR expected %v, got %v", i, xs || ys, got)
		}
	}

	if !PrerequisitesSatisfied(&PrerequisiteGroup{Operator: OperatorAnd}, nil) {
		t.Fatalf("empty AND must be satisfied")
	}
	if PrerequisitesSatisfied(&PrerequisiteGroup{Operator: OperatorOr}, taken(code("CSCI", "1000"))) {
		t.Fatalf("empty OR must not be satisfied")
	}
}

func TestFilterPrerequisiteCoursesIgnoresOperator(t *testing.T) {
	pool := []Course{
		{ID: 1, CourseCode: code("CSCI", "1000")},
		{ID: 2, CourseCode: code("MATH", "1510")},
		{ID: 3, CourseCode: code("CSCI", "2000")},
		{ID: 4, CourseCode: code("CSCI", "1050")},
	}
	tree := &PrerequisiteGroup{Operator: OperatorOr, Operands: []PrerequisiteNode{
		&PrerequisiteLeaf{MajorCode: "CSCI", CourseNumber: "1000", EndNumber: intPtr(1099)},
		&PrerequisiteGroup{Operator: OperatorAnd, Operands: []PrerequisiteNode{
			&PrerequisiteLeaf{MajorCode: "MATH", CourseNumber: "1510"},
			&PrerequisiteLeaf{MajorCode: "CSCI", CourseNumber: "1000"},
		}},
	}}
	got := FilterPrerequisiteCourses(tree, pool)
	if len(got) != 3 {
		t.Fatalf("expected 3 courses, got %d", len(got))
	}
	want := []int64{1, 2, 4}
	for i, c := range got {
		if c.ID != want[i] {
			t.Fatalf("position %d: expected id %d, got %d", i, want[i], c.ID)
		}
	}
	if FilterPrerequisiteCourses(nil, pool) != nil {
		t.Fatalf("nil tree feeds no courses")
	}
}

func TestUnmarshalPrerequisiteStoredShapes(t *testing.T) {
	data := []byte(`{"operator":"or","operands":[
		{"major_code":"CSCI","course_number":1300,"end_number":null,"concurrent_allowed":true},
		{"major_code":"CSCI","course_number":"2000","end_number":2999}
	]}`)
	node, err := UnmarshalPrerequisite(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	g, ok := node.(*PrerequisiteGroup)
	if !ok || g.Operator != OperatorOr || len(g.Operands) != 2 {
		t.Fatalf("unexpected tree %#v", node)
	}
	first := g.Operands[0].(*PrerequisiteLeaf)
	if first.CourseNumber != "1300" || first.EndNumber != nil || !first.ConcurrentAllowed {
		t.Fatalf("unexpected first leaf %#v", first)
	}
	second := g.Operands[1].(*PrerequisiteLeaf)
	if second.EndNumber == nil || *second.EndNumber != 2999 {
		t.Fatalf("unexpected second leaf %#v", second)
	}
	if !PrerequisitesSatisfied(node, taken(code("CSCI", "2500"))) {
		t.Fatalf("expected CSCI 2500 to satisfy the range branch")
	}

	for _, empty := range []string{"", "null", "  "} {
		n, err := UnmarshalPrerequisite([]byte(empty))
		if err != nil || n != nil {
			t.Fatalf("%q: expected nil tree, got %v, %v", empty, n, err)
		}
	}
	if _, err := UnmarshalPrerequisite([]byte(`{"operator":"XOR","operands":[]}`)); err == nil {
		t.Fatalf("expected error for unknown operator")
	}
}

func TestUnmarshalPrerequisiteZeroEndIsSingleNumber(t *testing.T) {
	node, err := UnmarshalPrerequisite([]byte(`{"major_code":"MATH","course_number":"1510","end_number":0}`))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	leaf := node.(*PrerequisiteLeaf)
	if leaf.EndNumber != nil {
		t.Fatalf("end_number 0 should mean no end, got %d", *leaf.EndNumber)
	}
	if !PrerequisitesSatisfied(node, taken(code("MATH", "1510"))) {
		t.Fatalf("MATH 1510 should satisfy its own leaf")
	}
}

func TestMarshalPrerequisiteKeepsTree(t *testing.T) {
	tree, err := ParsePrerequisiteExpression("(CSCI 1300 & MATH 1510*) | CSCI 2000-2999")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	data, err := MarshalPrerequisite(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := UnmarshalPrerequisite(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	leaves := PrerequisiteLeaves(back)
	if len(leaves) != 3 {
		t.Fatalf("expected 3 leaves, got %d", len(leaves))
	}
	if !leaves[1].ConcurrentAllowed {
		t.Fatalf("expected concurrent flag to survive storage")
	}
	if leaves[2].EndNumber == nil || *leaves[2].EndNumber != 2999 {
		t.Fatalf("expected range end to survive storage")
	}
}
