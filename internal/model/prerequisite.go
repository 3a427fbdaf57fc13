package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Operator joins the operands of a PrerequisiteGroup.
type Operator string

const (
	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
)

// PrerequisiteNode is a node of a prerequisite tree.  The set of
// implementations is closed: *PrerequisiteLeaf and *PrerequisiteGroup.
type PrerequisiteNode interface {
	prerequisiteNode()
}

// PrerequisiteLeaf is satisfied by a taken course of MajorCode whose number
// lies in [CourseNumber, EndNumber].  A nil EndNumber means the range is the
// single number CourseNumber.  ConcurrentAllowed is carried through storage
// but no evaluator consults it.
type PrerequisiteLeaf struct {
	MajorCode         string
	CourseNumber      string
	EndNumber         *int
	ConcurrentAllowed bool
}

// PrerequisiteGroup combines operands with AND or OR.
type PrerequisiteGroup struct {
	Operator Operator
	Operands []PrerequisiteNode
}

func (*PrerequisiteLeaf) prerequisiteNode()  {}
func (*PrerequisiteGroup) prerequisiteNode() {}

// Matches reports whether code falls inside the leaf's range.  Numbers are
// compared as integers; when either side does not parse the numbers must be
// equal as strings.
func (l *PrerequisiteLeaf) Matches(code CourseCode) bool {
	if code.MajorCode != l.MajorCode {
		return false
	}
	start, okStart := parseCourseNumber(l.CourseNumber)
	n, okN := code.Number()
	if !okStart || !okN {
		return code.CourseNumber == l.CourseNumber
	}
	end := start
	if l.EndNumber != nil {
		end = *l.EndNumber
	}
	return n >= start && n <= end
}

// PrerequisitesSatisfied evaluates a prerequisite tree against the taken
// courses.  A nil tree is satisfied.  An AND group with no operands is
// satisfied; an OR group with no operands is not.
func PrerequisitesSatisfied(node PrerequisiteNode, taken CourseSet) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *PrerequisiteLeaf:
		if n == nil {
			return true
		}
		for code := range taken {
			if n.Matches(code) {
				return true
			}
		}
		return false
	case *PrerequisiteGroup:
		if n == nil {
			return true
		}
		switch n.Operator {
		case OperatorAnd:
			for _, op := range n.Operands {
				if !PrerequisitesSatisfied(op, taken) {
					return false
				}
			}
			return true
		case OperatorOr:
			for _, op := range n.Operands {
				if PrerequisitesSatisfied(op, taken) {
					return true
				}
			}
			return false
		}
	}
	return false
}

// PrerequisiteLeaves returns the leaves of the tree in depth-first order.
func PrerequisiteLeaves(node PrerequisiteNode) []*PrerequisiteLeaf {
	var out []*PrerequisiteLeaf
	var walk func(PrerequisiteNode)
	walk = func(node PrerequisiteNode) {
		switch n := node.(type) {
		case *PrerequisiteLeaf:
			if n != nil {
				out = append(out, n)
			}
		case *PrerequisiteGroup:
			if n == nil {
				return
			}
			for _, op := range n.Operands {
				walk(op)
			}
		}
	}
	walk(node)
	return out
}

// FilterPrerequisiteCourses returns every course of pool that is matched by
// at least one leaf of the tree, in pool order.  Operators are ignored: the
// result answers "which courses feed this prerequisite", not whether it is
// satisfied.
func FilterPrerequisiteCourses(node PrerequisiteNode, pool []Course) []Course {
	leaves := PrerequisiteLeaves(node)
	if len(leaves) == 0 {
		return nil
	}
	var out []Course
	for _, c := range pool {
		for _, l := range leaves {
			if l.Matches(c.CourseCode) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// prerequisiteJSON is the stored shape of both node kinds.  A document with
// an "operator" key is a group.
type prerequisiteJSON struct {
	Operator          *Operator         `json:"operator,omitempty"`
	Operands          []json.RawMessage `json:"operands,omitempty"`
	MajorCode         string            `json:"major_code,omitempty"`
	CourseNumber      json.RawMessage   `json:"course_number,omitempty"`
	EndNumber         json.RawMessage   `json:"end_number,omitempty"`
	ConcurrentAllowed bool              `json:"concurrent_allowed,omitempty"`
}

// MarshalPrerequisite encodes a tree as JSON.  A nil tree encodes as null.
func MarshalPrerequisite(node PrerequisiteNode) ([]byte, error) {
	v, err := prerequisiteValue(node)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func prerequisiteValue(node PrerequisiteNode) (any, error) {
	switch n := node.(type) {
	case nil:
		return nil, nil
	case *PrerequisiteLeaf:
		if n == nil {
			return nil, nil
		}
		return map[string]any{
			"major_code":         n.MajorCode,
			"course_number":      n.CourseNumber,
			"end_number":         n.EndNumber,
			"concurrent_allowed": n.ConcurrentAllowed,
		}, nil
	case *PrerequisiteGroup:
		if n == nil {
			return nil, nil
		}
		ops := make([]any, 0, len(n.Operands))
		for _, op := range n.Operands {
			v, err := prerequisiteValue(op)
			if err != nil {
				return nil, err
			}
			ops = append(ops, v)
		}
		return map[string]any{"operator": n.Operator, "operands": ops}, nil
	}
	return nil, fmt.Errorf("unknown prerequisite node %T", node)
}

// UnmarshalPrerequisite decodes a tree stored by MarshalPrerequisite.  Empty
// input and JSON null decode to a nil tree.  Course numbers may be stored as
// JSON strings or numbers.
func UnmarshalPrerequisite(data []byte) (PrerequisiteNode, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	var raw prerequisiteJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode prerequisite: %w", err)
	}
	if raw.Operator != nil {
		op := Operator(strings.ToUpper(string(*raw.Operator)))
		if op != OperatorAnd && op != OperatorOr {
			return nil, fmt.Errorf("unknown prerequisite operator %q", *raw.Operator)
		}
		g := &PrerequisiteGroup{Operator: op}
		for _, child := range raw.Operands {
			n, err := UnmarshalPrerequisite(child)
			if err != nil {
				return nil, err
			}
			if n != nil {
				g.Operands = append(g.Operands, n)
			}
		}
		return g, nil
	}
	number, err := rawNumberString(raw.CourseNumber)
	if err != nil {
		return nil, fmt.Errorf("decode prerequisite course_number: %w", err)
	}
	leaf := &PrerequisiteLeaf{
		MajorCode:         raw.MajorCode,
		CourseNumber:      number,
		ConcurrentAllowed: raw.ConcurrentAllowed,
	}
	end, err := rawNumberString(raw.EndNumber)
	if err != nil {
		return nil, fmt.Errorf("decode prerequisite end_number: %w", err)
	}
	if end != "" {
		n, ok := parseCourseNumber(end)
		if !ok {
			return nil, fmt.Errorf("invalid end_number %q", end)
		}
		// 0 is how older rows spell "no end".
		if n != 0 {
			leaf.EndNumber = &n
		}
	}
	return leaf, nil
}

// rawNumberString accepts a JSON string, number or null.
func rawNumberString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}
