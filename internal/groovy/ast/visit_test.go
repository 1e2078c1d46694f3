package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisit_Module(t *testing.T) {
	imp := &ImportNode{ClassName: "java.util.List"}
	cls := &ClassNode{Name: "Foo"}
	stmt := &ExpressionStatement{}
	mod := &Module{Imports: []*ImportNode{imp}, Classes: []*ClassNode{cls}, Statements: []Node{stmt}}

	var visited []Node
	Visit(mod, func(n Node) { visited = append(visited, n) })

	assert.Equal(t, []Node{imp, cls, stmt}, visited)
}

func TestVisit_ClassWalksMembersInOrder(t *testing.T) {
	field := &FieldNode{Name: "f"}
	prop := &PropertyNode{Name: "p"}
	method := &MethodNode{Name: "m"}
	cls := &ClassNode{Fields: []*FieldNode{field}, Properties: []*PropertyNode{prop}, Methods: []*MethodNode{method}}

	var visited []Node
	Visit(cls, func(n Node) { visited = append(visited, n) })

	assert.Equal(t, []Node{field, prop, method}, visited)
}

func TestVisit_NilNodeIsNoOp(t *testing.T) {
	calls := 0
	Visit(nil, func(n Node) { calls++ })
	assert.Equal(t, 0, calls)
}

func TestVisit_SkipsNilOptionalChildren(t *testing.T) {
	ret := &ReturnStatement{Value: nil}
	calls := 0
	Visit(ret, func(n Node) { calls++ })
	assert.Equal(t, 0, calls)
}

func TestVisit_BinaryExpressionVisitsBothSides(t *testing.T) {
	lhs := &VariableExpression{Name: "a"}
	rhs := &ConstantExpression{Value: 1}
	bin := &BinaryExpression{LHS: lhs, RHS: rhs, Operator: "+"}

	var visited []Node
	Visit(bin, func(n Node) { visited = append(visited, n) })

	assert.Equal(t, []Node{lhs, rhs}, visited)
}

func TestVisit_UnsupportedNodePanics(t *testing.T) {
	assert.Panics(t, func() {
		Visit(fakeNode{}, func(Node) {})
	})
}

type fakeNode struct{}

func (fakeNode) Range() Range { return Range{} }
func (fakeNode) isNode()      {}

func TestCoordinate_Valid(t *testing.T) {
	assert.True(t, Coordinate{Line: 1, Column: 1}.Valid())
	assert.False(t, Coordinate{Line: 0, Column: 1}.Valid())
	assert.False(t, Coordinate{Line: 1, Column: 0}.Valid())
}

func TestRange_Valid(t *testing.T) {
	valid := NewRange(1, 1, 1, 5)
	assert.True(t, valid.Valid())

	invalid := Range{Start: Coordinate{Line: 0, Column: 0}, End: Coordinate{Line: 1, Column: 1}}
	assert.False(t, invalid.Valid())
}
