package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_Idents(t *testing.T) {
	l := New("def foo = bar")
	var kinds []Kind
	var texts []string
	for {
		tok := l.Next()
		if tok.Kind == EOF {
			break
		}
		kinds = append(kinds, tok.Kind)
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []Kind{Keyword, Ident, Operator, Ident}, kinds)
	assert.Equal(t, []string{"def", "foo", "=", "bar"}, texts)
}

func TestNext_Coordinates(t *testing.T) {
	l := New("foo\nbar")
	first := l.Next()
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, 1, first.Col)

	second := l.Next()
	assert.Equal(t, 2, second.Line)
	assert.Equal(t, 1, second.Col)
}

func TestNext_DocComment(t *testing.T) {
	l := New("/**\n * Does a thing.\n */\ndef foo() {}")
	tok := l.Next()
	require.Equal(t, DocComment, tok.Kind)
	lines, ok := tok.Literal.([]string)
	require.True(t, ok)
	assert.Contains(t, lines, "Does a thing.")
}

func TestNext_PlainBlockCommentSkipped(t *testing.T) {
	l := New("/* not a doc comment */ def")
	tok := l.Next()
	assert.Equal(t, Keyword, tok.Kind)
	assert.Equal(t, "def", tok.Text)
}

func TestNext_LineComment(t *testing.T) {
	l := New("// comment\ndef")
	tok := l.Next()
	assert.Equal(t, Keyword, tok.Kind)
}

func TestNext_StringLiteral(t *testing.T) {
	l := New(`"hello"`)
	tok := l.Next()
	assert.Equal(t, String, tok.Kind)
	assert.Equal(t, "hello", tok.Text)
}

func TestNext_TripleQuotedString(t *testing.T) {
	l := New(`'''a
b'''`)
	tok := l.Next()
	assert.Equal(t, String, tok.Kind)
	assert.Equal(t, "a\nb", tok.Text)
}

func TestNext_Operators(t *testing.T) {
	cases := []string{"==", "!=", "<=>", "?.", "->", "+="}
	for _, op := range cases {
		l := New(op)
		tok := l.Next()
		assert.Equal(t, Operator, tok.Kind, "operator %q", op)
		assert.Equal(t, op, tok.Text)
	}
}

func TestPeek_DoesNotConsume(t *testing.T) {
	l := New("foo bar")
	peeked := l.Peek()
	assert.Equal(t, "foo", peeked.Text)
	next := l.Next()
	assert.Equal(t, "foo", next.Text)
	assert.Equal(t, "bar", l.Next().Text)
}

func TestSaveRestore(t *testing.T) {
	l := New("foo bar baz")
	l.Next() // foo
	state := l.Save()
	second := l.Next() // bar
	assert.Equal(t, "bar", second.Text)

	l.Restore(state)
	replay := l.Next()
	assert.Equal(t, "bar", replay.Text)
	assert.Equal(t, "baz", l.Next().Text)
}

func TestIsKeyword(t *testing.T) {
	assert.True(t, IsKeyword("class"))
	assert.True(t, IsKeyword("def"))
	assert.False(t, IsKeyword("foo"))
}

func TestScanInterpolations(t *testing.T) {
	spans := ScanInterpolations("Hello, ${name}! You are $age.")
	require.Len(t, spans, 2)
	assert.Equal(t, "name", spans[0].Expr)
	assert.Equal(t, "age", spans[1].Expr)
}

func TestScanInterpolations_None(t *testing.T) {
	spans := ScanInterpolations("no interpolation here")
	assert.Empty(t, spans)
}
