package query

import (
	"errors"
	"testing"
)

func TestParseEmptyQueryRejected(t *testing.T) {
	_, err := Parse("   ")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseImplicitAnd(t *testing.T) {
	node, err := Parse("foo bar")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	and, ok := node.(AndNode)
	if !ok {
		t.Fatalf("expected AndNode, got %T", node)
	}
	if _, ok := and.Left.(WordNode); !ok {
		t.Fatalf("expected left WordNode, got %T", and.Left)
	}
	if _, ok := and.Right.(WordNode); !ok {
		t.Fatalf("expected right WordNode, got %T", and.Right)
	}
}

func TestParseOrLowerPrecedenceThanAnd(t *testing.T) {
	node, err := Parse("a b OR c")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	or, ok := node.(OrNode)
	if !ok {
		t.Fatalf("expected top-level OrNode, got %T", node)
	}
	if _, ok := or.Left.(AndNode); !ok {
		t.Fatalf("expected OR's left operand to be an AndNode, got %T", or.Left)
	}
	if _, ok := or.Right.(WordNode); !ok {
		t.Fatalf("expected OR's right operand to be a WordNode, got %T", or.Right)
	}
}

func TestParseNot(t *testing.T) {
	node, err := Parse("foo NOT bar")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	and, ok := node.(AndNode)
	if !ok {
		t.Fatalf("expected AndNode, got %T", node)
	}
	if _, ok := and.Right.(NotNode); !ok {
		t.Fatalf("expected right operand to be NotNode, got %T", and.Right)
	}
}

func TestParseParentheses(t *testing.T) {
	node, err := Parse("(foo OR bar) baz")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	and, ok := node.(AndNode)
	if !ok {
		t.Fatalf("expected AndNode, got %T", node)
	}
	if _, ok := and.Left.(OrNode); !ok {
		t.Fatalf("expected grouped left operand to be OrNode, got %T", and.Left)
	}
}

func TestParseTagTerm(t *testing.T) {
	node, err := Parse("tag:project/alpha")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tagNode, ok := node.(TagNode)
	if !ok {
		t.Fatalf("expected TagNode, got %T", node)
	}
	if tagNode.Path != "project/alpha" {
		t.Fatalf("path = %q", tagNode.Path)
	}
}

func TestParseAttrTermMissingValue(t *testing.T) {
	_, err := Parse("attr:status")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseUnterminatedPhrase(t *testing.T) {
	_, err := Parse(`"unterminated`)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseUnbalancedParens(t *testing.T) {
	_, err := Parse("(foo")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestCompileTagTermProducesPhraseAgainstTagsColumn(t *testing.T) {
	expr, err := CompileString("tag:project/alpha")
	if err != nil {
		t.Fatalf("CompileString: %v", err)
	}
	if expr != `tags_text:"project alpha"` {
		t.Fatalf("expr = %q", expr)
	}
}

func TestCompileAttrTermProducesPhraseAgainstAttrsColumn(t *testing.T) {
	expr, err := CompileString("attr:status=done")
	if err != nil {
		t.Fatalf("CompileString: %v", err)
	}
	if expr != `attrs_text:"status done"` {
		t.Fatalf("expr = %q", expr)
	}
}

func TestCompileWordEscapesQuotes(t *testing.T) {
	expr, err := Compile(WordNode{Text: `foo"bar`})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if expr != `"foo""bar"` {
		t.Fatalf("expr = %q", expr)
	}
}

func TestCompileAndOr(t *testing.T) {
	expr, err := CompileString("foo AND (bar OR NOT baz)")
	if err != nil {
		t.Fatalf("CompileString: %v", err)
	}
	want := `("foo" AND ("bar" OR NOT "baz"))`
	if expr != want {
		t.Fatalf("expr = %q, want %q", expr, want)
	}
}
