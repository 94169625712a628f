package query

import (
	"fmt"
	"strings"
)

// Compile walks a parsed AST and emits a single FTS5 MATCH expression
// string, ready to bind against the files_fts virtual table. FTS5's
// default query syntax already supports AND/OR/NOT and parenthetical
// grouping natively, so the AST maps onto it directly: the compiler's
// only real job is escaping user text into FTS5 string literals and
// turning `tag:a/b` and `attr:k=v` into column-scoped phrase queries
// against the tags_text/attrs_text mirror columns (§9 tokenization).
func Compile(n Node) (string, error) {
	var b strings.Builder
	if err := compileNode(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

// CompileString parses and compiles src in one step.
func CompileString(src string) (string, error) {
	ast, err := Parse(src)
	if err != nil {
		return "", err
	}
	return Compile(ast)
}

func compileNode(b *strings.Builder, n Node) error {
	switch v := n.(type) {
	case AndNode:
		b.WriteByte('(')
		if err := compileNode(b, v.Left); err != nil {
			return err
		}
		b.WriteString(" AND ")
		if err := compileNode(b, v.Right); err != nil {
			return err
		}
		b.WriteByte(')')
		return nil
	case OrNode:
		b.WriteByte('(')
		if err := compileNode(b, v.Left); err != nil {
			return err
		}
		b.WriteString(" OR ")
		if err := compileNode(b, v.Right); err != nil {
			return err
		}
		b.WriteByte(')')
		return nil
	case NotNode:
		b.WriteString("NOT ")
		return compileNode(b, v.Child)
	case WordNode:
		b.WriteString(ftsLiteral(v.Text))
		return nil
	case PhraseNode:
		b.WriteString(ftsPhraseLiteral(splitWords(v.Text)))
		return nil
	case TagNode:
		segs := splitPathSegments(v.Path)
		if len(segs) == 0 {
			return fmt.Errorf("query: empty tag path")
		}
		b.WriteString("tags_text:")
		b.WriteString(ftsPhraseLiteral(segs))
		return nil
	case AttrNode:
		b.WriteString("attrs_text:")
		b.WriteString(ftsPhraseLiteral([]string{v.Key, v.Value}))
		return nil
	default:
		return fmt.Errorf("query: unknown node type %T", n)
	}
}

// ftsLiteral quotes a single bare word as an FTS5 string literal.
func ftsLiteral(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ftsPhraseLiteral joins segs as a single FTS5 phrase query, i.e. an
// adjacent-token sequence, matching how the mirror builder concatenates
// tag path segments and attribute key/value pairs with plain spaces.
func ftsPhraseLiteral(segs []string) string {
	escaped := make([]string, len(segs))
	for i, s := range segs {
		escaped[i] = strings.ReplaceAll(s, `"`, `""`)
	}
	return `"` + strings.Join(escaped, " ") + `"`
}

func splitPathSegments(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitWords(s string) []string {
	return strings.Fields(s)
}
