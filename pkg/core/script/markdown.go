package script

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// PlainText renders a markdown document down to narration text: block
// elements become blank-line-delimited paragraphs, inline formatting is
// dropped. Code blocks are skipped entirely; they are never narration.
func PlainText(markdown string) string {
	source := []byte(markdown)
	parser := goldmark.DefaultParser()
	doc := parser.Parse(text.NewReader(source))

	var blocks []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.Heading:
			var sb strings.Builder
			collectText(node, source, &sb)
			if s := strings.TrimSpace(sb.String()); s != "" {
				blocks = append(blocks, s)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(blocks, "\n\n")
}

func collectText(n ast.Node, source []byte, sb *strings.Builder) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
			continue
		}
		collectText(c, source, sb)
	}
}

// ParseMarkdownScript strips markdown structure from a document and parses
// the remaining narration into a structured script.
func ParseMarkdownScript(markdown string) (*StructuredScript, error) {
	return ParseScript(PlainText(markdown))
}
