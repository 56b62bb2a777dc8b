package decktext

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// TitleFromOutline derives a presentation title from the first outline slide's
// markdown. The first heading wins; otherwise the first paragraph's plain text,
// truncated at a word boundary.
func TitleFromOutline(markdown string) string {
	src := []byte(markdown)
	root := goldmark.DefaultParser().Parse(text.NewReader(src))

	var heading, paragraph string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if heading == "" {
				heading = strings.TrimSpace(string(node.Text(src)))
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			if paragraph == "" {
				paragraph = strings.TrimSpace(string(node.Text(src)))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	title := heading
	if title == "" {
		title = paragraph
	}
	return TruncateWords(title, 60)
}

// TruncateWords shortens s to at most max characters, breaking at the last
// word boundary past the halfway point when one exists.
func TruncateWords(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	truncated := s[:runeBoundary(s, max)]
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > max/2 {
		return truncated[:lastSpace] + "..."
	}
	return truncated + "..."
}

// TruncateBudget caps source material at a fixed byte budget without
// splitting a multi-byte rune.
func TruncateBudget(s string, budget int) string {
	if budget <= 0 || len(s) <= budget {
		return s
	}
	return s[:runeBoundary(s, budget)]
}

// runeBoundary backs cut off to the start of the rune it falls inside.
func runeBoundary(s string, cut int) int {
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return cut
}
