package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FencedBlocks returns the contents of every fenced code block in source
// whose info string names lang, compared case-insensitively, in document
// order. Surrounding whitespace is trimmed and empty blocks are dropped.
func FencedBlocks(source, lang string) []string {
	src := []byte(source)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var blocks []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fc, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if !strings.EqualFold(string(fc.Language(src)), lang) {
			return ast.WalkSkipChildren, nil
		}
		var b strings.Builder
		lines := fc.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(src))
		}
		if code := strings.TrimSpace(b.String()); code != "" {
			blocks = append(blocks, code)
		}
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// FirstFencedBlock returns the first fenced block in source tagged lang.
func FirstFencedBlock(source, lang string) (string, bool) {
	blocks := FencedBlocks(source, lang)
	if len(blocks) == 0 {
		return "", false
	}
	return blocks[0], true
}

// WithoutFencedBlocks returns source with the contents of every fenced
// code block blanked out. Fence lines and offsets are preserved.
func WithoutFencedBlocks(source string) string {
	src := []byte(source)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	out := []byte(source)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fc, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lines := fc.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			for j := seg.Start; j < seg.Stop; j++ {
				if out[j] != '\n' {
					out[j] = ' '
				}
			}
		}
		return ast.WalkSkipChildren, nil
	})
	return string(out)
}
