package source

import (
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdownExtensions = []string{".md", ".markdown", ".mdown", ".mkdn"}

// IsMarkdown reports whether path has a markdown extension.
func IsMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range markdownExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// MarkdownToSpeech renders markdown as plain text suitable for speaking.
// Code and raw HTML are dropped, link and image text is kept, and headings
// and list items end in a full stop so engines pause after them.
func MarkdownToSpeech(markdown string) string {
	reader := text.NewReader([]byte(markdown))
	doc := goldmark.New().Parser().Parse(reader)

	var w speechWriter
	w.walk(doc, reader.Source())
	return strings.TrimSpace(w.String())
}

type speechWriter struct {
	strings.Builder
}

func (w *speechWriter) walk(node ast.Node, src []byte) {
	switch n := node.(type) {
	case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock, *ast.RawHTML, *ast.ThematicBreak:
		return

	case *ast.Text:
		w.Write(n.Segment.Value(src))
		if n.SoftLineBreak() || n.HardLineBreak() {
			w.WriteByte(' ')
		}
		return

	case *ast.String:
		w.Write(n.Value)
		return

	case *ast.CodeSpan:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				w.Write(t.Segment.Value(src))
			}
		}
		return

	case *ast.AutoLink:
		w.Write(n.Label(src))
		return

	case *ast.Heading, *ast.ListItem:
		w.children(n, src)
		w.endSentence()
		w.WriteString("\n\n")
		return

	case *ast.Paragraph, *ast.TextBlock:
		w.children(n, src)
		w.WriteString("\n\n")
		return
	}

	w.children(node, src)
}

func (w *speechWriter) children(n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.walk(c, src)
	}
}

// endSentence adds a full stop unless the text already ends in punctuation.
func (w *speechWriter) endSentence() {
	all := w.String()
	s := strings.TrimRight(all, " \n")
	if s == "" || strings.ContainsAny(s[len(s)-1:], ".!?:;") {
		return
	}
	w.Reset()
	w.WriteString(s)
	w.WriteByte('.')
	w.WriteString(all[len(s):])
}
