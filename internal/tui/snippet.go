package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"proof/internal/api"

	"github.com/alecthomas/chroma/v2/quick"
)

// renderSnippet draws one cited excerpt: file path, optional line range
// and description, then the syntax-highlighted code in a bordered box.
func renderSnippet(s api.Snippet, width int) string {
	header := s.File
	if s.HasLines() {
		header = fmt.Sprintf("%s (lines %d–%d)", s.File, s.StartLine, s.EndLine)
	}

	var b strings.Builder
	b.WriteString(snippetHeaderStyle.Render(header))
	if s.Description != "" {
		b.WriteString("\n" + dimStyle.Render(s.Description))
	}

	code := highlight(s.Code, s.File)
	box := snippetBoxStyle
	if width > 4 {
		box = box.Width(width - 2)
	}
	b.WriteString("\n" + box.Render(strings.TrimRight(code, "\n")))
	return b.String()
}

// highlight runs chroma over the code, picking the lexer from the file
// extension. Unknown extensions fall through to chroma's plain-text
// lexer; on error the raw text is returned.
func highlight(code, filename string) string {
	language := strings.TrimPrefix(filepath.Ext(filename), ".")
	var out strings.Builder
	if err := quick.Highlight(&out, code, language, "terminal256", "monokai"); err != nil {
		return code
	}
	return out.String()
}

// renderSnippets draws a list of snippets with a count header.
func renderSnippets(snippets []api.Snippet, width int) string {
	if len(snippets) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Referenced code (%d snippets)", len(snippets))))
	for _, s := range snippets {
		b.WriteString("\n\n" + renderSnippet(s, width))
	}
	return b.String()
}

// renderTags draws tag badges on one line.
func renderTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = tagStyle.Render(t)
	}
	return strings.Join(parts, " ")
}
