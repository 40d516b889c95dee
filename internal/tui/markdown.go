package tui

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	codeBlockRegex = regexp.MustCompile(`(?s)<pre><code(?: class="language-([a-zA-Z0-9]+)")?>(.*?)</code></pre>`)
	headingRegex   = regexp.MustCompile(`<h([1-6]) id="[^"]*">(.*?)</h[1-6]>`)
	strongRegex    = regexp.MustCompile(`<strong>(.*?)</strong>`)
	emRegex        = regexp.MustCompile(`<em>(.*?)</em>`)
	linkRegex      = regexp.MustCompile(`<a href="([^"]*)">(.*?)</a>`)
	liRegex        = regexp.MustCompile(`<li>(.*?)</li>`)
	inlineCodeRe   = regexp.MustCompile(`<code>([^<]+)</code>`)
	htmlTagRegex   = regexp.MustCompile(`<[^>]+>`)
	multiNewline   = regexp.MustCompile(`\n{3,}`)
)

// MarkdownRenderer turns assistant markdown into styled terminal text.
// Markdown goes through goldmark to HTML first, then the HTML is flattened
// into ANSI with lipgloss styling and chroma-highlighted code blocks.
type MarkdownRenderer struct {
	md        goldmark.Markdown
	formatter chroma.Formatter
	style     *chroma.Style
}

func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
		goldmark.WithExtensions(extension.GFM),
	)
	return &MarkdownRenderer{
		md:        md,
		formatter: formatters.Get("terminal256"),
		style:     styles.Get("dracula"),
	}
}

// Render converts markdown to terminal output. On any conversion failure the
// raw text comes back unchanged; a chat message is never dropped.
func (r *MarkdownRenderer) Render(content string, width int) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return r.flatten(buf.String(), width)
}

func (r *MarkdownRenderer) flatten(htmlContent string, width int) string {
	result := htmlContent

	var codeBlocks []string
	result = codeBlockRegex.ReplaceAllStringFunc(result, func(m string) string {
		matches := codeBlockRegex.FindStringSubmatch(m)
		if len(matches) < 3 {
			return m
		}
		highlighted := r.highlight(decodeEntities(matches[2]), matches[1])
		codeWidth := width - 4
		if codeWidth < 20 {
			codeWidth = 20
		}
		styled := lipgloss.NewStyle().
			Background(lipgloss.Color(colorBgCard)).
			Padding(0, 1).
			Width(codeWidth).
			Render(strings.TrimRight(highlighted, "\n"))
		idx := len(codeBlocks)
		codeBlocks = append(codeBlocks, styled)
		return fmt.Sprintf("\n{{CODE_BLOCK_%d}}\n", idx)
	})

	bold := lipgloss.NewStyle().Bold(true)
	italic := lipgloss.NewStyle().Italic(true)
	heading := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent))
	code := lipgloss.NewStyle().Foreground(lipgloss.Color(colorWarning))
	link := lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color(colorPrimary))

	result = headingRegex.ReplaceAllStringFunc(result, func(m string) string {
		sub := headingRegex.FindStringSubmatch(m)
		return "\n" + heading.Render(sub[2]) + "\n"
	})
	result = strongRegex.ReplaceAllStringFunc(result, func(m string) string {
		return bold.Render(strongRegex.FindStringSubmatch(m)[1])
	})
	result = emRegex.ReplaceAllStringFunc(result, func(m string) string {
		return italic.Render(emRegex.FindStringSubmatch(m)[1])
	})
	result = inlineCodeRe.ReplaceAllStringFunc(result, func(m string) string {
		return code.Render(decodeEntities(inlineCodeRe.FindStringSubmatch(m)[1]))
	})
	result = linkRegex.ReplaceAllStringFunc(result, func(m string) string {
		sub := linkRegex.FindStringSubmatch(m)
		if sub[1] == sub[2] {
			return link.Render(sub[1])
		}
		return link.Render(sub[2]) + mutedStyle.Render(" ("+sub[1]+")")
	})
	result = liRegex.ReplaceAllString(result, "  • $1\n")

	result = strings.ReplaceAll(result, "<br />", "\n")
	result = strings.ReplaceAll(result, "</p>", "\n")
	result = htmlTagRegex.ReplaceAllString(result, "")
	result = decodeEntities(result)
	result = multiNewline.ReplaceAllString(result, "\n\n")

	for i, block := range codeBlocks {
		result = strings.Replace(result, fmt.Sprintf("{{CODE_BLOCK_%d}}", i), block, 1)
	}
	return strings.TrimSpace(result)
}

func (r *MarkdownRenderer) highlight(source, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, source)
	if err != nil {
		return source
	}
	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return source
	}
	return buf.String()
}

func decodeEntities(s string) string {
	replacer := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", `"`,
		"&#39;", "'",
	)
	return replacer.Replace(s)
}
