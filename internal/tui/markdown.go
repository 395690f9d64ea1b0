package tui

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	codeBlockRegex = regexp.MustCompile(`(?s)<pre><code(?: class="language-([a-zA-Z0-9]+)")?>(.*?)</code></pre>`)
	headingRegex   = regexp.MustCompile(`<h[1-6][^>]*>(.*?)</h[1-6]>`)
	strongRegex    = regexp.MustCompile(`<strong>(.*?)</strong>`)
	emRegex        = regexp.MustCompile(`<em>(.*?)</em>`)
	liRegex        = regexp.MustCompile(`<li>(.*?)</li>`)
	inlineCodeRe   = regexp.MustCompile(`<code>([^<]+)</code>`)
	htmlTagRegex   = regexp.MustCompile(`<[^>]+>`)
	multiNewline   = regexp.MustCompile(`\n{3,}`)
)

// MarkdownRenderer converts answer markdown into styled terminal text, with
// chroma highlighting for fenced code blocks.
type MarkdownRenderer struct {
	md        goldmark.Markdown
	formatter chroma.Formatter
	style     *chroma.Style

	heading lipgloss.Style
	bold    lipgloss.Style
	italic  lipgloss.Style
	code    lipgloss.Style
}

func NewMarkdownRenderer(theme Theme) *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithRendererOptions(html.WithHardWraps()),
		goldmark.WithExtensions(extension.GFM),
	)
	return &MarkdownRenderer{
		md:        md,
		formatter: formatters.Get("terminal256"),
		style:     styles.Get("monokai"),
		heading:   lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		bold:      lipgloss.NewStyle().Bold(true).Foreground(theme.TextPrimary),
		italic:    lipgloss.NewStyle().Italic(true).Foreground(theme.TextMuted),
		code:      lipgloss.NewStyle().Foreground(theme.Warn),
	}
}

// Render converts markdown content to terminal text. On any conversion failure
// the raw content is returned unchanged.
func (r *MarkdownRenderer) Render(content string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return r.formatForTerminal(buf.String())
}

func (r *MarkdownRenderer) formatForTerminal(htmlContent string) string {
	result := htmlContent

	result = codeBlockRegex.ReplaceAllStringFunc(result, func(m string) string {
		matches := codeBlockRegex.FindStringSubmatch(m)
		if len(matches) < 3 {
			return m
		}
		return "\n" + r.highlight(decodeHTMLEntities(matches[2]), matches[1]) + "\n"
	})
	result = inlineCodeRe.ReplaceAllStringFunc(result, func(m string) string {
		matches := inlineCodeRe.FindStringSubmatch(m)
		if len(matches) < 2 {
			return m
		}
		return r.code.Render(decodeHTMLEntities(matches[1]))
	})
	result = headingRegex.ReplaceAllStringFunc(result, func(m string) string {
		matches := headingRegex.FindStringSubmatch(m)
		if len(matches) < 2 {
			return m
		}
		return r.heading.Render(matches[1]) + "\n"
	})
	result = strongRegex.ReplaceAllStringFunc(result, func(m string) string {
		return r.bold.Render(strongRegex.FindStringSubmatch(m)[1])
	})
	result = emRegex.ReplaceAllStringFunc(result, func(m string) string {
		return r.italic.Render(emRegex.FindStringSubmatch(m)[1])
	})
	result = liRegex.ReplaceAllStringFunc(result, func(m string) string {
		return "  • " + liRegex.FindStringSubmatch(m)[1] + "\n"
	})

	result = htmlTagRegex.ReplaceAllString(result, "")
	result = decodeHTMLEntities(result)
	result = multiNewline.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

func (r *MarkdownRenderer) highlight(code, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

func decodeHTMLEntities(s string) string {
	replacer := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", `"`,
		"&#39;", "'",
	)
	return replacer.Replace(s)
}
