package tui

import (
	"strings"
	"testing"
)

func TestMarkdownRender_StripsHTMLTags(t *testing.T) {
	r := NewMarkdownRenderer(newNoColorTheme())
	out := r.Render("This policy covers **data retention** and `encryption`.")

	if strings.Contains(out, "<") {
		t.Fatalf("HTML leaked into terminal output: %q", out)
	}
	if !strings.Contains(out, "data retention") || !strings.Contains(out, "encryption") {
		t.Fatalf("content lost: %q", out)
	}
}

func TestMarkdownRender_Lists(t *testing.T) {
	r := NewMarkdownRenderer(newNoColorTheme())
	out := r.Render("Requirements:\n\n- consent\n- audit trail\n")

	if !strings.Contains(out, "• consent") || !strings.Contains(out, "• audit trail") {
		t.Fatalf("list items missing: %q", out)
	}
}

func TestMarkdownRender_CodeBlocks(t *testing.T) {
	r := NewMarkdownRenderer(newNoColorTheme())
	out := r.Render("Example:\n\n```json\n{\"status\": \"ok\"}\n```\n")

	if !strings.Contains(out, "status") {
		t.Fatalf("code body missing: %q", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	got := truncate("a much longer conversation title", 10)
	if len([]rune(got)) != 10 || !strings.HasSuffix(got, "…") {
		t.Fatalf("got %q", got)
	}
}
