package canvasrenderer

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// monospace 每个字符宽 1mm，便于断言折行位置。
func monospace(s string) float64 { return float64(utf8.RuneCountInString(s)) }

func contents(t *testing.T, content string, width float64, wrap string) []string {
	t.Helper()
	lines := greedyWrap(content, width, monospace, wrap)
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Width-width > 1e-9 && wrap != "nowrap" {
			t.Fatalf("行宽超过限制: %q width=%g limit=%g", l.Content, l.Width, width)
		}
		out = append(out, l.Content)
	}
	return out
}

func TestGreedyWrapModes(t *testing.T) {
	cases := []struct {
		name    string
		content string
		width   float64
		wrap    string
		want    []string
	}{
		{"anywhere breaks at spaces", "hello world again", 12, "anywhere", []string{"hello world ", "again"}},
		{"long word is split", "abcdefghij", 4, "anywhere", []string{"abcd", "efgh", "ij"}},
		{"explicit blank line", "foo\n\nbar", 100, "anywhere", []string{"foo", "", "bar"}},
		{"break-word ignores spaces", "ab cd", 2, "break-word", []string{"ab", " c", "d"}},
		{"nowrap keeps lines", "a long line\nnext", 3, "nowrap", []string{"a long line", "next"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := contents(t, c.content, c.width, c.wrap)
			if strings.Join(got, "|") != strings.Join(c.want, "|") {
				t.Fatalf("got %q, want %q", got, c.want)
			}
		})
	}
}

// 当第一行宽度与容器宽度恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	got := contents(t, "SAMPLE-A\nSAMPLE-B", monospace("SAMPLE-A"), "anywhere")
	if len(got) != 2 || got[0] != "SAMPLE-A" || got[1] != "SAMPLE-B" {
		t.Fatalf("expected 2 lines without blank, got %q", got)
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("a  bc\r\nd")
	want := []string{"a", "  ", "bc", "\n", "d"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q, want %q", got, want)
	}
}
