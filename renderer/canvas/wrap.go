package canvasrenderer

import (
	"math"
	"strings"
	"unicode"

	"github.com/ByLCY/boxsolver/layout"
)

// widthFunc 返回字符串的排版宽度（mm）。
type widthFunc func(string) float64

// lineBuilder 累积当前行，超过限制或遇到换行时输出。
type lineBuilder struct {
	lines   []layout.TextLine
	buf     strings.Builder
	current float64
}

func (b *lineBuilder) add(s string, w float64) {
	b.buf.WriteString(s)
	b.current += w
}

// emit 输出当前行；force 为 true 时空行也会输出（显式换行）。
func (b *lineBuilder) emit(force bool) {
	if b.buf.Len() == 0 {
		if force {
			b.lines = append(b.lines, layout.TextLine{})
		}
		return
	}
	b.lines = append(b.lines, layout.TextLine{Content: b.buf.String(), Width: b.current})
	b.buf.Reset()
	b.current = 0
}

// greedyWrap 按贪心策略折行：
//   - nowrap：只按显式换行切分；
//   - break-word：忽略空白，逐字符按宽度切分；
//   - anywhere（默认）：优先在空白处分割，单词过长时在词内拆分。
func greedyWrap(content string, width float64, measure widthFunc, wrap string) []layout.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	if wrap == "nowrap" {
		parts := strings.Split(content, "\n")
		lines := make([]layout.TextLine, 0, len(parts))
		for _, p := range parts {
			lines = append(lines, layout.TextLine{Content: p, Width: measure(p)})
		}
		return lines
	}

	var b lineBuilder
	place := func(s string) {
		w := measure(s)
		if b.current > 0 && b.current+w > limit {
			b.emit(false)
		}
		b.add(s, w)
		if b.current > limit {
			b.emit(false)
		}
	}

	if wrap == "break-word" {
		for _, r := range content {
			switch r {
			case '\r':
			case '\n':
				b.emit(true)
			default:
				place(string(r))
			}
		}
		b.emit(true)
		return b.lines
	}

	for _, token := range tokenize(content) {
		if token == "\n" {
			b.emit(true)
			continue
		}
		if measure(token) <= limit {
			place(token)
			continue
		}
		for _, chunk := range splitByWidth(token, limit, measure) {
			place(chunk)
		}
	}
	b.emit(true)
	return b.lines
}

// tokenize 把文本切成交替的空白与非空白片段，换行单独成为一个片段。
func tokenize(s string) []string {
	var tokens []string
	var buf strings.Builder
	lastWasSpace := false
	flush := func() {
		if buf.Len() > 0 {
			tokens = append(tokens, buf.String())
			buf.Reset()
		}
	}
	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if buf.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		buf.WriteRune(r)
	}
	flush()
	return tokens
}

func splitByWidth(token string, limit float64, measure widthFunc) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var current []rune
	for _, r := range token {
		current = append(current, r)
		if len(current) > 1 && measure(string(current)) > limit {
			parts = append(parts, string(current[:len(current)-1]))
			current = []rune{r}
		}
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return parts
}
