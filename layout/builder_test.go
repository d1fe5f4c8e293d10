package layout

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/boxsolver/dsl"
)

// stubMeasurer 是一个最小实现，仅用于测试，避免引入 renderer 造成循环依赖。
// 每个单词单独成行，字宽固定为 2mm。
type stubMeasurer struct{}

func (stubMeasurer) LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error) {
	parts := strings.Fields(content)
	if len(parts) == 0 {
		return []TextLine{{Content: "", Width: 0, Height: fontSize}}, nil
	}
	if wrap == "nowrap" {
		joined := strings.Join(parts, " ")
		return []TextLine{{Content: joined, Width: 2 * float64(utf8.RuneCountInString(joined)), Height: fontSize}}, nil
	}
	lines := make([]TextLine, 0, len(parts))
	for _, p := range parts {
		// 不设置 GapBefore（保持 0），由布局根据默认 leading 回填。
		lines = append(lines, TextLine{Content: p, Width: 2 * float64(utf8.RuneCountInString(p)), Height: fontSize})
	}
	return lines, nil
}

func buildWith(t *testing.T, dslText string, data any, opts BuildOptions) *Result {
	t.Helper()
	doc, err := dsl.ParseString(dslText)
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	if opts.Measurer == nil {
		opts.Measurer = stubMeasurer{}
	}
	res, err := Build(doc, data, opts)
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return res
}

func buildErr(t *testing.T, dslText string) error {
	t.Helper()
	doc, err := dsl.ParseString(dslText)
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	_, err = Build(doc, nil, BuildOptions{Measurer: stubMeasurer{}})
	return err
}

func frameByName(t *testing.T, p Page, name string) Frame {
	t.Helper()
	for _, f := range p.Frames {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("未找到元素 %s", name)
	return Frame{}
}

func eq(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// TestTextBoxTotalHeightInvariant 断言：TextBox.Height == Σ(line.Height + line.GapBefore)，且元素尺寸取自排版结果。
func TestTextBoxTotalHeightInvariant(t *testing.T) {
	dslText := `doc T v1 {
  resources { style Body { font: Body size: 12pt line-height: 1.2x } }
  page A4 { text Body name t { "long longer longest" } }
}`
	res := buildWith(t, dslText, nil, BuildOptions{})
	f := frameByName(t, res.Pages[0], "t")
	tb := f.Text
	if tb == nil || len(tb.Lines) != 3 {
		t.Fatalf("期望 3 行文本，实际 %+v", tb)
	}
	sum := 0.0
	for _, ln := range tb.Lines {
		sum += ln.Height + ln.GapBefore
	}
	if !eq(sum, tb.Height) {
		t.Fatalf("TextBox.Height 不等于各行之和: %g vs %g", tb.Height, sum)
	}
	if !eq(f.Height, tb.Height) || !eq(f.Width, 14) {
		t.Fatalf("文本元素尺寸应由排版决定: %gx%g", f.Width, f.Height)
	}
	if tb.Lines[0].GapBefore != 0 || !eq(tb.Lines[1].GapBefore, tb.LineHeight-tb.FontSize) {
		t.Fatalf("行间距回填错误: %+v", tb.Lines)
	}
}

// TestDebugRawUnitsOutput 检查开启 RawUnits 后保留作者书写的单位。
func TestDebugRawUnitsOutput(t *testing.T) {
	dslText := `doc T v1 { page A4 { text name t size 18pt lineHeight 24pt { "x" } } }`
	res := buildWith(t, dslText, nil, BuildOptions{Debug: DebugOptions{RawUnits: true}})
	tb := frameByName(t, res.Pages[0], "t").Text
	if tb.Debug == nil || tb.Debug.RawUnits == nil {
		t.Fatalf("缺少 debug.rawUnits")
	}
	ru := tb.Debug.RawUnits
	if ru.FontSize.Value != 18 || ru.FontSize.Unit != "pt" {
		t.Fatalf("字号原始单位错误: %+v", ru.FontSize)
	}
	if ru.LineHeight.Kind != "absolute" || ru.LineHeight.Unit != "pt" {
		t.Fatalf("行高原始单位错误: %+v", ru.LineHeight)
	}

	plain := buildWith(t, dslText, nil, BuildOptions{})
	if frameByName(t, plain.Pages[0], "t").Text.Debug != nil {
		t.Fatalf("未开启时不应输出 debug 字段")
	}
}

// TestBuildFloatsAndAlign 验证浮动元素贴靠前一个兄弟元素的右侧外边距。
func TestBuildFloatsAndAlign(t *testing.T) {
	dslText := `doc T v1 {
  page A4 origin top padding 10mm {
    rect name a w 30mm h 20mm { conditions: [Left2Left, Top2Top] }
    rect name b w 15mm h 20mm { conditions: [Top2Top, Float2Left] margin: [0, 0, 0, 5mm] }
  }
}`
	res := buildWith(t, dslText, nil, BuildOptions{})
	page := res.Pages[0]
	a := frameByName(t, page, "a")
	b := frameByName(t, page, "b")
	if !eq(a.X, 10) || !eq(a.Y, 10) {
		t.Fatalf("a 位置错误: (%g, %g)", a.X, a.Y)
	}
	if !eq(b.X, 45) || !eq(b.Y, 10) {
		t.Fatalf("b 应贴在 a 右侧并保留 5mm 外边距: (%g, %g)", b.X, b.Y)
	}
	if page.Score.Total != 4 || len(page.Score.Failures) != 0 {
		t.Fatalf("条件应全部满足: %+v", page.Score)
	}
}

// TestOriginConventionsProjectEqually 同一布局在两种坐标约定下输出相同的页面坐标。
func TestOriginConventionsProjectEqually(t *testing.T) {
	for _, origin := range []string{"top", "bottom"} {
		dslText := `doc T v1 {
  page A4 origin ` + origin + ` padding 10mm {
    rect name r w 30mm h 20mm { conditions: [Right2Right, Bottom2Bottom] }
    box name c w 50mm h 40mm {
      conditions: [Center2Center, Middle2Middle]
      rect name inner w 10mm h 10mm { conditions: [Left2LeftSide, Top2TopSide] }
    }
  }
}`
		page := buildWith(t, dslText, nil, BuildOptions{}).Pages[0]
		r := frameByName(t, page, "r")
		if !eq(r.X, 170) || !eq(r.Y, 267) {
			t.Fatalf("origin %s: r 位置错误 (%g, %g)", origin, r.X, r.Y)
		}
		inner := frameByName(t, page, "inner")
		if !eq(inner.X, 80) || !eq(inner.Y, 128.5) {
			t.Fatalf("origin %s: inner 位置错误 (%g, %g)", origin, inner.X, inner.Y)
		}
	}
}

// TestEachExpandsData 检查 each 按数据展开并对属性做插值。
func TestEachExpandsData(t *testing.T) {
	dslText := `doc T v1 {
  page A4 origin top padding 10mm {
    each swatches as s {
      rect name "sw${index}" w "${s.w}mm" h 10mm fill "${s.color}" { conditions: [Top2Top, Float2Left] }
    }
  }
}`
	data := map[string]any{
		"swatches": []any{
			map[string]any{"w": 20.0, "color": "#ff0000"},
			map[string]any{"w": 15.0, "color": "#00ff00"},
		},
	}
	page := buildWith(t, dslText, data, BuildOptions{}).Pages[0]
	if len(page.Frames) != 2 {
		t.Fatalf("期望 2 个元素，实际 %d", len(page.Frames))
	}
	second := frameByName(t, page, "sw1")
	if !eq(second.X, 30) || !eq(second.Width, 15) {
		t.Fatalf("第二个色块位置错误: %+v", second)
	}
	if second.Fill == nil || second.Fill.G != 255 || second.Fill.R != 0 {
		t.Fatalf("填充色插值错误: %+v", second.Fill)
	}
}

// TestUnsolvedConditionsReported 冲突条件不会报错，而是记录在 Score 中并输出 warn 日志。
func TestUnsolvedConditionsReported(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	dslText := `doc T v1 { page A4 { rect name a w 30mm h 20mm { conditions: [Left2Left, Right2Right] } } }`
	res := buildWith(t, dslText, nil, BuildOptions{Logger: logger})
	score := res.Pages[0].Score
	if score.Total != 2 || score.Passed != 1 {
		t.Fatalf("Score 统计错误: %+v", score)
	}
	if res.Unsolved() != 1 || score.Failures[0] != "a: Left2Left" {
		t.Fatalf("未满足条件记录错误: %v", score.Failures)
	}
	if !strings.Contains(buf.String(), "Left2Left") {
		t.Fatalf("应当输出 warn 日志，实际: %q", buf.String())
	}
}

// TestTemplateStatementsPrecedePage 模板中的元素排在页面自身元素之前。
func TestTemplateStatementsPrecedePage(t *testing.T) {
	dslText := `doc T v1 {
  template Frame { rect name border w 100% h 100% stroke #000 { conditions: [Left2LeftSide, Top2TopSide] } }
  page A5 template Frame { rect name body w 10mm h 10mm }
}`
	page := buildWith(t, dslText, nil, BuildOptions{}).Pages[0]
	if len(page.Frames) != 2 || page.Frames[0].Name != "border" {
		t.Fatalf("模板元素顺序错误: %+v", page.Frames)
	}
	border := page.Frames[0]
	if !eq(border.Width, 148) || !eq(border.Height, 210) || !eq(border.X, 0) || !eq(border.Y, 0) {
		t.Fatalf("百分比尺寸错误: %+v", border)
	}
	if err := buildErr(t, `doc T v1 { page A5 template Missing { } }`); err == nil {
		t.Fatalf("引用未定义模板应当报错")
	}
}

// TestPagePaddingVariants 覆盖 page 头部 padding 的取值个数。
func TestPagePaddingVariants(t *testing.T) {
	cases := []struct {
		header string
		want   Margin
	}{
		{"padding 5mm", Margin{5, 5, 5, 5}},
		{"padding 5mm 10mm", Margin{5, 10, 5, 10}},
		{"padding 1mm 2mm 3mm 4mm", Margin{1, 2, 3, 4}},
		{"", Margin{20, 20, 20, 20}},
	}
	for _, c := range cases {
		res := buildWith(t, `doc T v1 { page A4 `+c.header+` { } }`, nil, BuildOptions{})
		if got := res.Pages[0].Padding; got != c.want {
			t.Fatalf("%q: 期望 %+v，实际 %+v", c.header, c.want, got)
		}
	}
	err := buildErr(t, `doc T v1 { page A4 padding 1mm 2mm 3mm 4mm 5mm { } }`)
	if !errors.Is(err, ErrArity) {
		t.Fatalf("5 个取值应返回 ErrArity，实际 %v", err)
	}
}

// TestPageOrientation 检查 landscape 与自定义尺寸。
func TestPageOrientation(t *testing.T) {
	res := buildWith(t, `doc T v1 { page A4 landscape { } page custom width 100mm height 50mm { } }`, nil, BuildOptions{})
	if p := res.Pages[0]; !eq(p.Width, 297) || !eq(p.Height, 210) {
		t.Fatalf("landscape 尺寸错误: %gx%g", p.Width, p.Height)
	}
	if p := res.Pages[1]; !eq(p.Width, 100) || !eq(p.Height, 50) {
		t.Fatalf("custom 尺寸错误: %gx%g", p.Width, p.Height)
	}
	if err := buildErr(t, `doc T v1 { page B9 { } }`); err == nil {
		t.Fatalf("未知纸张尺寸应当报错")
	}
}

// TestStylesCascadeIntoElements 检查 extends 展开、命名颜色与文本属性沿父链继承。
func TestStylesCascadeIntoElements(t *testing.T) {
	dslText := `doc T v1 {
  resources {
    color Accent = #0F62FE
    style Base { fill: Accent }
    style Card extends Base { stroke: #000 stroke-width: 1mm size: 20pt }
  }
  page A4 {
    box Card name card w 100mm h 50mm {
      text name label { "hi" }
    }
  }
}`
	page := buildWith(t, dslText, nil, BuildOptions{}).Pages[0]
	card := frameByName(t, page, "card")
	if card.Fill == nil || *card.Fill != (Color{R: 15, G: 98, B: 254, A: 255}) {
		t.Fatalf("命名颜色解析错误: %+v", card.Fill)
	}
	if card.Stroke == nil || !eq(card.StrokeWidth, 1) {
		t.Fatalf("描边错误: %+v %g", card.Stroke, card.StrokeWidth)
	}
	label := frameByName(t, page, "label")
	if label.Fill != nil {
		t.Fatalf("继承来的填充色不应重复绘制")
	}
	if !eq(label.Text.FontSize, 20*PtToMm) {
		t.Fatalf("字号应继承自父元素: %g", label.Text.FontSize)
	}

	cyclic := `doc T v1 { resources { style A extends B { } style B extends A { } } page A4 { } }`
	if err := buildErr(t, cyclic); err == nil || !strings.Contains(err.Error(), "循环") {
		t.Fatalf("循环继承应当报错，实际 %v", err)
	}
}

// TestUnknownNamesAreHandled 未知命令被忽略，未知条件名返回错误。
func TestUnknownNamesAreHandled(t *testing.T) {
	page := buildWith(t, `doc T v1 { page A4 { flow { } rect w 1mm h 1mm } }`, nil, BuildOptions{}).Pages[0]
	if len(page.Frames) != 1 {
		t.Fatalf("未知命令应被忽略: %+v", page.Frames)
	}
	err := buildErr(t, `doc T v1 { page A4 { rect { conditions: [Left2Nowhere] } } }`)
	if !errors.Is(err, ErrUnknownCondition) {
		t.Fatalf("未知条件应返回 ErrUnknownCondition，实际 %v", err)
	}
}

// TestLineDefaultsToBlackStroke 线条元素默认使用黑色描边。
func TestLineDefaultsToBlackStroke(t *testing.T) {
	page := buildWith(t, `doc T v1 { page A4 { line name l w 50mm h 0mm } }`, nil, BuildOptions{}).Pages[0]
	l := frameByName(t, page, "l")
	if l.Stroke == nil || *l.Stroke != (Color{A: 255}) {
		t.Fatalf("线条默认描边错误: %+v", l.Stroke)
	}
}

func TestTextAlignAliases(t *testing.T) {
	cases := map[string]string{
		"center": "center",
		"middle": "center",
		"end":    "right",
		"RIGHT":  "right",
		"left":   "",
		"":       "",
	}
	for in, want := range cases {
		if got := normalizeTextAlign(in); got != want {
			t.Fatalf("normalizeTextAlign(%q) = %q，期望 %q", in, got, want)
		}
	}
}
