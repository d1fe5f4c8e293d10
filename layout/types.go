package layout

// 该文件定义布局结果与资源描述，供布局计算、渲染与调试 JSON 共用。
// 所有坐标均为页面坐标（mm），原点在页面左上角，y 向下增长。

// Result 保存布局后的页面与资源信息。
type Result struct {
	Pages     []Page       `json:"pages"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// Unsolved 返回所有页面上未满足的条件总数。
func (r *Result) Unsolved() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Score.Failures)
	}
	return n
}

// ResourceSet 记录解析出的字体、颜色、图片与命名样式。
type ResourceSet struct {
	Fonts  map[string]FontResource  `json:"fonts"`
	Colors map[string]Color         `json:"colors"`
	Images map[string]ImageResource `json:"images"`
	Styles map[string]Style         `json:"styles"`
}

// FontResource 描述字体资源，src 可以是文件路径、builtin:<name> 或注入的资源名。
type FontResource struct {
	Name      string `json:"name"`
	Src       string `json:"src"`
	Style     string `json:"style"`
	Family    string `json:"family"`    // 渲染器使用的 Family 名称
	IsBuiltin bool   `json:"isBuiltin"` // 是否为内建字体
	Fallback  string `json:"fallback"`
}

// ImageResource 记录图片资源，宽高以毫米为单位。
type ImageResource struct {
	Name   string  `json:"name"`
	Src    string  `json:"src"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Color 采用 0-255 的 RGBA 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
	A int `json:"a"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Page 记录页面尺寸与求解后的全部元素，Frames 按绘制顺序排列（先父后子，z 小的在前）。
type Page struct {
	Width     float64      `json:"width"`
	Height    float64      `json:"height"`
	OriginTop bool         `json:"originTop"`
	Padding   Margin       `json:"padding"`
	Fill      *Color       `json:"fill,omitempty"`
	Frames    []Frame      `json:"frames"`
	Score     ScoreSummary `json:"score"`
}

// ScoreSummary 是 Score 的可序列化摘要。
type ScoreSummary struct {
	Total    int      `json:"total"`
	Passed   int      `json:"passed"`
	Failures []string `json:"failures,omitempty"`
}

// Frame 是一个已经求解出绝对坐标的元素。
//
// Fill 与 Stroke 只包含元素自身声明的颜色，不是级联后的计算值：
// 从父元素继承来的颜色已由父元素的 Frame 绘制，子元素不再重复绘制。
// 需要计算值时使用 Element.Fill / Element.Stroke。
type Frame struct {
	Name        string    `json:"name,omitempty"`
	Kind        string    `json:"kind"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Z           float64   `json:"z,omitempty"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Fill        *Color    `json:"fill,omitempty"`
	Stroke      *Color    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"` // mm
	Text        *TextBox  `json:"text,omitempty"`
	Image       *ImageBox `json:"image,omitempty"`
}

// TextBox 表示一个已经排好行的文本块，坐标与 Frame 一致。
type TextBox struct {
	Content    string        `json:"content"`
	LineHeight float64       `json:"lineHeight"`
	Font       string        `json:"font"`
	FontSize   float64       `json:"fontSize"`
	Color      Color         `json:"color"`
	Lines      []TextLine    `json:"lines"`
	Height     float64       `json:"height"`
	Align      string        `json:"align,omitempty"` // 文本水平对齐方式：left/center/right（默认 left）
	Wrap       string        `json:"wrap,omitempty"`  // 折行策略：anywhere(默认)/break-word/nowrap
	Debug      *TextBoxDebug `json:"debug,omitempty"`
}

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// TextBoxDebug holds optional debug info displayed only when enabled by BuildOptions.
type TextBoxDebug struct {
	RawUnits *RawUnits `json:"rawUnits,omitempty"`
}

// RawUnits describes original author-specified units for key fields.
type RawUnits struct {
	FontSize   *RawLengthJSON     `json:"fontSize,omitempty"`
	LineHeight *RawLineHeightJSON `json:"lineHeight,omitempty"`
}

// RawLengthJSON is a JSON-friendly representation of Length.
type RawLengthJSON struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// RawLineHeightJSON is a JSON-friendly representation of LineHeightSpec.
type RawLineHeightJSON struct {
	Kind   string  `json:"kind"` // "factor" | "absolute"
	Factor float64 `json:"factor,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Unit   string  `json:"unit,omitempty"`
}

// ImageBox 记录图片来源与透明度，位置与尺寸取自 Frame。
type ImageBox struct {
	Path    string  `json:"path"`
	Fit     string  `json:"fit,omitempty"`
	Opacity float64 `json:"opacity"`
}

// Style 是资源区声明的命名样式，Props 已经展开 extends。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
