package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/boxsolver/fonts"
	"github.com/ByLCY/boxsolver/layout"
	"github.com/ByLCY/boxsolver/renderer"
)

// hairline 是未指定描边宽度时的线宽（mm）。
const hairline = 0.2

// Renderer draws layout results via github.com/tdewolff/canvas and measures
// text for the layout builder with the same font faces.
type Renderer struct {
	assets *renderer.Assets

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer   = (*Renderer)(nil)
	_ layout.TextMeasurer = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]renderer.Resource // accessible via builtin:<name>
	Images  map[string]renderer.Resource // accessible via builtin:<name>
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	return &Renderer{
		assets:       renderer.NewAssets(opts.BaseDir, opts.Fonts, opts.Images),
		fontFamilies: map[string]*fontFamilyEntry{},
	}
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	keywords := strings.Join(result.Meta.Keywords, ", ")
	writer.SetInfo(result.Meta.Title, result.Meta.Subject, keywords, result.Meta.Author, result.Meta.Creator)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page, result.Resources); err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// LayoutLines 实现 layout.TextMeasurer 接口，使用贪心换行算法。
// 约定：fontSize/lineHeight 入参均为毫米（mm）。渲染器内部与字体系统交互使用 pt，并在边界做 mm↔pt 换算。
func (r *Renderer) LayoutLines(content string, width float64, font layout.FontResource, fontSize, lineHeight float64, wrap string) ([]layout.TextLine, error) {
	face, err := r.fontFace(font, toPt(fontSize), layout.Color{A: 255})
	if err != nil {
		return nil, err
	}
	if wrap == "" {
		wrap = "anywhere"
	}
	lines := greedyWrap(content, width, face.TextWidth, wrap)

	textHeight := face.Metrics().LineHeight
	if textHeight <= 0 {
		textHeight = lineHeight
	}
	leading := math.Max(lineHeight-textHeight, 0)
	if len(lines) == 0 {
		lines = []layout.TextLine{{Height: textHeight}}
	}
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = textHeight
		}
		if i > 0 {
			lines[i].GapBefore = leading
		}
	}
	return lines, nil
}

// drawPage 按 Frames 的顺序绘制：父元素先于子元素，z 小的在前。
func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page, resources layout.ResourceSet) error {
	if page.Fill != nil {
		ctx.SetFillColor(colorFromLayout(*page.Fill))
		ctx.SetStrokeColor(canvas.Transparent)
		ctx.DrawPath(0, 0, canvas.Rectangle(page.Width, page.Height))
	}
	for _, f := range page.Frames {
		if err := r.drawFrame(ctx, f, resources); err != nil {
			return fmt.Errorf("%s %s: %w", f.Kind, f.Name, err)
		}
	}
	return nil
}

func (r *Renderer) drawFrame(ctx *canvas.Context, f layout.Frame, resources layout.ResourceSet) error {
	switch f.Kind {
	case "line":
		r.setPaint(ctx, nil, f.Stroke, f.StrokeWidth)
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(f.Width, f.Height)
		ctx.DrawPath(f.X, f.Y, p)
		return nil
	case "oval":
		if f.Fill == nil && f.Stroke == nil {
			return nil
		}
		r.setPaint(ctx, f.Fill, f.Stroke, f.StrokeWidth)
		ctx.DrawPath(f.X+f.Width/2, f.Y+f.Height/2, canvas.Ellipse(f.Width/2, f.Height/2))
		return nil
	}

	if f.Fill != nil || f.Stroke != nil {
		r.setPaint(ctx, f.Fill, f.Stroke, f.StrokeWidth)
		ctx.DrawPath(f.X, f.Y, canvas.Rectangle(f.Width, f.Height))
	}
	if f.Text != nil {
		fontRes := resolveFontResource(f.Text.Font, resources.Fonts)
		if err := r.drawText(ctx, f, fontRes); err != nil {
			return err
		}
	}
	if f.Image != nil {
		return r.drawImage(ctx, f)
	}
	return nil
}

func (r *Renderer) setPaint(ctx *canvas.Context, fill, stroke *layout.Color, width float64) {
	if fill != nil {
		ctx.SetFillColor(colorFromLayout(*fill))
	} else {
		ctx.SetFillColor(canvas.Transparent)
	}
	if stroke != nil {
		ctx.SetStrokeColor(colorFromLayout(*stroke))
	} else {
		ctx.SetStrokeColor(canvas.Transparent)
	}
	if width <= 0 {
		width = hairline
	}
	ctx.SetStrokeWidth(width)
}

func (r *Renderer) drawText(ctx *canvas.Context, f layout.Frame, fontRes layout.FontResource) error {
	tb := f.Text
	// TextBox 的字号/行高均为 mm；创建字体面需要 pt，这里做一次 mm→pt。
	face, err := r.fontFace(fontRes, toPt(tb.FontSize), tb.Color)
	if err != nil {
		return err
	}

	lines := tb.Lines
	if len(lines) == 0 {
		lines = []layout.TextLine{{Content: tb.Content, Width: f.Width, Height: tb.LineHeight}}
	}

	// 处理水平对齐：left（默认）/center/right。
	var textAlign canvas.TextAlign
	var anchorX float64
	switch tb.Align {
	case "center":
		textAlign = canvas.Center
		anchorX = f.X + f.Width/2
	case "right":
		textAlign = canvas.Right
		anchorX = f.X + f.Width
	default:
		textAlign = canvas.Left
		anchorX = f.X
	}

	ascent := face.Metrics().Ascent
	cursorY := f.Y
	for _, line := range lines {
		cursorY += line.GapBefore
		lineHeight := line.Height
		if lineHeight <= 0 {
			lineHeight = tb.FontSize
		}
		// 基线位置：行顶部加上字体上升部
		ctx.DrawText(anchorX, cursorY+ascent, canvas.NewTextLine(face, line.Content, textAlign))
		cursorY += lineHeight
	}
	return nil
}

func (r *Renderer) drawImage(ctx *canvas.Context, f layout.Frame) error {
	if f.Image.Path == "" {
		return nil
	}
	img, err := r.assets.Image(f.Image.Path)
	if err != nil {
		return err
	}
	width := f.Width
	if width <= 0 {
		width = float64(img.Bounds().Dx()) / 4.0
	}
	dpmm := float64(img.Bounds().Dx()) / width
	if dpmm <= 0 {
		dpmm = 1
	}
	ctx.DrawImage(f.X, f.Y, img, canvas.DPMM(dpmm))
	return nil
}

func (r *Renderer) fontFace(font layout.FontResource, size float64, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Family
	if familyName == "" {
		familyName = font.Name
	}
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	data, err := r.assets.FontBytes(font)
	if err == nil {
		err = family.LoadFont(data, 0, style)
	}
	if err != nil {
		fallback, fbErr := r.fallback(font.Fallback)
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: canvas.FontRegular}
		return fallback, canvas.FontRegular, nil
	}

	r.fontFamilies[key] = &fontFamilyEntry{family: family, style: style}
	return family, style, nil
}

// fallback 加载字体资源声明的 fallback（内置字体名），否则使用默认内置字体。
func (r *Renderer) fallback(name string) (*canvas.FontFamily, error) {
	if name == "" && r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	if name == "" {
		name = fonts.Default
	}
	data, err := fonts.Load(name)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("boxsolver-fallback-" + name)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	if name == fonts.Default {
		r.fallbackFamily = family
	}
	return family, nil
}

func resolveFontResource(name string, known map[string]layout.FontResource) layout.FontResource {
	if font, ok := known[name]; ok {
		return font
	}
	if font, ok := known["Body"]; ok {
		return font
	}
	return layout.FontResource{Name: "Body", Src: "builtin:" + fonts.Default}
}

func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	var result canvas.FontStyle
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	default:
		result = canvas.FontRegular
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, float64(c.A)/255.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
