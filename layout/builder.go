package layout

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/boxsolver/binding"
	"github.com/ByLCY/boxsolver/dsl"
)

const (
	defaultFontSizePt  = 12.0
	defaultPagePadding = 20.0
	defaultImageWidth  = 40.0
)

var defaultTextColor = Color{R: 30, G: 30, B: 30, A: 255}

// Build 根据 DSL AST 为每个 page 建立元素树，求解条件并输出带绝对坐标的页面。
// 未满足的条件只记录在 Page.Score 中并以 warn 级别输出日志，不会导致失败。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	sections := doc.Pages()
	if len(sections) == 0 {
		return nil, fmt.Errorf("文档中缺少 page 段落")
	}

	b := &builder{
		res:       res,
		data:      data,
		opts:      opts,
		logger:    logger,
		templates: doc.Templates(),
	}
	pages := make([]Page, 0, len(sections))
	for i, section := range sections {
		page, err := b.buildPage(section, i+1)
		if err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
		}
		pages = append(pages, page)
	}

	return &Result{
		Pages:     pages,
		Resources: res,
		Meta:      collectMeta(doc),
	}, nil
}

type builder struct {
	res       ResourceSet
	data      any
	opts      BuildOptions
	logger    *log.Logger
	templates map[string]*dsl.TemplateSection

	// 当前页面中文本与图片元素的附加信息
	texts  map[ElementID]*TextBox
	images map[ElementID]*ImageBox
}

type pageSpec struct {
	width, height float64
	originTop     bool
	padding       []float64
	template      string
}

func (b *builder) buildPage(section *dsl.PageSection, index int) (Page, error) {
	spec, err := resolvePageSpec(section.Spec, b.opts.OriginTop)
	if err != nil {
		return Page{}, err
	}
	if section.Block == nil {
		return Page{}, fmt.Errorf("page 段落缺少内容")
	}

	tree := NewTree()
	if err := tree.Defaults().Set(KeyOriginTop, spec.originTop); err != nil {
		return Page{}, err
	}
	page, err := tree.Add(NoElement, "page", Attrs{
		Name:    "page",
		W:       Ptr(spec.width),
		H:       Ptr(spec.height),
		Padding: spec.padding,
	})
	if err != nil {
		return Page{}, err
	}

	statements := section.Block.Statements
	if spec.template != "" {
		tpl, ok := b.templates[spec.template]
		if !ok {
			return Page{}, fmt.Errorf("模板 %s 未定义", spec.template)
		}
		statements = append(slices.Clone(tpl.Block.Statements), statements...)
	}

	b.texts = map[ElementID]*TextBox{}
	b.images = map[ElementID]*ImageBox{}
	if err := b.applyBlock(page, &dsl.Block{Statements: statements}, b.data); err != nil {
		return Page{}, err
	}

	solved := Solve(page, NewScore(b.opts.Tolerance))
	b.logger.Debug("页面求解完成", "page", index, "elements", tree.Len(), "conditions", solved.Total, "unsolvable", len(solved.Fails))
	score := Evaluate(page, NewScore(b.opts.Tolerance))
	for _, f := range score.Fails {
		b.logger.Warn("条件未满足", "page", index, "element", elementLabel(f.Element), "condition", f.Condition.Name())
	}

	pad := page.Padding()
	return Page{
		Width:     spec.width,
		Height:    spec.height,
		OriginTop: spec.originTop,
		Padding:   Margin{Top: pad[0], Right: pad[1], Bottom: pad[2], Left: pad[3]},
		Fill:      localColor(page, KeyFill),
		Frames:    b.frames(page),
		Score:     summarize(score),
	}, nil
}

// applyBlock 处理页面（或模板）级别的语句：赋值作用在 parent 上，命令创建子元素。
func (b *builder) applyBlock(parent Element, block *dsl.Block, scope any) error {
	props := map[string]string{}
	for _, as := range block.Assignments() {
		props[as.Key] = as.Value.Text()
	}
	if len(props) > 0 {
		attrs, err := b.toAttrs(parent, props, scope)
		if err != nil {
			return err
		}
		if err := attrs.applyTo(parent); err != nil {
			return err
		}
	}
	for _, cmd := range block.Commands() {
		if err := b.command(parent, cmd, scope); err != nil {
			return err
		}
	}
	return nil
}

// command 创建一个元素并递归处理其子命令。
func (b *builder) command(parent Element, cmd *dsl.Command, scope any) error {
	kind := strings.ToLower(cmd.Name)
	switch kind {
	case "each":
		return b.each(parent, cmd, scope)
	case "box", "text", "rect", "oval", "line", "image":
	default:
		// 其余命令暂未实现，忽略即可
		b.logger.Warn("忽略未知命令", "command", cmd.Name, "line", cmd.Pos.Line)
		return nil
	}

	styleName, args := parseArgs(cmd.Args, true)
	props := mergeStyleAttributes(styleName, args, b.res.Styles)
	if _, isStyle := b.res.Styles[styleName]; styleName != "" && !isStyle {
		switch {
		case kind == "text" && props["font"] == "":
			props["font"] = styleName
		case kind == "image" && props["src"] == "":
			props["src"] = styleName
		}
	}
	for _, as := range cmd.Block.Assignments() {
		props[as.Key] = as.Value.Text()
	}

	attrs, err := b.toAttrs(parent, props, scope)
	if err != nil {
		return fmt.Errorf("%s（第 %d 行）: %w", cmd.Name, cmd.Pos.Line, err)
	}
	_, hasW := attrs.Extra[KeyW]
	_, hasH := attrs.Extra[KeyH]
	if kind == "line" {
		if _, ok := attrs.Extra[KeyStroke]; !ok {
			attrs.Stroke = &Color{A: 255}
		}
	}

	e, err := parent.Tree().Add(parent.ID(), kind, attrs)
	if err != nil {
		return fmt.Errorf("%s（第 %d 行）: %w", cmd.Name, cmd.Pos.Line, err)
	}

	switch kind {
	case "text":
		content := binding.Interpolate(cmd.Block.Text(), scope)
		if content == "" {
			return fmt.Errorf("text 语句缺少文本内容（第 %d 行）", cmd.Pos.Line)
		}
		if err := b.layoutText(e, content, hasW, hasH); err != nil {
			return fmt.Errorf("text（第 %d 行）: %w", cmd.Pos.Line, err)
		}
	case "image":
		if err := b.placeImage(e, hasW, hasH); err != nil {
			return fmt.Errorf("image（第 %d 行）: %w", cmd.Pos.Line, err)
		}
	}

	for _, child := range cmd.Block.Commands() {
		if err := b.command(e, child, scope); err != nil {
			return err
		}
	}
	return nil
}

// each 对数据数组中的每一项展开子命令：each items [as item] { ... }。
// 作用域中提供 item（或 as 指定的名字）与 index。
func (b *builder) each(parent Element, cmd *dsl.Command, scope any) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("each 缺少数据路径（第 %d 行）", cmd.Pos.Line)
	}
	path := cmd.Args[0].Value
	name := "item"
	if len(cmd.Args) >= 3 && cmd.Args[1].Value == "as" {
		name = cmd.Args[2].Value
	}
	items, ok := binding.Items(scope, path)
	if !ok {
		b.logger.Warn("each 数据不存在或不是数组", "path", path, "line", cmd.Pos.Line)
		return nil
	}
	for i, item := range items {
		inner := binding.With(scope, map[string]any{name: item, "index": i})
		for _, child := range cmd.Block.Commands() {
			if err := b.command(parent, child, inner); err != nil {
				return err
			}
		}
	}
	return nil
}

var keyAliases = map[string]string{
	"width":        KeyW,
	"height":       KeyH,
	"depth":        KeyD,
	"x-align":      KeyAlign,
	"y-align":      KeyYAlign,
	"z-align":      KeyZAlign,
	"origin-top":   KeyOriginTop,
	"stroke-width": KeyStrokeWidth,
	"line-height":  "lineHeight",
	"text-align":   "textAlign",
}

// toAttrs 把 DSL 中的字符串属性转换为 Attrs。已识别的键转换为规范类型，
// 其余键（font、size、color、wrap 等）原样放入 Extra，参与级联。
func (b *builder) toAttrs(parent Element, props map[string]string, scope any) (Attrs, error) {
	a := Attrs{Extra: map[string]any{}}
	for key, raw := range props {
		v := strings.TrimSpace(binding.Interpolate(raw, scope))
		if alias, ok := keyAliases[key]; ok {
			key = alias
		}
		switch key {
		case "margin", "padding":
			vals, err := parseLengths(strings.Fields(v))
			if err != nil {
				return a, fmt.Errorf("%s: %w", key, err)
			}
			if key == "margin" {
				a.Margin = vals
			} else {
				a.Padding = vals
			}
			continue
		case "origin":
			switch strings.ToLower(v) {
			case "top":
				a.OriginTop = Ptr(true)
			case "bottom":
				a.OriginTop = Ptr(false)
			default:
				return a, fmt.Errorf("origin 只能为 top 或 bottom：%s", v)
			}
			continue
		case "scale":
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return a, fmt.Errorf("scale: %w", err)
			}
			a.Extra[KeyScaleX], a.Extra[KeyScaleY] = f, f
			continue
		}

		kind, known := knownKeys[key]
		if !known {
			a.Extra[key] = v
			continue
		}
		switch kind {
		case kindFloat:
			f, err := parseDimensionFor(key, v, parent)
			if err != nil {
				return a, fmt.Errorf("%s: %w", key, err)
			}
			a.Extra[key] = f
		case kindScale:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return a, fmt.Errorf("%s: %w", key, err)
			}
			a.Extra[key] = f
		case kindBool:
			bv, err := strconv.ParseBool(v)
			if err != nil {
				return a, fmt.Errorf("%s: %w", key, err)
			}
			a.Extra[key] = bv
		case kindConditions:
			a.Extra[key] = SplitConditionNames(v)
		case kindColor:
			c, err := resolveColor(v, b.res.Colors)
			if err != nil {
				return a, fmt.Errorf("%s: %w", key, err)
			}
			a.Extra[key] = c
		default:
			a.Extra[key] = v
		}
	}
	return a, nil
}

// parseDimensionFor 解析长度；x/w 的百分比相对父元素宽度，y/h 相对高度，d/z 相对深度。
func parseDimensionFor(key, v string, parent Element) (float64, error) {
	var ref float64
	switch key {
	case KeyX, KeyW, KeyCW, KeyGW:
		ref = parent.W()
	case KeyY, KeyH, KeyCH, KeyGH:
		ref = parent.H()
	case KeyZ, KeyD:
		ref = parent.D()
	}
	return ParseDimension(v, ref)
}

func parseLengths(tokens []string) ([]float64, error) {
	out := make([]float64, 0, len(tokens))
	for _, t := range tokens {
		f, err := ParseLength(t)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// layoutText 通过 TextMeasurer 排版文本；未显式给出 w/h 时用排版结果决定元素尺寸。
// 字体、字号、颜色等属性沿父链级联。
func (b *builder) layoutText(e Element, content string, hasW, hasH bool) error {
	fontName := cssString(e, "font")
	if fontName == "" {
		fontName = "Body"
	}
	fontRes, err := resolveFontResource(fontName, b.res)
	if err != nil {
		return err
	}

	size := Length{Value: defaultFontSizePt, Unit: UnitPT}
	if raw := cssString(e, "size"); raw != "" {
		if size, err = ParseRawLength(raw); err != nil {
			return fmt.Errorf("size: %w", err)
		}
	}
	fontSize := size.ToMM()
	lhSpec, err := ParseLineHeight(cssString(e, "lineHeight"))
	if err != nil {
		return err
	}
	lineHeight := lhSpec.Resolve(fontSize)
	wrap := normalizeWrap(cssString(e, "wrap"))

	width := e.W()
	if !hasW {
		width = math.MaxFloat64
		if p, ok := e.Parent(); ok && p.PaddedW() > 0 {
			width = p.PaddedW()
		}
	}
	lines, err := layoutLines(content, width, fontRes, fontSize, lineHeight, b.opts.Measurer, wrap)
	if err != nil {
		return err
	}

	total := 0.0
	widest := 0.0
	leading := math.Max(lineHeight-fontSize, 0)
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = fontSize
		}
		if i == 0 {
			lines[i].GapBefore = 0
		} else if lines[i].GapBefore <= 0 {
			lines[i].GapBefore = leading
		}
		total += lines[i].GapBefore + lines[i].Height
		widest = math.Max(widest, lines[i].Width)
	}
	if !hasW {
		e.SetW(widest)
	}
	if !hasH {
		e.SetH(total)
	}

	color := defaultTextColor
	if raw := cssString(e, "color"); raw != "" {
		c, err := resolveColor(raw, b.res.Colors)
		if err != nil {
			return err
		}
		if c != nil {
			color = *c
		}
	}

	tb := &TextBox{
		Content:    content,
		LineHeight: lineHeight,
		Font:       fontName,
		FontSize:   fontSize,
		Color:      color,
		Lines:      lines,
		Height:     total,
		Align:      normalizeTextAlign(cssString(e, "textAlign")),
		Wrap:       wrap,
	}
	if b.opts.Debug.RawUnits {
		tb.Debug = &TextBoxDebug{RawUnits: &RawUnits{
			FontSize:   &RawLengthJSON{Value: size.Value, Unit: size.Unit.String()},
			LineHeight: lhSpec.raw(),
		}}
	}
	b.texts[e.ID()] = tb
	return nil
}

func (b *builder) placeImage(e Element, hasW, hasH bool) error {
	src := cssString(e, "src")
	if src == "" {
		return fmt.Errorf("image 语句缺少资源或 src")
	}
	img := &ImageBox{Path: src, Fit: cssString(e, "fit"), Opacity: 1}
	var resW, resH float64
	if r, ok := b.res.Images[src]; ok {
		if r.Src != "" {
			img.Path = r.Src
		}
		resW, resH = r.Width, r.Height
	}
	if raw := cssString(e, "opacity"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("opacity: %w", err)
		}
		img.Opacity = v
	}
	if !hasW {
		w := resW
		if w <= 0 {
			w = defaultImageWidth
		}
		e.SetW(w)
	}
	if !hasH {
		h := resH
		if h <= 0 {
			h = e.W() * 0.6
		}
		e.SetH(h)
	}
	b.images[e.ID()] = img
	return nil
}

// frames 先序遍历页面元素（父元素先于子元素），再按 z 稳定排序，得到绘制顺序。
func (b *builder) frames(page Element) []Frame {
	var elems []Element
	for _, c := range page.Children() {
		c.Walk(func(e Element) bool {
			if !e.Show() {
				return false
			}
			elems = append(elems, e)
			return true
		})
	}
	slices.SortStableFunc(elems, func(a, c Element) int {
		switch za, zc := a.RootZ(), c.RootZ(); {
		case za < zc:
			return -1
		case za > zc:
			return 1
		}
		return 0
	})

	out := make([]Frame, 0, len(elems))
	for _, e := range elems {
		r := Project(e, TopDown)
		f := Frame{
			Name:        e.Name(),
			Kind:        e.Kind(),
			X:           r.X,
			Y:           r.Y,
			Z:           e.RootZ(),
			Width:       r.W,
			Height:      r.H,
			Fill:        localColor(e, KeyFill),
			Stroke:      localColor(e, KeyStroke),
			StrokeWidth: e.StrokeWidth(),
			Text:        b.texts[e.ID()],
			Image:       b.images[e.ID()],
		}
		out = append(out, f)
	}
	return out
}

// localColor 只取元素自身声明的颜色；继承来的 fill/stroke 不重复绘制。
func localColor(e Element, key string) *Color {
	v, ok := e.Style().Get(key)
	if !ok {
		return nil
	}
	c, _ := v.(*Color)
	return c
}

func cssString(e Element, key string) string {
	s, _ := e.CSS(key, "").(string)
	return strings.TrimSpace(s)
}

func elementLabel(e Element) string {
	if name := e.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("%s#%d", e.Kind(), e.ID())
}

func summarize(s *Score) ScoreSummary {
	out := ScoreSummary{Total: s.Total, Passed: s.Passed}
	for _, f := range s.Fails {
		out.Failures = append(out.Failures, f.String())
	}
	return out
}

func normalizeWrap(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "break-word", "word-break:break-word":
		return "break-word"
	case "nowrap", "no-wrap":
		return "nowrap"
	default:
		return "anywhere"
	}
}

func normalizeTextAlign(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "center", "middle":
		return "center"
	case "right", "end":
		return "right"
	default:
		return ""
	}
}

var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
	"CUSTOM": {0, 0},
}

// resolvePageSpec 解析 page 头部：尺寸预设、portrait/landscape、width/height、
// origin top|bottom、padding（1/2/3/4/6 个长度）、template 名称。
func resolvePageSpec(spec dsl.PageSpec, originTop bool) (pageSpec, error) {
	base, ok := pagePresets[strings.ToUpper(spec.Size)]
	if !ok {
		return pageSpec{}, fmt.Errorf("暂不支持的纸张尺寸：%s", spec.Size)
	}
	ps := pageSpec{width: base[0], height: base[1], originTop: originTop, padding: []float64{defaultPagePadding}}
	orientation := ""
	params := spec.Params
	next := func(i int) (string, error) {
		if i+1 >= len(params) {
			return "", fmt.Errorf("page 参数 %s 缺少取值", params[i].Value)
		}
		return params[i+1].Value, nil
	}
	for i := 0; i < len(params); i++ {
		switch strings.ToLower(params[i].Value) {
		case "portrait", "landscape":
			orientation = strings.ToLower(params[i].Value)
		case "origin":
			v, err := next(i)
			if err != nil {
				return ps, err
			}
			switch strings.ToLower(v) {
			case "top":
				ps.originTop = true
			case "bottom":
				ps.originTop = false
			default:
				return ps, fmt.Errorf("origin 只能为 top 或 bottom：%s", v)
			}
			i++
		case "width", "height":
			v, err := next(i)
			if err != nil {
				return ps, err
			}
			f, err := ParseLength(v)
			if err != nil {
				return ps, err
			}
			if strings.EqualFold(params[i].Value, "width") {
				ps.width = f
			} else {
				ps.height = f
			}
			i++
		case "template":
			v, err := next(i)
			if err != nil {
				return ps, err
			}
			ps.template = v
			i++
		case "padding", "margin":
			var vals []float64
			for i+1 < len(params) && IsLength(params[i+1].Value) {
				f, _ := ParseLength(params[i+1].Value)
				vals = append(vals, f)
				i++
			}
			if _, err := expandSides(vals); err != nil {
				return ps, fmt.Errorf("page padding: %w", err)
			}
			ps.padding = vals
		}
	}
	switch {
	case orientation == "landscape" && ps.width < ps.height,
		orientation == "portrait" && ps.width > ps.height:
		ps.width, ps.height = ps.height, ps.width
	}
	if ps.width <= 0 || ps.height <= 0 {
		return ps, fmt.Errorf("页面尺寸无效：%gx%g", ps.width, ps.height)
	}
	return ps, nil
}

func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
		Images: map[string]ImageResource{},
		Styles: map[string]Style{},
	}
	rawStyles := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil {
			continue
		}
		for _, cmd := range section.Resources.Block.Commands() {
			switch cmd.Name {
			case "font":
				font := parseFontResource(cmd)
				if font.Name != "" {
					res.Fonts[font.Name] = font
				}
			case "color":
				name, value := parseColorResource(cmd)
				if name == "" || value == "" {
					continue
				}
				c, err := ParseColor(value)
				if err != nil {
					return res, fmt.Errorf("color %s: %w", name, err)
				}
				if c != nil {
					res.Colors[name] = *c
				}
			case "image":
				image := parseImageResource(cmd)
				if image.Name != "" {
					res.Images[image.Name] = image
				}
			case "style":
				style := parseStyleResource(cmd)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			}
		}
	}

	if _, ok := res.Fonts["Body"]; !ok {
		res.Fonts["Body"] = FontResource{
			Name:      "Body",
			Src:       "builtin:lmroman10-regular",
			Family:    "Body",
			IsBuiltin: true,
		}
	}

	resolved, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolved
	return res, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{Creator: "boxsolver"}
	for _, section := range doc.Sections {
		if section.Meta == nil {
			continue
		}
		for _, as := range section.Meta.Block.Assignments() {
			switch strings.ToLower(as.Key) {
			case "title":
				meta.Title = as.Value.Text()
			case "author":
				meta.Author = as.Value.Text()
			case "subject":
				meta.Subject = as.Value.Text()
			case "creator":
				meta.Creator = as.Value.Text()
			case "keywords":
				meta.Keywords = as.Value.Strings()
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{Name: cmd.Args[0].Value, Family: cmd.Args[0].Value}
	for _, as := range cmd.Block.Assignments() {
		switch as.Key {
		case "src":
			font.Src = as.Value.Text()
			font.IsBuiltin = strings.HasPrefix(font.Src, "builtin:")
		case "style":
			font.Style = as.Value.Text()
		case "fallback":
			font.Fallback = as.Value.Text()
		}
	}
	return font
}

func parseImageResource(cmd *dsl.Command) ImageResource {
	if len(cmd.Args) == 0 {
		return ImageResource{}
	}
	image := ImageResource{Name: cmd.Args[0].Value}
	for _, as := range cmd.Block.Assignments() {
		switch as.Key {
		case "src":
			image.Src = as.Value.Text()
		case "width":
			image.Width, _ = ParseLength(as.Value.Text())
		case "height":
			image.Height, _ = ParseLength(as.Value.Text())
		}
	}
	return image
}

func parseStyleResource(cmd *dsl.Command) Style {
	if len(cmd.Args) == 0 {
		return Style{}
	}
	style := Style{Name: cmd.Args[0].Value, Props: map[string]string{}}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	for _, as := range cmd.Block.Assignments() {
		if val := as.Value.Text(); val != "" {
			style.Props[as.Key] = val
		}
	}
	return style
}

// resolveStyles 展开 extends 链，检测循环继承。
func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

// parseArgs 把命令参数解析为可选的样式名加 key value 对。
// 参数个数为奇数时第一个标识符视为样式名（或 text 的字体名、image 的资源名）。
// 单独的 "-" 与后面的数字合并，以支持 x -5mm 这样的写法。
func parseArgs(args []*dsl.Lexeme, allowStyle bool) (string, map[string]string) {
	result := map[string]string{}
	var tokens []*dsl.Lexeme
	for i := 0; i < len(args); i++ {
		if args[i].Raw == "-" && i+1 < len(args) && args[i+1].IsNumber() {
			merged := *args[i+1]
			merged.Value = "-" + merged.Value
			tokens = append(tokens, &merged)
			i++
			continue
		}
		tokens = append(tokens, args[i])
	}

	cursor := 0
	var style string
	if allowStyle && len(tokens)%2 == 1 && tokens[0].Type == "Ident" {
		style = tokens[0].Value
		cursor = 1
	}
	for ; cursor+1 < len(tokens); cursor += 2 {
		result[tokens[cursor].Value] = tokens[cursor+1].Value
	}
	return style, result
}

func mergeStyleAttributes(style string, inline map[string]string, styles map[string]Style) map[string]string {
	out := make(map[string]string)
	if s, ok := styles[style]; ok {
		for k, v := range s.Props {
			out[k] = v
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out
}

func resolveFontResource(name string, res ResourceSet) (FontResource, error) {
	if font, ok := res.Fonts[name]; ok {
		return font, nil
	}
	if font, ok := res.Fonts["Body"]; ok {
		return font, nil
	}
	return FontResource{}, fmt.Errorf("字体 %s 未定义，且没有可用的默认字体", name)
}

// layoutLines 调用 TextMeasurer；为空时按显式换行切分并估算宽度。
func layoutLines(content string, width float64, font FontResource, fontSize, lineHeight float64, m TextMeasurer, wrap string) ([]TextLine, error) {
	if m == nil {
		parts := strings.Split(content, "\n")
		out := make([]TextLine, 0, len(parts))
		for _, l := range parts {
			out = append(out, TextLine{
				Content: l,
				Width:   math.Min(estimateTextWidth(l, fontSize), width),
				Height:  fontSize,
			})
		}
		return out, nil
	}
	lines, err := m.LayoutLines(content, width, font, fontSize, lineHeight, wrap)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		lines = []TextLine{{Content: "", Width: 0, Height: fontSize}}
	}
	lines[0].GapBefore = 0
	return lines, nil
}

// estimateTextWidth 粗略估计：平均字宽约为字号的 0.55 倍。
func estimateTextWidth(line string, fontSize float64) float64 {
	return fontSize * 0.55 * float64(utf8.RuneCountInString(line))
}
