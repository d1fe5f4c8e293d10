package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GridTrack 是 gridX/gridY 中的一条轨道。
// Size 为 nil 时与其它未定尺寸的轨道平分剩余空间；Gutter 为 nil 时使用 gw/gh。
type GridTrack struct {
	Size   *float64
	Gutter *float64
}

// GridCell 是计算后的一列或一行，Offset 相对内容区（padding 内侧）起点。
type GridCell struct {
	Offset float64
	Size   float64
}

// End 返回单元格的结束位置。
func (c GridCell) End() float64 { return c.Offset + c.Size }

// ParseGrid 解析 "20mm 30mm/5mm auto" 形式的轨道列表，"/" 后为该轨道之后的间距。
func ParseGrid(s string) ([]GridTrack, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	tracks := make([]GridTrack, 0, len(fields))
	for _, f := range fields {
		size, gutter, hasGutter := strings.Cut(f, "/")
		var t GridTrack
		if !strings.EqualFold(size, "auto") {
			v, err := ParseLength(size)
			if err != nil {
				return nil, fmt.Errorf("%w: grid 轨道 %q", ErrStyleType, f)
			}
			t.Size = &v
		}
		if hasGutter {
			v, err := ParseLength(gutter)
			if err != nil {
				return nil, fmt.Errorf("%w: grid 间距 %q", ErrStyleType, f)
			}
			t.Gutter = &v
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

func toGrid(value any) ([]GridTrack, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []GridTrack:
		return v, nil
	case []float64:
		out := make([]GridTrack, len(v))
		for i := range v {
			out[i].Size = &v[i]
		}
		return out, nil
	case string:
		return ParseGrid(v)
	}
	return nil, fmt.Errorf("%w: grid 不接受 %T", ErrStyleType, value)
}

func (e Element) CW() float64 { return e.float(KeyCW) }
func (e Element) CH() float64 { return e.float(KeyCH) }
func (e Element) GW() float64 { return e.float(KeyGW) }
func (e Element) GH() float64 { return e.float(KeyGH) }

func (e Element) GridX() []GridTrack {
	g, _ := e.CSS(KeyGridX, nil).([]GridTrack)
	return g
}

func (e Element) GridY() []GridTrack {
	g, _ := e.CSS(KeyGridY, nil).([]GridTrack)
	return g
}

// GridColumns 返回元素内容区中的列。定义了 gridX 时按轨道计算，
// 否则按 cw + gw 重复排列，直到放不下为止；cw 为 0 时没有列。
func (e Element) GridColumns() []GridCell {
	return gridCells(e.GridX(), e.PaddedW(), e.CW(), e.GW())
}

// GridRows 与 GridColumns 相同，作用于 gridY、ch、gh 和内容区高度，
// 行从内容区的顶边开始向下排列。
func (e Element) GridRows() []GridCell {
	return gridCells(e.GridY(), e.PaddedH(), e.CH(), e.GH())
}

func gridCells(tracks []GridTrack, avail, cell, gutter float64) []GridCell {
	if len(tracks) == 0 {
		if cell <= 0 {
			return nil
		}
		var out []GridCell
		for pos := 0.0; pos+cell <= avail+1e-9; pos += cell + gutter {
			out = append(out, GridCell{Offset: pos, Size: cell})
		}
		return out
	}

	gap := func(i int) float64 {
		if tracks[i].Gutter != nil {
			return *tracks[i].Gutter
		}
		return gutter
	}
	used, auto := 0.0, 0
	for i, t := range tracks {
		if t.Size == nil {
			auto++
		} else {
			used += *t.Size
		}
		if i < len(tracks)-1 {
			used += gap(i)
		}
	}
	fill := 0.0
	if auto > 0 {
		fill = math.Max(0, (avail-used)/float64(auto))
	}

	out := make([]GridCell, 0, len(tracks))
	pos := 0.0
	for i, t := range tracks {
		size := fill
		if t.Size != nil {
			size = *t.Size
		}
		out = append(out, GridCell{Offset: pos, Size: size})
		pos += size + gap(i)
	}
	return out
}

type gridOp int

const (
	gridLeft gridOp = iota
	gridRight
	gridColSpan
	gridTop
	gridBottom
	gridRowSpan
)

var gridOpNames = map[gridOp]string{
	gridLeft:    "Left2Col",
	gridRight:   "Right2Col",
	gridColSpan: "Fit2ColSpan",
	gridTop:     "Top2Row",
	gridBottom:  "Bottom2Row",
	gridRowSpan: "Fit2RowSpan",
}

// gridRule 把元素放到父元素网格的某一列/行上。索引从 0 开始。
type gridRule struct {
	op    gridOp
	index int
	span  int
}

// Left2Col 让左边贴住第 col 列的起点。
func Left2Col(col int) Condition { return gridRule{op: gridLeft, index: col} }

// Right2Col 让右边贴住第 col 列的终点。
func Right2Col(col int) Condition { return gridRule{op: gridRight, index: col} }

// Fit2ColSpan 让元素从第 col 列起点横跨 span 列。
func Fit2ColSpan(col, span int) Condition { return gridRule{op: gridColSpan, index: col, span: span} }

// Top2Row 让顶边贴住第 row 行的起点。
func Top2Row(row int) Condition { return gridRule{op: gridTop, index: row} }

// Bottom2Row 让底边贴住第 row 行的终点。
func Bottom2Row(row int) Condition { return gridRule{op: gridBottom, index: row} }

// Fit2RowSpan 让元素从第 row 行起点纵跨 span 行。
func Fit2RowSpan(row, span int) Condition { return gridRule{op: gridRowSpan, index: row, span: span} }

func (r gridRule) Name() string {
	if r.op == gridColSpan || r.op == gridRowSpan {
		return fmt.Sprintf("%s(%d,%d)", gridOpNames[r.op], r.index, r.span)
	}
	return fmt.Sprintf("%s(%d)", gridOpNames[r.op], r.index)
}

func (r gridRule) axis() axis {
	if r.op <= gridColSpan {
		return axisX
	}
	return axisY
}

// target 返回父元素坐标系中的起止位置；索引越界时 ok 为 false。
func (r gridRule) target(e, p Element) (start, end float64, ok bool) {
	cells := p.GridColumns()
	if r.axis() == axisY {
		cells = p.GridRows()
	}
	last := r.index
	if r.op == gridColSpan || r.op == gridRowSpan {
		if r.span < 1 {
			return 0, 0, false
		}
		last = r.index + r.span - 1
	}
	if r.index < 0 || last >= len(cells) {
		return 0, 0, false
	}
	first, final := cells[r.index], cells[last]
	if r.axis() == axisX {
		return p.PL() + first.Offset, p.PL() + final.End(), true
	}
	if e.OriginTop() {
		return p.PT() + first.Offset, p.PT() + final.End(), true
	}
	top := p.H() - p.PT()
	return top - first.Offset, top - final.End(), true
}

func (r gridRule) Test(e Element, tolerance float64) bool {
	p, ok := e.Parent()
	if !ok {
		return false
	}
	start, end, ok := r.target(e, p)
	if !ok {
		return false
	}
	switch r.op {
	case gridLeft:
		return within(e.Left(), start, tolerance)
	case gridRight:
		return within(e.Right(), end, tolerance)
	case gridColSpan:
		return within(e.Left(), start, tolerance) && within(e.Right(), end, tolerance)
	case gridTop:
		return within(e.Top(), start, tolerance)
	case gridBottom:
		return within(e.Bottom(), end, tolerance)
	default:
		return within(e.Top(), start, tolerance) && within(e.Bottom(), end, tolerance)
	}
}

func (r gridRule) Solve(e Element) bool {
	p, ok := solvableParent(e, r.axis())
	if !ok {
		return false
	}
	start, end, ok := r.target(e, p)
	if !ok {
		return false
	}
	switch r.op {
	case gridLeft:
		e.SetLeft(start)
	case gridRight:
		e.SetRight(end)
	case gridColSpan:
		e.SetW(e.ClampW(end - start))
		e.SetLeft(start)
	case gridTop:
		e.SetTop(start)
	case gridBottom:
		e.SetBottom(end)
	case gridRowSpan:
		e.SetH(e.ClampH(math.Abs(end - start)))
		e.SetTop(start)
	}
	return true
}

// gridConditionByName 解析 "Left2Col(1)"、"Fit2ColSpan(0,2)" 这类带参数的名字。
func gridConditionByName(name string) (Condition, bool) {
	base, rest, ok := strings.Cut(name, "(")
	if !ok || !strings.HasSuffix(rest, ")") {
		return nil, false
	}
	var args []int
	for _, a := range strings.Split(strings.TrimSuffix(rest, ")"), ",") {
		n, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return nil, false
		}
		args = append(args, n)
	}
	base = strings.TrimSpace(base)
	for op, opName := range gridOpNames {
		if !strings.EqualFold(base, opName) {
			continue
		}
		spans := op == gridColSpan || op == gridRowSpan
		switch {
		case spans && len(args) == 2:
			return gridRule{op: op, index: args[0], span: args[1]}, true
		case !spans && len(args) == 1:
			return gridRule{op: op, index: args[0]}, true
		}
		return nil, false
	}
	return nil, false
}

// gridConditionNames 是 ConditionNames 中带参数条件的写法。
func gridConditionNames() []string {
	return []string{
		"Left2Col(col)", "Right2Col(col)", "Fit2ColSpan(col,span)",
		"Top2Row(row)", "Bottom2Row(row)", "Fit2RowSpan(row,span)",
	}
}

// SplitConditionNames 按空格和逗号拆分条件列表，括号内的逗号保留。
func SplitConditionNames(s string) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case depth == 0 && (r == ' ' || r == ',' || r == '\t' || r == '\n'):
			flush()
			continue
		case depth > 0 && r == ' ':
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return out
}
