package layout

import (
	"math"
	"slices"
	"strings"
)

// Condition 是一条带名字的布局规则：Test 判断是否满足，Solve 修改几何使其满足。
// Solve 返回 false 表示当前缺少必要信息（没有父元素或父元素尺寸为 0），
// 此时不会修改任何状态。
type Condition interface {
	Name() string
	Test(e Element, tolerance float64) bool
	Solve(e Element) bool
}

type axis int

const (
	axisX axis = iota
	axisY
)

// part 是元素自身被读写的位置。
type part int

const (
	partLeft part = iota
	partRight
	partCenter
	partOriginX
	partTop
	partBottom
	partMiddle
	partOriginY
	partMLeft
	partMRight
	partMTop
	partMBottom
)

func (p part) get(e Element) float64 {
	switch p {
	case partLeft:
		return e.Left()
	case partRight:
		return e.Right()
	case partCenter:
		return e.Center()
	case partOriginX:
		return e.X()
	case partTop:
		return e.Top()
	case partBottom:
		return e.Bottom()
	case partMiddle:
		return e.Middle()
	case partOriginY:
		return e.Y()
	case partMLeft:
		return e.MLeft()
	case partMRight:
		return e.MRight()
	case partMTop:
		return e.MTop()
	case partMBottom:
		return e.MBottom()
	}
	return 0
}

func (p part) set(e Element, v float64) {
	switch p {
	case partLeft:
		e.SetLeft(v)
	case partRight:
		e.SetRight(v)
	case partCenter:
		e.SetCenter(v)
	case partOriginX:
		e.SetX(v)
	case partTop:
		e.SetTop(v)
	case partBottom:
		e.SetBottom(v)
	case partMiddle:
		e.SetMiddle(v)
	case partOriginY:
		e.SetY(v)
	case partMLeft:
		e.SetMLeft(v)
	case partMRight:
		e.SetMRight(v)
	case partMTop:
		e.SetMTop(v)
	case partMBottom:
		e.SetMBottom(v)
	}
}

// anchor 是父元素上的目标位置，坐标在子元素的坐标系中（以父元素最小角为原点）。
type anchor int

const (
	anchorLeft anchor = iota
	anchorLeftSide
	anchorRight
	anchorRightSide
	anchorCenter
	anchorCenterSides
	anchorTop
	anchorTopSide
	anchorBottom
	anchorBottomSide
	anchorMiddle
	anchorMiddleSides
)

func (a anchor) axis() axis {
	if a <= anchorCenterSides {
		return axisX
	}
	return axisY
}

func (a anchor) value(p Element, originTop bool) float64 {
	w, h := p.W(), p.H()
	switch a {
	case anchorLeft:
		return p.PL()
	case anchorLeftSide:
		return 0
	case anchorRight:
		return w - p.PR()
	case anchorRightSide:
		return w
	case anchorCenter:
		return p.PL() + p.PaddedW()/2
	case anchorCenterSides:
		return w / 2
	case anchorTop:
		if originTop {
			return p.PT()
		}
		return h - p.PT()
	case anchorTopSide:
		if originTop {
			return 0
		}
		return h
	case anchorBottom:
		if originTop {
			return h - p.PB()
		}
		return p.PB()
	case anchorBottomSide:
		if originTop {
			return h
		}
		return 0
	case anchorMiddle:
		if originTop {
			return p.PT() + p.PaddedH()/2
		}
		return p.PB() + p.PaddedH()/2
	case anchorMiddleSides:
		return h / 2
	}
	return 0
}

// solvableParent 检查前置条件：存在父元素且父元素在该轴上的尺寸不为 0。
func solvableParent(e Element, ax axis) (Element, bool) {
	p, ok := e.Parent()
	if !ok {
		return Element{}, false
	}
	if (ax == axisX && p.W() == 0) || (ax == axisY && p.H() == 0) {
		return Element{}, false
	}
	return p, true
}

func within(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// alignRule 把元素的某个位置对齐到父元素的某个位置。
type alignRule struct {
	name   string
	part   part
	target anchor
}

func (r alignRule) Name() string { return r.name }

func (r alignRule) Test(e Element, tolerance float64) bool {
	p, ok := e.Parent()
	if !ok {
		return false
	}
	return within(r.part.get(e), r.target.value(p, e.OriginTop()), tolerance)
}

func (r alignRule) Solve(e Element) bool {
	p, ok := solvableParent(e, r.target.axis())
	if !ok {
		return false
	}
	r.part.set(e, r.target.value(p, e.OriginTop()))
	return true
}

// floatRule 把元素的外边距边缘推到 FloatSide 给出的位置。
type floatRule struct {
	name  string
	side  Side
	bound Bound
}

func (r floatRule) Name() string { return r.name }

func (r floatRule) part() part {
	switch r.side {
	case SideLeft:
		return partMLeft
	case SideRight:
		return partMRight
	case SideTop:
		return partMTop
	default:
		return partMBottom
	}
}

func (r floatRule) axis() axis {
	if r.side == SideLeft || r.side == SideRight {
		return axisX
	}
	return axisY
}

func (r floatRule) Test(e Element, tolerance float64) bool {
	if _, ok := e.Parent(); !ok {
		return false
	}
	return within(r.part().get(e), FloatSide(e, r.side, r.bound, true), tolerance)
}

func (r floatRule) Solve(e Element) bool {
	if _, ok := solvableParent(e, r.axis()); !ok {
		return false
	}
	r.part().set(e, FloatSide(e, r.side, r.bound, true))
	return true
}

// fitRule 移动一条边到父元素边界，保持对边不动，改变尺寸并遵守 min/max。
type fitRule struct {
	name   string
	side   Side
	target anchor
}

func (r fitRule) Name() string { return r.name }

func (r fitRule) edge() part {
	switch r.side {
	case SideLeft:
		return partLeft
	case SideRight:
		return partRight
	case SideTop:
		return partTop
	default:
		return partBottom
	}
}

func (r fitRule) Test(e Element, tolerance float64) bool {
	p, ok := e.Parent()
	if !ok {
		return false
	}
	return within(r.edge().get(e), r.target.value(p, e.OriginTop()), tolerance)
}

func (r fitRule) Solve(e Element) bool {
	p, ok := solvableParent(e, r.target.axis())
	if !ok {
		return false
	}
	t := r.target.value(p, e.OriginTop())
	switch r.side {
	case SideLeft:
		right := e.Right()
		e.SetW(e.ClampW(right - t))
		e.SetRight(right)
	case SideRight:
		left := e.Left()
		e.SetW(e.ClampW(t - left))
		e.SetLeft(left)
	case SideTop:
		bottom := e.Bottom()
		h := bottom - t
		if !e.OriginTop() {
			h = t - bottom
		}
		e.SetH(e.ClampH(h))
		e.SetBottom(bottom)
	case SideBottom:
		top := e.Top()
		h := t - top
		if !e.OriginTop() {
			h = top - t
		}
		e.SetH(e.ClampH(h))
		e.SetTop(top)
	}
	return true
}

// tolerant 为单条条件指定独立的容差。
type tolerant struct {
	Condition
	tolerance float64
}

// Tolerant 包装 c，使其 Test 忽略调用方给出的容差而使用 tolerance。
func Tolerant(c Condition, tolerance float64) Condition {
	return tolerant{Condition: c, tolerance: tolerance}
}

func (t tolerant) Test(e Element, _ float64) bool {
	return t.Condition.Test(e, t.tolerance)
}

// 对齐规则
var (
	Left2Left         Condition = alignRule{"Left2Left", partLeft, anchorLeft}
	Left2LeftSide     Condition = alignRule{"Left2LeftSide", partLeft, anchorLeftSide}
	Left2Right        Condition = alignRule{"Left2Right", partLeft, anchorRight}
	Left2Center       Condition = alignRule{"Left2Center", partLeft, anchorCenter}
	Left2CenterSides  Condition = alignRule{"Left2CenterSides", partLeft, anchorCenterSides}
	Right2Right       Condition = alignRule{"Right2Right", partRight, anchorRight}
	Right2RightSide   Condition = alignRule{"Right2RightSide", partRight, anchorRightSide}
	Right2Left        Condition = alignRule{"Right2Left", partRight, anchorLeft}
	Right2Center      Condition = alignRule{"Right2Center", partRight, anchorCenter}
	Right2CenterSides Condition = alignRule{"Right2CenterSides", partRight, anchorCenterSides}

	Center2Center      Condition = alignRule{"Center2Center", partCenter, anchorCenter}
	Center2CenterSides Condition = alignRule{"Center2CenterSides", partCenter, anchorCenterSides}
	Center2Left        Condition = alignRule{"Center2Left", partCenter, anchorLeft}
	Center2LeftSide    Condition = alignRule{"Center2LeftSide", partCenter, anchorLeftSide}
	Center2Right       Condition = alignRule{"Center2Right", partCenter, anchorRight}
	Center2RightSide   Condition = alignRule{"Center2RightSide", partCenter, anchorRightSide}

	Origin2Left        Condition = alignRule{"Origin2Left", partOriginX, anchorLeft}
	Origin2LeftSide    Condition = alignRule{"Origin2LeftSide", partOriginX, anchorLeftSide}
	Origin2Right       Condition = alignRule{"Origin2Right", partOriginX, anchorRight}
	Origin2RightSide   Condition = alignRule{"Origin2RightSide", partOriginX, anchorRightSide}
	Origin2Center      Condition = alignRule{"Origin2Center", partOriginX, anchorCenter}
	Origin2CenterSides Condition = alignRule{"Origin2CenterSides", partOriginX, anchorCenterSides}

	Top2Top            Condition = alignRule{"Top2Top", partTop, anchorTop}
	Top2TopSide        Condition = alignRule{"Top2TopSide", partTop, anchorTopSide}
	Top2Bottom         Condition = alignRule{"Top2Bottom", partTop, anchorBottom}
	Top2Middle         Condition = alignRule{"Top2Middle", partTop, anchorMiddle}
	Top2MiddleSides    Condition = alignRule{"Top2MiddleSides", partTop, anchorMiddleSides}
	Bottom2Bottom      Condition = alignRule{"Bottom2Bottom", partBottom, anchorBottom}
	Bottom2BottomSide  Condition = alignRule{"Bottom2BottomSide", partBottom, anchorBottomSide}
	Bottom2Top         Condition = alignRule{"Bottom2Top", partBottom, anchorTop}
	Bottom2Middle      Condition = alignRule{"Bottom2Middle", partBottom, anchorMiddle}
	Bottom2MiddleSides Condition = alignRule{"Bottom2MiddleSides", partBottom, anchorMiddleSides}

	Middle2Middle      Condition = alignRule{"Middle2Middle", partMiddle, anchorMiddle}
	Middle2MiddleSides Condition = alignRule{"Middle2MiddleSides", partMiddle, anchorMiddleSides}
	Middle2Top         Condition = alignRule{"Middle2Top", partMiddle, anchorTop}
	Middle2TopSide     Condition = alignRule{"Middle2TopSide", partMiddle, anchorTopSide}
	Middle2Bottom      Condition = alignRule{"Middle2Bottom", partMiddle, anchorBottom}
	Middle2BottomSide  Condition = alignRule{"Middle2BottomSide", partMiddle, anchorBottomSide}

	Origin2Top         Condition = alignRule{"Origin2Top", partOriginY, anchorTop}
	Origin2TopSide     Condition = alignRule{"Origin2TopSide", partOriginY, anchorTopSide}
	Origin2Bottom      Condition = alignRule{"Origin2Bottom", partOriginY, anchorBottom}
	Origin2BottomSide  Condition = alignRule{"Origin2BottomSide", partOriginY, anchorBottomSide}
	Origin2Middle      Condition = alignRule{"Origin2Middle", partOriginY, anchorMiddle}
	Origin2MiddleSides Condition = alignRule{"Origin2MiddleSides", partOriginY, anchorMiddleSides}
)

// 浮动规则：按插入顺序依次贴靠前面的兄弟元素。
var (
	Float2Left       Condition = floatRule{"Float2Left", SideLeft, BoundPadding}
	Float2LeftSide   Condition = floatRule{"Float2LeftSide", SideLeft, BoundSide}
	Float2Right      Condition = floatRule{"Float2Right", SideRight, BoundPadding}
	Float2RightSide  Condition = floatRule{"Float2RightSide", SideRight, BoundSide}
	Float2Top        Condition = floatRule{"Float2Top", SideTop, BoundPadding}
	Float2TopSide    Condition = floatRule{"Float2TopSide", SideTop, BoundSide}
	Float2Bottom     Condition = floatRule{"Float2Bottom", SideBottom, BoundPadding}
	Float2BottomSide Condition = floatRule{"Float2BottomSide", SideBottom, BoundSide}
)

// 填充规则：改变尺寸直到贴住父元素边界。
var (
	Fit2Left       Condition = fitRule{"Fit2Left", SideLeft, anchorLeft}
	Fit2LeftSide   Condition = fitRule{"Fit2LeftSide", SideLeft, anchorLeftSide}
	Fit2Right      Condition = fitRule{"Fit2Right", SideRight, anchorRight}
	Fit2RightSide  Condition = fitRule{"Fit2RightSide", SideRight, anchorRightSide}
	Fit2Top        Condition = fitRule{"Fit2Top", SideTop, anchorTop}
	Fit2TopSide    Condition = fitRule{"Fit2TopSide", SideTop, anchorTopSide}
	Fit2Bottom     Condition = fitRule{"Fit2Bottom", SideBottom, anchorBottom}
	Fit2BottomSide Condition = fitRule{"Fit2BottomSide", SideBottom, anchorBottomSide}
)

var registry = func() map[string]Condition {
	all := []Condition{
		Left2Left, Left2LeftSide, Left2Right, Left2Center, Left2CenterSides,
		Right2Right, Right2RightSide, Right2Left, Right2Center, Right2CenterSides,
		Center2Center, Center2CenterSides, Center2Left, Center2LeftSide, Center2Right, Center2RightSide,
		Origin2Left, Origin2LeftSide, Origin2Right, Origin2RightSide, Origin2Center, Origin2CenterSides,
		Top2Top, Top2TopSide, Top2Bottom, Top2Middle, Top2MiddleSides,
		Bottom2Bottom, Bottom2BottomSide, Bottom2Top, Bottom2Middle, Bottom2MiddleSides,
		Middle2Middle, Middle2MiddleSides, Middle2Top, Middle2TopSide, Middle2Bottom, Middle2BottomSide,
		Origin2Top, Origin2TopSide, Origin2Bottom, Origin2BottomSide, Origin2Middle, Origin2MiddleSides,
		Float2Left, Float2LeftSide, Float2Right, Float2RightSide,
		Float2Top, Float2TopSide, Float2Bottom, Float2BottomSide,
		Fit2Left, Fit2LeftSide, Fit2Right, Fit2RightSide,
		Fit2Top, Fit2TopSide, Fit2Bottom, Fit2BottomSide,
	}
	m := make(map[string]Condition, len(all))
	for _, c := range all {
		m[strings.ToLower(c.Name())] = c
	}
	return m
}()

// ConditionByName 按名字查找内置条件，不区分大小写。
// 网格条件带参数，例如 Left2Col(1)、Fit2ColSpan(0,2)。
func ConditionByName(name string) (Condition, bool) {
	name = strings.TrimSpace(name)
	if c, ok := registry[strings.ToLower(name)]; ok {
		return c, true
	}
	return gridConditionByName(name)
}

// ConditionNames 返回全部内置条件名，按字母排序。
func ConditionNames() []string {
	out := make([]string, 0, len(registry)+6)
	for _, c := range registry {
		out = append(out, c.Name())
	}
	out = append(out, gridConditionNames()...)
	slices.Sort(out)
	return out
}
