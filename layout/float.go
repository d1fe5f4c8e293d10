package layout

import "math"

// Side 是浮动方向。
type Side int

const (
	SideLeft Side = iota
	SideRight
	SideTop
	SideBottom
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// Bound 决定没有兄弟元素阻挡时的停靠位置：父元素的内边距边缘或外侧边缘。
type Bound int

const (
	BoundPadding Bound = iota
	BoundSide
)

// zEpsilon 以内的 z 差视为同一层。
const zEpsilon = 1e-9

// FloatSide 计算元素朝 side 方向浮动时可到达的外边距边缘坐标。
//
// 只考虑同一 z 层、且在垂直方向上与元素外边距范围重叠（相切不算）的兄弟元素；
// previousOnly 为 true 时只扫描排在元素之前的兄弟元素。
// 结果是这些兄弟元素朝向一侧的外边距边缘与父元素边界之间的极值。
// 没有父元素时父元素的尺寸和内边距按 0 处理。
func FloatSide(e Element, side Side, bound Bound, previousOnly bool) float64 {
	p, hasParent := e.Parent()
	ot := e.OriginTop()
	var w, h, pl, pr, pt, pb float64
	if hasParent {
		w, h = p.W(), p.H()
		pl, pr, pt, pb = p.PL(), p.PR(), p.PT(), p.PB()
	}
	if bound == BoundSide {
		pl, pr, pt, pb = 0, 0, 0, 0
	}

	// 不包含兄弟元素时的初始值，同时决定取 max 还是 min。
	var edge float64
	var useMax bool
	switch side {
	case SideLeft:
		edge, useMax = pl, true
	case SideRight:
		edge, useMax = w-pr, false
	case SideTop:
		if ot {
			edge, useMax = pt, true
		} else {
			edge, useMax = h-pt, false
		}
	case SideBottom:
		if ot {
			edge, useMax = h-pb, false
		} else {
			edge, useMax = pb, true
		}
	}
	if !hasParent {
		return edge
	}

	horizontal := side == SideLeft || side == SideRight
	selfLo, selfHi := perpendicularSpan(e, horizontal)
	for _, s := range p.Children() {
		if s.id == e.id {
			if previousOnly {
				break
			}
			continue
		}
		if math.Abs(s.Z()-e.Z()) > zEpsilon {
			continue
		}
		lo, hi := perpendicularSpan(s, horizontal)
		if !(lo < selfHi && selfLo < hi) {
			continue
		}
		var v float64
		switch side {
		case SideLeft:
			v = s.MRight()
		case SideRight:
			v = s.MLeft()
		case SideTop:
			v = s.MBottom()
		case SideBottom:
			v = s.MTop()
		}
		if useMax {
			edge = math.Max(edge, v)
		} else {
			edge = math.Min(edge, v)
		}
	}
	return edge
}

// perpendicularSpan 返回元素外边距盒在浮动方向垂直轴上的范围。
func perpendicularSpan(e Element, horizontal bool) (float64, float64) {
	if horizontal {
		a, b := e.MTop(), e.MBottom()
		return math.Min(a, b), math.Max(a, b)
	}
	return e.MLeft(), e.MRight()
}
