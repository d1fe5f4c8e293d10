package layout

import (
	"fmt"
	"strings"
)

// Edge names a position along one axis of a box: its minimum side,
// its midpoint or its maximum side.
type Edge int

const (
	EdgeMin Edge = iota
	EdgeCenter
	EdgeMax
)

// Anchor is the edge a box's stored origin refers to.
type Anchor = Edge

func (e Edge) offset(size float64) float64 {
	switch e {
	case EdgeCenter:
		return size / 2
	case EdgeMax:
		return size
	default:
		return 0
	}
}

// EdgeFromOrigin returns the coordinate of edge for a box whose origin sits
// on anchor a.
func EdgeFromOrigin(edge Edge, origin, size float64, a Anchor) float64 {
	return origin - a.offset(size) + edge.offset(size)
}

// OriginFromEdge is the inverse of EdgeFromOrigin: the origin that places
// edge at value without changing size.
func OriginFromEdge(edge Edge, value, size float64, a Anchor) float64 {
	return value - edge.offset(size) + a.offset(size)
}

// TopEdge maps the top side of a box onto an axis edge. With originTop the
// y axis grows downward, so the top is the minimum.
func TopEdge(originTop bool) Edge {
	if originTop {
		return EdgeMin
	}
	return EdgeMax
}

// BottomEdge is the opposite of TopEdge.
func BottomEdge(originTop bool) Edge {
	if originTop {
		return EdgeMax
	}
	return EdgeMin
}

// XAlign selects which horizontal side the x origin refers to.
// The zero value means unset.
type XAlign int

const (
	AlignLeft XAlign = iota + 1
	AlignCenter
	AlignRight
)

func (a XAlign) Anchor() Anchor {
	switch a {
	case AlignCenter:
		return EdgeCenter
	case AlignRight:
		return EdgeMax
	default:
		return EdgeMin
	}
}

func (a XAlign) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return ""
	}
}

// YAlign selects which vertical side the y origin refers to.
type YAlign int

const (
	AlignTop YAlign = iota + 1
	AlignMiddle
	AlignBottom
)

// Anchor depends on the axis convention: TOP is the minimum only when y
// grows downward.
func (a YAlign) Anchor(originTop bool) Anchor {
	switch a {
	case AlignMiddle:
		return EdgeCenter
	case AlignBottom:
		return BottomEdge(originTop)
	default:
		return TopEdge(originTop)
	}
}

func (a YAlign) String() string {
	switch a {
	case AlignTop:
		return "top"
	case AlignMiddle:
		return "middle"
	case AlignBottom:
		return "bottom"
	default:
		return ""
	}
}

// ZAlign selects which depth side the z origin refers to.
type ZAlign int

const (
	AlignFront ZAlign = iota + 1
	AlignZMiddle
	AlignBack
)

func (a ZAlign) Anchor() Anchor {
	switch a {
	case AlignZMiddle:
		return EdgeCenter
	case AlignBack:
		return EdgeMax
	default:
		return EdgeMin
	}
}

func (a ZAlign) String() string {
	switch a {
	case AlignFront:
		return "front"
	case AlignZMiddle:
		return "middle"
	case AlignBack:
		return "back"
	default:
		return ""
	}
}

// ParseXAlign accepts left/center/right plus the start/end/middle aliases.
func ParseXAlign(s string) (XAlign, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "start":
		return AlignLeft, nil
	case "center", "middle":
		return AlignCenter, nil
	case "right", "end":
		return AlignRight, nil
	}
	return 0, fmt.Errorf("%w: align %q", ErrStyleType, s)
}

func ParseYAlign(s string) (YAlign, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return AlignTop, nil
	case "middle", "center":
		return AlignMiddle, nil
	case "bottom":
		return AlignBottom, nil
	}
	return 0, fmt.Errorf("%w: yAlign %q", ErrStyleType, s)
}

func ParseZAlign(s string) (ZAlign, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "front":
		return AlignFront, nil
	case "middle", "center":
		return AlignZMiddle, nil
	case "back":
		return AlignBack, nil
	}
	return 0, fmt.Errorf("%w: zAlign %q", ErrStyleType, s)
}
