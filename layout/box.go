package layout

import (
	"fmt"
	"math"
)

// Point is a 3D origin.
type Point struct {
	X, Y, Z float64
}

// Rect is an axis-aligned rectangle given by its minimum corner and size.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (e Element) X() float64 { return e.float(KeyX) }
func (e Element) Y() float64 { return e.float(KeyY) }
func (e Element) Z() float64 { return e.float(KeyZ) }
func (e Element) SetX(v float64) { e.put(KeyX, v) }
func (e Element) SetY(v float64) { e.put(KeyY, v) }
func (e Element) SetZ(v float64) { e.put(KeyZ, v) }

func (e Element) Point() Point { return Point{e.X(), e.Y(), e.Z()} }

func (e Element) SetPoint(p Point) {
	e.SetX(p.X)
	e.SetY(p.Y)
	e.SetZ(p.Z)
}

func (e Element) W() float64 { return e.float(KeyW) }
func (e Element) H() float64 { return e.float(KeyH) }
func (e Element) D() float64 { return e.float(KeyD) }
func (e Element) SetW(v float64) { e.put(KeyW, v) }
func (e Element) SetH(v float64) { e.put(KeyH, v) }
func (e Element) SetD(v float64) { e.put(KeyD, v) }

func (e Element) Size() (w, h, d float64) { return e.W(), e.H(), e.D() }

func (e Element) SetSize(w, h, d float64) {
	e.SetW(w)
	e.SetH(h)
	e.SetD(d)
}

// OriginTop reports whether y grows downward from the parent's top.
func (e Element) OriginTop() bool {
	b, _ := e.CSS(KeyOriginTop, false).(bool)
	return b
}

func (e Element) XAlign() XAlign {
	if a, ok := e.CSS(KeyAlign, AlignLeft).(XAlign); ok && a != 0 {
		return a
	}
	return AlignLeft
}

func (e Element) YAlign() YAlign {
	if a, ok := e.CSS(KeyYAlign, AlignTop).(YAlign); ok && a != 0 {
		return a
	}
	return AlignTop
}

func (e Element) ZAlign() ZAlign {
	if a, ok := e.CSS(KeyZAlign, AlignFront).(ZAlign); ok && a != 0 {
		return a
	}
	return AlignFront
}

func (e Element) SetXAlign(a XAlign) { e.n().style.put(KeyAlign, a) }
func (e Element) SetYAlign(a YAlign) { e.n().style.put(KeyYAlign, a) }
func (e Element) SetZAlign(a ZAlign) { e.n().style.put(KeyZAlign, a) }

func (e Element) xAnchor() Anchor { return e.XAlign().Anchor() }
func (e Element) yAnchor() Anchor { return e.YAlign().Anchor(e.OriginTop()) }
func (e Element) zAnchor() Anchor { return e.ZAlign().Anchor() }

// Horizontal edges. Setters solve for x and leave w untouched.

func (e Element) Left() float64 { return EdgeFromOrigin(EdgeMin, e.X(), e.W(), e.xAnchor()) }
func (e Element) Right() float64 { return EdgeFromOrigin(EdgeMax, e.X(), e.W(), e.xAnchor()) }
func (e Element) Center() float64 { return EdgeFromOrigin(EdgeCenter, e.X(), e.W(), e.xAnchor()) }

func (e Element) SetLeft(v float64) { e.SetX(OriginFromEdge(EdgeMin, v, e.W(), e.xAnchor())) }
func (e Element) SetRight(v float64) { e.SetX(OriginFromEdge(EdgeMax, v, e.W(), e.xAnchor())) }
func (e Element) SetCenter(v float64) { e.SetX(OriginFromEdge(EdgeCenter, v, e.W(), e.xAnchor())) }

// Vertical edges follow the originTop convention.

func (e Element) Top() float64 {
	return EdgeFromOrigin(TopEdge(e.OriginTop()), e.Y(), e.H(), e.yAnchor())
}

func (e Element) Bottom() float64 {
	return EdgeFromOrigin(BottomEdge(e.OriginTop()), e.Y(), e.H(), e.yAnchor())
}

func (e Element) Middle() float64 { return EdgeFromOrigin(EdgeCenter, e.Y(), e.H(), e.yAnchor()) }

func (e Element) SetTop(v float64) {
	e.SetY(OriginFromEdge(TopEdge(e.OriginTop()), v, e.H(), e.yAnchor()))
}

func (e Element) SetBottom(v float64) {
	e.SetY(OriginFromEdge(BottomEdge(e.OriginTop()), v, e.H(), e.yAnchor()))
}

func (e Element) SetMiddle(v float64) { e.SetY(OriginFromEdge(EdgeCenter, v, e.H(), e.yAnchor())) }

func (e Element) Front() float64 { return EdgeFromOrigin(EdgeMin, e.Z(), e.D(), e.zAnchor()) }
func (e Element) Back() float64 { return EdgeFromOrigin(EdgeMax, e.Z(), e.D(), e.zAnchor()) }
func (e Element) SetFront(v float64) { e.SetZ(OriginFromEdge(EdgeMin, v, e.D(), e.zAnchor())) }
func (e Element) SetBack(v float64) { e.SetZ(OriginFromEdge(EdgeMax, v, e.D(), e.zAnchor())) }

// Margin and padding, CSS order plus front/back.

func (e Element) MT() float64 { return e.float(KeyMT) }
func (e Element) MR() float64 { return e.float(KeyMR) }
func (e Element) MB() float64 { return e.float(KeyMB) }
func (e Element) ML() float64 { return e.float(KeyML) }
func (e Element) MZF() float64 { return e.float(KeyMZF) }
func (e Element) MZB() float64 { return e.float(KeyMZB) }
func (e Element) PT() float64 { return e.float(KeyPT) }
func (e Element) PR() float64 { return e.float(KeyPR) }
func (e Element) PB() float64 { return e.float(KeyPB) }
func (e Element) PL() float64 { return e.float(KeyPL) }
func (e Element) PZF() float64 { return e.float(KeyPZF) }
func (e Element) PZB() float64 { return e.float(KeyPZB) }

// Margin returns (mt, mr, mb, ml, mzf, mzb).
func (e Element) Margin() [6]float64 {
	return [6]float64{e.MT(), e.MR(), e.MB(), e.ML(), e.MZF(), e.MZB()}
}

// Padding returns (pt, pr, pb, pl, pzf, pzb).
func (e Element) Padding() [6]float64 {
	return [6]float64{e.PT(), e.PR(), e.PB(), e.PL(), e.PZF(), e.PZB()}
}

// SetMargin accepts 1, 2, 3, 4 or 6 values:
//
//	1: all sides
//	2: (t, r) repeated for bottom/left and front/back
//	3: (t, r, b) repeated as (l, front, back)
//	4: t, r, b, l with zero depth margins
//	6: t, r, b, l, front, back
func (e Element) SetMargin(vals ...float64) error {
	sides, err := expandSides(vals)
	if err != nil {
		return err
	}
	for i, k := range []string{KeyMT, KeyMR, KeyMB, KeyML, KeyMZF, KeyMZB} {
		e.put(k, sides[i])
	}
	return nil
}

// SetPadding uses the same arity rules as SetMargin.
func (e Element) SetPadding(vals ...float64) error {
	sides, err := expandSides(vals)
	if err != nil {
		return err
	}
	for i, k := range []string{KeyPT, KeyPR, KeyPB, KeyPL, KeyPZF, KeyPZB} {
		e.put(k, sides[i])
	}
	return nil
}

func expandSides(v []float64) ([6]float64, error) {
	switch len(v) {
	case 1:
		return [6]float64{v[0], v[0], v[0], v[0], v[0], v[0]}, nil
	case 2:
		return [6]float64{v[0], v[1], v[0], v[1], v[0], v[1]}, nil
	case 3:
		return [6]float64{v[0], v[1], v[2], v[0], v[1], v[2]}, nil
	case 4:
		return [6]float64{v[0], v[1], v[2], v[3], 0, 0}, nil
	case 6:
		return [6]float64{v[0], v[1], v[2], v[3], v[4], v[5]}, nil
	}
	return [6]float64{}, fmt.Errorf("%w: got %d", ErrArity, len(v))
}

// Margin edges sit outside the box.

func (e Element) MLeft() float64 { return e.Left() - e.ML() }
func (e Element) MRight() float64 { return e.Right() + e.MR() }
func (e Element) MFront() float64 { return e.Front() - e.MZF() }
func (e Element) MBack() float64 { return e.Back() + e.MZB() }

func (e Element) MTop() float64 {
	if e.OriginTop() {
		return e.Top() - e.MT()
	}
	return e.Top() + e.MT()
}

func (e Element) MBottom() float64 {
	if e.OriginTop() {
		return e.Bottom() + e.MB()
	}
	return e.Bottom() - e.MB()
}

func (e Element) SetMLeft(v float64) { e.SetLeft(v + e.ML()) }
func (e Element) SetMRight(v float64) { e.SetRight(v - e.MR()) }
func (e Element) SetMFront(v float64) { e.SetFront(v + e.MZF()) }
func (e Element) SetMBack(v float64) { e.SetBack(v - e.MZB()) }

func (e Element) SetMTop(v float64) {
	if e.OriginTop() {
		e.SetTop(v + e.MT())
		return
	}
	e.SetTop(v - e.MT())
}

func (e Element) SetMBottom(v float64) {
	if e.OriginTop() {
		e.SetBottom(v - e.MB())
		return
	}
	e.SetBottom(v + e.MB())
}

// Min/max bounds are advisory: writes are not clamped, only Fit rules
// consult them.

func (e Element) MinW() float64 { return e.float(KeyMinW) }
func (e Element) MinH() float64 { return e.float(KeyMinH) }
func (e Element) MinD() float64 { return e.float(KeyMinD) }
func (e Element) MaxW() float64 { return e.float(KeyMaxW) }
func (e Element) MaxH() float64 { return e.float(KeyMaxH) }
func (e Element) MaxD() float64 { return e.float(KeyMaxD) }

func (e Element) ClampW(v float64) float64 { return clamp(v, e.MinW(), e.MaxW()) }
func (e Element) ClampH(v float64) float64 { return clamp(v, e.MinH(), e.MaxH()) }
func (e Element) ClampD(v float64) float64 { return clamp(v, e.MinD(), e.MaxD()) }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func (e Element) ScaleX() float64 { return e.float(KeyScaleX) }
func (e Element) ScaleY() float64 { return e.float(KeyScaleY) }
func (e Element) ScaleZ() float64 { return e.float(KeyScaleZ) }

func (e Element) SetScaleX(v float64) error { return e.Set(KeyScaleX, v) }
func (e Element) SetScaleY(v float64) error { return e.Set(KeyScaleY, v) }
func (e Element) SetScaleZ(v float64) error { return e.Set(KeyScaleZ, v) }

func (e Element) PaddedW() float64 { return e.W() - e.PL() - e.PR() }
func (e Element) PaddedH() float64 { return e.H() - e.PT() - e.PB() }
func (e Element) PaddedD() float64 { return e.D() - e.PZF() - e.PZB() }

// Box is the element rectangle in its parent's space.
func (e Element) Box() Rect {
	return Rect{X: e.Left(), Y: math.Min(e.Top(), e.Bottom()), W: e.W(), H: e.H()}
}

// PaddedBox is the content area. Its y offset uses pt with originTop and pb
// otherwise, since that is the side at the minimum of the axis.
func (e Element) PaddedBox() Rect {
	b := e.Box()
	dy := e.PB()
	if e.OriginTop() {
		dy = e.PT()
	}
	return Rect{X: b.X + e.PL(), Y: b.Y + dy, W: e.PaddedW(), H: e.PaddedH()}
}

// MarginBox expands the box by its margins.
func (e Element) MarginBox() Rect {
	return Rect{
		X: e.MLeft(),
		Y: math.Min(e.MTop(), e.MBottom()),
		W: e.W() + e.ML() + e.MR(),
		H: e.H() + e.MT() + e.MB(),
	}
}

// Block is the bounding box of the children, in the element's own space.
// An element without children has an empty block at its origin corner.
func (e Element) Block() Rect { return e.block(false) }

// MarginBlock is Block measured on the children's margin boxes.
func (e Element) MarginBlock() Rect { return e.block(true) }

func (e Element) block(margins bool) Rect {
	children := e.Children()
	if len(children) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range children {
		r := c.Box()
		if margins {
			r = c.MarginBox()
		}
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.X+r.W)
		maxY = math.Max(maxY, r.Y+r.H)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// RootX sums x over the ancestor chain; an unparented element answers its
// own x.
func (e Element) RootX() float64 {
	if p, ok := e.Parent(); ok {
		return e.X() + p.RootX()
	}
	return e.X()
}

func (e Element) RootY() float64 {
	if p, ok := e.Parent(); ok {
		return e.Y() + p.RootY()
	}
	return e.Y()
}

func (e Element) RootZ() float64 {
	if p, ok := e.Parent(); ok {
		return e.Z() + p.RootZ()
	}
	return e.Z()
}

// Fill and Stroke cascade; nil means transparent.
func (e Element) Fill() *Color {
	c, _ := e.CSS(KeyFill, nil).(*Color)
	return c
}

func (e Element) Stroke() *Color {
	c, _ := e.CSS(KeyStroke, nil).(*Color)
	return c
}

func (e Element) StrokeWidth() float64 { return e.float(KeyStrokeWidth) }

func (e Element) Show() bool {
	b, ok := e.CSS(KeyShow, true).(bool)
	return !ok || b
}

// Conditions returns the element's own ordered condition list.
func (e Element) Conditions() []Condition {
	cs, _ := e.CSS(KeyConditions, nil).([]Condition)
	return cs
}
