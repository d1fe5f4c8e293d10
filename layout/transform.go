package layout

// Convention 是输出坐标系的 y 方向。
type Convention int

const (
	// TopDown: y 从页面顶部向下增长（PDF 渲染器使用 CartesianIV）。
	TopDown Convention = iota
	// BottomUp: y 从页面底部向上增长。
	BottomUp
)

// FlipY 在高度为 h 的容器中切换 y 的方向。
func FlipY(y, h float64) float64 { return h - y }

// ScalePoint 按轴缩放一个点。
func ScalePoint(p Point, sx, sy, sz float64) Point {
	return Point{X: p.X * sx, Y: p.Y * sy, Z: p.Z * sz}
}

// Project 返回元素在根元素（页面）坐标系中的绝对矩形。
//
// 根元素本身占据 (0, 0, w, h)。每个元素的位置在父元素空间中按自身的 originTop
// 解释，缩放以元素的左上角为基准，并作用于其全部子孙元素。
// 同一布局用两种 originTop 表达时得到相同的结果。
func Project(e Element, conv Convention) Rect {
	r, _, _ := projectTopDown(e)
	if conv == BottomUp {
		root := e
		for {
			p, ok := root.Parent()
			if !ok {
				break
			}
			root = p
		}
		pageH := root.H() * root.ScaleY()
		r.Y = pageH - r.Y - r.H
	}
	return r
}

// projectTopDown 返回绝对矩形以及元素内部（作用于子元素）的累计缩放。
func projectTopDown(e Element) (Rect, float64, float64) {
	sx, sy := e.ScaleX(), e.ScaleY()
	p, ok := e.Parent()
	if !ok {
		return Rect{W: e.W() * sx, H: e.H() * sy}, sx, sy
	}
	base, csx, csy := projectTopDown(p)
	b := e.Box()
	y := b.Y
	if !e.OriginTop() {
		y = FlipY(b.Y+b.H, p.H())
	}
	at := ScalePoint(Point{X: b.X, Y: y}, csx, csy, 1)
	size := ScalePoint(Point{X: b.W, Y: b.H}, csx*sx, csy*sy, 1)
	return Rect{X: base.X + at.X, Y: base.Y + at.Y, W: size.X, H: size.Y}, csx * sx, csy * sy
}
