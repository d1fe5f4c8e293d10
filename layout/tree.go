package layout

import (
	"fmt"
	"slices"
)

// ElementID 是元素在 Tree 中的稳定下标。
type ElementID int

// NoElement 表示“没有父元素”。
const NoElement ElementID = -1

type node struct {
	parent   ElementID
	children []ElementID
	kind     string
	style    *StyleMap
	text     string
}

// Tree 以数组方式保存所有元素；父子关系只记录下标，不存在引用环。
// Tree 不是并发安全的，Solve/Evaluate 期间不能被其他 goroutine 修改。
type Tree struct {
	nodes    []node
	defaults *StyleMap
}

// NewTree 创建一棵使用 DefaultStyle 作为根默认值的空树。
func NewTree() *Tree {
	return &Tree{defaults: DefaultStyle()}
}

// Defaults 返回根默认样式，可以在添加元素之前修改（例如统一设置 originTop）。
func (t *Tree) Defaults() *StyleMap { return t.defaults }

func (t *Tree) Len() int { return len(t.nodes) }

// Add 在 parent 下追加一个元素；parent 为 NoElement 时创建根元素。
func (t *Tree) Add(parent ElementID, kind string, attrs Attrs) (Element, error) {
	if parent != NoElement && !t.valid(parent) {
		return Element{}, fmt.Errorf("%w: parent %d", ErrNoElement, parent)
	}
	id := ElementID(len(t.nodes))
	n := node{parent: parent, kind: kind, style: NewStyleMap()}
	for _, key := range localKeys {
		v, _ := t.defaults.Get(key)
		if cs, ok := v.([]Condition); ok {
			v = slices.Clone(cs)
		}
		n.style.put(key, v)
	}
	t.nodes = append(t.nodes, n)
	if parent != NoElement {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	e := Element{t: t, id: id}
	if err := attrs.applyTo(e); err != nil {
		t.detach(id)
		t.nodes = t.nodes[:id]
		return Element{}, err
	}
	return e, nil
}

// Element 返回 id 对应的句柄。
func (t *Tree) Element(id ElementID) (Element, bool) {
	if !t.valid(id) {
		return Element{}, false
	}
	return Element{t: t, id: id}, true
}

// Roots 返回所有没有父元素的元素，按创建顺序排列。
func (t *Tree) Roots() []Element {
	var out []Element
	for i, n := range t.nodes {
		if n.parent == NoElement {
			out = append(out, Element{t: t, id: ElementID(i)})
		}
	}
	return out
}

// Move 把元素移到 newParent 的子元素末尾。
func (t *Tree) Move(id, newParent ElementID) error {
	if !t.valid(id) {
		return fmt.Errorf("%w: %d", ErrNoElement, id)
	}
	if newParent != NoElement {
		if !t.valid(newParent) {
			return fmt.Errorf("%w: parent %d", ErrNoElement, newParent)
		}
		for p := newParent; p != NoElement; p = t.nodes[p].parent {
			if p == id {
				return ErrCycle
			}
		}
	}
	t.detach(id)
	t.nodes[id].parent = newParent
	if newParent != NoElement {
		t.nodes[newParent].children = append(t.nodes[newParent].children, id)
	}
	return nil
}

func (t *Tree) detach(id ElementID) {
	p := t.nodes[id].parent
	if p == NoElement {
		return
	}
	t.nodes[p].children = slices.DeleteFunc(t.nodes[p].children, func(c ElementID) bool { return c == id })
}

func (t *Tree) valid(id ElementID) bool {
	return t != nil && id >= 0 && int(id) < len(t.nodes)
}

// Element 是指向 Tree 中某个元素的轻量句柄，可以按值传递。
type Element struct {
	t  *Tree
	id ElementID
}

func (e Element) ID() ElementID { return e.id }
func (e Element) Tree() *Tree { return e.t }
func (e Element) Valid() bool { return e.t.valid(e.id) }

func (e Element) n() *node { return &e.t.nodes[e.id] }

// Kind 返回创建元素时给出的类型，例如 page、box、text。
func (e Element) Kind() string { return e.n().kind }

// Name 返回本地 name 样式，未设置时为空。
func (e Element) Name() string {
	if v, ok := e.n().style.Get(KeyName); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (e Element) Text() string { return e.n().text }
func (e Element) SetText(s string) { e.n().text = s }
func (e Element) Style() *StyleMap { return e.n().style }
func (e Element) Set(key string, v any) error { return e.n().style.Set(key, v) }

// Parent 返回父元素；根元素返回 false。
func (e Element) Parent() (Element, bool) {
	p := e.n().parent
	if p == NoElement {
		return Element{}, false
	}
	return Element{t: e.t, id: p}, true
}

// Children 按插入顺序返回子元素。
func (e Element) Children() []Element {
	ids := e.n().children
	out := make([]Element, len(ids))
	for i, id := range ids {
		out[i] = Element{t: e.t, id: id}
	}
	return out
}

// Siblings 返回同一父元素下的其他元素（不含自身）。
func (e Element) Siblings() []Element {
	p, ok := e.Parent()
	if !ok {
		return nil
	}
	var out []Element
	for _, c := range p.Children() {
		if c.id != e.id {
			out = append(out, c)
		}
	}
	return out
}

// Index 返回元素在父元素子列表中的位置，根元素返回 -1。
func (e Element) Index() int {
	p, ok := e.Parent()
	if !ok {
		return -1
	}
	return slices.Index(p.n().children, e.id)
}

// Walk 先序遍历以 e 为根的子树；fn 返回 false 时跳过该元素的子树。
func (e Element) Walk(fn func(Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children() {
		c.Walk(fn)
	}
}

// Lookup 级联查找样式：本地 → 父链 → 树的根默认值。每次调用都重新遍历。
func (e Element) Lookup(name string) (any, bool) {
	for cur := e.id; cur != NoElement; cur = e.t.nodes[cur].parent {
		if v, ok := e.t.nodes[cur].style.Get(name); ok {
			return v, true
		}
	}
	return e.t.defaults.Get(name)
}

// CSS 与 Lookup 相同，未找到时返回 def。
func (e Element) CSS(name string, def any) any {
	if v, ok := e.Lookup(name); ok {
		return v
	}
	return def
}

func (e Element) float(name string) float64 {
	v, _ := e.Lookup(name)
	f, _ := toFloat(v)
	return f
}

func (e Element) put(name string, v float64) { e.n().style.put(name, v) }
