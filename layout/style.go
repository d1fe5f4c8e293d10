package layout

import (
	"fmt"
	"math"
	"slices"
)

// 已识别的样式键。其余键原样保存并参与级联。
const (
	KeyX           = "x"
	KeyY           = "y"
	KeyZ           = "z"
	KeyW           = "w"
	KeyH           = "h"
	KeyD           = "d"
	KeyMT          = "mt"
	KeyML          = "ml"
	KeyMR          = "mr"
	KeyMB          = "mb"
	KeyMZF         = "mzf"
	KeyMZB         = "mzb"
	KeyPT          = "pt"
	KeyPL          = "pl"
	KeyPR          = "pr"
	KeyPB          = "pb"
	KeyPZF         = "pzf"
	KeyPZB         = "pzb"
	KeyMinW        = "minW"
	KeyMinH        = "minH"
	KeyMinD        = "minD"
	KeyMaxW        = "maxW"
	KeyMaxH        = "maxH"
	KeyMaxD        = "maxD"
	KeyAlign       = "align"
	KeyYAlign      = "yAlign"
	KeyZAlign      = "zAlign"
	KeyOriginTop   = "originTop"
	KeyConditions  = "conditions"
	KeyScaleX      = "scaleX"
	KeyScaleY      = "scaleY"
	KeyScaleZ      = "scaleZ"
	KeyFill        = "fill"
	KeyStroke      = "stroke"
	KeyStrokeWidth = "strokeWidth"
	KeyShow        = "show"
	KeyName        = "name"
	KeyCW          = "cw"
	KeyCH          = "ch"
	KeyGW          = "gw"
	KeyGH          = "gh"
	KeyGridX       = "gridX"
	KeyGridY       = "gridY"
)

type keyKind int

const (
	kindFloat keyKind = iota + 1
	kindScale
	kindXAlign
	kindYAlign
	kindZAlign
	kindBool
	kindConditions
	kindColor
	kindString
	kindGrid
)

var knownKeys = map[string]keyKind{
	KeyX: kindFloat, KeyY: kindFloat, KeyZ: kindFloat,
	KeyW: kindFloat, KeyH: kindFloat, KeyD: kindFloat,
	KeyMT: kindFloat, KeyML: kindFloat, KeyMR: kindFloat, KeyMB: kindFloat, KeyMZF: kindFloat, KeyMZB: kindFloat,
	KeyPT: kindFloat, KeyPL: kindFloat, KeyPR: kindFloat, KeyPB: kindFloat, KeyPZF: kindFloat, KeyPZB: kindFloat,
	KeyMinW: kindFloat, KeyMinH: kindFloat, KeyMinD: kindFloat,
	KeyMaxW: kindFloat, KeyMaxH: kindFloat, KeyMaxD: kindFloat,
	KeyAlign: kindXAlign, KeyYAlign: kindYAlign, KeyZAlign: kindZAlign,
	KeyOriginTop: kindBool, KeyShow: kindBool,
	KeyConditions: kindConditions,
	KeyScaleX:     kindScale, KeyScaleY: kindScale, KeyScaleZ: kindScale,
	KeyFill: kindColor, KeyStroke: kindColor,
	KeyStrokeWidth: kindFloat,
	KeyName:        kindString,
	KeyCW:          kindFloat, KeyCH: kindFloat, KeyGW: kindFloat, KeyGH: kindFloat,
	KeyGridX: kindGrid, KeyGridY: kindGrid,
}

// localKeys 在创建元素时总是写入本地样式，因此不会从父元素继承。
var localKeys = []string{
	KeyX, KeyY, KeyZ, KeyW, KeyH, KeyD,
	KeyMT, KeyMR, KeyMB, KeyML, KeyMZF, KeyMZB,
	KeyPT, KeyPR, KeyPB, KeyPL, KeyPZF, KeyPZB,
	KeyMinW, KeyMinH, KeyMinD, KeyMaxW, KeyMaxH, KeyMaxD,
	KeyScaleX, KeyScaleY, KeyScaleZ,
	KeyConditions,
}

// StyleMap 是按插入顺序保存的样式表。
// nil 是合法的取值（例如透明颜色），与“键不存在”不同。
type StyleMap struct {
	keys   []string
	values map[string]any
}

// NewStyleMap 返回一个空样式表。
func NewStyleMap() *StyleMap {
	return &StyleMap{values: map[string]any{}}
}

// Set 写入一个样式值。已识别的键会被转换为规范类型，类型不匹配时返回 ErrStyleType。
func (s *StyleMap) Set(key string, value any) error {
	v, err := coerce(key, value)
	if err != nil {
		return err
	}
	s.put(key, v)
	return nil
}

func (s *StyleMap) put(key string, v any) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
}

// Get 返回本地值，不做级联。
func (s *StyleMap) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[key]
	return v, ok
}

func (s *StyleMap) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *StyleMap) Len() int { return len(s.keys) }

// Keys 按插入顺序返回键。
func (s *StyleMap) Keys() []string { return slices.Clone(s.keys) }

// DefaultStyle 返回树的根默认样式，级联查找在这里终止。
func DefaultStyle() *StyleMap {
	s := NewStyleMap()
	defaults := []struct {
		key string
		val any
	}{
		{KeyX, 0.0}, {KeyY, 0.0}, {KeyZ, 0.0},
		{KeyW, 100.0}, {KeyH, 100.0}, {KeyD, 0.0},
		{KeyMT, 0.0}, {KeyMR, 0.0}, {KeyMB, 0.0}, {KeyML, 0.0}, {KeyMZF, 0.0}, {KeyMZB, 0.0},
		{KeyPT, 0.0}, {KeyPR, 0.0}, {KeyPB, 0.0}, {KeyPL, 0.0}, {KeyPZF, 0.0}, {KeyPZB, 0.0},
		{KeyMinW, 0.0}, {KeyMinH, 0.0}, {KeyMinD, 0.0},
		{KeyMaxW, math.Inf(1)}, {KeyMaxH, math.Inf(1)}, {KeyMaxD, math.Inf(1)},
		{KeyAlign, AlignLeft}, {KeyYAlign, AlignTop}, {KeyZAlign, AlignFront},
		{KeyOriginTop, false},
		{KeyConditions, []Condition{}},
		{KeyScaleX, 1.0}, {KeyScaleY, 1.0}, {KeyScaleZ, 1.0},
		{KeyFill, (*Color)(nil)}, {KeyStroke, (*Color)(nil)}, {KeyStrokeWidth, 0.0},
		{KeyShow, true},
		{KeyCW, 0.0}, {KeyCH, 0.0}, {KeyGW, 0.0}, {KeyGH, 0.0},
		{KeyGridX, []GridTrack(nil)}, {KeyGridY, []GridTrack(nil)},
	}
	for _, d := range defaults {
		s.put(d.key, d.val)
	}
	return s
}

func coerce(key string, value any) (any, error) {
	kind, ok := knownKeys[key]
	if !ok {
		return value, nil
	}
	switch kind {
	case kindFloat, kindScale:
		f, ok := toFloat(value)
		if !ok {
			return nil, fmt.Errorf("%w: %s 需要数值，得到 %T", ErrStyleType, key, value)
		}
		if kind == kindScale && f == 0 {
			return nil, fmt.Errorf("%w: %s", ErrScale, key)
		}
		return f, nil
	case kindXAlign:
		switch v := value.(type) {
		case XAlign:
			return v, nil
		case string:
			return ParseXAlign(v)
		}
	case kindYAlign:
		switch v := value.(type) {
		case YAlign:
			return v, nil
		case string:
			return ParseYAlign(v)
		}
	case kindZAlign:
		switch v := value.(type) {
		case ZAlign:
			return v, nil
		case string:
			return ParseZAlign(v)
		}
	case kindBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case kindString:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case kindConditions:
		return toConditions(value)
	case kindGrid:
		return toGrid(value)
	case kindColor:
		switch v := value.(type) {
		case nil:
			return (*Color)(nil), nil
		case *Color:
			return v, nil
		case Color:
			return &v, nil
		case string:
			return ParseColor(v)
		}
	}
	return nil, fmt.Errorf("%w: %s 不接受 %T", ErrStyleType, key, value)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func toConditions(value any) ([]Condition, error) {
	switch v := value.(type) {
	case nil:
		return []Condition{}, nil
	case []Condition:
		return slices.Clone(v), nil
	case Condition:
		return []Condition{v}, nil
	case []string:
		out := make([]Condition, 0, len(v))
		for _, name := range v {
			c, ok := ConditionByName(name)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownCondition, name)
			}
			out = append(out, c)
		}
		return out, nil
	case string:
		return toConditions(SplitConditionNames(v))
	}
	return nil, fmt.Errorf("%w: conditions 不接受 %T", ErrStyleType, value)
}

// Attrs 是创建元素时使用的强类型属性集合。
// 未设置的指针字段不会写入样式；Extra 中的键原样交给 StyleMap.Set。
type Attrs struct {
	Name        string
	X, Y, Z     *float64
	W, H, D     *float64
	Margin      []float64
	Padding     []float64
	Align       XAlign
	YAlign      YAlign
	ZAlign      ZAlign
	OriginTop   *bool
	Conditions  []Condition
	Fill        *Color
	Stroke      *Color
	StrokeWidth *float64
	Extra       map[string]any
}

// Ptr 返回 v 的指针，便于填写 Attrs。
func Ptr[T any](v T) *T { return &v }

func (a Attrs) applyTo(e Element) error {
	extra := make([]string, 0, len(a.Extra))
	for k := range a.Extra {
		extra = append(extra, k)
	}
	slices.Sort(extra)
	style := e.Style()
	for _, k := range extra {
		if err := style.Set(k, a.Extra[k]); err != nil {
			return err
		}
	}
	set := func(key string, v *float64) {
		if v != nil {
			style.put(key, *v)
		}
	}
	set(KeyX, a.X)
	set(KeyY, a.Y)
	set(KeyZ, a.Z)
	set(KeyW, a.W)
	set(KeyH, a.H)
	set(KeyD, a.D)
	set(KeyStrokeWidth, a.StrokeWidth)
	if a.Name != "" {
		style.put(KeyName, a.Name)
	}
	if len(a.Margin) > 0 {
		if err := e.SetMargin(a.Margin...); err != nil {
			return err
		}
	}
	if len(a.Padding) > 0 {
		if err := e.SetPadding(a.Padding...); err != nil {
			return err
		}
	}
	if a.Align != 0 {
		style.put(KeyAlign, a.Align)
	}
	if a.YAlign != 0 {
		style.put(KeyYAlign, a.YAlign)
	}
	if a.ZAlign != 0 {
		style.put(KeyZAlign, a.ZAlign)
	}
	if a.OriginTop != nil {
		style.put(KeyOriginTop, *a.OriginTop)
	}
	if a.Conditions != nil {
		style.put(KeyConditions, slices.Clone(a.Conditions))
	}
	if a.Fill != nil {
		style.put(KeyFill, a.Fill)
	}
	if a.Stroke != nil {
		style.put(KeyStroke, a.Stroke)
	}
	return nil
}
