package layout

import "errors"

// 结构性错误：属于调用方的编程错误，在赋值处立即返回。
// 条件无法求解不属于错误，只记录在 Score 中。
var (
	ErrArity            = errors.New("layout: margin/padding 取值个数必须为 1、2、3、4 或 6")
	ErrStyleType        = errors.New("layout: 样式值类型不匹配")
	ErrScale            = errors.New("layout: 缩放系数不能为 0")
	ErrNoElement        = errors.New("layout: 元素不存在")
	ErrCycle            = errors.New("layout: 不能把元素移动到自身的子树中")
	ErrUnknownCondition = errors.New("layout: 未知的条件名称")
)
