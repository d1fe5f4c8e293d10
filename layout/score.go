package layout

import "fmt"

// Failure 记录一条未满足（或无法求解）的条件及其所在元素。
type Failure struct {
	Element   Element
	Condition Condition
}

func (f Failure) String() string {
	name := f.Element.Name()
	if name == "" {
		name = fmt.Sprintf("%s#%d", f.Element.Kind(), f.Element.ID())
	}
	return fmt.Sprintf("%s: %s", name, f.Condition.Name())
}

// Score 汇总一次 Evaluate 或 Solve 遍历的结果。
type Score struct {
	Total     int
	Passed    int
	Fails     []Failure
	Tolerance float64
}

// NewScore 创建一个使用给定容差的空 Score。
func NewScore(tolerance float64) *Score {
	return &Score{Tolerance: tolerance}
}

// OK 表示没有任何失败。
func (s *Score) OK() bool { return len(s.Fails) == 0 }

// Result 是通过数减去失败数。
func (s *Score) Result() int { return s.Passed - len(s.Fails) }

func (s *Score) String() string {
	return fmt.Sprintf("score %d/%d passed, %d failed", s.Passed, s.Total, len(s.Fails))
}

func (s *Score) record(e Element, c Condition, ok bool) {
	s.Total++
	if ok {
		s.Passed++
		return
	}
	s.Fails = append(s.Fails, Failure{Element: e, Condition: c})
}

// Evaluate 自顶向下测试 e 及其全部子孙元素上的条件，不修改几何。
// score 为 nil 时新建一个容差为 0 的 Score。
func Evaluate(e Element, score *Score) *Score {
	if score == nil {
		score = NewScore(0)
	}
	for _, c := range e.Conditions() {
		score.record(e, c, c.Test(e, score.Tolerance))
	}
	for _, child := range e.Children() {
		Evaluate(child, score)
	}
	return score
}

// Solve 自顶向下对每个元素依次应用其全部条件，然后递归到子元素。
//
// 只遍历一次，不迭代到不动点：条件之间的依赖关系由调用方通过
// 条件列表的顺序与子元素的插入顺序保证。Solve 不会在应用前测试条件，
// 返回 false 的条件记为失败。
func Solve(e Element, score *Score) *Score {
	if score == nil {
		score = NewScore(0)
	}
	for _, c := range e.Conditions() {
		score.record(e, c, c.Solve(e))
	}
	for _, child := range e.Children() {
		Solve(child, score)
	}
	return score
}
