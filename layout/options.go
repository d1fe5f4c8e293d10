package layout

import "github.com/charmbracelet/log"

// BuildOptions 配置布局阶段所需的依赖与参数。
type BuildOptions struct {
	// Measurer 为空时按字号粗略估算文本宽度。
	Measurer TextMeasurer
	// Tolerance 是条件测试的默认容差（mm）。
	Tolerance float64
	// OriginTop 是页面未声明 origin 时使用的坐标约定。
	OriginTop bool
	// Logger 为空时不输出日志。
	Logger *log.Logger
	Debug  DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	RawUnits bool // 在调试 JSON 中输出 debug.rawUnits 影子字段
}

// TextMeasurer 负责根据字体与宽度约束将文本拆成可绘制的行，并给出每行的宽高。
// 布局核心只通过它获得文本尺寸，自身不接触字形。
type TextMeasurer interface {
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}
