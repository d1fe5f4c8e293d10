package layout

import (
	"fmt"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// ParseColor 解析 CSS 颜色（#rgb、#rrggbb、rgb()、颜色名等）。
// "none" 与 "transparent" 返回 nil，表示不填充。
func ParseColor(value string) (*Color, error) {
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "", "none", "transparent":
		return nil, nil
	}
	c, err := csscolorparser.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	r, g, b, a := c.RGBA255()
	return &Color{R: int(r), G: int(g), B: int(b), A: int(a)}, nil
}

// resolveColor 先查资源表中的命名颜色，再按 CSS 颜色解析。
func resolveColor(value string, colors map[string]Color) (*Color, error) {
	if c, ok := colors[value]; ok {
		return &c, nil
	}
	return ParseColor(value)
}
