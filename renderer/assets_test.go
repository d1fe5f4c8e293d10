package renderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/boxsolver/layout"
)

func TestFontBytesSources(t *testing.T) {
	a := NewAssets("", map[string]Resource{"custom": {Bytes: []byte("font")}}, nil)
	data, err := a.FontBytes(layout.FontResource{Name: "X", Src: "builtin:custom"})
	if err != nil || string(data) != "font" {
		t.Fatalf("注入字体应优先: %q %v", data, err)
	}
	if data, err := a.FontBytes(layout.FontResource{Src: "builtin:lmroman10-regular"}); err != nil || len(data) == 0 {
		t.Fatalf("内置字体加载失败: %v", err)
	}
	if _, err := a.FontBytes(layout.FontResource{Src: "fonts/a.ttf"}); err == nil {
		t.Fatalf("没有 BaseDir 时相对路径应当报错")
	}
	if _, err := a.FontBytes(layout.FontResource{Name: "Empty"}); err == nil {
		t.Fatalf("缺少 src 应当报错")
	}
}

func TestImageFromBaseDir(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("编码 PNG 失败: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), buf.Bytes(), 0o644); err != nil {
		t.Fatalf("写入测试图片失败: %v", err)
	}

	a := NewAssets(dir, nil, map[string]Resource{"inline": {Bytes: buf.Bytes()}})
	for _, src := range []string{"logo.png", "builtin:inline", filepath.Join(dir, "logo.png")} {
		got, err := a.Image(src)
		if err != nil {
			t.Fatalf("Image(%q) 失败: %v", src, err)
		}
		if got.Bounds().Dx() != 4 {
			t.Fatalf("Image(%q) 尺寸错误: %v", src, got.Bounds())
		}
	}
	if _, err := a.Image("builtin:missing"); err == nil {
		t.Fatalf("缺失的内置图片应当报错")
	}
}
