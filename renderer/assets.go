package renderer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/boxsolver/fonts"
	"github.com/ByLCY/boxsolver/layout"
)

// Resource 可以直接提供字节，也可以提供文件路径。
type Resource struct {
	Bytes []byte
	Path  string
}

// Assets 为渲染器解析字体与图片来源：
//   - builtin:<name>：先查注入的资源，字体再查内置的 latin-modern 字体；
//   - 相对路径：相对 BaseDir；
//   - 绝对路径。
type Assets struct {
	BaseDir string
	fonts   map[string][]byte
	images  map[string][]byte
}

// NewAssets 读取注入的资源。路径读取失败的资源被忽略，实际使用时再报错。
func NewAssets(baseDir string, fontRes, imageRes map[string]Resource) *Assets {
	return &Assets{
		BaseDir: baseDir,
		fonts:   ingest(fontRes),
		images:  ingest(imageRes),
	}
}

func ingest(in map[string]Resource) map[string][]byte {
	out := map[string][]byte{}
	for name, res := range in {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			out[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			if data, _ := os.ReadFile(res.Path); len(data) > 0 {
				out[name] = data
			}
		}
	}
	return out
}

func builtinName(src string) (string, bool) {
	for _, prefix := range []string{"builtin:", "built-in:"} {
		if strings.HasPrefix(src, prefix) {
			return strings.TrimPrefix(src, prefix), true
		}
	}
	return "", false
}

// FontBytes 返回字体资源的数据。
func (a *Assets) FontBytes(font layout.FontResource) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	if name, ok := builtinName(font.Src); ok {
		if blob, ok := a.fonts[name]; ok {
			return blob, nil
		}
		return fonts.Load(name)
	}
	path, err := a.resolve(font.Src)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Image 解码图片资源。
func (a *Assets) Image(src string) (image.Image, error) {
	if name, ok := builtinName(src); ok {
		blob, ok := a.images[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置图片资源 builtin:%s", name)
		}
		img, _, err := image.Decode(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("解码内置图片 builtin:%s 失败: %w", name, err)
		}
		return img, nil
	}
	path, err := a.resolve(src)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", src, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", src, err)
	}
	return img, nil
}

func (a *Assets) resolve(src string) (string, error) {
	if filepath.IsAbs(src) {
		return src, nil
	}
	if a.BaseDir == "" {
		return "", fmt.Errorf("未指定资源目录时不允许直接使用路径：%s（请改用 builtin:）", src)
	}
	return filepath.Join(a.BaseDir, src), nil
}
