package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ByLCY/boxsolver/layout"
	"github.com/ByLCY/boxsolver/renderer"
)

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

func rgba(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func TestRenderStacksPages(t *testing.T) {
	red := &layout.Color{R: 255, A: 255}
	blue := &layout.Color{B: 255, A: 255}
	res := &layout.Result{Pages: []layout.Page{
		{Width: 100, Height: 50, Frames: []layout.Frame{
			{Kind: "rect", X: 10, Y: 10, Width: 20, Height: 10, Fill: red},
		}},
		{Width: 80, Height: 50, Fill: blue},
	}}

	// 25.4 dpi 即 1px/mm
	data, err := New(Options{DPI: 25.4}).Render(res)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	img := decode(t, data)
	if got := img.Bounds().Size(); got != image.Pt(100, 100) {
		t.Fatalf("unexpected size %v", got)
	}
	checks := []struct {
		x, y int
		want color.RGBA
	}{
		{20, 15, color.RGBA{255, 0, 0, 255}},
		{5, 5, color.RGBA{255, 255, 255, 255}},
		{40, 75, color.RGBA{0, 0, 255, 255}},
		{90, 75, color.RGBA{255, 255, 255, 255}},
	}
	for _, c := range checks {
		if got := rgba(img.At(c.x, c.y)); got != c.want {
			t.Fatalf("pixel (%d,%d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestRenderShapesAndText(t *testing.T) {
	black := &layout.Color{A: 255}
	res := &layout.Result{
		Resources: layout.ResourceSet{Fonts: map[string]layout.FontResource{
			"Body": {Name: "Body", Src: "builtin:lmsans10-regular"},
		}},
		Pages: []layout.Page{{Width: 60, Height: 40, Frames: []layout.Frame{
			{Kind: "oval", X: 5, Y: 5, Width: 20, Height: 10, Fill: black},
			{Kind: "line", X: 0, Y: 30, Width: 60, Height: 0, StrokeWidth: 1},
			{Kind: "text", X: 30, Y: 5, Width: 25, Height: 10, Text: &layout.TextBox{
				Content: "Hi", Font: "Body", FontSize: 6, LineHeight: 7, Align: "right",
				Color: layout.Color{A: 255},
				Lines: []layout.TextLine{{Content: "Hi", Height: 6}},
			}},
		}}},
	}
	img := decode(t, mustRender(t, New(Options{DPI: 50.8}), res))
	if got := img.Bounds().Size(); got != image.Pt(120, 80) {
		t.Fatalf("unexpected size %v", got)
	}
	if got := rgba(img.At(30, 20)); got != (color.RGBA{0, 0, 0, 255}) {
		t.Fatalf("oval center should be black, got %v", got)
	}
	if got := rgba(img.At(60, 60)); got.R > 10 {
		t.Fatalf("line should default to a black stroke, got %v", got)
	}
	dark := 0
	for y := 10; y < 30; y++ {
		for x := 60; x < 110; x++ {
			if rgba(img.At(x, y)).R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatalf("text was not drawn")
	}
}

func TestRenderImageWithOpacity(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.Set(x, y, color.RGBA{G: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	r := New(Options{DPI: 25.4, Images: map[string]renderer.Resource{"dot": {Bytes: buf.Bytes()}}})
	res := &layout.Result{Pages: []layout.Page{{Width: 20, Height: 20, Frames: []layout.Frame{
		{Kind: "image", X: 0, Y: 0, Width: 10, Height: 10, Image: &layout.ImageBox{Path: "builtin:dot", Opacity: 1}},
		{Kind: "image", X: 10, Y: 10, Width: 10, Height: 10, Image: &layout.ImageBox{Path: "builtin:dot", Opacity: 0.5}},
	}}}}
	img := decode(t, mustRender(t, r, res))
	if got := rgba(img.At(5, 5)); got != (color.RGBA{0, 255, 0, 255}) {
		t.Fatalf("opaque image pixel = %v", got)
	}
	if got := rgba(img.At(15, 15)); got.R < 100 || got.R > 155 || got.G != 255 {
		t.Fatalf("half transparent image pixel = %v", got)
	}
}

func TestRenderRejectsEmpty(t *testing.T) {
	if _, err := New(Options{}).Render(nil); err == nil {
		t.Fatalf("nil result should fail")
	}
	if _, err := New(Options{}).Render(&layout.Result{}); err == nil {
		t.Fatalf("result without pages should fail")
	}
}

func mustRender(t *testing.T, r *Renderer, res *layout.Result) []byte {
	t.Helper()
	data, err := r.Render(res)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return data
}
