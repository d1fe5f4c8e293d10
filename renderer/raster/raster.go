// Package raster draws layout results into a single PNG image with
// github.com/fogleman/gg. Pages are stacked vertically, top to bottom.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/ByLCY/boxsolver/fonts"
	"github.com/ByLCY/boxsolver/layout"
	"github.com/ByLCY/boxsolver/renderer"
)

// DefaultDPI is used when Options.DPI is not positive.
const DefaultDPI = 150

// hairline is the stroke width in mm when a frame does not declare one.
const hairline = 0.2

// Options configures the raster renderer.
type Options struct {
	DPI     float64
	BaseDir string
	Fonts   map[string]renderer.Resource
	Images  map[string]renderer.Resource
}

// Renderer implements renderer.Renderer for PNG output.
type Renderer struct {
	dpi    float64
	assets *renderer.Assets

	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[string]font.Face
}

var _ renderer.Renderer = (*Renderer)(nil)

// New creates a raster renderer.
func New(opts Options) *Renderer {
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{
		dpi:    dpi,
		assets: renderer.NewAssets(opts.BaseDir, opts.Fonts, opts.Images),
		fonts:  map[string]*opentype.Font{},
		faces:  map[string]font.Face{},
	}
}

// Scale returns pixels per millimetre.
func (r *Renderer) Scale() float64 { return r.dpi / 25.4 }

// Render encodes all pages of the result into one PNG.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("render: nil result")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("render: no pages")
	}

	s := r.Scale()
	var width, height int
	offsets := make([]float64, len(result.Pages))
	for i, p := range result.Pages {
		offsets[i] = float64(height)
		width = max(width, px(p.Width, s))
		height += px(p.Height, s)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("render: empty canvas %dx%d", width, height)
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	for i, p := range result.Pages {
		if err := r.drawPage(dc, p, offsets[i], result.Resources); err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawPage(dc *gg.Context, p layout.Page, top float64, res layout.ResourceSet) error {
	s := r.Scale()
	if p.Fill != nil {
		dc.DrawRectangle(0, top, p.Width*s, p.Height*s)
		dc.SetColor(toColor(*p.Fill))
		dc.Fill()
	}
	for _, f := range p.Frames {
		if err := r.drawFrame(dc, f, top, res); err != nil {
			return fmt.Errorf("%s %s: %w", f.Kind, f.Name, err)
		}
	}
	return nil
}

func (r *Renderer) drawFrame(dc *gg.Context, f layout.Frame, top float64, res layout.ResourceSet) error {
	s := r.Scale()
	x, y, w, h := f.X*s, top+f.Y*s, f.Width*s, f.Height*s
	switch f.Kind {
	case "line":
		stroke := f.Stroke
		if stroke == nil {
			stroke = &layout.Color{A: 255}
		}
		dc.DrawLine(x, y, x+w, y+h)
		r.paint(dc, nil, stroke, f.StrokeWidth)
		return nil
	case "oval":
		dc.DrawEllipse(x+w/2, y+h/2, w/2, h/2)
		r.paint(dc, f.Fill, f.Stroke, f.StrokeWidth)
		return nil
	}

	if f.Fill != nil || f.Stroke != nil {
		dc.DrawRectangle(x, y, w, h)
		r.paint(dc, f.Fill, f.Stroke, f.StrokeWidth)
	}
	if f.Image != nil && f.Image.Path != "" {
		if err := r.drawImage(dc, f.Image, image.Rect(px(f.X, s), int(math.Round(y)), px(f.X+f.Width, s), int(math.Round(y+h)))); err != nil {
			return err
		}
	}
	if f.Text != nil {
		return r.drawText(dc, f, x, y, w, res)
	}
	return nil
}

// paint fills and strokes the current path, then clears it.
func (r *Renderer) paint(dc *gg.Context, fill, stroke *layout.Color, width float64) {
	if fill == nil && stroke == nil {
		dc.ClearPath()
		return
	}
	if fill != nil {
		dc.SetColor(toColor(*fill))
		if stroke == nil {
			dc.Fill()
			return
		}
		dc.FillPreserve()
	}
	if width <= 0 {
		width = hairline
	}
	dc.SetColor(toColor(*stroke))
	dc.SetLineWidth(math.Max(width*r.Scale(), 1))
	dc.Stroke()
}

func (r *Renderer) drawText(dc *gg.Context, f layout.Frame, x, y, w float64, res layout.ResourceSet) error {
	tb := f.Text
	face, err := r.face(resolveFont(tb.Font, res.Fonts), tb.FontSize*layout.MmToPt)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetColor(toColor(tb.Color))

	s := r.Scale()
	ascent := float64(face.Metrics().Ascent) / 64
	lines := tb.Lines
	if len(lines) == 0 {
		lines = []layout.TextLine{{Content: tb.Content, Height: tb.LineHeight}}
	}
	cursor := y
	for _, line := range lines {
		cursor += line.GapBefore * s
		lx := x
		switch tb.Align {
		case "center":
			lw, _ := dc.MeasureString(line.Content)
			lx = x + (w-lw)/2
		case "right":
			lw, _ := dc.MeasureString(line.Content)
			lx = x + w - lw
		}
		dc.DrawString(line.Content, lx, cursor+ascent)
		lh := line.Height
		if lh <= 0 {
			lh = tb.FontSize
		}
		cursor += lh * s
	}
	return nil
}

func (r *Renderer) drawImage(dc *gg.Context, ib *layout.ImageBox, dst image.Rectangle) error {
	if dst.Empty() {
		return nil
	}
	src, err := r.assets.Image(ib.Path)
	if err != nil {
		return err
	}
	scaled := image.NewRGBA(image.Rect(0, 0, dst.Dx(), dst.Dy()))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)

	canvas, ok := dc.Image().(*image.RGBA)
	if !ok || ib.Opacity <= 0 || ib.Opacity >= 1 {
		dc.DrawImage(scaled, dst.Min.X, dst.Min.Y)
		return nil
	}
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(ib.Opacity * 255))})
	draw.DrawMask(canvas, dst, scaled, image.Point{}, mask, image.Point{}, draw.Over)
	return nil
}

// face returns a cached face for the font at size points.
func (r *Renderer) face(res layout.FontResource, size float64) (font.Face, error) {
	key := fmt.Sprintf("%s|%s|%.3f", res.Name, res.Src, size)
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	parsed, err := r.parse(res)
	if err != nil {
		return nil, err
	}
	f, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: size, DPI: r.dpi, Hinting: font.HintingNone})
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", res.Name, err)
	}
	r.faces[key] = f
	return f, nil
}

// parse loads the font data, falling back to the builtin default face.
func (r *Renderer) parse(res layout.FontResource) (*opentype.Font, error) {
	key := res.Name + "|" + res.Src
	if f, ok := r.fonts[key]; ok {
		return f, nil
	}
	data, err := r.assets.FontBytes(res)
	var parsed *opentype.Font
	if err == nil {
		parsed, err = opentype.Parse(data)
	}
	if err != nil {
		name := res.Fallback
		if name == "" {
			name = fonts.Default
		}
		fb, fbErr := fonts.Load(name)
		if fbErr != nil {
			return nil, err
		}
		if parsed, err = opentype.Parse(fb); err != nil {
			return nil, fmt.Errorf("fallback font %s: %w", name, err)
		}
	}
	r.fonts[key] = parsed
	return parsed, nil
}

func resolveFont(name string, known map[string]layout.FontResource) layout.FontResource {
	if f, ok := known[name]; ok {
		return f
	}
	if f, ok := known["Body"]; ok {
		return f
	}
	return layout.FontResource{Name: "Body", Src: "builtin:" + fonts.Default}
}

func toColor(c layout.Color) color.NRGBA {
	return color.NRGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: channel(c.A)}
}

func channel(v int) uint8 { return uint8(min(max(v, 0), 255)) }

func px(mm, scale float64) int { return int(math.Round(mm * scale)) }
