package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/ByLCY/boxsolver/dsl"
	"github.com/ByLCY/boxsolver/layout"
	"github.com/ByLCY/boxsolver/renderer"
	canvasrenderer "github.com/ByLCY/boxsolver/renderer/canvas"
	"github.com/ByLCY/boxsolver/renderer/raster"
)

const (
	formatPDF  = "pdf"
	formatPNG  = "png"
	formatJSON = "json"
)

var validFormats = map[string]bool{formatPDF: true, formatPNG: true, formatJSON: true}

func validateFormat(f string) error {
	if !validFormats[f] {
		return fmt.Errorf("invalid format: %s (must be 'pdf', 'png' or 'json')", f)
	}
	return nil
}

// renderOpts holds the flags shared by render and check.
type renderOpts struct {
	output        string  // output file, derived from the input when empty
	format        string  // pdf | png | json
	data          string  // inline JSON or @file.json / @file.toml
	debugJSON     string  // extra layout JSON output path
	debugRawUnits bool    // include debug.rawUnits in layout JSON
	dpi           float64 // png resolution
	tolerance     float64
	originBottom  bool
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Lay out a document and write PDF, PNG or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.merge(cmd, configFromContext(cmd.Context()))
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: pdf (default), png, json")
	addLayoutFlags(cmd, &opts)
	cmd.Flags().StringVar(&opts.debugJSON, "debug", "", "also write the layout JSON to this path")
	cmd.Flags().BoolVar(&opts.debugRawUnits, "debug-raw-units", false, "include author units in layout JSON")
	cmd.Flags().Float64Var(&opts.dpi, "dpi", 0, "png resolution")
	return cmd
}

func addLayoutFlags(cmd *cobra.Command, opts *renderOpts) {
	cmd.Flags().StringVar(&opts.data, "data", "", "data bound to ${...}: inline JSON or @file (.json/.toml)")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 0, "condition tolerance in mm")
	cmd.Flags().BoolVar(&opts.originBottom, "origin-bottom", false, "default pages to a bottom-left origin")
}

// merge fills unset flags from the config file.
func (o *renderOpts) merge(cmd *cobra.Command, cfg *Config) {
	if o.format == "" {
		o.format = cfg.Render.Format
	}
	if o.dpi <= 0 {
		o.dpi = cfg.Render.DPI
	}
	if !cmd.Flags().Changed("tolerance") {
		o.tolerance = cfg.Layout.Tolerance
	}
	if !cmd.Flags().Changed("origin-bottom") {
		o.originBottom = !cfg.Layout.OriginTop
	}
}

// build parses the document and solves every page. The returned canvas
// renderer also measured the text and can render the PDF.
func build(ctx context.Context, input string, opts *renderOpts) (*layout.Result, *canvasrenderer.Renderer, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	doc, err := dsl.ParseFile(input)
	if err != nil {
		return nil, nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}
	data, err := loadData(opts.data)
	if err != nil {
		return nil, nil, err
	}

	measurer := canvasrenderer.NewRenderer(filepath.Dir(input))
	result, err := layout.Build(doc, data, layout.BuildOptions{
		Measurer:  measurer,
		Tolerance: opts.tolerance,
		OriginTop: !opts.originBottom,
		Logger:    logger,
		Debug:     layout.DebugOptions{RawUnits: opts.debugRawUnits},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("布局计算失败: %w", err)
	}
	prog.done(fmt.Sprintf("布局完成：%d 页", len(result.Pages)))
	return result, measurer, nil
}

func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	result, measurer, err := build(ctx, input, opts)
	if err != nil {
		return err
	}
	if n := result.Unsolved(); n > 0 {
		logger.Warn("存在未满足的条件", "count", n)
	}
	if opts.debugJSON != "" {
		if err := layout.WriteDebugJSON(result, opts.debugJSON); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
		logger.Debug("已输出调试 JSON", "path", opts.debugJSON)
	}

	prog := newProgress(logger)
	var out []byte
	switch opts.format {
	case formatJSON:
		out, err = layout.MarshalDebugJSON(result)
	case formatPNG:
		var r renderer.Renderer = raster.New(raster.Options{DPI: opts.dpi, BaseDir: filepath.Dir(input)})
		out, err = r.Render(result)
	default:
		out, err = measurer.Render(result)
	}
	if err != nil {
		return fmt.Errorf("渲染 %s 失败: %w", opts.format, err)
	}

	path := opts.output
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}
	if err := writeOutput(path, out); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Generated %s", path))
	return nil
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}

// loadData decodes --data: inline JSON, or @path naming a .json or .toml file.
func loadData(spec string) (any, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	raw := []byte(spec)
	isTOML := false
	if path, ok := strings.CutPrefix(spec, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取数据文件失败: %w", err)
		}
		raw = b
		isTOML = strings.EqualFold(filepath.Ext(path), ".toml")
	}

	if isTOML {
		var data map[string]any
		if err := toml.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("解析 data TOML 失败: %w", err)
		}
		return data, nil
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
	}
	return data, nil
}
