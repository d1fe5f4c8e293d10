package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/boxsolver/layout"
)

const solvedDoc = `doc T v1 {
  page A5 origin top padding 10mm {
    each items as it {
      rect name "r${index}" w "${it.w}mm" h 10mm fill "${it.color}" { conditions: [Top2Top, Float2Left] }
    }
  }
}`

const conflictDoc = `doc T v1 { page A4 { rect name a w 30mm h 20mm { conditions: [Left2Left, Right2Right] } } }`

func run(t *testing.T, stdout io.Writer, args ...string) error {
	t.Helper()
	cmd := newRootCmd(io.Discard)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"pdf", false},
		{"png", false},
		{"json", false},
		{"svg", true},
		{"", true},
	}
	for _, tt := range tests {
		if err := validateFormat(tt.format); (err != nil) != tt.wantErr {
			t.Errorf("validateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestLoadData(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "d.json", `{"user": {"name": "Ada"}}`)
	tomlPath := writeFile(t, dir, "d.toml", "[user]\nname = \"Ada\"\n[[items]]\nw = 5\n")

	for _, spec := range []string{`{"user": {"name": "Ada"}}`, "@" + jsonPath, "@" + tomlPath} {
		data, err := loadData(spec)
		if err != nil {
			t.Fatalf("loadData(%q): %v", spec, err)
		}
		user, ok := data.(map[string]any)["user"].(map[string]any)
		if !ok || user["name"] != "Ada" {
			t.Errorf("loadData(%q) = %#v", spec, data)
		}
	}
	if data, err := loadData(""); err != nil || data != nil {
		t.Errorf("empty data = %v, %v", data, err)
	}
	if _, err := loadData("{bad"); err == nil {
		t.Error("invalid JSON should fail")
	}
	if _, err := loadData("@" + filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestRenderJSON(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "doc.box", solvedDoc)
	out := filepath.Join(dir, "out", "layout.json")
	data := `{"items": [{"w": 20, "color": "red"}, {"w": 30, "color": "#00f"}]}`

	if err := run(t, io.Discard, "render", input, "-f", "json", "-o", out, "--data", data); err != nil {
		t.Fatalf("render: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var res layout.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatalf("decode layout json: %v", err)
	}
	if len(res.Pages) != 1 || len(res.Pages[0].Frames) != 2 {
		t.Fatalf("unexpected result: %+v", res.Pages)
	}
	second := res.Pages[0].Frames[1]
	if second.X != 30 || second.Width != 30 {
		t.Errorf("second frame = %+v", second)
	}
}

func TestRenderDefaultsToPDFNextToInput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "doc.box", solvedDoc)
	if err := run(t, io.Discard, "render", input, "--data", `{"items": [{"w": 10, "color": "blue"}]}`); err != nil {
		t.Fatalf("render: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "doc.pdf"))
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func TestRenderPNGFromConfig(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "doc.box", solvedDoc)
	cfg := writeFile(t, dir, "box.toml", "[render]\nformat = \"png\"\ndpi = 25.4\n")
	if err := run(t, io.Discard, "--config", cfg, "render", input); err != nil {
		t.Fatalf("render: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "doc.png"))
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestRenderRejectsBadFormat(t *testing.T) {
	input := writeFile(t, t.TempDir(), "doc.box", solvedDoc)
	if err := run(t, io.Discard, "render", input, "-f", "svg"); err == nil {
		t.Error("svg should be rejected")
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	ok := writeFile(t, dir, "ok.box", solvedDoc)
	bad := writeFile(t, dir, "bad.box", conflictDoc)

	var out bytes.Buffer
	if err := run(t, &out, "check", ok); err != nil {
		t.Fatalf("check solved doc: %v", err)
	}
	if !strings.Contains(out.String(), "page 1: 0/0 passed") {
		t.Errorf("unexpected report: %q", out.String())
	}

	out.Reset()
	err := run(t, &out, "check", bad)
	if !errors.Is(err, errUnsolved) {
		t.Fatalf("check error = %v, want errUnsolved", err)
	}
	if !strings.Contains(out.String(), "FAIL a: Left2Left") {
		t.Errorf("report should list the failure: %q", out.String())
	}
}
