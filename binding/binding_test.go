package binding

import "testing"

func sampleData() map[string]any {
	return map[string]any{
		"user": map[string]any{"name": "Ada"},
		"items": []any{
			map[string]any{"color": "#f00", "w": 10.0},
			map[string]any{"color": "#0f0", "w": 12.5},
		},
	}
}

func TestInterpolate(t *testing.T) {
	data := sampleData()
	cases := []struct {
		in, want string
	}{
		{"Hello ${user.name}", "Hello Ada"},
		{"${items[1].color}", "#0f0"},
		{"${items[1].w}mm", "12.5mm"},
		{"${missing.path}", "${missing.path}"},
		{"${items[9].color}", "${items[9].color}"},
		{"plain", "plain"},
	}
	for _, c := range cases {
		if got := Interpolate(c.in, data); got != c.want {
			t.Fatalf("Interpolate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	if got := Interpolate("${user.name}", nil); got != "${user.name}" {
		t.Fatalf("nil data should keep placeholder, got %q", got)
	}
}

func TestScopeShadowsParent(t *testing.T) {
	data := sampleData()
	items, ok := Items(data, "items")
	if !ok || len(items) != 2 {
		t.Fatalf("items not resolved: %v %v", items, ok)
	}
	scope := With(data, map[string]any{"item": items[0], "index": 0, "user": "shadow"})
	if got := Interpolate("${index}:${item.color}", scope); got != "0:#f00" {
		t.Fatalf("unexpected scoped interpolation: %q", got)
	}
	if got := Interpolate("${user}", scope); got != "shadow" {
		t.Fatalf("scope variable should shadow parent, got %q", got)
	}
	inner := With(scope, map[string]any{"item": items[1]})
	if got := Interpolate("${item.color} ${index}", inner); got != "#0f0 0" {
		t.Fatalf("nested scope should fall back to outer vars, got %q", got)
	}
}

func TestItemsRejectsNonArray(t *testing.T) {
	if _, ok := Items(sampleData(), "user"); ok {
		t.Fatalf("map should not be iterable")
	}
}
