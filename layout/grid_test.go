package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridPage 返回 100x100、padding 10 的页面，列宽 20、列距 10，行高 20、行距 10。
func gridPage(t *testing.T) Element {
	t.Helper()
	_, page := newPage(t, 100, 100, 10)
	for k, v := range map[string]any{KeyCW: 20.0, KeyGW: 10.0, KeyCH: 20.0, KeyGH: 10.0} {
		require.NoError(t, page.Set(k, v))
	}
	return page
}

func TestGridColumnsRepeat(t *testing.T) {
	page := gridPage(t)
	assert.Equal(t, []GridCell{{0, 20}, {30, 20}, {60, 20}}, page.GridColumns())
	assert.Len(t, page.GridRows(), 3)

	_, bare := newPage(t, 100, 100)
	assert.Empty(t, bare.GridColumns(), "no cw means no columns")
}

func TestGridTracks(t *testing.T) {
	_, page := newPage(t, 100, 100, 10)
	require.NoError(t, page.Set(KeyGW, 5.0))
	require.NoError(t, page.Set(KeyGridX, "20mm auto 10mm/0 auto"))

	cols := page.GridColumns()
	assert.Equal(t, []GridCell{{0, 20}, {25, 20}, {50, 10}, {60, 20}}, cols)
	assert.InDelta(t, page.PaddedW(), cols[len(cols)-1].End(), 1e-9, "auto tracks fill the content width")

	require.NoError(t, page.Set(KeyGridY, []float64{30, 40}))
	assert.Equal(t, []GridCell{{0, 30}, {30, 40}}, page.GridRows())

	assert.ErrorIs(t, page.Set(KeyGridX, "20mm wide"), ErrStyleType)
	assert.ErrorIs(t, page.Set(KeyGridX, 3), ErrStyleType)
}

func TestGridConditions(t *testing.T) {
	tests := []struct {
		cond            Condition
		left, top, w, h float64
	}{
		{Left2Col(1), 40, 0, 10, 10},
		{Right2Col(2), 80, 0, 10, 10},
		{Fit2ColSpan(0, 2), 10, 0, 50, 10},
		{Top2Row(2), 0, 70, 10, 10},
		{Bottom2Row(0), 0, 20, 10, 10},
		{Fit2RowSpan(1, 2), 0, 40, 10, 50},
	}
	for _, tt := range tests {
		t.Run(tt.cond.Name(), func(t *testing.T) {
			page := gridPage(t)
			e := add(t, page, Attrs{W: Ptr(10.0), H: Ptr(10.0), Conditions: []Condition{tt.cond}})
			assert.False(t, tt.cond.Test(e, 0))
			require.True(t, tt.cond.Solve(e))
			assert.True(t, tt.cond.Test(e, 0))
			assert.InDelta(t, tt.left, e.Left(), 1e-9)
			assert.InDelta(t, tt.top, e.Top(), 1e-9)
			assert.InDelta(t, tt.w, e.W(), 1e-9)
			assert.InDelta(t, tt.h, e.H(), 1e-9)
		})
	}
}

func TestGridOutOfRangeDoesNotMutate(t *testing.T) {
	page := gridPage(t)
	for _, c := range []Condition{Left2Col(3), Right2Col(-1), Fit2ColSpan(2, 2), Fit2ColSpan(0, 0), Top2Row(5), Fit2RowSpan(2, 2)} {
		e := add(t, page, Attrs{X: Ptr(7.0), Y: Ptr(8.0), W: Ptr(10.0), H: Ptr(10.0)})
		assert.False(t, c.Solve(e), c.Name())
		assert.False(t, c.Test(e, 1000), c.Name())
		assert.Equal(t, [4]float64{7, 8, 10, 10}, [4]float64{e.X(), e.Y(), e.W(), e.H()}, c.Name())
	}
}

func TestGridRowsWithoutOriginTop(t *testing.T) {
	tree := NewTree()
	root, err := tree.Add(NoElement, "page", Attrs{W: Ptr(100.0), H: Ptr(100.0), Padding: []float64{10}})
	require.NoError(t, err)
	require.NoError(t, root.Set(KeyCH, 20.0))
	require.NoError(t, root.Set(KeyGH, 10.0))
	e := add(t, root, Attrs{H: Ptr(10.0), Conditions: []Condition{Fit2RowSpan(0, 2)}})

	require.True(t, Solve(root, nil).OK())
	assert.InDelta(t, 90, e.Top(), 1e-9, "rows start at the top of the content area")
	assert.InDelta(t, 40, e.Bottom(), 1e-9)
	assert.InDelta(t, 50, e.H(), 1e-9)
	assert.True(t, Evaluate(root, nil).OK())
}

func TestGridConditionNames(t *testing.T) {
	c, ok := ConditionByName("left2col(1)")
	require.True(t, ok)
	assert.Equal(t, "Left2Col(1)", c.Name())

	c, ok = ConditionByName("Fit2ColSpan(0, 2)")
	require.True(t, ok)
	assert.Equal(t, Fit2ColSpan(0, 2), c)

	for _, bad := range []string{"Left2Col(1,2)", "Left2Col(x)", "Fit2RowSpan(1)", "Left2Col", "Nowhere(1)"} {
		_, ok := ConditionByName(bad)
		assert.False(t, ok, bad)
	}

	assert.Equal(t, []string{"Left2Col(1)", "Fit2ColSpan(0,2)", "Top2Top"},
		SplitConditionNames("Left2Col(1), Fit2ColSpan(0, 2) Top2Top"))
	assert.Contains(t, ConditionNames(), "Fit2RowSpan(row,span)")
}

func TestBuildGridPlacement(t *testing.T) {
	dslText := `doc T v1 {
  page A4 origin top padding 10mm {
    cw: 40mm
    gw: 10mm
    ch: 30mm
    gh: 5mm
    rect name a h 20mm { conditions: [Fit2ColSpan(1, 2), Top2Row(0)] }
    rect name b w 20mm h 20mm { conditions: [Left2Col(3), Top2Row(1)] }
  }
}`
	page := buildWith(t, dslText, nil, BuildOptions{}).Pages[0]
	a := frameByName(t, page, "a")
	b := frameByName(t, page, "b")
	assert.Equal(t, [3]float64{60, 10, 90}, [3]float64{a.X, a.Y, a.Width})
	assert.Equal(t, [2]float64{160, 45}, [2]float64{b.X, b.Y})
	assert.Equal(t, 4, page.Score.Total)
	assert.Empty(t, page.Score.Failures)
}
