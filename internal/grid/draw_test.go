package grid

import (
	"strings"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func headerOptions() Options {
	o := testOptions()
	o.ShowColumnHeader = true
	return o
}

func viewLines(g *Grid) []string {
	lines := strings.Split(ansi.Strip(g.View()), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}

func TestGrid_View(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, newSliceSource(10), testColumns(3, 6), headerOptions(), 19, 6)
	lines := viewLines(g)
	require.Len(t, lines, 6)
	require.Equal(t, "A     B     C", lines[0])
	require.Equal(t, "0     0     0     ┃", lines[1])
	require.Equal(t, "1     10    100   ┃", lines[2])
	require.Equal(t, "2     20    200   │", lines[3])
	require.Equal(t, "4     40    400   │", lines[5])
}

func TestGrid_ViewWideCharacters(t *testing.T) {
	t.Parallel()

	src := newSliceSource(3)
	src.items[0]["a"] = "日本語"
	src.items[1]["a"] = "日本語です"
	g := newTestGrid(t, src, testColumns(2, 6), testOptions(), 13, 3)
	lines := viewLines(g)
	require.True(t, strings.HasPrefix(lines[0], "日本語0"), lines[0])
	require.True(t, strings.HasPrefix(lines[1], "日本…"), lines[1])
}

func TestGrid_ViewChromeRows(t *testing.T) {
	t.Parallel()

	opts := headerOptions()
	opts.ShowHeaderRow = true
	opts.ShowFooterRow = true
	opts.HeaderRowContent = func(c *Column) string { return "~" + c.ID }
	opts.FooterRowContent = func(c *Column) string { return "=" + c.ID }
	g := newTestGrid(t, newSliceSource(10), testColumns(2, 5), opts, 11, 6)

	lines := viewLines(g)
	require.Equal(t, "~a   ~b", lines[1])
	require.Equal(t, "0    0    ┃", lines[2])
	require.Equal(t, "=a   =b", lines[5])

	require.Equal(t, ZoneHeader, g.GetCellFromEvent(0, 0).Zone)
	require.Equal(t, ZoneHeaderRow, g.GetCellFromEvent(0, 1).Zone)
	require.Equal(t, ZoneFooterRow, g.GetCellFromEvent(6, 5).Zone)
	require.Equal(t, 1, g.GetCellFromEvent(6, 5).Cell)
}

func TestGrid_GetCellFromEvent(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, newSliceSource(10), testColumns(3, 6), headerOptions(), 19, 6)
	g.View()

	p := g.GetCellFromEvent(7, 2)
	require.Equal(t, ZoneViewport, p.Zone)
	require.Equal(t, Coord{Row: 1, Cell: 1}, p.Coord())
	require.InDelta(t, 1.0/6, p.CellFraction, 1e-9)
	require.Nil(t, p.Span)

	p = g.GetCellFromEvent(8, 0)
	require.Equal(t, ZoneHeader, p.Zone)
	require.Equal(t, -1, p.Row)
	require.Equal(t, 1, p.Cell)

	p = g.GetCellFromEvent(18, 3)
	require.Equal(t, ZoneScrollbar, p.Zone)
	require.Equal(t, 2, p.Row)

	p = g.GetCellFromEvent(50, 50)
	require.Equal(t, ZoneOutside, p.Zone)
	require.Equal(t, Coord{Row: 4, Cell: 2}, p.Coord())

	p = g.GetCellFromEvent(-3, 3)
	require.Equal(t, ZoneOutside, p.Zone)
	require.Equal(t, Coord{Row: 2, Cell: 0}, p.Coord())
}

func TestGrid_DrawAtOffset(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, newSliceSource(10), testColumns(3, 6), headerOptions(), 19, 6)
	scr := uv.NewScreenBuffer(30, 10)
	g.Draw(&scr, uv.Rect(5, 2, 19, 6))

	require.Equal(t, "A", scr.CellAt(5, 2).Content)
	require.Equal(t, "0", scr.CellAt(5, 3).Content)
	require.Equal(t, "1", scr.CellAt(11, 4).Content)
	require.Equal(t, " ", scr.CellAt(0, 3).Content, "cells left of the area are untouched")

	p := g.GetCellFromEvent(12, 4)
	require.Equal(t, ZoneViewport, p.Zone)
	require.Equal(t, Coord{Row: 1, Cell: 1}, p.Coord())
	require.Equal(t, ZoneOutside, g.GetCellFromEvent(0, 0).Zone)
}

func TestGrid_GetCellFromEventOnSpan(t *testing.T) {
	t.Parallel()

	src := newSliceSource(10)
	src.meta[1] = &ItemMetadata{ColumnsByIndex: map[int]*ColumnMetadata{0: {Colspan: 2}}}
	g := newTestGrid(t, src, testColumns(3, 6), headerOptions(), 19, 6)
	g.View()

	require.Equal(t, 12, g.cache.Node(1, 0).Width)
	require.Nil(t, g.cache.Node(1, 1))

	p := g.GetCellFromEvent(8, 2)
	require.Equal(t, Coord{Row: 1, Cell: 0}, p.Coord(), "the owner of the span is hit")
	require.NotNil(t, p.Span)
	require.Equal(t, 2, p.Span.Colspan)
}

func TestGrid_GetCellFromPoint(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, newSliceSource(10), testColumns(3, 6), testOptions(), 19, 5)

	p := g.GetCellFromPoint(0, 100, false)
	require.Equal(t, 100, p.Row)
	require.Nil(t, p.Span)

	p = g.GetCellFromPoint(0, 100, true)
	require.Equal(t, 9, p.Row)

	p = g.GetCellFromPoint(40, 3, false)
	require.Equal(t, 3, p.Row)
	require.Greater(t, p.Cell, 2)

	p = g.GetCellFromPoint(40, 3, true)
	require.Equal(t, 2, p.Cell)
}

func TestGrid_ScrollbarThumbFollowsScroll(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, newSliceSource(10), testColumns(3, 6), testOptions(), 19, 5)
	g.ScrollTo(5)
	lines := viewLines(g)
	require.True(t, strings.HasSuffix(lines[0], "│"))
	require.True(t, strings.HasSuffix(lines[4], "┃"))
	require.True(t, strings.HasPrefix(lines[0], "5"))
}
