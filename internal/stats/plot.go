package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Series is one plotted line on a fixed value range.
type Series struct {
	Name   string
	Values []float64
	Min    float64
	Max    float64
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelWidth      = 3
	terminalWidthBackup = 80
)

// Tick labels are drawn on five rows, like a 0/25/50/75/100 scale.
const axisTicks = 5

var seriesColors = []lipgloss.Color{"2", "4", "3", "5", "6"}

// braille dot bits indexed by [row][column] inside one cell.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

type canvas struct {
	cols, rows int
	layers     [][]uint8
}

func newCanvas(cols, rows, layers int) *canvas {
	c := &canvas{cols: cols, rows: rows, layers: make([][]uint8, layers)}
	for i := range c.layers {
		c.layers[i] = make([]uint8, cols*rows)
	}
	return c
}

func (c *canvas) set(layer, x, y int) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	c.layers[layer][(y/4)*c.cols+x/2] |= brailleBits[y%4][x%2]
}

func (c *canvas) line(layer, x0, y0, x1, y1 int) {
	steps := max(abs(x1-x0), abs(y1-y0))
	if steps == 0 {
		c.set(layer, x0, y0)
		return
	}
	for k := 0; k <= steps; k++ {
		f := float64(k) / float64(steps)
		x := int(math.Round(float64(x0) + f*float64(x1-x0)))
		y := int(math.Round(float64(y0) + f*float64(y1-y0)))
		c.set(layer, x, y)
	}
}

// cell returns the merged dots of a cell and the first layer drawing in it.
func (c *canvas) cell(x, y int) (rune, int) {
	var mask uint8
	owner := -1
	for i, l := range c.layers {
		m := l[y*c.cols+x]
		if m == 0 {
			continue
		}
		if owner < 0 {
			owner = i
		}
		mask |= m
	}
	return rune(0x2800 + int(mask)), owner
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func dotRow(v, lo, hi float64, dots int) int {
	if hi <= lo {
		hi = lo + 1
	}
	pos := (v - lo) / (hi - lo)
	pos = math.Max(0, math.Min(1, pos))
	return int(math.Round((1 - pos) * float64(dots-1)))
}

// PlotSeries renders series as a braille line chart. The first series
// labels the left axis and the second, when present, the right axis.
func PlotSeries(w io.Writer, title string, series []Series, width, height int, useColor bool) error {
	series = nonEmpty(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	cv := newCanvas(width, height, len(series))
	dotW, dotH := width*2, height*4
	for si, s := range series {
		n := len(s.Values)
		prevX, prevY := -1, -1
		for i, v := range s.Values {
			x := dotW / 2
			if n > 1 {
				x = i * (dotW - 1) / (n - 1)
			}
			y := dotRow(v, s.Min, s.Max, dotH)
			if prevX < 0 {
				cv.set(si, x, y)
			} else {
				cv.line(si, prevX, prevY, x, y)
			}
			prevX, prevY = x, y
		}
	}

	styles := make([]lipgloss.Style, len(series))
	for i := range series {
		styles[i] = lipgloss.NewStyle().Foreground(seriesColors[i%len(seriesColors)])
	}

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	left := tickLabels(series[0], height)
	var right []string
	if len(series) > 1 {
		right = tickLabels(series[1], height)
	}
	for y := 0; y < height; y++ {
		var b strings.Builder
		fmt.Fprintf(&b, "%*s ┤", axisLabelWidth, left[y])
		for x := 0; x < width; x++ {
			ch, owner := cv.cell(x, y)
			if useColor && owner >= 0 {
				b.WriteString(styles[owner].Render(string(ch)))
				continue
			}
			b.WriteRune(ch)
		}
		if right != nil {
			fmt.Fprintf(&b, "├ %s", right[y])
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}

	parts := make([]string, 0, len(series))
	for i, s := range series {
		side := "left"
		if i == 1 {
			side = "right"
		}
		label := fmt.Sprintf("⣿ %s (%s %.0f-%.0f)", s.Name, side, s.Min, s.Max)
		if useColor {
			label = styles[i].Render(label)
		}
		parts = append(parts, label)
	}
	if _, err := fmt.Fprintln(w, "Legend: "+strings.Join(parts, "  ")); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func nonEmpty(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func tickLabels(s Series, height int) []string {
	labels := make([]string, height)
	ticks := min(axisTicks, height)
	if ticks < 2 {
		labels[0] = fmt.Sprintf("%.0f", s.Max)
		return labels
	}
	for i := 0; i < ticks; i++ {
		row := i * (height - 1) / (ticks - 1)
		v := s.Max - float64(i)*(s.Max-s.Min)/float64(ticks-1)
		labels[row] = fmt.Sprintf("%.0f", v)
	}
	return labels
}

// PlotWidthFor computes a chart width that fits two axes into totalWidth.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axes := 2 * (axisLabelWidth + 2)
	return max(totalWidth-axes, minPlotWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// UseColor reports whether w is a terminal.
func UseColor(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// WPMAxisMax is the top of the speed axis: the fastest session rounded up
// to a multiple of ten, at least 50.
func WPMAxisMax(wpms []float64) float64 {
	top := 50
	for _, v := range wpms {
		if int(math.Ceil(v)) > top {
			top = int(math.Ceil(v))
		}
	}
	return float64((top + 9) / 10 * 10)
}
