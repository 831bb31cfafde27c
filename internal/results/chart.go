package results

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

const (
	defaultChartHeight = 8
	minChartWidth      = 10
	chartAxisTop       = "100%"
	chartAxisMid       = " 50%"
	chartAxisBottom    = "  0%"
	chartAxisSep       = " │ "
)

// chartLine is one plotted series. Values are percentages in [0, 100].
type chartLine struct {
	name   string
	values []float64
	style  lipgloss.Style
	dash   int
}

var chartStyles = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("#40A9FF")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")),
}

// ChartWidthFor returns the plot width that fits the axis into totalWidth.
func ChartWidthFor(totalWidth int) int {
	axis := utf8.RuneCountInString(chartAxisTop) + utf8.RuneCountInString(chartAxisSep)
	if totalWidth-axis < minChartWidth {
		return minChartWidth
	}
	return totalWidth - axis
}

// RenderTrendChart draws attempt percentages and their moving average as a
// braille line chart on a fixed 0-100% scale.
func RenderTrendChart(w io.Writer, h History, window, width, height int) error {
	if len(h.Percentages) == 0 {
		return nil
	}
	if width < minChartWidth {
		width = minChartWidth
	}
	if height <= 0 {
		height = defaultChartHeight
	}
	if window <= 0 {
		window = 1
	}
	lines := []chartLine{
		{name: "Score", values: h.Percentages, style: chartStyles[0], dash: 1},
		{name: fmt.Sprintf("Avg(%d)", window), values: MovingAverage(h.Percentages, window), style: chartStyles[1], dash: 2},
	}

	grids := make([][][]uint8, len(lines))
	for i, l := range lines {
		grids[i] = plotLine(resample(l.values, width), width, height, l.dash)
	}

	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(axisLabel(y, height))
		row.WriteString(chartAxisSep)
		for x := 0; x < width; x++ {
			mask, owner := mergeCell(grids, x, y)
			ch := string(rune(0x2800 + int(mask)))
			if owner >= 0 {
				ch = lines[owner].style.Render(ch)
			}
			row.WriteString(ch)
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}

	legend := make([]string, 0, len(lines))
	for _, l := range lines {
		legend = append(legend, l.style.Render("⠉ "+l.name))
	}
	_, err := fmt.Fprintln(w, strings.Repeat(" ", utf8.RuneCountInString(chartAxisTop+chartAxisSep))+strings.Join(legend, "  "))
	return err
}

func axisLabel(y, height int) string {
	switch {
	case y == 0:
		return chartAxisTop
	case y == height-1:
		return chartAxisBottom
	case height > 2 && y == height/2:
		return chartAxisMid
	default:
		return strings.Repeat(" ", utf8.RuneCountInString(chartAxisTop))
	}
}

// plotLine rasterizes values into braille cells, two dots wide and four
// tall per cell. dash > 1 skips every other run of dots.
func plotLine(values []float64, width, height, dash int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	dots := height * 4
	prevX, prevY := -1, -1
	for x, v := range values {
		px, py := x*2, percentToRow(v, dots)
		plot := func(dx, dy int) {
			if dash <= 1 || (dx/dash)%2 == 0 {
				setDot(cells, dx, dy)
			}
		}
		if prevX < 0 {
			plot(px, py)
		} else {
			bresenham(prevX, prevY, px, py, plot)
		}
		prevX, prevY = px, py
	}
	return cells
}

func percentToRow(v float64, dots int) int {
	v = math.Max(0, math.Min(100, v))
	return int(math.Round((1 - v/100) * float64(dots-1)))
}

func mergeCell(grids [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	owner := -1
	for i, g := range grids {
		if m := g[y][x]; m != 0 {
			if owner < 0 {
				owner = i
			}
			mask |= m
		}
	}
	return mask, owner
}

// resample stretches or averages values to exactly width points.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == 1:
		for i := range out {
			out[i] = values[0]
		}
	case n > width:
		for i := range out {
			start := i * n / width
			end := (i + 1) * n / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	default:
		for i := range out {
			pos := 0.0
			if width > 1 {
				pos = float64(i) * float64(n-1) / float64(width-1)
			}
			idx := int(pos)
			if idx >= n-1 {
				out[i] = values[n-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func setDot(cells [][]uint8, x, y int) {
	cy, cx := y/4, x/2
	if y < 0 || x < 0 || cy >= len(cells) || cx >= len(cells[cy]) {
		return
	}
	cells[cy][cx] |= dotBits[x%2][y%4]
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
