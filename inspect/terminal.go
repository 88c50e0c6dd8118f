package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"
)

// DefaultWidth is the number of sparkline columns per curve
const DefaultWidth = 72

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// TerminalPlotter draws each curve as a one-line sparkline
type TerminalPlotter struct {
	out   io.Writer
	width int

	title lipgloss.Style
	label lipgloss.Style
	line  lipgloss.Style
	dim   lipgloss.Style
}

// NewTerminalPlotter creates a plotter writing to out. A non-positive width
// selects DefaultWidth.
func NewTerminalPlotter(out io.Writer, width int) *TerminalPlotter {
	if width <= 0 {
		width = DefaultWidth
	}
	return &TerminalPlotter{
		out:   out,
		width: width,
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f")),
		label: lipgloss.NewStyle().Bold(true),
		line:  lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff9f")),
		dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681")),
	}
}

// Plot writes the title followed by one labeled sparkline per curve
func (p *TerminalPlotter) Plot(title string, curves []Curve) error {
	var b strings.Builder
	b.WriteString(p.title.Render(title))
	b.WriteByte('\n')

	for _, c := range curves {
		b.WriteString(p.label.Render(c.Label))
		b.WriteByte('\n')

		if len(c.Y) == 0 {
			b.WriteString(p.dim.Render("  (empty)"))
			b.WriteByte('\n')
			continue
		}

		b.WriteString("  ")
		b.WriteString(p.line.Render(Sparkline(c.Y, p.width)))
		b.WriteByte('\n')

		lo, hi := floats.Min(c.Y), floats.Max(c.Y)
		axis := fmt.Sprintf("  %s %.4g..%.4g  %s %.4g..%.4g",
			c.XLabel, first(c.X), last(c.X), c.YLabel, lo, hi)
		b.WriteString(p.dim.Render(axis))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(p.out, b.String())
	return err
}

// Sparkline reduces y to at most width columns, keeping the peak of each
// bucket, and maps the peaks onto eight bar heights.
func Sparkline(y []float64, width int) string {
	if len(y) == 0 || width <= 0 {
		return ""
	}
	cols := downsampleMax(y, width)

	lo, hi := floats.Min(cols), floats.Max(cols)
	span := hi - lo

	var b strings.Builder
	for _, v := range cols {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkRunes)-1))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

func downsampleMax(y []float64, width int) []float64 {
	if len(y) <= width {
		out := make([]float64, len(y))
		copy(out, y)
		return out
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(y) / width
		end := (i + 1) * len(y) / width
		out[i] = floats.Max(y[start:end])
	}
	return out
}

func first(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return x[0]
}

func last(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return x[len(x)-1]
}
