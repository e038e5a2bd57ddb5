package visuals

import (
	"context"
	"fmt"
	"io"
	"strings"

	"ganbarometer/internal/meter"
	"ganbarometer/internal/stats"

	"github.com/charmbracelet/lipgloss"
)

const barWidth = 30

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Width(16)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#59B7E0"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// Terminal renders reports as styled text.
type Terminal struct {
	Out io.Writer
}

// Publish writes r to Out.
func (t Terminal) Publish(_ context.Context, r meter.Report) error {
	_, err := fmt.Fprintln(t.Out, RenderTerminal(r))
	return err
}

// RenderTerminal lays out gauges, summary and histogram as bordered cards.
func RenderTerminal(r meter.Report) string {
	var blocks []string
	blocks = append(blocks, titleStyle.Render(fmt.Sprintf("GanbarOmeter · past %d hours", r.Interval)))
	if r.Notice != "" {
		blocks = append(blocks, noticeStyle.Render(r.Notice))
	}

	gauges := lipgloss.JoinVertical(lipgloss.Left,
		gauge("Difficulty", r.Difficulty),
		gauge("Pace", r.Pace),
	)
	blocks = append(blocks, cardStyle.Render(gauges))

	var rows []string
	for _, row := range summaryRows(r) {
		rows = append(rows, labelStyle.Render(row[0])+valueStyle.Render(row[1]))
	}
	summary := cardStyle.Render(strings.Join(rows, "\n"))
	histogram := cardStyle.Render(histogramBars(r.Histogram))
	blocks = append(blocks, lipgloss.JoinHorizontal(lipgloss.Top, summary, histogram))

	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func gauge(label string, v float64) string {
	return labelStyle.Render(label) + bar(v, barWidth) + valueStyle.Render(fmt.Sprintf(" %3d%%", percent(v)))
}

func bar(fraction float64, width int) string {
	filled := int(fraction*float64(width) + 0.5)
	filled = min(max(filled, 0), width)
	return barStyle.Render(strings.Repeat("█", filled)) + emptyStyle.Render(strings.Repeat("░", width-filled))
}

func histogramBars(hist stats.Histogram) string {
	maxVal := 0
	for _, b := range hist.Buckets {
		maxVal = max(maxVal, b.Count)
	}

	lines := []string{titleStyle.Render("Review Intervals")}
	for _, b := range hist.Buckets {
		fraction := 0.0
		if maxVal > 0 {
			fraction = float64(b.Count) / float64(maxVal)
		}
		lines = append(lines, fmt.Sprintf("%5s %s %d", b.Label, bar(fraction, 20), b.Count))
	}
	return strings.Join(lines, "\n")
}
