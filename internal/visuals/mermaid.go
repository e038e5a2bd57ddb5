package visuals

import (
	"fmt"
	"math"
	"strings"

	"ganbarometer/internal/meter"
	"ganbarometer/internal/stats"
)

// GenerateLatencyChart creates a Mermaid bar chart of the review-interval histogram.
func GenerateLatencyChart(hist stats.Histogram) string {
	if len(hist.Buckets) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0

	for _, b := range hist.Buckets {
		labels = append(labels, fmt.Sprintf("%q", b.Label))
		values = append(values, fmt.Sprintf("%d", b.Count))
		if b.Count > maxVal {
			maxVal = b.Count
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Review Intervals\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Reviews\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// maxChartSessions caps the session chart so long lookbacks stay readable.
const maxChartSessions = 30

// GenerateSessionChart creates a Mermaid chart of reviews and misses for the
// most recent sessions.
func GenerateSessionChart(sessions []stats.Session) string {
	var recent []stats.Session
	for _, s := range sessions {
		if s.Count > 0 {
			recent = append(recent, s)
		}
	}
	if len(recent) > maxChartSessions {
		recent = recent[len(recent)-maxChartSessions:]
	}

	var labels, counts, misses []string
	maxVal := 0
	for _, s := range recent {
		labels = append(labels, fmt.Sprintf("\"%s\"", s.Start.Local().Format("01/02 15:04")))
		counts = append(counts, fmt.Sprintf("%d", s.Count))
		misses = append(misses, fmt.Sprintf("%d", s.MissCount))
		if s.Count > maxVal {
			maxVal = s.Count
		}
	}
	if len(labels) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Review Sessions\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Reviews\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(counts, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(misses, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateGaugeChart creates a Mermaid bar chart of the two gauges as percentages.
func GenerateGaugeChart(r meter.Report) string {
	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"GanbarOmeter\"\n")
	sb.WriteString("    x-axis [\"Difficulty\", \"Pace\"]\n")
	sb.WriteString("    y-axis \"Percent\" 0 --> 100\n")
	sb.WriteString(fmt.Sprintf("    bar [%d, %d]\n", percent(r.Difficulty), percent(r.Pace)))
	sb.WriteString("```")
	return sb.String()
}

// Markdown renders the full report as a Markdown document with embedded charts.
func Markdown(r meter.Report) string {
	var sb strings.Builder
	sb.WriteString("# GanbarOmeter\n\n")
	if r.Notice != "" {
		sb.WriteString(fmt.Sprintf("> %s\n\n", r.Notice))
	}
	sb.WriteString(fmt.Sprintf("Past %d hours, generated %s.\n\n", r.Interval, r.GeneratedAt.Local().Format("2006-01-02 15:04")))

	sb.WriteString("| Metric | Value |\n|---|---|\n")
	for _, row := range summaryRows(r) {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", row[0], row[1]))
	}
	sb.WriteString("\n")

	bg := r.Settings.BackgroundColor
	sb.WriteString(withBackground(GenerateGaugeChart(r), bg))
	sb.WriteString("\n\n")
	sb.WriteString(withBackground(GenerateLatencyChart(r.Histogram), bg))
	if chart := GenerateSessionChart(r.Sessions); chart != "" {
		sb.WriteString("\n\n")
		sb.WriteString(withBackground(chart, bg))
	}
	sb.WriteString("\n")
	return sb.String()
}

// withBackground prepends a Mermaid init directive that paints the chart
// background with the configured colour.
func withBackground(chart, color string) string {
	if chart == "" || color == "" {
		return chart
	}
	directive := fmt.Sprintf("%%%%{init: {\"themeVariables\": {\"background\": %q}}}%%%%\n", color)
	return strings.Replace(chart, "```mermaid\n", "```mermaid\n"+directive, 1)
}

func percent(v float64) int {
	return int(math.Floor(v*100 + 0.5))
}

// summaryRows lists the headline figures shared by every renderer.
func summaryRows(r meter.Report) [][2]string {
	spr := "n/a"
	if r.SecondsPerReview != nil {
		spr = fmt.Sprintf("%ds", *r.SecondsPerReview)
	}
	sessions := 0
	for _, s := range r.Sessions {
		if s.Count > 0 {
			sessions++
		}
	}
	return [][2]string{
		{"Difficulty", fmt.Sprintf("%d%%", percent(r.Difficulty))},
		{"Pace", fmt.Sprintf("%d%%", percent(r.Pace))},
		{"Reviews/day", fmt.Sprintf("%d", r.ReviewsPerDay)},
		{"Misses/day", fmt.Sprintf("%d (%+d over allowed)", r.MissesPerDay, r.ExtraMissesPerDay)},
		{"Seconds/review", spr},
		{"Apprentice", fmt.Sprintf("%d (%d new kanji)", r.ApprenticeCount, r.NewKanjiCount)},
		{"Sessions", fmt.Sprintf("%d over %.0f minutes", sessions, r.TotalMinutes)},
		{"Reviewed", fmt.Sprintf("%d in %d days", r.ReviewedCount, r.ReviewDays)},
	}
}
