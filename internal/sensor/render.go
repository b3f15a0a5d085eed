package sensor

import (
	"fmt"
	"io"
	"strings"
)

// Render writes the full report as text: the complete group table followed
// by the two ranked views.
func Render(w io.Writer, rep *Report) error {
	var b strings.Builder

	b.WriteString("\n\nAGGREGATION RESULTS\n")
	b.WriteString(strings.Repeat("-", 65) + "\n")
	fmt.Fprintf(&b, "\nTotal device+site+metric combinations: %d\n\n", len(rep.Groups))

	fmt.Fprintf(&b, "%-20s %-10s %-15s %10s %10s %10s %8s %10s\n",
		"Device", "Site", "Metric", "Avg", "Min", "Max", "Count", "StdDev")
	b.WriteString(strings.Repeat("-", 100) + "\n")
	for _, g := range rep.Groups {
		fmt.Fprintf(&b, "%-20s %-10s %-15s %10.2f %10.2f %10.2f %8d %10.2f\n",
			g.Key.Device, g.Key.Site, g.Key.Metric, g.Mean, g.Min, g.Max, g.Count, g.StdDev)
	}

	b.WriteString("\n\nTOP 10 BY AVERAGE VALUE\n")
	b.WriteString(strings.Repeat("-", 65) + "\n")
	renderTop(&b, rep.TopByMean, "Average", func(g GroupSummary) float64 { return g.Mean })

	b.WriteString("\n\nTOP 10 BY STANDARD DEVIATION (HIGHEST VARIABILITY)\n")
	b.WriteString(strings.Repeat("-", 65) + "\n")
	renderTop(&b, rep.TopByStdDev, "StdDev", func(g GroupSummary) float64 { return g.StdDev })

	_, err := io.WriteString(w, b.String())
	return err
}

func renderTop(b *strings.Builder, top []GroupSummary, column string, value func(GroupSummary) float64) {
	fmt.Fprintf(b, "%-6s %-20s %-10s %-15s %10s\n", "Rank", "Device", "Site", "Metric", column)
	b.WriteString(strings.Repeat("-", 65) + "\n")
	for i, g := range top {
		fmt.Fprintf(b, "%-6d %-20s %-10s %-15s %10.2f\n",
			i+1, g.Key.Device, g.Key.Site, g.Key.Metric, value(g))
	}
}
