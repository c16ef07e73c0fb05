package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mfgquality/burnin/internal/tier"
)

// PrintSummary writes a human-readable pass summary to w. Devices that
// created an advancement request are highlighted, failures are printed in
// red.
func PrintSummary(w io.Writer, r *Report) {
	header := color.New(color.FgCyan, color.Bold)
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed)

	header.Fprintf(w, "Scan pass %s (%s)\n",
		r.StartedAt.Format("2006-01-02 15:04:05"),
		r.FinishedAt.Sub(r.StartedAt).Round(1e6))

	for _, d := range r.Devices {
		switch {
		case d.Error != "":
			fail.Fprintf(w, "  %-12s ERROR  %s\n", d.DeviceID, d.Error)
		case d.Skipped:
			fmt.Fprintf(w, "  %-12s %-4s skipped\n", d.DeviceID, d.Tier)
		case d.Requested:
			warn.Fprintf(w, "  %-12s %-4s +%d files (%d accumulated), advancement pending approval\n",
				d.DeviceID, d.Tier, d.NewFiles, d.Count)
		default:
			ok.Fprintf(w, "  %-12s %-4s +%d files (%d accumulated, %d total)\n",
				d.DeviceID, d.Tier, d.NewFiles, d.Count, d.Total)
		}
	}

	if len(r.TierDistribution) > 0 {
		header.Fprintln(w, "Tier distribution")
		for _, t := range tier.Sequence {
			if n := r.TierDistribution[string(t)]; n > 0 {
				fmt.Fprintf(w, "  %-4s %d\n", t, n)
			}
		}
	}

	if r.Failed > 0 {
		fail.Fprintf(w, "%d device(s) failed\n", r.Failed)
	}
}
