package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

func printPending(w io.Writer, pending []ApprovalView) {
	if len(pending) == 0 {
		fmt.Fprintln(w, "no pending requests")
		return
	}
	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(w, "%-38s %-12s %-12s %10s  %s\n", "REQUEST", "DEVICE", "TRANSITION", "FILES", "CREATED")
	for _, r := range pending {
		fmt.Fprintf(w, "%-38s %-12s %-12s %10d  %s\n",
			r.ID, r.DeviceID, r.FromTier+" -> "+r.ToTier, r.FileCount,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func printStatus(w io.Writer, devs []DeviceStatusView) {
	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(w, "%-12s %-8s %-6s %10s  %s\n", "DEVICE", "TIER", "STATE", "COUNT", "LAST SCAN")
	paused := color.New(color.FgYellow)
	for _, d := range devs {
		state := "active"
		c := (*color.Color)(nil)
		switch {
		case !d.Enabled:
			state = "off"
		case d.Paused:
			state = "paused"
			c = paused
		}
		last := "never"
		if d.LastScanAt != nil {
			last = d.LastScanAt.Format("2006-01-02 15:04")
		}
		line := fmt.Sprintf("%-12s %-8s %-6s %10d  %s\n",
			d.ID, d.CurrentTier, state, d.CountSinceThreshold, last)
		if c != nil {
			c.Fprint(w, line)
		} else {
			fmt.Fprint(w, line)
		}
	}
}

func printHistory(w io.Writer, entries []HistoryView) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no decisions recorded")
		return
	}
	approve := color.New(color.FgGreen)
	reject := color.New(color.FgYellow)
	for _, e := range entries {
		c := approve
		if e.Verdict == "reject" {
			c = reject
		}
		c.Fprintf(w, "%s  %-12s %-12s %-8s by %s\n",
			e.DecidedAt.Format("2006-01-02 15:04"), e.DeviceID,
			e.FromTier+" -> "+e.ToTier, e.Verdict, e.DecidedBy)
	}
}
