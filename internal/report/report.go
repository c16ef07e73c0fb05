// Package report renders a scan pass into a JSON report and optionally
// archives it to S3-compatible storage.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mfgquality/burnin/internal/scanner"
)

// DeviceEntry is one device's line in a pass report.
type DeviceEntry struct {
	DeviceID  string `json:"device_id"`
	Skipped   bool   `json:"skipped"`
	Tier      string `json:"tier,omitempty"`
	Count     int64  `json:"count_since_threshold"`
	NewFiles  int64  `json:"new_files"`
	Total     int64  `json:"total_files"`
	Requested bool   `json:"request_created"`
	Error     string `json:"error,omitempty"`
}

// Report is the archived record of one scan pass.
type Report struct {
	StartedAt        time.Time      `json:"started_at"`
	FinishedAt       time.Time      `json:"finished_at"`
	Devices          []DeviceEntry  `json:"devices"`
	TierDistribution map[string]int `json:"tier_distribution"`
	Failed           int            `json:"failed"`
}

// Build converts a pass report into its archival form. The tier
// distribution counts every device whose tier is known, including skipped
// ones; a device that failed before its record was read has no tier and is
// left out.
func Build(pass *scanner.PassReport) *Report {
	r := &Report{
		StartedAt:        pass.StartedAt,
		FinishedAt:       pass.FinishedAt,
		TierDistribution: map[string]int{},
		Failed:           pass.Failed(),
	}
	for _, res := range pass.Results {
		entry := DeviceEntry{
			DeviceID:  res.DeviceID,
			Skipped:   res.Skipped,
			Tier:      string(res.Tier),
			Count:     res.Count,
			NewFiles:  res.NewFiles,
			Total:     res.Total,
			Requested: res.Requested,
		}
		if res.Err != nil {
			entry.Error = res.Err.Error()
		}
		if entry.Tier != "" {
			r.TierDistribution[entry.Tier]++
		}
		r.Devices = append(r.Devices, entry)
	}
	return r
}

// Marshal renders the report as indented JSON.
func (r *Report) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// StorageKey names the report object: one file per pass, grouped by day.
func (r *Report) StorageKey() string {
	return fmt.Sprintf("reports/%s/pass-%s.json",
		r.StartedAt.UTC().Format("2006/01/02"),
		r.StartedAt.UTC().Format("150405"))
}
