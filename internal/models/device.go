// Package models holds the persisted domain records shared by the scanner,
// the state manager and the approval service.
package models

import "time"

// Tier is a named burn-in stage. Tiers are ordered from slowest cycle to
// fastest; Tier2h is terminal.
type Tier string

const (
	Tier24h Tier = "24h"
	Tier12h Tier = "12h"
	Tier6h  Tier = "6h"
	Tier3h  Tier = "3h"
	Tier2h  Tier = "2h"
)

// Device is the versioned, persisted record of one manufactured device
// under burn-in. All mutations go through the state manager; Version is
// the optimistic-concurrency counter and strictly increases on every
// committed change.
type Device struct {
	ID                  string
	Enabled             bool
	CurrentTier         Tier
	CountSinceThreshold int64
	LastScanAt          *time.Time
	ProductionStart     time.Time
	Bootstrap           bool
	BootstrapCompleted  bool
	Paused              bool
	ExcludeFinal        bool
	Version             int64
}

// CutoffFor returns the reference time after which a file counts as new:
// the later of the last committed scan and the production start. A device
// that has never been scanned uses the production start alone.
func (d *Device) CutoffFor() time.Time {
	if d.LastScanAt == nil || d.LastScanAt.Before(d.ProductionStart) {
		return d.ProductionStart
	}
	return *d.LastScanAt
}
