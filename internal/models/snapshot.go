package models

import "time"

// FileMetadataSnapshot is the result of one bulk directory enumeration for
// a device: modification timestamps, UTC-normalized and sorted ascending.
type FileMetadataSnapshot struct {
	DeviceID    string
	ModTimes    []time.Time
	CaptureTime time.Time
}

// TotalFiles returns the number of files that survived filtering.
func (s *FileMetadataSnapshot) TotalFiles() int {
	return len(s.ModTimes)
}
