// Package collector enumerates a device's production directory in one bulk
// pass and produces a filtered, sorted timestamp snapshot for counting.
package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mfgquality/burnin/internal/common"
	"github.com/mfgquality/burnin/internal/config"
	"github.com/mfgquality/burnin/internal/logging"
	"github.com/mfgquality/burnin/internal/models"
)

// Filter is the pre-compiled form of the file filtering rules: extension
// lookups become O(1), patterns stay as-is.
type Filter struct {
	extensions map[string]struct{}
	patterns   []string
	minSize    int64
}

// NewFilter compiles the configured filtering rules.
func NewFilter(rules config.FileFilterConfig) *Filter {
	f := &Filter{
		patterns: rules.ExcludePatterns,
		minSize:  rules.MinFileSizeBytes,
	}
	if len(rules.IncludeExtensions) > 0 {
		f.extensions = make(map[string]struct{}, len(rules.IncludeExtensions))
		for _, ext := range rules.IncludeExtensions {
			f.extensions[strings.ToLower(ext)] = struct{}{}
		}
	}
	return f
}

// Match reports whether a directory entry counts as a produced file.
func (f *Filter) Match(name string, size int64) bool {
	if f.extensions != nil {
		if _, ok := f.extensions[strings.ToLower(filepath.Ext(name))]; !ok {
			return false
		}
	}
	for _, pattern := range f.patterns {
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return false
		}
	}
	if f.minSize > 0 && size < f.minSize {
		return false
	}
	return true
}

// Collector performs the bulk enumeration for one device directory at a
// time. It holds no per-device state; a failed device is simply skipped by
// the caller.
type Collector struct {
	filter  *Filter
	timeout time.Duration
	log     logging.Logger
}

func New(filter *Filter, timeout time.Duration, log logging.Logger) *Collector {
	return &Collector{
		filter:  filter,
		timeout: timeout,
		log:     log.With("module", "collector"),
	}
}

type enumeration struct {
	modTimes []time.Time
	err      error
}

// Collect enumerates dir once and returns the snapshot for deviceID:
// filtered modification times, normalized to UTC and sorted ascending.
//
// A missing directory yields an empty snapshot (the device has produced
// nothing yet). Permission failures and enumeration stalls past the
// configured timeout return ErrPathUnavailable; the caller isolates the
// failure to this device and retains its prior state.
func (c *Collector) Collect(ctx context.Context, deviceID, dir string) (*models.FileMetadataSnapshot, error) {
	captureTime := time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: enumerating %s: %v", common.ErrPathUnavailable, dir, err)
	}

	// ReadDir has no context support; run it on the side so a stalled
	// network mount fails fast instead of hanging the whole pass.
	done := make(chan enumeration, 1)
	go func() {
		done <- c.enumerate(ctx, dir)
	}()

	var result enumeration
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: enumerating %s: %v", common.ErrPathUnavailable, dir, ctx.Err())
	case result = <-done:
	}
	if result.err != nil {
		return nil, result.err
	}

	sort.Slice(result.modTimes, func(i, j int) bool {
		return result.modTimes[i].Before(result.modTimes[j])
	})

	return &models.FileMetadataSnapshot{
		DeviceID:    deviceID,
		ModTimes:    result.modTimes,
		CaptureTime: captureTime,
	}, nil
}

func (c *Collector) enumerate(ctx context.Context, dir string) enumeration {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Nothing produced yet; not an error condition.
			c.log.Debug(ctx, "device directory does not exist", "dir", dir)
			return enumeration{}
		}
		return enumeration{err: fmt.Errorf("%w: stat %s: %v", common.ErrPathUnavailable, dir, err)}
	}
	if !info.IsDir() {
		return enumeration{err: fmt.Errorf("%w: %s is not a directory", common.ErrMalformedSnapshot, dir)}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return enumeration{err: fmt.Errorf("%w: reading %s: %v", common.ErrPathUnavailable, dir, err)}
	}

	modTimes := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		// Info comes from the bulk ReadDir result, not a per-file stat.
		fi, err := entry.Info()
		if err != nil {
			c.log.Warn(ctx, "could not read file info, skipping entry",
				"dir", dir, "name", entry.Name(), "error", err)
			continue
		}
		if !c.filter.Match(entry.Name(), fi.Size()) {
			continue
		}
		modTimes = append(modTimes, fi.ModTime().UTC())
	}

	return enumeration{modTimes: modTimes}
}
