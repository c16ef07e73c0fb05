package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mfgquality/burnin/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func validDevices() map[string]any {
	return map[string]any{
		"DEV-A": map[string]any{
			"enabled":               true,
			"current_tier":          "24h",
			"production_start_date": "2026-01-10T00:00:00Z",
		},
		"DEV-B": map[string]any{
			"enabled":      true,
			"current_tier": "12h",
			"bootstrap_mode": true,
		},
	}
}

func Test_parseJson_LoadsAllSections(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"scan_path":             `\\nas01\production`,
		"device_subdir":         "BIU",
		"scan_timeout":          "90s",
		"scan_parallelism":      8,
		"database_dsn":          "postgres://scan:scan@db:5432/burnin",
		"endpoint_addr_http":    ":9090",
		"secret_key":            "k",
		"production_start_date": "2026-01-01T00:00:00Z",
		"devices":               validDevices(),
		"tier_requirements": map[string]any{
			"24h_to_12h": 250, "12h_to_6h": 500, "6h_to_3h": 750, "3h_to_2h": 1000,
		},
		"file_filtering": map[string]any{
			"include_extensions":  []string{".csv", ".log"},
			"exclude_patterns":    []string{"~*", "*.tmp"},
			"min_file_size_bytes": 128,
		},
		"email_settings": map[string]any{
			"enabled":     true,
			"smtp_server": "smtp.example.com",
			"smtp_port":   587,
			"recipients":  []string{"quality@example.com"},
		},
		"report_archive": map[string]any{
			"enabled":   true,
			"s3_bucket": "burnin-reports",
		},
	})

	os.Args = []string{"testbin", "-config", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseJson(cfg))

	assert.Equal(t, `\\nas01\production`, cfg.ScanRoot)
	assert.Equal(t, 90*time.Second, cfg.ScanTimeout)
	assert.Equal(t, 8, cfg.ScanParallelism)
	assert.Equal(t, ":9090", cfg.EndpointAddrHTTP)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), cfg.ProductionStartDate)

	require.Contains(t, cfg.Devices, "DEV-A")
	assert.Equal(t, "24h", cfg.Devices["DEV-A"].CurrentTier)
	assert.True(t, cfg.Devices["DEV-B"].Bootstrap)

	assert.Equal(t, []string{".csv", ".log"}, cfg.FileFiltering.IncludeExtensions)
	assert.Equal(t, int64(128), cfg.FileFiltering.MinFileSizeBytes)

	assert.True(t, cfg.Email.Enabled)
	assert.Equal(t, "smtp.example.com", cfg.Email.Host)

	assert.True(t, cfg.Archive.Enabled)
	assert.Equal(t, "burnin-reports", cfg.Archive.S3Bucket)

	require.NoError(t, cfg.Validate())
}

func Test_parseJson_NoConfigFlag_NoChanges(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := &Config{}
	cfg.LoadDefaults()
	want := *cfg
	require.NoError(t, parseJson(cfg))
	assert.Equal(t, want.ScanRoot, cfg.ScanRoot)
	assert.Equal(t, want.DatabaseDSN, cfg.DatabaseDSN)
}

func Test_parseJson_InvalidDate(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"production_start_date": "last tuesday",
	})
	os.Args = []string{"testbin", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	err := parseJson(cfg)
	assert.True(t, errors.Is(err, common.ErrConfiguration), "got %v", err)
}

func TestValidate_UnknownDeviceTier(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.ProductionStartDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg.Devices = map[string]DeviceConfig{
		"DEV-X": {Enabled: true, CurrentTier: "36h"},
	}

	err := cfg.Validate()
	assert.True(t, errors.Is(err, common.ErrConfiguration), "got %v", err)
}

func TestValidate_MissingProductionStart(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.Devices = map[string]DeviceConfig{
		"DEV-X": {Enabled: true, CurrentTier: "24h"},
	}

	err := cfg.Validate()
	assert.True(t, errors.Is(err, common.ErrConfiguration), "got %v", err)
}

func TestDeviceProductionStart_Fallback(t *testing.T) {
	global := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	own := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	cfg := &Config{
		ProductionStartDate: global,
		Devices: map[string]DeviceConfig{
			"DEV-A": {ProductionStartDate: own},
			"DEV-B": {},
		},
	}

	assert.Equal(t, own, cfg.DeviceProductionStart("DEV-A"))
	assert.Equal(t, global, cfg.DeviceProductionStart("DEV-B"))
	assert.Equal(t, global, cfg.DeviceProductionStart("missing"))
}
