package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mfgquality/burnin/internal/common"
	"github.com/mfgquality/burnin/internal/flagx"
	"github.com/mfgquality/burnin/internal/timex"
)

// jsonConfig is the DTO for reading JSON configuration files. Duration
// fields accept both strings ("90s") and integer nanoseconds; dates are
// RFC 3339. After unmarshalling, its fields are copied into the runtime
// Config.
type jsonConfig struct {
	ScanRoot              string                      `json:"scan_path"`
	DeviceSubdir          string                      `json:"device_subdir"`
	ScanTimeout           *timex.Duration             `json:"scan_timeout"`
	ScanParallelism       *int                        `json:"scan_parallelism"`
	DatabaseDSN           string                      `json:"database_dsn"`
	EndpointAddrHTTP      string                      `json:"endpoint_addr_http"`
	SecretKey             string                      `json:"secret_key"`
	TokenValidityDuration *timex.Duration             `json:"token_validity_duration"`
	ProductionStartDate   string                      `json:"production_start_date"`
	Devices               map[string]jsonDeviceConfig `json:"devices"`
	TierRequirements      map[string]int64            `json:"tier_requirements"`
	FileFiltering         *jsonFileFilterConfig       `json:"file_filtering"`
	Email                 *jsonEmailConfig            `json:"email_settings"`
	Archive               *jsonArchiveConfig          `json:"report_archive"`
}

type jsonDeviceConfig struct {
	Enabled             bool   `json:"enabled"`
	CurrentTier         string `json:"current_tier"`
	ProductionStartDate string `json:"production_start_date"`
	Bootstrap           bool   `json:"bootstrap_mode"`
	Exclude2h           bool   `json:"exclude_2h"`
	Description         string `json:"description"`
}

type jsonFileFilterConfig struct {
	IncludeExtensions []string `json:"include_extensions"`
	ExcludePatterns   []string `json:"exclude_patterns"`
	MinFileSizeBytes  int64    `json:"min_file_size_bytes"`
}

type jsonEmailConfig struct {
	Enabled      bool     `json:"enabled"`
	Host         string   `json:"smtp_server"`
	Port         int      `json:"smtp_port"`
	Username     string   `json:"username"`
	Password     string   `json:"password"`
	UseTLS       bool     `json:"use_tls"`
	Recipients   []string `json:"recipients"`
	DashboardURL string   `json:"dashboard_url"`
}

type jsonArchiveConfig struct {
	Enabled        bool   `json:"enabled"`
	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q: %v", common.ErrConfiguration, s, err)
	}
	return t.UTC(), nil
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c / -config flags; when
// neither is set, no JSON file is loaded. Only fields present in the file
// override the defaults.
func parseJson(config *Config) error {

	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", common.ErrConfiguration, jsonConfigFile, err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", common.ErrConfiguration, jsonConfigFile, err)
	}

	if c.ScanRoot != "" {
		config.ScanRoot = c.ScanRoot
	}
	if c.DeviceSubdir != "" {
		config.DeviceSubdir = c.DeviceSubdir
	}
	if c.ScanTimeout != nil {
		config.ScanTimeout = c.ScanTimeout.Duration
	}
	if c.ScanParallelism != nil {
		config.ScanParallelism = *c.ScanParallelism
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.ProductionStartDate != "" {
		d, err := parseDate(c.ProductionStartDate)
		if err != nil {
			return err
		}
		config.ProductionStartDate = d
	}
	if c.TierRequirements != nil {
		config.TierRequirements = c.TierRequirements
	}
	if c.FileFiltering != nil {
		config.FileFiltering = FileFilterConfig{
			IncludeExtensions: c.FileFiltering.IncludeExtensions,
			ExcludePatterns:   c.FileFiltering.ExcludePatterns,
			MinFileSizeBytes:  c.FileFiltering.MinFileSizeBytes,
		}
	}
	if c.Email != nil {
		config.Email = EmailConfig{
			Enabled:      c.Email.Enabled,
			Host:         c.Email.Host,
			Port:         c.Email.Port,
			Username:     c.Email.Username,
			Password:     c.Email.Password,
			UseTLS:       c.Email.UseTLS,
			Recipients:   c.Email.Recipients,
			DashboardURL: c.Email.DashboardURL,
		}
	}
	if c.Archive != nil {
		config.Archive = ArchiveConfig{
			Enabled:        c.Archive.Enabled,
			S3RootUser:     c.Archive.S3RootUser,
			S3RootPassword: c.Archive.S3RootPassword,
			S3Bucket:       c.Archive.S3Bucket,
			S3Region:       c.Archive.S3Region,
			S3BaseEndpoint: c.Archive.S3BaseEndpoint,
		}
	}

	if c.Devices != nil {
		devices := make(map[string]DeviceConfig, len(c.Devices))
		for name, d := range c.Devices {
			start, err := parseDate(d.ProductionStartDate)
			if err != nil {
				return fmt.Errorf("device %q: %w", name, err)
			}
			devices[name] = DeviceConfig{
				Enabled:             d.Enabled,
				CurrentTier:         d.CurrentTier,
				ProductionStartDate: start,
				Bootstrap:           d.Bootstrap,
				Exclude2h:           d.Exclude2h,
				Description:         d.Description,
			}
		}
		config.Devices = devices
	}

	return nil
}
