// Package settings manages persistent user settings for the reclaim CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/caarlos0/env/v9"

	"github.com/netreclaim/reclaim/pkg/util"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "RECLAIM_"

// Defaults used when a setting is unset
const (
	DefaultBatch     = 50
	DefaultParallel  = 4
	DefaultPingCount = 5
	DefaultThreshold = 3
	DefaultOutputDir = "reports"
)

// Settings holds persistent user preferences
type Settings struct {
	// Inventory is the device inventory YAML used by fleet and probe
	Inventory string `json:"inventory,omitempty" env:"INVENTORY"`

	// PlanFile is the address plan (text or XLSX)
	PlanFile string `json:"plan_file,omitempty" env:"PLAN_FILE"`

	// ActiveFile lists currently active sessions, one address per line
	ActiveFile string `json:"active_file,omitempty" env:"ACTIVE_FILE"`

	OutputDir string `json:"output_dir,omitempty" env:"OUTPUT_DIR"`

	// StoreURL selects the snapshot store (redis://, sqlite://, memory://)
	StoreURL string `json:"store_url,omitempty" env:"STORE_URL"`

	AuditLog    string `json:"audit_log,omitempty" env:"AUDIT_LOG"`
	MetricsFile string `json:"metrics_file,omitempty" env:"METRICS_FILE"`

	// ProbeDevice is the inventory entry that issues /ping
	ProbeDevice string `json:"probe_device,omitempty" env:"PROBE_DEVICE"`

	Batch     int `json:"batch,omitempty" env:"BATCH"`
	Parallel  int `json:"parallel,omitempty" env:"PARALLEL"`
	PingCount int `json:"ping_count,omitempty" env:"PING_COUNT"`
	Threshold int `json:"threshold,omitempty" env:"THRESHOLD"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "reclaim_settings.json"
	}
	return filepath.Join(home, ".reclaim", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}

	return s, nil
}

// ApplyEnv overrides fields from RECLAIM_* environment variables. Unset
// variables leave the loaded value in place.
func (s *Settings) ApplyEnv() error {
	if err := env.ParseWithOptions(s, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parsing environment overrides: %w", err)
	}
	return nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetBatch returns the probe batch size (with fallback)
func (s *Settings) GetBatch() int {
	return orDefault(s.Batch, DefaultBatch)
}

// GetParallel returns the fleet parallelism (with fallback)
func (s *Settings) GetParallel() int {
	return orDefault(s.Parallel, DefaultParallel)
}

// GetPingCount returns the echo count per address (with fallback)
func (s *Settings) GetPingCount() int {
	return orDefault(s.PingCount, DefaultPingCount)
}

// GetThreshold returns the replies needed to call an address reachable
func (s *Settings) GetThreshold() int {
	return orDefault(s.Threshold, DefaultThreshold)
}

// GetOutputDir returns the report directory (with fallback)
func (s *Settings) GetOutputDir() string {
	if s.OutputDir != "" {
		return s.OutputDir
	}
	return DefaultOutputDir
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// field binds a settings key to its string and int accessors.
type field struct {
	str *string
	num *int
}

func (s *Settings) fields() map[string]field {
	return map[string]field{
		"inventory":    {str: &s.Inventory},
		"plan_file":    {str: &s.PlanFile},
		"active_file":  {str: &s.ActiveFile},
		"output_dir":   {str: &s.OutputDir},
		"store_url":    {str: &s.StoreURL},
		"audit_log":    {str: &s.AuditLog},
		"metrics_file": {str: &s.MetricsFile},
		"probe_device": {str: &s.ProbeDevice},
		"batch":        {num: &s.Batch},
		"parallel":     {num: &s.Parallel},
		"ping_count":   {num: &s.PingCount},
		"threshold":    {num: &s.Threshold},
	}
}

// Keys returns the settable keys in sorted order
func (s *Settings) Keys() []string {
	var keys []string
	for k := range s.fields() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of key as text
func (s *Settings) Get(key string) (string, error) {
	f, ok := s.fields()[key]
	if !ok {
		return "", fmt.Errorf("unknown setting %q: %w", key, util.ErrInvalidArgument)
	}
	if f.str != nil {
		return *f.str, nil
	}
	if *f.num == 0 {
		return "", nil
	}
	return strconv.Itoa(*f.num), nil
}

// Set assigns key from text. Numeric settings must be non-negative
// integers; an empty value clears the key.
func (s *Settings) Set(key, value string) error {
	f, ok := s.fields()[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, util.ErrInvalidArgument)
	}
	if f.str != nil {
		*f.str = value
		return nil
	}
	if value == "" {
		*f.num = 0
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fmt.Errorf("setting %s: %q is not a non-negative integer: %w", key, value, util.ErrInvalidArgument)
	}
	*f.num = n
	return nil
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
