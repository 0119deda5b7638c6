package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/netreclaim/reclaim/pkg/util"
)

func TestSettings_Defaults(t *testing.T) {
	s := &Settings{}

	if got := s.GetBatch(); got != DefaultBatch {
		t.Errorf("GetBatch() = %d, want %d", got, DefaultBatch)
	}
	if got := s.GetParallel(); got != DefaultParallel {
		t.Errorf("GetParallel() = %d, want %d", got, DefaultParallel)
	}
	if got := s.GetPingCount(); got != DefaultPingCount {
		t.Errorf("GetPingCount() = %d, want %d", got, DefaultPingCount)
	}
	if got := s.GetThreshold(); got != DefaultThreshold {
		t.Errorf("GetThreshold() = %d, want %d", got, DefaultThreshold)
	}
	if got := s.GetOutputDir(); got != DefaultOutputDir {
		t.Errorf("GetOutputDir() = %q, want %q", got, DefaultOutputDir)
	}
}

func TestSettings_SetGet(t *testing.T) {
	tests := []struct {
		key, value string
		wantErr    bool
	}{
		{"plan_file", "plan.xlsx", false},
		{"store_url", "sqlite:///var/lib/reclaim.db", false},
		{"batch", "20", false},
		{"threshold", "2", false},
		{"parallel", "", false},
		{"batch", "twenty", true},
		{"ping_count", "-1", true},
		{"nope", "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			s := &Settings{}
			err := s.Set(tt.key, tt.value)
			if tt.wantErr {
				if !errors.Is(err, util.ErrInvalidArgument) {
					t.Errorf("Set() error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := s.Get(tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got != tt.value {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.value)
			}
		})
	}
}

func TestSettings_SetNumeric(t *testing.T) {
	s := &Settings{}
	if err := s.Set("batch", "10"); err != nil {
		t.Fatal(err)
	}
	if s.GetBatch() != 10 {
		t.Errorf("GetBatch() = %d, want 10", s.GetBatch())
	}
	if err := s.Set("batch", ""); err != nil {
		t.Fatal(err)
	}
	if s.GetBatch() != DefaultBatch {
		t.Errorf("cleared batch = %d, want default", s.GetBatch())
	}
}

func TestSettings_Keys(t *testing.T) {
	s := &Settings{}
	keys := s.Keys()
	if len(keys) != 12 {
		t.Errorf("Keys() = %v", keys)
	}
	for _, k := range keys {
		if _, err := s.Get(k); err != nil {
			t.Errorf("Get(%q) error = %v", k, err)
		}
	}
}

func TestSettings_Clear(t *testing.T) {
	s := &Settings{
		Inventory: "devices.yaml",
		PlanFile:  "plan.txt",
		Batch:     10,
	}

	s.Clear()

	if s.Inventory != "" || s.PlanFile != "" || s.Batch != 0 {
		t.Error("Clear() should reset all fields")
	}
}

func TestSettings_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	original := &Settings{
		Inventory:   "devices.yaml",
		PlanFile:    "plan.xlsx",
		ActiveFile:  "active.txt",
		StoreURL:    "memory://",
		ProbeDevice: "core-msk-1",
		Parallel:    8,
	}
	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	if *loaded != *original {
		t.Errorf("LoadFrom() = %+v, want %+v", loaded, original)
	}
}

func TestSettings_LoadNonExistent(t *testing.T) {
	s, err := LoadFrom("/nonexistent/path/settings.json")
	if err != nil {
		t.Fatalf("LoadFrom() non-existent should not error: %v", err)
	}
	if s == nil || *s != (Settings{}) {
		t.Errorf("LoadFrom() non-existent = %+v, want empty", s)
	}
}

func TestSettings_LoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("invalid json {"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() with invalid JSON should error")
	}
}

func TestSettings_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "nested", "settings.json")

	s := &Settings{PlanFile: "plan.txt"}
	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() should create directories: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("SaveTo() should have created the file")
	}
}

func TestSettings_ApplyEnv(t *testing.T) {
	t.Setenv("RECLAIM_PLAN_FILE", "/srv/plan.xlsx")
	t.Setenv("RECLAIM_BATCH", "25")

	s := &Settings{PlanFile: "plan.txt", ActiveFile: "active.txt"}
	if err := s.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if s.PlanFile != "/srv/plan.xlsx" {
		t.Errorf("PlanFile = %q, want env override", s.PlanFile)
	}
	if s.ActiveFile != "active.txt" {
		t.Errorf("ActiveFile = %q, unset env should keep file value", s.ActiveFile)
	}
	if s.Batch != 25 {
		t.Errorf("Batch = %d, want 25", s.Batch)
	}
}

func TestSettings_ApplyEnvInvalid(t *testing.T) {
	t.Setenv("RECLAIM_PARALLEL", "many")

	s := &Settings{}
	if err := s.ApplyEnv(); err == nil {
		t.Error("ApplyEnv() should reject a non-numeric RECLAIM_PARALLEL")
	}
}

func TestDefaultSettingsPath(t *testing.T) {
	path := DefaultSettingsPath()
	if path == "" {
		t.Error("DefaultSettingsPath() should not be empty")
	}
	if !filepath.IsAbs(path) && path != "reclaim_settings.json" {
		t.Errorf("DefaultSettingsPath() should be absolute or fallback, got %q", path)
	}
}

func TestLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() with non-existent file should not error: %v", err)
	}
	if s.PlanFile != "" {
		t.Error("Load() with non-existent file should return empty settings")
	}

	s.PlanFile = "plan.txt"
	if err := s.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".reclaim", "settings.json")); err != nil {
		t.Fatalf("Save() did not write ~/.reclaim/settings.json: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.PlanFile != "plan.txt" {
		t.Errorf("PlanFile = %q, want %q", loaded.PlanFile, "plan.txt")
	}
}
