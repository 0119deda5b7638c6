package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/netreclaim/reclaim/pkg/device"
	"github.com/netreclaim/reclaim/pkg/reclaim"
	"github.com/netreclaim/reclaim/pkg/settings"
	"github.com/netreclaim/reclaim/pkg/util"
)

// fakeSession answers from a command table.
type fakeSession struct {
	responses map[string]string
}

func (s *fakeSession) SendCommand(_ context.Context, cmd string) (string, error) {
	out, ok := s.responses[cmd]
	if !ok {
		return "", fmt.Errorf("unexpected command %q", cmd)
	}
	return out, nil
}

func (s *fakeSession) Close() error { return nil }

// testApp returns an app whose settings and audit log live in a temp dir
// and whose devices are served by sessions. HOME points at a second temp
// dir so a missed path cannot reach the real one.
func testApp(t *testing.T, sessions map[string]*fakeSession) (*app, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	a := newApp()
	a.settingsPath = filepath.Join(dir, "settings.json")
	a.stdin = strings.NewReader("")
	a.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	a.opener = device.OpenerFunc(func(_ context.Context, dev device.Device) (device.Session, error) {
		s, ok := sessions[dev.ID()]
		if !ok {
			return nil, fmt.Errorf("%s: %w", dev.ID(), util.ErrNotConnected)
		}
		return s, nil
	})
	return a, dir
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"", ""}, ""},
		{[]string{"", "b", "c"}, "b"},
		{[]string{"a", "b"}, "a"},
	}
	for _, tt := range tests {
		if got := firstNonEmpty(tt.in...); got != tt.want {
			t.Errorf("firstNonEmpty(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatList(t *testing.T) {
	if got := formatList(""); !reflect.DeepEqual(got, []string{"text"}) {
		t.Errorf("formatList(\"\") = %v", got)
	}
	if got := formatList("Text, XLSX"); !reflect.DeepEqual(got, []string{"text", "xlsx"}) {
		t.Errorf("formatList() = %v", got)
	}
}

func TestReportPath(t *testing.T) {
	got := reportPath("out", "msk/core 1", "yml")
	if want := filepath.Join("out", "msk_core_1.yaml"); got != want {
		t.Errorf("reportPath() = %q, want %q", got, want)
	}
}

func TestParseProbeCategories(t *testing.T) {
	got, err := parseProbeCategories("free, in-plan")
	if err != nil {
		t.Fatalf("parseProbeCategories() error = %v", err)
	}
	if !reflect.DeepEqual(got, []reclaim.Category{reclaim.CategoryFree, reclaim.CategoryInPlan}) {
		t.Errorf("parseProbeCategories() = %v", got)
	}
	if _, err := parseProbeCategories("everything"); !errors.Is(err, util.ErrInvalidArgument) {
		t.Errorf("parseProbeCategories(everything) error = %v", err)
	}
}

func TestProbeOptionsValidate(t *testing.T) {
	for _, mode := range []string{"", probeNone, probeICMP, probeDevice} {
		if err := (probeOptions{mode: mode}).validate(); err != nil {
			t.Errorf("validate(%q) = %v", mode, err)
		}
	}
	if err := (probeOptions{mode: "arp"}).validate(); !errors.Is(err, util.ErrInvalidArgument) {
		t.Errorf("validate(arp) = %v", err)
	}
}

func TestSelectDevices(t *testing.T) {
	all := []device.Device{{Name: "a", Host: "192.0.2.1"}, {Name: "b", Host: "192.0.2.2"}}

	got, err := selectDevices(all, nil)
	if err != nil || len(got) != 2 {
		t.Errorf("selectDevices(nil) = %v, %v", got, err)
	}
	got, err = selectDevices(all, []string{"192.0.2.2"})
	if err != nil || len(got) != 1 || got[0].Name != "b" {
		t.Errorf("selectDevices(host) = %v, %v", got, err)
	}
	if _, err := selectDevices(all, []string{"c"}); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("selectDevices(c) error = %v", err)
	}
}

func TestReference_MissingFilesAreEmpty(t *testing.T) {
	a, dir := testApp(t, nil)
	a.settings = &settings.Settings{}

	ref, sources, err := a.reference(referenceFlags{
		planFile:   filepath.Join(dir, "missing-plan.txt"),
		activeFile: filepath.Join(dir, "missing-active.txt"),
	})
	if err != nil {
		t.Fatalf("reference() error = %v", err)
	}
	if ref.AddressPlan().Len() != 0 || ref.ActiveSessions().Len() != 0 {
		t.Error("missing files should give empty sets")
	}
	if sources.AddressPlan == "" {
		t.Error("sources should still name the plan file")
	}
}

func TestReference_UnreadablePlanFails(t *testing.T) {
	a, dir := testApp(t, nil)
	a.settings = &settings.Settings{}
	corrupt := writeTestFile(t, dir, "plan.xlsx", "not a workbook")

	if _, _, err := a.reference(referenceFlags{planFile: corrupt}); err == nil {
		t.Error("a plan that exists but cannot be read should fail the run")
	}
}

func TestReference_SettingsFallback(t *testing.T) {
	a, dir := testApp(t, nil)
	planPath := writeTestFile(t, dir, "plan.txt", "10.0.0.1\n10.0.0.2 # core\n")
	a.settings = &settings.Settings{PlanFile: planPath}

	ref, sources, err := a.reference(referenceFlags{})
	if err != nil {
		t.Fatalf("reference() error = %v", err)
	}
	if ref.AddressPlan().Len() != 2 {
		t.Errorf("plan = %v", ref.AddressPlan().Sorted())
	}
	if sources.AddressPlan != planPath {
		t.Errorf("sources.AddressPlan = %q", sources.AddressPlan)
	}
}

func TestPromptMissingPasswords_NonTerminal(t *testing.T) {
	a, _ := testApp(t, nil)
	devices := []device.Device{{Name: "a", Host: "192.0.2.1", Username: "admin"}}
	if err := a.promptMissingPasswords(devices, os.Stderr); !errors.Is(err, util.ErrInvalidArgument) {
		t.Errorf("promptMissingPasswords() error = %v", err)
	}
	devices[0].Password = "secret"
	if err := a.promptMissingPasswords(devices, os.Stderr); err != nil {
		t.Errorf("promptMissingPasswords() with password = %v", err)
	}
}

func TestRequireStore(t *testing.T) {
	a, dir := testApp(t, nil)
	a.settings = &settings.Settings{}

	if _, err := a.requireStore(""); err == nil {
		t.Error("requireStore() without URL should fail")
	}
	st, err := a.requireStore("sqlite://" + filepath.Join(dir, "s.db"))
	if err != nil {
		t.Fatalf("requireStore() error = %v", err)
	}
	st.Close()
}
