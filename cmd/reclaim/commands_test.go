package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/netreclaim/reclaim/pkg/audit"
	"github.com/netreclaim/reclaim/pkg/device"
)

const testExport = `/interface bridge
add name=br-empty
/interface vlan
add interface=ether1 name=vlan10 vlan-id=10
/interface eoip
add name=eoip-a remote-address=10.0.0.1
add name=eoip-b remote-address=10.0.0.3
/system identity
set name=r1
`

// execute runs the root command with args against a and returns stdout
// and stderr.
func execute(t *testing.T, a *app, args ...string) (string, string, error) {
	t.Helper()
	path := a.settingsPath
	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--settings", path}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	a, dir := testApp(t, nil)
	exportPath := writeTestFile(t, dir, "r1.rsc", testExport)
	planPath := writeTestFile(t, dir, "plan.txt", "10.0.0.3\n")

	out, _, err := execute(t, a, "analyze", exportPath, "--plan", planPath)
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	for _, want := range []string{"Configuration analysis of r1", "br-empty", "vlan10", "10.0.0.1"} {
		if !strings.Contains(out, want) {
			t.Errorf("analyze output missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyzeCommand_Stdin(t *testing.T) {
	a, _ := testApp(t, nil)
	a.stdin = strings.NewReader(testExport)

	out, _, err := execute(t, a, "analyze", "-", "--format", "json", "--only", "vlans_free")
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if !strings.Contains(out, "vlan10") {
		t.Errorf("json output missing vlan10:\n%s", out)
	}
	if strings.Contains(out, "br-empty") {
		t.Errorf("--only vlans_free should leave out bridges:\n%s", out)
	}
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	a, dir := testApp(t, nil)
	exportPath := writeTestFile(t, dir, "r1.rsc", testExport)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"analyze", filepath.Join(dir, "nope.rsc")}},
		{"unknown category", []string{"analyze", exportPath, "--only", "everything"}},
		{"unknown probe mode", []string{"analyze", exportPath, "--probe", "arp"}},
		{"no arguments", []string{"analyze"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, a, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestAnalyzeCommand_OutputFile(t *testing.T) {
	a, dir := testApp(t, nil)
	exportPath := writeTestFile(t, dir, "r1.rsc", testExport)
	outPath := filepath.Join(dir, "out", "r1.yaml")

	_, errOut, err := execute(t, a, "analyze", exportPath, "--format", "yaml", "-o", outPath)
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	if !strings.Contains(errOut, "Report written to") {
		t.Errorf("stderr = %q", errOut)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("report file: %v", err)
	}
	if !strings.Contains(string(data), "vlan10") {
		t.Errorf("report file missing vlan10:\n%s", data)
	}
}

func TestAnalyzeShowHistory(t *testing.T) {
	a, dir := testApp(t, nil)
	exportPath := writeTestFile(t, dir, "r1.rsc", testExport)
	storeURL := "sqlite://" + filepath.Join(dir, "snapshots.db")

	if _, _, err := execute(t, a, "analyze", exportPath, "--store", storeURL); err != nil {
		t.Fatalf("analyze error = %v", err)
	}

	out, _, err := execute(t, a, "show", "--store", storeURL)
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if !strings.Contains(out, "r1") {
		t.Errorf("show devices output:\n%s", out)
	}

	out, _, err = execute(t, a, "show", "r1", "--store", storeURL, "--only", "eoip_free")
	if err != nil {
		t.Fatalf("show r1 error = %v", err)
	}
	if !strings.Contains(out, "eoip-a") || strings.Contains(out, "br-empty") {
		t.Errorf("show r1 output:\n%s", out)
	}

	out, _, err = execute(t, a, "show", "r1", "--store", storeURL, "--history", "5")
	if err != nil {
		t.Fatalf("show --history error = %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 2 {
		t.Errorf("history should have a header and one entry:\n%s", out)
	}

	if _, _, err := execute(t, a, "show", "r9", "--store", storeURL); err == nil {
		t.Error("show of unknown device should fail")
	}

	out, _, err = execute(t, a, "history", "--json")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	var events []*audit.Event
	if err := json.Unmarshal([]byte(out), &events); err != nil {
		t.Fatalf("history output is not JSON: %v\n%s", err, out)
	}
	if len(events) != 1 || events[0].Device != "r1" || events[0].Operation != audit.OpAnalyze || !events[0].Success {
		t.Errorf("events = %+v", events)
	}
}

func TestShowCommand_RequiresStore(t *testing.T) {
	a, _ := testApp(t, nil)
	if _, _, err := execute(t, a, "show"); err == nil {
		t.Error("show without a store should fail")
	}
}

func TestHistoryCommand_Empty(t *testing.T) {
	a, _ := testApp(t, nil)
	out, _, err := execute(t, a, "history")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(out, "No runs found") {
		t.Errorf("history output = %q", out)
	}
	if _, _, err := execute(t, a, "history", "--last", "soon"); err == nil {
		t.Error("invalid --last should fail")
	}
}

func TestSettingsCommands(t *testing.T) {
	a, _ := testApp(t, nil)

	if _, _, err := execute(t, a, "settings", "set", "batch", "20"); err != nil {
		t.Fatalf("settings set error = %v", err)
	}
	out, _, err := execute(t, a, "settings", "get", "batch")
	if err != nil {
		t.Fatalf("settings get error = %v", err)
	}
	if strings.TrimSpace(out) != "20" {
		t.Errorf("settings get batch = %q", out)
	}

	out, _, err = execute(t, a, "settings", "show")
	if err != nil {
		t.Fatalf("settings show error = %v", err)
	}
	if !strings.Contains(out, "(not set)") || !strings.Contains(out, a.settingsPath) {
		t.Errorf("settings show output:\n%s", out)
	}

	if _, _, err := execute(t, a, "settings", "set", "colour", "blue"); err == nil {
		t.Error("unknown setting should fail")
	}
	if _, _, err := execute(t, a, "settings", "set", "--", "batch", "-1"); err == nil {
		t.Error("negative batch should fail")
	}

	if _, _, err := execute(t, a, "settings", "clear"); err != nil {
		t.Fatalf("settings clear error = %v", err)
	}
	out, _, _ = execute(t, a, "settings", "get", "batch")
	if strings.TrimSpace(out) != "" {
		t.Errorf("batch after clear = %q", out)
	}
}

func TestSettingsSet_IgnoresEnvironment(t *testing.T) {
	a, _ := testApp(t, nil)
	t.Setenv("RECLAIM_OUTPUT_DIR", "/from/env")

	if _, _, err := execute(t, a, "settings", "set", "batch", "10"); err != nil {
		t.Fatalf("settings set error = %v", err)
	}
	data, err := os.ReadFile(a.settingsPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "/from/env") {
		t.Errorf("environment override was saved:\n%s", data)
	}
}

func TestPlanShowCommand(t *testing.T) {
	a, dir := testApp(t, nil)
	planPath := writeTestFile(t, dir, "plan.txt", "10.0.0.2 core\n10.0.0.1 edge\n10.0.0.2 dup\n")

	out, _, err := execute(t, a, "plan", "show", planPath)
	if err != nil {
		t.Fatalf("plan show error = %v", err)
	}
	if strings.Count(out, "10.0.0.2") != 1 || strings.Index(out, "10.0.0.1") > strings.Index(out, "10.0.0.2") {
		t.Errorf("plan show should list sorted distinct addresses:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	a, _ := testApp(t, nil)
	out, _, err := execute(t, a, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "reclaim ") {
		t.Errorf("version output = %q", out)
	}
}

func TestFleetCommand(t *testing.T) {
	sessions := map[string]*fakeSession{
		"r1": {responses: map[string]string{
			device.CmdExport:         testExport,
			device.CmdActiveSessions: " 0 R client pppoe 10.0.0.1 1d\n",
		}},
	}
	a, dir := testApp(t, sessions)
	inventory := writeTestFile(t, dir, "remote_node.yaml", `- name: r1
  host: 192.0.2.1
  auth_username: admin
  auth_password: secret
- name: down
  host: 192.0.2.9
  auth_username: admin
  auth_password: secret
`)
	reports := filepath.Join(dir, "reports")

	out, _, err := execute(t, a, "fleet", "--inventory", inventory, "-d", reports, "--format", "text,json", "--only", "ip_free")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 devices failed") {
		t.Fatalf("fleet error = %v", err)
	}
	if !strings.Contains(out, "r1") || !strings.Contains(out, "down") || !strings.Contains(out, "1 analysed, 1 failed") {
		t.Errorf("fleet summary:\n%s", out)
	}

	text, err := os.ReadFile(filepath.Join(reports, "r1.txt"))
	if err != nil {
		t.Fatalf("text report: %v", err)
	}
	// 10.0.0.1 is active, so only 10.0.0.3 is free.
	if !strings.Contains(string(text), "remote-address=10.0.0.3]") || strings.Contains(string(text), "remote-address=10.0.0.1]") {
		t.Errorf("text report:\n%s", text)
	}
	if _, err := os.Stat(filepath.Join(reports, "r1.json")); err != nil {
		t.Errorf("json report: %v", err)
	}
	if _, err := os.Stat(filepath.Join(reports, "down.txt")); !os.IsNotExist(err) {
		t.Errorf("failed device should have no report, stat err = %v", err)
	}

	// Selecting only the reachable device succeeds.
	if _, _, err := execute(t, a, "fleet", "r1", "--inventory", inventory, "-d", reports); err != nil {
		t.Errorf("fleet r1 error = %v", err)
	}
	if _, _, err := execute(t, a, "fleet", "r7", "--inventory", inventory); err == nil {
		t.Error("fleet with an unknown device should fail")
	}
}

func TestFleetCommand_RequiresInventory(t *testing.T) {
	a, _ := testApp(t, nil)
	if _, _, err := execute(t, a, "fleet"); err == nil {
		t.Error("fleet without inventory should fail")
	}
}

func TestRootCmd_KeepsSettingsPath(t *testing.T) {
	a, dir := testApp(t, nil)
	want := a.settingsPath
	newRootCmd(a)
	if a.settingsPath != want {
		t.Errorf("settingsPath = %q after newRootCmd, want %q", a.settingsPath, want)
	}

	// Without --settings the preset path is still used.
	root := newRootCmd(a)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"settings", "set", "batch", "7"})
	if err := root.Execute(); err != nil {
		t.Fatalf("settings set error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "settings.json")); err != nil {
		t.Errorf("settings file not in temp dir: %v", err)
	}
}

func TestCommands_WriteOnlyUnderTempDir(t *testing.T) {
	a, dir := testApp(t, nil)
	home := os.Getenv("HOME")
	exportPath := writeTestFile(t, dir, "r1.rsc", testExport)

	for _, args := range [][]string{
		{"settings", "set", "batch", "10"},
		{"analyze", exportPath},
		{"history"},
	} {
		if _, _, err := execute(t, a, args...); err != nil {
			t.Fatalf("%v error = %v", args, err)
		}
	}

	entries, err := os.ReadDir(home)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("HOME has %d entries, want none (first: %s)", len(entries), entries[0].Name())
	}
	for _, name := range []string{"settings.json", "audit.log"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written beside the settings file: %v", name, err)
		}
	}
}
