package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gastos/internal/config"
)

const testSeed = `
[[teams]]
name = "Alpha"

[[categories]]
name = "Oficina"
description = "Material de oficina"

[[members]]
name = "Ann"
surname = "Lee"
password = "clave1234"
team = "Alpha"
joined = "2020-01-01"
role = "manager"

[[members]]
name = "Bob"
surname = "Stone"
password = "clave1234"
team = "Alpha"
joined = "2021-03-01"
role = "employee"

[[payments]]
kind = "one_time"
method = "credit"
category = "Oficina"
member = "Ann Lee"
description = "Monitor"
amount = "250.50"
date = "2024-05-10"
receipt = "R-1"

[[payments]]
kind = "one_time"
method = "cash"
category = "Oficina"
member = "Bob Stone"
description = "Cables"
amount = "12"
date = "2024-05-11"
receipt = "R-2"
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedCheck(t *testing.T) {
	out, err := run(t, "seed-check", writeSeed(t, testSeed))
	if err != nil {
		t.Fatalf("seed-check: %v", err)
	}
	for _, want := range []string{"is valid", "teams:      1", "members:    2 (1 managers)", "payments:   2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSeedCheckBuiltIn(t *testing.T) {
	out, err := run(t, "seed-check")
	if err != nil {
		t.Fatalf("seed-check: %v", err)
	}
	if !strings.Contains(out, "Seed built-in is valid") || !strings.Contains(out, "teams:      4") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestSeedCheckRejectsBadSeed(t *testing.T) {
	bad := strings.Replace(testSeed, `member = "Bob Stone"`, `member = "Nobody Here"`, 1)
	if _, err := run(t, "seed-check", writeSeed(t, bad)); err == nil {
		t.Fatal("expected error for unknown member")
	}
	if _, err := run(t, "seed-check", filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReportTeam(t *testing.T) {
	t.Setenv("SEED_FILE", writeSeed(t, testSeed))

	out, err := run(t, "report", "team", "Alpha", "--month", "2024-05")
	if err != nil {
		t.Fatalf("report team: %v", err)
	}
	monitor := strings.Index(out, "Monitor")
	cables := strings.Index(out, "Cables")
	if monitor < 0 || cables < 0 {
		t.Fatalf("missing payments in output:\n%s", out)
	}
	if monitor > cables {
		t.Errorf("expected largest payment first:\n%s", out)
	}
	if !strings.Contains(out, "250.50") {
		t.Errorf("expected formatted amount:\n%s", out)
	}
}

func TestReportTeamEmptyMonth(t *testing.T) {
	t.Setenv("SEED_FILE", writeSeed(t, testSeed))

	out, err := run(t, "report", "team", "Alpha", "--month", "2023-01")
	if err != nil {
		t.Fatalf("report team: %v", err)
	}
	if !strings.Contains(out, "No payments.") {
		t.Errorf("expected empty report:\n%s", out)
	}
}

func TestReportErrors(t *testing.T) {
	t.Setenv("SEED_FILE", writeSeed(t, testSeed))

	tests := []struct {
		name string
		args []string
	}{
		{"unknown team", []string{"report", "team", "Nope", "--month", "2024-05"}},
		{"bad month", []string{"report", "team", "Alpha", "--month", "May"}},
		{"unknown member", []string{"report", "member", "nobody@laEmpresa.com"}},
		{"missing argument", []string{"report", "team"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestReportMember(t *testing.T) {
	t.Setenv("SEED_FILE", writeSeed(t, testSeed))

	out, err := run(t, "report", "member", "annlee@laEmpresa.com")
	if err != nil {
		t.Fatalf("report member: %v", err)
	}
	for _, want := range []string{"Ann Lee (annlee@laEmpresa.com)", "Team: Alpha", "Role: MANAGER", "Spend this month:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExportWorkerRequiresBroker(t *testing.T) {
	t.Setenv("AMQP_URL", "")
	_, err := run(t, "export-worker")
	if err == nil || !strings.Contains(err.Error(), "AMQP_URL") {
		t.Fatalf("expected AMQP_URL error, got %v", err)
	}
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	cfg, err := LoadConfig(func(c *config.Config) { c.Port = "9090" })
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}

	if _, err := LoadConfig(func(c *config.Config) { c.Port = "0" }); err == nil {
		t.Error("expected validation error for port 0")
	}
}

func TestBuildRegistryWithoutSeed(t *testing.T) {
	cfg, err := LoadConfig(func(c *config.Config) { c.SeedData = false })
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	logger, err := SetupLogger(cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}
	reg, err := BuildRegistry(cfg, logger)
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}
	if n := len(reg.Teams()); n != 0 {
		t.Errorf("teams = %d, want 0", n)
	}
}
