package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"

	"shelf-dcs/internal/dcs"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATA_PATH", "LOGS_FOLDER", "DCS_RULESET", "DCS_PERIOD_DAYS", "DCS_PARAMS_FILE",
		"DCS_ACTOR", "DCS_DB_FILE", "DCS_CANDIDATES_FILE", "ENABLE_MERMAID_CHARTS",
	} {
		t.Setenv(key, "")
	}
}

func TestGodotenvQuoting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := `DCS_ACTOR='buyer "north" team'` + "\n" + `DCS_RULESET="balanced"` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}
	if got, want := env["DCS_ACTOR"], `buyer "north" team`; got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
	if env["DCS_RULESET"] != dcs.RulesetBalanced {
		t.Errorf("Expected balanced, got %s", env["DCS_RULESET"])
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := FromEnv(dir)
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.DataPath != dir {
		t.Errorf("DataPath = %q, want %q", cfg.DataPath, dir)
	}
	if cfg.DBFile != filepath.Join(dir, "shelf.db") {
		t.Errorf("DBFile = %q", cfg.DBFile)
	}
	if cfg.LogDir != filepath.Join(dir, "logs") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.Ruleset != "" {
		t.Errorf("Ruleset should have no default, got %q", cfg.Ruleset)
	}
	if cfg.PeriodDays != DefaultPeriodDays {
		t.Errorf("PeriodDays = %d", cfg.PeriodDays)
	}
	if cfg.Actor != "buyer" {
		t.Errorf("Actor = %q", cfg.Actor)
	}
	if cfg.Params != dcs.DefaultParams() {
		t.Errorf("Params = %+v", cfg.Params)
	}

	opts := cfg.PlannerOptions()
	if opts.EvaluationPath != filepath.Join(dir, "dcs_proposals.json") || opts.BaselinePath != filepath.Join(dir, "baseline.json") {
		t.Errorf("unexpected planner paths: %+v", opts)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	params := filepath.Join(dir, "params.yaml")
	if err := os.WriteFile(params, []byte("target_reduction_ratio: 0.3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DATA_PATH", filepath.Join(dir, "data"))
	t.Setenv("DCS_RULESET", "threshold")
	t.Setenv("DCS_PERIOD_DAYS", "28")
	t.Setenv("DCS_PARAMS_FILE", params)
	t.Setenv("DCS_ACTOR", "alice")
	t.Setenv("DCS_DB_FILE", filepath.Join(dir, "other.db"))
	t.Setenv("ENABLE_MERMAID_CHARTS", "true")

	cfg, err := FromEnv("")
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if _, err := os.Stat(cfg.DataPath); err != nil {
		t.Errorf("data directory not created: %v", err)
	}
	if cfg.Ruleset != "threshold" || cfg.PeriodDays != 28 || cfg.Actor != "alice" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Params.TargetReductionRatio != 0.3 {
		t.Errorf("params file not applied: %+v", cfg.Params)
	}
	if cfg.DBFile != filepath.Join(dir, "other.db") || !cfg.EnableMermaidCharts {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestFromEnv_InvalidPeriod(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_PATH", t.TempDir())
	for _, v := range []string{"abc", "0", "-7"} {
		t.Setenv("DCS_PERIOD_DAYS", v)
		if _, err := FromEnv(""); err == nil {
			t.Errorf("expected error for DCS_PERIOD_DAYS=%q", v)
		}
	}
}
