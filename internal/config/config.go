package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"shelf-dcs/internal/dcs"
	"shelf-dcs/internal/ledger"
	"shelf-dcs/internal/planner"
)

// DefaultPeriodDays is the sales period assumed when the catalog has none.
const DefaultPeriodDays = 49

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath       string
	LogDir         string
	DBFile         string
	EvaluationPath string
	BaselinePath   string
	CandidatesFile string

	Ruleset    string
	PeriodDays int
	Params     dcs.Params
	Actor      string

	EnableMermaidCharts bool
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Binary directory first (MCP servers are started from elsewhere)
	exeDir := ""
	if exePath, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	return FromEnv(exeDir)
}

// FromEnv builds the configuration from the process environment. exeDir is
// the default data directory.
func FromEnv(exeDir string) (*AppConfig, error) {
	dataPath := getEnv("DATA_PATH", "")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %q: %w", dataPath, err)
	}

	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}

	periodDays, err := strconv.Atoi(getEnv("DCS_PERIOD_DAYS", strconv.Itoa(DefaultPeriodDays)))
	if err != nil || periodDays <= 0 {
		return nil, fmt.Errorf("DCS_PERIOD_DAYS must be a positive integer, got %q", os.Getenv("DCS_PERIOD_DAYS"))
	}

	params, err := dcs.LoadParams(getEnv("DCS_PARAMS_FILE", ""))
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{
		DataPath:            dataPath,
		LogDir:              logDir,
		DBFile:              getEnv("DCS_DB_FILE", filepath.Join(dataPath, "shelf.db")),
		EvaluationPath:      filepath.Join(dataPath, "dcs_proposals.json"),
		BaselinePath:        filepath.Join(dataPath, "baseline.json"),
		CandidatesFile:      getEnv("DCS_CANDIDATES_FILE", ""),
		Ruleset:             getEnv("DCS_RULESET", ""),
		PeriodDays:          periodDays,
		Params:              params,
		Actor:               getEnv("DCS_ACTOR", ledger.DefaultActor),
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}
	return cfg, nil
}

// PlannerOptions returns the service options for this configuration.
func (c *AppConfig) PlannerOptions() planner.Options {
	return planner.Options{
		Ruleset:        c.Ruleset,
		PeriodDays:     c.PeriodDays,
		Params:         c.Params,
		Actor:          c.Actor,
		EvaluationPath: c.EvaluationPath,
		BaselinePath:   c.BaselinePath,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
