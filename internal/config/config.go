package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvExecutable       = "DOWNBAD_EXECUTABLE"
	EnvScript           = "DOWNBAD_SCRIPT"
	EnvWorkDir          = "DOWNBAD_WORKDIR"
	EnvAPIAddr          = "DOWNBAD_API_ADDR"
	EnvEstimateSeconds  = "DOWNBAD_ESTIMATE_SECONDS"
	EnvEstimateInterval = "DOWNBAD_ESTIMATE_INTERVAL"
	EnvEnvironment      = "ENV"
)

// Default runtime values
const (
	DefaultExecutable       = "python3"
	DefaultScript           = "download_cli.py"
	DefaultAPIAddr          = "127.0.0.1:8765"
	DefaultEstimateSeconds  = 120
	DefaultEstimateInterval = time.Second
)

// Env files, later files override earlier ones
const (
	EnvFileBase  = ".env"
	EnvFileLocal = ".env.local"
)

// Config is the runtime configuration read from the environment
type Config struct {
	Executable       string
	Script           string
	WorkDir          string
	APIAddr          string
	EstimateDuration time.Duration
	EstimateInterval time.Duration
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Executable:       DefaultExecutable,
		Script:           DefaultScript,
		APIAddr:          DefaultAPIAddr,
		EstimateDuration: DefaultEstimateSeconds * time.Second,
		EstimateInterval: DefaultEstimateInterval,
	}
}

// Load reads the optional env files of dir and then the process environment
func Load(dir string) (Config, error) {
	if err := loadEnvFiles(dir); err != nil {
		return Config{}, err
	}

	cfg := Default()
	cfg.Executable = getEnv(EnvExecutable, cfg.Executable)
	cfg.Script = getEnv(EnvScript, cfg.Script)
	cfg.WorkDir = getEnv(EnvWorkDir, cfg.WorkDir)
	cfg.APIAddr = getEnv(EnvAPIAddr, cfg.APIAddr)

	if v := os.Getenv(EnvEstimateSeconds); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", EnvEstimateSeconds, v, err)
		}
		cfg.EstimateDuration = time.Duration(seconds) * time.Second
	}

	if v := os.Getenv(EnvEstimateInterval); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", EnvEstimateInterval, v, err)
		}
		cfg.EstimateInterval = interval
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration for values the launcher cannot use
func (c Config) Validate() error {
	var errs []error
	if c.Executable == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", EnvExecutable))
	}
	if c.EstimateDuration < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", EnvEstimateSeconds))
	}
	if c.EstimateDuration > 0 && c.EstimateInterval <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", EnvEstimateInterval))
	}
	return errors.Join(errs...)
}

// loadEnvFiles loads .env files in order of precedence. Missing files are skipped.
func loadEnvFiles(dir string) error {
	// Base file never overrides the real environment
	base := filepath.Join(dir, EnvFileBase)
	if _, err := os.Stat(base); err == nil {
		if err := godotenv.Load(base); err != nil {
			return fmt.Errorf("failed to load %s: %w", base, err)
		}
	}

	if env := os.Getenv(EnvEnvironment); env != "" {
		envFile := filepath.Join(dir, fmt.Sprintf("%s.%s", EnvFileBase, env))
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Overload(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	local := filepath.Join(dir, EnvFileLocal)
	if _, err := os.Stat(local); err == nil {
		if err := godotenv.Overload(local); err != nil {
			return fmt.Errorf("failed to load %s: %w", local, err)
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
