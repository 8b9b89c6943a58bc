package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// UserConfig is the on-disk configuration. Every field has a usable default;
// environment variables override the file.
type UserConfig struct {
	DBName string `json:"db_name"`
	// DataDir holds the database. Empty means the platform config dir.
	DataDir string `json:"data_dir"`
	Port    int    `json:"port"`
	// RiskFreeRate is the annual rate used to project cash yield.
	RiskFreeRate float64 `json:"risk_free_rate"`
	// Interpretation service defaults; the API key always comes from the
	// environment or the request, never the config file.
	InterpretBaseURL string `json:"interpret_base_url"`
	InterpretModel   string `json:"interpret_model"`
}

const (
	defaultDBName = "networth.db"
	defaultPort   = 8000
)

var runtimeDataDir string

// SetRuntimeDataDir overrides the data directory for this process, taking
// precedence over the config file and environment.
func SetRuntimeDataDir(dir string) {
	runtimeDataDir = dir
}

func appConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return "", homeErr
		}
		return filepath.Join(home, ".config", "networth"), nil
	}
	return filepath.Join(configDir, "networth"), nil
}

func appConfigPath() (string, error) {
	dir, err := appConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadUserConfig reads the config file, falling back to defaults on any
// problem. A missing or unreadable file is not an error.
func LoadUserConfig() UserConfig {
	defaults := UserConfig{
		DBName: defaultDBName,
		Port:   defaultPort,
	}
	configPath, err := appConfigPath()
	if err != nil {
		return defaults
	}
	file, err := os.Open(configPath)
	if err != nil {
		return defaults
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&defaults); err != nil {
		return defaults
	}
	if defaults.DBName == "" {
		defaults.DBName = defaultDBName
	}
	if defaults.Port <= 0 {
		defaults.Port = defaultPort
	}
	return defaults
}

// SaveUserConfig writes the config file, creating its directory as needed.
func SaveUserConfig(cfg UserConfig) error {
	path, err := appConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// GetDataDir resolves the data directory: runtime override, then
// NETWORTH_DATA_DIR, then the config file, then the platform config dir.
// The directory is created if absent.
func GetDataDir() (string, error) {
	if runtimeDataDir != "" {
		if err := os.MkdirAll(runtimeDataDir, 0o755); err != nil {
			return "", err
		}
		return runtimeDataDir, nil
	}
	if envDir := os.Getenv("NETWORTH_DATA_DIR"); envDir != "" {
		if err := os.MkdirAll(envDir, 0o755); err != nil {
			return "", err
		}
		return envDir, nil
	}
	cfg := LoadUserConfig()
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return "", err
		}
		return cfg.DataDir, nil
	}
	defaultDir, err := appConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(defaultDir, 0o755); err != nil {
		return "", err
	}
	return defaultDir, nil
}

// GetDBPath resolves the database file path. NETWORTH_DB_PATH overrides
// everything.
func GetDBPath() (string, error) {
	if envPath := os.Getenv("NETWORTH_DB_PATH"); envPath != "" {
		return envPath, nil
	}
	cfg := LoadUserConfig()
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	name := cfg.DBName
	if name == "" {
		name = defaultDBName
	}
	return filepath.Join(dataDir, name), nil
}

// GetPort resolves the listen port. NETWORTH_PORT overrides the config file.
func GetPort() int {
	if envPort := os.Getenv("NETWORTH_PORT"); envPort != "" {
		if port, err := strconv.Atoi(envPort); err == nil && port > 0 {
			return port
		}
	}
	return LoadUserConfig().Port
}

// GetRiskFreeRate resolves the annual risk-free rate for cash yield
// projection. NETWORTH_RISK_FREE_RATE overrides the config file.
func GetRiskFreeRate() float64 {
	if envRate := os.Getenv("NETWORTH_RISK_FREE_RATE"); envRate != "" {
		if rate, err := strconv.ParseFloat(envRate, 64); err == nil && rate >= 0 {
			return rate
		}
	}
	return LoadUserConfig().RiskFreeRate
}

// GetInterpretAPIKey returns the interpretation service API key from the
// environment. Empty means the caller must supply one per request.
func GetInterpretAPIKey() string {
	return strings.TrimSpace(os.Getenv("NETWORTH_OPENAI_API_KEY"))
}
