package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config is the root configuration for replyai.
type Config struct {
	General  GeneralConfig  `json:"general"`
	Server   ServerConfig   `json:"server"`
	Provider ProviderConfig `json:"provider"`
	Store    StoreConfig    `json:"store"`
	Client   ClientConfig   `json:"client"`
}

type GeneralConfig struct {
	LogLevel string `json:"logLevel"`
	LogFile  string `json:"logFile,omitempty"` // optional log file path
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ProviderConfig selects the completion API. Model and sampling values are
// fixed for the lifetime of the process.
type ProviderConfig struct {
	Name              string  `json:"name"` // "openai" | "gemini"
	APIBase           string  `json:"apiBase,omitempty"`
	APIKey            string  `json:"apiKey,omitempty"`
	Model             string  `json:"model"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"topP"`
	TimeoutSeconds    int     `json:"timeoutSeconds"`              // 0 = transport default
	RequestsPerMinute float64 `json:"requestsPerMinute,omitempty"` // 0 = no throttling
	Burst             int     `json:"burst,omitempty"`
}

// Default models per provider.
const (
	DefaultOpenAIModel = "gpt-4.1-mini"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// EffectiveModel returns the model to request. A gemini provider still
// carrying the OpenAI default (or no model) gets the Gemini default.
func (p ProviderConfig) EffectiveModel() string {
	if p.Name == "gemini" && (p.Model == "" || p.Model == DefaultOpenAIModel) {
		return DefaultGeminiModel
	}
	if p.Model == "" {
		return DefaultOpenAIModel
	}
	return p.Model
}

type StoreConfig struct {
	Backend string `json:"backend"` // "file" | "sqlite" | "memory"
	Path    string `json:"path"`
}

type ClientConfig struct {
	Endpoint       string `json:"endpoint"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// DefaultConfigDir returns the default config directory (~/.replyai).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".replyai"
	}
	return filepath.Join(home, ".replyai")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	// Defaults carry their own placeholder when the file omits apiKey.
	cfg.Provider.APIKey = dropUnresolved(ExpandEnvVars(cfg.Provider.APIKey))
	cfg.Store.Path = ExpandPath(cfg.Store.Path)
	cfg.General.LogFile = ExpandPath(cfg.General.LogFile)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadOrDefaults loads path and falls back to Defaults when the file does
// not exist. Any other failure is returned.
func LoadOrDefaults(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, true, nil
	}
	if _, statErr := os.Stat(ExpandPath(path)); os.IsNotExist(statErr) {
		cfg = Defaults()
		cfg.Provider.APIKey = dropUnresolved(ExpandEnvVars(cfg.Provider.APIKey))
		cfg.Store.Path = ExpandPath(cfg.Store.Path)
		return cfg, false, nil
	}
	return nil, false, err
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // keep original if no env var and no default
		}
		return val
	})
}

// dropUnresolved blanks a value that still holds a ${VAR} placeholder after
// expansion, so an unset variable never reaches an Authorization header.
func dropUnresolved(s string) string {
	if envVarPattern.MatchString(s) {
		return ""
	}
	return s
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// Update applies fn to the config file at path and saves it. ${VAR}
// references are left unexpanded so environment secrets never get written
// back. A missing file starts from Defaults.
func Update(path string, fn func(*Config) error) error {
	path = ExpandPath(path)

	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("cannot parse config file %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	if err := fn(cfg); err != nil {
		return err
	}
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return Save(path, cfg)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 0 and 65535")
	}

	switch cfg.Provider.Name {
	case "openai", "gemini":
	default:
		errs = append(errs, "provider.name must be one of: openai, gemini")
	}
	if cfg.Provider.Model == "" {
		errs = append(errs, "provider.model is required")
	}
	if cfg.Provider.Temperature < 0 || cfg.Provider.Temperature > 2 {
		errs = append(errs, "provider.temperature must be between 0 and 2")
	}
	if cfg.Provider.TopP <= 0 || cfg.Provider.TopP > 1 {
		errs = append(errs, "provider.topP must be in (0, 1]")
	}
	if cfg.Provider.TimeoutSeconds < 0 {
		errs = append(errs, "provider.timeoutSeconds must be >= 0")
	}
	if cfg.Provider.RequestsPerMinute < 0 || cfg.Provider.Burst < 0 {
		errs = append(errs, "provider.requestsPerMinute and provider.burst must be >= 0")
	}

	switch cfg.Store.Backend {
	case "memory":
	case "file", "sqlite":
		if cfg.Store.Path == "" {
			errs = append(errs, fmt.Sprintf("store.path is required for the %s backend", cfg.Store.Backend))
		}
	default:
		errs = append(errs, "store.backend must be one of: file, sqlite, memory")
	}

	if cfg.Client.Endpoint != "" && !strings.HasPrefix(cfg.Client.Endpoint, "http://") &&
		!strings.HasPrefix(cfg.Client.Endpoint, "https://") {
		errs = append(errs, "client.endpoint must be an http(s) URL")
	}
	if cfg.Client.TimeoutSeconds < 0 {
		errs = append(errs, "client.timeoutSeconds must be >= 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
