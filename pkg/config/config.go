package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/pwstore"
	ConfigFileName    = "pwstore.yml"
)

// ValidLogFormats is the list of accepted log_format values
var ValidLogFormats = []string{"json", "console"}

// ValidLogLevels is the list of accepted log_level values
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// PwstoreConfig holds all pwstore configuration settings
type PwstoreConfig struct {
	// TokenTTL is the lifetime of issued bearer tokens in seconds
	TokenTTL int `yaml:"token_ttl" json:"token_ttl"`

	// AllowedOrigins is the list of origins allowed by CORS
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`

	// TrustedProxies is a list of CIDR ranges for trusted proxies
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`

	// RegistrationEnabled allows self-service registration. A pointer so a
	// file can set it to false.
	RegistrationEnabled *bool `yaml:"registration_enabled" json:"registration_enabled"`

	// ShutdownTimeout bounds graceful shutdown, in seconds
	ShutdownTimeout int `yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *PwstoreConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *PwstoreConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() (*PwstoreConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return cfg, nil
}

// newDefault returns a config with default values
func newDefault() *PwstoreConfig {
	enabled := true
	return &PwstoreConfig{
		TokenTTL:            28800,
		AllowedOrigins:      []string{},
		TrustedProxies:      []string{},
		LogLevel:            "info",
		LogFormat:           "json",
		RegistrationEnabled: &enabled,
		ShutdownTimeout:     15,
		sources:             make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*PwstoreConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	config.configFilePath = FilePath()

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig PwstoreConfig
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

// FilePath returns the config file location from PWSTORE_CONFIG_PATH.
func FilePath() string {
	configPath := os.Getenv("PWSTORE_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return filepath.Join(configPath, ConfigFileName)
}

func attributeNames() []string {
	return []string{
		"token_ttl", "allowed_origins", "trusted_proxies",
		"log_level", "log_format", "registration_enabled",
		"shutdown_timeout",
	}
}

func (c *PwstoreConfig) applyFileConfig(file *PwstoreConfig) {
	if file.TokenTTL != 0 {
		c.TokenTTL = file.TokenTTL
		c.sources["token_ttl"] = "file"
	}
	if len(file.AllowedOrigins) > 0 {
		c.AllowedOrigins = file.AllowedOrigins
		c.sources["allowed_origins"] = "file"
	}
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
		c.sources["log_level"] = "file"
	}
	if file.LogFormat != "" {
		c.LogFormat = file.LogFormat
		c.sources["log_format"] = "file"
	}
	if file.RegistrationEnabled != nil {
		enabled := *file.RegistrationEnabled
		c.RegistrationEnabled = &enabled
		c.sources["registration_enabled"] = "file"
	}
	if file.ShutdownTimeout != 0 {
		c.ShutdownTimeout = file.ShutdownTimeout
		c.sources["shutdown_timeout"] = "file"
	}
}

func (c *PwstoreConfig) applyEnvConfig() {
	if val := os.Getenv("PWSTORE_TOKEN_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.TokenTTL = i
			c.sources["token_ttl"] = "environment"
		}
	}
	if val := os.Getenv("PWSTORE_ALLOWED_ORIGINS"); val != "" {
		c.AllowedOrigins = splitAndTrim(val)
		c.sources["allowed_origins"] = "environment"
	}
	if val := os.Getenv("PWSTORE_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
	if val := os.Getenv("PWSTORE_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
		c.sources["log_level"] = "environment"
	}
	if val := os.Getenv("PWSTORE_LOG_FORMAT"); val != "" {
		c.LogFormat = strings.ToLower(val)
		c.sources["log_format"] = "environment"
	}
	if val := os.Getenv("PWSTORE_REGISTRATION_ENABLED"); val != "" {
		enabled := val == "true" || val == "1"
		c.RegistrationEnabled = &enabled
		c.sources["registration_enabled"] = "environment"
	}
	if val := os.Getenv("PWSTORE_SHUTDOWN_TIMEOUT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.ShutdownTimeout = i
			c.sources["shutdown_timeout"] = "environment"
		}
	}
}

// ConfigFilePath returns the path to the config file
func (c *PwstoreConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *PwstoreConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// TokenLifetime returns the token TTL as a duration
func (c *PwstoreConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

// ShutdownGrace returns the shutdown timeout as a duration
func (c *PwstoreConfig) ShutdownGrace() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// IsRegistrationEnabled reports whether POST /auth/register is served
func (c *PwstoreConfig) IsRegistrationEnabled() bool {
	return c.RegistrationEnabled == nil || *c.RegistrationEnabled
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *PwstoreConfig) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// Try as plain IP
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *PwstoreConfig) Validate() error {
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid token_ttl value: %d", c.TokenTTL)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown_timeout value: %d", c.ShutdownTimeout)
	}
	if !contains(ValidLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level value: %s", c.LogLevel)
	}
	if !contains(ValidLogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log_format value: %s", c.LogFormat)
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *PwstoreConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "token_ttl", Value: strconv.Itoa(c.TokenTTL), Source: c.Source("token_ttl")},
		{Name: "allowed_origins", Value: strings.Join(c.AllowedOrigins, ","), Source: c.Source("allowed_origins")},
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "log_format", Value: c.LogFormat, Source: c.Source("log_format")},
		{Name: "registration_enabled", Value: strconv.FormatBool(c.IsRegistrationEnabled()), Source: c.Source("registration_enabled")},
		{Name: "shutdown_timeout", Value: strconv.Itoa(c.ShutdownTimeout), Source: c.Source("shutdown_timeout")},
	}
}

// FormatText returns a text representation of the configuration
func (c *PwstoreConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-24s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-24s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *PwstoreConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
