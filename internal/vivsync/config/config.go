package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/vivify-tools/vivsync/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigPath = filepath.Join(home, ".vivsync", "config.json")
)

const (
	// DefaultPort is the port the Vivify server listens on.
	DefaultPort = 31622

	// DefaultBinary is the bare viewer command name, resolved via PATH.
	DefaultBinary = "viv"

	// EnvPort overrides the port when no explicit value is configured.
	EnvPort = "VIVIFY_PORT"

	// EnvPortLegacy is honored for compatibility with older setups.
	EnvPortLegacy = "VIV_PORT"
)

// DefaultFiletypes are the buffer filetypes synced out of the box.
var DefaultFiletypes = []string{"markdown"}

// Config is the process-wide configuration. It is constructed once,
// validated, and replaced wholesale on re-setup; event handlers read
// it fresh on every event and never mutate it.
type Config struct {
	// Port of the Vivify server. 0 means "use env or default".
	Port int `json:"port,omitempty"`

	// Binary is an optional custom path to the viewer binary. Empty
	// means DefaultBinary resolved via PATH.
	Binary string `json:"viv_binary,omitempty"`

	// InstantRefresh syncs content on every text mutation instead of
	// waiting for an idle event.
	InstantRefresh bool `json:"instant_refresh"`

	// AutoScroll syncs the cursor line on cursor movement.
	AutoScroll bool `json:"auto_scroll"`

	// Filetypes are regexp patterns matched (unanchored) against a
	// buffer's filetype to decide whether it is syncable.
	Filetypes []string `json:"filetypes"`

	// Debug enables debug-level logging, including per-dispatch
	// transport failures.
	Debug bool `json:"debug"`

	Path string `json:"-"`
}

// Default returns a config with all defaults applied.
func Default() *Config {
	return &Config{
		Port:      portFromEnv(),
		Filetypes: append([]string(nil), DefaultFiletypes...),
	}
}

// Validate normalizes the config and rejects unusable values.
func (c *Config) Validate() error {
	if c.Port == 0 {
		c.Port = portFromEnv()
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}

	if c.Binary != "" {
		resolved, err := utils.ResolvePath(c.Binary)
		if err != nil {
			return fmt.Errorf("config: viv_binary: %w", err)
		}
		c.Binary = resolved
	}

	if len(c.Filetypes) == 0 {
		c.Filetypes = append([]string(nil), DefaultFiletypes...)
	}
	for _, pat := range c.Filetypes {
		if _, err := regexp.Compile(pat); err != nil {
			return fmt.Errorf("config: filetype pattern %q: %w", pat, err)
		}
	}

	return nil
}

// ServerURL is the base URL of the Vivify server.
func (c *Config) ServerURL() string {
	port := c.Port
	if port == 0 {
		port = portFromEnv()
	}
	return fmt.Sprintf("http://localhost:%d", port)
}

// BinaryOrDefault returns the configured viewer binary path or the
// bare default command name.
func (c *Config) BinaryOrDefault() string {
	if c.Binary != "" {
		return c.Binary
	}
	return DefaultBinary
}

func (c *Config) Save() error {
	if c.Path == "" {
		c.Path = DefaultConfigPath
	}
	if err := utils.EnsureParent(c.Path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.Path, data, 0644)
}

// LoadFromFile reads a config from disk and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// portFromEnv resolves the port from VIVIFY_PORT, then the legacy
// VIV_PORT, then the fixed default. Unparseable values fall through.
func portFromEnv() int {
	for _, key := range []string{EnvPort, EnvPortLegacy} {
		if v := os.Getenv(key); v != "" {
			if port, err := strconv.Atoi(v); err == nil && port > 0 && port <= 65535 {
				return port
			}
		}
	}
	return DefaultPort
}
