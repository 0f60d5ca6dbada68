package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Nomadcxx/mediamatch/internal/logging"
	"github.com/Nomadcxx/mediamatch/internal/paths"
)

type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Matching MatchingConfig `mapstructure:"matching"`
	Grouping GroupingConfig `mapstructure:"grouping"`
	Probe    ProbeConfig    `mapstructure:"probe"`
	Radarr   ArrConfig      `mapstructure:"radarr"`
	Sonarr   ArrConfig      `mapstructure:"sonarr"`
	Server   ServerConfig   `mapstructure:"server"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Logging  logging.Config `mapstructure:"logging"`
}

// CatalogConfig locates the catalog snapshot and database
type CatalogConfig struct {
	// Snapshot is a JSON snapshot file. Empty means use the database.
	Snapshot string `mapstructure:"snapshot"`
	Database string `mapstructure:"database"`
	// Locale is a BCP 47 tag used for collation, e.g. "en" or "de".
	Locale string `mapstructure:"locale"`
}

type MatchingConfig struct {
	MaxStartIndex int  `mapstructure:"max_start_index"`
	Strict        bool `mapstructure:"strict"`
}

type GroupingConfig struct {
	Workers        int `mapstructure:"workers"`
	MinProbeSizeMB int `mapstructure:"min_probe_size_mb"`
}

type ProbeConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Binary  string        `mapstructure:"binary"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ArrConfig holds Radarr or Sonarr API settings
type ArrConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	// APIKey, when set, must be sent in the X-Api-Key header.
	APIKey string `mapstructure:"api_key"`
}

// WatchConfig lists directories whose new files get classified
type WatchConfig struct {
	Directories []string      `mapstructure:"directories"`
	Debounce    time.Duration `mapstructure:"debounce"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Locale: "und",
		},
		Matching: MatchingConfig{
			MaxStartIndex: 2,
			Strict:        false,
		},
		Grouping: GroupingConfig{
			Workers:        4,
			MinProbeSizeMB: 50,
		},
		Probe: ProbeConfig{
			Enabled: false,
			Binary:  "ffprobe",
			Timeout: 30 * time.Second,
		},
		Radarr: ArrConfig{Timeout: 30 * time.Second},
		Sonarr: ArrConfig{Timeout: 30 * time.Second},
		Server: ServerConfig{
			Addr:        ":8687",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Watch: WatchConfig{
			Directories: []string{},
			Debounce:    2 * time.Second,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads the user's config file, if any, on top of the defaults.
// MEDIAMATCH_* environment variables override file values.
func Load() (*Config, error) {
	configPath, err := paths.ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from configPath. A missing file is not an
// error.
func LoadFrom(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix("MEDIAMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()
	bindDefaults(v, cfg)

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return cfg, nil
}

// bindDefaults registers every key so AutomaticEnv can override keys that
// are absent from the file.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("catalog.snapshot", cfg.Catalog.Snapshot)
	v.SetDefault("catalog.database", cfg.Catalog.Database)
	v.SetDefault("catalog.locale", cfg.Catalog.Locale)
	v.SetDefault("matching.max_start_index", cfg.Matching.MaxStartIndex)
	v.SetDefault("matching.strict", cfg.Matching.Strict)
	v.SetDefault("grouping.workers", cfg.Grouping.Workers)
	v.SetDefault("grouping.min_probe_size_mb", cfg.Grouping.MinProbeSizeMB)
	v.SetDefault("probe.enabled", cfg.Probe.Enabled)
	v.SetDefault("probe.binary", cfg.Probe.Binary)
	v.SetDefault("probe.timeout", cfg.Probe.Timeout)
	for _, arr := range []string{"radarr", "sonarr"} {
		v.SetDefault(arr+".enabled", false)
		v.SetDefault(arr+".url", "")
		v.SetDefault(arr+".api_key", "")
		v.SetDefault(arr+".timeout", 30*time.Second)
	}
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.cors_origins", cfg.Server.CORSOrigins)
	v.SetDefault("server.api_key", cfg.Server.APIKey)
	v.SetDefault("watch.directories", cfg.Watch.Directories)
	v.SetDefault("watch.debounce", cfg.Watch.Debounce)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", cfg.Logging.MaxBackups)
}

// DatabasePath returns the configured database path or the default one.
func (c *Config) DatabasePath() string {
	if c.Catalog.Database != "" {
		return c.Catalog.Database
	}
	dbPath, err := paths.DatabasePath()
	if err != nil {
		return "./catalog.db"
	}
	return dbPath
}

// Save writes the configuration to the user's config file.
func (c *Config) Save() error {
	configFile, err := paths.ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configFile)
}

// SaveTo writes the configuration to configFile, creating its directory.
func (c *Config) SaveTo(configFile string) error {
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}
	return os.WriteFile(configFile, []byte(c.ToTOML()), 0600)
}

func (c *Config) ToTOML() string {
	return fmt.Sprintf(`# mediamatch configuration
# Generated by: mediamatch config init

# ============================================================================
# CATALOG
# Reference catalog of movies, series and anime. Use either a JSON snapshot
# or the sqlite database filled by "mediamatch catalog import".
# ============================================================================
[catalog]
snapshot = %q
database = %q
# Collation locale for accent/case-insensitive token matching
locale = %q

# ============================================================================
# MATCHING
# ============================================================================
[matching]
# How many leading junk tokens may precede a title
max_start_index = %d
# Require the strict name (with year or qualifier) to match
strict = %v

# ============================================================================
# GROUPING
# ============================================================================
[grouping]
# Parallel classification workers (1 = sequential)
workers = %d
# Files below this size are not probed for anime detection
min_probe_size_mb = %d

# ============================================================================
# MEDIA PROBE (ffprobe)
# ============================================================================
[probe]
enabled = %v
binary = %q
timeout = %q

# ============================================================================
# RADARR (online movie search)
# Get API key from: Radarr -> Settings -> General -> API Key
# ============================================================================
[radarr]
enabled = %v
url = %q
api_key = %q
timeout = %q

# ============================================================================
# SONARR (online series search)
# ============================================================================
[sonarr]
enabled = %v
url = %q
api_key = %q
timeout = %q

# ============================================================================
# HTTP API
# ============================================================================
[server]
addr = %q
cors_origins = %s
# Leave empty to disable API key authentication
api_key = %q

# ============================================================================
# WATCHER
# ============================================================================
[watch]
directories = %s
debounce = %q

# ============================================================================
# LOGGING
# ============================================================================
[logging]
level = %q
file = %q
max_size_mb = %d
max_backups = %d
`,
		c.Catalog.Snapshot,
		c.Catalog.Database,
		c.Catalog.Locale,
		c.Matching.MaxStartIndex,
		c.Matching.Strict,
		c.Grouping.Workers,
		c.Grouping.MinProbeSizeMB,
		c.Probe.Enabled,
		c.Probe.Binary,
		c.Probe.Timeout.String(),
		c.Radarr.Enabled,
		c.Radarr.URL,
		c.Radarr.APIKey,
		c.Radarr.Timeout.String(),
		c.Sonarr.Enabled,
		c.Sonarr.URL,
		c.Sonarr.APIKey,
		c.Sonarr.Timeout.String(),
		c.Server.Addr,
		formatStringSlice(c.Server.CORSOrigins),
		c.Server.APIKey,
		formatStringSlice(c.Watch.Directories),
		c.Watch.Debounce.String(),
		c.Logging.Level,
		c.Logging.File,
		c.Logging.MaxSizeMB,
		c.Logging.MaxBackups,
	)
}

func formatStringSlice(s []string) string {
	if len(s) == 0 {
		return "[]"
	}
	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
