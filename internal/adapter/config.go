package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mmcdole/bilirec/internal/domain"
	"github.com/spf13/viper"
)

// envKeyReplacer maps nested keys to env names: auth.sessdata -> BILIREC_AUTH_SESSDATA
var envKeyReplacer = strings.NewReplacer(".", "_")

// Config holds all application configuration
type Config struct {
	Auth     AuthConfig      `mapstructure:"auth"`
	API      APIConfig       `mapstructure:"api"`
	Settings domain.Settings `mapstructure:"settings"`
	Store    StoreConfig     `mapstructure:"store"`
	Player   PlayerConfig    `mapstructure:"player"`
	Logging  LoggingConfig   `mapstructure:"logging"`
}

// AuthConfig holds the session cookies and app key
type AuthConfig struct {
	SessData  string `mapstructure:"sessdata"`
	BiliJct   string `mapstructure:"bili_jct"`
	AccessKey string `mapstructure:"access_key"` // app feed only
	Mid       int64  `mapstructure:"mid"`        // resolved from nav when 0
}

// APIConfig holds upstream endpoints
type APIConfig struct {
	WebURL         string `mapstructure:"web_url"`
	AppURL         string `mapstructure:"app_url"`
	LiveURL        string `mapstructure:"live_url"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// StoreConfig holds the persistent key-value store location
type StoreConfig struct {
	Path string `mapstructure:"path"` // empty = memory only
}

// PlayerConfig holds the external program videos are opened with
type PlayerConfig struct {
	Command   string   `mapstructure:"command"` // empty = detect, then browser
	Args      []string `mapstructure:"args"`
	StartFlag string   `mapstructure:"start_flag"` // e.g. "--start=", auto-detected for known players
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			WebURL:         "https://api.bilibili.com",
			AppURL:         "https://app.bilibili.com",
			LiveURL:        "https://api.live.bilibili.com",
			UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
			TimeoutSeconds: 30,
		},
		Settings: domain.DefaultSettings(),
		Store: StoreConfig{
			Path: filepath.Join(defaultDataPath(), "bilirec.db"),
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "bilirec.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "bilirec")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "bilirec")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	if dir := os.Getenv("BILIREC_CONFIG_DIR"); dir != "" {
		return dir
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "bilirec")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "bilirec")
	}
}

// ConfigFile returns the path SaveConfig writes to
func ConfigFile() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}

// LoadConfig loads configuration from file and environment.
// A .env file in the working directory is loaded first so cookies can be
// kept out of the config file (BILIREC_AUTH_SESSDATA=...).
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // a missing .env is fine

	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("BILIREC")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
	for _, key := range []string{"auth.sessdata", "auth.bili_jct", "auth.access_key", "auth.mid"} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	viper.Set("auth.sessdata", cfg.Auth.SessData)
	viper.Set("auth.bili_jct", cfg.Auth.BiliJct)
	viper.Set("auth.access_key", cfg.Auth.AccessKey)
	viper.Set("auth.mid", cfg.Auth.Mid)

	viper.Set("api.web_url", cfg.API.WebURL)
	viper.Set("api.app_url", cfg.API.AppURL)
	viper.Set("api.live_url", cfg.API.LiveURL)
	viper.Set("api.user_agent", cfg.API.UserAgent)
	viper.Set("api.timeout_seconds", cfg.API.TimeoutSeconds)

	viper.Set("store.path", cfg.Store.Path)

	viper.Set("player.command", cfg.Player.Command)
	viper.Set("player.args", cfg.Player.Args)
	viper.Set("player.start_flag", cfg.Player.StartFlag)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	return SaveSettings(cfg.Settings)
}

// SaveSettings writes the settings record, keeping the rest of the file
func SaveSettings(s domain.Settings) error {
	for key, value := range SettingsKeys(s) {
		viper.Set(key, value)
	}
	return writeConfig()
}

// SettingsKeys flattens the settings record into snake_case viper keys
func SettingsKeys(s domain.Settings) map[string]any {
	tabs := make([]string, len(s.EnabledTabs))
	for i, t := range s.EnabledTabs {
		tabs[i] = string(t)
	}
	return map[string]any{
		"settings.last_tab":                      string(s.LastTab),
		"settings.enabled_tabs":                  tabs,
		"settings.page_size":                     s.PageSize,
		"settings.filter.enabled":                s.Filter.Enabled,
		"settings.filter.min_play_count":         s.Filter.MinPlayCount,
		"settings.filter.min_duration_seconds":   s.Filter.MinDurationSeconds,
		"settings.filter.blocked_authors":        s.Filter.BlockedAuthors,
		"settings.filter.blocked_title_keywords": s.Filter.BlockedTitleKeywords,
		"settings.filter.exempt_followed":        s.Filter.ExemptFollowed,
		"settings.watchlater.shuffle":            s.Watchlater.Shuffle,
		"settings.watchlater.add_separator":      s.Watchlater.AddSeparator,
		"settings.fav.shuffle":                   s.Fav.Shuffle,
		"settings.fav.add_separator":             s.Fav.AddSeparator,
		"settings.fav.folder_id":                 s.Fav.FolderID,
		"settings.fav.excluded_folder_ids":       s.Fav.ExcludedFolderIDs,
		"settings.dynamic.up_mid":                s.Dynamic.UpMid,
		"settings.dynamic.follow_group_tag_id":   s.Dynamic.FollowGroupTagID,
		"settings.dynamic.search_text":           s.Dynamic.SearchText,
		"settings.dynamic.show_live":             s.Dynamic.ShowLive,
		"settings.dynamic.min_duration_seconds":  s.Dynamic.MinDurationSeconds,
		"settings.hot.weekly_shuffle":            s.Hot.WeeklyShuffle,
		"settings.hot.ranking_rid":               s.Hot.RankingRid,
		"settings.live.show_recent":              s.Live.ShowRecent,
	}
}

func writeConfig() error {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(ConfigFile()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsLoggedIn returns true if a session cookie is configured
func (c *Config) IsLoggedIn() bool {
	return c.Auth.SessData != ""
}

// ClearAuth removes the session while preserving other settings
func ClearAuth() error {
	viper.Set("auth.sessdata", "")
	viper.Set("auth.bili_jct", "")
	viper.Set("auth.access_key", "")
	viper.Set("auth.mid", 0)
	return writeConfig()
}
