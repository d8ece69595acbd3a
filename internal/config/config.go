// Package config loads runtime settings and per-site profiles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/corpix/uarand"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"forum-harvester/internal/adapters/fetch"
)

// RandomUserAgent selects a random desktop user agent per run.
const RandomUserAgent = "random"

// Config holds every runtime setting.
type Config struct {
	Delay     time.Duration
	MaxPages  int
	UserAgent string

	SitesFile    string
	PatternsFile string
	OutputDir    string
	Database     string

	ChromePath       string
	ChromeRemoteURL  string
	ChromeProfileDir string
	Headless         bool

	LogLevel      string
	Port          string
	CacheTTL      time.Duration
	ScrapeTimeout time.Duration
	SitesReload   time.Duration
}

// SetDefaults registers default values and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("delay", 1500*time.Millisecond)
	v.SetDefault("max_pages", 0)
	v.SetDefault("user_agent", fetch.DefaultUserAgent)
	v.SetDefault("sites_file", "cookies.json")
	v.SetDefault("patterns_file", "")
	v.SetDefault("output_dir", "downloads")
	v.SetDefault("database", "harvester.db")
	v.SetDefault("chrome_path", "")
	v.SetDefault("chrome_remote_url", "")
	v.SetDefault("chrome_profile_dir", "XenForo")
	v.SetDefault("headless", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("port", "3000")
	v.SetDefault("cache_ttl_minutes", 5)
	v.SetDefault("scrape_timeout", 10*time.Minute)
	v.SetDefault("sites_reload", 30*time.Second)

	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for deployments that already export them.
	_ = v.BindEnv("chrome_path", "HARVESTER_CHROME_PATH", "CHROME_PATH")
	_ = v.BindEnv("port", "HARVESTER_PORT", "PORT")
	_ = v.BindEnv("cache_ttl_minutes", "HARVESTER_CACHE_TTL_MINUTES", "CACHE_TTL_MINUTES")
}

// Load reads .env, then the optional config file, into a Config.
// An empty cfgFile searches for harvester.yaml in the working directory.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("harvester")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return FromViper(v), nil
}

// FromViper snapshots the current viper values.
func FromViper(v *viper.Viper) *Config {
	ttl := v.GetInt("cache_ttl_minutes")
	if ttl <= 0 {
		ttl = 5
	}
	return &Config{
		Delay:            v.GetDuration("delay"),
		MaxPages:         v.GetInt("max_pages"),
		UserAgent:        v.GetString("user_agent"),
		SitesFile:        v.GetString("sites_file"),
		PatternsFile:     v.GetString("patterns_file"),
		OutputDir:        v.GetString("output_dir"),
		Database:         v.GetString("database"),
		ChromePath:       v.GetString("chrome_path"),
		ChromeRemoteURL:  v.GetString("chrome_remote_url"),
		ChromeProfileDir: v.GetString("chrome_profile_dir"),
		Headless:         v.GetBool("headless"),
		LogLevel:         v.GetString("log_level"),
		Port:             v.GetString("port"),
		CacheTTL:         time.Duration(ttl) * time.Minute,
		ScrapeTimeout:    v.GetDuration("scrape_timeout"),
		SitesReload:      v.GetDuration("sites_reload"),
	}
}

// ResolvedUserAgent returns the configured user agent, picking a random one
// when set to "random".
func (c *Config) ResolvedUserAgent() string {
	switch strings.TrimSpace(c.UserAgent) {
	case "":
		return fetch.DefaultUserAgent
	case RandomUserAgent:
		return uarand.GetRandom()
	default:
		return c.UserAgent
	}
}

// BrowserConfig derives the rendered-tier launch settings for a site.
// userAgent must match the one the lightweight tier sends.
func (c *Config) BrowserConfig(cookieURL, userAgent string) fetch.BrowserConfig {
	return fetch.BrowserConfig{
		CookieURL:  cookieURL,
		UserAgent:  userAgent,
		Headless:   c.Headless,
		ChromePath: c.ChromePath,
		RemoteURL:  c.ChromeRemoteURL,
		ProfileDir: c.ChromeProfileDir,
	}
}
