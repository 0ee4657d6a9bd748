package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Redis      RedisConfig      `yaml:"redis"`
	Cache      CacheConfig      `yaml:"cache"`
	Database   DatabaseConfig   `yaml:"database"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Exports    ExportConfig     `yaml:"exports"`
	Screens    ScreensConfig    `yaml:"screens"`
	Dashboard  DashboardConfig  `yaml:"dashboard"`
	Settings   SettingsConfig   `yaml:"settings"`
	Forms      FormsConfig      `yaml:"forms"`
	Google     GoogleConfig     `yaml:"google"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Stub       StubConfig       `yaml:"stub"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	BaseURL   string             `yaml:"base_url"`
	Token     string             `yaml:"token"`
	TokenFile string             `yaml:"token_file"`
	Timeout   time.Duration      `yaml:"timeout"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// CacheConfig controls the GET response cache. Only paths starting with one
// of Prefixes are cached; list screens are never cached unless listed here.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	TTL      time.Duration `yaml:"ttl"`
	Prefixes []string      `yaml:"prefixes"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type BackupConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval"`
	RetentionDays int           `yaml:"retention_days"`
	StoragePath   string        `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
	HealthCheckPort   int  `yaml:"health_check_port"`
}

type ExportConfig struct {
	Path   string `yaml:"path"`
	Cap    int    `yaml:"cap"`
	Format string `yaml:"format"`
}

// ScreensConfig holds the fixed page size of every list screen.
type ScreensConfig struct {
	Users          int `yaml:"users_page_size"`
	Bookings       int `yaml:"bookings_page_size"`
	Accommodations int `yaml:"accommodations_page_size"`
	Transportation int `yaml:"transportation_page_size"`
	Tours          int `yaml:"tours_page_size"`
	HelpArticles   int `yaml:"help_articles_page_size"`
	SupportTickets int `yaml:"support_tickets_page_size"`
}

type DashboardConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval"`
	MaxPollInterval time.Duration `yaml:"max_poll_interval"`
	ActivityLimit   int           `yaml:"activity_limit"`
}

type SettingsConfig struct {
	Keys []SettingKey `yaml:"keys"`
}

type SettingKey struct {
	Key         string `yaml:"key"`
	Default     string `yaml:"default"`
	Description string `yaml:"description"`
}

type FormsConfig struct {
	StrictNumbers bool `yaml:"strict_numbers"`
}

type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	PublishExports  bool   `yaml:"publish_exports"`
}

type TelegramConfig struct {
	BotToken string  `yaml:"bot_token"`
	ChatIDs  []int64 `yaml:"chat_ids"`
	MinLevel string  `yaml:"min_level"`
	Debug    bool    `yaml:"debug"`
}

type StubConfig struct {
	Port  int    `yaml:"port"`
	Token string `yaml:"token"`
	Seed  bool   `yaml:"seed"`
}

// DefaultSettingKeys is the key set the settings screen manages when the
// config file does not list any.
var DefaultSettingKeys = []SettingKey{
	{Key: "siteName", Default: "Ndarehe", Description: "Public site name"},
	{Key: "siteDescription", Default: "Discover Rwanda", Description: "Public site tagline"},
	{Key: "contactEmail", Default: "info@ndarehe.com", Description: "Support contact email"},
	{Key: "contactPhone", Default: "", Description: "Support contact phone"},
	{Key: "currency", Default: "RWF", Description: "Default currency"},
	{Key: "timezone", Default: "Africa/Kigali", Description: "Platform timezone"},
	{Key: "maintenanceMode", Default: "false", Description: "Reject public traffic"},
	{Key: "allowRegistrations", Default: "true", Description: "Allow new sign ups"},
	{Key: "requireEmailVerification", Default: "true", Description: "Require verified email before booking"},
	{Key: "emailNotifications", Default: "true", Description: "Send email notifications"},
	{Key: "smsNotifications", Default: "false", Description: "Send SMS notifications"},
	{Key: "maxBookingsPerUser", Default: "10", Description: "Open bookings allowed per user"},
	{Key: "bookingCancellationHours", Default: "24", Description: "Free cancellation window in hours"},
	{Key: "commissionRate", Default: "10", Description: "Platform commission percentage"},
}

func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api base_url is required")
	}
	if c.Exports.Cap <= 0 {
		return errors.New("exports cap must be positive")
	}
	switch c.Exports.Format {
	case "csv", "xlsx":
	default:
		return fmt.Errorf("unsupported export format %q", c.Exports.Format)
	}
	if c.Dashboard.PollInterval <= 0 {
		return errors.New("dashboard poll_interval must be positive")
	}
	return ValidateSettingKeys(c.Settings.Keys)
}

func ValidateSettingKeys(keys []SettingKey) error {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if strings.TrimSpace(k.Key) == "" {
			return errors.New("setting key must not be empty")
		}
		if seen[k.Key] {
			return fmt.Errorf("duplicate setting key found: %s", k.Key)
		}
		seen[k.Key] = true
	}
	return nil
}

// Token returns the bearer token from the config, falling back to the token
// file when the inline value is empty.
func (c *Config) Token() (string, error) {
	if tok := strings.TrimSpace(c.API.Token); tok != "" {
		return tok, nil
	}
	if c.API.TokenFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.API.TokenFile)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "ndarehe-admin"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if len(c.Cache.Prefixes) == 0 {
		c.Cache.Prefixes = []string{"/admin/help/categories", "/admin/reports/"}
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Exports.Cap == 0 {
		c.Exports.Cap = 1000
	}
	if c.Exports.Format == "" {
		c.Exports.Format = "csv"
	}

	pageSizes := []*int{
		&c.Screens.Users, &c.Screens.Bookings, &c.Screens.Accommodations,
		&c.Screens.Transportation, &c.Screens.Tours, &c.Screens.HelpArticles,
		&c.Screens.SupportTickets,
	}
	for _, size := range pageSizes {
		if *size == 0 {
			*size = 10
		}
	}

	if c.Dashboard.PollInterval == 0 {
		c.Dashboard.PollInterval = 10 * time.Second
	}
	if c.Dashboard.MaxPollInterval == 0 {
		c.Dashboard.MaxPollInterval = 2 * time.Minute
	}
	if c.Dashboard.ActivityLimit == 0 {
		c.Dashboard.ActivityLimit = 10
	}
	if len(c.Settings.Keys) == 0 {
		c.Settings.Keys = append([]SettingKey(nil), DefaultSettingKeys...)
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/journal.db"
	}
	if c.Backup.Interval == 0 {
		c.Backup.Interval = 24 * time.Hour
	}
	if c.Backup.RetentionDays == 0 {
		c.Backup.RetentionDays = 7
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
	if c.Telegram.MinLevel == "" {
		c.Telegram.MinLevel = "error"
	}
	if c.Stub.Port == 0 {
		c.Stub.Port = 5000
	}
}
