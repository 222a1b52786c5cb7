package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for att, stored in ~/.att/config.yaml.
type Config struct {
	TimeTracker TimeTrackerConfig `mapstructure:"time_tracker" yaml:"time_tracker"`
	Jira        JiraConfig        `mapstructure:"jira" yaml:"jira"`
	Outlook     OutlookConfig     `mapstructure:"outlook" yaml:"outlook"`

	// HoursPerDay is the default number of hours submitted each working day.
	HoursPerDay float64 `mapstructure:"hours_per_day" yaml:"hours_per_day"`
	// HoursPerDayOverride maps a weekday key ("mon".."sun") to its hours.
	HoursPerDayOverride map[string]float64 `mapstructure:"hours_per_day_override" yaml:"hours_per_day_override"`
	// TasksAppend maps a weekday key to an extra description line.
	TasksAppend map[string]string `mapstructure:"tasks_append" yaml:"tasks_append"`
	// WorkingDays lists the weekday keys on which an entry is submitted.
	WorkingDays []string `mapstructure:"working_days" yaml:"working_days"`
	// IncludeMeetings adds accepted calendar meetings to the description.
	IncludeMeetings bool `mapstructure:"include_meetings" yaml:"include_meetings"`
	// Schedule is the cron spec used by `att schedule`.
	Schedule string    `mapstructure:"schedule" yaml:"schedule"`
	Log      LogConfig `mapstructure:"log" yaml:"log"`
}

// TimeTrackerConfig holds the legacy time tracker credentials and the
// labels of the entry to submit.
type TimeTrackerConfig struct {
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	User       string        `mapstructure:"user" yaml:"user"`
	Password   string        `mapstructure:"password" yaml:"password"`
	Project    string        `mapstructure:"project" yaml:"project"`
	Assignment string        `mapstructure:"assignment" yaml:"assignment"`
	FocalPoint string        `mapstructure:"focal_point" yaml:"focal_point"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// JiraConfig holds the issue tracker settings.
type JiraConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// User is the Jira username the tickets are assigned to.
	User string `mapstructure:"user" yaml:"user"`
	// Email and Token authenticate against the REST API.
	Email string `mapstructure:"email" yaml:"email"`
	Token string `mapstructure:"token" yaml:"token"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar settings.
type OutlookConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `mapstructure:"tenant_id" yaml:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `mapstructure:"client_id" yaml:"client_id"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = local.
	Timezone string `mapstructure:"timezone" yaml:"timezone"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

const (
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	// DefaultSchedule submits at 18:00 on weekdays.
	DefaultSchedule = "0 18 * * MON-FRI"
)

// EnvPrefix prefixes environment overrides, e.g. ATT_TIME_TRACKER_PASSWORD.
const EnvPrefix = "ATT"

// SetDefaults registers every key with its default so that environment
// variables are picked up for all of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("time_tracker.base_url", "")
	v.SetDefault("time_tracker.user", "")
	v.SetDefault("time_tracker.password", "")
	v.SetDefault("time_tracker.project", "")
	v.SetDefault("time_tracker.assignment", "")
	v.SetDefault("time_tracker.focal_point", "")
	v.SetDefault("time_tracker.timeout", "30s")

	v.SetDefault("jira.base_url", "")
	v.SetDefault("jira.user", "")
	v.SetDefault("jira.email", "")
	v.SetDefault("jira.token", "")

	v.SetDefault("outlook.enabled", false)
	v.SetDefault("outlook.tenant_id", DefaultTenantID)
	v.SetDefault("outlook.client_id", DefaultClientID)
	v.SetDefault("outlook.timezone", "")

	v.SetDefault("hours_per_day", 8.0)
	v.SetDefault("hours_per_day_override", map[string]float64{})
	v.SetDefault("tasks_append", map[string]string{})
	v.SetDefault("working_days", []string{"mon", "tue", "wed", "thu", "fri"})
	v.SetDefault("include_meetings", false)
	v.SetDefault("schedule", DefaultSchedule)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// DefaultPath returns the path to ~/.att/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".att", "config.yaml"), nil
}

// New returns a viper instance with defaults and environment overrides
// for the config file at path.
func New(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path (DefaultPath when empty), creating it
// from Template on first run, and applies ATT_* environment overrides.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		// First run: write the annotated template so users can discover options.
		if err := WriteTemplate(path, false); err != nil {
			return Config{}, err
		}
	}

	v := New(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	for i, d := range c.WorkingDays {
		c.WorkingDays[i] = strings.ToLower(strings.TrimSpace(d))
	}
	if c.HoursPerDayOverride == nil {
		c.HoursPerDayOverride = map[string]float64{}
	}
	if c.TasksAppend == nil {
		c.TasksAppend = map[string]string{}
	}
}

// Validate reports missing settings required to talk to the time tracker.
func (c Config) Validate() error {
	var missing []string
	for key, val := range map[string]string{
		"time_tracker.base_url":    c.TimeTracker.BaseURL,
		"time_tracker.user":        c.TimeTracker.User,
		"time_tracker.password":    c.TimeTracker.Password,
		"time_tracker.project":     c.TimeTracker.Project,
		"time_tracker.assignment":  c.TimeTracker.Assignment,
		"time_tracker.focal_point": c.TimeTracker.FocalPoint,
	} {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.HoursPerDay <= 0 {
		return fmt.Errorf("hours_per_day must be positive, got %v", c.HoursPerDay)
	}
	return nil
}

// ValidateJira reports missing issue tracker settings.
func (c Config) ValidateJira() error {
	if c.Jira.BaseURL == "" || c.Jira.User == "" || c.Jira.Email == "" || c.Jira.Token == "" {
		return errors.New("jira.base_url, jira.user, jira.email and jira.token are required")
	}
	return nil
}

// HoursFor returns the hours to submit on the given weekday key.
func (c Config) HoursFor(weekday string) float64 {
	if h, ok := c.HoursPerDayOverride[weekday]; ok {
		return h
	}
	return c.HoursPerDay
}

// IsWorkingDay reports whether weekday is listed in WorkingDays.
func (c Config) IsWorkingDay(weekday string) bool {
	for _, d := range c.WorkingDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// Masked returns a copy with secrets replaced, for display.
func (c Config) Masked() Config {
	out := c
	if out.TimeTracker.Password != "" {
		out.TimeTracker.Password = "********"
	}
	if out.Jira.Token != "" {
		out.Jira.Token = "********"
	}
	return out
}
