package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// GoogleCredentials represents the structure of a Google OAuth credentials
// JSON file as downloaded from the Google Cloud Console.
type GoogleCredentials struct {
	Installed struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"installed"`
	Web struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"web"`
}

// LoadGoogleCredentials loads Google OAuth credentials from a JSON file.
func LoadGoogleCredentials(path string) (clientID, clientSecret string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds GoogleCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", "", fmt.Errorf("failed to parse credentials file: %w", err)
	}

	// Try "installed" first (for desktop apps), then "web"
	if creds.Installed.ClientID != "" {
		return creds.Installed.ClientID, creds.Installed.ClientSecret, nil
	}
	if creds.Web.ClientID != "" {
		return creds.Web.ClientID, creds.Web.ClientSecret, nil
	}

	return "", "", fmt.Errorf("no client_id found in credentials file (expected 'installed' or 'web' section)")
}

// Config holds the settings for the sync tool. The calendar and the feed
// source are given on the command line per run; the config carries the
// ambient settings that stay the same across runs.
type Config struct {
	CredentialsPath string `json:"credentials_path,omitempty"` // Path to the Google OAuth credentials JSON file
	TokenPath       string `json:"token_path,omitempty"`       // Path to store the OAuth token
	Proxy           string `json:"proxy,omitempty"`            // Proxy URL for fetching feeds
	FeedUsername    string `json:"feed_username,omitempty"`    // Basic auth user for the feed
	FeedPassword    string `json:"feed_password,omitempty"`    // Basic auth password for the feed
	CalendarPrefix  string `json:"calendar_prefix,omitempty"`  // Prefix for calendars created in directory mode
	Schedule        string `json:"schedule,omitempty"`         // Cron expression for watch mode
	Debug           bool   `json:"debug,omitempty"`            // Enable DEBUG logging
}

// Flags holds command-line values that take precedence over environment
// variables and the config file. Zero values mean the flag was not given.
type Flags struct {
	CredentialsPath string
	TokenPath       string
	Proxy           string
	FeedUsername    string
	FeedPassword    string
	CalendarPrefix  string
	Schedule        string
	Debug           bool
}

// LoadConfigFromFile loads configuration from a JSON file.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// LoadConfig loads configuration with the following precedence (highest to
// lowest):
// 1. Command-line flags
// 2. Environment variables (ICSSYNC_*)
// 3. Config file
// 4. Defaults
func LoadConfig(configFile string, flags Flags) (*Config, error) {
	var config Config

	// Step 1: Load from config file if provided
	if configFile != "" {
		fileConfig, err := LoadConfigFromFile(configFile)
		if err != nil {
			return nil, err
		}
		config = *fileConfig
	}

	// Step 2: Override with environment variables
	if v := os.Getenv("ICSSYNC_CREDENTIALS"); v != "" {
		config.CredentialsPath = v
	}
	if v := os.Getenv("ICSSYNC_TOKEN"); v != "" {
		config.TokenPath = v
	}
	if v := os.Getenv("ICSSYNC_PROXY"); v != "" {
		config.Proxy = v
	}
	if v := os.Getenv("ICSSYNC_FEED_USERNAME"); v != "" {
		config.FeedUsername = v
	}
	if v := os.Getenv("ICSSYNC_FEED_PASSWORD"); v != "" {
		config.FeedPassword = v
	}
	if v := os.Getenv("ICSSYNC_CALENDAR_PREFIX"); v != "" {
		config.CalendarPrefix = v
	}
	if v := os.Getenv("ICSSYNC_SCHEDULE"); v != "" {
		config.Schedule = v
	}
	if v := os.Getenv("ICSSYNC_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ICSSYNC_DEBUG value: %w", err)
		}
		config.Debug = debug
	}

	// Step 3: Override with command-line flags (highest priority)
	if flags.CredentialsPath != "" {
		config.CredentialsPath = flags.CredentialsPath
	}
	if flags.TokenPath != "" {
		config.TokenPath = flags.TokenPath
	}
	if flags.Proxy != "" {
		config.Proxy = flags.Proxy
	}
	if flags.FeedUsername != "" {
		config.FeedUsername = flags.FeedUsername
	}
	if flags.FeedPassword != "" {
		config.FeedPassword = flags.FeedPassword
	}
	if flags.CalendarPrefix != "" {
		config.CalendarPrefix = flags.CalendarPrefix
	}
	if flags.Schedule != "" {
		config.Schedule = flags.Schedule
	}
	if flags.Debug {
		config.Debug = true
	}

	// Step 4: Apply defaults
	if config.CredentialsPath == "" {
		config.CredentialsPath = "credentials.json"
	}
	if config.TokenPath == "" {
		config.TokenPath = "token.json"
	}
	if config.Schedule == "" {
		config.Schedule = "@hourly"
	}

	return &config, nil
}
