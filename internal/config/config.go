package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	AppBaseURL     string   `yaml:"app_base_url"` // used to build confirmation links
	LogLevel       string   `yaml:"log_level"`
	LogJSON        bool     `yaml:"log_json"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Email          Email    `yaml:"email"`
	Pg             Pg       `yaml:"pg"`
}

type Email struct {
	BaseURL        string `yaml:"base_url"`
	Sender         string `yaml:"sender"`
	SenderName     string `yaml:"sender_name"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the email send timeout, defaulting to 10s.
func (e Email) Timeout() time.Duration {
	if e.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(e.TimeoutSeconds) * time.Second
}

type Pg struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Dbname string `yaml:"dbname"`
}

type Private struct {
	PgPassword     string `yaml:"pg_password"`
	EmailAPIKey    string `yaml:"email_api_key"`
	EmailAPISecret string `yaml:"email_api_secret"`
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder.
// Secrets can be overridden via PG_PASSWORD, EMAIL_API_KEY and
// EMAIL_API_SECRET so deployments don't have to write them to disk.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	applyEnvOverrides(&private)

	return &Config{public, private}
}

func applyEnvOverrides(private *Private) {
	if v := os.Getenv("PG_PASSWORD"); v != "" {
		private.PgPassword = v
	}
	if v := os.Getenv("EMAIL_API_KEY"); v != "" {
		private.EmailAPIKey = v
	}
	if v := os.Getenv("EMAIL_API_SECRET"); v != "" {
		private.EmailAPISecret = v
	}
}
