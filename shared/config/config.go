package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL   = "http://localhost:8000"
	DefaultAPIPort  = 8000
	DefaultDBPath   = "./recon.db"
	DefaultTheme    = "everforest"
	DefaultLogFile  = "bountyboard.log"
	DefaultTimeout  = 10
	DefaultLogLevel = "info"
)

var Themes = []string{"everforest", "purple", "midnight"}

type TelegramConfig struct {
	ChatID int    `yaml:"chat_id"`
	APIKey string `yaml:"api_key"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	DBPath string `yaml:"db_path"`
}

type ClientConfig struct {
	APIURL string `yaml:"api_url"`
	// Request timeout in seconds
	Timeout int    `yaml:"timeout"`
	Theme   string `yaml:"theme"`
	LogFile string `yaml:"log_file"`
}

type Config struct {
	LogLevel string         `yaml:"log_level"`
	Server   ServerConfig   `yaml:"server"`
	Client   ClientConfig   `yaml:"client"`
	Telegram TelegramConfig `yaml:"telegram"`
}

func Default() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		Server: ServerConfig{
			Port:   DefaultAPIPort,
			DBPath: DefaultDBPath,
		},
		Client: ClientConfig{
			APIURL:  DefaultAPIURL,
			Timeout: DefaultTimeout,
			Theme:   DefaultTheme,
			LogFile: DefaultLogFile,
		},
	}
}

// Load reads the yaml file at BOUNTYBOARD_CONFIG (if set) on top of the defaults and
// then applies environment overrides.
func Load() (Config, error) {
	cfg := Default()

	if configFilePath := os.Getenv("BOUNTYBOARD_CONFIG"); configFilePath != "" {
		file, err := os.ReadFile(configFilePath)
		if err != nil {
			return Config{}, fmt.Errorf("Failed to read config yaml: %w", err)
		}

		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return Config{}, fmt.Errorf("Failed to parse config yaml: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if apiURL := os.Getenv("BOUNTYBOARD_API_URL"); apiURL != "" {
		c.Client.APIURL = apiURL
	}

	// PORT is honoured for compatibility with hosted deployments
	portStr := os.Getenv("BOUNTYBOARD_API_PORT")
	if portStr == "" {
		portStr = os.Getenv("PORT")
	}
	if portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("Invalid API port: %s", portStr)
		}
		c.Server.Port = port
	}

	if dbPath := os.Getenv("BOUNTYBOARD_DB_PATH"); dbPath != "" {
		c.Server.DBPath = dbPath
	}
	if theme := os.Getenv("BOUNTYBOARD_THEME"); theme != "" {
		c.Client.Theme = theme
	}
	if logFile := os.Getenv("BOUNTYBOARD_LOG_FILE"); logFile != "" {
		c.Client.LogFile = logFile
	}
	if level := os.Getenv("BOUNTYBOARD_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}

	if chatIDStr := os.Getenv("BOUNTYBOARD_TELEGRAM_CHAT_ID"); chatIDStr != "" {
		chatID, err := strconv.Atoi(chatIDStr)
		if err != nil {
			return fmt.Errorf("Invalid telegram chat ID: %s", chatIDStr)
		}
		c.Telegram.ChatID = chatID
	}
	if apiKey := os.Getenv("BOUNTYBOARD_TELEGRAM_API_KEY"); apiKey != "" {
		c.Telegram.APIKey = apiKey
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("Invalid config: port %v out of range", c.Server.Port)
	}

	if c.Server.DBPath == "" {
		return fmt.Errorf("Invalid config: empty db_path")
	}

	u, err := url.Parse(c.Client.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("Invalid config: api_url %q is not an absolute URL", c.Client.APIURL)
	}

	if c.Client.Timeout < 0 {
		return fmt.Errorf("Invalid config: negative timeout")
	}

	validTheme := false
	for _, theme := range Themes {
		if c.Client.Theme == theme {
			validTheme = true
			break
		}
	}
	if !validTheme {
		return fmt.Errorf("Invalid config: unknown theme %s", c.Client.Theme)
	}

	return nil
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Client.Timeout) * time.Second
}

func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%v", c.Server.Port)
}

func (c Config) TelegramEnabled() bool {
	return c.Telegram.ChatID != 0 && c.Telegram.APIKey != ""
}
