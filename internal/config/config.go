// Package config provides Viper-based hierarchical configuration:
// defaults, then an optional config.yaml, then GRANABOT_* environment
// variables. A .env file, when present, is loaded before Viper runs.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Card describes one configured credit card: the ledger sheet holding its
// purchases and the statement closing day used to derive billing months.
type Card struct {
	Name       string `mapstructure:"name" yaml:"name"`
	Sheet      string `mapstructure:"sheet" yaml:"sheet"`
	ClosingDay int    `mapstructure:"closing_day" yaml:"closing_day"`
}

// Config is the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Sheets struct {
		SpreadsheetID   string `mapstructure:"spreadsheet_id" yaml:"spreadsheet_id"`
		CredentialsFile string `mapstructure:"credentials_file" yaml:"-"`
		Expenses        string `mapstructure:"expenses" yaml:"expenses"`
		Income          string `mapstructure:"income" yaml:"income"`
		Debts           string `mapstructure:"debts" yaml:"debts"`
		Goals           string `mapstructure:"goals" yaml:"goals"`
	} `mapstructure:"sheets" yaml:"sheets"`

	Cards []Card `mapstructure:"cards" yaml:"cards"`

	AI struct {
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Categories struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"categories" yaml:"categories"`
}

// LoadEnv loads a .env file from the working directory if one exists.
func LoadEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// Load initializes Viper and returns the validated configuration.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.granabot")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GRANABOT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file %s: %w", v.ConfigFileUsed(), err)
		}
		// No config file is fine, defaults and env vars still apply.
	}

	// API key and credentials always come from unprefixed env vars.
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding GEMINI_API_KEY: %w", err)
	}
	if err := v.BindEnv("sheets.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS"); err != nil {
		return nil, fmt.Errorf("binding GOOGLE_APPLICATION_CREDENTIALS: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("sheets.expenses", "Gastos")
	v.SetDefault("sheets.income", "Receitas")
	v.SetDefault("sheets.debts", "Dívidas")
	v.SetDefault("sheets.goals", "Metas")

	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 30)

	v.SetDefault("categories.file", "categories.yaml")
}

func validate(cfg *Config) error {
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", cfg.Log.Format)
	}
	for _, c := range cfg.Cards {
		if c.Name == "" || c.Sheet == "" {
			return fmt.Errorf("card entries need both name and sheet")
		}
		if c.ClosingDay < 1 || c.ClosingDay > 31 {
			return fmt.Errorf("card %s: closing_day must be between 1 and 31, got %d", c.Name, c.ClosingDay)
		}
	}
	if cfg.AI.TimeoutSeconds < 1 || cfg.AI.TimeoutSeconds > 300 {
		return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got %d", cfg.AI.TimeoutSeconds)
	}
	return nil
}

// CardNames returns the configured card names in declaration order.
func (c *Config) CardNames() []string {
	names := make([]string, len(c.Cards))
	for i, card := range c.Cards {
		names[i] = card.Name
	}
	return names
}

// FindCard locates a card by exact or partial case-insensitive name match.
func (c *Config) FindCard(name string) (Card, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, card := range c.Cards {
		if strings.ToLower(card.Name) == needle {
			return card, true
		}
	}
	for _, card := range c.Cards {
		if needle != "" && strings.Contains(strings.ToLower(card.Name), needle) {
			return card, true
		}
	}
	return Card{}, false
}
