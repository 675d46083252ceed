// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Wear       WearConfig       `yaml:"wear"`
	Worker     WorkerConfig     `yaml:"worker"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int           `yaml:"max_connections"`
	MinConnections int           `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"` // перекрывается переменной JWT_SECRET
}

type WearConfig struct {
	// окно дедупликации отчётов с часов, в обе стороны от start_time
	DedupWindow time.Duration `yaml:"dedup_window"`
}

type WorkerConfig struct {
	Interval      time.Duration `yaml:"interval"`
	StaleTimerAge time.Duration `yaml:"stale_timer_age"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "postgres" или "inmemory"
}

func Load() (*Config, error) {
	file, err := os.Open("config.yml")
	if err != nil {
		return nil, fmt.Errorf("не могу открыть config.yml: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга config.yml: %w", err)
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}

	if cfg.Wear.DedupWindow == 0 {
		cfg.Wear.DedupWindow = 2 * time.Minute
	}
	if cfg.Worker.Interval == 0 {
		cfg.Worker.Interval = 15 * time.Minute
	}
	if cfg.Worker.StaleTimerAge == 0 {
		cfg.Worker.StaleTimerAge = 12 * time.Hour
	}

	return &cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
