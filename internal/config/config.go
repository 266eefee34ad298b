package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server Server `yaml:"server"`
	App    App    `yaml:"app"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type App struct {
	JwtSecret            string `yaml:"jwtSecret"`
	JwtExpiryHours       int    `yaml:"jwtExpiryHours"`
	UndoWindowSeconds    int    `yaml:"undoWindowSeconds"`
	SweepIntervalSeconds int    `yaml:"sweepIntervalSeconds"`
}

// UndoWindow returns the configured undo window, defaulting to 10s.
func (a App) UndoWindow() time.Duration {
	if a.UndoWindowSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(a.UndoWindowSeconds) * time.Second
}

// SweepInterval returns the sweeper period, defaulting to 30s.
func (a App) SweepInterval() time.Duration {
	if a.SweepIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.SweepIntervalSeconds) * time.Second
}

// JwtExpiry returns the token lifetime, defaulting to 72h.
func (a App) JwtExpiry() time.Duration {
	if a.JwtExpiryHours <= 0 {
		return 72 * time.Hour
	}
	return time.Duration(a.JwtExpiryHours) * time.Hour
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}

	return config, nil
}
