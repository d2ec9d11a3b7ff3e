package config

import (
	"errors"
	"fmt"
	"os"

	"tutorhub/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Cache      CacheConfig      `yaml:"cache"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
	Seed       SeedConfig       `yaml:"seed"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port            int             `yaml:"port"`
	ReadTimeout     int             `yaml:"read_timeout"`
	WriteTimeout    int             `yaml:"write_timeout"`
	ShutdownTimeout int             `yaml:"shutdown_timeout"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	TTLSeconds int  `yaml:"ttl_seconds"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Interval      string `yaml:"interval"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

// SeedConfig carries the directory records loaded at startup. The booking
// engine does not own user management; names and course titles come from
// config until the platform directory service replaces them.
type SeedConfig struct {
	Users   []models.User         `yaml:"users"`
	Tutors  []models.TutorProfile `yaml:"tutors"`
	Courses []models.Course       `yaml:"courses"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; ExpandEnv below picks up whatever is set
	_ = godotenv.Load(".env")

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
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port: %d", c.HTTP.Port)
	}
	if c.Cache.Enabled && c.Redis.Address == "" {
		return errors.New("redis address is required when cache is enabled")
	}
	return ValidateSeed(c.Seed)
}

func ValidateSeed(seed SeedConfig) error {
	userIDs := make(map[int64]bool)
	for _, user := range seed.Users {
		if user.ID == 0 {
			return fmt.Errorf("user '%s' has invalid ID 0", user.FirstName)
		}
		if userIDs[user.ID] {
			return fmt.Errorf("duplicate user ID found: %d", user.ID)
		}
		userIDs[user.ID] = true
	}

	tutorIDs := make(map[int64]bool)
	for _, tutor := range seed.Tutors {
		if tutor.TutorID == 0 {
			return errors.New("tutor profile has invalid ID 0")
		}
		if tutorIDs[tutor.TutorID] {
			return fmt.Errorf("duplicate tutor ID found: %d", tutor.TutorID)
		}
		tutorIDs[tutor.TutorID] = true
		if len(seed.Users) > 0 && !userIDs[tutor.UserID] {
			return fmt.Errorf("tutor %d references unknown user %d", tutor.TutorID, tutor.UserID)
		}
	}

	courseIDs := make(map[int64]bool)
	for _, course := range seed.Courses {
		if course.ID == 0 {
			return fmt.Errorf("course '%s' has invalid ID 0", course.Title)
		}
		if courseIDs[course.ID] {
			return fmt.Errorf("duplicate course ID found: %d", course.ID)
		}
		courseIDs[course.ID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 15
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 10
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RPS == 0 {
			c.HTTP.RateLimit.RPS = 20
		}
		if c.HTTP.RateLimit.Burst == 0 {
			c.HTTP.RateLimit.Burst = 40
		}
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 300
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
