package config

import (
	"os"
	"path/filepath"
	"testing"

	"tutorhub/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "tutorhub"
  environment: "${APP_ENV}"
database:
  path: "schedule.db"
seed:
  users:
    - id: 50
      first_name: "Anna"
      last_name: "Keller"
  tutors:
    - tutor_id: 5
      user_id: 50
  courses:
    - id: 3
      title: "Linear Algebra"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	t.Setenv("APP_ENV", "staging")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Environment != "staging" {
		t.Errorf("expected env expansion to staging, got %s", cfg.App.Environment)
	}
	if cfg.Database.Path != "schedule.db" {
		t.Errorf("expected database path schedule.db, got %s", cfg.Database.Path)
	}
	if len(cfg.Seed.Users) != 1 || cfg.Seed.Users[0].ID != 50 {
		t.Errorf("expected 1 seed user with ID 50")
	}
	if len(cfg.Seed.Tutors) != 1 || cfg.Seed.Tutors[0].UserID != 50 {
		t.Errorf("expected tutor 5 backed by user 50")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				HTTP:     HTTPConfig{Port: 8080},
				Database: DatabaseConfig{Path: "schedule.db"},
			},
			wantErr: false,
		},
		{
			name: "missing database path",
			cfg: Config{
				HTTP: HTTPConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "invalid port",
			cfg: Config{
				HTTP:     HTTPConfig{Port: 99999},
				Database: DatabaseConfig{Path: "schedule.db"},
			},
			wantErr: true,
		},
		{
			name: "cache enabled without redis address",
			cfg: Config{
				HTTP:     HTTPConfig{Port: 8080},
				Database: DatabaseConfig{Path: "schedule.db"},
				Cache:    CacheConfig{Enabled: true},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{
		HTTP:       HTTPConfig{RateLimit: RateLimitConfig{Enabled: true}},
		Monitoring: MonitoringConfig{PrometheusEnabled: true},
	}
	cfg.applyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeout != 15 || cfg.HTTP.WriteTimeout != 15 {
		t.Errorf("expected default read/write timeouts of 15s")
	}
	if cfg.HTTP.RateLimit.RPS != 20 || cfg.HTTP.RateLimit.Burst != 40 {
		t.Errorf("expected default rate limit 20 rps / 40 burst, got %v/%d",
			cfg.HTTP.RateLimit.RPS, cfg.HTTP.RateLimit.Burst)
	}
	if cfg.Monitoring.PrometheusPort != 9090 {
		t.Errorf("expected default prometheus port 9090, got %d", cfg.Monitoring.PrometheusPort)
	}
	if cfg.Cache.TTLSeconds != 300 {
		t.Errorf("expected default cache TTL 300s, got %d", cfg.Cache.TTLSeconds)
	}
	if cfg.Exports.Path != "exports" {
		t.Errorf("expected default exports path, got %s", cfg.Exports.Path)
	}
}

func TestValidateSeed(t *testing.T) {
	tests := []struct {
		name    string
		seed    SeedConfig
		wantErr bool
	}{
		{
			name: "valid seed",
			seed: SeedConfig{
				Users:   []models.User{{ID: 50, FirstName: "Anna"}, {ID: 9, FirstName: "Ben"}},
				Tutors:  []models.TutorProfile{{TutorID: 5, UserID: 50}},
				Courses: []models.Course{{ID: 3, Title: "Linear Algebra"}},
			},
			wantErr: false,
		},
		{
			name: "duplicate user ID",
			seed: SeedConfig{
				Users: []models.User{{ID: 50}, {ID: 50}},
			},
			wantErr: true,
		},
		{
			name: "user ID 0",
			seed: SeedConfig{
				Users: []models.User{{ID: 0, FirstName: "Anna"}},
			},
			wantErr: true,
		},
		{
			name: "tutor references unknown user",
			seed: SeedConfig{
				Users:  []models.User{{ID: 50}},
				Tutors: []models.TutorProfile{{TutorID: 5, UserID: 99}},
			},
			wantErr: true,
		},
		{
			name: "duplicate course ID",
			seed: SeedConfig{
				Courses: []models.Course{{ID: 3, Title: "A"}, {ID: 3, Title: "B"}},
			},
			wantErr: true,
		},
		{
			name: "tutors without users skip reference check",
			seed: SeedConfig{
				Tutors: []models.TutorProfile{{TutorID: 5, UserID: 50}},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeed(tt.seed)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSeed() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
