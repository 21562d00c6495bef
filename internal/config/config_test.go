package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "RISK_CACHE_TTL", "CORS_ORIGINS", "ENVIRONMENT", "DB_AUTO_MIGRATE"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "3000" || cfg.DBDriver != "memory" {
		t.Errorf("unexpected defaults: port %q driver %q", cfg.Port, cfg.DBDriver)
	}
	if cfg.RiskCacheTTL != 300*time.Second {
		t.Errorf("risk cache ttl = %v, want 5m", cfg.RiskCacheTTL)
	}
	if !cfg.IsDevelopment() {
		t.Error("empty ENVIRONMENT should be development")
	}
	if !cfg.AutoMigrate {
		t.Error("auto migrate should default on")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("RISK_CACHE_TTL", "60")
	t.Setenv("RECONCILE_INTERVAL", "2m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("PREDICTOR_SEED", "42")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	cfg := Load()
	if cfg.Port != "8080" || cfg.IsDevelopment() {
		t.Errorf("port %q dev %v", cfg.Port, cfg.IsDevelopment())
	}
	if cfg.RiskCacheTTL != time.Minute {
		t.Errorf("plain seconds ttl = %v", cfg.RiskCacheTTL)
	}
	if cfg.LeagueFeed.Interval != 2*time.Minute {
		t.Errorf("reconcile interval = %v", cfg.LeagueFeed.Interval)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors origins = %v", cfg.CORSOrigins)
	}
	if cfg.PredictorSeed != 42 || cfg.AutoMigrate {
		t.Errorf("seed %d automigrate %v", cfg.PredictorSeed, cfg.AutoMigrate)
	}
}

func TestDefaultTuningIsValid(t *testing.T) {
	if err := DefaultTuning().Validate(); err != nil {
		t.Fatalf("default tuning invalid: %v", err)
	}
}

func TestLoadTuningOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.toml")
	body := `
[league]
num_teams = 10

[risk.weights]
injury = 0.5

[predictor]
simulations = 2000
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	tun, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning: %v", err)
	}
	def := DefaultTuning()
	if tun.League.NumTeams != 10 || tun.Risk.Weights.Injury != 0.5 || tun.Predictor.Simulations != 2000 {
		t.Errorf("overrides not applied: %+v", tun.League)
	}
	if tun.Risk.Weights.Age != def.Risk.Weights.Age {
		t.Errorf("unset weight changed: %v", tun.Risk.Weights.Age)
	}
	if tun.Scarcity.Ceiling != def.Scarcity.Ceiling {
		t.Errorf("unset scarcity ceiling changed: %v", tun.Scarcity.Ceiling)
	}
	if len(tun.Needs.Categories) == 0 {
		t.Error("categories should stay populated")
	}
}

func TestLoadTuningEmptyPath(t *testing.T) {
	tun, err := LoadTuning("")
	if err != nil {
		t.Fatal(err)
	}
	if tun.League.NumTeams != 12 {
		t.Errorf("num teams = %d", tun.League.NumTeams)
	}
}

func TestLoadTuningRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad toml", "[league\nnum_teams = ", "parse tuning file"},
		{"too many teams", "[league]\nnum_teams = 40\n", "num_teams"},
		{"negative weight", "[risk.weights]\nage = -1.0\n", "risk.weights.age"},
		{"inverted thresholds", "[predictor]\nrisky_threshold = 0.9\nlikely_threshold = 0.5\n", "thresholds"},
		{"ceiling below one", "[scarcity]\nceiling = 0.5\n", "scarcity.ceiling"},
		{"negative prospect weight", "[risk.prospect.weights]\nhit_tool = -0.1\n", "risk.prospect.weights.hit_tool"},
		{"bust rate above one", "[risk.prospect.bust_rates]\nC = 1.5\n", "risk.prospect.bust_rates.C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tuning.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadTuning(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadTuning error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestWatchTuningReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.toml")
	if err := os.WriteFile(path, []byte("[league]\nnum_teams = 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Tuning, 4)
	done := make(chan error, 1)
	go func() { done <- WatchTuning(ctx, path, func(t Tuning) { got <- t }) }()

	// give the watcher time to register before writing
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case tun := <-got:
			if tun.League.NumTeams == 14 {
				cancel()
				if err := <-done; err != nil {
					t.Errorf("WatchTuning returned %v", err)
				}
				return
			}
		case <-tick.C:
			_ = os.WriteFile(path, []byte("[league]\nnum_teams = 14\n"), 0o644)
		case <-deadline:
			t.Fatal("tuning change was not picked up")
		}
	}
}
