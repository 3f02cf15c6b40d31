package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/example/center-roster/internal/scheduler"
	"github.com/example/center-roster/internal/timeutil"
)

// Config captures environment driven configuration values for the roster
// service.
type Config struct {
	HTTPPort  int
	SQLiteDSN string

	// DevMode swaps the SQLite store for an in-memory one.
	DevMode bool

	BusinessStart string
	BusinessEnd   string
	Increment     int
	MinDuration   int
	MaxDuration   int

	Seats scheduler.SeatConfig

	AvailabilityCacheTTL        time.Duration
	AvailabilityCacheMaxEntries int

	ShutdownTimeout time.Duration
}

// Load parses configuration values from a .env file (when present) and the
// current process environment. Environment variables are prefixed with
// ROSTER_; defaults cover every optional field.
func Load() (Config, error) {
	if path := strings.TrimSpace(os.Getenv("ROSTER_ENV_FILE")); path != "" {
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("loading env file %s: %w", path, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return Config{}, fmt.Errorf("loading .env: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("ROSTER")
	v.AutomaticEnv()

	v.SetDefault("http_port", 8080)
	v.SetDefault("sqlite_dsn", "file:roster.db?_foreign_keys=on")
	v.SetDefault("dev_mode", false)
	v.SetDefault("business_start", "10:00")
	v.SetDefault("business_end", "19:00")
	v.SetDefault("increment", 15)
	v.SetDefault("min_duration", 30)
	v.SetDefault("max_duration", 120)
	v.SetDefault("seats_tabletop_training", 10)
	v.SetDefault("seats_digital_training", 10)
	v.SetDefault("seats_accelerate_rx", 3)
	v.SetDefault("seats_remote", 4)
	v.SetDefault("seats_gt_assessment", 4)
	v.SetDefault("availability_cache_ttl", 30*time.Second)
	v.SetDefault("availability_cache_max_entries", 256)
	v.SetDefault("shutdown_timeout", 10*time.Second)

	cfg := Config{
		HTTPPort:      v.GetInt("http_port"),
		SQLiteDSN:     v.GetString("sqlite_dsn"),
		DevMode:       v.GetBool("dev_mode"),
		BusinessStart: strings.TrimSpace(v.GetString("business_start")),
		BusinessEnd:   strings.TrimSpace(v.GetString("business_end")),
		Increment:     v.GetInt("increment"),
		MinDuration:   v.GetInt("min_duration"),
		MaxDuration:   v.GetInt("max_duration"),
		Seats: scheduler.SeatConfig{
			scheduler.TypeTabletopTraining: v.GetInt("seats_tabletop_training"),
			scheduler.TypeDigitalTraining:  v.GetInt("seats_digital_training"),
			scheduler.TypeAccelerateRx:     v.GetInt("seats_accelerate_rx"),
			scheduler.TypeRemote:           v.GetInt("seats_remote"),
			scheduler.TypeGTAssessment:     v.GetInt("seats_gt_assessment"),
		},
		AvailabilityCacheTTL:        v.GetDuration("availability_cache_ttl"),
		AvailabilityCacheMaxEntries: v.GetInt("availability_cache_max_entries"),
		ShutdownTimeout:             v.GetDuration("shutdown_timeout"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	invalid := make([]string, 0, 2)

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		invalid = append(invalid, "ROSTER_HTTP_PORT")
	}
	if c.SQLiteDSN == "" {
		invalid = append(invalid, "ROSTER_SQLITE_DSN")
	}
	if !validClock(c.BusinessStart) || !validClock(c.BusinessEnd) ||
		timeutil.Duration(c.BusinessStart, c.BusinessEnd) <= 0 {
		invalid = append(invalid, "ROSTER_BUSINESS_START/ROSTER_BUSINESS_END")
	}
	if c.Increment <= 0 || 60%c.Increment != 0 {
		invalid = append(invalid, "ROSTER_INCREMENT")
	}
	if c.MinDuration <= 0 || c.MaxDuration < c.MinDuration {
		invalid = append(invalid, "ROSTER_MIN_DURATION/ROSTER_MAX_DURATION")
	}
	for _, sessionType := range scheduler.SessionTypes() {
		if c.Seats[sessionType] <= 0 {
			invalid = append(invalid, "ROSTER_SEATS_"+strings.ToUpper(strings.ReplaceAll(string(sessionType), "-", "_")))
		}
	}
	if c.AvailabilityCacheTTL <= 0 {
		invalid = append(invalid, "ROSTER_AVAILABILITY_CACHE_TTL")
	}
	if c.AvailabilityCacheMaxEntries <= 0 {
		invalid = append(invalid, "ROSTER_AVAILABILITY_CACHE_MAX_ENTRIES")
	}
	if c.ShutdownTimeout <= 0 {
		invalid = append(invalid, "ROSTER_SHUTDOWN_TIMEOUT")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}
	return nil
}

func validClock(value string) bool {
	_, err := time.Parse("15:04", value)
	return err == nil
}
