package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type SchedulerConfig struct {
	Enabled    bool
	Interval   time.Duration
	RunOnStart bool
}

type GraduationConfig struct {
	StudentTimeout time.Duration
	DefaultIssuer  string
	AcademyName    string
}

type BillingConfig struct {
	ExcessPercent string
}

type HRNotesConfig struct {
	PinRoles     []string
	PinDuration  time.Duration
	ExpiryWindow time.Duration
}

type ResilienceConfig struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	BreakerEnabled      bool
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

type Config struct {
	Environment string
	LogLevel    string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Scheduler   SchedulerConfig
	Graduation  GraduationConfig
	Billing     BillingConfig
	HRNotes     HRNotesConfig
	Resilience  ResilienceConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("RESILIENCE_BREAKER_ENABLED", true)

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Host:        v.GetString("HTTP_HOST"),
			Port:        v.GetInt("HTTP_PORT"),
			CORSOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Scheduler: SchedulerConfig{
			Enabled:    v.GetBool("SCHEDULER_ENABLED"),
			Interval:   v.GetDuration("SCHEDULER_INTERVAL"),
			RunOnStart: v.GetBool("SCHEDULER_RUN_ON_START"),
		},
		Graduation: GraduationConfig{
			StudentTimeout: v.GetDuration("GRADUATION_STUDENT_TIMEOUT"),
			DefaultIssuer:  strings.TrimSpace(v.GetString("GRADUATION_DEFAULT_ISSUER")),
			AcademyName:    strings.TrimSpace(v.GetString("GRADUATION_ACADEMY_NAME")),
		},
		Billing: BillingConfig{
			ExcessPercent: strings.TrimSpace(v.GetString("BILLING_EXCESS_PERCENT")),
		},
		HRNotes: HRNotesConfig{
			PinRoles:     parseList(v.GetString("HR_PIN_ROLES")),
			PinDuration:  v.GetDuration("HR_PIN_DURATION"),
			ExpiryWindow: v.GetDuration("HR_EXPIRY_WINDOW"),
		},
		Resilience: ResilienceConfig{
			RetryMaxAttempts:    v.GetInt("RESILIENCE_RETRY_MAX_ATTEMPTS"),
			RetryInitialBackoff: v.GetDuration("RESILIENCE_RETRY_INITIAL_BACKOFF"),
			RetryMaxBackoff:     v.GetDuration("RESILIENCE_RETRY_MAX_BACKOFF"),
			BreakerEnabled:      v.GetBool("RESILIENCE_BREAKER_ENABLED"),
			BreakerMinRequests:  v.GetUint32("RESILIENCE_BREAKER_MIN_REQUESTS"),
			BreakerFailureRatio: v.GetFloat64("RESILIENCE_BREAKER_FAILURE_RATIO"),
			BreakerOpenTimeout:  v.GetDuration("RESILIENCE_BREAKER_OPEN_TIMEOUT"),
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if len(cfg.HTTP.CORSOrigins) == 0 {
		cfg.HTTP.CORSOrigins = []string{"*"}
	}
	if cfg.Scheduler.Interval == 0 {
		cfg.Scheduler.Interval = time.Hour
	}
	if cfg.Graduation.StudentTimeout == 0 {
		cfg.Graduation.StudentTimeout = 30 * time.Second
	}
	if cfg.Graduation.DefaultIssuer == "" {
		cfg.Graduation.DefaultIssuer = "Academy Director"
	}
	if cfg.Graduation.AcademyName == "" {
		cfg.Graduation.AcademyName = "Training Academy"
	}
	if cfg.Billing.ExcessPercent == "" {
		cfg.Billing.ExcessPercent = "10"
	}
	if len(cfg.HRNotes.PinRoles) == 0 {
		cfg.HRNotes.PinRoles = []string{"HR Manager", "HR"}
	}
	if cfg.HRNotes.PinDuration == 0 {
		cfg.HRNotes.PinDuration = 24 * time.Hour
	}
	if cfg.HRNotes.ExpiryWindow == 0 {
		cfg.HRNotes.ExpiryWindow = 2 * time.Hour
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Scheduler.Interval < time.Minute {
		return fmt.Errorf("SCHEDULER_INTERVAL must be at least 1m, got %s", cfg.Scheduler.Interval)
	}
	if cfg.Graduation.StudentTimeout < 0 {
		return fmt.Errorf("GRADUATION_STUDENT_TIMEOUT must not be negative")
	}
	if cfg.HRNotes.PinDuration < time.Hour || cfg.HRNotes.PinDuration%time.Hour != 0 {
		return fmt.Errorf("HR_PIN_DURATION must be a whole number of hours, got %s", cfg.HRNotes.PinDuration)
	}
	if cfg.HRNotes.ExpiryWindow < 0 {
		return fmt.Errorf("HR_EXPIRY_WINDOW must not be negative")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
