package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	SMTP     SMTPConfig
	Office   OfficeConfig
	Leave    LeaveConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// OfficeConfig describes the single office every in-house check-in is measured against.
type OfficeConfig struct {
	Latitude     float64
	Longitude    float64
	RadiusKm     float64
	Timezone     string
	CheckInFrom  int // first hour (inclusive) a check-in is accepted
	CheckInUntil int // hour (exclusive) after which check-in is refused
	AutoCheckout time.Duration
	LookbackDays int
}

// Location resolves the office timezone, falling back to UTC when the name is unknown.
func (o OfficeConfig) Location() *time.Location {
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		slog.Warn("Unknown office timezone, falling back to UTC", "timezone", o.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

// LeaveConfig holds yearly entitlements in days keyed by leave type.
// Types missing from the map have no balance limit.
type LeaveConfig struct {
	Entitlements map[string]float64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "office"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// SMTP configuration, empty host disables delivery
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@office.local"),
		FromName: getEnv("SMTP_FROM_NAME", "Office"),
	}

	office, err := loadOffice()
	if err != nil {
		return nil, err
	}
	config.Office = office

	leaveCfg, err := loadLeave()
	if err != nil {
		return nil, err
	}
	config.Leave = leaveCfg

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadOffice() (OfficeConfig, error) {
	lat, err := strconv.ParseFloat(getEnv("OFFICE_LATITUDE", "5.660881"), 64)
	if err != nil {
		return OfficeConfig{}, fmt.Errorf("invalid OFFICE_LATITUDE: %w", err)
	}
	lon, err := strconv.ParseFloat(getEnv("OFFICE_LONGITUDE", "-0.156627"), 64)
	if err != nil {
		return OfficeConfig{}, fmt.Errorf("invalid OFFICE_LONGITUDE: %w", err)
	}
	radius, err := strconv.ParseFloat(getEnv("OFFICE_RADIUS_KM", "0.1"), 64)
	if err != nil {
		return OfficeConfig{}, fmt.Errorf("invalid OFFICE_RADIUS_KM: %w", err)
	}
	from, err := strconv.Atoi(getEnv("CHECK_IN_FROM_HOUR", "7"))
	if err != nil {
		return OfficeConfig{}, fmt.Errorf("invalid CHECK_IN_FROM_HOUR: %w", err)
	}
	until, err := strconv.Atoi(getEnv("CHECK_IN_UNTIL_HOUR", "17"))
	if err != nil {
		return OfficeConfig{}, fmt.Errorf("invalid CHECK_IN_UNTIL_HOUR: %w", err)
	}
	autoCheckout, err := parseClock(getEnv("AUTO_CHECKOUT_AT", "18:00"))
	if err != nil {
		return OfficeConfig{}, fmt.Errorf("invalid AUTO_CHECKOUT_AT: %w", err)
	}
	lookback, err := strconv.Atoi(getEnv("AUTO_CHECKOUT_LOOKBACK_DAYS", "7"))
	if err != nil {
		return OfficeConfig{}, fmt.Errorf("invalid AUTO_CHECKOUT_LOOKBACK_DAYS: %w", err)
	}

	return OfficeConfig{
		Latitude:     lat,
		Longitude:    lon,
		RadiusKm:     radius,
		Timezone:     getEnv("OFFICE_TIMEZONE", "Africa/Accra"),
		CheckInFrom:  from,
		CheckInUntil: until,
		AutoCheckout: autoCheckout,
		LookbackDays: lookback,
	}, nil
}

// loadLeave reads LEAVE_ENTITLEMENTS as "annual=21,sick=10".
func loadLeave() (LeaveConfig, error) {
	entitlements := map[string]float64{}
	for _, pair := range getEnvSlice("LEAVE_ENTITLEMENTS", "annual=21") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) != 2 {
			return LeaveConfig{}, fmt.Errorf("invalid LEAVE_ENTITLEMENTS entry %q", pair)
		}
		days, err := strconv.ParseFloat(kv[1], 64)
		if err != nil {
			return LeaveConfig{}, fmt.Errorf("invalid LEAVE_ENTITLEMENTS entry %q: %w", pair, err)
		}
		entitlements[kv[0]] = days
	}
	return LeaveConfig{Entitlements: entitlements}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Office.CheckInFrom < 0 || c.Office.CheckInUntil > 24 || c.Office.CheckInFrom >= c.Office.CheckInUntil {
		return fmt.Errorf("check-in window [%d, %d) is invalid", c.Office.CheckInFrom, c.Office.CheckInUntil)
	}
	if c.Office.RadiusKm <= 0 {
		return fmt.Errorf("OFFICE_RADIUS_KM must be positive")
	}
	if c.Office.LookbackDays < 0 {
		return fmt.Errorf("AUTO_CHECKOUT_LOOKBACK_DAYS must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// parseClock turns "HH:MM" into an offset from midnight.
func parseClock(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}
