// Package config reads config.toml and LTB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Mail      MailConfig      `mapstructure:"mail"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	PDF       PDFConfig       `mapstructure:"pdf"`
	Swagger   SwaggerConfig   `mapstructure:"swagger"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Admin     AdminConfig     `mapstructure:"admin"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
	// BaseURL is the public storefront, used in emails and Stripe redirects.
	BaseURL string `mapstructure:"base_url"`
}

func (a AppConfig) IsProduction() bool { return a.Env == "production" }

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxOpenConns int `mapstructure:"max_open_conns"`
	MaxIdleConns int `mapstructure:"max_idle_conns"`
	// in minutes
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime int `mapstructure:"conn_max_idle_time"`
}

// DSN escapes the credentials into a postgres URL.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string { return fmt.Sprintf("%s:%d", r.Host, r.Port) }

type JWTConfig struct {
	Secret                 string        `mapstructure:"secret"`
	RefreshSecret          string        `mapstructure:"refresh_secret"`
	AccessTokenExpiration  time.Duration `mapstructure:"access_token_expiration"`
	RefreshTokenExpiration time.Duration `mapstructure:"refresh_token_expiration"`
	Issuer                 string        `mapstructure:"issuer"`
}

type HTTPConfig struct {
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
	MaxBodySize    int64         `mapstructure:"max_body_size"`

	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	// login attempts per client
	AuthRateLimit       int           `mapstructure:"auth_rate_limit"`
	AuthRateLimitWindow time.Duration `mapstructure:"auth_rate_limit_window"`
	// quote and contact submissions per IP
	PublicFormLimit  int           `mapstructure:"public_form_limit"`
	PublicFormWindow time.Duration `mapstructure:"public_form_window"`

	CORSAllowOrigins []string `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string `mapstructure:"trusted_proxies"`
}

// SchedulerConfig holds the cron expressions of the housekeeping jobs.
type SchedulerConfig struct {
	Enabled                bool          `mapstructure:"enabled"`
	Workers                int           `mapstructure:"workers"`
	JobTimeout             time.Duration `mapstructure:"job_timeout"`
	OverdueCronSchedule    string        `mapstructure:"overdue_cron_schedule"`
	ExpiringCronSchedule   string        `mapstructure:"expiring_cron_schedule"`
	ReminderCronSchedule   string        `mapstructure:"reminder_cron_schedule"`
	LowStockCronSchedule   string        `mapstructure:"low_stock_cron_schedule"`
	QuoteExpiryWindow      time.Duration `mapstructure:"quote_expiry_window"`
	AppointmentReminderFor time.Duration `mapstructure:"appointment_reminder_for"`
}

// StorageConfig targets any S3 compatible store. With Enabled false uploads
// land in LocalDir.
type StorageConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
	MaxUploadSize   int64  `mapstructure:"max_upload_size"`
	LocalDir        string `mapstructure:"local_dir"`
}

type MailConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	From        string   `mapstructure:"from"`
	FromName    string   `mapstructure:"from_name"`
	AdminEmails []string `mapstructure:"admin_emails"`
}

type StripeConfig struct {
	SecretKey     string        `mapstructure:"secret_key"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
	Currency      string        `mapstructure:"currency"`
	SuccessURL    string        `mapstructure:"success_url"`
	CancelURL     string        `mapstructure:"cancel_url"`
	SessionExpiry time.Duration `mapstructure:"session_expiry"`
}

func (s StripeConfig) Enabled() bool { return s.SecretKey != "" }

type PDFConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// RemoteURL is ws://host:9222 of a headless Chrome; empty launches one.
	RemoteURL string        `mapstructure:"remote_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	NoSandbox bool          `mapstructure:"no_sandbox"`
	MaxTabs   int           `mapstructure:"max_tabs"`
}

type SwaggerConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	AllowedIPs []string `mapstructure:"allowed_ips"`
}

// AdminConfig is the administrator created when no active admin exists.
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`
	ProfilingEnabled  bool          `mapstructure:"profiling_enabled"`
	PyroscopeEndpoint string        `mapstructure:"pyroscope_endpoint"`
}

// defaults lists every key. Keys missing here are not read from the
// environment by AutomaticEnv, so secrets appear with an empty default.
var defaults = map[string]any{
	"app.name":     "letatchebois-api",
	"app.env":      "development",
	"app.port":     "8080",
	"app.base_url": "http://localhost:3000",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "letatchebois",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":                   "",
	"jwt.refresh_secret":           "",
	"jwt.access_token_expiration":  30 * time.Minute,
	"jwt.refresh_token_expiration": 7 * 24 * time.Hour,
	"jwt.issuer":                   "letatchebois",

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":           15 * time.Second,
	"http.write_timeout":          60 * time.Second,
	"http.idle_timeout":           60 * time.Second,
	"http.max_header_bytes":       1 << 20,
	"http.max_body_size":          int64(10 << 20),
	"http.rate_limit_enabled":     false,
	"http.rate_limit_requests":    120,
	"http.rate_limit_window":      time.Minute,
	"http.auth_rate_limit":        5,
	"http.auth_rate_limit_window": time.Minute,
	"http.public_form_limit":      5,
	"http.public_form_window":     time.Hour,
	// cross-origin requests stay refused until origins are configured
	"http.cors_allow_origins": []string{},
	"http.cors_allow_methods": []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers": []string{"Content-Type", "Authorization", "X-Request-ID", "Stripe-Signature"},
	"http.trusted_proxies":    []string{},

	"scheduler.enabled":                  false,
	"scheduler.workers":                  2,
	"scheduler.job_timeout":              5 * time.Minute,
	"scheduler.overdue_cron_schedule":    "0 6 * * *",
	"scheduler.expiring_cron_schedule":   "0 7 * * *",
	"scheduler.reminder_cron_schedule":   "0 * * * *",
	"scheduler.low_stock_cron_schedule":  "30 7 * * 1",
	"scheduler.quote_expiry_window":      3 * 24 * time.Hour,
	"scheduler.appointment_reminder_for": 24 * time.Hour,

	"storage.enabled":           false,
	"storage.bucket":            "",
	"storage.region":            "eu-west-3",
	"storage.endpoint":          "",
	"storage.access_key_id":     "",
	"storage.secret_access_key": "",
	"storage.public_base_url":   "",
	"storage.use_path_style":    false,
	"storage.max_upload_size":   int64(50 << 20),
	"storage.local_dir":         "./public",

	"mail.enabled":      false,
	"mail.host":         "",
	"mail.port":         587,
	"mail.username":     "",
	"mail.password":     "",
	"mail.from":         "",
	"mail.from_name":    "Le Tatche Bois",
	"mail.admin_emails": []string{},

	"stripe.secret_key":     "",
	"stripe.webhook_secret": "",
	"stripe.currency":       "mad",
	"stripe.success_url":    "",
	"stripe.cancel_url":     "",
	"stripe.session_expiry": 30 * time.Minute,

	"pdf.enabled":    false,
	"pdf.remote_url": "",
	"pdf.timeout":    30 * time.Second,
	"pdf.no_sandbox": false,
	"pdf.max_tabs":   2,

	"swagger.enabled":     false,
	"swagger.allowed_ips": []string{},

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "",
	"telemetry.insecure":                false,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
	"telemetry.profiling_enabled":       false,
	"telemetry.pyroscope_endpoint":      "http://localhost:4040",

	"admin.email":    "",
	"admin.password": "",
	"admin.name":     "Administrateur",
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")
	v.SetEnvPrefix("LTB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. LTB_SECTION_KEY environment variables win
// over config.toml, which wins over the built-in defaults.
func Load() (*Config, error) {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.derive()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// derive fills the settings that default to another setting.
func (c *Config) derive() {
	if c.Stripe.SuccessURL == "" {
		c.Stripe.SuccessURL = c.App.BaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
	}
	if c.Stripe.CancelURL == "" {
		c.Stripe.CancelURL = c.App.BaseURL + "/checkout/cancel"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.App.Name
	}
}

func (c *Config) validate() error {
	var errs []error
	check := func(bad bool, format string, args ...any) {
		if bad {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	db := c.Database
	check(db.MaxOpenConns <= 0, "database.max_open_conns must be positive")
	check(db.MaxIdleConns < 0, "database.max_idle_conns cannot be negative")
	check(db.MaxIdleConns > db.MaxOpenConns,
		"database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)
	check(c.Storage.Enabled && c.Storage.Bucket == "", "storage.bucket is required when storage is enabled")
	check(c.Mail.Enabled && (c.Mail.Host == "" || c.Mail.From == ""),
		"mail.host and mail.from are required when mail is enabled")
	check(c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1,
		"telemetry.sampling_ratio must be between 0.0 and 1.0, got %g", c.Telemetry.SamplingRatio)

	if c.App.IsProduction() {
		check(len(c.JWT.Secret) < 32, "jwt.secret must be at least 32 characters in production")
		check(db.Password == "", "database.password is required in production")
		check(db.SSLMode == "disable", "database.sslmode cannot be 'disable' in production")
		check(slices.Contains(c.HTTP.CORSAllowOrigins, "*"), "http.cors_allow_origins cannot be '*' in production")
		check(c.Stripe.Enabled() && c.Stripe.WebhookSecret == "",
			"stripe.webhook_secret is required when stripe is configured in production")
		check(c.Admin.Email != "" && len(c.Admin.Password) < 12,
			"admin.password must be at least 12 characters in production")
		check(c.Telemetry.DBLogFullSQL, "telemetry.db_log_full_sql must be false in production")
	}
	return errors.Join(errs...)
}
