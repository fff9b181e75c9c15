package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Storage  *StorageConfig  `mapstructure:"storage"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Ticket   *TicketConfig   `mapstructure:"ticket"`
	QR       *QRConfig       `mapstructure:"qr"`
	Mail     *MailConfig     `mapstructure:"mail"`
	Admin    *AdminConfig    `mapstructure:"admin"`
	Archive  *ArchiveConfig  `mapstructure:"archive"`
	Catalog  *CatalogConfig  `mapstructure:"catalog"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

type TicketConfig struct {
	Prefix string `mapstructure:"prefix"`
	// AppURL is the public site that serves /ticket/<id>.
	AppURL string `mapstructure:"app_url"`
}

type QRConfig struct {
	Size          int    `mapstructure:"size"`
	Foreground    string `mapstructure:"foreground"`
	Background    string `mapstructure:"background"`
	DisableBorder bool   `mapstructure:"disable_border"`
}

type MailConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	Username           string        `mapstructure:"username"`
	Password           string        `mapstructure:"password"`
	FromName           string        `mapstructure:"from_name"`
	FromAddress        string        `mapstructure:"from_address"`
	DeskLocation       string        `mapstructure:"desk_location"`
	Timeout            time.Duration `mapstructure:"timeout"`
	Workers            int           `mapstructure:"workers"`
	QueueSize          int           `mapstructure:"queue_size"`
	MaxRetries         uint64        `mapstructure:"max_retries"`
	RedeliveryInterval time.Duration `mapstructure:"redelivery_interval"`
}

type AdminConfig struct {
	Username     string        `mapstructure:"username"`
	PasswordHash string        `mapstructure:"password_hash"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
}

type ArchiveConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	AccountID       string `mapstructure:"account_id"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	Bucket          string `mapstructure:"bucket"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

type CatalogConfig struct {
	SeedOnStart bool `mapstructure:"seed_on_start"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("storage.driver", StorageDriverPostgres)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("ticket.prefix", "YF26")
	v.SetDefault("ticket.app_url", "http://localhost:5000")
	v.SetDefault("qr.size", 300)
	v.SetDefault("qr.foreground", "#00e5ff")
	v.SetDefault("qr.background", "#0a0a0a")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from_name", "yoUR Fest 2026")
	v.SetDefault("mail.desk_location", "Registration Desk (U-Block, Ground Floor)")
	v.SetDefault("mail.timeout", 15*time.Second)
	v.SetDefault("mail.workers", 2)
	v.SetDefault("mail.queue_size", 256)
	v.SetDefault("mail.max_retries", 2)
	v.SetDefault("mail.redelivery_interval", 10*time.Minute)
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.token_ttl", 12*time.Hour)
	v.SetDefault("catalog.seed_on_start", true)
}

// Load reads the YAML file at path. Every key can be overridden from the
// environment, e.g. MAIL_PASSWORD for mail.password.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		zap.L().Warn("config file changed, restart the server to apply it",
			zap.String("file", e.Name), zap.String("op", e.Op.String()))
	})
	v.WatchConfig()

	return conf, nil
}

func (c *AppConfig) validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Ticket.Prefix == "" {
		return fmt.Errorf("ticket.prefix must not be empty")
	}

	if c.Mail.Workers < 1 {
		return fmt.Errorf("mail.workers must be at least 1")
	}

	return nil
}
