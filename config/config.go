package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全部配置项，结构与 config.yaml 对应
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Probe     ProbeConfig     `mapstructure:"probe"`
	OAuth     OAuthConfig     `mapstructure:"oauth"`
	Log       LogConfig       `mapstructure:"log"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

type ServerConfig struct {
	Mode    string `mapstructure:"mode"`
	Address string `mapstructure:"address"`
	// AllowedOrigins CORS 白名单，需要携带 Cookie 所以不能为 *
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
	// OAuthSuccessRedirect 社交登录成功后跳回前端的地址
	OAuthSuccessRedirect string        `mapstructure:"oauthSuccessRedirect"`
	SecureCookies        bool          `mapstructure:"secureCookies"`
	ShutdownTimeout      time.Duration `mapstructure:"shutdownTimeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres | mysql | sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	AutoMigrate     bool          `mapstructure:"autoMigrate"`
	LogLevel        string        `mapstructure:"logLevel"`
}

type RedisConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Addr           string        `mapstructure:"addr"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	FollowCacheTTL time.Duration `mapstructure:"followCacheTTL"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	AccessTTL  time.Duration `mapstructure:"accessTTL"`
	RefreshTTL time.Duration `mapstructure:"refreshTTL"`
}

type StorageConfig struct {
	Driver        string `mapstructure:"driver"` // minio | s3
	Endpoint      string `mapstructure:"endpoint"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	AccessKey     string `mapstructure:"accessKey"`
	SecretKey     string `mapstructure:"secretKey"`
	UseSSL        bool   `mapstructure:"useSSL"`
	PublicBaseURL string `mapstructure:"publicBaseURL"`
}

type ProbeConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type OAuthConfig struct {
	Providers map[string]OAuthProviderConfig `mapstructure:"providers"`
}

type OAuthProviderConfig struct {
	ClientID     string   `mapstructure:"clientID"`
	ClientSecret string   `mapstructure:"clientSecret"`
	RedirectURL  string   `mapstructure:"redirectURL"`
	Scopes       []string `mapstructure:"scopes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"serviceName"`
	Insecure    bool   `mapstructure:"insecure"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("server.oauthSuccessRedirect", "http://localhost:3000/auth/redirect")
	v.SetDefault("server.secureCookies", true)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.maxOpenConns", 20)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", time.Hour)
	v.SetDefault("database.autoMigrate", true)
	v.SetDefault("database.logLevel", "warn")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.followCacheTTL", 10*time.Minute)

	v.SetDefault("jwt.accessTTL", 15*time.Minute)
	v.SetDefault("jwt.refreshTTL", 2*time.Hour)

	v.SetDefault("storage.driver", "minio")
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("probe.timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.serviceName", "clipshare")

	v.SetDefault("rateLimit.rps", 20)
	v.SetDefault("rateLimit.burst", 40)
}

// Load 查找并解析 config.yaml，环境变量可覆盖（例如 JWT_SECRET）
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查启动必需的配置
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("jwt.secret must be at least 32 bytes for HS256")
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	return nil
}
