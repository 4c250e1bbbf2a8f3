package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server    ServerConfig   `env:",prefix=SERVER_"`
	Postgres  PostgresConfig `env:",prefix=POSTGRES_"`
	Redis     RedisConfig    `env:",prefix=REDIS_"`
	JWT       JWTConfig      `env:",prefix=JWT_"`
	SMTP      SMTPConfig     `env:",prefix=SMTP_"`
	Security  SecurityConfig
	CORS      CORSConfig `env:",prefix=CORS_"`
	Env       string     `env:"ENV,default=development"`
	ClientURL string     `env:"CLIENT_URL,default=http://localhost:3000"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=chat_backend"`
	Password string `env:"PASSWORD,default=chat_backend_password"`
	DBName   string `env:"DB,default=chat_backend_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type JWTConfig struct {
	AccessTokenSecret  string   `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret string   `env:"REFRESH_TOKEN_SECRET,required"`
	AccessTokenExpiry  Duration `env:"ACCESS_TOKEN_EXPIRY,default=15m"`
	RefreshTokenExpiry Duration `env:"REFRESH_TOKEN_EXPIRY,default=7d"`
	Issuer             string   `env:"ISSUER,default=api.chatloop.dev"`
	Audience           string   `env:"AUDIENCE,default=chatloop.dev"`
	Subject            string   `env:"SUBJECT,default=access"`
}

type SMTPConfig struct {
	PostmarkServerToken string `env:"POSTMARK_SERVER_TOKEN"`
	SenderEmail         string `env:"SENDER_EMAIL,default=no-reply@chatloop.dev"`
}

type SecurityConfig struct {
	PasswordHashIterations int      `env:"PASSWORD_HASH_ITERATIONS,default=210000"`
	LockoutThreshold       int      `env:"LOCKOUT_THRESHOLD,default=8"`
	VerificationTokenTTL   Duration `env:"VERIFICATION_TOKEN_TTL,default=30m"`
	RateLimitRequests      int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow        Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// URL returns the PostgreSQL connection URL used by migrations
func (p PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// IsProduction reports whether the service runs in production mode
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.JWT.AccessTokenSecret) < 32 {
		return nil, fmt.Errorf("JWT_ACCESS_TOKEN_SECRET must be at least 32 characters long")
	}
	if len(config.JWT.RefreshTokenSecret) < 32 {
		return nil, fmt.Errorf("JWT_REFRESH_TOKEN_SECRET must be at least 32 characters long")
	}
	if config.JWT.AccessTokenSecret == config.JWT.RefreshTokenSecret {
		return nil, fmt.Errorf("access and refresh token secrets must differ")
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
