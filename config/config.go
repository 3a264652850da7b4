package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig       `envPrefix:"SANTA_APP_"`
	Server    ServerConfig    `envPrefix:"SANTA_SERVER_"`
	Log       LogConfig       `envPrefix:"SANTA_LOG_"`
	Database  DatabaseConfig  `envPrefix:"SANTA_DB_"`
	JWT       JWTConfig       `envPrefix:"SANTA_JWT_"`
	Auth      AuthConfig      `envPrefix:"SANTA_AUTH_"`
	Santa     SantaConfig     `envPrefix:"SANTA_"`
	GWars     GWarsConfig     `envPrefix:"SANTA_GWARS_"`
	Mail      MailConfig      `envPrefix:"SANTA_MAIL_"`
	RateLimit RateLimitConfig `envPrefix:"SANTA_RATELIMIT_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"Secret Santa"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Format     string `env:"FORMAT" envDefault:"json"`
	OutputPath string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"santa.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type JWTConfig struct {
	SecretKey    string        `env:"SECRET_KEY"`
	Issuer       string        `env:"ISSUER" envDefault:"secretsanta"`
	AccessExpiry time.Duration `env:"ACCESS_EXPIRY" envDefault:"24h"`
}

type AuthConfig struct {
	MinLength     int    `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	RequireUpper  bool   `env:"PASSWORD_REQUIRE_UPPER" envDefault:"false"`
	RequireNumber bool   `env:"PASSWORD_REQUIRE_NUMBER" envDefault:"true"`
	BcryptCost    int    `env:"BCRYPT_COST" envDefault:"10"`
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// SantaConfig carries the curated word list used for verification tokens
// and the role name spelled out in the proof-of-control phrase.
type SantaConfig struct {
	RoleName      string   `env:"ROLE_NAME" envDefault:"Secret Santa"`
	WordList      []string `env:"WORD_LIST" envSeparator:"," envDefault:"snow,gift,star,frost,spark,holly,pine,sled"`
	WordsPerToken int      `env:"WORDS_PER_TOKEN" envDefault:"3"`
}

type GWarsConfig struct {
	SharedSecret string        `env:"SECRET"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
}

type MailConfig struct {
	Host        string `env:"HOST"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	Encryption  string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress string `env:"FROM_ADDRESS"`
	FromName    string `env:"FROM_NAME" envDefault:"Secret Santa"`
}

// RateLimitConfig throttles the unauthenticated endpoints: login,
// registration and the federated handshake.
type RateLimitConfig struct {
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	Rate    int           `env:"RATE" envDefault:"10"`
	Period  time.Duration `env:"PERIOD" envDefault:"1m"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
