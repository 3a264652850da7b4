package testutils

import (
	"time"

	"github.com/tech-arch1tect/secretsanta/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "Secret Santa Test",
			URL:  "http://localhost:8080",
		},
		Auth: config.AuthConfig{
			MinLength:     8,
			RequireUpper:  false,
			RequireNumber: true,
			BcryptCost:    bcrypt.MinCost,
			AdminEmail:    "admin@example.com",
			AdminPassword: "AdminPass123",
		},
		JWT: config.JWTConfig{
			SecretKey:    "test-secret-key-32-chars-long!!!",
			Issuer:       "secretsanta-test",
			AccessExpiry: 15 * time.Minute,
		},
		Santa: config.SantaConfig{
			RoleName:      "Secret Santa",
			WordList:      []string{"snow", "gift", "star", "frost"},
			WordsPerToken: 3,
		},
		GWars: config.GWarsConfig{
			SharedSecret: "test-game-secret",
			FetchTimeout: time.Second,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
	}
}
