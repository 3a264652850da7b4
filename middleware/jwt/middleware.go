package jwt

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/jwt"
)

const (
	AccountIDKey = "_jwt_account_id"
	ClaimsKey    = "_jwt_claims"
)

func RequireJWT(jwtService *jwt.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header required")
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "JWT token required")
			}

			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				switch err {
				case jwt.ErrExpiredToken:
					return echo.NewHTTPError(http.StatusUnauthorized, "JWT token has expired")
				case jwt.ErrMalformedToken:
					return echo.NewHTTPError(http.StatusUnauthorized, "Malformed JWT token")
				case jwt.ErrInvalidSignature:
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid JWT token signature")
				default:
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid JWT token")
				}
			}

			c.Set(AccountIDKey, claims.AccountID)
			c.Set(ClaimsKey, claims)

			return next(c)
		}
	}
}

// RequireAdmin layers on RequireJWT and rejects non-admin accounts. It
// re-reads the role from the database so a demotion takes effect before
// the token expires.
func RequireAdmin(accounts *account.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			accountID := GetAccountID(c)
			if accountID == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			acc, err := accounts.FindByID(accountID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Account not found")
			}
			if !acc.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}

			return next(c)
		}
	}
}

func GetAccountID(c echo.Context) uint {
	if accountID, ok := c.Get(AccountIDKey).(uint); ok {
		return accountID
	}
	return 0
}

func GetClaims(c echo.Context) *jwt.Claims {
	if claims, ok := c.Get(ClaimsKey).(*jwt.Claims); ok {
		return claims
	}
	return nil
}
