package handlers

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/handshake"
	"github.com/tech-arch1tect/secretsanta/services/signature"
	"github.com/tech-arch1tect/secretsanta/testutils"
)

func TestAuthRegister(t *testing.T) {
	h := setupHarness(t)

	t.Run("successful registration", func(t *testing.T) {
		rec := h.request(t, http.MethodPost, "/auth/register", "", registerRequest{
			Email:    "new@example.com",
			Password: "password123",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var acc account.Account
		decodeJSON(t, rec, &acc)
		assert.Equal(t, "new@example.com", acc.Email)
		assert.NotContains(t, rec.Body.String(), "password123")
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := h.request(t, http.MethodPost, "/auth/register", "", registerRequest{
			Email:    "new@example.com",
			Password: "password123",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("weak password", func(t *testing.T) {
		rec := h.request(t, http.MethodPost, "/auth/register", "", registerRequest{
			Email:    "weak@example.com",
			Password: "short",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthLogin(t *testing.T) {
	h := setupHarness(t)
	acc, _ := h.createUser(t, "login@example.com", false)

	t.Run("valid credentials return a bearer token", func(t *testing.T) {
		rec := h.request(t, http.MethodPost, "/auth/login", "", loginRequest{
			Email:    "login@example.com",
			Password: "password123",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp tokenResponse
		decodeJSON(t, rec, &resp)
		require.NotEmpty(t, resp.Token)
		assert.Positive(t, resp.ExpiresIn)

		me := h.request(t, http.MethodGet, "/auth/me", resp.Token, nil)
		require.Equal(t, http.StatusOK, me.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := h.request(t, http.MethodPost, "/auth/login", "", loginRequest{
			Email:    "login@example.com",
			Password: "wrongpass1",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("blocked account", func(t *testing.T) {
		require.NoError(t, h.accounts.Block(acc.ID, "spam"))
		rec := h.request(t, http.MethodPost, "/auth/login", "", loginRequest{
			Email:    "login@example.com",
			Password: "password123",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		require.NoError(t, h.accounts.Unblock(acc.ID))
	})
}

// signHandshake builds the parameter set the game server would send.
func signHandshake(gwarsID int64, nickname string) handshake.Request {
	cfg := testutils.GetTestConfig()
	v := signature.New(cfg.GWars.SharedSecret)

	id := strconv.FormatInt(gwarsID, 10)
	premium := "1"
	confirmed := "1"
	sign3 := v.Digest(id, nickname, premium, confirmed)
	return handshake.Request{
		GWarsID:   gwarsID,
		Nickname:  nickname,
		Premium:   premium,
		Confirmed: confirmed,
		Sign1:     v.Digest(id),
		Sign2:     v.ShortDigest(id, nickname),
		Sign3:     sign3,
		Sign4:     v.DatedDigest(sign3),
	}
}

func TestAuthGWarsLogin(t *testing.T) {
	h := setupHarness(t)

	t.Run("valid handshake creates an account and returns a token", func(t *testing.T) {
		rec := h.request(t, http.MethodPost, "/auth/gwars", "", signHandshake(777, "Snow Queen"))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp tokenResponse
		decodeJSON(t, rec, &resp)
		require.NotEmpty(t, resp.Token)
		require.NotNil(t, resp.Account.GWarsID)
		assert.Equal(t, int64(777), *resp.Account.GWarsID)
		assert.True(t, resp.Account.GWarsVerified)
	})

	t.Run("tampered signature is rejected", func(t *testing.T) {
		req := signHandshake(778, "Impostor")
		req.Sign3 = "0000000000000000000000000000000"
		rec := h.request(t, http.MethodPost, "/auth/gwars", "", req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
