package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/services/verification"
)

func TestProfileUpdate(t *testing.T) {
	h := setupHarness(t)
	_, token := h.createUser(t, "profile@example.com", false)

	name := "Full Name"
	addr := "1 Somewhere"
	interests := "puzzles"
	rec := h.request(t, http.MethodPut, "/profile", token, profileRequest{
		FullName:  &name,
		Address:   &addr,
		Interests: &interests,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var acc account.Account
	decodeJSON(t, rec, &acc)
	assert.True(t, acc.ProfileCompleted)
}

func TestGWarsVerificationFlow(t *testing.T) {
	h := setupHarness(t)
	_, token := h.createUser(t, "gwars@example.com", false)
	profileURL := "https://www.gwars.io/info.php?id=4242"

	rec := h.request(t, http.MethodPost, "/profile/gwars/challenge", token,
		challengeRequest{ProfileURL: profileURL})
	require.Equal(t, http.StatusOK, rec.Code)

	var challenge challengeResponse
	decodeJSON(t, rec, &challenge)
	require.NotEmpty(t, challenge.Token)
	assert.Contains(t, challenge.Placement, challenge.Token)

	t.Run("token absent from profile", func(t *testing.T) {
		h.fetcher.body = "a profile without the phrase"
		rec := h.request(t, http.MethodPost, "/profile/gwars/verify", token,
			challengeRequest{ProfileURL: profileURL})
		require.Equal(t, http.StatusOK, rec.Code)

		var result verification.Result
		decodeJSON(t, rec, &result)
		assert.False(t, result.Verified)
		assert.Equal(t, verification.DiagnosticNotFound, result.Diagnostic)
	})

	t.Run("token present binds the identity", func(t *testing.T) {
		h.fetcher.body = "character bio then " + challenge.Placement + " and more text"
		rec := h.request(t, http.MethodPost, "/profile/gwars/verify", token,
			challengeRequest{ProfileURL: profileURL})
		require.Equal(t, http.StatusOK, rec.Code)

		var result verification.Result
		decodeJSON(t, rec, &result)
		assert.True(t, result.Verified)

		me := h.request(t, http.MethodGet, "/auth/me", token, nil)
		require.Equal(t, http.StatusOK, me.Code)
		var acc account.Account
		decodeJSON(t, me, &acc)
		assert.True(t, acc.GWarsVerified)
		require.NotNil(t, acc.GWarsID)
		assert.Equal(t, int64(4242), *acc.GWarsID)
	})

	t.Run("invalid profile url", func(t *testing.T) {
		rec := h.request(t, http.MethodPost, "/profile/gwars/challenge", token,
			challengeRequest{ProfileURL: "https://evil.example.com/info.php?id=1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("claimed by another account conflicts", func(t *testing.T) {
		_, otherToken := h.createUser(t, "other@example.com", false)
		rec := h.request(t, http.MethodPost, "/profile/gwars/challenge", otherToken,
			challengeRequest{ProfileURL: profileURL})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.NotContains(t, rec.Body.String(), "gwars@example.com")
	})
}
