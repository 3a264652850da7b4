package verification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/secretsanta/services/account"
	"github.com/tech-arch1tect/secretsanta/testutils"
	"gorm.io/gorm"
)

type stubFetcher struct {
	content string
	err     error
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.content, f.err
}

func newTestService(t *testing.T, fetcher Fetcher) (*Service, *account.Service, *gorm.DB) {
	t.Helper()
	db := testutils.SetupTestDB(t, &account.Account{}, &VerificationToken{})
	cfg := testutils.GetTestConfig()
	accounts := account.NewService(cfg, db, nil)
	svc := NewService(cfg, db, nil, accounts, nil, fetcher)
	return svc, accounts, db
}

func createAccount(t *testing.T, accounts *account.Service, email string) *account.Account {
	t.Helper()
	acc, err := accounts.Register(email, "password123")
	require.NoError(t, err)
	return acc
}

func TestValidateProfileURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantID  int64
		wantErr bool
	}{
		{name: "canonical", url: "https://www.gwars.io/info.php?id=283494", wantID: 283494},
		{name: "bare host", url: "https://gwars.io/info.php?id=7", wantID: 7},
		{name: "http scheme", url: "http://www.gwars.io/info.php?id=7", wantID: 7},
		{name: "wrong host", url: "https://evil.example.com/info.php?id=7", wantErr: true},
		{name: "wrong path", url: "https://www.gwars.io/user.php?id=7", wantErr: true},
		{name: "extra query", url: "https://www.gwars.io/info.php?id=7&x=1", wantErr: true},
		{name: "non-numeric id", url: "https://www.gwars.io/info.php?id=abc", wantErr: true},
		{name: "zero id", url: "https://www.gwars.io/info.php?id=0", wantErr: true},
		{name: "not a url", url: "://nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ValidateProfileURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidProfileURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestIssueToken_LedgerGrowsAndDeactivates(t *testing.T) {
	svc, accounts, db := newTestService(t, nil)
	acc := createAccount(t, accounts, "ledger@example.com")

	first, err := svc.IssueToken(acc.ID)
	require.NoError(t, err)
	second, err := svc.IssueToken(acc.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	var rows []VerificationToken
	require.NoError(t, db.Where("account_id = ?", acc.ID).Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].Active)
	assert.True(t, rows[1].Active)

	// Mirror on the account follows the active token.
	got, err := accounts.FindByID(acc.ID)
	require.NoError(t, err)
	assert.Equal(t, second, got.VerificationToken)
}

func TestIssueToken_HexFallbackWithoutWordList(t *testing.T) {
	svc, accounts, _ := newTestService(t, nil)
	svc.config.Santa.WordList = nil
	acc := createAccount(t, accounts, "fallback@example.com")

	token, err := svc.IssueToken(acc.ID)
	require.NoError(t, err)
	assert.Len(t, token, 32)
}

func TestIssueChallenge_RecordsUnverifiedURL(t *testing.T) {
	svc, accounts, _ := newTestService(t, nil)
	acc := createAccount(t, accounts, "claim@example.com")

	token, err := svc.IssueChallenge(acc.ID, "https://www.gwars.io/info.php?id=101")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	got, err := accounts.FindByID(acc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.GWarsProfileURL)
	assert.Equal(t, "https://www.gwars.io/info.php?id=101", *got.GWarsProfileURL)
	assert.False(t, got.GWarsVerified)
}

func TestIssueChallenge_ConflictIsRedacted(t *testing.T) {
	svc, accounts, _ := newTestService(t, nil)
	first := createAccount(t, accounts, "owner@example.com")
	second := createAccount(t, accounts, "intruder@example.com")

	_, err := svc.IssueChallenge(first.ID, "https://www.gwars.io/info.php?id=200")
	require.NoError(t, err)

	_, err = svc.IssueChallenge(second.ID, "https://www.gwars.io/info.php?id=200")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProfileURLClaimed)
	assert.Contains(t, err.Error(), "o***@e***")
	assert.NotContains(t, err.Error(), "owner@example.com")
}

func TestRegenerateToken(t *testing.T) {
	svc, accounts, _ := newTestService(t, nil)
	acc := createAccount(t, accounts, "regen@example.com")

	// Without a challenge in flight there is nothing to regenerate.
	_, err := svc.RegenerateToken(acc.ID)
	assert.ErrorIs(t, err, ErrNoActiveChallenge)

	first, err := svc.IssueChallenge(acc.ID, "https://www.gwars.io/info.php?id=300")
	require.NoError(t, err)

	second, err := svc.RegenerateToken(acc.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerifyPlacement_Outcomes(t *testing.T) {
	const url = "https://www.gwars.io/info.php?id=400"

	setup := func(t *testing.T, fetcher *stubFetcher) (*Service, *account.Service, *account.Account, string) {
		svc, accounts, _ := newTestService(t, fetcher)
		acc := createAccount(t, accounts, "verify@example.com")
		token, err := svc.IssueChallenge(acc.ID, url)
		require.NoError(t, err)
		return svc, accounts, acc, token
	}

	t.Run("exact match verifies and binds", func(t *testing.T) {
		fetcher := &stubFetcher{}
		svc, accounts, acc, token := setup(t, fetcher)
		fetcher.content = "character page ... I am Secret Santa: " + token + " ..."

		result, err := svc.VerifyPlacement(context.Background(), acc.ID, url)
		require.NoError(t, err)
		assert.True(t, result.Verified)
		assert.Equal(t, DiagnosticVerified, result.Diagnostic)

		got, err := accounts.FindByID(acc.ID)
		require.NoError(t, err)
		assert.True(t, got.GWarsVerified)
		require.NotNil(t, got.GWarsID)
		assert.Equal(t, int64(400), *got.GWarsID)

		// The used token is retired.
		_, err = svc.ActiveToken(acc.ID)
		assert.ErrorIs(t, err, ErrNoActiveChallenge)
	})

	t.Run("case mismatch is its own diagnostic", func(t *testing.T) {
		fetcher := &stubFetcher{}
		svc, _, acc, token := setup(t, fetcher)
		fetcher.content = "I am Secret Santa: " + flipCase(token)

		result, err := svc.VerifyPlacement(context.Background(), acc.ID, url)
		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, DiagnosticCaseMismatch, result.Diagnostic)
		assert.NotEmpty(t, result.Reason)
	})

	t.Run("wrong token", func(t *testing.T) {
		fetcher := &stubFetcher{}
		svc, _, acc, _ := setup(t, fetcher)
		fetcher.content = "I am Secret Santa: totally-different-token"

		result, err := svc.VerifyPlacement(context.Background(), acc.ID, url)
		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, DiagnosticWrongToken, result.Diagnostic)
	})

	t.Run("phrase absent", func(t *testing.T) {
		fetcher := &stubFetcher{}
		svc, _, acc, _ := setup(t, fetcher)
		fetcher.content = "nothing interesting here"

		result, err := svc.VerifyPlacement(context.Background(), acc.ID, url)
		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, DiagnosticNotFound, result.Diagnostic)
	})

	t.Run("fetch failure is a result, not an error", func(t *testing.T) {
		fetcher := &stubFetcher{err: errors.New("connection timed out")}
		svc, _, acc, _ := setup(t, fetcher)

		result, err := svc.VerifyPlacement(context.Background(), acc.ID, url)
		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, DiagnosticFetchFailed, result.Diagnostic)
		assert.Contains(t, result.Reason, "connection timed out")
	})

	t.Run("no active token", func(t *testing.T) {
		fetcher := &stubFetcher{content: "whatever"}
		svc, accounts, _ := newTestService(t, fetcher)
		acc := createAccount(t, accounts, "tokenless@example.com")

		result, err := svc.VerifyPlacement(context.Background(), acc.ID, url)
		require.NoError(t, err)
		assert.False(t, result.Verified)
		assert.Equal(t, DiagnosticNoToken, result.Diagnostic)
	})
}

func TestScanForToken_ExactMatchWinsOverEarlierMismatch(t *testing.T) {
	phrase := "I am Secret Santa: "
	content := phrase + "WRONG ... " + phrase + "right"

	assert.Equal(t, DiagnosticVerified, scanForToken(content, phrase, "right"))
}

func flipCase(s string) string {
	var b strings.Builder
	for _, r := range s {
		upper := strings.ToUpper(string(r))
		if string(r) == upper {
			b.WriteString(strings.ToLower(string(r)))
		} else {
			b.WriteString(upper)
		}
	}
	return b.String()
}
