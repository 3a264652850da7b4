package verification

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// maxTokenAttempts caps collision retries before falling back to a
// random hex token.
const maxTokenAttempts = 50

func randInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("failed to draw random number: %w", err)
	}
	return int(n.Int64()), nil
}

// composeWordToken concatenates count random entries from the curated
// word list, randomizing the case of every letter.
func composeWordToken(words []string, count int) (string, error) {
	var b strings.Builder
	for i := 0; i < count; i++ {
		idx, err := randInt(len(words))
		if err != nil {
			return "", err
		}
		for _, r := range words[idx] {
			flip, err := randInt(2)
			if err != nil {
				return "", err
			}
			if flip == 1 {
				b.WriteString(strings.ToUpper(string(r)))
			} else {
				b.WriteString(strings.ToLower(string(r)))
			}
		}
	}
	return b.String(), nil
}

// randomHexToken is the fallback shape: 32 hex characters.
func randomHexToken() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate fallback token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
