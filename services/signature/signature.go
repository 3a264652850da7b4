// Package signature computes the keyed digests shared by the
// proof-of-control and federated login protocols. The game server and
// this portal both derive digests from ordered field values plus a
// shared secret; acceptance is exact string equality.
package signature

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// ShortDigestLength is the truncation applied to the second-stage
// handshake digest by the game server.
const ShortDigestLength = 10

type Verifier struct {
	secret string
	now    func() time.Time
}

func New(secret string) *Verifier {
	return NewWithClock(secret, time.Now)
}

// NewWithClock lets tests pin the date used by dated digests.
func NewWithClock(secret string, now func() time.Time) *Verifier {
	return &Verifier{secret: secret, now: now}
}

// Digest returns the hex MD5 of the ordered fields followed by the
// shared secret.
func (v *Verifier) Digest(fields ...string) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(f)
	}
	b.WriteString(v.secret)

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// ShortDigest is Digest truncated to ShortDigestLength hex characters.
func (v *Verifier) ShortDigest(fields ...string) string {
	return v.Digest(fields...)[:ShortDigestLength]
}

// DatedDigest additionally salts with the current UTC calendar date, so
// the digest verifies only on its issuance day.
func (v *Verifier) DatedDigest(fields ...string) string {
	date := v.now().UTC().Format("2006-01-02")
	return v.Digest(append(append([]string{}, fields...), date)...)
}

// Verify accepts only an exact match. No fuzzy or partial comparison.
func (v *Verifier) Verify(expected, actual string) bool {
	return expected == actual
}
