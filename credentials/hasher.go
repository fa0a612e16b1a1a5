// Package credentials derives the keyed digests used for room passwords and the
// room-scoped cookies that prove a password was supplied.
package credentials

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"sohbet-lite/core"

	"golang.org/x/crypto/blake2b"
)

// SecretLength is the size of a generated secret.
const SecretLength = 16

// Hasher is deterministic for the lifetime of its secret. Digests are not stable
// across hashers built from different secrets, so a regenerated secret invalidates
// every room cookie issued before.
type Hasher struct {
	key []byte
}

// New builds a Hasher keyed by secret. Secrets longer than the BLAKE2b key limit
// are compressed first.
func New(secret []byte) (*Hasher, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("credentials: empty secret")
	}
	key := secret
	if len(key) > blake2b.Size {
		sum := blake2b.Sum512(key)
		key = sum[:]
	}
	return &Hasher{key: append([]byte(nil), key...)}, nil
}

// GenerateSecret returns SecretLength random bytes.
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, SecretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// Digest returns the keyed digest of plaintext. An empty plaintext means
// "no password" and yields the zero Digest.
func (h *Hasher) Digest(plaintext string) core.Digest {
	if plaintext == "" {
		return ""
	}
	mac, err := blake2b.New256(h.key)
	if err != nil {
		// key length is checked in New
		panic(err)
	}
	mac.Write([]byte(plaintext))
	return core.Digest(hex.EncodeToString(mac.Sum(nil)))
}

// Matches reports whether plaintext hashes to want. Empty values never match.
func (h *Hasher) Matches(plaintext string, want core.Digest) bool {
	if plaintext == "" || want.IsZero() {
		return false
	}
	got := h.Digest(plaintext)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
