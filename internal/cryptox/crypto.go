// Package cryptox holds the key-derivation helpers behind the offline
// re-authentication check.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/argon2"
)

// DeriveKey stretches a password with Argon2id using the given salt.
// The result is only ever compared against a stored verifier; it is not
// used as an encryption key.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier hashes a derived key into the value persisted locally.
// Storing the hash rather than the key keeps the derived key off disk.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// NewSalt returns a fresh random salt for DeriveKey.
func NewSalt() ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}
