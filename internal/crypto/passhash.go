// Package crypto derives and checks the Argon2id hash guarding the admin
// password. The hash is computed once at startup from the configured secret,
// never per login attempt.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// Argon2id cost parameters. 64 MB with three passes keeps a single
// derivation under typical request budgets while staying GPU-hostile.
const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
)

// RandBytes draws n bytes from the OS entropy source, used for salts.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// HashSecret derives the Argon2id key for secret under salt.
func HashSecret(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifySecret re-derives the key and compares it to expected in constant
// time.
func VerifySecret(secret, salt, expected []byte) bool {
	got := HashSecret(secret, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
