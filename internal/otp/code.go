// Package otp generates one-time codes and delivers them through an
// external messaging collaborator.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Validity is how long an issued code stays usable.
const Validity = 5 * time.Minute

// NewCode returns a 6-digit one-time code.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
