// Package otp generates the numeric confirmation codes mailed to users.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Digits is the length of a confirmation code.
const Digits = 4

// New returns a random 4-digit numeric code without a leading zero,
// e.g. "4831".
func New() (string, error) {
	span := big.NewInt(9000)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}
