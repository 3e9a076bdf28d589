package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeRange covers 100000-999999. Codes never carry a leading zero; the
// range is part of the observable code format and must not be widened.
const (
	codeMin   = 100000
	codeRange = 900000

	// CodeLength is the number of digits in a login code.
	CodeLength = 6
)

// GenerateCode returns a uniformly distributed 6-digit decimal code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeRange))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}
