package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const codeAttempts = 32

// CodeSource yields candidate one-time codes.
type CodeSource func() (string, error)

var codeSpan = big.NewInt(900000)

// RandomCode returns a uniformly random 6-digit code in 100000..999999.
func RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// ValidCode reports whether s has the shape of a one-time code.
func ValidCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
