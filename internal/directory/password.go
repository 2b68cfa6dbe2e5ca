package directory

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadCredentials = errors.New("directory: invalid username or password")

const minPasswordLength = 8

func HashPassword(plain string) (string, error) {
	if len(plain) < minPasswordLength {
		return "", errors.New("password must be at least 8 characters")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword compares a bcrypt hash with a candidate password.
func CheckPassword(hash, plain string) error {
	if hash == "" {
		return ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return ErrBadCredentials
	}
	return nil
}
