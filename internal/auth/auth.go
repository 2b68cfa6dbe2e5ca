package auth

import (
	"errors"
	"strings"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

var (
	ErrInvalidIDToken = errors.New("invalid google id token")
	ErrDomain         = errors.New("email domain not allowed")
)

// Identity is the verified subject of a student sign-in.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

type IDTokenVerifier interface {
	Verify(idToken string) (*Identity, error)
}

// GoogleVerifier checks ID tokens against Google's signing keys with the
// configured client id as audience.
type GoogleVerifier struct {
	ClientID string
}

func (g GoogleVerifier) Verify(idToken string) (*Identity, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{g.ClientID}); err != nil {
		return nil, ErrInvalidIDToken
	}
	claims, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, ErrInvalidIDToken
	}
	return &Identity{Subject: claims.Sub, Email: claims.Email, Name: claims.Name}, nil
}

// AllowedEmail reports whether email ends with the institution's domain
// suffix. An empty suffix allows nothing.
func AllowedEmail(email, suffix string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	suffix = strings.ToLower(strings.TrimSpace(suffix))
	if suffix == "" || !strings.HasPrefix(suffix, "@") {
		return false
	}
	return len(email) > len(suffix) && strings.HasSuffix(email, suffix)
}
