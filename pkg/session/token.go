package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	KindStudent Kind = "student"
	KindStaff   Kind = "staff"
)

type Claims struct {
	jwt.RegisteredClaims

	Kind Kind   `json:"kind"`
	Name string `json:"name,omitempty"`
}

// Session is what a verified token tells us. For staff only the subject is
// trusted; role and hostels are reloaded from the directory per request.
type Session struct {
	Subject   string
	Kind      Kind
	Name      string
	ExpiresAt time.Time
}

const issuer = "outingpass"

func Issue(secret string, s Session, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("missing session secret")
	}
	if s.Subject == "" {
		return "", fmt.Errorf("missing subject")
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   s.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: s.Kind,
		Name: s.Name,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verify checks signature, issuer and time window of a session token.
func Verify(tokenString, secret string, now time.Time) (*Session, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	if secret == "" {
		return nil, fmt.Errorf("missing session secret")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	claims := &Claims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	switch claims.Kind {
	case KindStudent, KindStaff:
	default:
		return nil, fmt.Errorf("unknown session kind %q", claims.Kind)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("missing subject")
	}

	return &Session{
		Subject:   claims.Subject,
		Kind:      claims.Kind,
		Name:      claims.Name,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
