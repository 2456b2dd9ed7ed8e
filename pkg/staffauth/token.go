package staffauth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped on tokens minted by Sign and required by Verify.
const Issuer = "roomstatus"

type Claims struct {
	jwt.RegisteredClaims

	// Name is the display name recorded as the actor of a status change.
	Name string `json:"name,omitempty"`
}

// Staff is the identity carried by a verified token.
type Staff struct {
	ID        string
	Name      string
	ExpiresAt time.Time
}

// Actor is the value stored as changedBy on ledger entries.
func (s Staff) Actor() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// Sign mints an HS256 staff token valid for ttl from now.
func Sign(secret, staffID, name string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("missing token secret")
	}
	if strings.TrimSpace(staffID) == "" {
		return "", errors.New("missing staff id")
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   staffID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name: name,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verify checks signature, issuer and time claims of a staff token.
func Verify(tokenString, secret string, now time.Time) (*Staff, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	if secret == "" {
		return nil, fmt.Errorf("missing token secret")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
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

	id := strings.TrimSpace(claims.Subject)
	if id == "" {
		return nil, fmt.Errorf("missing staff id in token")
	}
	return &Staff{
		ID:        id,
		Name:      strings.TrimSpace(claims.Name),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
