package staffauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test_secret"

var now = time.Unix(1790000000, 0)

func TestSignVerify_RoundTrip(t *testing.T) {
	tok, err := Sign(secret, "staff-42", "Anna", time.Hour, now)
	require.NoError(t, err)

	got, err := Verify(tok, secret, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "staff-42", got.ID)
	assert.Equal(t, "Anna", got.Name)
	assert.Equal(t, "Anna", got.Actor())
	assert.True(t, got.ExpiresAt.Equal(now.Add(time.Hour)))
}

func TestActor_FallsBackToID(t *testing.T) {
	assert.Equal(t, "staff-7", Staff{ID: "staff-7"}.Actor())
}

func TestVerify_Rejects(t *testing.T) {
	valid, err := Sign(secret, "staff-42", "", time.Hour, now)
	require.NoError(t, err)

	foreignIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "staff-42",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer, Subject: "staff-42"},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer, ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	cases := map[string]struct {
		token  string
		secret string
		at     time.Time
	}{
		"empty token":    {"", secret, now},
		"empty secret":   {valid, "", now},
		"wrong secret":   {valid, "other", now},
		"expired":        {valid, secret, now.Add(2 * time.Hour)},
		"foreign issuer": {foreignIssuer, secret, now},
		"no expiry":      {noExpiry, secret, now},
		"no subject":     {noSubject, secret, now},
		"garbage":        {"not.a.jwt", secret, now},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Verify(tc.token, tc.secret, tc.at)
			assert.Error(t, err)
		})
	}
}

func TestSign_RequiresSecretAndID(t *testing.T) {
	_, err := Sign("", "staff-1", "", time.Hour, now)
	assert.Error(t, err)
	_, err = Sign(secret, " ", "", time.Hour, now)
	assert.Error(t, err)
}
