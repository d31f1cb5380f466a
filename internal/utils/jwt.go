package utils // package utils provides helpers for channel token creation

import (
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ChannelToken represents a signed JWT along with its expiry.  The
// Token field contains the serialized JWT string; Exp stores the UTC
// expiration timestamp.  Tokens carry a role claim that the API maps
// onto a booking channel: ONLINE for guest-facing clients and STAFF
// for host-stand terminals.
type ChannelToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewChannelToken builds and signs an HS256 JWT for an API client.  It
// takes the signing secret, a subject identifying the client, the role
// ("ONLINE" or "STAFF"), and a TTL in minutes.  The JWT includes the
// standard claims: subject (sub), role, expiration (exp) and issued at
// (iat).
func NewChannelToken(secret, subject, role string, ttlMin int) (ChannelToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return ChannelToken{}, err
	}
	return ChannelToken{Token: signed, Exp: exp}, nil
}
