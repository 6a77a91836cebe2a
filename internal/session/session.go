// Package session resolves the caller's identity from a bearer token without
// contacting the network. The upstream API owns verification; the client only
// reads the subject claim out of the payload segment.
package session

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller as seen by handlers and services:
// the decoded subject plus the raw bearer forwarded to the upstream API.
type Identity struct {
	UserID string
	Token  string
}

// UserID decodes the subject claim from a bearer token. It never returns an
// error: malformed tokens (bad segment count, bad base64, unparsable claims,
// missing subject) yield ("", false), which callers treat as "not logged in".
func UserID(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", false
	}

	// The subject may arrive as a string or a number depending on the
	// upstream's token issuer version.
	switch sub := claims["sub"].(type) {
	case string:
		if sub == "" {
			return "", false
		}
		return sub, true
	case float64:
		return strconv.FormatFloat(sub, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Resolve builds an Identity from a raw token, reporting whether the token
// carried a usable subject.
func Resolve(token string) (Identity, bool) {
	id, ok := UserID(token)
	if !ok {
		return Identity{}, false
	}
	return Identity{UserID: id, Token: token}, true
}
