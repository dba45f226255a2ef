// Package auth issues and verifies the bearer tokens handed out at login,
// and hashes user passwords.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload carried by a login token. The registered ID (jti)
// names the server-side session backing the token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 login tokens with a shared secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a Tokens using the given secret and lifetime. An empty
// secret is replaced by a random one, so tokens do not survive a restart.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	key := []byte(secret)
	if len(key) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			panic(fmt.Sprintf("generating token secret: %v", err))
		}
		key = []byte(hex.EncodeToString(buf))
		slog.Warn("no token secret configured, using a random per-process secret")
	}
	return &Tokens{secret: key, ttl: ttl, now: time.Now}
}

// Create signs a token for username and returns it with its session id.
func (t *Tokens) Create(username string) (token, id string, err error) {
	now := t.now()
	id = uuid.NewString()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", "", fmt.Errorf("signing token: %w", err)
	}
	return token, id, nil
}

// Verify returns the claims of a well-signed, unexpired token that names a
// session, or nil for anything else.
func (t *Tokens) Verify(token string) *Claims {
	claims, err := t.parse(token, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil
	}
	return claims
}

// Inspect is Verify without the expiry check. Logout uses it so an expired
// token can still end its session.
func (t *Tokens) Inspect(token string) *Claims {
	claims, err := t.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	return claims
}

func (t *Tokens) parse(token string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ID == "" || claims.Username == "" {
		return nil, errors.New("token carries no session")
	}
	return claims, nil
}
