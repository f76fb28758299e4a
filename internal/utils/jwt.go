package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed HS256 JWT and its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// RefreshToken is the raw opaque token handed to the client.  Only its
// SHA-256 is persisted.
type RefreshToken struct {
	Raw string
	Exp time.Time
}

// Claims is the identity carried by an access token.
type Claims struct {
	UserID uint64
	Role   string
	Email  string
	Exp    time.Time
}

var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken signs a token with sub (user id), role, email, iat and exp
// claims.  exp is now + ttlMin minutes.
func NewAccessToken(secret string, userID uint64, role, email string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(userID, 10),
		"role":  role,
		"email": email,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature and expiry and extracts the claims.
// Only HMAC signing methods are accepted.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	var c Claims
	// sub is written as a string but older tokens carried a JSON number
	switch v := mc["sub"].(type) {
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Claims{}, ErrInvalidToken
		}
		c.UserID = id
	case float64:
		c.UserID = uint64(v)
	}
	if c.UserID == 0 {
		return Claims{}, ErrInvalidToken
	}
	c.Role, _ = mc["role"].(string)
	c.Email, _ = mc["email"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.Exp = exp.Time.UTC()
	}
	return c, nil
}

// NewRefreshToken returns 48 random bytes, hex encoded, valid for ttlDays.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(48)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshRaw returns the hex SHA-256 of a raw refresh token.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
