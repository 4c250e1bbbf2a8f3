package utils

import (
	"errors"
	"time"

	"github.com/chatloop/chat-backend/internal/apperror"
	"github.com/chatloop/chat-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// TokenCodec signs and verifies the access and refresh token families,
// each under its own secret. It is stateless: liveness of a token is
// decided by the auth service against the stored key pair.
type TokenCodec struct {
	accessSecret       []byte
	refreshSecret      []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	issuer             string
	audience           string
	subject            string
}

type tokenClaims struct {
	UserID          string `json:"userId"`
	RoleID          string `json:"roleId"`
	UserName        string `json:"userName"`
	Email           string `json:"email"`
	AccessTokenKey  string `json:"accessTokenKey,omitempty"`
	RefreshTokenKey string `json:"refreshTokenKey,omitempty"`
	jwt.RegisteredClaims
}

// NewTokenCodec creates a codec for both token families
func NewTokenCodec(accessSecret, refreshSecret string, accessTokenExpiry, refreshTokenExpiry time.Duration, issuer, audience, subject string) *TokenCodec {
	return &TokenCodec{
		accessSecret:       []byte(accessSecret),
		refreshSecret:      []byte(refreshSecret),
		accessTokenExpiry:  accessTokenExpiry,
		refreshTokenExpiry: refreshTokenExpiry,
		issuer:             issuer,
		audience:           audience,
		subject:            subject,
	}
}

func (c *TokenCodec) newClaims(payload domain.TokenPayload, expiry time.Duration) tokenClaims {
	now := time.Now()
	return tokenClaims{
		UserID:          payload.UserID,
		RoleID:          payload.RoleID,
		UserName:        payload.UserName,
		Email:           payload.Email,
		AccessTokenKey:  payload.AccessTokenKey,
		RefreshTokenKey: payload.RefreshTokenKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   c.subject,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
}

// SignAccessToken issues a signed access token embedding the access key
func (c *TokenCodec) SignAccessToken(payload domain.TokenPayload) (string, error) {
	payload.RefreshTokenKey = ""
	return c.sign(c.newClaims(payload, c.accessTokenExpiry), c.accessSecret)
}

// SignRefreshToken issues a signed refresh token embedding the refresh key
func (c *TokenCodec) SignRefreshToken(payload domain.TokenPayload) (string, error) {
	payload.AccessTokenKey = ""
	return c.sign(c.newClaims(payload, c.refreshTokenExpiry), c.refreshSecret)
}

func (c *TokenCodec) sign(claims tokenClaims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", apperror.Internal("Failed To Generate Token")
	}
	return signed, nil
}

// VerifyAccessToken fully verifies an access token, including expiry
func (c *TokenCodec) VerifyAccessToken(token string) (*domain.TokenPayload, error) {
	return c.verify(token, c.accessSecret, false)
}

// VerifyRefreshToken fully verifies a refresh token, including expiry
func (c *TokenCodec) VerifyRefreshToken(token string) (*domain.TokenPayload, error) {
	return c.verify(token, c.refreshSecret, false)
}

// DecodeExpiredAccessToken verifies signature and claim shape but
// ignores expiry, so a refresh can recover identity from an access
// token that has already expired.
func (c *TokenCodec) DecodeExpiredAccessToken(token string) (*domain.TokenPayload, error) {
	return c.verify(token, c.accessSecret, true)
}

func (c *TokenCodec) verify(token string, secret []byte, ignoreExpiry bool) (*domain.TokenPayload, error) {
	claims := &tokenClaims{}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if ignoreExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperror.TokenExpired("")
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, apperror.Forbidden("")
		default:
			return nil, apperror.BadToken("")
		}
	}

	payload := claims.payload()
	if !c.VerifyClaims(payload) {
		return nil, apperror.AuthFailure("")
	}
	return payload, nil
}

// VerifyClaims checks the payload shape: iss/sub/aud must exactly match
// the configured constants and iat must be present.
func (c *TokenCodec) VerifyClaims(payload *domain.TokenPayload) bool {
	if payload == nil {
		return false
	}
	if payload.Issuer == "" || payload.Subject == "" || payload.Audience == "" || payload.IssuedAt == 0 {
		return false
	}
	if payload.Issuer != c.issuer {
		return false
	}
	if payload.Subject != c.subject {
		return false
	}
	if payload.Audience != c.audience {
		return false
	}
	return true
}

func (tc *tokenClaims) payload() *domain.TokenPayload {
	p := &domain.TokenPayload{
		Issuer:          tc.Issuer,
		Subject:         tc.Subject,
		UserID:          tc.UserID,
		RoleID:          tc.RoleID,
		UserName:        tc.UserName,
		Email:           tc.Email,
		AccessTokenKey:  tc.AccessTokenKey,
		RefreshTokenKey: tc.RefreshTokenKey,
	}
	if len(tc.Audience) > 0 {
		p.Audience = tc.Audience[0]
	}
	if tc.IssuedAt != nil {
		p.IssuedAt = tc.IssuedAt.Unix()
	}
	return p
}
