package domain

// TokenPayload is the self-describing payload carried by a signed
// bearer token. A token is live only while its embedded key matches the
// user's stored AuthTokenKeys row.
type TokenPayload struct {
	Issuer   string `json:"iss"`
	Subject  string `json:"sub"`
	Audience string `json:"aud"`
	IssuedAt int64  `json:"iat"`
	UserID   string `json:"userId"`
	RoleID   string `json:"roleId"`
	UserName string `json:"userName"`
	Email    string `json:"email"`

	// Exactly one of these is set depending on the token family.
	AccessTokenKey  string `json:"accessTokenKey,omitempty"`
	RefreshTokenKey string `json:"refreshTokenKey,omitempty"`
}

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
