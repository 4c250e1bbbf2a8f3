package realtime

import (
	"context"

	"github.com/chatloop/chat-backend/internal/apperror"
	"github.com/chatloop/chat-backend/internal/service"
)

// Authorizer admits realtime connections using the same verification
// path as the HTTP middleware: claim shape, signature, expiry, and a
// live token-key pair.
type Authorizer struct {
	authService service.AuthService
}

func NewAuthorizer(authService service.AuthService) *Authorizer {
	return &Authorizer{authService: authService}
}

// Authorize verifies the handshake access token and returns the user
// id the connection belongs to.
func (a *Authorizer) Authorize(ctx context.Context, accessToken string) (string, error) {
	if accessToken == "" {
		return "", apperror.Forbidden("Authorization Failure")
	}

	user, _, err := a.authService.VerifyAccessToken(ctx, accessToken)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
