package acceptance

import (
	"net/http"

	"github.com/chatloop/chat-backend/internal/dto"
)

func (s *Suite) TestSignup_Success() {
	authResp := s.signup("john_doe", "john@example.com", "Secret#123")

	s.NotEmpty(authResp.Tokens.AccessToken)
	s.NotEmpty(authResp.Tokens.RefreshToken)
	s.Require().NotNil(authResp.User)
	s.Equal("john@example.com", authResp.User.Email)
	s.Equal("john_doe", authResp.User.UserName)
	s.Require().NotNil(authResp.Role)
	s.False(authResp.Role.Admin)
	s.True(authResp.Role.User)
}

func (s *Suite) TestSignup_DuplicateEmail() {
	s.signup("first_user", "dup@example.com", "Secret#123")

	resp := s.doJSON(http.MethodPost, "/v1/auth/signup", "", dto.SignupRequest{
		UserName:  "second_user",
		FirstName: "Test",
		LastName:  "User",
		Email:     "dup@example.com",
		Gender:    "other",
		Password:  "Secret#123",
	})

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("User already exists with this email", s.errorMessage(resp))
}

func (s *Suite) TestSignup_DuplicateUserName() {
	s.signup("taken_name", "one@example.com", "Secret#123")

	resp := s.doJSON(http.MethodPost, "/v1/auth/signup", "", dto.SignupRequest{
		UserName:  "taken_name",
		FirstName: "Test",
		LastName:  "User",
		Email:     "two@example.com",
		Gender:    "other",
		Password:  "Secret#123",
	})

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("Username already exists", s.errorMessage(resp))
}

func (s *Suite) TestSignup_WeakPassword() {
	resp := s.doJSON(http.MethodPost, "/v1/auth/signup", "", dto.SignupRequest{
		UserName:  "weak_pass",
		FirstName: "Test",
		LastName:  "User",
		Email:     "weak@example.com",
		Gender:    "other",
		Password:  "alllowercase",
	})

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_Success() {
	s.signup("login_user", "login@example.com", "Secret#123")

	resp := s.doJSON(http.MethodPost, "/v1/auth/login", "", s.loginBody("login@example.com", "Secret#123"))
	s.Equal(http.StatusOK, resp.StatusCode)

	var authResp dto.AuthResponse
	s.decode(resp, &authResp)
	s.NotEmpty(authResp.Tokens.AccessToken)
	s.NotEmpty(authResp.Tokens.RefreshToken)
	s.Equal("login@example.com", authResp.User.Email)
}

func (s *Suite) TestLogin_ByUserName() {
	s.signup("by_name", "byname@example.com", "Secret#123")

	resp := s.doJSON(http.MethodPost, "/v1/auth/login", "", dto.LoginRequest{
		UserName: "by_name",
		Password: "Secret#123",
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (s *Suite) TestLogin_BothIdentifiersRejected() {
	s.signup("both_ids", "both@example.com", "Secret#123")

	resp := s.doJSON(http.MethodPost, "/v1/auth/login", "", dto.LoginRequest{
		Email:    "both@example.com",
		UserName: "both_ids",
		Password: "Secret#123",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func (s *Suite) TestLogin_WrongPassword() {
	s.signup("wrong_pass", "wrong@example.com", "Secret#123")

	resp := s.doJSON(http.MethodPost, "/v1/auth/login", "", s.loginBody("wrong@example.com", "Wrong#123"))
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal("Invalid Password", s.errorMessage(resp))
}

func (s *Suite) TestLogin_UnknownUser() {
	resp := s.doJSON(http.MethodPost, "/v1/auth/login", "", s.loginBody("nobody@example.com", "Secret#123"))
	s.Equal(http.StatusForbidden, resp.StatusCode)
	s.Equal("User not found", s.errorMessage(resp))
}

func (s *Suite) TestLogin_LockoutRestrictsAccount() {
	authResp := s.signup("lockout_user", "lockout@example.com", "Secret#123")

	// Attempts 1-8 advance the counter; the 9th crosses the threshold
	// and restricts the account.
	for i := 0; i < 9; i++ {
		resp := s.doJSON(http.MethodPost, "/v1/auth/login", "", s.loginBody("lockout@example.com", "Wrong#123"))
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}

	resp := s.doJSON(http.MethodPost, "/v1/auth/login", "", s.loginBody("lockout@example.com", "Secret#123"))
	s.Equal(http.StatusForbidden, resp.StatusCode)
	s.Equal("Please verify your account", s.errorMessage(resp))

	// Crossing the threshold also revoked the live session.
	resp = s.doJSON(http.MethodDelete, "/v1/auth/logout", authResp.Tokens.AccessToken, nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func (s *Suite) TestLogin_SuccessResetsCounter() {
	s.signup("reset_counter", "counter@example.com", "Secret#123")

	for i := 0; i < 3; i++ {
		resp := s.doJSON(http.MethodPost, "/v1/auth/login", "", s.loginBody("counter@example.com", "Wrong#123"))
		resp.Body.Close()
	}

	resp := s.doJSON(http.MethodPost, "/v1/auth/login", "", s.loginBody("counter@example.com", "Secret#123"))
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var attempts int
	row := s.Postgres.DB.QueryRow(`
		SELECT failed_login_attempts FROM activities
		WHERE user_id = (SELECT id FROM users WHERE email = $1)`, "counter@example.com")
	s.Require().NoError(row.Scan(&attempts))
	s.Equal(0, attempts)
}

func (s *Suite) TestTokenRefresh_RotatesSession() {
	authResp := s.signup("refresh_user", "refresh@example.com", "Secret#123")

	resp := s.doJSON(http.MethodPut, "/v1/auth/token-refresh", authResp.Tokens.AccessToken, dto.TokenRefreshRequest{
		RefreshToken: authResp.Tokens.RefreshToken,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var refreshed struct {
		Tokens struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"tokens"`
	}
	s.decode(resp, &refreshed)
	s.NotEmpty(refreshed.Tokens.AccessToken)
	s.NotEqual(authResp.Tokens.RefreshToken, refreshed.Tokens.RefreshToken)

	// The new pair is live.
	resp = s.doJSON(http.MethodDelete, "/v1/auth/logout", refreshed.Tokens.AccessToken, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (s *Suite) TestTokenRefresh_ReplayRejected() {
	authResp := s.signup("replay_user", "replay@example.com", "Secret#123")

	resp := s.doJSON(http.MethodPut, "/v1/auth/token-refresh", authResp.Tokens.AccessToken, dto.TokenRefreshRequest{
		RefreshToken: authResp.Tokens.RefreshToken,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Rotation made the first refresh token single-use.
	resp = s.doJSON(http.MethodPut, "/v1/auth/token-refresh", authResp.Tokens.AccessToken, dto.TokenRefreshRequest{
		RefreshToken: authResp.Tokens.RefreshToken,
	})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal("Invalid Token", s.errorMessage(resp))
}

func (s *Suite) TestLogout_RevokesSession() {
	authResp := s.signup("logout_user", "logout@example.com", "Secret#123")

	resp := s.doJSON(http.MethodDelete, "/v1/auth/logout", authResp.Tokens.AccessToken, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Every token of the revoked session is now rejected.
	resp = s.doJSON(http.MethodDelete, "/v1/auth/logout", authResp.Tokens.AccessToken, nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func (s *Suite) TestProtectedRoute_MissingToken() {
	resp := s.doJSON(http.MethodDelete, "/v1/auth/logout", "", nil)
	s.Equal(http.StatusForbidden, resp.StatusCode)
	s.Equal("Authorization Failure", s.errorMessage(resp))
}

func (s *Suite) TestChangePassword() {
	authResp := s.signup("change_pass", "change@example.com", "Secret#123")

	resp := s.doJSON(http.MethodPut, "/v1/auth/change-password", authResp.Tokens.AccessToken, dto.ChangePasswordRequest{
		OldPassword: "Secret#123",
		NewPassword: "Fresh#4567",
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.doJSON(http.MethodPost, "/v1/auth/login", "", s.loginBody("change@example.com", "Fresh#4567"))
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.doJSON(http.MethodPost, "/v1/auth/login", "", s.loginBody("change@example.com", "Secret#123"))
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func (s *Suite) TestChangePassword_WrongOldPassword() {
	authResp := s.signup("change_wrong", "changewrong@example.com", "Secret#123")

	resp := s.doJSON(http.MethodPut, "/v1/auth/change-password", authResp.Tokens.AccessToken, dto.ChangePasswordRequest{
		OldPassword: "Wrong#123",
		NewPassword: "Fresh#4567",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("Invalid Password", s.errorMessage(resp))
}

func (s *Suite) TestForgotPasswordFlow() {
	s.signup("forgot_user", "forgot@example.com", "Secret#123")

	resp := s.doJSON(http.MethodPost, "/v1/auth/forgot-password", "", dto.EmailRequest{Email: "forgot@example.com"})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	_, token := s.verificationTokenFor("forgot@example.com")

	resp = s.doJSON(http.MethodGet, "/v1/auth/verify-verification-token/"+token, "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var result dto.VerificationResult
	s.decode(resp, &result)
	s.Require().NotEmpty(result.TokenID)

	resp = s.doJSON(http.MethodPut, "/v1/auth/reset-password/"+result.TokenID, "", dto.ResetPasswordRequest{
		Password: "Reset#9876",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.doJSON(http.MethodPost, "/v1/auth/login", "", s.loginBody("forgot@example.com", "Reset#9876"))
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (s *Suite) TestVerifyAccountFlow() {
	s.signup("verify_acct", "verifyacct@example.com", "Secret#123")
	s.restrictAccount("verifyacct@example.com")

	resp := s.doJSON(http.MethodPost, "/v1/auth/login", "", s.loginBody("verifyacct@example.com", "Secret#123"))
	s.Equal(http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = s.doJSON(http.MethodPost, "/v1/auth/verify-account", "", dto.EmailRequest{Email: "verifyacct@example.com"})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	_, token := s.verificationTokenFor("verifyacct@example.com")

	resp = s.doJSON(http.MethodGet, "/v1/auth/verify-verification-token/"+token, "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var result dto.VerificationResult
	s.decode(resp, &result)
	s.True(result.AccountVerified)

	resp = s.doJSON(http.MethodPost, "/v1/auth/login", "", s.loginBody("verifyacct@example.com", "Secret#123"))
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (s *Suite) TestVerifyAccount_AlreadyVerified() {
	s.signup("already_ok", "alreadyok@example.com", "Secret#123")

	resp := s.doJSON(http.MethodPost, "/v1/auth/verify-account", "", dto.EmailRequest{Email: "alreadyok@example.com"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("Account is already verified", s.errorMessage(resp))
}

func (s *Suite) TestVerifyVerificationToken_Unknown() {
	resp := s.doJSON(http.MethodGet, "/v1/auth/verify-verification-token/deadbeef", "", nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("Invalid Token", s.errorMessage(resp))
}
