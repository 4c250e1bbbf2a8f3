package acceptance

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/chatloop/chat-backend/internal/dto"
)

func (s *Suite) doJSON(method, path, token string, body any) *http.Response {
	s.T().Helper()

	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, s.BaseURL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) decode(resp *http.Response, out any) {
	s.T().Helper()
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
}

func (s *Suite) errorMessage(resp *http.Response) string {
	s.T().Helper()
	var errResp dto.ErrorResponse
	s.decode(resp, &errResp)
	return errResp.Message
}

func (s *Suite) signup(userName, email, password string) dto.AuthResponse {
	s.T().Helper()

	resp := s.doJSON(http.MethodPost, "/v1/auth/signup", "", dto.SignupRequest{
		UserName:  userName,
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Gender:    "other",
		Password:  password,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var authResp dto.AuthResponse
	s.decode(resp, &authResp)
	return authResp
}

// verificationTokenFor reads the outstanding verification token for a
// user straight from the database, standing in for the email link.
func (s *Suite) verificationTokenFor(email string) (id, token string) {
	s.T().Helper()

	row := s.Postgres.DB.QueryRow(`
		SELECT vt.id, vt.token FROM verification_tokens vt
		JOIN users u ON u.id = vt.user_id
		WHERE u.email = $1`, email)
	s.Require().NoError(row.Scan(&id, &token))
	return id, token
}

func (s *Suite) restrictAccount(email string) {
	s.T().Helper()

	_, err := s.Postgres.DB.Exec(`
		UPDATE activities SET access_restricted = true
		WHERE user_id = (SELECT id FROM users WHERE email = $1)`, email)
	s.Require().NoError(err)
}

func (s *Suite) loginBody(email, password string) dto.LoginRequest {
	return dto.LoginRequest{Email: email, Password: password}
}

