package acceptance

import (
	"net/http"

	"github.com/chatloop/chat-backend/internal/dto"
)

func (s *Suite) TestUpdateUserName() {
	authResp := s.signup("old_name", "rename@example.com", "Secret#123")

	resp := s.doJSON(http.MethodPatch, "/v1/user/username", authResp.Tokens.AccessToken, dto.UpdateUserNameRequest{
		UserName: "new_name",
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.doJSON(http.MethodPost, "/v1/auth/login", "", dto.LoginRequest{
		UserName: "new_name",
		Password: "Secret#123",
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (s *Suite) TestUpdateUserName_Taken() {
	s.signup("holder", "holder@example.com", "Secret#123")
	authResp := s.signup("claimer", "claimer@example.com", "Secret#123")

	resp := s.doJSON(http.MethodPatch, "/v1/user/username", authResp.Tokens.AccessToken, dto.UpdateUserNameRequest{
		UserName: "holder",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal("Username is taken", s.errorMessage(resp))
}
