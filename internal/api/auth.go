package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/classense/attention-core/internal/auth"
	"github.com/classense/attention-core/internal/store"
)

// loginRequest is the request body for POST /login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /login.
type loginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int        `json:"expires_in"`
	User        *auth.User `json:"user"`
}

// handleLogin authenticates a user and returns a signed access token.
//
// Failed lookups and failed password checks produce the same response so
// the endpoint does not leak which usernames exist.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		manage(w, ErrGenericRequest, "invalid JSON body")
		return
	}

	user, err := s.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrAuthenticationFail, nil)
			return
		}
		s.logger.Error("login lookup failed", "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		manage(w, ErrAuthenticationFail, nil)
		return
	}

	ttl := s.secCfg.JWT.AccessTokenTTL
	if ttl == 0 {
		ttl = 60
	}

	signed, err := auth.GenerateAccessToken(user, s.secCfg.JWT.Secret, ttl)
	if err != nil {
		s.logger.Error("token generation failed", "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: signed,
		TokenType:   "JWT",
		ExpiresIn:   ttl * 60, // seconds
		User:        user,
	})
}
