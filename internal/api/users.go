package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classense/attention-core/internal/auth"
	"github.com/classense/attention-core/internal/store"
)

var (
	userListDefaults = store.Defaults{
		Limit: 10,
		Sort:  []store.SortField{{Field: "username", Desc: true}},
	}
	usernameListDefaults = store.Defaults{
		Limit: 5,
		Sort:  []store.SortField{{Field: "username", Desc: true}},
	}
)

// userCreateRequest is the request body for POST /users. The plaintext
// password is hashed before anything touches the store.
type userCreateRequest struct {
	Username string    `json:"username"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
}

// handleListUsers returns a paginated account listing. Administrators only.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdministrator(claimsFromContext(r.Context())) {
		manage(w, ErrUserAccess, nil)
		return
	}

	q, err := store.ParseListQuery(r.URL.Query(), userListDefaults)
	if err != nil {
		manage(w, ErrGenericRequest, err)
		return
	}

	page, err := s.users.List(r.Context(), q)
	if err != nil {
		if errors.Is(err, store.ErrInvalidQuery) {
			manage(w, ErrGenericRequest, err)
			return
		}
		s.logger.Error("user listing failed", "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// handleGetUser returns a single account by ID. Administrators only.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdministrator(claimsFromContext(r.Context())) {
		manage(w, ErrUserAccess, nil)
		return
	}

	id := chi.URLParam(r, "id")
	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrUserNotFound, id)
			return
		}
		s.logger.Error("user lookup failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// handleCreateUsers creates one account, or a batch when the body is a JSON
// array. Administrators only. Batch creation is best effort; a partial
// result responds 202.
func (s *Server) handleCreateUsers(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdministrator(claimsFromContext(r.Context())) {
		manage(w, ErrUserAccess, nil)
		return
	}

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		manage(w, ErrGenericRequest, "invalid JSON body")
		return
	}

	if !isJSONArray(raw) {
		var req userCreateRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			manage(w, ErrUserPost, err)
			return
		}
		user, err := s.createUser(r, req)
		if err != nil {
			manage(w, ErrUserPost, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
		return
	}

	var elements []userCreateRequest
	if err := json.Unmarshal(raw, &elements); err != nil {
		manage(w, ErrGenericRequest, "invalid JSON body")
		return
	}

	saved := make([]*auth.User, 0, len(elements))
	errs := make([]string, 0)
	for _, req := range elements {
		user, err := s.createUser(r, req)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		saved = append(saved, user)
	}

	status := http.StatusOK
	if len(errs) > 0 {
		status = http.StatusAccepted
	}
	writeJSON(w, status, map[string]any{
		"users":  saved,
		"errors": errs,
	})
}

// createUser validates a create request, hashes the password and persists
// the account. Returned errors carry client-facing messages.
func (s *Server) createUser(r *http.Request, req userCreateRequest) (*auth.User, error) {
	if !auth.IsValidUsername(req.Username) {
		return nil, fmt.Errorf("invalid username %q", req.Username)
	}
	if req.Password == "" {
		return nil, fmt.Errorf("a password is required")
	}
	if !auth.IsValidRole(req.Role) {
		return nil, fmt.Errorf("invalid role %q", req.Role)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("password hashing failed", "error", err)
		return nil, fmt.Errorf("User not created")
	}

	user := &auth.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("the username is already used (%s)", req.Username)
		}
		s.logger.Error("user create failed", "username", req.Username, "error", err)
		return nil, fmt.Errorf("User not created")
	}
	return user, nil
}

// handleDeleteUser removes an account. Administrators only. An account
// still owning tags cannot be deleted.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdministrator(claimsFromContext(r.Context())) {
		manage(w, ErrUserAccess, nil)
		return
	}

	id := chi.URLParam(r, "id")
	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrUserNotFound, id)
			return
		}
		s.logger.Error("user lookup failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	owns, err := s.users.OwnsTags(r.Context(), id)
	if err != nil {
		s.logger.Error("user tag ownership check failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}
	if owns {
		manage(w, ErrUserOwnsTag, id)
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrUserNotFound, id)
			return
		}
		s.logger.Error("user delete failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// handleListUsernames returns the username directory. Any authenticated
// user may call it, so no role gate applies.
func (s *Server) handleListUsernames(w http.ResponseWriter, r *http.Request) {
	q, err := store.ParseListQuery(r.URL.Query(), usernameListDefaults)
	if err != nil {
		manage(w, ErrGenericRequest, err)
		return
	}

	page, err := s.users.Usernames(r.Context(), q)
	if err != nil {
		if errors.Is(err, store.ErrInvalidQuery) {
			manage(w, ErrGenericRequest, err)
			return
		}
		s.logger.Error("username listing failed", "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
