package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classense/attention-core/internal/auth"
	"github.com/classense/attention-core/internal/catalog"
	"github.com/classense/attention-core/internal/store"
)

// tagListDefaults applies when the query string omits limit or sort.
var tagListDefaults = store.Defaults{
	Limit: 10,
	Sort:  []store.SortField{{Field: "timestamp", Desc: true}},
}

// handleListTags returns a paginated tag listing.
func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	q, err := store.ParseListQuery(r.URL.Query(), tagListDefaults)
	if err != nil {
		manage(w, ErrGenericRequest, err)
		return
	}

	page, err := s.tags.List(r.Context(), q)
	if err != nil {
		if errors.Is(err, store.ErrInvalidQuery) {
			manage(w, ErrGenericRequest, err)
			return
		}
		s.logger.Error("tag listing failed", "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// handleGetTag returns a single tag by ID.
func (s *Server) handleGetTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tag, err := s.tags.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrTagNotFound, id)
			return
		}
		s.logger.Error("tag lookup failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, tag)
}

// handleCreateTags creates one tag, or a batch when the body is a JSON array.
//
// Batch creation is best effort: valid elements are saved, invalid ones are
// reported in the errors list. A partial result responds 202 instead of 200.
func (s *Server) handleCreateTags(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		manage(w, ErrGenericRequest, "invalid JSON body")
		return
	}

	if !isJSONArray(raw) {
		var tag catalog.Tag
		if err := json.Unmarshal(raw, &tag); err != nil {
			manage(w, ErrTagPost, err)
			return
		}
		if err := s.createTag(r, claims, &tag); err != nil {
			s.tagCreateError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tag)
		return
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		manage(w, ErrGenericRequest, "invalid JSON body")
		return
	}

	saved := make([]*catalog.Tag, 0, len(elements))
	errs := make([]string, 0)
	for _, element := range elements {
		var tag catalog.Tag
		if err := json.Unmarshal(element, &tag); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if err := s.createTag(r, claims, &tag); err != nil {
			errs = append(errs, createErrorMessage(err))
			continue
		}
		saved = append(saved, &tag)
	}

	status := http.StatusOK
	if len(errs) > 0 {
		status = http.StatusAccepted
	}
	writeJSON(w, status, map[string]any{
		"tags":   saved,
		"errors": errs,
	})
}

// createTag stamps ownership from the authenticated user and persists.
func (s *Server) createTag(r *http.Request, claims *auth.CustomClaims, tag *catalog.Tag) error {
	tag.Owner = claims.Subject
	return s.tags.Create(r.Context(), tag)
}

// tagCreateError maps a single-create failure onto the error catalogue.
func (s *Server) tagCreateError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		manage(w, ErrTagPost, verr.Message)
		return
	}
	s.logger.Error("tag create failed", "error", err)
	manage(w, ErrInternalServer, nil)
}

// handleDeleteTag deletes a tag owned by the caller, unless another tag
// still references it.
func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims := claimsFromContext(r.Context())

	tag, err := s.tags.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrTagNotFound, id)
			return
		}
		s.logger.Error("tag lookup failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	if !auth.IsOwner(claims, tag.Owner) {
		manage(w, ErrTagNotOwner, id)
		return
	}

	used, err := s.tags.Referenced(r.Context(), id)
	if err != nil {
		s.logger.Error("tag reference check failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}
	if used {
		manage(w, ErrTagUsedByTag, id)
		return
	}

	if err := s.tags.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrTagNotFound, id)
			return
		}
		s.logger.Error("tag delete failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, tag)
}
