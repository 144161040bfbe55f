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

var teacherListDefaults = store.Defaults{
	Limit: 10,
	Sort:  []store.SortField{{Field: "timestamp", Desc: true}},
}

// handleListTeachers returns a paginated teacher listing.
func (s *Server) handleListTeachers(w http.ResponseWriter, r *http.Request) {
	q, err := store.ParseListQuery(r.URL.Query(), teacherListDefaults)
	if err != nil {
		manage(w, ErrGenericRequest, err)
		return
	}

	page, err := s.teachers.List(r.Context(), q)
	if err != nil {
		if errors.Is(err, store.ErrInvalidQuery) {
			manage(w, ErrGenericRequest, err)
			return
		}
		s.logger.Error("teacher listing failed", "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// handleGetTeacher returns a single teacher by ID.
func (s *Server) handleGetTeacher(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	teacher, err := s.teachers.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrTeacherNotFound, id)
			return
		}
		s.logger.Error("teacher lookup failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, teacher)
}

// handleCreateTeachers creates one teacher, or a batch when the body is a
// JSON array. Batch creation is best effort; a partial result responds 202.
func (s *Server) handleCreateTeachers(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		manage(w, ErrGenericRequest, "invalid JSON body")
		return
	}

	if !isJSONArray(raw) {
		var teacher catalog.Teacher
		if err := json.Unmarshal(raw, &teacher); err != nil {
			manage(w, ErrTeacherPost, err)
			return
		}
		teacher.Owner = claims.Subject
		if err := s.teachers.Create(r.Context(), &teacher); err != nil {
			var verr *store.ValidationError
			if errors.As(err, &verr) {
				manage(w, ErrTeacherPost, verr.Message)
				return
			}
			s.logger.Error("teacher create failed", "error", err)
			manage(w, ErrInternalServer, nil)
			return
		}
		writeJSON(w, http.StatusOK, teacher)
		return
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		manage(w, ErrGenericRequest, "invalid JSON body")
		return
	}

	saved := make([]*catalog.Teacher, 0, len(elements))
	errs := make([]string, 0)
	for _, element := range elements {
		var teacher catalog.Teacher
		if err := json.Unmarshal(element, &teacher); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		teacher.Owner = claims.Subject
		if err := s.teachers.Create(r.Context(), &teacher); err != nil {
			errs = append(errs, createErrorMessage(err))
			continue
		}
		saved = append(saved, &teacher)
	}

	status := http.StatusOK
	if len(errs) > 0 {
		status = http.StatusAccepted
	}
	writeJSON(w, status, map[string]any{
		"teachers": saved,
		"errors":   errs,
	})
}

// handleDeleteTeacher deletes a teacher owned by the caller, unless a
// reading still references it.
func (s *Server) handleDeleteTeacher(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims := claimsFromContext(r.Context())

	teacher, err := s.teachers.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrTeacherNotFound, id)
			return
		}
		s.logger.Error("teacher lookup failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	if !auth.IsOwner(claims, teacher.Owner) {
		manage(w, ErrTeacherNotOwner, id)
		return
	}

	used, err := s.teachers.Referenced(r.Context(), id)
	if err != nil {
		s.logger.Error("teacher reference check failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}
	if used {
		manage(w, ErrTeacherUsed, id)
		return
	}

	if err := s.teachers.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrTeacherNotFound, id)
			return
		}
		s.logger.Error("teacher delete failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, teacher)
}
