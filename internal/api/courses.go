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

var courseListDefaults = store.Defaults{
	Limit: 10,
	Sort:  []store.SortField{{Field: "timestamp", Desc: true}},
}

// handleListCourses returns a paginated course listing.
func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	q, err := store.ParseListQuery(r.URL.Query(), courseListDefaults)
	if err != nil {
		manage(w, ErrGenericRequest, err)
		return
	}

	page, err := s.courses.List(r.Context(), q)
	if err != nil {
		if errors.Is(err, store.ErrInvalidQuery) {
			manage(w, ErrGenericRequest, err)
			return
		}
		s.logger.Error("course listing failed", "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// handleGetCourse returns a single course by its course code.
func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	course, err := s.courses.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrCourseNotFound, id)
			return
		}
		s.logger.Error("course lookup failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, course)
}

// handleCreateCourses creates one course, or a batch when the body is a
// JSON array. Batch creation is best effort; a partial result responds 202.
func (s *Server) handleCreateCourses(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		manage(w, ErrGenericRequest, "invalid JSON body")
		return
	}

	if !isJSONArray(raw) {
		var course catalog.Course
		if err := json.Unmarshal(raw, &course); err != nil {
			manage(w, ErrCoursePost, err)
			return
		}
		course.Owner = claims.Subject
		if err := s.courses.Create(r.Context(), &course); err != nil {
			var verr *store.ValidationError
			if errors.As(err, &verr) {
				manage(w, ErrCoursePost, verr.Message)
				return
			}
			s.logger.Error("course create failed", "error", err)
			manage(w, ErrInternalServer, nil)
			return
		}
		writeJSON(w, http.StatusOK, course)
		return
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		manage(w, ErrGenericRequest, "invalid JSON body")
		return
	}

	saved := make([]*catalog.Course, 0, len(elements))
	errs := make([]string, 0)
	for _, element := range elements {
		var course catalog.Course
		if err := json.Unmarshal(element, &course); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		course.Owner = claims.Subject
		if err := s.courses.Create(r.Context(), &course); err != nil {
			errs = append(errs, createErrorMessage(err))
			continue
		}
		saved = append(saved, &course)
	}

	status := http.StatusOK
	if len(errs) > 0 {
		status = http.StatusAccepted
	}
	writeJSON(w, status, map[string]any{
		"courses": saved,
		"errors":  errs,
	})
}

// handleDeleteCourse deletes a course owned by the caller, unless a teacher
// or a reading still references it.
func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims := claimsFromContext(r.Context())

	course, err := s.courses.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrCourseNotFound, id)
			return
		}
		s.logger.Error("course lookup failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	if !auth.IsOwner(claims, course.Owner) {
		manage(w, ErrCourseNotOwner, id)
		return
	}

	used, err := s.courses.Referenced(r.Context(), id)
	if err != nil {
		s.logger.Error("course reference check failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}
	if used {
		manage(w, ErrCourseUsed, id)
		return
	}

	if err := s.courses.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrCourseNotFound, id)
			return
		}
		s.logger.Error("course delete failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, course)
}
