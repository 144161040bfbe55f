package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/classense/attention-core/internal/auth"
	"github.com/classense/attention-core/internal/reading"
	"github.com/classense/attention-core/internal/store"
)

var readingListDefaults = store.Defaults{
	Limit: 10,
	Sort:  []store.SortField{{Field: "timestamp", Desc: true}},
}

// handleListReadings returns a paginated reading listing. When the
// "aggregator" parameter carries a pipeline, it replaces the plain filter
// and the remaining paging parameters slice the aggregated result.
func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	q, err := store.ParseListQuery(r.URL.Query(), readingListDefaults)
	if err != nil {
		manage(w, ErrGenericRequest, err)
		return
	}

	var page *store.Page[reading.Reading]
	if raw := r.URL.Query().Get("aggregator"); raw != "" {
		agg, err := store.ParseAggregate(raw)
		if err != nil {
			manage(w, ErrGenericRequest, err)
			return
		}
		page, err = s.readings.Repo().Aggregate(r.Context(), agg, q)
		if err != nil {
			s.readingListError(w, err)
			return
		}
	} else {
		page, err = s.readings.Repo().List(r.Context(), q)
		if err != nil {
			s.readingListError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) readingListError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrInvalidQuery) {
		manage(w, ErrGenericRequest, err)
		return
	}
	s.logger.Error("reading listing failed", "error", err)
	manage(w, ErrInternalServer, nil)
}

// handleGetReading returns a single reading by ID.
func (s *Server) handleGetReading(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rd, err := s.readings.Repo().Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrReadingNotFound, id)
			return
		}
		s.logger.Error("reading lookup failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, rd)
}

// handleCreateReadings creates one reading, or a batch when the body is a
// JSON array.
//
// Batch creation is best effort. Each error message is prefixed with the
// element index so upload scripts can retry just the failed slice. The
// default response is a compact summary; ?verbose=true returns the saved
// documents in full.
func (s *Server) handleCreateReadings(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		manage(w, ErrGenericRequest, "invalid JSON body")
		return
	}

	if !isJSONArray(raw) {
		var rd reading.Reading
		if err := json.Unmarshal(raw, &rd); err != nil {
			manage(w, ErrReadingPost, err)
			return
		}
		rd.Owner = claims.Subject
		if err := s.readings.Create(r.Context(), &rd); err != nil {
			var verr *store.ValidationError
			if errors.As(err, &verr) {
				manage(w, ErrReadingPost, verr.Message)
				return
			}
			s.logger.Error("reading create failed", "error", err)
			manage(w, ErrInternalServer, nil)
			return
		}
		writeJSON(w, http.StatusOK, rd)
		return
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		manage(w, ErrGenericRequest, "invalid JSON body")
		return
	}

	saved := make([]*reading.Reading, 0, len(elements))
	errs := make([]string, 0)
	failed := make([]int, 0)
	for i, element := range elements {
		var rd reading.Reading
		if err := json.Unmarshal(element, &rd); err != nil {
			errs = append(errs, fmt.Sprintf("Index: %d (%s)", i, err.Error()))
			failed = append(failed, i)
			continue
		}
		rd.Owner = claims.Subject
		if err := s.readings.Create(r.Context(), &rd); err != nil {
			errs = append(errs, fmt.Sprintf("Index: %d (%s)", i, createErrorMessage(err)))
			failed = append(failed, i)
			continue
		}
		saved = append(saved, &rd)
	}

	status := http.StatusOK
	if len(errs) > 0 {
		status = http.StatusAccepted
	}

	if r.URL.Query().Get("verbose") == "true" {
		writeJSON(w, status, map[string]any{
			"readings": saved,
			"errors":   errs,
		})
		return
	}

	summary := map[string]any{
		"saved":  len(saved),
		"errors": len(errs),
	}
	if len(failed) > 0 {
		summary["indexes"] = failed
	}
	writeJSON(w, status, summary)
}

// handleDeleteReading deletes a single reading owned by the caller.
func (s *Server) handleDeleteReading(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims := claimsFromContext(r.Context())

	rd, err := s.readings.Repo().Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrReadingNotFound, id)
			return
		}
		s.logger.Error("reading lookup failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	if !auth.IsOwner(claims, rd.Owner) {
		manage(w, ErrReadingNotOwner, id)
		return
	}

	if err := s.readings.Repo().Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			manage(w, ErrReadingNotFound, id)
			return
		}
		s.logger.Error("reading delete failed", "id", id, "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, rd)
}

// handleDeleteReadings deletes every reading of the caller matching the
// filter parameter. The filter is mandatory so a stray unfiltered DELETE
// cannot wipe a whole dataset.
func (s *Server) handleDeleteReadings(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	raw := strings.TrimSpace(r.URL.Query().Get("filter"))
	if raw == "" {
		manage(w, ErrReadingNeedsFilter, nil)
		return
	}
	if strings.HasPrefix(raw, "[") {
		raw = `{"$or":` + raw + `}`
	}

	var filter map[string]any
	if err := json.Unmarshal([]byte(raw), &filter); err != nil {
		manage(w, ErrGenericRequest, "invalid filter")
		return
	}

	deleted, err := s.readings.Repo().DeleteWhere(r.Context(), filter, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrInvalidQuery) {
			manage(w, ErrGenericRequest, err)
			return
		}
		s.logger.Error("bulk reading delete failed", "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	if deleted == 0 {
		manage(w, ErrReadingNotFound, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("%d readings deleted!", deleted),
	})
}
