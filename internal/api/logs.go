package api

import (
	"errors"
	"net/http"

	"github.com/classense/attention-core/internal/auth"
	"github.com/classense/attention-core/internal/store"
)

var logListDefaults = store.Defaults{
	Limit: 5,
	Sort:  []store.SortField{{Field: "date", Desc: true}},
}

// handleListLog returns a page of the persistent request log.
// Administrators only.
func (s *Server) handleListLog(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdministrator(claimsFromContext(r.Context())) {
		manage(w, ErrAdminRestricted, nil)
		return
	}

	q, err := store.ParseListQuery(r.URL.Query(), logListDefaults)
	if err != nil {
		manage(w, ErrGenericRequest, err)
		return
	}

	page, err := s.log.List(r.Context(), q)
	if err != nil {
		if errors.Is(err, store.ErrInvalidQuery) {
			manage(w, ErrGenericRequest, err)
			return
		}
		s.logger.Error("request log listing failed", "error", err)
		manage(w, ErrInternalServer, nil)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
