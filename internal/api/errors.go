package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorDescriptor is a catalogued API error: an HTTP status, a stable
// numeric value clients switch on, and a human message.
type ErrorDescriptor struct {
	Status  int    `json:"status"`
	Value   int    `json:"value"`
	Message string `json:"message"`
}

// The error catalogue. Values are part of the public contract and never
// reused or renumbered.
var (
	ErrInternalServer     = ErrorDescriptor{Status: http.StatusInternalServerError, Value: 0, Message: "Internal server error"}
	ErrAuthenticationFail = ErrorDescriptor{Status: http.StatusUnauthorized, Value: 4, Message: "Incorrect username or password"}
	ErrAuthentication     = ErrorDescriptor{Status: http.StatusUnauthorized, Value: 5, Message: "Authentication error"}
	ErrNotFound           = ErrorDescriptor{Status: http.StatusNotFound, Value: 6, Message: "Not found"}
	ErrAdminRestricted    = ErrorDescriptor{Status: http.StatusForbidden, Value: 7, Message: "Only administrators can make this request"}
	ErrGenericRequest     = ErrorDescriptor{Status: http.StatusBadRequest, Value: 9, Message: "Bad request"}

	ErrTagNotFound  = ErrorDescriptor{Status: http.StatusNotFound, Value: 23, Message: "Tag not found"}
	ErrTagPost      = ErrorDescriptor{Status: http.StatusBadRequest, Value: 24, Message: "Tag not created"}
	ErrTagNotOwner  = ErrorDescriptor{Status: http.StatusForbidden, Value: 25, Message: "Only the owner can delete a tag"}
	ErrTagUsedByTag = ErrorDescriptor{Status: http.StatusConflict, Value: 30, Message: "The tag is already used in a tag"}

	ErrTeacherNotFound = ErrorDescriptor{Status: http.StatusNotFound, Value: 26, Message: "Teacher not found"}
	ErrTeacherPost     = ErrorDescriptor{Status: http.StatusBadRequest, Value: 27, Message: "Teacher not created"}
	ErrTeacherNotOwner = ErrorDescriptor{Status: http.StatusForbidden, Value: 28, Message: "Only the owner can delete a teacher"}
	ErrTeacherUsed     = ErrorDescriptor{Status: http.StatusConflict, Value: 29, Message: "The teacher is already used in a reading"}

	ErrCourseNotFound = ErrorDescriptor{Status: http.StatusNotFound, Value: 31, Message: "Course not found"}
	ErrCoursePost     = ErrorDescriptor{Status: http.StatusBadRequest, Value: 32, Message: "Course not created"}
	ErrCourseNotOwner = ErrorDescriptor{Status: http.StatusForbidden, Value: 33, Message: "Only the owner can delete a course"}
	ErrCourseUsed     = ErrorDescriptor{Status: http.StatusConflict, Value: 34, Message: "The course is already used in a teacher or a reading"}

	ErrReadingNotFound     = ErrorDescriptor{Status: http.StatusNotFound, Value: 35, Message: "Reading not found"}
	ErrReadingAccess       = ErrorDescriptor{Status: http.StatusUnauthorized, Value: 36, Message: "Only the owner can access a reading"}
	ErrReadingPost         = ErrorDescriptor{Status: http.StatusBadRequest, Value: 37, Message: "Reading not created"}
	ErrReadingNotOwner     = ErrorDescriptor{Status: http.StatusForbidden, Value: 38, Message: "Only the owner can delete a reading"}
	ErrReadingNeedsFilter  = ErrorDescriptor{Status: http.StatusForbidden, Value: 39, Message: "To delete multiple reading you have to provide a filter"}

	ErrUserNotFound = ErrorDescriptor{Status: http.StatusNotFound, Value: 40, Message: "User not found"}
	ErrUserAccess   = ErrorDescriptor{Status: http.StatusUnauthorized, Value: 41, Message: "Only the administrator can manage users"}
	ErrUserPost     = ErrorDescriptor{Status: http.StatusBadRequest, Value: 42, Message: "User not created"}
	ErrUserOwnsTag  = ErrorDescriptor{Status: http.StatusConflict, Value: 47, Message: "The user is already owner of a tag"}
)

// errorResponse is the rendered error body.
type errorResponse struct {
	ErrorDescriptor
	Details string `json:"details,omitempty"`
}

// manage renders a catalogued error. details may be any value; non-strings
// are stringified. A zero descriptor falls back to internal_server_error so
// a miswired call can never produce an empty 200.
func manage(w http.ResponseWriter, desc ErrorDescriptor, details any) {
	if desc.Status == 0 {
		desc = ErrInternalServer
	}
	var detailText string
	switch d := details.(type) {
	case nil:
	case string:
		detailText = d
	case error:
		detailText = d.Error()
	default:
		detailText = fmt.Sprintf("%v", d)
	}
	writeJSON(w, desc.Status, errorResponse{ErrorDescriptor: desc, Details: detailText})
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}
