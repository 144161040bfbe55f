// Package reqlog persists the request log administrators can page through,
// one entry per handled API request.
package reqlog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/classense/attention-core/internal/store"
)

// Entry is one logged request.
type Entry struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Detail string `json:"detail"`
}

// Repository defines the interface for request log persistence.
type Repository interface {
	List(ctx context.Context, q *store.ListQuery) (*store.Page[Entry], error)
	Create(ctx context.Context, entry *Entry) error
}

var logFields = map[string]string{
	"id":     "record::id(id) AS id",
	"date":   "date",
	"detail": "detail",
}

const logProjection = "record::id(id) AS id, date, detail"

// SurrealRepository implements Repository on the document store.
type SurrealRepository struct {
	store *store.Store
}

// NewRepository creates a store-backed request log repository.
func NewRepository(s *store.Store) *SurrealRepository {
	return &SurrealRepository{store: s}
}

// List returns a page of entries.
func (r *SurrealRepository) List(ctx context.Context, q *store.ListQuery) (*store.Page[Entry], error) {
	return store.List[Entry](ctx, r.store, "log", q, logFields, logProjection)
}

// Create appends an entry. The ID and date are generated if empty.
func (r *SurrealRepository) Create(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Date == "" {
		entry.Date = time.Now().UTC().Format(time.RFC3339)
	}
	return store.Create(ctx, r.store, "log", entry.ID, map[string]any{
		"date":   entry.Date,
		"detail": entry.Detail,
	})
}
