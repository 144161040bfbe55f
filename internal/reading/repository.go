package reading

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/classense/attention-core/internal/store"
)

// Repository defines the interface for reading persistence.
type Repository interface {
	List(ctx context.Context, q *store.ListQuery) (*store.Page[Reading], error)
	Aggregate(ctx context.Context, agg *store.Aggregate, q *store.ListQuery) (*store.Page[Reading], error)
	Get(ctx context.Context, id string) (*Reading, error)
	Create(ctx context.Context, r *Reading) error
	Delete(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, filter map[string]any, owner string) (int, error)
}

var readingFields = map[string]string{
	"id":              "record::id(id) AS id",
	"owner":           "owner",
	"location":        "location",
	"startDate":       "startDate",
	"endDate":         "endDate",
	"course":          "course",
	"teacher":         "teacher",
	"tags":            "tags",
	"attentionLevels": "attentionLevels",
	"timestamp":       "timestamp",
}

const readingProjection = "record::id(id) AS id, owner, location, startDate, endDate, course, teacher, tags, attentionLevels, timestamp"

// SurrealRepository implements Repository on the document store.
type SurrealRepository struct {
	store *store.Store
}

// NewRepository creates a store-backed reading repository.
func NewRepository(s *store.Store) *SurrealRepository {
	return &SurrealRepository{store: s}
}

// List returns a page of readings.
func (r *SurrealRepository) List(ctx context.Context, q *store.ListQuery) (*store.Page[Reading], error) {
	return store.List[Reading](ctx, r.store, "reading", q, readingFields, readingProjection)
}

// Aggregate runs a pipeline and paginates its result set in memory.
func (r *SurrealRepository) Aggregate(ctx context.Context, agg *store.Aggregate, q *store.ListQuery) (*store.Page[Reading], error) {
	return store.AggregateList[Reading](ctx, r.store, "reading", agg, q, readingFields, readingProjection)
}

// Get retrieves a reading by its UUID. A malformed UUID is answered as
// not-found without touching the store.
func (r *SurrealRepository) Get(ctx context.Context, id string) (*Reading, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, store.ErrNotFound
	}
	return store.QueryOne[Reading](ctx, r.store,
		"SELECT "+readingProjection+" FROM type::thing($tb, $id)",
		map[string]any{"tb": "reading", "id": id},
	)
}

// Create validates every reference the reading carries and inserts it.
// The (teacher, startDate, endDate, course) unique index makes a repeated
// upload fail atomically, keeping uploads idempotent.
func (r *SurrealRepository) Create(ctx context.Context, rd *Reading) error {
	if rd.Course == "" {
		return store.Validationf("Please, supply a course")
	}
	if rd.Teacher == "" {
		return store.Validationf("Please, supply a teacher")
	}
	if ok, err := store.ExistsByID(ctx, r.store, "teacher", rd.Teacher); err != nil {
		return err
	} else if !ok {
		return store.Validationf("Teacher not existent (%s)", rd.Teacher)
	}
	if ok, err := store.ExistsByID(ctx, r.store, "course", rd.Course); err != nil {
		return err
	} else if !ok {
		return store.Validationf("Course not existent (%s)", rd.Course)
	}
	for _, tag := range rd.Tags {
		if ok, err := store.ExistsByID(ctx, r.store, "tag", tag); err != nil {
			return err
		} else if !ok {
			return store.Validationf("Tag not existent (%s)", tag)
		}
	}
	if ok, err := store.ExistsByID(ctx, r.store, "user", rd.Owner); err != nil {
		return err
	} else if !ok {
		return store.Validationf("User not existent (%s)", rd.Owner)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if rd.ID == "" {
		rd.ID = uuid.NewString()
	}
	if rd.StartDate == "" {
		rd.StartDate = now
	}
	if rd.EndDate == "" {
		rd.EndDate = now
	}
	if rd.Timestamp == "" {
		rd.Timestamp = now
	}

	content := map[string]any{
		"owner":     rd.Owner,
		"startDate": rd.StartDate,
		"endDate":   rd.EndDate,
		"course":    rd.Course,
		"teacher":   rd.Teacher,
		"timestamp": rd.Timestamp,
	}
	if rd.Location != nil {
		content["location"] = rd.Location
	}
	if len(rd.Tags) > 0 {
		content["tags"] = rd.Tags
	}
	if len(rd.AttentionLevels) > 0 {
		levels := make([]map[string]any, 0, len(rd.AttentionLevels))
		for _, lvl := range rd.AttentionLevels {
			levels = append(levels, map[string]any{
				"levels": lvl.Levels,
				"delta":  lvl.Delta,
			})
		}
		content["attentionLevels"] = levels
	}

	err := store.Create(ctx, r.store, "reading", rd.ID, content)
	if errors.Is(err, store.ErrDuplicate) {
		return store.Validationf("The reading already exists")
	}
	return err
}

// Delete removes one reading by UUID.
func (r *SurrealRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return store.ErrNotFound
	}
	return store.DeleteByID(ctx, r.store, "reading", id)
}

// DeleteWhere removes every reading matching the filter, always conjoined
// with the caller's ownership so nobody can bulk-delete someone else's data.
func (r *SurrealRepository) DeleteWhere(ctx context.Context, filter map[string]any, owner string) (int, error) {
	scoped := map[string]any{
		"$and": []any{filter, map[string]any{"owner": owner}},
	}
	return store.DeleteWhere(ctx, r.store, "reading", scoped)
}
