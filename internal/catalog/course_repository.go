package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/classense/attention-core/internal/store"
)

// CourseRepository defines the interface for course persistence.
type CourseRepository interface {
	List(ctx context.Context, q *store.ListQuery) (*store.Page[Course], error)
	Get(ctx context.Context, id string) (*Course, error)
	Create(ctx context.Context, course *Course) error
	Delete(ctx context.Context, id string) error
	Referenced(ctx context.Context, id string) (bool, error)
}

var courseFields = map[string]string{
	"id":               "record::id(id) AS id",
	"owner":            "owner",
	"name":             "name",
	"description":      "description",
	"numberOfSessions": "numberOfSessions",
	"hoursPerSession":  "hoursPerSession",
	"timestamp":        "timestamp",
}

const courseProjection = "record::id(id) AS id, owner, name, description, numberOfSessions, hoursPerSession"

// SurrealCourseRepository implements CourseRepository on the document store.
type SurrealCourseRepository struct {
	store *store.Store
}

// NewCourseRepository creates a store-backed course repository.
func NewCourseRepository(s *store.Store) *SurrealCourseRepository {
	return &SurrealCourseRepository{store: s}
}

// List returns a page of courses.
func (r *SurrealCourseRepository) List(ctx context.Context, q *store.ListQuery) (*store.Page[Course], error) {
	return store.List[Course](ctx, r.store, "course", q, courseFields, courseProjection)
}

// Get retrieves a course by its code.
func (r *SurrealCourseRepository) Get(ctx context.Context, id string) (*Course, error) {
	return store.QueryOne[Course](ctx, r.store,
		"SELECT "+courseProjection+" FROM type::thing($tb, $id)",
		map[string]any{"tb": "course", "id": id},
	)
}

// Create validates the course's owner and inserts it.
func (r *SurrealCourseRepository) Create(ctx context.Context, course *Course) error {
	if course.ID == "" {
		return store.Validationf("Please, supply an _id (course code)")
	}
	if ok, err := store.ExistsByID(ctx, r.store, "user", course.Owner); err != nil {
		return err
	} else if !ok {
		return store.Validationf("User not existent")
	}

	if course.Timestamp == "" {
		course.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	content := map[string]any{
		"owner":     course.Owner,
		"timestamp": course.Timestamp,
	}
	if course.Name != "" {
		content["name"] = course.Name
	}
	if course.Description != "" {
		content["description"] = course.Description
	}
	if course.NumberOfSessions != 0 {
		content["numberOfSessions"] = course.NumberOfSessions
	}
	if course.HoursPerSession != 0 {
		content["hoursPerSession"] = course.HoursPerSession
	}
	err := store.Create(ctx, r.store, "course", course.ID, content)
	if errors.Is(err, store.ErrDuplicate) {
		return store.Validationf("Course validation failed: the _id is already used (%s)", course.ID)
	}
	return err
}

// Delete removes a course by its code.
func (r *SurrealCourseRepository) Delete(ctx context.Context, id string) error {
	return store.DeleteByID(ctx, r.store, "course", id)
}

// Referenced reports whether the course is still listed by a teacher or
// pointed at by a reading, which blocks deletion.
func (r *SurrealCourseRepository) Referenced(ctx context.Context, id string) (bool, error) {
	if used, err := store.ReferencedIn(ctx, r.store, "teacher", "courses", id); err != nil || used {
		return used, err
	}
	return store.ReferencedBy(ctx, r.store, "reading", "course", id)
}
