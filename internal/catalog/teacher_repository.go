package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/classense/attention-core/internal/store"
)

// TeacherRepository defines the interface for teacher persistence.
type TeacherRepository interface {
	List(ctx context.Context, q *store.ListQuery) (*store.Page[Teacher], error)
	Get(ctx context.Context, id string) (*Teacher, error)
	Create(ctx context.Context, teacher *Teacher) error
	Delete(ctx context.Context, id string) error
	Referenced(ctx context.Context, id string) (bool, error)
}

var teacherFields = map[string]string{
	"id":          "record::id(id) AS id",
	"owner":       "owner",
	"name":        "name",
	"description": "description",
	"courses":     "courses",
	"timestamp":   "timestamp",
}

const teacherProjection = "record::id(id) AS id, owner, name, description, courses"

// SurrealTeacherRepository implements TeacherRepository on the document store.
type SurrealTeacherRepository struct {
	store *store.Store
}

// NewTeacherRepository creates a store-backed teacher repository.
func NewTeacherRepository(s *store.Store) *SurrealTeacherRepository {
	return &SurrealTeacherRepository{store: s}
}

// List returns a page of teachers.
func (r *SurrealTeacherRepository) List(ctx context.Context, q *store.ListQuery) (*store.Page[Teacher], error) {
	return store.List[Teacher](ctx, r.store, "teacher", q, teacherFields, teacherProjection)
}

// Get retrieves a teacher by ID.
func (r *SurrealTeacherRepository) Get(ctx context.Context, id string) (*Teacher, error) {
	return store.QueryOne[Teacher](ctx, r.store,
		"SELECT "+teacherProjection+" FROM type::thing($tb, $id)",
		map[string]any{"tb": "teacher", "id": id},
	)
}

// Create validates the teacher's references and inserts it.
func (r *SurrealTeacherRepository) Create(ctx context.Context, teacher *Teacher) error {
	if teacher.ID == "" {
		return store.Validationf("Please, supply an _id")
	}
	if ok, err := store.ExistsByID(ctx, r.store, "user", teacher.Owner); err != nil {
		return err
	} else if !ok {
		return store.Validationf("User not existent")
	}
	for _, course := range teacher.Courses {
		if ok, err := store.ExistsByID(ctx, r.store, "course", course); err != nil {
			return err
		} else if !ok {
			return store.Validationf("Course not existent")
		}
	}

	if teacher.Timestamp == "" {
		teacher.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	content := map[string]any{
		"owner":     teacher.Owner,
		"timestamp": teacher.Timestamp,
	}
	if teacher.Name != "" {
		content["name"] = teacher.Name
	}
	if teacher.Description != "" {
		content["description"] = teacher.Description
	}
	if len(teacher.Courses) > 0 {
		content["courses"] = teacher.Courses
	}
	err := store.Create(ctx, r.store, "teacher", teacher.ID, content)
	if errors.Is(err, store.ErrDuplicate) {
		return store.Validationf("Teacher validation failed: the _id is already used (%s)", teacher.ID)
	}
	return err
}

// Delete removes a teacher by ID.
func (r *SurrealTeacherRepository) Delete(ctx context.Context, id string) error {
	return store.DeleteByID(ctx, r.store, "teacher", id)
}

// Referenced reports whether any reading still points at the teacher,
// which blocks deletion.
func (r *SurrealTeacherRepository) Referenced(ctx context.Context, id string) (bool, error) {
	return store.ReferencedBy(ctx, r.store, "reading", "teacher", id)
}
