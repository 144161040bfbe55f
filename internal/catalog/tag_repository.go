package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/classense/attention-core/internal/store"
)

// TagRepository defines the interface for tag persistence.
type TagRepository interface {
	List(ctx context.Context, q *store.ListQuery) (*store.Page[Tag], error)
	Get(ctx context.Context, id string) (*Tag, error)
	Create(ctx context.Context, tag *Tag) error
	Delete(ctx context.Context, id string) error
	Referenced(ctx context.Context, id string) (bool, error)
}

var tagFields = map[string]string{
	"id":        "record::id(id) AS id",
	"owner":     "owner",
	"tags":      "tags",
	"timestamp": "timestamp",
}

// timestamp is stored for sorting but, like the original catalog documents,
// not projected by default.
const tagProjection = "record::id(id) AS id, owner, tags"

// SurrealTagRepository implements TagRepository on the document store.
type SurrealTagRepository struct {
	store *store.Store
}

// NewTagRepository creates a store-backed tag repository.
func NewTagRepository(s *store.Store) *SurrealTagRepository {
	return &SurrealTagRepository{store: s}
}

// List returns a page of tags.
func (r *SurrealTagRepository) List(ctx context.Context, q *store.ListQuery) (*store.Page[Tag], error) {
	return store.List[Tag](ctx, r.store, "tag", q, tagFields, tagProjection)
}

// Get retrieves a tag by ID.
func (r *SurrealTagRepository) Get(ctx context.Context, id string) (*Tag, error) {
	return store.QueryOne[Tag](ctx, r.store,
		"SELECT "+tagProjection+" FROM type::thing($tb, $id)",
		map[string]any{"tb": "tag", "id": id},
	)
}

// Create validates the tag's references and inserts it. Failures come back
// as store.ValidationError with client-facing messages.
func (r *SurrealTagRepository) Create(ctx context.Context, tag *Tag) error {
	if tag.ID == "" {
		return store.Validationf("Please, supply an _id")
	}
	if ok, err := store.ExistsByID(ctx, r.store, "user", tag.Owner); err != nil {
		return err
	} else if !ok {
		return store.Validationf("User not existent")
	}
	for _, ref := range tag.Tags {
		if ok, err := store.ExistsByID(ctx, r.store, "tag", ref); err != nil {
			return err
		} else if !ok {
			return store.Validationf("Tag not existent (%s)", ref)
		}
	}

	if tag.Timestamp == "" {
		tag.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	content := map[string]any{
		"owner":     tag.Owner,
		"timestamp": tag.Timestamp,
	}
	if len(tag.Tags) > 0 {
		content["tags"] = tag.Tags
	}
	err := store.Create(ctx, r.store, "tag", tag.ID, content)
	if errors.Is(err, store.ErrDuplicate) {
		return store.Validationf("Tag validation failed: the _id is already used (%s)", tag.ID)
	}
	return err
}

// Delete removes a tag by ID.
func (r *SurrealTagRepository) Delete(ctx context.Context, id string) error {
	return store.DeleteByID(ctx, r.store, "tag", id)
}

// Referenced reports whether the tag appears in another tag's tags array,
// which blocks deletion.
func (r *SurrealTagRepository) Referenced(ctx context.Context, id string) (bool, error) {
	return store.ReferencedIn(ctx, r.store, "tag", "tags", id)
}
