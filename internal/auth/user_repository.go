package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/classense/attention-core/internal/store"
)

// UserRepository defines the interface for account persistence.
type UserRepository interface {
	List(ctx context.Context, q *store.ListQuery) (*store.Page[User], error)
	Usernames(ctx context.Context, q *store.ListQuery) (*store.Page[Username], error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	OwnsTags(ctx context.Context, id string) (bool, error)
}

// userFields maps the API field names to their SurrealQL expressions. The
// password hash is deliberately absent so no projection can expose it.
var userFields = map[string]string{
	"id":        "record::id(id) AS id",
	"username":  "username",
	"role":      "role",
	"timestamp": "timestamp",
}

const userProjection = "record::id(id) AS id, username, role, timestamp"

// userRecord is the stored shape including the password hash, used only by
// the credential lookup.
type userRecord struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
	Timestamp string `json:"timestamp"`
}

// SurrealUserRepository implements UserRepository on the document store.
type SurrealUserRepository struct {
	store *store.Store
}

// NewUserRepository creates a store-backed user repository.
func NewUserRepository(s *store.Store) *SurrealUserRepository {
	return &SurrealUserRepository{store: s}
}

// List returns a page of accounts, never including password hashes.
func (r *SurrealUserRepository) List(ctx context.Context, q *store.ListQuery) (*store.Page[User], error) {
	return store.List[User](ctx, r.store, "user", q, userFields, userProjection)
}

// Usernames returns a page restricted to the username projection.
func (r *SurrealUserRepository) Usernames(ctx context.Context, q *store.ListQuery) (*store.Page[Username], error) {
	return store.List[Username](ctx, r.store, "user", q, userFields, "record::id(id) AS id, username")
}

// GetByID retrieves an account by its UUID. A malformed UUID is answered as
// not-found without touching the store.
func (r *SurrealUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, store.ErrNotFound
	}
	return store.QueryOne[User](ctx, r.store,
		"SELECT "+userProjection+" FROM type::thing($tb, $id)",
		map[string]any{"tb": "user", "id": id},
	)
}

// GetByUsername retrieves an account including its password hash for
// credential verification.
func (r *SurrealUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	rec, err := store.QueryOne[userRecord](ctx, r.store,
		"SELECT record::id(id) AS id, username, password, role, timestamp FROM type::table($tb) WHERE username = $username LIMIT 1",
		map[string]any{"tb": "user", "username": username},
	)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:           rec.ID,
		Username:     rec.Username,
		PasswordHash: rec.Password,
		Role:         rec.Role,
		Timestamp:    rec.Timestamp,
	}, nil
}

// Create inserts a new account. The ID is generated if empty; the username
// unique index makes a duplicate surface as store.ErrDuplicate.
func (r *SurrealUserRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Timestamp == "" {
		user.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if !IsValidRole(user.Role) {
		return fmt.Errorf("invalid role %q", user.Role)
	}
	return store.Create(ctx, r.store, "user", user.ID, map[string]any{
		"username":  user.Username,
		"password":  user.PasswordHash,
		"role":      string(user.Role),
		"timestamp": user.Timestamp,
	})
}

// Delete removes an account by UUID.
func (r *SurrealUserRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return store.ErrNotFound
	}
	return store.DeleteByID(ctx, r.store, "user", id)
}

// OwnsTags reports whether the account still owns any tag. Deleting such an
// account is blocked until its tags are gone.
func (r *SurrealUserRepository) OwnsTags(ctx context.Context, id string) (bool, error) {
	return store.ReferencedBy(ctx, r.store, "tag", "owner", id)
}
