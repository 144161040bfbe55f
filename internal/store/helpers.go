package store

import (
	"context"
	"fmt"
	"strings"

	surrealdb "github.com/surrealdb/surrealdb.go"
)

// QuerySlice runs a statement expected to yield a list of documents.
func QuerySlice[T any](ctx context.Context, s *Store, sql string, vars map[string]any) ([]T, error) {
	results, err := surrealdb.Query[[]T](ctx, s.db, sql, vars)
	if err != nil {
		return nil, err
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

// QueryOne runs a statement expected to yield at most one document and
// returns ErrNotFound when it yields none.
func QueryOne[T any](ctx context.Context, s *Store, sql string, vars map[string]any) (*T, error) {
	docs, err := QuerySlice[T](ctx, s, sql, vars)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return &docs[0], nil
}

// Exec runs a statement for its side effects.
func Exec(ctx context.Context, s *Store, sql string, vars map[string]any) error {
	_, err := surrealdb.Query[any](ctx, s.db, sql, vars)
	return err
}

// Create inserts a document under an explicit record ID. A collision with an
// existing ID or a unique index surfaces as ErrDuplicate; the insert and the
// uniqueness check are a single atomic operation inside the database.
func Create(ctx context.Context, s *Store, table, id string, content map[string]any) error {
	err := Exec(ctx, s, `CREATE type::thing($tb, $id) CONTENT $content RETURN NONE`, map[string]any{
		"tb":      table,
		"id":      id,
		"content": content,
	})
	if err != nil {
		if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "already contains") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

type countRow struct {
	Total int `json:"total"`
}

// List runs the normalized query as a count plus a paginated select and
// wraps the result in the standard envelope. known maps API fields to
// SurrealQL expressions, base is the default projection.
func List[T any](ctx context.Context, s *Store, table string, q *ListQuery, known map[string]string, base string) (*Page[T], error) {
	where, binds, err := q.WhereClause()
	if err != nil {
		return nil, err
	}
	binds["tb"] = table

	countSQL := "SELECT count() AS total FROM type::table($tb)"
	if where != "" {
		countSQL += " WHERE " + where
	}
	countSQL += " GROUP ALL"

	total := 0
	counts, err := QuerySlice[countRow](ctx, s, countSQL, binds)
	if err != nil {
		return nil, fmt.Errorf("counting %s: %w", table, err)
	}
	if len(counts) > 0 {
		total = counts[0].Total
	}

	sql := "SELECT " + q.Projection(known, base) + " FROM type::table($tb)"
	if where != "" {
		sql += " WHERE " + where
	}
	if order := q.OrderClause(); order != "" {
		sql += " " + order
	}
	sql += " LIMIT $limit START $start"
	binds["limit"] = q.Limit
	binds["start"] = q.Start()

	docs, err := QuerySlice[T](ctx, s, sql, binds)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	return NewPage(docs, total, q.Limit, q.Page), nil
}

// AggregateList runs the pipeline in one statement and paginates the result
// set in memory with the page/limit of the surrounding query.
func AggregateList[T any](ctx context.Context, s *Store, table string, agg *Aggregate, q *ListQuery, known map[string]string, base string) (*Page[T], error) {
	sql, binds, err := agg.statement(known, base)
	if err != nil {
		return nil, err
	}
	binds["tb"] = table

	docs, err := QuerySlice[T](ctx, s, sql, binds)
	if err != nil {
		return nil, fmt.Errorf("aggregating %s: %w", table, err)
	}

	total := len(docs)
	start := q.Start()
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return NewPage(docs[start:end], total, q.Limit, q.Page), nil
}

// ExistsByID reports whether a record with the given ID exists in table.
func ExistsByID(ctx context.Context, s *Store, table, id string) (bool, error) {
	docs, err := QuerySlice[map[string]any](ctx, s, `SELECT record::id(id) AS id FROM type::thing($tb, $id)`, map[string]any{
		"tb": table,
		"id": id,
	})
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

// ReferencedBy reports whether any document in table holds id in the named
// scalar field. Used by the delete reference guards.
func ReferencedBy(ctx context.Context, s *Store, table, field, id string) (bool, error) {
	if !identPattern.MatchString(field) {
		return false, fmt.Errorf("%w: invalid field name %q", ErrInvalidQuery, field)
	}
	sql := "SELECT record::id(id) AS id FROM type::table($tb) WHERE " + field + " = $value LIMIT 1"
	docs, err := QuerySlice[map[string]any](ctx, s, sql, map[string]any{"tb": table, "value": id})
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

// ReferencedIn reports whether any document in table holds id inside the
// named array field.
func ReferencedIn(ctx context.Context, s *Store, table, field, id string) (bool, error) {
	if !identPattern.MatchString(field) {
		return false, fmt.Errorf("%w: invalid field name %q", ErrInvalidQuery, field)
	}
	sql := "SELECT record::id(id) AS id FROM type::table($tb) WHERE " + field + " CONTAINS $value LIMIT 1"
	docs, err := QuerySlice[map[string]any](ctx, s, sql, map[string]any{"tb": table, "value": id})
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

// DeleteByID removes one document, returning ErrNotFound when nothing was
// deleted.
func DeleteByID(ctx context.Context, s *Store, table, id string) error {
	docs, err := QuerySlice[map[string]any](ctx, s, `DELETE type::thing($tb, $id) RETURN BEFORE`, map[string]any{
		"tb": table,
		"id": id,
	})
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWhere removes every document matching the filter and returns how
// many were removed.
func DeleteWhere(ctx context.Context, s *Store, table string, filter map[string]any) (int, error) {
	b := newBinder()
	where, err := compileFilter(filter, b)
	if err != nil {
		return 0, err
	}
	if where == "" {
		return 0, fmt.Errorf("%w: refusing to delete without a filter", ErrInvalidQuery)
	}
	b.binds["tb"] = table
	docs, err := QuerySlice[map[string]any](ctx, s, "DELETE FROM type::table($tb) WHERE "+where+" RETURN BEFORE", b.binds)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}
