package store

import (
	"errors"
	"net/url"
	"reflect"
	"testing"
)

var testDefaults = Defaults{
	Limit: 10,
	Sort:  []SortField{{Field: "timestamp", Desc: true}},
}

func TestParseListQueryDefaults(t *testing.T) {
	q, err := ParseListQuery(url.Values{}, testDefaults)
	if err != nil {
		t.Fatalf("ParseListQuery() failed: %v", err)
	}

	if q.Page != 1 {
		t.Errorf("Page = %d, want 1", q.Page)
	}
	if q.Limit != 10 {
		t.Errorf("Limit = %d, want 10", q.Limit)
	}
	if len(q.Filter) != 0 {
		t.Errorf("Filter = %v, want empty", q.Filter)
	}
	if !reflect.DeepEqual(q.Sort, testDefaults.Sort) {
		t.Errorf("Sort = %v, want defaults", q.Sort)
	}
}

func TestParseListQueryPaging(t *testing.T) {
	values := url.Values{"page": {"3"}, "limit": {"25"}}
	q, err := ParseListQuery(values, testDefaults)
	if err != nil {
		t.Fatalf("ParseListQuery() failed: %v", err)
	}

	if q.Page != 3 || q.Limit != 25 {
		t.Errorf("got page %d limit %d, want 3/25", q.Page, q.Limit)
	}
	if q.Start() != 50 {
		t.Errorf("Start() = %d, want 50", q.Start())
	}
}

func TestParseListQueryRejectsBadPaging(t *testing.T) {
	cases := []url.Values{
		{"page": {"0"}},
		{"page": {"-1"}},
		{"page": {"abc"}},
		{"limit": {"0"}},
		{"limit": {"ten"}},
	}
	for _, values := range cases {
		if _, err := ParseListQuery(values, testDefaults); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("ParseListQuery(%v): got %v, want ErrInvalidQuery", values, err)
		}
	}
}

func TestParseListQueryFilterArrayBecomesOr(t *testing.T) {
	values := url.Values{"filter": {`[{"course":"CS101"},{"course":"CS102"}]`}}
	q, err := ParseListQuery(values, testDefaults)
	if err != nil {
		t.Fatalf("ParseListQuery() failed: %v", err)
	}

	branches, ok := q.Filter["$or"].([]any)
	if !ok || len(branches) != 2 {
		t.Fatalf("Filter = %v, want $or with 2 branches", q.Filter)
	}
}

func TestParseListQueryRejectsBadFilter(t *testing.T) {
	cases := []string{
		`not json`,
		`{"bad-field":1}`,
		`{"course":{"$regex":"x"}}`,
		`{"$or":[]}`,
		`{"$or":[1]}`,
		`{"n":{"$in":5}}`,
	}
	for _, raw := range cases {
		values := url.Values{"filter": {raw}}
		if _, err := ParseListQuery(values, testDefaults); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("filter %q: got %v, want ErrInvalidQuery", raw, err)
		}
	}
}

func TestParseListQuerySortPreservesOrder(t *testing.T) {
	values := url.Values{"sort": {`{"course":"asc","startDate":-1}`}}
	q, err := ParseListQuery(values, testDefaults)
	if err != nil {
		t.Fatalf("ParseListQuery() failed: %v", err)
	}

	want := []SortField{
		{Field: "course", Desc: false},
		{Field: "startDate", Desc: true},
	}
	if !reflect.DeepEqual(q.Sort, want) {
		t.Errorf("Sort = %v, want %v", q.Sort, want)
	}
}

func TestParseListQueryRejectsBadSort(t *testing.T) {
	cases := []string{
		`{"course":"up"}`,
		`{"course":2}`,
		`["course"]`,
		`{"bad field":1}`,
	}
	for _, raw := range cases {
		values := url.Values{"sort": {raw}}
		if _, err := ParseListQuery(values, testDefaults); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("sort %q: got %v, want ErrInvalidQuery", raw, err)
		}
	}
}

func TestParseListQuerySelect(t *testing.T) {
	values := url.Values{"select": {`{"course":1,"teacher":1,"tags":0}`}}
	q, err := ParseListQuery(values, testDefaults)
	if err != nil {
		t.Fatalf("ParseListQuery() failed: %v", err)
	}

	want := []string{"course", "teacher"}
	if !reflect.DeepEqual(q.Select, want) {
		t.Errorf("Select = %v, want %v", q.Select, want)
	}
}

func TestWhereClauseEquality(t *testing.T) {
	q := &ListQuery{Filter: map[string]any{"course": "CS101"}}

	clause, binds, err := q.WhereClause()
	if err != nil {
		t.Fatalf("WhereClause() failed: %v", err)
	}
	if clause != "course = $p0" {
		t.Errorf("clause = %q", clause)
	}
	if binds["p0"] != "CS101" {
		t.Errorf("binds = %v", binds)
	}
}

func TestWhereClauseOperators(t *testing.T) {
	q := &ListQuery{Filter: map[string]any{
		"startDate": map[string]any{"$gte": "2026-01-01T00:00:00Z", "$lt": "2026-02-01T00:00:00Z"},
	}}

	clause, binds, err := q.WhereClause()
	if err != nil {
		t.Fatalf("WhereClause() failed: %v", err)
	}
	// Operators are emitted in sorted order for deterministic statements.
	if clause != "startDate >= $p0 AND startDate < $p1" {
		t.Errorf("clause = %q", clause)
	}
	if binds["p0"] != "2026-01-01T00:00:00Z" || binds["p1"] != "2026-02-01T00:00:00Z" {
		t.Errorf("binds = %v", binds)
	}
}

func TestWhereClauseOr(t *testing.T) {
	q := &ListQuery{Filter: map[string]any{
		"$or": []any{
			map[string]any{"course": "CS101"},
			map[string]any{"course": "CS102"},
		},
	}}

	clause, _, err := q.WhereClause()
	if err != nil {
		t.Fatalf("WhereClause() failed: %v", err)
	}
	if clause != "(course = $p0 OR course = $p1)" {
		t.Errorf("clause = %q", clause)
	}
}

func TestWhereClauseIDUsesRecordID(t *testing.T) {
	q := &ListQuery{Filter: map[string]any{"id": "abc"}}

	clause, _, err := q.WhereClause()
	if err != nil {
		t.Fatalf("WhereClause() failed: %v", err)
	}
	if clause != "record::id(id) = $p0" {
		t.Errorf("clause = %q", clause)
	}
}

func TestWhereClauseEmptyFilter(t *testing.T) {
	q := &ListQuery{Filter: map[string]any{}}

	clause, binds, err := q.WhereClause()
	if err != nil {
		t.Fatalf("WhereClause() failed: %v", err)
	}
	if clause != "" {
		t.Errorf("clause = %q, want empty", clause)
	}
	if len(binds) != 0 {
		t.Errorf("binds = %v, want empty", binds)
	}
}

func TestOrderClause(t *testing.T) {
	q := &ListQuery{Sort: []SortField{
		{Field: "course", Desc: false},
		{Field: "startDate", Desc: true},
	}}

	if got := q.OrderClause(); got != "ORDER BY course ASC, startDate DESC" {
		t.Errorf("OrderClause() = %q", got)
	}

	empty := &ListQuery{}
	if got := empty.OrderClause(); got != "" {
		t.Errorf("OrderClause() on empty sort = %q, want empty", got)
	}
}

func TestProjection(t *testing.T) {
	known := map[string]string{
		"id":     "record::id(id) AS id",
		"course": "course",
		"owner":  "owner",
	}
	base := "record::id(id) AS id, owner, course"

	q := &ListQuery{Select: []string{"course", "secret"}}
	if got := q.Projection(known, base); got != "record::id(id) AS id, course" {
		t.Errorf("Projection() = %q", got)
	}

	empty := &ListQuery{}
	if got := empty.Projection(known, base); got != base {
		t.Errorf("Projection() with no select = %q, want base", got)
	}
}
