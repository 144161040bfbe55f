package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// identPattern restricts every field name that reaches a SurrealQL statement.
// User-supplied values travel as bind variables; field names are interpolated
// and therefore must be plain identifiers.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// comparison operators accepted inside a filter operator object.
var filterOperators = map[string]string{
	"$gt":  ">",
	"$gte": ">=",
	"$lt":  "<",
	"$lte": "<=",
	"$ne":  "!=",
	"$in":  "IN",
}

// SortField is one ORDER BY term.
type SortField struct {
	Field string
	Desc  bool
}

// ListQuery is the normalized form of the list query-string parameters.
type ListQuery struct {
	Page   int
	Limit  int
	Filter map[string]any
	Sort   []SortField
	Select []string
}

// Defaults carry per-resource normalization defaults.
type Defaults struct {
	Limit int
	Sort  []SortField
}

// ParseListQuery normalizes the raw query string into a ListQuery.
//
// Defaults: page 1, limit from def (10 when unset), empty filter and select,
// sort from def. A filter beginning with '[' is treated as a disjunction and
// rewritten to {"$or": [...]} before parsing. Every malformed input returns
// ErrInvalidQuery with a descriptive message rather than leaking through to
// the database.
func ParseListQuery(values url.Values, def Defaults) (*ListQuery, error) {
	q := &ListQuery{
		Page:   1,
		Limit:  def.Limit,
		Filter: map[string]any{},
		Sort:   def.Sort,
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}

	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: page must be a positive integer, got %q", ErrInvalidQuery, raw)
		}
		q.Page = n
	}

	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: limit must be a positive integer, got %q", ErrInvalidQuery, raw)
		}
		q.Limit = n
	}

	if raw := strings.TrimSpace(values.Get("filter")); raw != "" {
		if strings.HasPrefix(raw, "[") {
			raw = `{"$or":` + raw + `}`
		}
		var filter map[string]any
		if err := json.Unmarshal([]byte(raw), &filter); err != nil {
			return nil, fmt.Errorf("%w: filter is not a JSON object: %v", ErrInvalidQuery, err)
		}
		if err := validateFilter(filter); err != nil {
			return nil, err
		}
		q.Filter = filter
	}

	if raw := strings.TrimSpace(values.Get("sort")); raw != "" {
		sort, err := parseSort(raw)
		if err != nil {
			return nil, err
		}
		q.Sort = sort
	}

	if raw := strings.TrimSpace(values.Get("select")); raw != "" {
		sel, err := parseSelect(raw)
		if err != nil {
			return nil, err
		}
		q.Select = sel
	}

	return q, nil
}

// Start is the LIMIT ... START offset for the current page.
func (q *ListQuery) Start() int {
	return (q.Page - 1) * q.Limit
}

// ─── Filter validation ───

func validateFilter(filter map[string]any) error {
	for key, value := range filter {
		switch key {
		case "$or", "$and":
			branches, ok := value.([]any)
			if !ok || len(branches) == 0 {
				return fmt.Errorf("%w: %s expects a non-empty array of conditions", ErrInvalidQuery, key)
			}
			for _, branch := range branches {
				cond, ok := branch.(map[string]any)
				if !ok {
					return fmt.Errorf("%w: %s branches must be objects", ErrInvalidQuery, key)
				}
				if err := validateFilter(cond); err != nil {
					return err
				}
			}
		default:
			if !identPattern.MatchString(key) {
				return fmt.Errorf("%w: invalid field name %q", ErrInvalidQuery, key)
			}
			if ops, ok := value.(map[string]any); ok {
				for op, operand := range ops {
					if _, known := filterOperators[op]; !known {
						return fmt.Errorf("%w: unknown operator %q on field %q", ErrInvalidQuery, op, key)
					}
					if op == "$in" {
						if _, isList := operand.([]any); !isList {
							return fmt.Errorf("%w: $in on field %q expects an array", ErrInvalidQuery, key)
						}
					}
				}
			}
		}
	}
	return nil
}

// ─── Sort / select parsing ───

// parseSort reads a JSON object of field → direction, preserving key order.
// Directions may be "asc"/"desc" or the numeric 1/-1 the original clients send.
func parseSort(raw string) ([]SortField, error) {
	pairs, err := parseOrderedObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: sort is not a JSON object: %v", ErrInvalidQuery, err)
	}
	sort := make([]SortField, 0, len(pairs))
	for _, pair := range pairs {
		if !identPattern.MatchString(pair.key) {
			return nil, fmt.Errorf("%w: invalid sort field %q", ErrInvalidQuery, pair.key)
		}
		desc, err := sortDirection(pair.value)
		if err != nil {
			return nil, fmt.Errorf("%w: sort field %q: %v", ErrInvalidQuery, pair.key, err)
		}
		sort = append(sort, SortField{Field: pair.key, Desc: desc})
	}
	return sort, nil
}

func sortDirection(value any) (desc bool, err error) {
	switch v := value.(type) {
	case string:
		switch strings.ToLower(v) {
		case "asc":
			return false, nil
		case "desc":
			return true, nil
		}
	case float64:
		switch v {
		case 1:
			return false, nil
		case -1:
			return true, nil
		}
	}
	return false, fmt.Errorf("direction must be asc, desc, 1 or -1")
}

// parseSelect reads a JSON object of field → 1 inclusion flags, preserving
// key order. Falsy values drop the field.
func parseSelect(raw string) ([]string, error) {
	pairs, err := parseOrderedObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: select is not a JSON object: %v", ErrInvalidQuery, err)
	}
	fields := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if !identPattern.MatchString(pair.key) {
			return nil, fmt.Errorf("%w: invalid select field %q", ErrInvalidQuery, pair.key)
		}
		if included(pair.value) {
			fields = append(fields, pair.key)
		}
	}
	return fields, nil
}

func included(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	}
	return false
}

type orderedPair struct {
	key   string
	value any
}

// parseOrderedObject decodes a flat JSON object keeping the original key
// order, which encoding/json maps discard.
func parseOrderedObject(raw string) ([]orderedPair, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected an object")
	}
	var pairs []orderedPair
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string key")
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		pairs = append(pairs, orderedPair{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// ─── SurrealQL emission ───

// binder numbers bind variables $p0, $p1, ... so values never touch the
// statement text.
type binder struct {
	binds map[string]any
	n     int
}

func newBinder() *binder {
	return &binder{binds: map[string]any{}}
}

func (b *binder) bind(value any) string {
	name := "p" + strconv.Itoa(b.n)
	b.n++
	b.binds[name] = value
	return "$" + name
}

// fieldExpr maps an API field name to its SurrealQL expression. Record IDs
// are exposed as plain strings, so comparisons against id go through
// record::id.
func fieldExpr(field string) string {
	if field == "id" {
		return "record::id(id)"
	}
	return field
}

// WhereClause compiles the filter into a parameterized condition. The
// returned clause is empty when the filter is empty; binds always gets a
// fresh map the caller may extend with tb/limit/start.
func (q *ListQuery) WhereClause() (string, map[string]any, error) {
	b := newBinder()
	clause, err := compileFilter(q.Filter, b)
	if err != nil {
		return "", nil, err
	}
	return clause, b.binds, nil
}

func compileFilter(filter map[string]any, b *binder) (string, error) {
	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var conds []string
	for _, key := range keys {
		value := filter[key]
		switch key {
		case "$or", "$and":
			joiner := " OR "
			if key == "$and" {
				joiner = " AND "
			}
			branches, ok := value.([]any)
			if !ok {
				return "", fmt.Errorf("%w: %s expects an array", ErrInvalidQuery, key)
			}
			var parts []string
			for _, branch := range branches {
				cond, ok := branch.(map[string]any)
				if !ok {
					return "", fmt.Errorf("%w: %s branches must be objects", ErrInvalidQuery, key)
				}
				part, err := compileFilter(cond, b)
				if err != nil {
					return "", err
				}
				parts = append(parts, part)
			}
			conds = append(conds, "("+strings.Join(parts, joiner)+")")
		default:
			if !identPattern.MatchString(key) {
				return "", fmt.Errorf("%w: invalid field name %q", ErrInvalidQuery, key)
			}
			expr := fieldExpr(key)
			if ops, isOps := value.(map[string]any); isOps {
				opNames := make([]string, 0, len(ops))
				for op := range ops {
					opNames = append(opNames, op)
				}
				sort.Strings(opNames)
				for _, op := range opNames {
					symbol, known := filterOperators[op]
					if !known {
						return "", fmt.Errorf("%w: unknown operator %q on field %q", ErrInvalidQuery, op, key)
					}
					conds = append(conds, expr+" "+symbol+" "+b.bind(ops[op]))
				}
			} else {
				conds = append(conds, expr+" = "+b.bind(value))
			}
		}
	}
	return strings.Join(conds, " AND "), nil
}

// OrderClause renders the ORDER BY terms, empty when no sort applies.
func (q *ListQuery) OrderClause() string {
	if len(q.Sort) == 0 {
		return ""
	}
	terms := make([]string, 0, len(q.Sort))
	for _, sf := range q.Sort {
		dir := "ASC"
		if sf.Desc {
			dir = "DESC"
		}
		terms = append(terms, sf.Field+" "+dir)
	}
	return "ORDER BY " + strings.Join(terms, ", ")
}

// Projection renders the SELECT field list. known maps every exposable API
// field to its SurrealQL expression; base is the full default projection.
// Requested fields outside known are dropped; the record ID is always kept.
func (q *ListQuery) Projection(known map[string]string, base string) string {
	if len(q.Select) == 0 {
		return base
	}
	fields := []string{known["id"]}
	for _, field := range q.Select {
		if field == "id" {
			continue
		}
		if expr, ok := known[field]; ok {
			fields = append(fields, expr)
		}
	}
	return strings.Join(fields, ", ")
}
