package store

import (
	"encoding/json"
	"fmt"
)

// Aggregate is a normalized reading pipeline: an ordered combination of
// match, sort, project and limit stages collapsed into a single statement.
// When present it replaces the plain filter/sort path; page and limit then
// slice the result set in memory.
type Aggregate struct {
	Match  map[string]any
	Sort   []SortField
	Select []string
	Limit  int
}

// ParseAggregate decodes a JSON array of pipeline stages. Each stage is an
// object with exactly one of $match, $sort, $project or $limit; later stages
// of the same kind override earlier ones. Anything else is ErrInvalidQuery.
func ParseAggregate(raw string) (*Aggregate, error) {
	var stages []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &stages); err != nil {
		return nil, fmt.Errorf("%w: aggregator is not a JSON array of stages: %v", ErrInvalidQuery, err)
	}

	agg := &Aggregate{}
	for i, stage := range stages {
		if len(stage) != 1 {
			return nil, fmt.Errorf("%w: aggregator stage %d must hold exactly one operation", ErrInvalidQuery, i)
		}
		for name, body := range stage {
			switch name {
			case "$match":
				var match map[string]any
				if err := json.Unmarshal(body, &match); err != nil {
					return nil, fmt.Errorf("%w: $match stage %d is not an object: %v", ErrInvalidQuery, i, err)
				}
				if err := validateFilter(match); err != nil {
					return nil, err
				}
				agg.Match = match
			case "$sort":
				sort, err := parseSort(string(body))
				if err != nil {
					return nil, err
				}
				agg.Sort = sort
			case "$project":
				sel, err := parseSelect(string(body))
				if err != nil {
					return nil, err
				}
				agg.Select = sel
			case "$limit":
				var n int
				if err := json.Unmarshal(body, &n); err != nil || n < 1 {
					return nil, fmt.Errorf("%w: $limit stage %d must be a positive integer", ErrInvalidQuery, i)
				}
				agg.Limit = n
			default:
				return nil, fmt.Errorf("%w: unsupported aggregator stage %q", ErrInvalidQuery, name)
			}
		}
	}
	return agg, nil
}

// statement renders the pipeline as one parameterized SurrealQL select.
func (a *Aggregate) statement(known map[string]string, base string) (string, map[string]any, error) {
	b := newBinder()
	where, err := compileFilter(a.Match, b)
	if err != nil {
		return "", nil, err
	}

	proj := base
	if len(a.Select) > 0 {
		proj = (&ListQuery{Select: a.Select}).Projection(known, base)
	}

	sql := "SELECT " + proj + " FROM type::table($tb)"
	if where != "" {
		sql += " WHERE " + where
	}
	if order := (&ListQuery{Sort: a.Sort}).OrderClause(); order != "" {
		sql += " " + order
	}
	if a.Limit > 0 {
		b.binds["agglimit"] = a.Limit
		sql += " LIMIT $agglimit"
	}
	return sql, b.binds, nil
}
