package store

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseAggregate(t *testing.T) {
	raw := `[
		{"$match": {"course": "CS101"}},
		{"$sort": {"startDate": -1}},
		{"$project": {"course": 1, "attentionLevels": 1}},
		{"$limit": 50}
	]`

	agg, err := ParseAggregate(raw)
	if err != nil {
		t.Fatalf("ParseAggregate() failed: %v", err)
	}

	if agg.Match["course"] != "CS101" {
		t.Errorf("Match = %v", agg.Match)
	}
	if !reflect.DeepEqual(agg.Sort, []SortField{{Field: "startDate", Desc: true}}) {
		t.Errorf("Sort = %v", agg.Sort)
	}
	if !reflect.DeepEqual(agg.Select, []string{"course", "attentionLevels"}) {
		t.Errorf("Select = %v", agg.Select)
	}
	if agg.Limit != 50 {
		t.Errorf("Limit = %d, want 50", agg.Limit)
	}
}

func TestParseAggregateLaterStageOverrides(t *testing.T) {
	raw := `[{"$limit": 10}, {"$limit": 20}]`

	agg, err := ParseAggregate(raw)
	if err != nil {
		t.Fatalf("ParseAggregate() failed: %v", err)
	}
	if agg.Limit != 20 {
		t.Errorf("Limit = %d, want 20", agg.Limit)
	}
}

func TestParseAggregateRejectsBadPipelines(t *testing.T) {
	cases := []string{
		`{"$match": {}}`,
		`[{"$match": {}, "$limit": 5}]`,
		`[{"$group": {"_id": "$course"}}]`,
		`[{"$limit": 0}]`,
		`[{"$limit": "ten"}]`,
		`[{"$match": {"bad-field": 1}}]`,
		`[{"$sort": {"course": "sideways"}}]`,
	}
	for _, raw := range cases {
		if _, err := ParseAggregate(raw); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("ParseAggregate(%q): got %v, want ErrInvalidQuery", raw, err)
		}
	}
}

func TestAggregateStatement(t *testing.T) {
	known := map[string]string{
		"id":     "record::id(id) AS id",
		"course": "course",
		"owner":  "owner",
	}
	base := "record::id(id) AS id, owner, course"

	agg := &Aggregate{
		Match:  map[string]any{"course": "CS101"},
		Sort:   []SortField{{Field: "course", Desc: false}},
		Select: []string{"course"},
		Limit:  5,
	}

	sql, binds, err := agg.statement(known, base)
	if err != nil {
		t.Fatalf("statement() failed: %v", err)
	}

	want := "SELECT record::id(id) AS id, course FROM type::table($tb) WHERE course = $p0 ORDER BY course ASC LIMIT $agglimit"
	if sql != want {
		t.Errorf("sql = %q\nwant  %q", sql, want)
	}
	if binds["p0"] != "CS101" || binds["agglimit"] != 5 {
		t.Errorf("binds = %v", binds)
	}
}

func TestAggregateStatementEmpty(t *testing.T) {
	agg := &Aggregate{}
	base := "record::id(id) AS id, owner"

	sql, binds, err := agg.statement(map[string]string{"id": "record::id(id) AS id"}, base)
	if err != nil {
		t.Fatalf("statement() failed: %v", err)
	}
	if sql != "SELECT "+base+" FROM type::table($tb)" {
		t.Errorf("sql = %q", sql)
	}
	if len(binds) != 0 {
		t.Errorf("binds = %v, want empty", binds)
	}
}
