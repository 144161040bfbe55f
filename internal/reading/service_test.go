package reading

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/classense/attention-core/internal/infrastructure/config"
	"github.com/classense/attention-core/internal/infrastructure/logging"
	"github.com/classense/attention-core/internal/store"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	created   []*Reading
	createErr error
}

func (f *fakeRepo) List(_ context.Context, _ *store.ListQuery) (*store.Page[Reading], error) {
	return store.NewPage[Reading](nil, 0, 10, 1), nil
}

func (f *fakeRepo) Aggregate(_ context.Context, _ *store.Aggregate, _ *store.ListQuery) (*store.Page[Reading], error) {
	return store.NewPage[Reading](nil, 0, 10, 1), nil
}

func (f *fakeRepo) Get(_ context.Context, _ string) (*Reading, error) {
	return nil, store.ErrNotFound
}

func (f *fakeRepo) Create(_ context.Context, r *Reading) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, r)
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, _ string) error { return nil }

func (f *fakeRepo) DeleteWhere(_ context.Context, _ map[string]any, _ string) (int, error) {
	return 0, nil
}

// fakeSampleWriter records mirrored samples and summary points.
type fakeSampleWriter struct {
	samples []mirroredSample
	points  []writtenPoint
}

type mirroredSample struct {
	course  string
	teacher string
	mean    float64
	at      time.Time
}

type writtenPoint struct {
	measurement string
	tags        map[string]string
	fields      map[string]interface{}
	at          time.Time
}

func (f *fakeSampleWriter) WriteAttentionSample(course, teacher string, mean float64, at time.Time) {
	f.samples = append(f.samples, mirroredSample{course, teacher, mean, at})
}

func (f *fakeSampleWriter) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}, at time.Time) {
	f.points = append(f.points, writtenPoint{measurement, tags, fields, at})
}

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text"}, "test")
}

func TestServiceCreateMirrorsSamples(t *testing.T) {
	repo := &fakeRepo{}
	writer := &fakeSampleWriter{}
	svc := NewService(repo, writer, testLogger())

	rd := &Reading{
		Course:    "CS101",
		Teacher:   "t-001",
		StartDate: "2026-03-02T09:00:00Z",
		AttentionLevels: []Level{
			{Levels: [][]float64{{0.2, 0.4}}, Delta: 0},
			{Levels: [][]float64{{0.9}}, Delta: 30},
		},
	}

	if err := svc.Create(context.Background(), rd); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("repo got %d inserts, want 1", len(repo.created))
	}
	if len(writer.samples) != 2 {
		t.Fatalf("writer got %d samples, want 2", len(writer.samples))
	}

	first := writer.samples[0]
	if first.course != "CS101" || first.teacher != "t-001" {
		t.Errorf("sample tags = %s/%s", first.course, first.teacher)
	}
	if math.Abs(first.mean-0.3) > 1e-9 {
		t.Errorf("mean = %v, want 0.3", first.mean)
	}

	start, _ := time.Parse(time.RFC3339, rd.StartDate)
	if !writer.samples[1].at.Equal(start.Add(30 * time.Second)) {
		t.Errorf("second sample at %v, want start+30s", writer.samples[1].at)
	}

	if len(writer.points) != 1 {
		t.Fatalf("writer got %d summary points, want 1", len(writer.points))
	}
	point := writer.points[0]
	if point.measurement != "reading_upload" || point.tags["course"] != "CS101" {
		t.Errorf("summary point = %s %v", point.measurement, point.tags)
	}
	if point.fields["samples"] != 2 {
		t.Errorf("samples field = %v, want 2", point.fields["samples"])
	}
}

func TestServiceCreateSkipsMirrorOnError(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New("boom")}
	writer := &fakeSampleWriter{}
	svc := NewService(repo, writer, testLogger())

	err := svc.Create(context.Background(), &Reading{
		StartDate:       "2026-03-02T09:00:00Z",
		AttentionLevels: []Level{{Levels: [][]float64{{1}}, Delta: 0}},
	})
	if err == nil {
		t.Fatal("Create() should propagate repository errors")
	}
	if len(writer.samples) != 0 {
		t.Errorf("writer got %d samples after failed insert, want 0", len(writer.samples))
	}
}

func TestServiceCreateNilWriter(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, testLogger())

	err := svc.Create(context.Background(), &Reading{
		StartDate:       "2026-03-02T09:00:00Z",
		AttentionLevels: []Level{{Levels: [][]float64{{1}}, Delta: 0}},
	})
	if err != nil {
		t.Fatalf("Create() failed with nil writer: %v", err)
	}
}

func TestServiceCreateUnparseableStartDate(t *testing.T) {
	repo := &fakeRepo{}
	writer := &fakeSampleWriter{}
	svc := NewService(repo, writer, testLogger())

	err := svc.Create(context.Background(), &Reading{
		StartDate:       "yesterday",
		AttentionLevels: []Level{{Levels: [][]float64{{1}}, Delta: 0}},
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if len(writer.samples) != 0 {
		t.Errorf("writer got %d samples for unparseable start date, want 0", len(writer.samples))
	}
}

func TestMeanLevel(t *testing.T) {
	tests := []struct {
		name   string
		levels [][]float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", [][]float64{{0.5}}, 0.5},
		{"ragged rows", [][]float64{{1, 2}, {3}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := meanLevel(tt.levels); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("meanLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}
