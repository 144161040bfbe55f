package reading

import (
	"context"
	"time"

	"github.com/classense/attention-core/internal/infrastructure/logging"
)

// SampleWriter mirrors individual attention samples into a time-series
// backend. Writes are fire-and-forget; a nil writer disables mirroring.
type SampleWriter interface {
	WriteAttentionSample(course, teacher string, mean float64, at time.Time)
	WritePoint(measurement string, tags map[string]string, fields map[string]interface{}, at time.Time)
}

// Service wraps the repository with the time-series mirror so the HTTP
// handlers and the MQTT ingest bridge share one insert path.
type Service struct {
	repo    Repository
	samples SampleWriter
	logger  *logging.Logger
}

// NewService creates a reading service. samples may be nil.
func NewService(repo Repository, samples SampleWriter, logger *logging.Logger) *Service {
	return &Service{
		repo:    repo,
		samples: samples,
		logger:  logger.With("component", "reading"),
	}
}

// Repo exposes the underlying repository for read and delete paths.
func (s *Service) Repo() Repository {
	return s.repo
}

// Create inserts the reading and, on success, mirrors its attention samples.
func (s *Service) Create(ctx context.Context, rd *Reading) error {
	if err := s.repo.Create(ctx, rd); err != nil {
		return err
	}
	s.mirror(rd)
	return nil
}

// mirror writes one point per attention level, timed at startDate + delta.
// Mirroring never fails the upload; malformed dates are just skipped.
func (s *Service) mirror(rd *Reading) {
	if s.samples == nil || len(rd.AttentionLevels) == 0 {
		return
	}
	start, err := time.Parse(time.RFC3339, rd.StartDate)
	if err != nil {
		s.logger.Debug("skipping sample mirror, unparseable start date",
			"reading", rd.ID, "startDate", rd.StartDate)
		return
	}
	for _, lvl := range rd.AttentionLevels {
		at := start.Add(time.Duration(lvl.Delta * float64(time.Second)))
		s.samples.WriteAttentionSample(rd.Course, rd.Teacher, meanLevel(lvl.Levels), at)
	}

	// One summary point per upload so dashboards can chart ingest volume
	// without counting individual samples.
	s.samples.WritePoint("reading_upload",
		map[string]string{"course": rd.Course, "teacher": rd.Teacher},
		map[string]interface{}{"samples": len(rd.AttentionLevels)},
		start,
	)
}

// meanLevel flattens the sample vectors into their arithmetic mean.
func meanLevel(levels [][]float64) float64 {
	sum, n := 0.0, 0
	for _, row := range levels {
		for _, v := range row {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
