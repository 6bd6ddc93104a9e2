package services

import (
	"context"
	"time"

	"github.com/vytor/enemresultados/internal/errors"
	"github.com/vytor/enemresultados/internal/ingest"
	"github.com/vytor/enemresultados/internal/logger"
	"github.com/vytor/enemresultados/internal/metrics"
	"github.com/vytor/enemresultados/internal/models"
	"github.com/vytor/enemresultados/internal/repository"
	"github.com/vytor/enemresultados/internal/series"
	"github.com/vytor/enemresultados/internal/session"
	"golang.org/x/sync/errgroup"
)

// MaxPeriod is the longest period filter accepted, in days.
const MaxPeriod = 365

// ResultsService loads student records into chart snapshots and feeds the
// local record store.
type ResultsService interface {
	LoadSnapshot(ctx context.Context, studentID int64, period int) (*models.Snapshot, error)
	Snapshot(ctx context.Context, studentID int64) (*models.Snapshot, error)
	History(ctx context.Context, studentID int64) ([]models.HistoryEvent, error)
	IngestPerformance(ctx context.Context, studentID int64, raw []byte) (int, error)
	IngestActivity(ctx context.Context, studentID int64, raw []byte) (int, error)
	IngestSimulados(ctx context.Context, studentID int64, raw []byte) (int, error)
	IngestEssays(ctx context.Context, studentID int64, raw []byte) (int, error)
	DeleteRecords(ctx context.Context, studentID int64) error
}

type ResultsOption func(*resultsService)

// WithClock replaces time.Now, which anchors the charts when no performance
// record carries a date.
func WithClock(now func() time.Time) ResultsOption {
	return func(s *resultsService) { s.now = now }
}

type resultsService struct {
	source   repository.RecordSource
	repo     repository.RecordRepository
	sessions *session.Store
	loc      *time.Location
	now      func() time.Time
}

// NewResultsService reads snapshots from source and stores ingested records in
// repo. source may be repo itself.
func NewResultsService(source repository.RecordSource, repo repository.RecordRepository, sessions *session.Store, loc *time.Location, opts ...ResultsOption) ResultsService {
	if loc == nil {
		loc = time.Local
	}
	s := &resultsService{
		source:   source,
		repo:     repo,
		sessions: sessions,
		loc:      loc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateStudent(studentID int64) error {
	if studentID <= 0 {
		return errors.NewValidationError("student_id", "must be a positive integer")
	}
	return nil
}

// LoadSnapshot fetches all four record kinds concurrently and replaces the
// student's snapshot. A source that fails contributes an empty list. Dated
// sources are read for twice the period so the radar has a previous window.
func (s *resultsService) LoadSnapshot(ctx context.Context, studentID int64, period int) (*models.Snapshot, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"student_id": studentID,
		"period":     period,
	})
	if err := validateStudent(studentID); err != nil {
		return nil, err
	}
	if period < 1 || period > MaxPeriod {
		return nil, errors.NewValidationError("periodo", "must be between 1 and 365 days")
	}

	log.Debug("loading snapshot")
	start := time.Now()
	window := period * 2
	in := series.Input{StudentID: studentID, Period: period}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := s.source.Performance(gctx, studentID, window)
		if err != nil {
			sourceFailed(log, "performance", err)
			return nil
		}
		in.Performance = recs
		return nil
	})
	g.Go(func() error {
		recs, err := s.source.Activity(gctx, studentID, window)
		if err != nil {
			sourceFailed(log, "activity", err)
			return nil
		}
		in.Activity = recs
		return nil
	})
	g.Go(func() error {
		recs, err := s.source.Simulados(gctx, studentID, window)
		if err != nil {
			sourceFailed(log, "simulados", err)
			return nil
		}
		in.Simulados = recs
		return nil
	})
	g.Go(func() error {
		recs, err := s.source.Essays(gctx, studentID)
		if err != nil {
			sourceFailed(log, "essays", err)
			return nil
		}
		in.Essays = recs
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		log.Warn("snapshot load abandoned: %v", err)
		return nil, err
	}

	snap := series.Build(in, s.now().In(s.loc), s.loc)
	s.sessions.Replace(studentID, snap)

	log.Info("snapshot %s loaded in %v: performance=%d activity=%d simulados=%d essays=%d",
		snap.ID, time.Since(start), len(in.Performance), len(in.Activity), len(in.Simulados), len(in.Essays))
	return snap, nil
}

func sourceFailed(log *logger.Logger, source string, err error) {
	metrics.SourceFailures.WithLabelValues(source).Inc()
	log.Warn("failed to fetch %s, using an empty list: %v", source, err)
}

func (s *resultsService) Snapshot(ctx context.Context, studentID int64) (*models.Snapshot, error) {
	if err := validateStudent(studentID); err != nil {
		return nil, err
	}
	snap, ok := s.sessions.Snapshot(studentID)
	if !ok {
		logger.FromContext(ctx).Debug("no snapshot for student %d", studentID)
		return nil, errors.NewNotFoundError("snapshot", studentID)
	}
	return snap, nil
}

func (s *resultsService) History(ctx context.Context, studentID int64) ([]models.HistoryEvent, error) {
	snap, err := s.Snapshot(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if snap.History == nil {
		return []models.HistoryEvent{}, nil
	}
	return snap.History, nil
}

func (s *resultsService) IngestPerformance(ctx context.Context, studentID int64, raw []byte) (int, error) {
	if err := validateStudent(studentID); err != nil {
		return 0, err
	}
	records, err := ingest.Performance(raw, s.loc)
	if err != nil {
		return 0, errors.NewValidationError("body", err.Error())
	}
	return s.store(ctx, "performance", func() (int, error) {
		return s.repo.InsertPerformance(ctx, studentID, records)
	})
}

func (s *resultsService) IngestActivity(ctx context.Context, studentID int64, raw []byte) (int, error) {
	if err := validateStudent(studentID); err != nil {
		return 0, err
	}
	records, err := ingest.Activity(raw, s.loc)
	if err != nil {
		return 0, errors.NewValidationError("body", err.Error())
	}
	return s.store(ctx, "activity", func() (int, error) {
		return s.repo.InsertActivity(ctx, studentID, records)
	})
}

func (s *resultsService) IngestSimulados(ctx context.Context, studentID int64, raw []byte) (int, error) {
	if err := validateStudent(studentID); err != nil {
		return 0, err
	}
	records, err := ingest.Simulados(raw, s.loc)
	if err != nil {
		return 0, errors.NewValidationError("body", err.Error())
	}
	return s.store(ctx, "simulados", func() (int, error) {
		return s.repo.InsertSimulados(ctx, studentID, records)
	})
}

func (s *resultsService) IngestEssays(ctx context.Context, studentID int64, raw []byte) (int, error) {
	if err := validateStudent(studentID); err != nil {
		return 0, err
	}
	records, err := ingest.Essays(raw, s.loc)
	if err != nil {
		return 0, errors.NewValidationError("body", err.Error())
	}
	return s.store(ctx, "essays", func() (int, error) {
		return s.repo.InsertEssays(ctx, studentID, records)
	})
}

func (s *resultsService) store(ctx context.Context, what string, insert func() (int, error)) (int, error) {
	log := logger.FromContext(ctx)
	n, err := insert()
	if err != nil {
		log.Error("failed to store %s records: %v", what, err)
		return 0, errors.NewInternalError(err)
	}
	log.Info("stored %d %s records", n, what)
	return n, nil
}

func (s *resultsService) DeleteRecords(ctx context.Context, studentID int64) error {
	log := logger.FromContext(ctx)
	if err := validateStudent(studentID); err != nil {
		return err
	}
	if err := s.repo.DeleteStudent(ctx, studentID); err != nil {
		log.Error("failed to delete records for student %d: %v", studentID, err)
		return errors.NewInternalError(err)
	}
	return nil
}
