package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/enemresultados/internal/logger"
	"github.com/vytor/enemresultados/internal/models"
	"github.com/vytor/enemresultados/internal/repository"
)

type recordRepository struct {
	db  *sql.DB
	loc *time.Location
}

// NewRecordRepository creates a new RecordRepository implementation. Day keys
// read back from the store resolve to midnight in loc.
func NewRecordRepository(db *sql.DB, loc *time.Location) repository.RecordRepository {
	if loc == nil {
		loc = time.Local
	}
	return &recordRepository{db: db, loc: loc}
}

func (r *recordRepository) Performance(ctx context.Context, studentID int64, periodDays int) ([]models.PerformanceRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("record_repo")
	log.Debug("listing performance: student_id=%d, period=%d", studentID, periodDays)

	query := sqlBuilder.Select("subject", "taken_on", "weekday", "accuracy_rate").
		From("performance_records").
		Where("student_id = ?", studentID)
	query = withinPeriod(query, "performance_records", studentID, periodDays).OrderBy("id ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build performance query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query performance: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.PerformanceRecord
	for rows.Next() {
		var (
			rec     models.PerformanceRecord
			takenOn sql.NullString
			weekday sql.NullInt64
		)
		if err := rows.Scan(&rec.Subject, &takenOn, &weekday, &rec.AccuracyRate); err != nil {
			log.Error("failed to scan performance row: %v", err)
			return nil, err
		}
		rec.TakenAt = dayPtr(takenOn, r.loc)
		rec.Weekday = weekdayPtr(weekday)
		out = append(out, rec)
	}

	log.Debug("found %d performance records", len(out))
	return out, rows.Err()
}

func (r *recordRepository) Activity(ctx context.Context, studentID int64, periodDays int) ([]models.ActivityRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("record_repo")
	log.Debug("listing activity: student_id=%d, period=%d", studentID, periodDays)

	query := sqlBuilder.Select("taken_on", "weekday", "questions_count", "minutes_spent").
		From("activity_records").
		Where("student_id = ?", studentID)
	query = withinPeriod(query, "activity_records", studentID, periodDays).OrderBy("id ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build activity query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query activity: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.ActivityRecord
	for rows.Next() {
		var (
			rec     models.ActivityRecord
			takenOn sql.NullString
			weekday sql.NullInt64
		)
		if err := rows.Scan(&takenOn, &weekday, &rec.QuestionsCount, &rec.MinutesSpent); err != nil {
			log.Error("failed to scan activity row: %v", err)
			return nil, err
		}
		rec.TakenAt = dayPtr(takenOn, r.loc)
		rec.Weekday = weekdayPtr(weekday)
		out = append(out, rec)
	}

	log.Debug("found %d activity records", len(out))
	return out, rows.Err()
}

func (r *recordRepository) Simulados(ctx context.Context, studentID int64, periodDays int) ([]models.SimuladoRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("record_repo")
	log.Debug("listing simulados: student_id=%d, period=%d", studentID, periodDays)

	query := sqlBuilder.Select("title", "subjects", "taken_on", "total", "correct", "accuracy_rate").
		From("simulados").
		Where("student_id = ?", studentID)
	query = withinPeriod(query, "simulados", studentID, periodDays).OrderBy("id ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build simulados query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query simulados: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.SimuladoRecord
	for rows.Next() {
		var (
			rec      models.SimuladoRecord
			subjects string
			takenOn  sql.NullString
		)
		if err := rows.Scan(&rec.Title, &subjects, &takenOn, &rec.Total, &rec.Correct, &rec.AccuracyRate); err != nil {
			log.Error("failed to scan simulado row: %v", err)
			return nil, err
		}
		if err := json.Unmarshal([]byte(subjects), &rec.Subjects); err != nil {
			log.Warn("ignoring malformed subjects for simulado %q: %v", rec.Title, err)
		}
		rec.TakenAt = dayPtr(takenOn, r.loc)
		out = append(out, rec)
	}

	log.Debug("found %d simulados", len(out))
	return out, rows.Err()
}

func (r *recordRepository) Essays(ctx context.Context, studentID int64) ([]models.EssayRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("record_repo")
	log.Debug("listing essays: student_id=%d", studentID)

	sqlStr, args, err := sqlBuilder.Select(
		"theme", "status", "score", "created_on", "updated_on", "sent_on", "corrected_on",
	).From("essays").
		Where("student_id = ?", studentID).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		log.Error("failed to build essays query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query essays: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.EssayRecord
	for rows.Next() {
		var (
			rec                            models.EssayRecord
			score                          sql.NullFloat64
			created, updated, sent, graded sql.NullString
		)
		if err := rows.Scan(&rec.Theme, &rec.Status, &score, &created, &updated, &sent, &graded); err != nil {
			log.Error("failed to scan essay row: %v", err)
			return nil, err
		}
		if score.Valid {
			v := score.Float64
			rec.Score = &v
		}
		rec.CreatedAt = dayPtr(created, r.loc)
		rec.UpdatedAt = dayPtr(updated, r.loc)
		rec.SentAt = dayPtr(sent, r.loc)
		rec.CorrectedAt = dayPtr(graded, r.loc)
		out = append(out, rec)
	}

	log.Debug("found %d essays", len(out))
	return out, rows.Err()
}

func (r *recordRepository) InsertPerformance(ctx context.Context, studentID int64, records []models.PerformanceRecord) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("record_repo")
	if len(records) == 0 {
		return 0, nil
	}
	log.Debug("inserting %d performance records: student_id=%d", len(records), studentID)

	return r.insertChunked(ctx, log, "performance", len(records), func(lo, hi int) (squirrel.InsertBuilder, error) {
		query := sqlBuilder.Insert("performance_records").
			Columns("student_id", "subject", "taken_on", "weekday", "accuracy_rate")
		for _, rec := range records[lo:hi] {
			query = query.Values(studentID, rec.Subject, dayKey(rec.TakenAt), weekdayValue(rec.Weekday), rec.AccuracyRate)
		}
		return query, nil
	})
}

func (r *recordRepository) InsertActivity(ctx context.Context, studentID int64, records []models.ActivityRecord) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("record_repo")
	if len(records) == 0 {
		return 0, nil
	}
	log.Debug("inserting %d activity records: student_id=%d", len(records), studentID)

	return r.insertChunked(ctx, log, "activity", len(records), func(lo, hi int) (squirrel.InsertBuilder, error) {
		query := sqlBuilder.Insert("activity_records").
			Columns("student_id", "taken_on", "weekday", "questions_count", "minutes_spent")
		for _, rec := range records[lo:hi] {
			query = query.Values(studentID, dayKey(rec.TakenAt), weekdayValue(rec.Weekday), rec.QuestionsCount, rec.MinutesSpent)
		}
		return query, nil
	})
}

func (r *recordRepository) InsertSimulados(ctx context.Context, studentID int64, records []models.SimuladoRecord) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("record_repo")
	if len(records) == 0 {
		return 0, nil
	}
	log.Debug("inserting %d simulados: student_id=%d", len(records), studentID)

	return r.insertChunked(ctx, log, "simulados", len(records), func(lo, hi int) (squirrel.InsertBuilder, error) {
		query := sqlBuilder.Insert("simulados").
			Columns("student_id", "title", "subjects", "taken_on", "total", "correct", "accuracy_rate")
		for _, rec := range records[lo:hi] {
			subjects := rec.Subjects
			if subjects == nil {
				subjects = []string{}
			}
			encoded, err := json.Marshal(subjects)
			if err != nil {
				return query, err
			}
			query = query.Values(studentID, rec.Title, string(encoded), dayKey(rec.TakenAt), rec.Total, rec.Correct, rec.AccuracyRate)
		}
		return query, nil
	})
}

func (r *recordRepository) InsertEssays(ctx context.Context, studentID int64, records []models.EssayRecord) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("record_repo")
	if len(records) == 0 {
		return 0, nil
	}
	log.Debug("inserting %d essays: student_id=%d", len(records), studentID)

	return r.insertChunked(ctx, log, "essays", len(records), func(lo, hi int) (squirrel.InsertBuilder, error) {
		query := sqlBuilder.Insert("essays").
			Columns("student_id", "theme", "status", "score", "created_on", "updated_on", "sent_on", "corrected_on")
		for _, rec := range records[lo:hi] {
			var score sql.NullFloat64
			if rec.Score != nil {
				score = sql.NullFloat64{Float64: *rec.Score, Valid: true}
			}
			query = query.Values(studentID, rec.Theme, rec.Status, score,
				dayKey(rec.CreatedAt), dayKey(rec.UpdatedAt), dayKey(rec.SentAt), dayKey(rec.CorrectedAt))
		}
		return query, nil
	})
}

func (r *recordRepository) DeleteStudent(ctx context.Context, studentID int64) error {
	log := logger.FromContext(ctx).WithPrefix("record_repo")
	log.Debug("deleting records: student_id=%d", studentID)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		for _, table := range []string{"performance_records", "activity_records", "simulados", "essays"} {
			sqlStr, args, err := sqlBuilder.Delete(table).Where("student_id = ?", studentID).ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
				log.Error("failed to delete %s for student %d: %v", table, studentID, err)
				return err
			}
		}
		log.Debug("student %d records deleted", studentID)
		return nil
	})
}

// insertChunk bounds the rows per INSERT statement. With the widest table at
// eight columns a chunk stays under SQLite's 999 bound-variable limit.
const insertChunk = 100

// insertChunked writes n rows as consecutive multi-row INSERTs in one
// transaction, so a batch is stored entirely or not at all.
func (r *recordRepository) insertChunked(ctx context.Context, log *logger.Logger, what string, n int, build func(lo, hi int) (squirrel.InsertBuilder, error)) (int, error) {
	total := 0
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		for lo := 0; lo < n; lo += insertChunk {
			hi := min(lo+insertChunk, n)
			query, err := build(lo, hi)
			if err != nil {
				log.Error("failed to encode %s rows: %v", what, err)
				return err
			}
			sqlStr, args, err := query.ToSql()
			if err != nil {
				log.Error("failed to build %s insert: %v", what, err)
				return err
			}
			res, err := tx.ExecContext(ctx, sqlStr, args...)
			if err != nil {
				log.Error("failed to insert %s rows %d-%d: %v", what, lo, hi, err)
				return err
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}
			total += int(affected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Debug("inserted %d %s rows", total, what)
	return total, nil
}
