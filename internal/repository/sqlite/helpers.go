package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/enemresultados/internal/datekey"
	"github.com/vytor/enemresultados/internal/logger"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Helper functions shared across repository implementations

func tx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	log.Debug("transaction committed")
	return nil
}

// withinPeriod keeps rows without a day plus rows in the last periodDays
// days counted back from the student's latest day in the same table.
func withinPeriod(q squirrel.SelectBuilder, table string, studentID int64, periodDays int) squirrel.SelectBuilder {
	if periodDays <= 0 {
		return q
	}
	return q.Where(squirrel.Or{
		squirrel.Eq{"taken_on": nil},
		squirrel.Expr(
			fmt.Sprintf("taken_on > date((SELECT MAX(taken_on) FROM %s WHERE student_id = ?), ?)", table),
			studentID, fmt.Sprintf("-%d days", periodDays),
		),
	})
}

func dayKey(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: datekey.Key(*t), Valid: true}
}

func dayPtr(s sql.NullString, loc *time.Location) *time.Time {
	if !s.Valid {
		return nil
	}
	t, ok := datekey.Parse(s.String, loc)
	if !ok {
		return nil
	}
	return &t
}

func weekdayValue(w *int) sql.NullInt64 {
	if w == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*w), Valid: true}
}

func weekdayPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	w := int(v.Int64)
	return &w
}
