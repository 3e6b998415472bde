package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crashgate-io/crashgate/internal/model"
)

// PostgresStore persists reports through a pgx connection pool. Used when the
// deployment owns its database instead of a hosted store behind an HTTP API.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a PostgresStore using the given pool.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Insert implements Store.
func (s *PostgresStore) Insert(ctx context.Context, r *model.CrashReport) error {
	var specs any
	if len(r.HardwareSpecs) > 0 {
		specs = []byte(r.HardwareSpecs)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO crash_reports
			(id, app_name, app_version, platform, crash_timestamp, error_message, stack_trace, hardware_specs, user_id, session_id, ip_hash, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		r.ID, r.AppName, r.AppVersion, r.Platform, r.CrashTimestamp,
		nullable(r.ErrorMessage), nullable(r.StackTrace), specs,
		nullable(r.UserID), nullable(r.SessionID), r.IPHash, r.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert crash report: %w", err)
	}
	return nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, q model.ReportQuery) ([]model.StoredReport, error) {
	sql := `
		SELECT id, app_name, app_version, platform, crash_timestamp,
		       COALESCE(error_message, ''), COALESCE(stack_trace, ''), hardware_specs,
		       COALESCE(user_id, ''), COALESCE(session_id, ''), received_at
		FROM crash_reports
		WHERE app_name = $1 AND crash_timestamp >= $2`
	args := []any{q.AppName, time.Now().UTC().AddDate(0, 0, -q.Days)}
	if q.Version != "" {
		sql += ` AND app_version = $3 ORDER BY crash_timestamp DESC LIMIT $4 OFFSET $5`
		args = append(args, q.Version, q.Limit, q.Offset)
	} else {
		sql += ` ORDER BY crash_timestamp DESC LIMIT $3 OFFSET $4`
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list crash reports: %w", err)
	}
	defer rows.Close()

	var reports []model.StoredReport
	for rows.Next() {
		var rep model.StoredReport
		var specs []byte
		if err := rows.Scan(
			&rep.ID,
			&rep.AppName,
			&rep.AppVersion,
			&rep.Platform,
			&rep.CrashTimestamp,
			&rep.ErrorMessage,
			&rep.StackTrace,
			&specs,
			&rep.UserID,
			&rep.SessionID,
			&rep.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("scan crash report: %w", err)
		}
		if len(specs) > 0 {
			rep.HardwareSpecs = specs
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// Summary implements Store, reading the crash_summary view created by the
// migrations.
func (s *PostgresStore) Summary(ctx context.Context, appName string, days int) ([]model.SummaryRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT app_version, platform, day, crashes
		FROM crash_summary
		WHERE app_name = $1 AND day >= $2
		ORDER BY day DESC, crashes DESC`,
		appName, time.Now().UTC().AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("crash summary: %w", err)
	}
	defer rows.Close()

	var out []model.SummaryRow
	for rows.Next() {
		var row model.SummaryRow
		if err := rows.Scan(&row.AppVersion, &row.Platform, &row.Day, &row.Crashes); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
