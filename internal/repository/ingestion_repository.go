package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/document-manager/internal/model"
)

// IngestionRepo persists ingestion jobs.  The dispatch path mutates status
// through Transition, which is a compare-and-swap on the previous status so
// the background worker and the external webhook cannot clobber each other's
// writes unnoticed.
type IngestionRepo struct{ DB *sql.DB }

func NewIngestionRepo(db *sql.DB) *IngestionRepo { return &IngestionRepo{DB: db} }

const jobColumns = "id,correlation_id,source_type,source_ref,params,status,message,created_at,updated_at,started_at,finished_at"

func scanJob(scan func(dest ...any) error) (model.IngestionJob, error) {
	var j model.IngestionJob
	var corr, params, msg sql.NullString
	var started, finished sql.NullTime
	err := scan(&j.ID, &corr, &j.SourceType, &j.SourceRef, &params, &j.Status, &msg,
		&j.CreatedAt, &j.UpdatedAt, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return j, ErrNotFound
	}
	if err != nil {
		return j, err
	}
	j.CorrelationID = corr.String
	j.Message = msg.String
	j.Params = unmarshalMeta(params)
	if started.Valid {
		t := started.Time
		j.StartedAt = &t
	}
	if finished.Valid {
		t := finished.Time
		j.FinishedAt = &t
	}
	return j, nil
}

// Create inserts a new job; the caller sets SourceType/SourceRef/Params and
// optionally CorrelationID, everything else is filled in here.
func (r *IngestionRepo) Create(ctx context.Context, j *model.IngestionJob) error {
	j.ID = uuid.NewString()
	if j.Status == "" {
		j.Status = model.IngestionPending
	}
	now := time.Now().UTC().Truncate(time.Second)
	j.CreatedAt, j.UpdatedAt = now, now
	params, err := marshalMeta(j.Params)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO ingestion_jobs (id,correlation_id,source_type,source_ref,params,status,message,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		j.ID, nullStr(j.CorrelationID), j.SourceType, j.SourceRef, params, j.Status, nullStr(j.Message), j.CreatedAt, j.UpdatedAt)
	return err
}

// Get fetches a job by id.
func (r *IngestionRepo) Get(ctx context.Context, id string) (model.IngestionJob, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM ingestion_jobs WHERE id=? LIMIT 1", id)
	return scanJob(row.Scan)
}

// List returns all jobs ordered newest-first.
func (r *IngestionRepo) List(ctx context.Context) ([]model.IngestionJob, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM ingestion_jobs ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.IngestionJob
	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Save writes status, message and the two lifecycle timestamps.  Used by the
// webhook update path, where the last write wins.
func (r *IngestionRepo) Save(ctx context.Context, j *model.IngestionJob) error {
	j.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE ingestion_jobs SET status=?,message=?,started_at=?,finished_at=?,updated_at=? WHERE id=?",
		j.Status, nullStr(j.Message), nullTime(j.StartedAt), nullTime(j.FinishedAt), j.UpdatedAt, j.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.Get(ctx, j.ID); err != nil {
			return err
		}
	}
	return nil
}

// Transition performs a compare-and-swap status change from -> to.  It
// stamps started_at when entering RUNNING and finished_at when entering a
// terminal state, but never overwrites a timestamp that is already set.
// The boolean result reports whether the job was in the expected prior
// state; a false return with nil error means another writer got there first.
func (r *IngestionRepo) Transition(ctx context.Context, id, from, to, message string) (bool, error) {
	now := time.Now().UTC().Truncate(time.Second)
	q := "UPDATE ingestion_jobs SET status=?, updated_at=?"
	args := []any{to, now}
	if message != "" {
		q += ", message=?"
		args = append(args, message)
	}
	if to == model.IngestionRunning {
		q += ", started_at=COALESCE(started_at, ?)"
		args = append(args, now)
	}
	if model.TerminalIngestionStatus(to) {
		q += ", finished_at=COALESCE(finished_at, ?)"
		args = append(args, now)
	}
	q += " WHERE id=? AND status=?"
	args = append(args, id, from)

	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
