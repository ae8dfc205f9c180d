package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRepository exposes the mutations that must share a transaction with
// the catalog dispatch on approval.
type TxRepository interface {
	Get(ctx context.Context, id uuid.UUID) (RequestRecord, error)
	// MarkDecided claims a pending request and stores its final body.
	// Returns ErrInvalidState when the request was already decided.
	MarkDecided(ctx context.Context, id uuid.UUID, status Status, decidedBy int64, body json.RawMessage) error
}

type Repository interface {
	Create(ctx context.Context, record RequestRecord) error
	Get(ctx context.Context, id uuid.UUID) (RequestRecord, error)
	ListBySubmitter(ctx context.Context, userID int64) ([]RequestRecord, error)
	ListPending(ctx context.Context) ([]RequestRecord, error)
	ListStalePending(ctx context.Context, before time.Time) ([]RequestRecord, error)
	// DeletePending removes a request only while it is still pending and
	// owned by submittedBy.
	DeletePending(ctx context.Context, id uuid.UUID, submittedBy int64) error
	// WithTx runs fn inside a repeatable-read transaction, committing on
	// nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const requestColumns = `id, type, body, submitted_by, status, decided_by, decided_at, created_at, updated_at`

func scanRequest(row pgx.Row) (RequestRecord, error) {
	var rec RequestRecord
	err := row.Scan(&rec.ID, &rec.Type, &rec.Body, &rec.SubmittedBy, &rec.Status,
		&rec.DecidedBy, &rec.DecidedAt, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}

func collectRequests(rows pgx.Rows) ([]RequestRecord, error) {
	defer rows.Close()
	var out []RequestRecord
	for rows.Next() {
		rec, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, record RequestRecord) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO requests (id, type, body, submitted_by, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`,
		record.ID, record.Type, record.Body, record.SubmittedBy, record.Status)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (RequestRecord, error) {
	rec, err := scanRequest(r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM requests WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RequestRecord{}, ErrNotFound
		}
		return RequestRecord{}, err
	}
	return rec, nil
}

func (r *repository) ListBySubmitter(ctx context.Context, userID int64) ([]RequestRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+requestColumns+` FROM requests WHERE submitted_by=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func (r *repository) ListPending(ctx context.Context) ([]RequestRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+requestColumns+` FROM requests WHERE status=$1 ORDER BY created_at ASC`, StatusPending)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func (r *repository) ListStalePending(ctx context.Context, before time.Time) ([]RequestRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+requestColumns+` FROM requests WHERE status=$1 AND created_at < $2 ORDER BY created_at ASC`, StatusPending, before)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func (r *repository) DeletePending(ctx context.Context, id uuid.UUID, submittedBy int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM requests WHERE id=$1 AND submitted_by=$2 AND status=$3`, id, submittedBy, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.resolveDeleteFailure(ctx, id, submittedBy)
	}
	return nil
}

// resolveDeleteFailure distinguishes why a conditional delete matched
// nothing: missing row, foreign owner, or an already-decided request.
func (r *repository) resolveDeleteFailure(ctx context.Context, id uuid.UUID, submittedBy int64) error {
	var owner int64
	var status Status
	err := r.pool.QueryRow(ctx, `SELECT submitted_by, status FROM requests WHERE id=$1`, id).Scan(&owner, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != submittedBy {
		return ErrForbidden
	}
	return ErrInvalidState
}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		return mapTxError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapTxError(err)
	}
	return nil
}

// mapTxError translates a repeatable-read serialization failure into
// ErrInvalidState: two moderators racing the same pending row means the
// loser's view is stale, which is the same outcome as a zero-row
// conditional update.
func mapTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "40001" {
		return ErrInvalidState
	}
	return err
}

type txRepository struct {
	tx pgx.Tx
}

func (t *txRepository) Get(ctx context.Context, id uuid.UUID) (RequestRecord, error) {
	rec, err := scanRequest(t.tx.QueryRow(ctx, `SELECT `+requestColumns+` FROM requests WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RequestRecord{}, ErrNotFound
		}
		return RequestRecord{}, err
	}
	return rec, nil
}

func (t *txRepository) MarkDecided(ctx context.Context, id uuid.UUID, status Status, decidedBy int64, body json.RawMessage) error {
	tag, err := t.tx.Exec(ctx, `UPDATE requests SET status=$2, body=$3, decided_by=$4, decided_at=NOW(), updated_at=NOW()
WHERE id=$1 AND status=$5`, id, status, body, decidedBy, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		rec, getErr := t.Get(ctx, id)
		if getErr != nil {
			return getErr
		}
		if rec.Status != StatusPending {
			return ErrInvalidState
		}
		return ErrNotFound
	}
	return nil
}
