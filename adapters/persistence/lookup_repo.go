package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/codejourney/internal/domain/lookup"
	"github.com/khoahotran/codejourney/pkg/logger"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const lookupColumns = "id, session_id, platform, kind, handle, image_url, snapshot_url, payload, fetched_at, created_at"

type postgresLookupRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresLookupRepo(db *pgxpool.Pool, log logger.Logger) lookup.Repository {
	return &postgresLookupRepo{db: db, logger: log}
}

func scanLookup(row pgx.Row) (*lookup.Lookup, error) {
	l := &lookup.Lookup{}
	var imageURL, snapshotURL sql.NullString
	var payload []byte

	err := row.Scan(
		&l.ID,
		&l.SessionID,
		&l.Platform,
		&l.Kind,
		&l.Handle,
		&imageURL,
		&snapshotURL,
		&payload,
		&l.FetchedAt,
		&l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, lookup.ErrLookupNotFound
		}
		return nil, fmt.Errorf("failed to scan lookup row: %w", err)
	}

	if imageURL.Valid {
		l.ImageURL = &imageURL.String
	}
	if snapshotURL.Valid {
		l.SnapshotURL = &snapshotURL.String
	}
	if len(payload) > 0 {
		l.Payload = payload
	}
	return l, nil
}

func (r *postgresLookupRepo) Save(ctx context.Context, l *lookup.Lookup) error {
	var payload any
	if len(l.Payload) > 0 {
		payload = []byte(l.Payload)
	}

	query := `
		INSERT INTO lookups (id, session_id, platform, kind, handle, image_url, payload, fetched_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query,
		l.ID, l.SessionID, l.Platform, l.Kind, l.Handle,
		l.ImageURL, payload, l.FetchedAt, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save lookup: %w", err)
	}
	return nil
}

func (r *postgresLookupRepo) SetSnapshotURL(ctx context.Context, id uuid.UUID, snapshotURL string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE lookups SET snapshot_url = $2 WHERE id = $1`, id, snapshotURL)
	if err != nil {
		return fmt.Errorf("failed to update lookup snapshot: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return lookup.ErrLookupNotFound
	}
	return nil
}

func (r *postgresLookupRepo) List(ctx context.Context, f lookup.Filter) ([]*lookup.Lookup, error) {
	builder := psql.Select(lookupColumns).
		From("lookups").
		OrderBy("fetched_at DESC", "created_at DESC")

	if f.Handle != "" {
		builder = builder.Where(sq.Expr("LOWER(handle) = LOWER(?)", f.Handle))
	}
	if f.Platform != "" {
		builder = builder.Where(sq.Eq{"platform": f.Platform})
	}
	if f.Limit > 0 {
		builder = builder.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		builder = builder.Offset(uint64(f.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookups: %w", err)
	}
	defer rows.Close()

	lookups := make([]*lookup.Lookup, 0)
	for rows.Next() {
		l, err := scanLookup(rows)
		if err != nil {
			return nil, err
		}
		lookups = append(lookups, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lookup rows: %w", err)
	}
	return lookups, nil
}
