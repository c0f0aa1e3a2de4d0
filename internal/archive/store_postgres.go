package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS generation_records (
	id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	client_id       TEXT NOT NULL DEFAULT '',
	kind            TEXT NOT NULL,
	subject         TEXT NOT NULL,
	grade           INT NOT NULL,
	topic           TEXT NOT NULL,
	content_type    TEXT NOT NULL DEFAULT '',
	curriculum_code TEXT NOT NULL,
	model           TEXT NOT NULL,
	fingerprint     TEXT NOT NULL,
	degraded        BOOLEAN NOT NULL DEFAULT FALSE,
	partial         BOOLEAN NOT NULL DEFAULT FALSE,
	tokens_used     INT NOT NULL DEFAULT 0,
	payload         JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_generation_records_subject_grade
	ON generation_records (subject, grade);
CREATE INDEX IF NOT EXISTS idx_generation_records_created_at
	ON generation_records (created_at DESC);
`

// PostgresStore is a PostgreSQL-backed Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed record store and ensures the
// schema exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, rec Record) (string, error) {
	if rec.Kind == "" {
		return "", fmt.Errorf("kind is required")
	}

	payload := rec.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var id string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO generation_records
		 (client_id, kind, subject, grade, topic, content_type, curriculum_code,
		  model, fingerprint, degraded, partial, tokens_used, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::jsonb, $14)
		 RETURNING id::text`,
		rec.ClientID, rec.Kind, rec.Subject, rec.Grade, rec.Topic,
		rec.ContentType, rec.CurriculumCode, rec.Model, rec.Fingerprint,
		rec.Degraded, rec.Partial, rec.TokensUsed, string(data), createdAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`SELECT id::text, client_id, kind, subject, grade, topic, content_type,
		        curriculum_code, model, fingerprint, degraded, partial,
		        tokens_used, payload, created_at
		 FROM generation_records
		 WHERE id = $1::uuid`,
		id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var conds []string
	var args []any
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		conds = append(conds, fmt.Sprintf("subject = $%d", len(args)))
	}
	if filter.Grade != 0 {
		args = append(args, filter.Grade)
		conds = append(conds, fmt.Sprintf("grade = $%d", len(args)))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit)

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		`SELECT id::text, client_id, kind, subject, grade, topic, content_type,
		        curriculum_code, model, fingerprint, degraded, partial,
		        tokens_used, payload, created_at
		 FROM generation_records
		 %s
		 ORDER BY created_at DESC
		 LIMIT $%d`, where, len(args)),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	var payload []byte
	if err := row.Scan(
		&rec.ID, &rec.ClientID, &rec.Kind, &rec.Subject, &rec.Grade,
		&rec.Topic, &rec.ContentType, &rec.CurriculumCode, &rec.Model,
		&rec.Fingerprint, &rec.Degraded, &rec.Partial, &rec.TokensUsed,
		&payload, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &rec.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
	}
	return &rec, nil
}
