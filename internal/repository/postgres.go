package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const EventCheckoutSucceeded = "checkout.succeeded"

var ErrSessionNotFound = errors.New("checkout session not found")

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type OutboxEvent struct {
	ID          int64
	AggregateId string
	EventType   string
	Payload     []byte
}

// Repository stores checkout sessions and the outbox of events to publish.
type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "storefront_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const upsertSession = `
INSERT INTO checkout_sessions (id, user_id, kind, step, committed_resource_id, resource,
    draft_fingerprint, attempt, idempotency_key, payment_id, last_error, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
    step                  = EXCLUDED.step,
    committed_resource_id = EXCLUDED.committed_resource_id,
    resource              = EXCLUDED.resource,
    draft_fingerprint     = EXCLUDED.draft_fingerprint,
    attempt               = EXCLUDED.attempt,
    idempotency_key       = EXCLUDED.idempotency_key,
    payment_id            = EXCLUDED.payment_id,
    last_error            = EXCLUDED.last_error,
    updated_at            = EXCLUDED.updated_at`

func (r *Repository) SaveSession(ctx context.Context, s *d.CheckoutSession) error {
	return saveSession(ctx, r.db, s)
}

func saveSession(ctx context.Context, db execer, s *d.CheckoutSession) error {
	resource, err := nullableJSON(s.Resource)
	if err != nil {
		return fmt.Errorf("marshal resource: %w", err)
	}
	lastError, err := nullableJSON(s.LastError)
	if err != nil {
		return fmt.Errorf("marshal last error: %w", err)
	}
	var committedID sql.NullInt64
	if s.CommittedResourceID != nil {
		committedID = sql.NullInt64{Int64: *s.CommittedResourceID, Valid: true}
	}

	_, err = db.ExecContext(ctx, upsertSession,
		s.ID,
		s.UserID,
		s.Kind,
		s.Step,
		committedID,
		resource,
		int64(s.DraftFingerprint),
		int64(s.Attempt),
		s.IdempotencyKey,
		s.PaymentID,
		lastError,
		s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert checkout session: %w", err)
	}
	return nil
}

// CompleteSession stores the succeeded session and its outbox event in one
// transaction, so the event is published if and only if the session is saved.
func (r *Repository) CompleteSession(ctx context.Context, s *d.CheckoutSession, payload []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := saveSession(ctx, tx, s); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox_events (aggregate_id, event_type, payload) VALUES ($1, $2, $3)`,
		s.ID, EventCheckoutSucceeded, string(payload))
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM checkout_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete checkout session: %w", err)
	}
	return nil
}

const selectSession = `SELECT id, user_id, kind, step, committed_resource_id, resource,
    draft_fingerprint, attempt, idempotency_key, payment_id, last_error, updated_at
    FROM checkout_sessions`

type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) GetSession(ctx context.Context, id string) (*d.CheckoutSession, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, selectSession+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query checkout session: %w", err)
	}
	return s, nil
}

// GetStuckSessions returns succeeded sessions older than a minute that have no
// outbox event, i.e. whose completion was saved without its event.
func (r *Repository) GetStuckSessions(ctx context.Context) ([]*d.CheckoutSession, error) {
	query := selectSession + ` s
	    WHERE s.step = $1
	      AND s.updated_at < NOW() - INTERVAL '1 minute'
	      AND NOT EXISTS (SELECT 1 FROM outbox_events e WHERE e.aggregate_id = s.id::text)
	    ORDER BY s.updated_at
	    LIMIT 100`

	rows, err := r.db.QueryContext(ctx, query, d.StepSucceeded)
	if err != nil {
		return nil, fmt.Errorf("query stuck sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*d.CheckoutSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stuck session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sessions, nil
}

func scanSession(row scanner) (*d.CheckoutSession, error) {
	var s d.CheckoutSession
	var committedID sql.NullInt64
	var resource, lastError []byte
	var fingerprint, attempt int64
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Kind,
		&s.Step,
		&committedID,
		&resource,
		&fingerprint,
		&attempt,
		&s.IdempotencyKey,
		&s.PaymentID,
		&lastError,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if committedID.Valid {
		s.CommittedResourceID = &committedID.Int64
	}
	s.DraftFingerprint = uint64(fingerprint)
	s.Attempt = uint64(attempt)
	if resource != nil {
		if err := json.Unmarshal(resource, &s.Resource); err != nil {
			return nil, fmt.Errorf("unmarshal resource: %w", err)
		}
	}
	if lastError != nil {
		if err := json.Unmarshal(lastError, &s.LastError); err != nil {
			return nil, fmt.Errorf("unmarshal last error: %w", err)
		}
	}
	return &s, nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, aggregate_id, event_type, payload FROM outbox_events
		 WHERE processed_at IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateId, &e.EventType, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark outbox event %d: %w", id, err)
	}
	return nil
}

// nullableJSON marshals v, mapping a nil pointer to SQL NULL.
func nullableJSON[T any](v *T) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
