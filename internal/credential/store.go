// Package credential persists OAuth credentials and manages their
// refresh lifecycle. Credential records live in an embedded SQLite
// database; at most one record per service is active at a time, and a
// record whose refresh token has been revoked is deactivated rather
// than deleted so the history survives for diagnosis.
package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".
)

// ServiceGoogleDrive is the service name under which Drive credentials
// are stored.
const ServiceGoogleDrive = "google-drive"

// ErrNoCredential is returned when no active credential record exists
// for the requested service.
var ErrNoCredential = errors.New("no active credential")

// Record is one stored credential: the durable refresh token plus the
// most recently minted access token and its expiry.
type Record struct {
	ID           int64
	Service      string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Active       bool
}

// Store persists credential records in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStore opens the credential database at dbPath and applies
// migrations. Use ":memory:" for tests.
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("credential: open sqlite: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("credential: set WAL mode: %w", err)
	}

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Active returns the newest active credential record for a service, or
// ErrNoCredential if none exists.
func (s *Store) Active(ctx context.Context, service string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, service, access_token, refresh_token, expires_at, is_active
		FROM credentials
		WHERE service = ? AND is_active = 1
		ORDER BY id DESC
		LIMIT 1`, service)

	var rec Record
	var expiresAt int64

	err := row.Scan(&rec.ID, &rec.Service, &rec.AccessToken, &rec.RefreshToken, &expiresAt, &rec.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoCredential
	}
	if err != nil {
		return nil, fmt.Errorf("credential: loading active record: %w", err)
	}

	if expiresAt > 0 {
		rec.ExpiresAt = time.Unix(expiresAt, 0)
	}

	return &rec, nil
}

// Save stores a new credential record for a service and deactivates any
// record that came before it. Returns the new record's ID.
func (s *Store) Save(ctx context.Context, rec *Record) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("credential: begin save: %w", err)
	}
	defer tx.Rollback()

	nowUnix := s.now().Unix()

	if _, err := tx.ExecContext(ctx, `
		UPDATE credentials SET is_active = 0, updated_at = ?
		WHERE service = ? AND is_active = 1`, nowUnix, rec.Service); err != nil {
		return 0, fmt.Errorf("credential: deactivating prior records: %w", err)
	}

	var expiresAt int64
	if !rec.ExpiresAt.IsZero() {
		expiresAt = rec.ExpiresAt.Unix()
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO credentials (service, access_token, refresh_token, expires_at, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)`,
		rec.Service, rec.AccessToken, rec.RefreshToken, expiresAt, nowUnix, nowUnix)
	if err != nil {
		return 0, fmt.Errorf("credential: inserting record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("credential: reading insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("credential: committing save: %w", err)
	}

	s.logger.Info("saved credential",
		slog.String("service", rec.Service),
		slog.Int64("id", id),
	)

	return id, nil
}

// UpdateAccessToken records a freshly minted access token and its
// expiry on an existing record.
func (s *Store) UpdateAccessToken(ctx context.Context, id int64, accessToken string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE credentials SET access_token = ?, expires_at = ?, updated_at = ?
		WHERE id = ?`,
		accessToken, expiresAt.Unix(), s.now().Unix(), id)
	if err != nil {
		return fmt.Errorf("credential: updating access token: %w", err)
	}

	return nil
}

// Deactivate marks a record inactive. Called when the provider reports
// the refresh token revoked, so subsequent lookups fail fast instead of
// retrying a dead credential.
func (s *Store) Deactivate(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE credentials SET is_active = 0, updated_at = ?
		WHERE id = ?`, s.now().Unix(), id)
	if err != nil {
		return fmt.Errorf("credential: deactivating record: %w", err)
	}

	s.logger.Warn("deactivated credential", slog.Int64("id", id))

	return nil
}
