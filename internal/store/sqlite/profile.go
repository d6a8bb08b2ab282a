// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"iter"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/kindred-dev/kindred/internal/interest"
	"github.com/kindred-dev/kindred/internal/store"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

// Compile-time interface check.
var _ store.ProfileStore = (*ProfileStore)(nil)

// ProfileStore implements store.ProfileStore backed by SQLite.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore opens (or creates) a SQLite database at dbPath and
// initialises the profiles table.
func NewProfileStore(dbPath string) (*ProfileStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, kerr.Errorf(kerr.CodeStoreDatabaseFailure, "opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, kerr.Errorf(kerr.CodeStoreDatabaseFailure, "pinging sqlite db: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, kerr.Errorf(kerr.CodeStoreDatabaseFailure, "migrating sqlite db: %w", err)
	}

	return &ProfileStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS profiles (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	category   TEXT NOT NULL CHECK (category IN ('M', 'F')),
	city       TEXT NOT NULL DEFAULT '',
	interests  INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_profiles_category ON profiles(category);
`
	_, err := db.Exec(ddl)
	return err
}

// Close closes the underlying database connection.
func (s *ProfileStore) Close() error {
	return s.db.Close()
}

const profileColumns = `id, name, email, category, city, interests, created_at, updated_at`

func (s *ProfileStore) CreateProfile(ctx context.Context, p *store.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	const q = `INSERT INTO profiles (name, email, category, city, interests, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, q,
		p.Name,
		p.Email,
		string(p.Category),
		p.City,
		int64(p.Interests),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return kerr.Wrap(store.ErrConflict, kerr.CodeStoreProfileCreateConflict,
				"email "+p.Email+" already registered")
		}
		return dbFailure(err, "creating profile")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return dbFailure(err, "reading new profile id")
	}

	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (s *ProfileStore) GetProfile(ctx context.Context, id int64) (*store.Profile, error) {
	return getProfile(ctx, s.db, id, kerr.CodeStoreProfileGetNotFound)
}

func (s *ProfileStore) UpdateInterests(ctx context.Context, id int64, interests interest.Vector) (*store.Profile, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, dbFailure(err, "beginning tx")
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx, `UPDATE profiles SET interests = ?, updated_at = ? WHERE id = ?`,
		int64(interests), formatTime(time.Now()), id)
	if err != nil {
		return nil, dbFailure(err, "updating interests")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, dbFailure(err, "checking rows affected")
	}
	if rows == 0 {
		return nil, notFound(kerr.CodeStoreProfileUpdateNotFound, id)
	}

	p, err := getProfile(ctx, tx, id, kerr.CodeStoreProfileUpdateNotFound)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, dbFailure(err, "committing interests update")
	}
	return p, nil
}

func (s *ProfileStore) DeleteProfile(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return dbFailure(err, "deleting profile")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return dbFailure(err, "checking rows affected")
	}
	if rows == 0 {
		return notFound(kerr.CodeStoreProfileDeleteNotFound, id)
	}
	return nil
}

func (s *ProfileStore) ListProfiles(ctx context.Context, opts store.ListOpts) ([]*store.Profile, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY id LIMIT ? OFFSET ?`, opts.Limit, opts.Offset)
	if err != nil {
		return nil, dbFailure(err, "listing profiles")
	}
	defer rows.Close()

	profiles := []*store.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbFailure(err, "iterating profiles")
	}
	return profiles, nil
}

func (s *ProfileStore) Candidates(ctx context.Context, excludeID int64, excludeCategory store.Category) iter.Seq2[*store.Profile, error] {
	return func(yield func(*store.Profile, error) bool) {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+profileColumns+` FROM profiles WHERE category <> ? AND id <> ? ORDER BY id`,
			string(excludeCategory), excludeID)
		if err != nil {
			yield(nil, dbFailure(err, "querying candidates"))
			return
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProfile(rows)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, dbFailure(err, "iterating candidates"))
		}
	}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getProfile(ctx context.Context, q queryer, id int64, code kerr.Code) (*store.Profile, error) {
	p, err := scanProfile(q.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(code, id)
	}
	return p, err
}

func scanProfile(row scanner) (*store.Profile, error) {
	var (
		p                    store.Profile
		category             string
		interests            int64
		createdAt, updatedAt string
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&category,
		&p.City,
		&interests,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, dbFailure(err, "scanning profile row")
	}

	p.Category = store.Category(category)
	p.Interests = interest.Vector(interests)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func notFound(code kerr.Code, id int64) error {
	return kerr.Wrap(store.ErrNotFound, code, "profile not found", kerr.FieldUserID(id))
}

func dbFailure(err error, msg string) error {
	return kerr.Wrap(errors.Join(store.ErrDatabase, err), kerr.CodeStoreDatabaseFailure, msg)
}

// formatTime serialises a time.Time to RFC3339 with nanosecond precision.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime deserialises a time string stored in the database.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
