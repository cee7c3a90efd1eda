package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDBTimeout is how long sqlite waits on a locked session database.
const DefaultDBTimeout = 5 * time.Second

// ErrMissingSession is returned when no token or user id has been stored.
var ErrMissingSession = errors.New("missing login session")

const (
	keyToken     = "token"
	keyUserID    = "userId"
	keyEmail     = "email"
	keyFirstName = "firstName"
	keyLastName  = "lastName"
)

type DB struct {
	sql  *sql.DB
	path string
}

func Open(path string, timeout time.Duration) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("could not create session directory: %w", err)
		}
	}
	if timeout <= 0 {
		timeout = DefaultDBTimeout
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, timeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS session (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
    `); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{sql: db, path: path}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// SaveSession replaces the stored session in one transaction, holding the
// session lock file for the duration.
func (d *DB) SaveSession(ctx context.Context, s Session) error {
	if s.Token == "" || s.UserID == "" {
		return errors.New("refusing to store a session without token or user id")
	}
	return d.withSessionLock(ctx, func() error { return d.replaceSession(ctx, s) })
}

func (d *DB) replaceSession(ctx context.Context, s Session) (err error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM session"); err != nil {
		return err
	}

	pairs := [][2]string{
		{keyToken, s.Token},
		{keyUserID, s.UserID},
		{keyEmail, s.Email},
		{keyFirstName, s.FirstName},
		{keyLastName, s.LastName},
	}
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO session(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)`, p[0], p[1]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadSession returns the stored session, or ErrMissingSession when the
// token or user id is absent.
func (d *DB) LoadSession(ctx context.Context) (Session, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT key, value FROM session")
	if err != nil {
		return Session{}, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Session{}, err
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return Session{}, err
	}

	s := Session{
		Token:     values[keyToken],
		UserID:    values[keyUserID],
		Email:     values[keyEmail],
		FirstName: values[keyFirstName],
		LastName:  values[keyLastName],
	}
	if !s.Valid() {
		return Session{}, ErrMissingSession
	}
	return s, nil
}
