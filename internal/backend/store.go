package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"spysignal/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store persists users and message records in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the SQLite database at path and migrates it.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA synchronous = NORMAL;`,
		`PRAGMA busy_timeout = 5000;`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// migrate creates the tables and indexes. It is idempotent.
func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  public_key TEXT NOT NULL,
  created_at INTEGER NOT NULL -- unix nano
);

CREATE TABLE IF NOT EXISTS messages (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  from_id INTEGER NOT NULL,
  to_id INTEGER NOT NULL,
  iv TEXT NOT NULL,
  ciphertext TEXT NOT NULL,
  created_at INTEGER NOT NULL -- unix nano
);

CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages (from_id, to_id, created_at);
CREATE INDEX IF NOT EXISTS idx_messages_to ON messages (to_id);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// RegisterUser creates username, or replaces its public key if it exists.
func (s *Store) RegisterUser(ctx context.Context, username, publicKey string) (domain.PeerIdentity, error) {
	const q = `
INSERT INTO users (username, public_key, created_at) VALUES (?, ?, ?)
ON CONFLICT(username) DO UPDATE SET public_key = excluded.public_key
RETURNING id, username, public_key`
	var u domain.PeerIdentity
	err := s.db.QueryRowContext(ctx, q, username, publicKey, time.Now().UnixNano()).
		Scan(&u.ID, &u.Username, &u.PublicKey)
	if err != nil {
		return domain.PeerIdentity{}, fmt.Errorf("register user: %w", err)
	}
	return u, nil
}

// SearchUsers returns users whose name contains query, ignoring ASCII case.
func (s *Store) SearchUsers(ctx context.Context, query string) ([]domain.PeerIdentity, error) {
	const q = `SELECT id, username, public_key FROM users WHERE username LIKE ? ESCAPE '\' ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, "%"+escapeLike(query)+"%")
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	out := []domain.PeerIdentity{}
	for rows.Next() {
		var u domain.PeerIdentity
		if err := rows.Scan(&u.ID, &u.Username, &u.PublicKey); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetUser returns the user with id, or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id domain.UserID) (domain.PeerIdentity, error) {
	const q = `SELECT id, username, public_key FROM users WHERE id = ?`
	var u domain.PeerIdentity
	err := s.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Username, &u.PublicKey)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PeerIdentity{}, ErrNotFound
	}
	if err != nil {
		return domain.PeerIdentity{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// InsertMessage stores rec and returns it with its id and timestamp set.
func (s *Store) InsertMessage(ctx context.Context, rec domain.WireRecord) (domain.WireRecord, error) {
	const q = `INSERT INTO messages (from_id, to_id, iv, ciphertext, created_at) VALUES (?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, q, rec.FromID, rec.ToID, rec.IV, rec.Ciphertext, now.UnixNano())
	if err != nil {
		return domain.WireRecord{}, fmt.Errorf("insert message: %w", err)
	}
	if rec.ID, err = res.LastInsertId(); err != nil {
		return domain.WireRecord{}, err
	}
	rec.CreatedAt = now
	return rec, nil
}

// History returns the records exchanged between a and b, oldest first.
func (s *Store) History(ctx context.Context, a, b domain.UserID) ([]domain.WireRecord, error) {
	const q = `
SELECT id, from_id, to_id, iv, ciphertext, created_at FROM messages
WHERE (from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)
ORDER BY created_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, q, a, b, b, a)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	out := []domain.WireRecord{}
	for rows.Next() {
		var (
			rec domain.WireRecord
			ts  int64
		)
		if err := rows.Scan(&rec.ID, &rec.FromID, &rec.ToID, &rec.IV, &rec.Ciphertext, &ts); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(0, ts).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
