package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"statewatch/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    full_name TEXT,
    email TEXT,
    enabled INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS user_roles (
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role TEXT NOT NULL,
    PRIMARY KEY (user_id, role)
);

CREATE TABLE IF NOT EXISTS employees (
    id TEXT PRIMARY KEY,
    user_id TEXT REFERENCES users(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_user_roles_role ON user_roles(role);
`

// Store is the SQLite-backed user/role directory.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the directory database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.DataDir, "directory.db"))
}

// OpenPath opens a directory database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply directory schema: %w", err)
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateUser inserts or replaces a user and its role assignments.
func (s *Store) CreateUser(ctx context.Context, user User) error {
	id := strings.TrimSpace(user.ID)
	if id == "" {
		return errors.New("user id must be set")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO users (id, full_name, email, enabled) VALUES (?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET full_name = excluded.full_name,
             email = excluded.email, enabled = excluded.enabled`,
		id,
		nullableString(user.FullName),
		nullableString(user.Email),
		boolToInt(user.Enabled),
	); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("clear roles: %w", err)
	}
	for _, role := range user.Roles {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO user_roles (user_id, role) VALUES (?, ?)`, id, role); err != nil {
			return fmt.Errorf("assign role %q: %w", role, err)
		}
	}
	return tx.Commit()
}

// AssignRole adds one role to an existing user.
func (s *Store) AssignRole(ctx context.Context, userID, role string) error {
	role = strings.TrimSpace(role)
	if role == "" {
		return errors.New("role must be set")
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO user_roles (user_id, role)
         SELECT id, ? FROM users WHERE id = ?`,
		role,
		userID,
	)
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		if existing, lookupErr := s.User(ctx, userID); lookupErr == nil && existing == nil {
			return fmt.Errorf("user %q does not exist", userID)
		}
	}
	return nil
}

// LinkEmployee records that an employee identifier belongs to a user.
func (s *Store) LinkEmployee(ctx context.Context, employeeID, userID string) error {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return errors.New("employee id must be set")
	}
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO employees (id, user_id) VALUES (?, ?)
         ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id`,
		employeeID,
		nullableString(strings.TrimSpace(userID)),
	); err != nil {
		return fmt.Errorf("link employee: %w", err)
	}
	return nil
}

// ListUsers returns all users ordered by identity.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, full_name, email, enabled FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range users {
		if err := s.loadRoles(ctx, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// UsersWithRole implements Directory.
func (s *Store) UsersWithRole(ctx context.Context, role string) ([]User, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT u.id, u.full_name, u.email, u.enabled
         FROM users u JOIN user_roles r ON r.user_id = u.id
         WHERE r.role = ? ORDER BY u.id`,
		strings.TrimSpace(role),
	)
	if err != nil {
		return nil, fmt.Errorf("users with role: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range users {
		if err := s.loadRoles(ctx, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// User implements Directory.
func (s *Store) User(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, full_name, email, enabled FROM users WHERE id = ?`, strings.TrimSpace(id))
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.loadRoles(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// EmployeeUser implements Directory.
func (s *Store) EmployeeUser(ctx context.Context, employeeID string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT user_id FROM employees WHERE id = ?`, strings.TrimSpace(employeeID))
	var userID sql.NullString
	if err := row.Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee link: %w", err)
	}
	if !userID.Valid || userID.String == "" {
		return nil, nil
	}
	return s.User(ctx, userID.String)
}

func (s *Store) loadRoles(ctx context.Context, user *User) error {
	rows, err := s.db.QueryContext(ctx, `SELECT role FROM user_roles WHERE user_id = ? ORDER BY role`, user.ID)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	defer rows.Close()

	user.Roles = user.Roles[:0]
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return err
		}
		user.Roles = append(user.Roles, role)
	}
	return rows.Err()
}

func scanUser(scanner interface{ Scan(dest ...any) error }) (User, error) {
	var (
		id       string
		fullName sql.NullString
		email    sql.NullString
		enabled  sql.NullInt64
	)
	if err := scanner.Scan(&id, &fullName, &email, &enabled); err != nil {
		return User{}, err
	}
	return User{
		ID:       id,
		FullName: fullName.String,
		Email:    email.String,
		Enabled:  enabled.Valid && enabled.Int64 != 0,
	}, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

var _ Directory = (*Store)(nil)

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Touch verifies the connection is usable.
func (s *Store) Touch(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}
