package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"statewatch/internal/config"
)

// Store manages record persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the records database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.DataDir, "records.db"))
}

// OpenPath opens a records database at an explicit location.
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
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts a new record and returns the stored copy.
func (s *Store) Create(ctx context.Context, rec *Record) (*Record, error) {
	if rec == nil {
		return nil, errors.New("record is nil")
	}
	if strings.TrimSpace(rec.Type) == "" || strings.TrimSpace(rec.Name) == "" {
		return nil, errors.New("record type and name must be set")
	}

	fieldsJSON, err := marshalFields(rec.Fields)
	if err != nil {
		return nil, err
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO records (record_type, name, owner, fields_json, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Type,
		rec.Name,
		nullableString(rec.Owner),
		nullableString(fieldsJSON),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	for _, extra := range rec.ExtraRecipients {
		if err := s.insertExtraRecipient(ctx, id, extra.Role); err != nil {
			return nil, err
		}
	}
	return s.GetByRef(ctx, rec.Type, rec.Name)
}

// GetByRef fetches a record by (type, name); nil when absent.
func (s *Store) GetByRef(ctx context.Context, recordType, name string) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+` FROM records WHERE record_type = ? AND name = ?`,
		recordType,
		name,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	if err := s.loadExtraRecipients(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update persists changes to an existing record. Extra-recipient entries
// are managed through their own methods, not here.
func (s *Store) Update(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	fieldsJSON, err := marshalFields(rec.Fields)
	if err != nil {
		return err
	}
	rec.UpdatedAt = time.Now().UTC()

	res, err := s.execWithRetry(
		ctx,
		`UPDATE records SET owner = ?, fields_json = ?, updated_at = ?
         WHERE record_type = ? AND name = ?`,
		nullableString(rec.Owner),
		nullableString(fieldsJSON),
		rec.UpdatedAt.Format(time.RFC3339Nano),
		rec.Type,
		rec.Name,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("record %s/%s does not exist", rec.Type, rec.Name)
	}
	return nil
}

// Remove deletes a record; its extra-recipient entries cascade away.
func (s *Store) Remove(ctx context.Context, recordType, name string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM records WHERE record_type = ? AND name = ?`, recordType, name)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// List returns records, optionally filtered by type, ordered by creation.
func (s *Store) List(ctx context.Context, recordType string) ([]*Record, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if strings.TrimSpace(recordType) == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records ORDER BY record_type, created_at`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records WHERE record_type = ? ORDER BY created_at`, recordType)
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, rec := range records {
		if err := s.loadExtraRecipients(ctx, rec); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// AddExtraRecipient attaches a role entry to a record.
func (s *Store) AddExtraRecipient(ctx context.Context, recordType, name, role string) error {
	role = strings.TrimSpace(role)
	if role == "" {
		return errors.New("role must be set")
	}
	rec, err := s.GetByRef(ctx, recordType, name)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("record %s/%s does not exist", recordType, name)
	}
	return s.insertExtraRecipient(ctx, rec.ID, role)
}

// RemoveExtraRecipient detaches a role entry from a record.
func (s *Store) RemoveExtraRecipient(ctx context.Context, recordType, name, role string) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM extra_recipients WHERE role = ? AND record_id IN
           (SELECT id FROM records WHERE record_type = ? AND name = ?)`,
		strings.TrimSpace(role),
		recordType,
		name,
	)
	if err != nil {
		return false, fmt.Errorf("remove extra recipient: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Stats returns a count of records grouped by type.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record_type, COUNT(1) FROM records GROUP BY record_type`)
	if err != nil {
		return nil, fmt.Errorf("record stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var recordType string
		var count int
		if err := rows.Scan(&recordType, &count); err != nil {
			return nil, err
		}
		stats[recordType] = count
	}
	return stats, rows.Err()
}

func (s *Store) insertExtraRecipient(ctx context.Context, recordID int64, role string) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO extra_recipients (record_id, role) VALUES (?, ?)`,
		recordID,
		strings.TrimSpace(role),
	); err != nil {
		return fmt.Errorf("insert extra recipient: %w", err)
	}
	return nil
}

func (s *Store) loadExtraRecipients(ctx context.Context, rec *Record) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, role FROM extra_recipients WHERE record_id = ? ORDER BY id`, rec.ID)
	if err != nil {
		return fmt.Errorf("load extra recipients: %w", err)
	}
	defer rows.Close()

	rec.ExtraRecipients = rec.ExtraRecipients[:0]
	for rows.Next() {
		var entry ExtraRecipient
		if err := rows.Scan(&entry.ID, &entry.Role); err != nil {
			return err
		}
		rec.ExtraRecipients = append(rec.ExtraRecipients, entry)
	}
	return rows.Err()
}

const recordColumns = "id, record_type, name, owner, fields_json, created_at, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id         int64
		recordType string
		name       string
		owner      sql.NullString
		fieldsJSON sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &recordType, &name, &owner, &fieldsJSON, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	rec := &Record{
		ID:    id,
		Type:  recordType,
		Name:  name,
		Owner: owner.String,
	}
	if fieldsJSON.Valid && fieldsJSON.String != "" {
		fields := make(map[string]string)
		if err := json.Unmarshal([]byte(fieldsJSON.String), &fields); err != nil {
			return nil, fmt.Errorf("decode record fields: %w", err)
		}
		rec.Fields = fields
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		rec.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		rec.UpdatedAt = updated
	}
	return rec, nil
}

func marshalFields(fields map[string]string) (string, error) {
	if len(fields) == 0 {
		return "", nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode record fields: %w", err)
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) execWithoutResultRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}
