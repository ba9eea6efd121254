package services

import (
	"fmt"
	"time"

	"github.com/pandeptwidyaop/hostbridge/internal/database"
	"github.com/pandeptwidyaop/hostbridge/internal/models"
)

const defaultAuditLimit = 50

// AuditService persists one row per invocation.
type AuditService struct {
	db *database.DB
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(db *database.DB) *AuditService {
	return &AuditService{db: db}
}

// Record stores entry. A zero CreatedAt is set to now.
func (s *AuditService) Record(entry models.AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO invocations (id, request_id, call, transport, success, error_kind, error, duration_ms, client_ip, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, nullable(entry.RequestID), entry.Call, entry.Transport, entry.Success, nullable(entry.ErrorKind), nullable(entry.Error),
		entry.DurationMS, nullable(entry.ClientIP), entry.CreatedAt.UTC())
	return err
}

// List returns recorded invocations, newest first.
func (s *AuditService) List(limit, offset int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.Query(`
		SELECT id, request_id, call, transport, success, error_kind, error, duration_ms, client_ip, created_at
		FROM invocations
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Initialize empty slice instead of nil to return [] instead of null in JSON
	entries := make([]models.AuditEntry, 0)
	for rows.Next() {
		var e models.AuditEntry
		var requestID, errorKind, errorText, clientIP *string
		var createdAt string

		if err := rows.Scan(&e.ID, &requestID, &e.Call, &e.Transport, &e.Success, &errorKind, &errorText,
			&e.DurationMS, &clientIP, &createdAt); err != nil {
			return nil, err
		}
		if requestID != nil {
			e.RequestID = *requestID
		}
		if errorKind != nil {
			e.ErrorKind = *errorKind
		}
		if errorText != nil {
			e.Error = *errorText
		}
		if clientIP != nil {
			e.ClientIP = *clientIP
		}
		if t, err := parseSQLiteTimestamp(createdAt); err == nil {
			e.CreatedAt = t
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Count returns the number of recorded invocations.
func (s *AuditService) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM invocations`).Scan(&n)
	return n, err
}

// Prune deletes invocations recorded before the cutoff.
func (s *AuditService) Prune(before time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM invocations WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// parseSQLiteTimestamp parses timestamp strings from SQLite
// which can be in various formats depending on how they were stored.
func parseSQLiteTimestamp(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", s)
}
