package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenRecord is an audit entry for a minted deploy token. The token
// value itself is never recorded.
type TokenRecord struct {
	ID        string
	Name      string
	App       string
	Identity  string
	CopiedVia string
	CreatedAt time.Time
}

// SecretSyncRecord is an audit entry for a secrets sync run.
type SecretSyncRecord struct {
	ID        string
	App       string
	Keys      []string
	CreatedAt time.Time
}

// RecordToken inserts an audit entry for a minted token and returns its ID.
func (d *DB) RecordToken(rec TokenRecord) (string, error) {
	if d == nil || d.conn == nil {
		return "", fmt.Errorf("db is not open")
	}
	if strings.TrimSpace(rec.Name) == "" {
		return "", fmt.Errorf("token name is required")
	}

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := d.conn.Exec(
		`INSERT INTO deploy_tokens (id, name, app, identity, copied_via, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, rec.Name, rec.App, rec.Identity, rec.CopiedVia, createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert deploy token: %w", err)
	}
	return id, nil
}

// ListTokens returns the most recent token audit entries, newest first.
func (d *DB) ListTokens(limit int) ([]TokenRecord, error) {
	if d == nil || d.conn == nil {
		return nil, fmt.Errorf("db is not open")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.conn.Query(
		`SELECT id, name, app, identity, copied_via, created_at
		   FROM deploy_tokens ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query deploy tokens: %w", err)
	}
	defer rows.Close()

	var records []TokenRecord
	for rows.Next() {
		var rec TokenRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.App, &rec.Identity, &rec.CopiedVia, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan deploy token: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RecordSecretSync inserts an audit entry for a secrets sync run.
func (d *DB) RecordSecretSync(rec SecretSyncRecord) (string, error) {
	if d == nil || d.conn == nil {
		return "", fmt.Errorf("db is not open")
	}
	if len(rec.Keys) == 0 {
		return "", fmt.Errorf("at least one key is required")
	}

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := d.conn.Exec(
		`INSERT INTO secret_syncs (id, app, keys, created_at) VALUES (?, ?, ?, ?)`,
		id, rec.App, strings.Join(rec.Keys, ","), createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert secret sync: %w", err)
	}
	return id, nil
}

// ListSecretSyncs returns the most recent secret sync entries, newest first.
func (d *DB) ListSecretSyncs(limit int) ([]SecretSyncRecord, error) {
	if d == nil || d.conn == nil {
		return nil, fmt.Errorf("db is not open")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.conn.Query(
		`SELECT id, app, keys, created_at
		   FROM secret_syncs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query secret syncs: %w", err)
	}
	defer rows.Close()

	var records []SecretSyncRecord
	for rows.Next() {
		var rec SecretSyncRecord
		var keys string
		if err := rows.Scan(&rec.ID, &rec.App, &keys, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan secret sync: %w", err)
		}
		if keys != "" {
			rec.Keys = strings.Split(keys, ",")
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
