package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no archived report has the requested ID.
var ErrNotFound = errors.New("report not found")

// Record is one archived generation. Payload is the full response JSON.
type Record struct {
	ID        string          `json:"id"`
	Address   string          `json:"address"`
	Provider  string          `json:"provider"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

// Archive keeps generated reports in the property_reports table, or as one
// JSON file per report under fileDir when no pool is configured.
type Archive struct {
	pool    *pgxpool.Pool
	fileDir string
}

const createReportsTable = `
	CREATE TABLE IF NOT EXISTS property_reports (
		id         UUID PRIMARY KEY,
		address    TEXT NOT NULL,
		provider   TEXT NOT NULL,
		payload    JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// NewArchive creates an archive. If pool is nil, reports are written as
// JSON files under dir (default .cache/reports).
func NewArchive(pool *pgxpool.Pool, dir string) (*Archive, error) {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "reports")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive dir: %w", err)
		}
	}
	return &Archive{pool: pool, fileDir: dir}, nil
}

// EnsureSchema creates the reports table when backed by Postgres.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	if a.pool == nil {
		return nil
	}
	if _, err := a.pool.Exec(ctx, createReportsTable); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}
	return nil
}

// Backend names the storage in use.
func (a *Archive) Backend() string {
	if a.pool != nil {
		return "postgres"
	}
	return "file"
}

// Save stores rec, assigning an ID and timestamp when they are empty.
func (a *Archive) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	// 1. Save to DB
	if a.pool != nil {
		query := `
			INSERT INTO property_reports (id, address, provider, payload, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id)
			DO UPDATE SET payload = EXCLUDED.payload
		`
		if _, err := a.pool.Exec(ctx, query, rec.ID, rec.Address, rec.Provider, []byte(rec.Payload), rec.CreatedAt); err != nil {
			return fmt.Errorf("failed to save report to db: %w", err)
		}
		return nil
	}

	// 2. Save to File
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	path, err := a.path(rec.ID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save report to file: %w", err)
	}
	return nil
}

// Get loads a record by ID. Unknown or malformed IDs yield ErrNotFound.
func (a *Archive) Get(ctx context.Context, id string) (*Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	if a.pool != nil {
		query := `
			SELECT id::text, address, provider, payload, created_at
			FROM property_reports
			WHERE id = $1
		`
		var rec Record
		var payload []byte
		err := a.pool.QueryRow(ctx, query, id).Scan(&rec.ID, &rec.Address, &rec.Provider, &payload, &rec.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load report: %w", err)
		}
		rec.Payload = payload
		return &rec, nil
	}

	path, err := a.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report file: %w", err)
	}
	return &rec, nil
}

func (a *Archive) path(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid report id %q: %w", id, err)
	}
	return filepath.Join(a.fileDir, u.String()+".json"), nil
}
