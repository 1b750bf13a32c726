package courses

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"courses-backend/internal/shared/telemetry"
)

// snapshotRecord is the on-disk shape of one registry entry.
type snapshotRecord struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Number    string    `json:"number"`
	Title     string    `json:"title"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotRepo implements Repo backed by a single JSON snapshot file.
// The whole mapping is rewritten on every Put; mutations are serialized
// by one lock while reads only touch the in-memory map.
type SnapshotRepo struct {
	mu      sync.RWMutex
	path    string
	records map[string]CourseRecord
}

// NewSnapshotRepo loads the snapshot at path. Loading fails soft: a
// missing or corrupt snapshot yields an empty registry. Corruption makes
// every previously ingested course unreachable, so it is logged loudly.
func NewSnapshotRepo(path string) *SnapshotRepo {
	r := &SnapshotRepo{
		path:    path,
		records: make(map[string]CourseRecord),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			telemetry.Error("registry.load_failed", map[string]any{"path": path, "err": err.Error()})
		}
		return r
	}

	var raw map[string]snapshotRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		telemetry.Error("registry.snapshot_corrupt", map[string]any{
			"path": path,
			"err":  err.Error(),
			"note": "starting with an empty registry; existing courses are unreachable",
		})
		return r
	}

	for id, rec := range raw {
		r.records[id] = CourseRecord{
			ID:          rec.ID,
			Owner:       rec.Owner,
			Number:      rec.Number,
			Title:       rec.Title,
			Filename:    rec.Filename,
			StoragePath: rec.Path,
			AccessToken: rec.Token,
			CreatedAt:   rec.CreatedAt,
		}
	}
	return r
}

// Put inserts or overwrites a record and synchronously rewrites the
// snapshot. Disk I/O happens on the calling goroutine; at one write per
// completed upload this is acceptable, though it serializes concurrent
// ingestions on the lock.
func (r *SnapshotRepo) Put(ctx context.Context, rec CourseRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = rec
	return r.save()
}

// Get returns the record for an ID.
func (r *SnapshotRepo) Get(ctx context.Context, id string) (CourseRecord, error) {
	if err := ctx.Err(); err != nil {
		return CourseRecord{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return CourseRecord{}, ErrNotFound
	}
	return rec, nil
}

// ListByOwner returns all records for an owner, unordered.
func (r *SnapshotRepo) ListByOwner(ctx context.Context, owner string) ([]CourseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []CourseRecord
	for _, rec := range r.records {
		if rec.Owner == owner {
			out = append(out, rec)
		}
	}
	return out, nil
}

// save writes the full mapping to a temp file and renames it into place
// so readers never observe a partially written snapshot. Callers hold mu.
func (r *SnapshotRepo) save() error {
	raw := make(map[string]snapshotRecord, len(r.records))
	for id, rec := range r.records {
		raw[id] = snapshotRecord{
			ID:        rec.ID,
			Owner:     rec.Owner,
			Number:    rec.Number,
			Title:     rec.Title,
			Filename:  rec.Filename,
			Path:      rec.StoragePath,
			Token:     rec.AccessToken,
			CreatedAt: rec.CreatedAt,
		}
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".courses_db-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

var _ Repo = (*SnapshotRepo)(nil)
