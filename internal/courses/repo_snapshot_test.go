package courses

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testRecord(id, owner string) CourseRecord {
	return CourseRecord{
		ID:          id,
		Owner:       owner,
		Number:      "101",
		Title:       "Intro",
		Filename:    "intro.zip",
		StoragePath: "/data/courses/" + id,
		AccessToken: "tok-" + id,
		CreatedAt:   time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func TestSnapshotRepoRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses_db.json")
	ctx := context.Background()

	repo := NewSnapshotRepo(path)
	want := []CourseRecord{testRecord("c1", "u1"), testRecord("c2", "u1"), testRecord("c3", "u2")}
	for _, rec := range want {
		if err := repo.Put(ctx, rec); err != nil {
			t.Fatalf("Put %s: %v", rec.ID, err)
		}
	}

	// A fresh load must yield an equal set of records, all fields intact.
	reloaded := NewSnapshotRepo(path)
	for _, rec := range want {
		got, err := reloaded.Get(ctx, rec.ID)
		if err != nil {
			t.Fatalf("Get %s after reload: %v", rec.ID, err)
		}
		if got != rec {
			t.Fatalf("record %s mismatch after reload:\n got %+v\nwant %+v", rec.ID, got, rec)
		}
	}
}

func TestSnapshotRepoGetUnknown(t *testing.T) {
	repo := NewSnapshotRepo(filepath.Join(t.TempDir(), "courses_db.json"))
	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotRepoPutOverwritesByID(t *testing.T) {
	repo := NewSnapshotRepo(filepath.Join(t.TempDir(), "courses_db.json"))
	ctx := context.Background()

	rec := testRecord("c1", "u1")
	if err := repo.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rec.Title = "Intro, revised"
	if err := repo.Put(ctx, rec); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}

	got, err := repo.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Intro, revised" {
		t.Fatalf("expected overwritten title, got %q", got.Title)
	}

	recs, err := repo.ListByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record after overwrite, got %d", len(recs))
	}
}

func TestSnapshotRepoCorruptFileFailsSoft(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses_db.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt snapshot: %v", err)
	}

	repo := NewSnapshotRepo(path)
	if _, err := repo.Get(context.Background(), "c1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected empty registry after corrupt load, got %v", err)
	}

	// The registry must remain writable after the soft failure.
	if err := repo.Put(context.Background(), testRecord("c1", "u1")); err != nil {
		t.Fatalf("Put after corrupt load: %v", err)
	}
}

func TestSnapshotRepoMissingFileStartsEmpty(t *testing.T) {
	repo := NewSnapshotRepo(filepath.Join(t.TempDir(), "nope", "courses_db.json"))
	recs, err := repo.ListByOwner(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty registry, got %d records", len(recs))
	}
}

func TestSnapshotRepoListByOwnerFilters(t *testing.T) {
	repo := NewSnapshotRepo(filepath.Join(t.TempDir(), "courses_db.json"))
	ctx := context.Background()

	for _, rec := range []CourseRecord{testRecord("c1", "u1"), testRecord("c2", "u2"), testRecord("c3", "u1")} {
		if err := repo.Put(ctx, rec); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	recs, err := repo.ListByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records for u1, got %d", len(recs))
	}
	for _, rec := range recs {
		if rec.Owner != "u1" {
			t.Fatalf("record %s has owner %s", rec.ID, rec.Owner)
		}
	}
}
