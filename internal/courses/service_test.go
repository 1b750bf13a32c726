package courses

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo := NewSnapshotRepo(filepath.Join(t.TempDir(), "courses_db.json"))
	return &Service{Repo: repo, BaseURL: "https://courses.example.com"}
}

func seed(t *testing.T, svc *Service, recs ...CourseRecord) {
	t.Helper()
	for _, rec := range recs {
		if err := svc.Repo.Put(context.Background(), rec); err != nil {
			t.Fatalf("seed %s: %v", rec.ID, err)
		}
	}
}

func TestServiceListNewestFirst(t *testing.T) {
	svc := newTestService(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seed(t, svc,
		CourseRecord{ID: "old", Owner: "u1", CreatedAt: base},
		CourseRecord{ID: "new", Owner: "u1", CreatedAt: base.Add(time.Hour)},
		CourseRecord{ID: "other", Owner: "u2", CreatedAt: base.Add(2 * time.Hour)},
	)

	recs, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].ID != "new" || recs[1].ID != "old" {
		t.Fatalf("expected newest first, got %s then %s", recs[0].ID, recs[1].ID)
	}
}

func TestServiceFindMatchesNumberAndTitle(t *testing.T) {
	svc := newTestService(t)
	seed(t, svc,
		CourseRecord{ID: "c1", Owner: "u1", Number: "101", Title: "Algebra I"},
		CourseRecord{ID: "c2", Owner: "u1", Number: "102", Title: "Geometry"},
	)

	tests := []struct {
		query string
		want  []string
	}{
		{"algebra", []string{"c1"}},
		{"ALGEBRA", []string{"c1"}},
		{"102", []string{"c2"}},
		{"calculus", nil},
	}
	for _, tc := range tests {
		recs, err := svc.Find(context.Background(), "u1", tc.query)
		if err != nil {
			t.Fatalf("Find %q: %v", tc.query, err)
		}
		if len(recs) != len(tc.want) {
			t.Fatalf("Find %q: expected %d results, got %d", tc.query, len(tc.want), len(recs))
		}
		for i, id := range tc.want {
			if recs[i].ID != id {
				t.Fatalf("Find %q: expected %s, got %s", tc.query, id, recs[i].ID)
			}
		}
	}
}

func TestServiceFindDoesNotCrossOwners(t *testing.T) {
	svc := newTestService(t)
	seed(t, svc,
		CourseRecord{ID: "c1", Owner: "u1", Title: "Algebra I"},
		CourseRecord{ID: "c2", Owner: "u2", Title: "Algebra II"},
	)

	recs, err := svc.Find(context.Background(), "u1", "algebra")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "c1" {
		t.Fatalf("expected only u1's course, got %+v", recs)
	}
}

func TestServiceFindRejectsEmptyQuery(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Find(context.Background(), "u1", "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestServiceOpenURLCarriesToken(t *testing.T) {
	svc := newTestService(t)
	rec := CourseRecord{ID: "c1", AccessToken: "s3cret+/token"}

	got := svc.OpenURL(rec)
	want := "https://courses.example.com/courses/c1/?token=s3cret%2B%2Ftoken"
	if got != want {
		t.Fatalf("OpenURL:\n got %s\nwant %s", got, want)
	}
}
