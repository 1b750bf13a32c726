package serve

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"courses-backend/internal/courses"
)

// ErrForbidden covers a missing or wrong token and any path that would
// escape the course's storage directory.
var ErrForbidden = errors.New("forbidden")

// indexCandidates are conventional package entry points, probed in order
// when a course root is requested. Uploaded packages have no single
// standard entry file.
var indexCandidates = []string{
	"trainer/custom_trainer_cp/index.html",
	"context.html",
	"index.html",
	"help/en-US/contents/start.htm",
}

// Resolver maps (course id, token, relative path) requests onto files
// inside the course's storage directory.
type Resolver struct {
	Repo courses.Repo
}

// Resolve returns the on-disk path to serve for a request, or a denial.
// The canonicalized result is always a descendant of the course's
// canonicalized storage directory; anything else is ErrForbidden.
func (r *Resolver) Resolve(ctx context.Context, courseID, token, relPath string) (string, error) {
	rec, err := r.authorize(ctx, courseID, token)
	if err != nil {
		return "", err
	}

	root, err := filepath.EvalSymlinks(rec.StoragePath)
	if err != nil {
		return "", courses.ErrNotFound
	}

	candidate := filepath.Join(root, filepath.FromSlash(relPath))
	if !within(root, candidate) {
		return "", ErrForbidden
	}

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", courses.ErrNotFound
	}
	// The lexical check above cannot see symlink indirection; verify the
	// canonical result again.
	if !within(root, resolved) {
		return "", ErrForbidden
	}

	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		return "", courses.ErrNotFound
	}
	return resolved, nil
}

// ResolveIndex handles a request for the course root. It returns the
// relative path of the first conventional entry point that exists, or,
// when none do, a sorted listing of every .html file in the course.
func (r *Resolver) ResolveIndex(ctx context.Context, courseID, token string) (entry string, listing []string, err error) {
	rec, err := r.authorize(ctx, courseID, token)
	if err != nil {
		return "", nil, err
	}

	root, err := filepath.EvalSymlinks(rec.StoragePath)
	if err != nil {
		return "", nil, courses.ErrNotFound
	}

	for _, name := range indexCandidates {
		if info, statErr := os.Stat(filepath.Join(root, filepath.FromSlash(name))); statErr == nil && !info.IsDir() {
			return name, nil, nil
		}
	}

	listing = []string{}
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if strings.EqualFold(filepath.Ext(p), ".html") {
			rel, relErr := filepath.Rel(root, p)
			if relErr != nil {
				return relErr
			}
			listing = append(listing, filepath.ToSlash(rel))
		}
		return nil
	})
	if walkErr != nil {
		return "", nil, walkErr
	}
	sort.Strings(listing)
	return "", listing, nil
}

func (r *Resolver) authorize(ctx context.Context, courseID, token string) (courses.CourseRecord, error) {
	rec, err := r.Repo.Get(ctx, courseID)
	if err != nil {
		return courses.CourseRecord{}, err
	}
	if token == "" || token != rec.AccessToken {
		return courses.CourseRecord{}, ErrForbidden
	}
	return rec, nil
}

// within reports whether p stays at or below root after lexical cleaning.
func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
