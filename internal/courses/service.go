package courses

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Service contains query logic over the course registry.
type Service struct {
	Repo    Repo
	BaseURL string
}

// List returns the requester's courses, newest first.
func (s *Service) List(ctx context.Context, owner string) ([]CourseRecord, error) {
	if owner == "" {
		return nil, ErrInvalidInput
	}
	recs, err := s.Repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	return recs, nil
}

// Find returns the requester's courses whose number or title contains the
// query, case-insensitively.
func (s *Service) Find(ctx context.Context, owner, query string) ([]CourseRecord, error) {
	if owner == "" {
		return nil, ErrInvalidInput
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, ErrInvalidInput
	}
	recs, err := s.Repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	var out []CourseRecord
	for _, rec := range recs {
		haystack := strings.ToLower(rec.Number) + " " + strings.ToLower(rec.Title)
		if strings.Contains(haystack, q) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// OpenURL builds the public entry URL for a course, carrying its access token.
func (s *Service) OpenURL(rec CourseRecord) string {
	return fmt.Sprintf("%s/courses/%s/?token=%s", s.BaseURL, rec.ID, url.QueryEscape(rec.AccessToken))
}
