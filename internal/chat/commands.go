package chat

import (
	"context"
	"fmt"
	"strings"
)

// ListCourses answers the "list my courses" command, newest first.
func (m *Machine) ListCourses(ctx context.Context, ownerID string) Reply {
	recs, err := m.Courses.List(ctx, ownerID)
	if err != nil || len(recs) == 0 {
		return Reply{Text: "You have no uploaded courses."}
	}

	var lines []string
	var actions []OpenAction
	for _, rec := range recs {
		lines = append(lines, fmt.Sprintf("%s — %s (ID: %s)", rec.Number, rec.Title, rec.ID))
		actions = append(actions, OpenAction{
			Label: fmt.Sprintf("Open: %s — %s", rec.Number, rec.Title),
			URL:   m.Courses.OpenURL(rec),
		})
	}
	return Reply{Text: strings.Join(lines, "\n"), Actions: actions}
}

// FindCourses answers the "find courses by text" command with a
// case-insensitive substring match over number and title.
func (m *Machine) FindCourses(ctx context.Context, ownerID, query string) Reply {
	if strings.TrimSpace(query) == "" {
		return Reply{Text: "Usage: /find <number or part of the title>"}
	}

	recs, err := m.Courses.Find(ctx, ownerID, query)
	if err != nil || len(recs) == 0 {
		return Reply{Text: "Nothing found."}
	}

	var lines []string
	var actions []OpenAction
	for _, rec := range recs {
		lines = append(lines, fmt.Sprintf("%s — %s (ID: %s)", rec.Number, rec.Title, rec.ID))
		actions = append(actions, OpenAction{
			Label: fmt.Sprintf("Open: %s — %s", rec.Number, rec.Title),
			URL:   m.Courses.OpenURL(rec),
		})
	}
	return Reply{Text: strings.Join(lines, "\n"), Actions: actions}
}
