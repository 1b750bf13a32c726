package courses

import "context"

// Repo defines persistence operations for the course registry.
type Repo interface {
	// Put inserts or overwrites a record by ID.
	Put(ctx context.Context, rec CourseRecord) error
	// Get returns the record for an ID, or ErrNotFound.
	Get(ctx context.Context, id string) (CourseRecord, error)
	// ListByOwner returns all records owned by a user, in no particular order.
	ListByOwner(ctx context.Context, owner string) ([]CourseRecord, error)
}
