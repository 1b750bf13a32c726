package courses

import "time"

// CourseRecord represents one ingested content package owned by a user.
// ID, Owner, StoragePath, AccessToken and CreatedAt are set at ingestion
// and never change; Number and Title only change via re-ingestion.
type CourseRecord struct {
	ID          string
	Owner       string
	Number      string
	Title       string
	Filename    string
	StoragePath string
	AccessToken string
	CreatedAt   time.Time
}
