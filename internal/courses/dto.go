package courses

import "time"

// CourseResponse is the outward-facing representation of a course.
type CourseResponse struct {
	CourseID  string    `json:"courseId"`
	Number    string    `json:"number"`
	Title     string    `json:"title"`
	OpenURL   string    `json:"openUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Service) toResponse(rec CourseRecord) CourseResponse {
	return CourseResponse{
		CourseID:  rec.ID,
		Number:    rec.Number,
		Title:     rec.Title,
		OpenURL:   s.OpenURL(rec),
		CreatedAt: rec.CreatedAt,
	}
}
