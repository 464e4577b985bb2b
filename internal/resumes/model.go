package resumes

import (
	"errors"
	"fmt"
	"time"

	"resume-generator/internal/structuring"
	"resume-generator/internal/users"
)

// Record is a persisted generation. It is never modified after creation.
type Record struct {
	ID              int64
	OwnerID         int64
	OriginalText    string
	Structured      structuring.Resume
	JobDescription  string
	SourceObjectKey string
	CreatedAt       time.Time
}

// Summary is the list view of a Record.
type Summary struct {
	ID             int64     `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	JobDescription string    `json:"job_description"`
	FeedbackCount  int       `json:"feedback_count"`
	HasData        bool      `json:"has_data"`
}

// Upload is one generate request.
type Upload struct {
	FileName       string
	ContentType    string
	Data           []byte
	JobDescription string
}

// View is a fetched record after the access policy has been applied.
type View struct {
	Record Record
	Paid   bool
	Data   any
}

var (
	ErrNotFound     = errors.New("resume not found")
	ErrUserNotFound = users.ErrNotFound
	ErrInvalidInput = errors.New("invalid input")
	ErrNoText       = errors.New("no text found in the uploaded file")
	ErrStructuring  = errors.New("failed to generate structured resume")

	ErrUnsupportedFile       = fmt.Errorf("%w: unsupported file type", ErrInvalidInput)
	ErrMissingJobDescription = fmt.Errorf("%w: job description is required", ErrInvalidInput)
)

// AllowedExtensions are the upload extensions accepted for generation.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
}

const listDescriptionLimit = 100

func summarize(rec Record) Summary {
	return Summary{
		ID:             rec.ID,
		CreatedAt:      rec.CreatedAt,
		JobDescription: truncate(rec.JobDescription, listDescriptionLimit),
		FeedbackCount:  len(rec.Structured.Feedback),
		HasData:        hasData(rec.Structured),
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func hasData(r structuring.Resume) bool {
	return r.Name != "" || r.Email != "" || r.ProfessionalSummary != "" ||
		len(r.Skills) > 0 || len(r.WorkExperience) > 0 || len(r.Projects) > 0 ||
		len(r.Education) > 0 || len(r.Certifications) > 0 || len(r.Feedback) > 0 ||
		r.ATSScore != 0
}
