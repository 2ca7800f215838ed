package models

import "time"

// ImportTarget names the collection an import feeds.
type ImportTarget string

const (
	TargetCalendar  ImportTarget = "calendar"
	TargetCourses   ImportTarget = "courses"
	TargetDirectory ImportTarget = "directory"
	TargetStudents  ImportTarget = "students"
)

func (t ImportTarget) Valid() bool {
	switch t {
	case TargetCalendar, TargetCourses, TargetDirectory, TargetStudents:
		return true
	}
	return false
}

// ImportPreview is what the admin sees before confirming an import.
type ImportPreview struct {
	ID          string       `json:"id"`
	Target      ImportTarget `json:"target"`
	FileName    string       `json:"fileName"`
	SourcePath  string       `json:"sourcePath,omitempty"`
	Sheet       string       `json:"sheet,omitempty"`
	HeaderRow   int          `json:"headerRow"`
	Count       int          `json:"count"`
	SkippedRows []int        `json:"skippedRows"`
	Duplicates  int          `json:"duplicates"`
	Records     interface{}  `json:"records"`
	CreatedAt   time.Time    `json:"createdAt"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

type UpsertSummary struct {
	Collection string `json:"collection"`
	Created    int    `json:"created"`
	Updated    int    `json:"updated"`
	Total      int    `json:"total"`
}

type UploadFile struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	ETag         string    `json:"etag"`
	Version      string    `json:"version,omitempty"`
}

type PresignedURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	FileName  string    `json:"fileName"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
