package models

import "time"

// Course is one graded entry appended to a transcript
type Course struct {
	TranscriptID   uint64    `json:"transcriptId" example:"1"`
	CourseCode     string    `json:"courseCode" example:"CS101"`
	CourseName     string    `json:"courseName" example:"Introduction to Programming"`
	Credits        int       `json:"credits" example:"3"`
	Grade          string    `json:"grade" example:"A"`
	CompletionDate time.Time `json:"completionDate"`
}
