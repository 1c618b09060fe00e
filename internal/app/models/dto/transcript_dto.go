package dto

import "time"

// CreateTranscriptRequest opens a transcript for a registered student
type CreateTranscriptRequest struct {
	StudentAddress string `json:"studentAddress" binding:"required" validate:"required,eth_addr"`
	Degree         string `json:"degree" binding:"required" validate:"required,max=200" example:"BSc"`
	Major          string `json:"major" binding:"required" validate:"required,max=200" example:"Computer Science"`
	Semester       string `json:"semester" validate:"max=64" example:"Sem 8"`
	IPFSHash       string `json:"ipfsHash" validate:"max=128" example:"QmTest123"`
}

// TranscriptCreatedResponse carries the new transcript id
type TranscriptCreatedResponse struct {
	ID uint64 `json:"id" example:"1"`
}

// AddCourseRequest appends a graded course
type AddCourseRequest struct {
	CourseCode     string    `json:"courseCode" binding:"required" validate:"required,max=32" example:"CS101"`
	CourseName     string    `json:"courseName" binding:"required" validate:"required,max=200" example:"Introduction to Programming"`
	Credits        int       `json:"credits" binding:"required" validate:"required,gt=0,lte=100" example:"3"`
	Grade          string    `json:"grade" binding:"required" validate:"required,max=2" example:"A"`
	CompletionDate time.Time `json:"completionDate" binding:"required"`
}

// SetGraduationDateRequest records the graduation date
type SetGraduationDateRequest struct {
	GraduationDate time.Time `json:"graduationDate" binding:"required"`
}

// GPAResponse is the credit-weighted GPA times 100
type GPAResponse struct {
	TranscriptID uint64 `json:"transcriptId" example:"1"`
	GPA          uint64 `json:"gpa" example:"350"`
}

// StatsResponse reports ledger totals
type StatsResponse struct {
	TotalInstitutions uint64 `json:"totalInstitutions" example:"2"`
	TotalTranscripts  uint64 `json:"totalTranscripts" example:"7"`
	JournalHead       uint64 `json:"journalHead" example:"31"`
}
