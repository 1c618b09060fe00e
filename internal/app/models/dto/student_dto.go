package dto

// RegisterStudentRequest self-registers the caller as a student
type RegisterStudentRequest struct {
	Name      string `json:"name" binding:"required" validate:"required,max=200" example:"Alice Johnson"`
	StudentID string `json:"studentId" binding:"required" validate:"required,max=64" example:"STU2024001"`
}

// StudentTranscriptsResponse lists the transcript ids of a student
type StudentTranscriptsResponse struct {
	Address       string   `json:"address"`
	TranscriptIDs []uint64 `json:"transcriptIds"`
}
