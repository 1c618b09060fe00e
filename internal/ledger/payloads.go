package ledger

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/yigit/transcriptledger/internal/app/models"
)

// Journal payloads. They double as event data.

type InstitutionRegistered struct {
	ID                  uint64         `json:"id"`
	Name                string         `json:"name"`
	AccreditationNumber string         `json:"accreditationNumber"`
	Address             common.Address `json:"address"`
}

type InstitutionDeactivated struct {
	ID      uint64         `json:"id"`
	Address common.Address `json:"address"`
}

type StudentRegistered struct {
	Address   common.Address `json:"address"`
	Name      string         `json:"name"`
	StudentID string         `json:"studentId"`
}

type TranscriptCreated struct {
	TranscriptID   uint64         `json:"transcriptId"`
	StudentAddress common.Address `json:"studentAddress"`
	InstitutionID  uint64         `json:"institutionId"`
	Degree         string         `json:"degree"`
	Major          string         `json:"major"`
	Semester       string         `json:"semester,omitempty"`
	IPFSHash       string         `json:"ipfsHash,omitempty"`
}

type CourseAdded struct {
	TranscriptID   uint64    `json:"transcriptId"`
	CourseCode     string    `json:"courseCode"`
	CourseName     string    `json:"courseName"`
	Credits        int       `json:"credits"`
	Grade          string    `json:"grade"`
	CompletionDate time.Time `json:"completionDate"`
}

type GraduationDateSet struct {
	TranscriptID   uint64    `json:"transcriptId"`
	GraduationDate time.Time `json:"graduationDate"`
}

type TranscriptVerified struct {
	TranscriptID uint64         `json:"transcriptId"`
	Verifier     common.Address `json:"verifier"`
}

// RoleChanged is the payload of both RoleGranted and RoleRevoked
type RoleChanged struct {
	Role    models.Role    `json:"role"`
	Account common.Address `json:"account"`
}
