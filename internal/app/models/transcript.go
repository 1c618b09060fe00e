package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Transcript is a degree record for one student issued by one institution
type Transcript struct {
	ID             uint64          `json:"id" example:"1"`
	StudentAddress common.Address  `json:"studentAddress"`
	InstitutionID  uint64          `json:"institutionId" example:"1"`
	Degree         string          `json:"degree" example:"BSc"`
	Major          string          `json:"major" example:"Computer Science"`
	Semester       string          `json:"semester,omitempty" example:"Sem 8"`
	IPFSHash       string          `json:"ipfsHash,omitempty"`
	IsVerified     bool            `json:"isVerified"`
	VerifiedBy     *common.Address `json:"verifiedBy,omitempty"`
	VerifiedAt     *time.Time      `json:"verifiedAt,omitempty"`
	GraduationDate *time.Time      `json:"graduationDate,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
