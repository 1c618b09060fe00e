package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Institution is an accredited issuer of transcripts
type Institution struct {
	ID                  uint64         `json:"id" example:"1"`
	Name                string         `json:"name" example:"Tech University"`
	AccreditationNumber string         `json:"accreditationNumber" example:"TU-ACC-2024"`
	Address             common.Address `json:"address"`
	IsActive            bool           `json:"isActive" example:"true"`
	CreatedAt           time.Time      `json:"createdAt"`
}
