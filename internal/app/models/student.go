package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Student is a self-registered identity that can own transcripts.
// The address is the primary key.
type Student struct {
	Address      common.Address `json:"address"`
	Name         string         `json:"name" example:"Alice Johnson"`
	StudentID    string         `json:"studentId" example:"STU2024001"`
	IsRegistered bool           `json:"isRegistered" example:"true"`
	RegisteredAt time.Time      `json:"registeredAt"`
}
