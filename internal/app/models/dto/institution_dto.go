package dto

import "github.com/yigit/transcriptledger/internal/app/models"

// RegisterInstitutionRequest registers an institution under an address
type RegisterInstitutionRequest struct {
	Name                string `json:"name" binding:"required" validate:"required,max=200" example:"Tech University"`
	AccreditationNumber string `json:"accreditationNumber" binding:"required" validate:"required,max=100" example:"TU-ACC-2024"`
	Address             string `json:"address" binding:"required" validate:"required,eth_addr"`
}

// InstitutionListResponse is a page of institutions
type InstitutionListResponse struct {
	Institutions []models.Institution `json:"institutions"`
	Pagination   PaginationInfo       `json:"pagination"`
}

// InstitutionCreatedResponse carries the new institution id
type InstitutionCreatedResponse struct {
	ID uint64 `json:"id" example:"1"`
}
