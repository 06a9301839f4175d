package dto

// EnrollRequest places a student in a section.
type EnrollRequest struct {
	StudentID int64 `json:"studentId" binding:"required,gt=0"`
	SectionID int64 `json:"sectionId" binding:"required,gt=0"`
}

// TransferRequest moves an enrollment to another section.
type TransferRequest struct {
	SectionID int64 `json:"sectionId" binding:"required,gt=0"`
}
