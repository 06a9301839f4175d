package dto

// CourseRequest is the body of course create and update calls.
type CourseRequest struct {
	Code           string `json:"code" binding:"required,max=32"`
	Name           string `json:"name" binding:"required,max=200"`
	Cycle          int    `json:"cycle" binding:"required,gte=1"`
	Credits        int    `json:"credits" binding:"gte=0"`
	PrerequisiteID *int64 `json:"prerequisiteId" binding:"omitempty,gt=0"`
}

// ValidatePrerequisiteRequest asks whether a link would be accepted without
// saving it. The dependent course comes from the path.
type ValidatePrerequisiteRequest struct {
	PrerequisiteID int64 `json:"prerequisiteId" binding:"required,gt=0"`
	Cycle          int   `json:"cycle" binding:"required,gte=1"`
}
