package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisphere/academics/internal/app/models/dto"
	"github.com/unisphere/academics/internal/app/services"
	"github.com/unisphere/academics/internal/middleware"
)

// SectionController handles offered sections and their seat ledger
type SectionController struct {
	sectionService services.SectionService
}

// NewSectionController creates a new SectionController
func NewSectionController(sectionService services.SectionService) *SectionController {
	return &SectionController{
		sectionService: sectionService,
	}
}

// CreateSection offers a course for a term
// POST /sections
func (c *SectionController) CreateSection(ctx *gin.Context) {
	var req dto.CreateSectionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	section, err := c.sectionService.CreateSection(ctx.Request.Context(), services.SectionInput{
		CourseID:       req.CourseID,
		Year:           req.Year,
		Term:           req.Term,
		ProfessorID:    req.ProfessorID,
		Capacity:       req.Capacity,
		SeatsAvailable: req.SeatsAvailable,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(section, "Section created"))
}

// GetSection retrieves a section with its seat ledger
// GET /sections/:id
func (c *SectionController) GetSection(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	section, err := c.sectionService.GetSection(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(section, ""))
}

// UpdateCapacity resizes a section
// PUT /sections/:id/capacity
func (c *SectionController) UpdateCapacity(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateCapacityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	section, err := c.sectionService.UpdateCapacity(ctx.Request.Context(), id, req.Capacity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(section, "Capacity updated"))
}

// AssignProfessor sets or clears the section professor
// PUT /sections/:id/professor
func (c *SectionController) AssignProfessor(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssignProfessorRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	section, err := c.sectionService.AssignProfessor(ctx.Request.Context(), id, req.ProfessorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(section, "Professor assigned"))
}

// DeleteSection soft-deletes a section with no active enrollments
// DELETE /sections/:id
func (c *SectionController) DeleteSection(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	if err := c.sectionService.DeleteSection(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
