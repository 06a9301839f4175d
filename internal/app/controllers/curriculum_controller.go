package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisphere/academics/internal/app/models/dto"
	"github.com/unisphere/academics/internal/app/services"
	"github.com/unisphere/academics/internal/middleware"
)

// CurriculumController handles course and prerequisite operations
type CurriculumController struct {
	curriculumService services.CurriculumService
}

// NewCurriculumController creates a new CurriculumController
func NewCurriculumController(curriculumService services.CurriculumService) *CurriculumController {
	return &CurriculumController{
		curriculumService: curriculumService,
	}
}

func courseInput(req dto.CourseRequest) services.CourseInput {
	return services.CourseInput{
		Code:           req.Code,
		Name:           req.Name,
		Cycle:          req.Cycle,
		Credits:        req.Credits,
		PrerequisiteID: req.PrerequisiteID,
	}
}

// CreateCourse adds a course to a curriculum
// POST /curricula/:id/courses
func (c *CurriculumController) CreateCourse(ctx *gin.Context) {
	curriculumID, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.curriculumService.CreateCourse(ctx.Request.Context(), curriculumID, courseInput(req))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(course, "Course created"))
}

// GetCourse retrieves a course by ID
// GET /courses/:id
func (c *CurriculumController) GetCourse(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	course, err := c.curriculumService.GetCourse(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course, ""))
}

// UpdateCourse replaces a course's attributes and prerequisite
// PUT /courses/:id
func (c *CurriculumController) UpdateCourse(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.curriculumService.UpdateCourse(ctx.Request.Context(), id, courseInput(req))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course, "Course updated"))
}

// DeleteCourse soft-deletes a course
// DELETE /courses/:id
func (c *CurriculumController) DeleteCourse(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	if err := c.curriculumService.DeleteCourse(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ValidatePrerequisite dry-runs a prerequisite link
// POST /courses/:id/prerequisite-check
func (c *CurriculumController) ValidatePrerequisite(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.ValidatePrerequisiteRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.curriculumService.ValidatePrerequisite(ctx.Request.Context(), id, req.PrerequisiteID, req.Cycle); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Prerequisite accepted"))
}
