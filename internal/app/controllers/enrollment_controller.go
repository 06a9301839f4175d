package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisphere/academics/internal/app/models/dto"
	"github.com/unisphere/academics/internal/app/services"
	"github.com/unisphere/academics/internal/middleware"
)

// EnrollmentController handles enrollments and student schedules
type EnrollmentController struct {
	enrollmentService services.EnrollmentService
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{
		enrollmentService: enrollmentService,
	}
}

// Enroll places a student in a section
// POST /enrollments
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	var req dto.EnrollRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	enrollment, err := c.enrollmentService.Enroll(ctx.Request.Context(), req.StudentID, req.SectionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(enrollment, "Student enrolled"))
}

// GetEnrollment retrieves an enrollment
// GET /enrollments/:id
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	enrollment, err := c.enrollmentService.GetEnrollment(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(enrollment, ""))
}

// Withdraw ends an enrollment as WITHDRAWN
// POST /enrollments/:id/withdraw
func (c *EnrollmentController) Withdraw(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	enrollment, err := c.enrollmentService.Withdraw(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(enrollment, "Enrollment withdrawn"))
}

// Cancel ends an enrollment as CANCELLED
// POST /enrollments/:id/cancel
func (c *EnrollmentController) Cancel(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	enrollment, err := c.enrollmentService.Cancel(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(enrollment, "Enrollment cancelled"))
}

// Transfer moves an enrollment to another section
// POST /enrollments/:id/transfer
func (c *EnrollmentController) Transfer(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.TransferRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	enrollment, err := c.enrollmentService.Transfer(ctx.Request.Context(), id, req.SectionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(enrollment, "Enrollment transferred"))
}

// StudentSchedule lists the weekly slots of a student's active enrollments
// GET /students/:id/schedule
func (c *EnrollmentController) StudentSchedule(ctx *gin.Context) {
	studentID, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	schedule, err := c.enrollmentService.ListStudentSchedule(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(schedule, ""))
}
