package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisphere/academics/internal/app/models/dto"
	"github.com/unisphere/academics/internal/app/services"
	"github.com/unisphere/academics/internal/middleware"
)

// EvaluationController handles evaluation criteria
type EvaluationController struct {
	evaluationService services.EvaluationService
}

// NewEvaluationController creates a new EvaluationController
func NewEvaluationController(evaluationService services.EvaluationService) *EvaluationController {
	return &EvaluationController{
		evaluationService: evaluationService,
	}
}

// ListCriteria lists the active criteria of a section
// GET /sections/:id/criteria
func (c *EvaluationController) ListCriteria(ctx *gin.Context) {
	sectionID, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	criteria, err := c.evaluationService.ListCriteria(ctx.Request.Context(), sectionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(criteria, ""))
}

// CreateCriterion adds a criterion to a section
// POST /sections/:id/criteria
func (c *EvaluationController) CreateCriterion(ctx *gin.Context) {
	sectionID, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CriterionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	criterion, err := c.evaluationService.CreateCriterion(ctx.Request.Context(), sectionID, req.Name, req.Weight)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(criterion, "Criterion created"))
}

// UpdateCriterion renames or reweights a criterion
// PUT /criteria/:id
func (c *EvaluationController) UpdateCriterion(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CriterionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	criterion, err := c.evaluationService.UpdateCriterion(ctx.Request.Context(), id, req.Name, req.Weight)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(criterion, "Criterion updated"))
}

// DeleteCriterion soft-deletes an ungraded criterion
// DELETE /criteria/:id
func (c *EvaluationController) DeleteCriterion(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	if err := c.evaluationService.DeleteCriterion(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
