package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/app/models/dto"
	"github.com/unisphere/academics/internal/app/services"
	"github.com/unisphere/academics/internal/middleware"
)

// ScheduleController handles schedule slots
type ScheduleController struct {
	scheduleService services.ScheduleService
}

// NewScheduleController creates a new ScheduleController
func NewScheduleController(scheduleService services.ScheduleService) *ScheduleController {
	return &ScheduleController{
		scheduleService: scheduleService,
	}
}

func slotInput(req dto.SlotRequest) services.SlotInput {
	return services.SlotInput{
		Day:    req.Day,
		Start:  req.Start,
		End:    req.End,
		RoomID: req.RoomID,
	}
}

// ListSectionSlots lists the weekly slots of a section
// GET /sections/:id/slots
func (c *ScheduleController) ListSectionSlots(ctx *gin.Context) {
	sectionID, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	slots, err := c.scheduleService.ListSectionSlots(ctx.Request.Context(), sectionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(slots, ""))
}

// CreateSlot schedules a new weekly meeting for a section
// POST /sections/:id/slots
func (c *ScheduleController) CreateSlot(ctx *gin.Context) {
	sectionID, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.SlotRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	input := slotInput(req)
	input.SectionID = sectionID
	slot, err := c.scheduleService.CreateOrUpdateSlot(ctx.Request.Context(), input)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(slot, "Slot created"))
}

// UpdateSlot moves an existing slot
// PUT /slots/:id
func (c *ScheduleController) UpdateSlot(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.SlotRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	input := slotInput(req)
	input.SlotID = id
	slot, err := c.scheduleService.CreateOrUpdateSlot(ctx.Request.Context(), input)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(slot, "Slot updated"))
}

// DeleteSlot soft-deletes a slot
// DELETE /slots/:id
func (c *ScheduleController) DeleteSlot(ctx *gin.Context) {
	id, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	if err := c.scheduleService.DeleteSlot(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// FindConflicts lists the slots of a professor, room or student calendar that
// overlap the given interval, without changing anything
// GET /conflicts?scope=PROFESSOR&scopeId=7&day=1&start=08:00&end=10:00
func (c *ScheduleController) FindConflicts(ctx *gin.Context) {
	var query dto.ConflictQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}
	start, err := models.ParseTimeOfDay(query.Start)
	if err != nil {
		badTime(ctx, "start", err)
		return
	}
	end, err := models.ParseTimeOfDay(query.End)
	if err != nil {
		badTime(ctx, "end", err)
		return
	}

	scope := models.Scope{Type: query.Scope, ID: query.ScopeID}
	candidate := models.Interval{Day: query.Day, Start: start, End: end}
	conflicts, err := c.scheduleService.FindConflicts(ctx.Request.Context(), scope, candidate, query.ExcludeSlotID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if conflicts == nil {
		conflicts = []models.ScheduleSlot{}
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(conflicts, ""))
}

func badTime(ctx *gin.Context, field string, err error) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid "+field).
		WithField(field).
		WithDetails(err.Error())
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}
