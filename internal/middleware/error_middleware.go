package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisphere/academics/internal/app/models/dto"
	"github.com/unisphere/academics/internal/pkg/apperrors"
	"github.com/unisphere/academics/internal/pkg/logger"
)

// statusFor maps an engine error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden
	case apperrors.Is(err, apperrors.ErrNoCapacity,
		apperrors.ErrDuplicateEnrollment,
		apperrors.ErrScheduleConflict,
		apperrors.ErrProfessorConflict,
		apperrors.ErrRoomConflict,
		apperrors.ErrStudentConflict,
		apperrors.ErrBelowSeatsTaken,
		apperrors.ErrInUse,
		apperrors.ErrInvalidTransition,
		apperrors.ErrConcurrentUpdate):
		return http.StatusConflict
	case apperrors.Is(err, apperrors.ErrInvalidRelation,
		apperrors.ErrSelfReference,
		apperrors.ErrCycleOrderViolation,
		apperrors.ErrCircularDependency,
		apperrors.ErrInvalidCapacity,
		apperrors.ErrInvalidInterval,
		apperrors.ErrWeightExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandleAPIError writes the error response for err. Schedule conflicts list
// the colliding slots in the details.
func HandleAPIError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error().Err(err).
			Str("path", c.FullPath()).Msg("Unhandled error")
		c.JSON(status, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
		return
	}

	detail := dto.NewErrorDetail(dto.ErrorCode(apperrors.Code(err)), err.Error())
	if status == http.StatusConflict && errors.Is(err, apperrors.ErrConcurrentUpdate) {
		detail = detail.WithSeverity(dto.ErrorSeverityWarning)
	}

	var conflict *apperrors.ConflictError
	var custom *apperrors.CustomError
	switch {
	case errors.As(err, &conflict):
		detail = detail.WithDetails(conflict.Conflicts)
	case errors.As(err, &custom) && custom.Details != nil:
		detail = detail.WithDetails(custom.Details)
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}
