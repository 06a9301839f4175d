package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/unisphere/academics/internal/app/controllers"
	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	curriculumController *controllers.CurriculumController,
	sectionController *controllers.SectionController,
	scheduleController *controllers.ScheduleController,
	enrollmentController *controllers.EnrollmentController,
	evaluationController *controllers.EvaluationController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public read routes ---
	v1.GET("/courses/:id", curriculumController.GetCourse)
	v1.GET("/sections/:id", sectionController.GetSection)
	v1.GET("/sections/:id/slots", scheduleController.ListSectionSlots)
	v1.GET("/sections/:id/criteria", evaluationController.ListCriteria)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/enrollments/:id", enrollmentController.GetEnrollment)
		authenticated.GET("/students/:id/schedule", enrollmentController.StudentSchedule)
		authenticated.GET("/conflicts", scheduleController.FindConflicts)

		// Enrollment writes are open to any authenticated user
		authenticated.POST("/enrollments", enrollmentController.Enroll)
		authenticated.POST("/enrollments/:id/withdraw", enrollmentController.Withdraw)
		authenticated.POST("/enrollments/:id/cancel", enrollmentController.Cancel)
		authenticated.POST("/enrollments/:id/transfer", enrollmentController.Transfer)

		// Curriculum, section and schedule administration
		admin := authenticated.Group("")
		admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			admin.POST("/curricula/:id/courses", curriculumController.CreateCourse)
			admin.PUT("/courses/:id", curriculumController.UpdateCourse)
			admin.DELETE("/courses/:id", curriculumController.DeleteCourse)
			admin.POST("/courses/:id/prerequisite-check", curriculumController.ValidatePrerequisite)

			admin.POST("/sections", sectionController.CreateSection)
			admin.PUT("/sections/:id/capacity", sectionController.UpdateCapacity)
			admin.PUT("/sections/:id/professor", sectionController.AssignProfessor)
			admin.DELETE("/sections/:id", sectionController.DeleteSection)

			admin.POST("/sections/:id/slots", scheduleController.CreateSlot)
			admin.PUT("/slots/:id", scheduleController.UpdateSlot)
			admin.DELETE("/slots/:id", scheduleController.DeleteSlot)
		}

		// Evaluation criteria are also managed by instructors
		graders := authenticated.Group("")
		graders.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleInstructor))
		{
			graders.POST("/sections/:id/criteria", evaluationController.CreateCriterion)
			graders.PUT("/criteria/:id", evaluationController.UpdateCriterion)
			graders.DELETE("/criteria/:id", evaluationController.DeleteCriterion)
		}
	}
}
