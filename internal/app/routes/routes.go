package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/transcriptledger/internal/app/controllers"
	"github.com/yigit/transcriptledger/internal/middleware"
	"github.com/yigit/transcriptledger/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	institutionController *controllers.InstitutionController,
	studentController *controllers.StudentController,
	transcriptController *controllers.TranscriptController,
	roleController *controllers.RoleController,
	ledgerController *controllers.LedgerController,
	eventsHandler *websocket.Handler,
	metricsHandler http.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := router.Group("/api/v1")

	v1.GET("/health", ledgerController.Health)
	v1.GET("/stats", ledgerController.Stats)
	if eventsHandler != nil {
		v1.GET("/events/ws", eventsHandler.HandleConnection)
	}

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/challenge", authController.Challenge)
		auth.POST("/login", authController.Login)
	}

	// --- Public read routes ---
	institutions := v1.Group("/institutions")
	{
		institutions.GET("", institutionController.ListInstitutions)
		institutions.GET("/:id", institutionController.GetInstitution)
	}

	students := v1.Group("/students")
	{
		students.GET("/:address", studentController.GetStudent)
		students.GET("/:address/transcripts", studentController.GetStudentTranscripts)
	}

	transcripts := v1.Group("/transcripts")
	{
		transcripts.GET("/:id", transcriptController.GetTranscript)
		transcripts.GET("/:id/courses", transcriptController.GetTranscriptCourses)
		transcripts.GET("/:id/gpa", transcriptController.CalculateGPA)
	}

	v1.GET("/roles/:address", roleController.GetRoles)

	// --- Authenticated write routes ---
	// Role checks happen in the ledger so that every write path enforces them.
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/institutions", institutionController.RegisterInstitution)
		authenticated.POST("/institutions/:id/deactivate", institutionController.DeactivateInstitution)

		authenticated.POST("/students", studentController.RegisterStudent)

		authenticated.POST("/transcripts", transcriptController.CreateTranscript)
		authenticated.POST("/transcripts/:id/courses", transcriptController.AddCourse)
		authenticated.PUT("/transcripts/:id/graduation-date", transcriptController.SetGraduationDate)
		authenticated.POST("/transcripts/:id/verify", transcriptController.VerifyTranscript)

		authenticated.POST("/roles/grant", roleController.GrantRole)
		authenticated.POST("/roles/revoke", roleController.RevokeRole)
	}
}
