package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/campusvirtual/backend/internal/app/controllers"
	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	subjectController *controllers.SubjectController,
	examController *controllers.ExamController,
	transcriptController *controllers.TranscriptController,
	whatsAppController *controllers.WhatsAppController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/verify", authController.Verify)
		auth.POST("/resend-code", authController.ResendCode)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		// Profile
		authenticated.GET("/profile", userController.GetProfile)
		authenticated.PUT("/profile/image", userController.UpdateProfileImage)

		// Users
		users := authenticated.Group("/users")
		{
			users.GET("/:id", userController.GetUserByID)
			users.PUT("/:id", userController.UpdateUser)

			usersAdmin := users.Group("")
			usersAdmin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				usersAdmin.GET("", userController.GetAllUsers)
				usersAdmin.PUT("/:id/role", userController.UpdateRole)
				usersAdmin.DELETE("/:id", userController.DeleteUser)
			}
		}

		// Subjects
		subjects := authenticated.Group("/subjects")
		{
			subjects.GET("", subjectController.GetAllSubjects)
			subjects.GET("/own", subjectController.GetOwnSubjects)
			subjects.GET("/:id", subjectController.GetSubject)
			subjects.POST("/:id/enroll", subjectController.Enroll)
			subjects.GET("/:id/exams", examController.GetExamsBySubject)

			subjectsStaff := subjects.Group("")
			subjectsStaff.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleInstructor))
			{
				subjectsStaff.PUT("/:id/enrollment-status", subjectController.UpdateEnrollmentStatus)
				subjectsStaff.POST("/:id/files", subjectController.UploadFile)
				subjectsStaff.POST("/:id/videos", subjectController.UploadVideo)
				subjectsStaff.DELETE("/:id/materials/:materialId", subjectController.DeleteMaterial)
				subjectsStaff.POST("/:id/exams", examController.CreateExam)
				subjectsStaff.POST("/:id/close", subjectController.CloseSubject)
			}

			subjectsAdmin := subjects.Group("")
			subjectsAdmin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				subjectsAdmin.POST("", subjectController.CreateSubject)
				subjectsAdmin.PUT("/:id/professor", subjectController.AssignProfessor)
				subjectsAdmin.PUT("/:id/enrollment", subjectController.ToggleEnrollment)
				subjectsAdmin.DELETE("/:id", subjectController.DeleteSubject)
			}
		}

		// Exams
		exams := authenticated.Group("/exams")
		{
			exams.GET("/:id", examController.GetExam)

			examsStudent := exams.Group("")
			examsStudent.Use(authMiddleware.RoleRequired(models.RoleStudent))
			{
				examsStudent.POST("/:id/answers", examController.SubmitAnswers)
				examsStudent.GET("/:id/answers/own", examController.GetOwnSubmission)
				examsStudent.GET("/:id/rework", examController.GetReworkQuestions)
				examsStudent.POST("/:id/rework", examController.ResubmitRework)
			}

			examsStaff := exams.Group("")
			examsStaff.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleInstructor))
			{
				examsStaff.GET("/:id/answers", examController.GetSubmissions)
				examsStaff.POST("/:id/corrections", examController.Correct)
				examsStaff.DELETE("/:id", examController.DeleteExam)
			}
		}

		// Transcripts
		transcripts := authenticated.Group("/transcripts")
		{
			transcripts.GET("/student/:studentId", transcriptController.GetByStudent)

			transcriptsStaff := transcripts.Group("")
			transcriptsStaff.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleInstructor))
			{
				transcriptsStaff.GET("", transcriptController.GetAll)
				transcriptsStaff.POST("", transcriptController.UpsertManual)
			}
		}

		// Messaging escape hatch
		whatsapp := authenticated.Group("/whatsapp")
		whatsapp.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			whatsapp.POST("/send", whatsAppController.SendMessage)
		}
	}
}
