package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appauth "github.com/campusvirtual/backend/internal/app/auth"
	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/app/models/dto"
	"github.com/campusvirtual/backend/internal/app/services"
	"github.com/campusvirtual/backend/internal/middleware"
)

// SubjectController handles subject, roster, material and closure routes
type SubjectController struct {
	subjectService services.SubjectService
	authorization  *appauth.AuthorizationService
}

// NewSubjectController creates a new SubjectController
func NewSubjectController(subjectService services.SubjectService, authorization *appauth.AuthorizationService) *SubjectController {
	return &SubjectController{
		subjectService: subjectService,
		authorization:  authorization,
	}
}

// CreateSubject creates a subject.
func (c *SubjectController) CreateSubject(ctx *gin.Context) {
	var req dto.CreateSubjectRequest
	if !bindJSON(ctx, &req) {
		return
	}

	subject, err := c.subjectService.CreateSubject(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(subject))
}

// GetAllSubjects lists every subject.
func (c *SubjectController) GetAllSubjects(ctx *gin.Context) {
	subjects, err := c.subjectService.GetAllSubjects(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(subjects))
}

// GetSubject retrieves a subject with roster, materials and exams.
func (c *SubjectController) GetSubject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	subject, err := c.subjectService.GetSubject(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(subject))
}

// GetOwnSubjects lists the subjects relevant to the caller: taught
// subjects for instructors, roster entries for students.
func (c *SubjectController) GetOwnSubjects(ctx *gin.Context) {
	callerID := middleware.CallerID(ctx)

	if middleware.CallerRole(ctx) == models.RoleStudent {
		enrollments, err := c.subjectService.GetSubjectsByStudent(ctx, callerID)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(enrollments))
		return
	}

	subjects, err := c.subjectService.GetSubjectsByProfessor(ctx, callerID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(subjects))
}

// AssignProfessor puts an instructor in charge of a subject.
func (c *SubjectController) AssignProfessor(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.AssignProfessorRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.subjectService.AssignProfessor(ctx, id, req.ProfessorID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Profesor asignado"))
}

// ToggleEnrollment opens or closes enrollment.
func (c *SubjectController) ToggleEnrollment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ToggleEnrollmentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.subjectService.ToggleEnrollment(ctx, id, *req.Open); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Inscripción actualizada"))
}

// Enroll adds the caller, or an admin-supplied student, to the roster.
func (c *SubjectController) Enroll(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	studentID := middleware.CallerID(ctx)
	if middleware.CallerRole(ctx) == models.RoleAdmin {
		var req dto.EnrollRequest
		if !bindJSON(ctx, &req) {
			return
		}
		studentID = req.StudentID
	}

	if err := c.subjectService.Enroll(ctx, id, studentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewMessageResponse("Inscripción registrada"))
}

// UpdateEnrollmentStatus accepts or rejects a roster entry.
func (c *SubjectController) UpdateEnrollmentStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.authorization.ValidateSubjectInstructor(ctx, middleware.CallerID(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.EnrollmentStatusRequest
	if !bindJSON(ctx, &req) {
		return
	}

	err := c.subjectService.UpdateEnrollmentStatus(ctx, id, req.StudentID, models.EnrollmentStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Estado de inscripción actualizado"))
}

// uploadMaterial is shared by the file and video endpoints.
func (c *SubjectController) uploadMaterial(ctx *gin.Context, kind models.MaterialKind) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.authorization.ValidateSubjectInstructor(ctx, middleware.CallerID(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Se requiere un archivo")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	material, err := c.subjectService.UploadMaterial(ctx, id, kind, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(material))
}

// UploadFile attaches a document to a subject.
func (c *SubjectController) UploadFile(ctx *gin.Context) {
	c.uploadMaterial(ctx, models.MaterialFile)
}

// UploadVideo attaches a video to a subject.
func (c *SubjectController) UploadVideo(ctx *gin.Context) {
	c.uploadMaterial(ctx, models.MaterialVideo)
}

// DeleteMaterial removes a material and its stored object.
func (c *SubjectController) DeleteMaterial(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	materialID, ok := parseIDParam(ctx, "materialId")
	if !ok {
		return
	}

	if err := c.authorization.ValidateSubjectInstructor(ctx, middleware.CallerID(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.subjectService.DeleteMaterial(ctx, id, materialID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Material eliminado"))
}

// CloseSubject derives transcripts and purges the subject's working data.
func (c *SubjectController) CloseSubject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.authorization.ValidateSubjectInstructor(ctx, middleware.CallerID(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	transcripts, err := c.subjectService.CloseSubject(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(transcripts))
}

// DeleteSubject hard-deletes a subject.
func (c *SubjectController) DeleteSubject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.subjectService.DeleteSubject(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Materia eliminada"))
}
