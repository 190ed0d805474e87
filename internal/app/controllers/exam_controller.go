package controllers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	appauth "github.com/campusvirtual/backend/internal/app/auth"
	"github.com/campusvirtual/backend/internal/app/models/dto"
	"github.com/campusvirtual/backend/internal/app/services"
	"github.com/campusvirtual/backend/internal/middleware"
)

// ExamController handles exam definition, submission, correction and
// rework routes
type ExamController struct {
	examService   services.ExamService
	authorization *appauth.AuthorizationService
	validate      *validator.Validate
}

// NewExamController creates a new ExamController
func NewExamController(examService services.ExamService, authorization *appauth.AuthorizationService) *ExamController {
	// The submission payload arrives as a multipart field, outside gin's
	// binding, so the validator must read the same binding tags.
	validate := validator.New()
	validate.SetTagName("binding")

	return &ExamController{
		examService:   examService,
		authorization: authorization,
		validate:      validate,
	}
}

// CreateExam defines a new exam for a subject.
func (c *ExamController) CreateExam(ctx *gin.Context) {
	subjectID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	callerID := middleware.CallerID(ctx)
	if err := c.authorization.ValidateSubjectInstructor(ctx, callerID, subjectID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.CreateExamRequest
	if !bindJSON(ctx, &req) {
		return
	}

	exam, err := c.examService.CreateExam(ctx, subjectID, callerID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(exam))
}

// GetExamsBySubject lists a subject's exams.
func (c *ExamController) GetExamsBySubject(ctx *gin.Context) {
	subjectID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	exams, err := c.examService.GetExamsBySubject(ctx, subjectID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(exams))
}

// GetExam retrieves an exam with its questions.
func (c *ExamController) GetExam(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	exam, err := c.examService.GetExam(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(exam))
}

// DeleteExam removes an exam.
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	exam, err := c.examService.GetExam(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.authorization.ValidateSubjectInstructor(ctx, middleware.CallerID(ctx), exam.SubjectID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.examService.DeleteExam(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Examen eliminado"))
}

// parseSubmission reads the multipart submission: a JSON part named
// "answers" plus any number of audio parts named audio_<questionID>.
func (c *ExamController) parseSubmission(ctx *gin.Context) (*dto.SubmitAnswersRequest, []*multipart.FileHeader, bool) {
	payload := ctx.PostForm("answers")
	if payload == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Se requiere el campo answers")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, nil, false
	}

	var req dto.SubmitAnswersRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Formato de respuestas inválido")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, nil, false
	}
	if err := c.validate.Struct(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return nil, nil, false
	}

	var files []*multipart.FileHeader
	if form, err := ctx.MultipartForm(); err == nil {
		for _, headers := range form.File {
			files = append(files, headers...)
		}
	}

	return &req, files, true
}

// SubmitAnswers records the caller's submission for an exam.
func (c *ExamController) SubmitAnswers(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	callerID := middleware.CallerID(ctx)

	exam, err := c.examService.GetExam(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.authorization.ValidateAcceptedStudent(ctx, callerID, exam.SubjectID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	req, files, ok := c.parseSubmission(ctx)
	if !ok {
		return
	}

	set, err := c.examService.SubmitAnswers(ctx, id, callerID, req, files)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(set))
}

// GetSubmissions lists every submission for an exam.
func (c *ExamController) GetSubmissions(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	exam, err := c.examService.GetExam(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.authorization.ValidateSubjectInstructor(ctx, middleware.CallerID(ctx), exam.SubjectID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	sets, err := c.examService.GetSubmissions(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(sets))
}

// GetOwnSubmission retrieves the caller's submission for an exam.
func (c *ExamController) GetOwnSubmission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	set, err := c.examService.GetOwnSubmission(ctx, id, middleware.CallerID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(set))
}

// Correct applies the instructor's verdicts to a submission.
func (c *ExamController) Correct(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	exam, err := c.examService.GetExam(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.authorization.ValidateSubjectInstructor(ctx, middleware.CallerID(ctx), exam.SubjectID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.CorrectionsRequest
	if !bindJSON(ctx, &req) {
		return
	}

	set, err := c.examService.Correct(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(set))
}

// GetReworkQuestions returns the caller's questions flagged for rework.
func (c *ExamController) GetReworkQuestions(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	items, err := c.examService.GetReworkQuestions(ctx, id, middleware.CallerID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(items))
}

// ResubmitRework overwrites the caller's answers flagged for rework.
func (c *ExamController) ResubmitRework(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	req, files, ok := c.parseSubmission(ctx)
	if !ok {
		return
	}

	set, err := c.examService.ResubmitRework(ctx, id, middleware.CallerID(ctx), req, files)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(set))
}
