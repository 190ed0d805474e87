package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/app/models/dto"
	"github.com/campusvirtual/backend/internal/app/services"
	"github.com/campusvirtual/backend/internal/middleware"
	"github.com/campusvirtual/backend/internal/pkg/apperrors"
)

// TranscriptController handles final-grade record routes
type TranscriptController struct {
	transcriptService services.TranscriptService
}

// NewTranscriptController creates a new TranscriptController
func NewTranscriptController(transcriptService services.TranscriptService) *TranscriptController {
	return &TranscriptController{transcriptService: transcriptService}
}

// GetAll lists every transcript.
func (c *TranscriptController) GetAll(ctx *gin.Context) {
	transcripts, err := c.transcriptService.GetAll(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(transcripts))
}

// GetByStudent lists one student's transcripts. Students may only read
// their own.
func (c *TranscriptController) GetByStudent(ctx *gin.Context) {
	studentID, ok := parseIDParam(ctx, "studentId")
	if !ok {
		return
	}

	if middleware.CallerRole(ctx) == models.RoleStudent && middleware.CallerID(ctx) != studentID {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	transcripts, err := c.transcriptService.GetByStudent(ctx, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(transcripts))
}

// UpsertManual records or amends a final status by hand.
func (c *TranscriptController) UpsertManual(ctx *gin.Context) {
	var req dto.UpsertTranscriptRequest
	if !bindJSON(ctx, &req) {
		return
	}

	transcript, err := c.transcriptService.UpsertManual(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(transcript))
}
