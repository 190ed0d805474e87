package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusvirtual/backend/internal/app/models/dto"
	"github.com/campusvirtual/backend/internal/pkg/messaging"
)

// SendMessageRequest is the payload for the admin messaging escape hatch
type SendMessageRequest struct {
	Phone   string `json:"numero" binding:"required"`
	Message string `json:"mensaje" binding:"required"`
}

// WhatsAppController exposes direct message sending to admins
type WhatsAppController struct {
	messenger messaging.Service
}

// NewWhatsAppController creates a new WhatsAppController
func NewWhatsAppController(messenger messaging.Service) *WhatsAppController {
	return &WhatsAppController{messenger: messenger}
}

// SendMessage delivers a free-form WhatsApp message.
func (c *WhatsAppController) SendMessage(ctx *gin.Context) {
	var req SendMessageRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.messenger.SendMessage(ctx, req.Phone, req.Message); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "No se pudo enviar el mensaje")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Mensaje enviado con éxito"))
}
