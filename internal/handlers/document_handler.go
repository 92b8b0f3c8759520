package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studyleave/studyleave-api/internal/models"
	"github.com/studyleave/studyleave-api/internal/services"
	apperrors "github.com/studyleave/studyleave-api/pkg/errors"
)

type DocumentHandler struct {
	service services.DocumentServiceInterface
}

func NewDocumentHandler(service services.DocumentServiceInterface) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// BuildDocument handles POST /document/build: validates the request form and
// returns the compiled PDF inline, or a structured error object.
func (h *DocumentHandler) BuildDocument(c *gin.Context) {
	var req models.DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request", err.Error(), err)
		return
	}

	pdf, err := h.service.BuildDocument(c.Request.Context(), &req)
	if err != nil {
		var verrs models.ValidationErrors
		if errors.As(err, &verrs) {
			attachError(c, err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "Validation failed",
				"message": "The request data is invalid",
				"details": verrs,
			})
			return
		}

		attachError(c, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Document generation failed",
			"message": generationMessage(err),
		})
		return
	}

	c.Header("Content-Disposition", "inline; filename=document.pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GetActivityTypes handles GET /document/activity-types.
func (h *DocumentHandler) GetActivityTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"activity_types": h.service.ActivityTypes(),
	})
}

// generationMessage strips the sentinel suffix so the client sees the
// underlying compiler message only.
func generationMessage(err error) string {
	return strings.TrimSuffix(err.Error(), ": "+apperrors.ErrRenderFailed.Error())
}
