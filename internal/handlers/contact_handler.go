package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/menmadev/portfolio-api/internal/models"
	"github.com/menmadev/portfolio-api/internal/services"
	"github.com/menmadev/portfolio-api/pkg/contactform"
)

type ContactHandler struct {
	service services.ContactServiceInterface
}

func NewContactHandler(service services.ContactServiceInterface) *ContactHandler {
	return &ContactHandler{service: service}
}

// Submit accepts a form-encoded, multipart or JSON contact submission.
// The body is always a SubmissionResult; the status mirrors its outcome.
func (h *ContactHandler) Submit(c *gin.Context) {
	var form models.ContactForm
	if err := c.ShouldBind(&form); err != nil {
		tree := contactform.NewErrorTree()
		tree.Errors = append(tree.Errors, "Request body could not be parsed")
		attachError(c, err)
		c.JSON(http.StatusBadRequest, contactform.ValidationFailed(tree))
		return
	}

	result := h.service.Submit(c.Request.Context(), &form, c.ClientIP())
	c.JSON(StatusForResult(result), result)
}

// StatusForResult maps a submission outcome to an HTTP status
func StatusForResult(result *models.SubmissionResult) int {
	switch result.Outcome() {
	case contactform.OutcomeSuccess:
		return http.StatusOK
	case contactform.OutcomeValidationFailed:
		return http.StatusBadRequest
	case contactform.OutcomeChallengeFailed:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
