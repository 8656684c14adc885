package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/menmadev/portfolio-api/config"
	"github.com/menmadev/portfolio-api/internal/models"
	"github.com/menmadev/portfolio-api/pkg/challenge"
)

// ChallengeHandler serves the public widget configuration
type ChallengeHandler struct {
	config config.ChallengeConfig
}

func NewChallengeHandler(cfg config.ChallengeConfig) *ChallengeHandler {
	return &ChallengeHandler{config: cfg}
}

func (h *ChallengeHandler) GetConfig(c *gin.Context) {
	if h.config.TurnstileSiteKey == "" || h.config.HCaptchaSiteKey == "" {
		respondError(c, http.StatusServiceUnavailable, "Challenge is not configured", nil)
		return
	}

	c.JSON(http.StatusOK, models.ChallengeConfigResponse{
		Provider:         challenge.Turnstile.String(),
		Fallback:         challenge.HCaptcha.String(),
		TurnstileSiteKey: h.config.TurnstileSiteKey,
		HCaptchaSiteKey:  h.config.HCaptchaSiteKey,
	})
}
