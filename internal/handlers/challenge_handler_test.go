package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/menmadev/portfolio-api/config"
	"github.com/stretchr/testify/assert"
)

func TestChallengeHandler_GetConfig(t *testing.T) {
	handler := NewChallengeHandler(config.ChallengeConfig{
		TurnstileSiteKey: "0x4AAA",
		HCaptchaSiteKey:  "10000000-ffff",
		TurnstileSecret:  "must-not-leak",
	})
	router := gin.New()
	router.GET("/challenge/config", handler.GetConfig)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/challenge/config", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"provider":"turnstile","fallback":"hcaptcha","turnstileSiteKey":"0x4AAA","hcaptchaSiteKey":"10000000-ffff"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "must-not-leak")
}

func TestChallengeHandler_GetConfig_NotConfigured(t *testing.T) {
	handler := NewChallengeHandler(config.ChallengeConfig{TurnstileSiteKey: "0x4AAA"})
	router := gin.New()
	router.GET("/challenge/config", handler.GetConfig)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/challenge/config", http.NoBody))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"Challenge is not configured"}`, w.Body.String())
}
