package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/menmadev/portfolio-api/pkg/logger"
	"github.com/menmadev/portfolio-api/pkg/metrics"
	"github.com/menmadev/portfolio-api/pkg/secrets"
	"go.uber.org/zap"
)

const (
	TurnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	HCaptchaVerifyURL  = "https://api.hcaptcha.com/siteverify"
)

// Response represents a siteverify response. Turnstile and hCaptcha share this shape.
type Response struct {
	Success     *bool    `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// SiteVerifier verifies tokens against a siteverify endpoint
type SiteVerifier struct {
	provider   Provider
	endpoint   string
	secretName secrets.Name
	secrets    SecretSource
	caller     Caller
}

// NewTurnstileVerifier creates a Cloudflare Turnstile verifier
func NewTurnstileVerifier(secretSource SecretSource, caller Caller) *SiteVerifier {
	return &SiteVerifier{
		provider:   Turnstile,
		endpoint:   TurnstileVerifyURL,
		secretName: secrets.TurnstileSecret,
		secrets:    secretSource,
		caller:     caller,
	}
}

// NewHCaptchaVerifier creates an hCaptcha verifier
func NewHCaptchaVerifier(secretSource SecretSource, caller Caller) *SiteVerifier {
	return &SiteVerifier{
		provider:   HCaptcha,
		endpoint:   HCaptchaVerifyURL,
		secretName: secrets.HCaptchaSecret,
		secrets:    secretSource,
		caller:     caller,
	}
}

// Provider returns the provider this verifier talks to
func (v *SiteVerifier) Provider() Provider {
	return v.provider
}

// Endpoint returns the verification URL
func (v *SiteVerifier) Endpoint() string {
	return v.endpoint
}

// Verify posts the token to the provider and returns its success flag
func (v *SiteVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	start := time.Now()
	provider := string(v.provider)

	ok, err := v.verify(ctx, token, remoteIP)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case !ok:
		status = "rejected"
	}
	duration := metrics.MeasureDuration(start)
	metrics.ChallengeVerificationDuration.WithLabelValues(provider, status).Observe(duration)
	metrics.ChallengeVerificationTotal.WithLabelValues(provider, status).Inc()

	if err != nil {
		logger.LogAPICall(ctx, provider, "siteverify", "error", duration, zap.Error(err))
	} else {
		logger.LogAPICall(ctx, provider, "siteverify", status, duration)
	}

	return ok, err
}

func (v *SiteVerifier) verify(ctx context.Context, token, remoteIP string) (bool, error) {
	secret, err := v.secrets.Get(ctx, v.secretName)
	if err != nil {
		return false, fmt.Errorf("failed to load %s secret: %w", v.provider, err)
	}

	data := url.Values{}
	data.Set("secret", secret)
	data.Set("response", token)
	if remoteIP != "" {
		data.Set("remoteip", remoteIP)
	}

	// NewRequest sets GetBody for strings.Reader, so the body can be replayed on retry
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to build %s request: %w", v.provider, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.caller.Do(ctx, req)
	if err != nil {
		return false, fmt.Errorf("failed to verify %s token: %w", v.provider, err)
	}
	defer resp.Body.Close()

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode %s response (status %d): %w", v.provider, resp.StatusCode, err)
	}

	if result.Success == nil {
		return false, fmt.Errorf("%s (status %d): %w", v.provider, resp.StatusCode, ErrMalformedResponse)
	}

	if !*result.Success {
		logger.Warn("Challenge token rejected",
			zap.String("provider", string(v.provider)),
			zap.Strings("error_codes", result.ErrorCodes))
	}

	return *result.Success, nil
}
