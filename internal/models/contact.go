package models

import (
	"github.com/menmadev/portfolio-api/pkg/contactform"
)

// ContactForm is the raw contact submission as posted by the browser.
// Token fields are empty when the widget did not produce a token.
type ContactForm struct {
	Name              string `form:"name" json:"name"`
	Email             string `form:"email" json:"email"`
	Subject           string `form:"subject" json:"subject"`
	Message           string `form:"message" json:"message"`
	TurnstileResponse string `form:"cf-turnstile-response" json:"cf-turnstile-response"`
	HCaptchaResponse  string `form:"h-captcha-response" json:"h-captcha-response"`
}

// Values returns the user-entered fields for validation
func (f *ContactForm) Values() contactform.FormValues {
	return contactform.FormValues{
		Name:    f.Name,
		Email:   f.Email,
		Subject: f.Subject,
		Message: f.Message,
	}
}

// SubmissionResult is the typed outcome returned to the browser
type SubmissionResult = contactform.Result

// ChallengeConfigResponse tells the browser which widgets to render
type ChallengeConfigResponse struct {
	Provider         string `json:"provider"`
	Fallback         string `json:"fallback"`
	TurnstileSiteKey string `json:"turnstileSiteKey"`
	HCaptchaSiteKey  string `json:"hcaptchaSiteKey"`
}
