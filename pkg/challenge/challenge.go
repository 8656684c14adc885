package challenge

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/menmadev/portfolio-api/pkg/secrets"
)

// Provider identifies a bot-challenge vendor
type Provider string

const (
	Turnstile Provider = "turnstile"
	HCaptcha  Provider = "hcaptcha"
)

// Form field names the browser widgets post their tokens under
const (
	TurnstileFormField = "cf-turnstile-response"
	HCaptchaFormField  = "h-captcha-response"
)

// ErrMalformedResponse is returned when a siteverify body has no boolean success field
var ErrMalformedResponse = errors.New("malformed challenge verification response")

// FormField returns the form field carrying this provider's token
func (p Provider) FormField() string {
	switch p {
	case Turnstile:
		return TurnstileFormField
	case HCaptcha:
		return HCaptchaFormField
	default:
		return ""
	}
}

// String implements fmt.Stringer
func (p Provider) String() string {
	return string(p)
}

// Verifier checks a challenge-response token with its provider.
// A false result means the provider rejected the token; an error means the
// verification itself could not be completed.
type Verifier interface {
	Provider() Provider
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// SecretSource resolves the shared secret for a provider
type SecretSource interface {
	Get(ctx context.Context, name secrets.Name) (string, error)
}

// Caller issues outbound verification requests
type Caller interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Select picks the provider whose token is populated. Turnstile is checked
// first, so it wins when both are present.
func Select(turnstileToken, hcaptchaToken string) (Provider, string, bool) {
	if turnstileToken != "" {
		return Turnstile, turnstileToken, true
	}
	if hcaptchaToken != "" {
		return HCaptcha, hcaptchaToken, true
	}
	return "", "", false
}

// Registry dispatches to the verifier registered for a provider
type Registry struct {
	verifiers map[Provider]Verifier
}

// NewRegistry creates a registry from verifiers, keyed by their provider
func NewRegistry(verifiers ...Verifier) *Registry {
	r := &Registry{verifiers: make(map[Provider]Verifier, len(verifiers))}
	for _, v := range verifiers {
		r.verifiers[v.Provider()] = v
	}
	return r
}

// Get returns the verifier for provider
func (r *Registry) Get(provider Provider) (Verifier, bool) {
	v, ok := r.verifiers[provider]
	return v, ok
}

// Verify dispatches to the provider's verifier
func (r *Registry) Verify(ctx context.Context, provider Provider, token, remoteIP string) (bool, error) {
	v, ok := r.Get(provider)
	if !ok {
		return false, fmt.Errorf("no verifier registered for %q", provider)
	}
	return v.Verify(ctx, token, remoteIP)
}
