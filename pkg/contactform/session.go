package contactform

import (
	"errors"

	"github.com/menmadev/portfolio-api/pkg/challenge"
)

// ErrNoMoreFallback is returned when the fallback provider has also failed
var ErrNoMoreFallback = errors.New("no more fallback options available")

// FallbackState tracks the one-way provider fallback: primary, then fallback,
// then exhausted. There is no way back to an earlier state.
type FallbackState int

const (
	// FallbackAvailable means the primary provider is active
	FallbackAvailable FallbackState = iota
	// FallbackActive means the fallback provider is active
	FallbackActive
	// FallbackExhausted means the fallback provider failed too
	FallbackExhausted
)

// String implements fmt.Stringer
func (s FallbackState) String() string {
	switch s {
	case FallbackAvailable:
		return "available"
	case FallbackActive:
		return "active"
	default:
		return "exhausted"
	}
}

const (
	primaryProvider  = challenge.Turnstile
	fallbackProvider = challenge.HCaptcha
)

// ChallengeSession is the browser-side challenge widget state
type ChallengeSession struct {
	fallback FallbackState
	token    string
}

// NewChallengeSession starts on the primary provider with no token
func NewChallengeSession() *ChallengeSession {
	return &ChallengeSession{fallback: FallbackAvailable}
}

// Provider returns the active provider
func (s *ChallengeSession) Provider() challenge.Provider {
	if s.fallback == FallbackAvailable {
		return primaryProvider
	}
	return fallbackProvider
}

// FallbackState returns the fallback state
func (s *ChallengeSession) FallbackState() FallbackState {
	return s.fallback
}

// Token returns the current challenge token, empty if none
func (s *ChallengeSession) Token() string {
	return s.token
}

// HasToken reports whether a token is held
func (s *ChallengeSession) HasToken() bool {
	return s.token != ""
}

// OnSuccess stores the token the widget issued
func (s *ChallengeSession) OnSuccess(token string) {
	s.token = token
}

// OnExpire drops an expired token
func (s *ChallengeSession) OnExpire() {
	s.token = ""
}

// OnError handles a widget error. A primary widget error switches to the
// fallback provider; a fallback widget error only clears the token.
func (s *ChallengeSession) OnError() {
	s.token = ""
	if s.fallback == FallbackAvailable {
		s.fallback = FallbackActive
	}
}

// Reset clears the token. The active provider is kept.
func (s *ChallengeSession) Reset() {
	s.token = ""
}

// Fallback switches from the primary to the fallback provider. Called on the
// fallback provider it marks the session exhausted and returns ErrNoMoreFallback.
func (s *ChallengeSession) Fallback() error {
	s.token = ""
	switch s.fallback {
	case FallbackAvailable:
		s.fallback = FallbackActive
		return nil
	default:
		s.fallback = FallbackExhausted
		return ErrNoMoreFallback
	}
}
