package challenge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	provider Provider
	ok       bool
	err      error
	tokens   []string
}

func (s *stubVerifier) Provider() Provider { return s.provider }

func (s *stubVerifier) Verify(_ context.Context, token, _ string) (bool, error) {
	s.tokens = append(s.tokens, token)
	return s.ok, s.err
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name         string
		turnstile    string
		hcaptcha     string
		wantProvider Provider
		wantToken    string
		wantOK       bool
	}{
		{"turnstile only", "t-tok", "", Turnstile, "t-tok", true},
		{"hcaptcha only", "", "h-tok", HCaptcha, "h-tok", true},
		{"both prefers turnstile", "t-tok", "h-tok", Turnstile, "t-tok", true},
		{"neither", "", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, token, ok := Select(tt.turnstile, tt.hcaptcha)
			assert.Equal(t, tt.wantProvider, provider)
			assert.Equal(t, tt.wantToken, token)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestProvider_FormField(t *testing.T) {
	assert.Equal(t, "cf-turnstile-response", Turnstile.FormField())
	assert.Equal(t, "h-captcha-response", HCaptcha.FormField())
	assert.Empty(t, Provider("recaptcha").FormField())
}

func TestRegistry_DispatchesByProvider(t *testing.T) {
	turnstile := &stubVerifier{provider: Turnstile, ok: true}
	hcaptcha := &stubVerifier{provider: HCaptcha, ok: false}
	registry := NewRegistry(turnstile, hcaptcha)

	ok, err := registry.Verify(context.Background(), HCaptcha, "h-tok", "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"h-tok"}, hcaptcha.tokens)
	assert.Empty(t, turnstile.tokens)
}

func TestRegistry_PropagatesVerifierError(t *testing.T) {
	failure := errors.New("network down")
	registry := NewRegistry(&stubVerifier{provider: Turnstile, err: failure})

	_, err := registry.Verify(context.Background(), Turnstile, "tok", "")
	assert.ErrorIs(t, err, failure)
}

func TestRegistry_UnknownProvider(t *testing.T) {
	registry := NewRegistry(&stubVerifier{provider: Turnstile, ok: true})

	_, ok := registry.Get(HCaptcha)
	assert.False(t, ok)

	_, err := registry.Verify(context.Background(), HCaptcha, "tok", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hcaptcha")
}
