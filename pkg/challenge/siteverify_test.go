package challenge

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	apperrors "github.com/menmadev/portfolio-api/pkg/errors"
	"github.com/menmadev/portfolio-api/pkg/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSecretSource struct {
	mock.Mock
}

func (m *MockSecretSource) Get(ctx context.Context, name secrets.Name) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

// recordingCaller captures the outbound request and replies with a canned response
type recordingCaller struct {
	status int
	body   string
	err    error

	req  *http.Request
	form url.Values
}

func (c *recordingCaller) Do(_ context.Context, req *http.Request) (*http.Response, error) {
	c.req = req
	raw, _ := io.ReadAll(req.Body)
	c.form, _ = url.ParseQuery(string(raw))

	if c.err != nil {
		return nil, c.err
	}
	return &http.Response{
		StatusCode: c.status,
		Body:       io.NopCloser(strings.NewReader(c.body)),
	}, nil
}

func secretSource(name secrets.Name, value string) *MockSecretSource {
	m := new(MockSecretSource)
	m.On("Get", mock.Anything, name).Return(value, nil)
	return m
}

func TestTurnstileVerifier_Success(t *testing.T) {
	caller := &recordingCaller{status: http.StatusOK, body: `{"success":true,"challenge_ts":"2024-01-01T00:00:00Z","hostname":"menma.dev","error-codes":[]}`}
	src := secretSource(secrets.TurnstileSecret, "turnstile-secret")
	v := NewTurnstileVerifier(src, caller)

	ok, err := v.Verify(context.Background(), "tok-123", "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NotNil(t, caller.req)
	assert.Equal(t, http.MethodPost, caller.req.Method)
	assert.Equal(t, TurnstileVerifyURL, caller.req.URL.String())
	assert.Equal(t, "application/x-www-form-urlencoded", caller.req.Header.Get("Content-Type"))
	assert.Equal(t, "turnstile-secret", caller.form.Get("secret"))
	assert.Equal(t, "tok-123", caller.form.Get("response"))
	assert.Equal(t, "203.0.113.7", caller.form.Get("remoteip"))
	src.AssertExpectations(t)
}

func TestHCaptchaVerifier_Rejected(t *testing.T) {
	caller := &recordingCaller{status: http.StatusOK, body: `{"success":false,"error-codes":["invalid-input-response"]}`}
	v := NewHCaptchaVerifier(secretSource(secrets.HCaptchaSecret, "hcaptcha-secret"), caller)

	ok, err := v.Verify(context.Background(), "bad-token", "")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, HCaptchaVerifyURL, caller.req.URL.String())
	assert.Equal(t, "hcaptcha-secret", caller.form.Get("secret"))
	_, hasIP := caller.form["remoteip"]
	assert.False(t, hasIP, "remoteip omitted when unknown")
}

func TestSiteVerifier_NonOKStatusUsesBody(t *testing.T) {
	caller := &recordingCaller{status: http.StatusBadRequest, body: `{"success":false,"error-codes":["missing-input-secret"]}`}
	v := NewTurnstileVerifier(secretSource(secrets.TurnstileSecret, "s"), caller)

	ok, err := v.Verify(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSiteVerifier_MissingSuccessIsMalformed(t *testing.T) {
	caller := &recordingCaller{status: http.StatusOK, body: `{"hostname":"menma.dev"}`}
	v := NewTurnstileVerifier(secretSource(secrets.TurnstileSecret, "s"), caller)

	ok, err := v.Verify(context.Background(), "tok", "")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestSiteVerifier_InvalidJSON(t *testing.T) {
	caller := &recordingCaller{status: http.StatusBadGateway, body: `<html>bad gateway</html>`}
	v := NewTurnstileVerifier(secretSource(secrets.TurnstileSecret, "s"), caller)

	ok, err := v.Verify(context.Background(), "tok", "")
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestSiteVerifier_TransportErrorPropagates(t *testing.T) {
	failure := apperrors.TransportError(errors.New("dial tcp: refused"))
	caller := &recordingCaller{err: failure}
	v := NewHCaptchaVerifier(secretSource(secrets.HCaptchaSecret, "s"), caller)

	ok, err := v.Verify(context.Background(), "tok", "")
	assert.False(t, ok)
	assert.ErrorIs(t, err, apperrors.ErrTransport)
}

func TestSiteVerifier_SecretErrorSkipsCall(t *testing.T) {
	src := new(MockSecretSource)
	src.On("Get", mock.Anything, secrets.TurnstileSecret).Return("", apperrors.SecretNotFoundError("TURNSTILE_SECRET"))
	caller := &recordingCaller{status: http.StatusOK, body: `{"success":true}`}
	v := NewTurnstileVerifier(src, caller)

	_, err := v.Verify(context.Background(), "tok", "")
	assert.ErrorIs(t, err, apperrors.ErrSecretNotFound)
	assert.Nil(t, caller.req)
}

func TestSiteVerifier_Metadata(t *testing.T) {
	v := NewHCaptchaVerifier(nil, nil)
	assert.Equal(t, HCaptcha, v.Provider())
	assert.Equal(t, HCaptchaVerifyURL, v.Endpoint())
}
