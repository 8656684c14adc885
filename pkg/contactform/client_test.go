package contactform

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/menmadev/portfolio-api/pkg/challenge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHTTPClient struct {
	status int
	body   string
	err    error

	req  *http.Request
	form url.Values
}

func (f *fakeHTTPClient) Post(string, string, io.Reader) (*http.Response, error) {
	return nil, errors.New("unexpected Post")
}

func (f *fakeHTTPClient) Get(string) (*http.Response, error) {
	return nil, errors.New("unexpected Get")
}

func (f *fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	f.req = req
	raw, _ := io.ReadAll(req.Body)
	f.form, _ = url.ParseQuery(string(raw))
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{StatusCode: f.status, Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestEncodeSubmission_OnlyActiveTokenPopulated(t *testing.T) {
	data := EncodeSubmission(&Submission{Values: validValues(), Provider: challenge.HCaptcha, Token: "h-tok"})

	assert.Equal(t, "Jane Doe", data.Get("name"))
	assert.Equal(t, "jane@example.com", data.Get("email"))
	assert.Equal(t, "h-tok", data.Get(challenge.HCaptchaFormField))
	assert.Equal(t, "", data.Get(challenge.TurnstileFormField))
}

func TestClient_SubmitDecodesAnyStatus(t *testing.T) {
	http403 := &fakeHTTPClient{status: http.StatusForbidden, body: `{"success":false,"code":"CHALLENGE_VERIFICATION_FAILED","message":"Challenge Verification Failed. Please try again."}`}
	client := NewClient("https://api.menma.dev/", http403)

	result, err := client.Submit(context.Background(), &Submission{Values: validValues(), Provider: challenge.Turnstile, Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeChallengeFailed, result.Outcome())

	assert.Equal(t, "https://api.menma.dev/api/v1/contact", http403.req.URL.String())
	assert.Equal(t, "application/x-www-form-urlencoded", http403.req.Header.Get("Content-Type"))
	assert.Equal(t, "tok", http403.form.Get(challenge.TurnstileFormField))
}

func TestClient_SubmitWithResolvesController(t *testing.T) {
	httpClient := &fakeHTTPClient{status: http.StatusOK, body: `{"success":true,"message":"Message Sent!"}`}
	client := NewClient("https://api.menma.dev", httpClient)
	ctrl := readyController(t)

	result, err := client.SubmitWith(context.Background(), ctrl)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, StateSucceeded, ctrl.State())
	assert.Equal(t, FormValues{}, ctrl.Values())
}

func TestClient_SubmitWithTransportFailure(t *testing.T) {
	client := NewClient("https://api.menma.dev", &fakeHTTPClient{err: errors.New("offline")})
	ctrl := readyController(t)

	_, err := client.SubmitWith(context.Background(), ctrl)
	require.Error(t, err)
	assert.Equal(t, StateFailed, ctrl.State())
	assert.Equal(t, CodeInternalError, ctrl.FailureCode())
}

func TestClient_SubmitWithNotReady(t *testing.T) {
	httpClient := &fakeHTTPClient{}
	client := NewClient("https://api.menma.dev", httpClient)

	_, err := client.SubmitWith(context.Background(), NewController())
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Nil(t, httpClient.req)
}
