package services_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/menmadev/portfolio-api/pkg/archive"
	"github.com/menmadev/portfolio-api/pkg/challenge"
	"github.com/menmadev/portfolio-api/pkg/mailer"
	"github.com/stretchr/testify/mock"
)

// MockChallengeVerifier is a mock implementation of ChallengeVerifier
type MockChallengeVerifier struct {
	mock.Mock
}

func (m *MockChallengeVerifier) Verify(ctx context.Context, provider challenge.Provider, token, remoteIP string) (bool, error) {
	args := m.Called(ctx, provider, token, remoteIP)
	return args.Bool(0), args.Error(1)
}

// MockSender is a mock implementation of mailer.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg mailer.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

// MockArchiver is a mock implementation of Archiver
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Save(ctx context.Context, record *archive.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockHTTPClient records GET calls for the notification trigger
type MockHTTPClient struct {
	gets chan string
}

func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{gets: make(chan string, 4)}
}

func (m *MockHTTPClient) Post(string, string, io.Reader) (*http.Response, error) {
	return nil, errors.New("unexpected Post")
}

func (m *MockHTTPClient) Get(url string) (*http.Response, error) {
	m.gets <- url
	return &http.Response{StatusCode: http.StatusNoContent, Body: io.NopCloser(strings.NewReader(""))}, nil
}

func (m *MockHTTPClient) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("unexpected Do")
}
