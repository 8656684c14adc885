package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitialize_InvalidLevel(t *testing.T) {
	err := Initialize(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestInitialize_ProductionWritesRotatedFiles(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { Log = zap.NewNop() })

	require.NoError(t, Initialize(Config{
		Level:       "info",
		LogDir:      dir,
		Environment: "production",
		ServiceName: "portfolio-api",
	}))

	Info("hello")
	LogError(errors.New("boom"), "failed")
	LogAPICall(context.Background(), "ses", "SendEmail", "success", 0.1)
	LogHTTPRequest(context.Background(), "POST", "/api/v1/contact", 500, 0.2)
	Sync()

	appLog, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(appLog), `"service":"portfolio-api"`)
	assert.Contains(t, string(appLog), "hello")

	errorLog, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errorLog), "failed")
	assert.NotContains(t, string(errorLog), "hello")
}

func TestTraceFields_NoSpan(t *testing.T) {
	assert.Empty(t, traceFields(context.Background()))
}
