package trigger

import (
	"net/url"

	"github.com/menmadev/portfolio-api/pkg/httpclient"
	"github.com/menmadev/portfolio-api/pkg/logger"
	"go.uber.org/zap"
)

// CallAsync calls a notification URL asynchronously with a submission_id query parameter.
// Failures are logged but never affect the caller. done, if non-nil, is invoked
// when the call finishes.
func CallAsync(triggerURL, submissionID string, httpClient httpclient.Client, done func()) {
	if triggerURL == "" {
		if done != nil {
			done()
		}
		return
	}

	go func() {
		if done != nil {
			defer done()
		}

		targetURL, err := buildURL(triggerURL, submissionID)
		if err != nil {
			logger.Error("Invalid trigger URL", zap.Error(err))
			return
		}

		resp, err := httpClient.Get(targetURL)
		if err != nil {
			logger.Error("Failed to call trigger URL",
				zap.Error(err),
				zap.String("submission_id", submissionID))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("Trigger URL called successfully",
				zap.String("submission_id", submissionID),
				zap.Int("status_code", resp.StatusCode))
		} else {
			logger.Warn("Trigger URL returned non-success status",
				zap.String("submission_id", submissionID),
				zap.Int("status_code", resp.StatusCode))
		}
	}()
}

func buildURL(triggerURL, submissionID string) (string, error) {
	u, err := url.Parse(triggerURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("submission_id", submissionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
