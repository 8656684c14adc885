package contactform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/menmadev/portfolio-api/pkg/challenge"
	"github.com/menmadev/portfolio-api/pkg/httpclient"
)

// ContactPath is the API route accepting contact submissions
const ContactPath = "/api/v1/contact"

// Client posts submissions to the contact API
type Client struct {
	baseURL    string
	httpClient httpclient.Client
}

// NewClient creates a client for the API at baseURL
func NewClient(baseURL string, httpClient httpclient.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// EncodeSubmission builds the form body the API expects. Only the active
// provider's token field is populated.
func EncodeSubmission(sub *Submission) url.Values {
	data := url.Values{}
	data.Set(string(FieldName), sub.Values.Name)
	data.Set(string(FieldEmail), sub.Values.Email)
	data.Set(string(FieldSubject), sub.Values.Subject)
	data.Set(string(FieldMessage), sub.Values.Message)
	data.Set(challenge.TurnstileFormField, "")
	data.Set(challenge.HCaptchaFormField, "")
	if field := sub.Provider.FormField(); field != "" {
		data.Set(field, sub.Token)
	}
	return data
}

// Submit sends sub and decodes the result. Every API status carries a Result
// body, so only transport and decode failures are returned as errors.
func (c *Client) Submit(ctx context.Context, sub *Submission) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ContactPath, strings.NewReader(EncodeSubmission(sub).Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build contact request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit contact form: %w", err)
	}
	defer resp.Body.Close()

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode contact response (status %d): %w", resp.StatusCode, err)
	}

	return &result, nil
}

// SubmitWith runs one full submit cycle on ctrl: Begin, send, then Resolve or Fail
func (c *Client) SubmitWith(ctx context.Context, ctrl *Controller) (*Result, error) {
	sub, err := ctrl.Begin()
	if err != nil {
		return nil, err
	}

	result, err := c.Submit(ctx, sub)
	if err != nil {
		ctrl.Fail()
		return nil, err
	}

	return result, ctrl.Resolve(result)
}
