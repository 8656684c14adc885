package mailer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/menmadev/portfolio-api/pkg/circuitbreaker"
	apperrors "github.com/menmadev/portfolio-api/pkg/errors"
	"github.com/menmadev/portfolio-api/pkg/logger"
	"github.com/menmadev/portfolio-api/pkg/metrics"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const charsetUTF8 = "UTF-8"

// Message is a plain-text email
type Message struct {
	From    string
	To      []string
	ReplyTo []string
	Subject string
	Body    string
}

// Sender delivers messages and returns the provider's message id
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// SESAPI is the subset of the SES v2 API used by SESSender
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends mail through Amazon SES v2. Sends are never retried;
// a circuit breaker fails fast while SES is unavailable.
type SESSender struct {
	breaker *gobreaker.CircuitBreaker
	connect func(ctx context.Context) (SESAPI, error)

	mu  sync.Mutex
	api SESAPI
}

// NewSESSender creates a sender for region. The AWS client is built on first send,
// so a missing region fails the send rather than startup.
func NewSESSender(region string) *SESSender {
	return &SESSender{
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig("ses")),
		connect: func(ctx context.Context) (SESAPI, error) {
			if region == "" {
				return nil, apperrors.ConfigurationError("AWS_REGION")
			}
			cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
			if err != nil {
				return nil, fmt.Errorf("failed to load AWS config: %w", err)
			}
			return sesv2.NewFromConfig(cfg), nil
		},
	}
}

// NewSESSenderWithAPI creates a sender over an existing SES client
func NewSESSenderWithAPI(api SESAPI) *SESSender {
	return &SESSender{
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig("ses")),
		api:     api,
	}
}

// Send delivers msg and returns the SES message id
func (s *SESSender) Send(ctx context.Context, msg Message) (string, error) {
	start := time.Now()

	api, err := s.client(ctx)
	if err != nil {
		metrics.EmailSendTotal.WithLabelValues("error").Inc()
		return "", err
	}

	input := BuildSendEmailInput(msg)
	out, err := circuitbreaker.Execute(s.breaker, func() (*sesv2.SendEmailOutput, error) {
		return api.SendEmail(ctx, input)
	})

	duration := metrics.MeasureDuration(start)
	if err != nil {
		status := "error"
		if circuitbreaker.IsCircuitOpen(s.breaker) {
			status = "circuit_open"
		}
		metrics.EmailSendDuration.WithLabelValues(status).Observe(duration)
		metrics.EmailSendTotal.WithLabelValues(status).Inc()
		logger.LogAPICall(ctx, "ses", "SendEmail", "error", duration, zap.Error(err), zap.String("reason", status))
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	messageID := aws.ToString(out.MessageId)
	metrics.EmailSendDuration.WithLabelValues("success").Observe(duration)
	metrics.EmailSendTotal.WithLabelValues("success").Inc()
	logger.LogAPICall(ctx, "ses", "SendEmail", "success", duration, zap.String("message_id", messageID))

	return messageID, nil
}

func (s *SESSender) client(ctx context.Context) (SESAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.api != nil {
		return s.api, nil
	}

	api, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	s.api = api
	return api, nil
}

// BuildSendEmailInput maps a Message onto a simple UTF-8 SES message
func BuildSendEmailInput(msg Message) *sesv2.SendEmailInput {
	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses: msg.To,
		},
		ReplyToAddresses: msg.ReplyTo,
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(msg.Subject),
					Charset: aws.String(charsetUTF8),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(msg.Body),
						Charset: aws.String(charsetUTF8),
					},
				},
			},
		},
	}
}
