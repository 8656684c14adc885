package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/menmadev/portfolio-api/config"
	"github.com/menmadev/portfolio-api/internal/models"
	"github.com/menmadev/portfolio-api/pkg/archive"
	"github.com/menmadev/portfolio-api/pkg/challenge"
	"github.com/menmadev/portfolio-api/pkg/contactform"
	apperrors "github.com/menmadev/portfolio-api/pkg/errors"
	"github.com/menmadev/portfolio-api/pkg/httpclient"
	"github.com/menmadev/portfolio-api/pkg/logger"
	"github.com/menmadev/portfolio-api/pkg/mailer"
	"github.com/menmadev/portfolio-api/pkg/metrics"
	"github.com/menmadev/portfolio-api/pkg/tracing"
	"github.com/menmadev/portfolio-api/pkg/trigger"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// defaultSubject is used when the submitter leaves the optional subject empty
const defaultSubject = "(no subject)"

// ContactService handles contact form submissions
type ContactService struct {
	config     *config.Config
	verifier   ChallengeVerifier
	mailer     mailer.Sender
	archiver   Archiver
	httpClient httpclient.Client
	now        func() time.Time
}

// NewContactService creates a new contact service instance. archiver may be nil.
func NewContactService(
	cfg *config.Config,
	verifier ChallengeVerifier,
	sender mailer.Sender,
	archiver Archiver,
	httpClient httpclient.Client,
) *ContactService {
	return &ContactService{
		config:     cfg,
		verifier:   verifier,
		mailer:     sender,
		archiver:   archiver,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Submit runs the submission pipeline: configuration check, validation,
// challenge selection and verification, then email delivery. Each gate
// short-circuits the rest. Infrastructure failures and panics are logged and
// reported as a generic internal error.
func (s *ContactService) Submit(ctx context.Context, form *models.ContactForm, remoteIP string) (result *models.SubmissionResult) {
	// A started submission runs to completion even if the client goes away
	ctx = context.WithoutCancel(ctx)

	submissionID := uuid.NewString()
	log := logger.With(zap.String("submission_id", submissionID))

	ctx, span := tracing.StartSpan(ctx, "contact.submit", attribute.String("submission_id", submissionID))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			log.Error("Contact submission panicked", zap.Any("panic", r), zap.Stack("stack"))
			metrics.ContactFormSubmissions.WithLabelValues("error").Inc()
			result = contactform.InternalError()
		}
	}()

	result, err := s.submit(ctx, submissionID, form, remoteIP, log)
	if err != nil {
		tracing.RecordError(span, err)
		log.Error("Contact submission failed", zap.Error(err))
		metrics.ContactFormSubmissions.WithLabelValues("error").Inc()
		return contactform.InternalError()
	}

	span.SetAttributes(attribute.String("contact.outcome", result.Outcome().String()))
	return result
}

func (s *ContactService) submit(ctx context.Context, submissionID string, form *models.ContactForm, remoteIP string, log *zap.Logger) (*models.SubmissionResult, error) {
	if s.config.Contact.FromAddress == "" {
		return nil, apperrors.ConfigurationError("CONTACT_FROM_ADDRESS")
	}
	if s.config.Contact.ToAddress == "" {
		return nil, apperrors.ConfigurationError("CONTACT_TO_ADDRESS")
	}

	values := form.Values()
	if tree := contactform.Validate(values); tree != nil {
		metrics.ContactFormSubmissions.WithLabelValues("invalid").Inc()
		log.Info("Contact submission failed validation")
		return contactform.ValidationFailed(tree), nil
	}

	provider, token, ok := challenge.Select(form.TurnstileResponse, form.HCaptchaResponse)
	if !ok {
		metrics.ContactFormSubmissions.WithLabelValues("captcha_missing").Inc()
		log.Info("Contact submission without challenge token")
		return contactform.ChallengeFailed(contactform.MessageInvalidChallenge), nil
	}

	verified, err := s.verifier.Verify(ctx, provider, token, remoteIP)
	if err != nil {
		return nil, fmt.Errorf("challenge verification (%s): %w", provider, err)
	}
	if !verified {
		metrics.ContactFormSubmissions.WithLabelValues("captcha_failed").Inc()
		log.Warn("Challenge verification failed", zap.String("provider", provider.String()))
		return contactform.ChallengeFailed(contactform.MessageChallengeFailed), nil
	}

	subject := values.Subject
	if subject == "" {
		subject = defaultSubject
	}

	messageID, err := s.mailer.Send(ctx, mailer.Message{
		From:    s.config.Contact.FromAddress,
		To:      []string{s.config.Contact.ToAddress},
		ReplyTo: []string{values.Email},
		Subject: subject,
		Body:    values.Message,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Contact message sent",
		zap.String("provider", provider.String()),
		zap.String("message_id", messageID))
	metrics.ContactFormSubmissions.WithLabelValues("success").Inc()

	s.archive(ctx, &archive.Record{
		SubmissionID: submissionID,
		MessageID:    messageID,
		Name:         values.Name,
		Email:        values.Email,
		Subject:      values.Subject,
		Message:      values.Message,
		Provider:     provider.String(),
		ReceivedAt:   s.now(),
	}, log)

	trigger.CallAsync(s.config.Contact.NotifyURL, submissionID, s.httpClient, nil)

	return contactform.Succeeded(contactform.MessageSent), nil
}

// archive stores a copy of a delivered message. The email is already sent,
// so a failure here is logged and does not change the result.
func (s *ContactService) archive(ctx context.Context, record *archive.Record, log *zap.Logger) {
	if s.archiver == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.archiver.Save(ctx, record); err != nil {
		log.Warn("Failed to archive contact message", zap.Error(err))
	}
}
