package services

import (
	"context"

	"github.com/menmadev/portfolio-api/internal/models"
	"github.com/menmadev/portfolio-api/pkg/archive"
	"github.com/menmadev/portfolio-api/pkg/challenge"
)

// ContactServiceInterface defines the interface for contact service operations
type ContactServiceInterface interface {
	Submit(ctx context.Context, form *models.ContactForm, remoteIP string) *models.SubmissionResult
}

// ChallengeVerifier verifies a token for the named provider
type ChallengeVerifier interface {
	Verify(ctx context.Context, provider challenge.Provider, token, remoteIP string) (bool, error)
}

// Archiver stores a copy of a delivered message
type Archiver interface {
	Save(ctx context.Context, record *archive.Record) error
}
