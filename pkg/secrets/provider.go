package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	apperrors "github.com/menmadev/portfolio-api/pkg/errors"
	"github.com/menmadev/portfolio-api/pkg/logger"
	"github.com/menmadev/portfolio-api/pkg/metrics"
	"go.uber.org/zap"
)

// Name identifies a key inside the secret store's JSON record
type Name string

const (
	TurnstileSecret Name = "TURNSTILE_SECRET"
	HCaptchaSecret  Name = "HCAPTCHA_SECRET"
)

// Store is the subset of the Secrets Manager API used by Provider
type Store interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Cache holds secret values for the life of the process
type Cache interface {
	Get(name string) (string, bool)
	Set(name, value string)
}

// Provider lazily resolves challenge secrets from AWS Secrets Manager.
// A value is fetched on first use and served from the cache afterwards; it is
// never refreshed. Concurrent first use may fetch the same key more than once.
type Provider struct {
	secretID string
	cache    Cache
	connect  func(ctx context.Context) (Store, error)

	mu    sync.Mutex
	store Store
}

// NewProvider creates a provider backed by Secrets Manager in region.
// Missing region or secret id only fails lookups, never construction.
func NewProvider(region, secretID string, cache Cache) *Provider {
	return &Provider{
		secretID: secretID,
		cache:    cache,
		connect: func(ctx context.Context) (Store, error) {
			if region == "" {
				return nil, apperrors.ConfigurationError("AWS_REGION")
			}
			cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
			if err != nil {
				return nil, fmt.Errorf("failed to load AWS config: %w", err)
			}
			return secretsmanager.NewFromConfig(cfg), nil
		},
	}
}

// NewProviderWithStore creates a provider over an existing store client
func NewProviderWithStore(secretID string, store Store, cache Cache) *Provider {
	return &Provider{
		secretID: secretID,
		cache:    cache,
		store:    store,
		connect: func(context.Context) (Store, error) {
			return store, nil
		},
	}
}

// Get returns the named secret, fetching it from the store on first use
func (p *Provider) Get(ctx context.Context, name Name) (string, error) {
	if value, ok := p.cache.Get(string(name)); ok {
		return value, nil
	}

	if p.secretID == "" {
		return "", apperrors.ConfigurationError("AWS_SECRET_ID")
	}

	store, err := p.client(ctx)
	if err != nil {
		metrics.SecretFetchTotal.WithLabelValues(string(name), "error").Inc()
		return "", err
	}

	out, err := store.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.secretID),
	})
	if err != nil {
		metrics.SecretFetchTotal.WithLabelValues(string(name), "error").Inc()
		return "", fmt.Errorf("failed to retrieve secret %s: %w", name, err)
	}

	if out.SecretString == nil {
		metrics.SecretFetchTotal.WithLabelValues(string(name), "not_found").Inc()
		return "", apperrors.SecretNotFoundError("secret string for " + string(name))
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(*out.SecretString), &record); err != nil {
		metrics.SecretFetchTotal.WithLabelValues(string(name), "error").Inc()
		return "", fmt.Errorf("failed to decode secret record: %w", err)
	}

	value, _ := record[string(name)].(string)
	if value == "" {
		metrics.SecretFetchTotal.WithLabelValues(string(name), "not_found").Inc()
		return "", apperrors.SecretNotFoundError(string(name))
	}

	p.cache.Set(string(name), value)
	metrics.SecretFetchTotal.WithLabelValues(string(name), "success").Inc()
	logger.Info("Secret loaded from secret store", zap.String("secret", string(name)))

	return value, nil
}

func (p *Provider) client(ctx context.Context) (Store, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store != nil {
		return p.store, nil
	}

	store, err := p.connect(ctx)
	if err != nil {
		return nil, err
	}
	p.store = store
	return store, nil
}
