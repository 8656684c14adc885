package cache

import (
	"time"

	"github.com/menmadev/portfolio-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
)

const secretCacheName = "secrets"

// SecretCache keeps challenge secrets in memory for the life of the process.
// Entries never expire and are never refreshed; a value is written once on
// first successful lookup.
type SecretCache struct {
	cache *gocache.Cache
}

// NewSecretCache creates an empty secret cache
func NewSecretCache() *SecretCache {
	return &SecretCache{
		cache: gocache.New(gocache.NoExpiration, time.Hour),
	}
}

// Get returns a cached secret
func (sc *SecretCache) Get(name string) (string, bool) {
	data, found := sc.cache.Get(name)
	if !found {
		metrics.CacheMisses.WithLabelValues(secretCacheName).Inc()
		return "", false
	}

	value, ok := data.(string)
	if !ok {
		sc.cache.Delete(name)
		metrics.CacheMisses.WithLabelValues(secretCacheName).Inc()
		return "", false
	}

	metrics.CacheHits.WithLabelValues(secretCacheName).Inc()
	return value, true
}

// Set stores a secret without expiry
func (sc *SecretCache) Set(name, value string) {
	sc.cache.Set(name, value, gocache.NoExpiration)
	metrics.CacheSize.WithLabelValues(secretCacheName).Set(float64(sc.cache.ItemCount()))
}

// Seed stores non-empty values, used for secrets supplied through the environment
func (sc *SecretCache) Seed(values map[string]string) {
	for name, value := range values {
		if value != "" {
			sc.Set(name, value)
		}
	}
}

// Len returns the number of cached secrets
func (sc *SecretCache) Len() int {
	return sc.cache.ItemCount()
}
