package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fieldlane/fieldlane-auth/internal/domain"
	"github.com/fieldlane/fieldlane-auth/internal/repository"
)

// CompanyCache is a Redis read-through cache in front of company join-code
// lookups. Join codes are immutable, so entries only ever expire by TTL.
// Cache failures degrade to direct store reads.
type CompanyCache struct {
	inner  repository.CompanyRepository
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

var _ repository.CompanyRepository = (*CompanyCache)(nil)

// NewCompanyCache wraps the repository with a Redis cache.
func NewCompanyCache(inner repository.CompanyRepository, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *CompanyCache {
	if logger == nil {
		logger = zap.L()
	}
	return &CompanyCache{inner: inner, client: client, ttl: ttl, logger: logger}
}

func cacheKey(uniqueID string) string {
	return "company:unique_id:" + uniqueID
}

func (c *CompanyCache) GetByUniqueID(ctx context.Context, uniqueID string) (domain.Company, error) {
	key := cacheKey(uniqueID)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var company domain.Company
		if unmarshalErr := json.Unmarshal(payload, &company); unmarshalErr == nil {
			return company, nil
		}
		c.logger.Warn("company cache entry corrupt", zap.String("key", key))
	} else if err != redis.Nil {
		c.logger.Warn("company cache read failed", zap.String("key", key), zap.Error(err))
	}

	company, err := c.inner.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		return domain.Company{}, err
	}

	if encoded, marshalErr := json.Marshal(company); marshalErr == nil {
		if setErr := c.client.Set(ctx, key, encoded, c.ttl).Err(); setErr != nil {
			c.logger.Warn("company cache write failed", zap.String("key", key), zap.Error(setErr))
		}
	}

	return company, nil
}

func (c *CompanyCache) GetByID(ctx context.Context, companyID int64) (domain.Company, error) {
	return c.inner.GetByID(ctx, companyID)
}

func (c *CompanyCache) Create(ctx context.Context, company domain.Company) (domain.Company, error) {
	return c.inner.Create(ctx, company)
}
