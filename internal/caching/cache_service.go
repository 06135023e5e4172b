package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"garagehub/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	keyPrefix = "garagehub"

	partTTL        = 10 * time.Minute
	partListingTTL = 2 * time.Minute
)

// CacheService wraps redis for the read-heavy lookups: individual parts and
// part listings. Cache misses and redis failures both fall through to the
// database; invalidation failures are logged, never returned.
type CacheService struct {
	client *redis.Client
}

func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{client: client}
}

func partKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:part:%s", keyPrefix, id)
}

func partListingKey(suffix string) string {
	return fmt.Sprintf("%s:parts:%s", keyPrefix, suffix)
}

// GetPart returns the cached part, or nil on a miss or any redis error.
func (c *CacheService) GetPart(ctx context.Context, id uuid.UUID) *models.Part {
	data, err := c.client.Get(ctx, partKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).Warn("cache read failed for part")
		}
		return nil
	}
	var part models.Part
	if err := json.Unmarshal(data, &part); err != nil {
		log.WithError(err).Warn("cache entry for part is corrupt, dropping")
		c.DeletePart(ctx, id)
		return nil
	}
	return &part
}

func (c *CacheService) SetPart(ctx context.Context, part *models.Part) {
	data, err := json.Marshal(part)
	if err != nil {
		log.WithError(err).Warn("failed to marshal part for cache")
		return
	}
	if err := c.client.Set(ctx, partKey(part.ID), data, partTTL).Err(); err != nil {
		log.WithError(err).Warn("cache write failed for part")
	}
}

func (c *CacheService) DeletePart(ctx context.Context, id uuid.UUID) {
	if err := c.client.Del(ctx, partKey(id)).Err(); err != nil {
		log.WithError(err).Warn("cache invalidation failed for part")
	}
}

// GetPartListing returns a cached listing page, or nil on a miss.
func (c *CacheService) GetPartListing(ctx context.Context, suffix string) []*models.Part {
	data, err := c.client.Get(ctx, partListingKey(suffix)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).Warn("cache read failed for part listing")
		}
		return nil
	}
	var parts []*models.Part
	if err := json.Unmarshal(data, &parts); err != nil {
		log.WithError(err).Warn("cache entry for part listing is corrupt, dropping")
		c.InvalidatePartListings(ctx)
		return nil
	}
	return parts
}

func (c *CacheService) SetPartListing(ctx context.Context, suffix string, parts []*models.Part) {
	data, err := json.Marshal(parts)
	if err != nil {
		log.WithError(err).Warn("failed to marshal part listing for cache")
		return
	}
	if err := c.client.Set(ctx, partListingKey(suffix), data, partListingTTL).Err(); err != nil {
		log.WithError(err).Warn("cache write failed for part listing")
	}
}

// InvalidatePartListings drops every cached listing page. Called after any
// write that changes part stock or pricing.
func (c *CacheService) InvalidatePartListings(ctx context.Context) {
	pattern := partListingKey("*")
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.WithError(err).Warn("cache scan failed for part listings")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.WithError(err).Warn("cache invalidation failed for part listings")
	}
}
