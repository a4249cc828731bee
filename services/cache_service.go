package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CacheEntry represents a cached item with expiration
type CacheEntry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// IsExpired checks if the cache entry has expired
func (ce *CacheEntry) IsExpired() bool {
	return time.Now().After(ce.ExpiresAt)
}

// CacheService is a thread-safe in-memory TTL cache.
type CacheService struct {
	cache      map[string]*CacheEntry
	mutex      sync.RWMutex
	defaultTTL time.Duration
	maxSize    int
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewCacheServiceWithConfig creates a cache service with custom configuration
func NewCacheServiceWithConfig(defaultTTL time.Duration, maxSize int) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	if maxSize <= 0 {
		maxSize = 500
	}

	cs := &CacheService{
		cache:      make(map[string]*CacheEntry),
		defaultTTL: defaultTTL,
		maxSize:    maxSize,
		stop:       make(chan struct{}),
	}

	go cs.cleanupExpired()

	return cs
}

// Get retrieves a value from cache
func (cs *CacheService) Get(key string) (interface{}, bool) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	entry, exists := cs.cache[key]
	if !exists || entry.IsExpired() {
		return nil, false
	}

	return entry.Data, true
}

// Set stores a value in cache with default TTL
func (cs *CacheService) Set(key string, value interface{}) {
	cs.SetWithTTL(key, value, cs.defaultTTL)
}

// SetWithTTL stores a value in cache with custom TTL
func (cs *CacheService) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if _, exists := cs.cache[key]; !exists && len(cs.cache) >= cs.maxSize {
		cs.evictOldest()
	}

	cs.cache[key] = &CacheEntry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// evictOldest removes the entry closest to expiry
func (cs *CacheService) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range cs.cache {
		if oldestKey == "" || entry.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(cs.cache, oldestKey)
	}
}

// Delete removes a value from cache
func (cs *CacheService) Delete(key string) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	delete(cs.cache, key)
}

// Clear removes all values from cache
func (cs *CacheService) Clear() {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.cache = make(map[string]*CacheEntry)
}

// Size returns the number of items in cache
func (cs *CacheService) Size() int {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	return len(cs.cache)
}

// Close stops the background cleanup
func (cs *CacheService) Close() {
	cs.stopOnce.Do(func() { close(cs.stop) })
}

// cleanupExpired removes expired entries from cache
func (cs *CacheService) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-cs.stop:
			return
		case <-ticker.C:
			cs.mutex.Lock()
			for key, entry := range cs.cache {
				if entry.IsExpired() {
					delete(cs.cache, key)
				}
			}
			cs.mutex.Unlock()
		}
	}
}

const allIPOsCacheKey = "ipos:all"

func ipoCacheKey(id uuid.UUID) string {
	return "ipo:" + id.String()
}

// CachedIPORepository caches raw records loaded from the persistence layer.
// Only inputs are cached; status and derived metrics are recomputed by the
// engine on every read.
type CachedIPORepository struct {
	repository IPORepository
	cache      *CacheService
}

// NewCachedIPORepository wraps repository with cache
func NewCachedIPORepository(repository IPORepository, cache *CacheService) *CachedIPORepository {
	return &CachedIPORepository{
		repository: repository,
		cache:      cache,
	}
}

func (r *CachedIPORepository) ListIPOs(ctx context.Context) ([]models.IPO, error) {
	if cached, ok := r.cache.Get(allIPOsCacheKey); ok {
		if ipos, ok := cached.([]models.IPO); ok {
			return ipos, nil
		}
	}

	ipos, err := r.repository.ListIPOs(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Set(allIPOsCacheKey, ipos)
	return ipos, nil
}

func (r *CachedIPORepository) GetIPOByID(ctx context.Context, id uuid.UUID) (*models.IPO, error) {
	key := ipoCacheKey(id)
	if cached, ok := r.cache.Get(key); ok {
		if ipo, ok := cached.(models.IPO); ok {
			return &ipo, nil
		}
	}

	ipo, err := r.repository.GetIPOByID(ctx, id)
	if err != nil || ipo == nil {
		return ipo, err
	}
	r.cache.Set(key, *ipo)
	return ipo, nil
}

func (r *CachedIPORepository) CreateIPO(ctx context.Context, ipo *models.IPO) error {
	if err := r.repository.CreateIPO(ctx, ipo); err != nil {
		return err
	}
	r.InvalidateAll()
	return nil
}

// InvalidateAll drops every cached record
func (r *CachedIPORepository) InvalidateAll() {
	r.cache.Clear()
	logrus.WithField("component", "CachedIPORepository").Debug("IPO cache invalidated")
}

// Warmup reloads the record list into the cache
func (r *CachedIPORepository) Warmup(ctx context.Context) (int, error) {
	r.cache.Delete(allIPOsCacheKey)
	ipos, err := r.ListIPOs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to warmup ipo cache: %w", err)
	}
	return len(ipos), nil
}

// GetCacheStats returns cache statistics
func (r *CachedIPORepository) GetCacheStats() map[string]interface{} {
	return map[string]interface{}{
		"cache_size":  r.cache.Size(),
		"max_size":    r.cache.maxSize,
		"default_ttl": r.cache.defaultTTL.String(),
	}
}
