package services

import (
	"strings"
	"time"

	"college-portal-api/models"

	"github.com/patrickmn/go-cache"
)

const previewPrefix = "preview:"

type CacheService struct {
	cache      *cache.Cache
	previewTTL time.Duration
}

func NewCacheService(defaultExpiration, cleanupInterval, previewTTL time.Duration) *CacheService {
	return &CacheService{
		cache:      cache.New(defaultExpiration, cleanupInterval),
		previewTTL: previewTTL,
	}
}

func (s *CacheService) Get(key string) (interface{}, bool) {
	return s.cache.Get(key)
}

func (s *CacheService) Set(key string, value interface{}, duration time.Duration) {
	s.cache.Set(key, value, duration)
}

func (s *CacheService) Delete(key string) {
	s.cache.Delete(key)
}

// Flush drops cached listings. Pending previews survive a flush.
func (s *CacheService) Flush() {
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, previewPrefix) {
			continue
		}
		s.cache.Delete(key)
	}
}

// PreviewTTL is how long an unconfirmed import is kept.
func (s *CacheService) PreviewTTL() time.Duration {
	return s.previewTTL
}

func (s *CacheService) SetPreview(preview *models.ImportPreview) {
	s.cache.Set(previewPrefix+preview.ID, preview, s.previewTTL)
}

func (s *CacheService) GetPreview(id string) (*models.ImportPreview, bool) {
	v, found := s.cache.Get(previewPrefix + id)
	if !found {
		return nil, false
	}
	preview, ok := v.(*models.ImportPreview)
	return preview, ok
}

func (s *CacheService) DeletePreview(id string) {
	s.cache.Delete(previewPrefix + id)
}
