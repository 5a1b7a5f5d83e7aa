package ollama

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"
)

// ModelInfo describes one installed model as reported by /api/tags.
type ModelInfo struct {
	Name       string  `json:"name"`
	Size       int64   `json:"size"`
	ModifiedAt string  `json:"modified_at"`
	Digest     string  `json:"digest"`
	SizeMB     float64 `json:"size_mb"`
}

// CacheInfo reports the state of the model-list cache.
type CacheInfo struct {
	Cached          bool    `json:"cached"`
	CacheTime       string  `json:"cache_time,omitempty"`
	CacheAgeSeconds float64 `json:"cache_age_seconds"`
	CacheValid      bool    `json:"cache_valid"`
	ModelsCount     int     `json:"models_count"`
	TTLSeconds      int     `json:"cache_duration_seconds"`
}

// modelsSnapshot is an immutable cache entry. The whole snapshot is
// replaced on refresh, never mutated in place.
type modelsSnapshot struct {
	models    []ModelInfo
	fetchedAt time.Time
}

func (s *modelsSnapshot) valid(ttl time.Duration) bool {
	return time.Since(s.fetchedAt) < ttl
}

type tagsResponse struct {
	Models []struct {
		Name       string `json:"name"`
		Size       int64  `json:"size"`
		ModifiedAt string `json:"modified_at"`
		Digest     string `json:"digest"`
	} `json:"models"`
}

// ListModels returns the installed models, serving from cache while the
// snapshot is younger than the TTL. useCache=false bypasses the cache
// and refreshes it. The returned slice is a copy; callers may mutate it.
func (c *Client) ListModels(ctx context.Context, useCache bool) ([]ModelInfo, error) {
	if useCache {
		c.cacheMu.RLock()
		snapshot := c.cache
		c.cacheMu.RUnlock()
		if snapshot != nil && snapshot.valid(c.cacheTTL) {
			return copyModels(snapshot.models), nil
		}
	}

	body, err := c.do(ctx, http.MethodGet, "/api/tags", nil, c.timeout)
	if err != nil {
		return nil, err
	}

	var tags tagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		return nil, &DecodeError{Err: err}
	}

	models := make([]ModelInfo, 0, len(tags.Models))
	for _, m := range tags.Models {
		models = append(models, ModelInfo{
			Name:       m.Name,
			Size:       m.Size,
			ModifiedAt: m.ModifiedAt,
			Digest:     m.Digest,
			SizeMB:     sizeMB(m.Size),
		})
	}

	c.cacheMu.Lock()
	c.cache = &modelsSnapshot{models: copyModels(models), fetchedAt: time.Now()}
	c.cacheMu.Unlock()

	c.logger.Debugw("Model list refreshed", "count", len(models))
	return models, nil
}

// RefreshModels forces a fetch and replaces the cache.
func (c *Client) RefreshModels(ctx context.Context) ([]ModelInfo, error) {
	return c.ListModels(ctx, false)
}

// ClearModelCache drops the cached snapshot. The next ListModels call
// hits the server.
func (c *Client) ClearModelCache() {
	c.cacheMu.Lock()
	c.cache = nil
	c.cacheMu.Unlock()
}

// ModelCacheInfo reports whether a snapshot exists, its age, and whether
// it is still within the TTL.
func (c *Client) ModelCacheInfo() CacheInfo {
	c.cacheMu.RLock()
	snapshot := c.cache
	c.cacheMu.RUnlock()

	ttlSeconds := int(c.cacheTTL / time.Second)
	if snapshot == nil {
		return CacheInfo{TTLSeconds: ttlSeconds}
	}

	age := time.Since(snapshot.fetchedAt)
	return CacheInfo{
		Cached:          true,
		CacheTime:       snapshot.fetchedAt.Format(time.RFC3339),
		CacheAgeSeconds: math.Floor(age.Seconds()),
		CacheValid:      snapshot.valid(c.cacheTTL),
		ModelsCount:     len(snapshot.models),
		TTLSeconds:      ttlSeconds,
	}
}

func copyModels(models []ModelInfo) []ModelInfo {
	out := make([]ModelInfo, len(models))
	copy(out, models)
	return out
}

// sizeMB converts bytes to mebibytes rounded to one decimal. Zero stays
// zero rather than producing "0.0" noise for manifest-only entries.
func sizeMB(size int64) float64 {
	if size == 0 {
		return 0
	}
	return math.Round(float64(size)/(1024*1024)*10) / 10
}
