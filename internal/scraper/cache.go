package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/matchcentre/internal/logger"
)

// PageCache keeps fetched page sources on disk for a TTL. Entries are keyed by
// normalized URL and expire by file modification time.
type PageCache struct {
	dir string
	TTL time.Duration
	now func() time.Time
}

// NewPageCache creates a cache in dir.
func NewPageCache(dir string, ttl time.Duration) (*PageCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &PageCache{dir: dir, TTL: ttl, now: time.Now}, nil
}

// Get retrieves a page if cached and not expired
func (c *PageCache) Get(url string) (string, bool) {
	path := c.path(url)
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}

	if c.now().Sub(info.ModTime()) > c.TTL {
		// Expired, remove from cache
		_ = os.Remove(path)
		return "", false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Set stores a page source
func (c *PageCache) Set(url, content string) error {
	tmp := c.path(url) + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing cached page: %w", err)
	}
	if err := os.Rename(tmp, c.path(url)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing cached page: %w", err)
	}
	return nil
}

// CleanExpired removes expired entries and returns how many were removed
func (c *PageCache) CleanExpired() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".html" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if c.now().Sub(info.ModTime()) > c.TTL {
			if err := os.Remove(filepath.Join(c.dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (c *PageCache) path(url string) string {
	return filepath.Join(c.dir, cacheKey(url)+".html")
}

// cacheKey normalizes url so trailing slashes and surrounding space share an entry.
func cacheKey(url string) string {
	normalized := strings.TrimRight(strings.TrimSpace(url), "/")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Cached wraps open so that sessions serve fresh cached pages without
// navigating. The wrapped session is opened only on a cache miss.
func Cached(open Opener, cache *PageCache) Opener {
	return func(ctx context.Context) (Session, error) {
		return &cachedSession{open: open, cache: cache}, nil
	}
}

type cachedSession struct {
	open    Opener
	cache   *PageCache
	inner   Session
	url     string
	content string
	hit     bool
}

func (s *cachedSession) Navigate(ctx context.Context, url string) error {
	s.url, s.content, s.hit = url, "", false
	if content, ok := s.cache.Get(url); ok {
		s.content, s.hit = content, true
		logger.IncrCounter("cache.hit")
		logger.Debug("Serving cached page", logger.Fields{"url": url})
		return nil
	}
	logger.IncrCounter("cache.miss")

	if s.inner == nil {
		inner, err := s.open(ctx)
		if err != nil {
			return fmt.Errorf("opening session: %w", err)
		}
		s.inner = inner
	}
	return s.inner.Navigate(ctx, url)
}

func (s *cachedSession) Content(ctx context.Context) (string, error) {
	if s.hit {
		return s.content, nil
	}
	if s.inner == nil {
		return "", errors.New("no page loaded")
	}

	content, err := s.inner.Content(ctx)
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(s.url, content); err != nil {
		logger.Warn("Failed to cache page", logger.Fields{"url": s.url, "error": err.Error()})
	}
	return content, nil
}

func (s *cachedSession) Close() error {
	if s.inner == nil {
		return nil
	}
	return s.inner.Close()
}
