package cache

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shouni/hairstyle-kit/pkg/domain"
)

var ErrImageNotFound = errors.New("image not found")
var ErrImageExpired = errors.New("image expired")

// ImageCache は生成画像をダウンロード用に一時保持するメモリキャッシュです。
// 永続化はせず、TTL と合計サイズの上限を超えたものから捨てます。
type ImageCache struct {
	store          map[string]imageEntry
	order          []string
	expiryDuration time.Duration
	maxStoreBytes  int
	storeBytes     int
	now            func() time.Time
	mu             sync.Mutex
}

type imageEntry struct {
	artifact  domain.ImageArtifact
	expiresAt time.Time
}

func NewImageCache(expiryDuration time.Duration, maxStoreSizeMB int) *ImageCache {
	return &ImageCache{
		store:          make(map[string]imageEntry),
		expiryDuration: expiryDuration,
		maxStoreBytes:  maxStoreSizeMB << 20,
		now:            time.Now,
	}
}

// StoreImage は画像を保存し、取得用の ID を返します。
func (c *ImageCache) StoreImage(artifact domain.ImageArtifact) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	c.purgeLocked()
	c.store[id.String()] = imageEntry{artifact: artifact, expiresAt: c.now().Add(c.expiryDuration)}
	c.order = append(c.order, id.String())
	c.storeBytes += len(artifact.Data)

	// 上限を超えたら古いものから捨てる。直前に入れたものは残す。
	for c.storeBytes > c.maxStoreBytes && len(c.order) > 1 {
		c.removeLocked(c.order[0])
	}

	return id.String(), nil
}

func (c *ImageCache) GetImage(id string) (domain.ImageArtifact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.store[id]
	if !ok {
		return domain.ImageArtifact{}, ErrImageNotFound
	}

	if c.now().After(entry.expiresAt) {
		c.removeLocked(id)
		return domain.ImageArtifact{}, ErrImageExpired
	}

	return entry.artifact, nil
}

// Purge は期限切れのエントリを削除し、削除件数を返します。
func (c *ImageCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purgeLocked()
}

// Len は保持しているエントリ数を返します。
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

func (c *ImageCache) purgeLocked() int {
	now := c.now()
	removed := 0
	for _, id := range append([]string(nil), c.order...) {
		if now.After(c.store[id].expiresAt) {
			c.removeLocked(id)
			removed++
		}
	}
	return removed
}

func (c *ImageCache) removeLocked(id string) {
	entry, ok := c.store[id]
	if !ok {
		return
	}
	delete(c.store, id)
	c.storeBytes -= len(entry.artifact.Data)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
