package cache

import (
	"sync"
	"time"

	"github.com/gopinathcollection/order-coupon-service/internal/models"
)

// CouponCache is a small TTL read cache for coupon lookups on the quote
// path. Redemption always reads fresh from the database, so a stale entry
// can only mis-preview a discount, never over-spend a coupon.
type CouponCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	store map[string]entry
}

type entry struct {
	coupon   *models.Coupon
	cachedAt time.Time
}

func NewCouponCache(ttl time.Duration) *CouponCache {
	return &CouponCache{
		ttl:   ttl,
		store: make(map[string]entry),
	}
}

func (c *CouponCache) Get(code string) (*models.Coupon, bool) {
	c.mu.RLock()
	e, ok := c.store[code]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Since(e.cachedAt) > c.ttl {
		c.Invalidate(code)
		return nil, false
	}
	return e.coupon, true
}

func (c *CouponCache) Set(code string, coupon *models.Coupon) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[code] = entry{coupon: coupon, cachedAt: time.Now()}
}

// Invalidate drops an entry, called after admin edits or deletes.
func (c *CouponCache) Invalidate(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, code)
}
