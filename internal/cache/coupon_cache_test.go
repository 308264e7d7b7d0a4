package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gopinathcollection/order-coupon-service/internal/models"
)

func TestCouponCacheRoundTrip(t *testing.T) {
	c := NewCouponCache(time.Minute)
	coupon := &models.Coupon{ID: 1, Name: "FLAT200"}

	_, ok := c.Get("FLAT200")
	assert.False(t, ok)

	c.Set("FLAT200", coupon)
	got, ok := c.Get("FLAT200")
	assert.True(t, ok)
	assert.Equal(t, coupon, got)

	c.Invalidate("FLAT200")
	_, ok = c.Get("FLAT200")
	assert.False(t, ok)
}

func TestCouponCacheExpiry(t *testing.T) {
	c := NewCouponCache(10 * time.Millisecond)
	c.Set("SHORT", &models.Coupon{ID: 2, Name: "SHORT"})

	_, ok := c.Get("SHORT")
	assert.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = c.Get("SHORT")
	assert.False(t, ok)
}
