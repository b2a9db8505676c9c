package coupon_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mediaload/mediaload-bot/internal/lib/coupon"
)

func TestNewCode_Format(t *testing.T) {
	now := time.Date(2024, 12, 25, 12, 34, 56, 0, time.UTC)
	assert.Equal(t, "COUPON-20241225123456", coupon.NewCode(now))
}

func TestNewCode_SameSecondCollision(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	// Секундная гранулярность: в пределах одной секунды код одинаковый,
	// уникальность держится на индексе в базе.
	assert.Equal(t, coupon.NewCode(now), coupon.NewCode(now.Add(500*time.Millisecond)))
	assert.NotEqual(t, coupon.NewCode(now), coupon.NewCode(now.Add(time.Second)))
}
