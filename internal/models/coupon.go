// Package models содержит доменную модель купона — одноразового кода,
// который активирует подписку фиксированной длительности.
package models

import "time"

// CouponDuration — длительность подписки, которую даёт купон.
// Значения хранятся в базе как строки, менять их нельзя.
type CouponDuration string

const (
	// DurationOneMonth — подписка на один месяц.
	DurationOneMonth CouponDuration = "1month"
	// DurationThreeMonths — подписка на три месяца.
	DurationThreeMonths CouponDuration = "3months"
	// DurationLifetime — «пожизненная» подписка. Технически это конечный
	// срок в 36500 дней, бесконечного значения в схеме нет.
	DurationLifetime CouponDuration = "lifetime"
)

// Days возвращает длительность подписки в днях.
// Для неизвестного значения возвращает 0 и false.
func (d CouponDuration) Days() (int, bool) {
	switch d {
	case DurationOneMonth:
		return 30, true
	case DurationThreeMonths:
		return 90, true
	case DurationLifetime:
		return 36500, true
	default:
		return 0, false
	}
}

// Coupon представляет одноразовый код активации подписки.
// Переход used false→true происходит ровно один раз.
type Coupon struct {
	ID        int64          // Внутренний идентификатор записи
	Code      string         // Уникальный код купона
	Duration  CouponDuration // Длительность подписки
	Used      bool           // Признак использования
	UsedBy    *int64         // Кто активировал, nil пока купон не использован
	CreatedAt time.Time      // Дата выпуска
	UsedAt    *time.Time     // Дата активации, nil пока купон не использован
}
