// Package models содержит доменную модель пользователя бота,
// включающую счётчик загрузок и дату окончания подписки.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет пользователя бота.
type User struct {
	ID              int64      // Внутренний идентификатор записи
	UserID          int64      // Идентификатор пользователя в Telegram (уникальный)
	DownloadsCount  int        // Количество выполненных загрузок, только растёт
	SubscriptionEnd *time.Time // Дата окончания подписки, nil — подписки нет
	CreatedAt       time.Time  // Дата создания записи
}

// HasActiveSubscription сообщает, действует ли подписка пользователя
// на момент now.
func (u *User) HasActiveSubscription(now time.Time) bool {
	return u.SubscriptionEnd != nil && u.SubscriptionEnd.After(now)
}
