package models

// UsageStats — агрегированная статистика использования бота.
// active_subscriptions считает пользователей, у которых подписка
// заканчивается строго позже момента запроса.
type UsageStats struct {
	TotalUsers          int `json:"total_users"`
	ActiveSubscriptions int `json:"active_subscriptions"`
	TotalDownloads      int `json:"total_downloads"`
	UnusedCoupons       int `json:"unused_coupons"`
	TotalAdmins         int `json:"total_admins"`
	TotalChannels       int `json:"total_channels"`
}
