package models

import "time"

// Admin — администратор бота. Список админов используется
// для проверки доступа к служебным командам.
type Admin struct {
	ID        int64
	UserID    int64  // Идентификатор пользователя в Telegram
	Username  string // Отображаемое имя, может быть пустым
	CreatedAt time.Time
}

// Channel — обязательный канал, на который пользователь должен
// быть подписан. Справочные данные, в конвейере загрузки не участвуют.
type Channel struct {
	ID        int64
	ChannelID string // Идентификатор канала в Telegram
	Name      string
	Username  string // Может быть пустым
	CreatedAt time.Time
}
