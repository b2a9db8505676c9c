package bot

import (
	"fmt"

	"github.com/mediaload/mediaload-bot/internal/models"
)

const unsupportedMessage = `❌ Неподдерживаемая ссылка!

Пришлите ссылку с одной из платформ:
• Instagram (Reels и посты)
• TikTok
• YouTube
• Facebook
• Twitter/X
• Pinterest`

const processingMessage = "⏳ Обрабатываю вашу ссылку..."

const adminOnlyMessage = "❌ Эта команда только для администраторов!"

const couponPromptMessage = `🎫 Введите код купона:

Например: <code>COUPON-20241225123456</code>`

const couponActivatedMessage = `🎉 <b>Купон успешно активирован!</b>

✅ Теперь у вас безлимитные загрузки!
🚀 Присылайте ссылку на видео или пост!`

const couponFailedMessage = `❌ <b>Не удалось активировать купон!</b>

Возможные причины:
• Неверный код купона
• Купон уже использован

Свяжитесь с администратором или попробуйте другой код.`

const chooseDurationMessage = "📅 Выберите срок действия купона:"

func welcomeMessage(freeLimit int) string {
	return fmt.Sprintf(`<b>👋 Привет! Я скачиваю видео и фото из соцсетей.</b>

Поддерживаемые платформы:
• Instagram Reels и посты (видео + фото)
• TikTok
• YouTube
• Facebook
• Twitter/X
• Pinterest (видео и фото)

<b>🎁 Бесплатный пробный период:</b> у вас %d бесплатных загрузок.

<b>📋 Команды:</b>
/start - Перезапустить бота
/help - Подробная справка
/activate_coupon - Активировать купон

<b>🚀 Как пользоваться:</b>
Просто пришлите мне ссылку на видео или пост!

<b>💡 Подсказка:</b> из Instagram отправляю только видео/фото. С остальных платформ — видео и копию файлом.`, freeLimit)
}

func helpMessage(freeLimit int) string {
	return fmt.Sprintf(`<b>📖 Справка</b>

<b>Поддерживаемые платформы:</b>
• Instagram Reels и посты (видео + фото)
• TikTok
• YouTube
• Facebook
• Twitter/X
• Pinterest (видео и фото)

<b>📝 Как пользоваться:</b>
1. Пришлите мне ссылку на видео или пост
2. Я обработаю контент
3. Отправлю вам:
   - Instagram: только видео/фото
   - Остальные платформы: видео/фото + файл

<b>🎯 Лимиты:</b>
• Бесплатно: %d загрузок
• С купоном: безлимит

<b>📸 Для фотографий:</b>
• Одно фото — отправляется отдельно
• Несколько — альбомом (максимум 10)

<b>⚡ Команды:</b>
/start - Перезапустить бота
/help - Это сообщение
/activate_coupon - Активировать купон`, freeLimit)
}

const adminHelpSuffix = `

<b>👑 Команды администратора:</b>
/generate_coupon - Создать купон
/stats - Статистика использования`

func limitExceededMessage(freeLimit int) string {
	return fmt.Sprintf(`🚫 <b>Лимит бесплатных загрузок исчерпан!</b>

Вы использовали все %d бесплатных загрузок.

🎫 Активируйте купон, чтобы скачивать без ограничений:
/activate_coupon`, freeLimit)
}

func couponIssuedMessage(code string, duration models.CouponDuration) string {
	durationText := map[models.CouponDuration]string{
		models.DurationOneMonth:    "1 месяц",
		models.DurationThreeMonths: "3 месяца",
		models.DurationLifetime:    "Навсегда",
	}
	return fmt.Sprintf(`✅ Купон успешно создан!

📋 Код купона: <code>%s</code>
⏰ Срок: %s

Передайте этот код пользователю.`, code, durationText[duration])
}

func statsMessage(stats *models.UsageStats) string {
	return fmt.Sprintf(`📊 <b>Статистика использования</b>

👥 Всего пользователей: %d
⭐ Активных подписок: %d
📥 Всего загрузок: %d
🎫 Неиспользованных купонов: %d`,
		stats.TotalUsers, stats.ActiveSubscriptions, stats.TotalDownloads, stats.UnusedCoupons)
}
