// Package coupon содержит генерацию кодов купонов.
//
// Формат кода — COUPON-YYYYMMDDHHMMSS, он показывается пользователям
// и разбирается админскими инструментами, поэтому менять его нельзя.
// Уникальность обеспечивается только секундной меткой времени: два
// купона, выпущенные в одну секунду, получат одинаковый код. В базе
// на code стоит уникальный индекс, поэтому повтор закончится ошибкой
// вставки, а не тихой коллизией.
package coupon

import "time"

// codeLayout — формат временной части кода.
const codeLayout = "20060102150405"

// NewCode возвращает код купона для момента now.
func NewCode(now time.Time) string {
	return "COUPON-" + now.Format(codeLayout)
}
