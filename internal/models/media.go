package models

// MaxAlbumSize — максимальное число изображений в одной группе.
// Ограничение транспорта, лишние ссылки отбрасываются при извлечении.
const MaxAlbumSize = 10

// MediaKind определяет вид найденного контента.
type MediaKind int

const (
	// MediaNone — в посте не нашлось пригодного контента.
	MediaNone MediaKind = iota
	// MediaVideo — одно видео.
	MediaVideo
	// MediaImage — одно изображение.
	MediaImage
	// MediaImageSet — набор изображений (2..MaxAlbumSize).
	MediaImageSet
)

// ExtractionResult — результат работы стратегии извлечения.
// Живёт только в памяти, в хранилище не попадает.
type ExtractionResult struct {
	Kind      MediaKind
	VideoURL  string   // Заполнено при Kind == MediaVideo
	ImageURLs []string // Заполнено при Kind == MediaImage / MediaImageSet
}

// NoMedia возвращает пустой результат.
func NoMedia() *ExtractionResult {
	return &ExtractionResult{Kind: MediaNone}
}

// Video возвращает результат с одним видео.
func Video(url string) *ExtractionResult {
	return &ExtractionResult{Kind: MediaVideo, VideoURL: url}
}

// Images строит результат по списку ссылок на изображения:
// одна ссылка — MediaImage, несколько — MediaImageSet,
// всё сверх MaxAlbumSize отбрасывается.
func Images(urls []string) *ExtractionResult {
	switch {
	case len(urls) == 0:
		return NoMedia()
	case len(urls) == 1:
		return &ExtractionResult{Kind: MediaImage, ImageURLs: urls}
	default:
		if len(urls) > MaxAlbumSize {
			urls = urls[:MaxAlbumSize]
		}
		return &ExtractionResult{Kind: MediaImageSet, ImageURLs: urls}
	}
}
