package extractor

import "strings"

// Platform обозначает социальную сеть, которой принадлежит ссылка.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformTwitter   Platform = "twitter"
	PlatformYouTube   Platform = "youtube"
	PlatformFacebook  Platform = "facebook"
	PlatformPinterest Platform = "pinterest"
	PlatformUnknown   Platform = ""
)

// DetectPlatform определяет платформу по подстроке в ссылке.
// Возвращает PlatformUnknown для неподдерживаемых ссылок.
func DetectPlatform(rawURL string) Platform {
	switch {
	case strings.Contains(rawURL, "instagram.com"):
		return PlatformInstagram
	case strings.Contains(rawURL, "tiktok.com"):
		return PlatformTikTok
	case strings.Contains(rawURL, "x.com"), strings.Contains(rawURL, "twitter.com"):
		return PlatformTwitter
	case strings.Contains(rawURL, "youtube.com"), strings.Contains(rawURL, "youtu.be"):
		return PlatformYouTube
	case strings.Contains(rawURL, "facebook.com"):
		return PlatformFacebook
	case strings.Contains(rawURL, "pin.it"), strings.Contains(rawURL, "pinterest.com"):
		return PlatformPinterest
	}
	return PlatformUnknown
}
