package tunnelwatch

import (
	"regexp"
	"strings"
)

const (
	KeyServerURL = "CLOUDPUB_SERVER_URL"
	KeyAdminURL  = "CLOUDPUB_ADMIN_URL"
	KeyClientURL = "CLOUDPUB_CLIENT_URL"
)

// Подстроки имён контейнеров туннеля.
var targets = []string{"cloudpub-client", "cloudpub-admin", "cloudpub-server"}

var urlRegex = regexp.MustCompile(`(?i)https?://[^\s'"]*cloudpub\.ru[^\s'"]*`)

// ExtractURLs возвращает все адреса туннеля из строки лога без завершающего "/".
func ExtractURLs(line string) []string {
	matches := urlRegex.FindAllString(line, -1)
	for i, m := range matches {
		matches[i] = strings.TrimRight(m, "/")
	}
	return matches
}

// PickURL выбирает первый https-адрес, иначе первый найденный.
func PickURL(urls []string) (string, bool) {
	if len(urls) == 0 {
		return "", false
	}
	for _, u := range urls {
		if strings.HasPrefix(strings.ToLower(u), "https://") {
			return u, true
		}
	}
	return urls[0], true
}

// IsTarget - контейнер относится к туннелю.
func IsTarget(name string) bool {
	for _, t := range targets {
		if strings.Contains(name, t) {
			return true
		}
	}
	return false
}

// KeyForContainer сопоставляет контейнер ключу .env. Всё, что не server и не admin, считается клиентом.
func KeyForContainer(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.Contains(name, "cloudpub-server"):
		return KeyServerURL
	case strings.Contains(name, "cloudpub-admin"):
		return KeyAdminURL
	default:
		return KeyClientURL
	}
}
