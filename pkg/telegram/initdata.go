package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInitDataHashMissing = errors.New("в initData нет hash")
	ErrInitDataSignature   = errors.New("подпись initData не совпадает")
	ErrInitDataExpired     = errors.New("initData устарели")
	ErrInitDataNoUser      = errors.New("в initData нет пользователя")
)

// WebAppUser - пользователь из initData / заголовка X-Telegram-User.
type WebAppUser struct {
	ID           uint64 `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
	IsPremium    bool   `json:"is_premium"`
	PhotoURL     string `json:"photo_url"`
}

type InitData struct {
	User     WebAppUser
	AuthDate time.Time
	QueryID  string
}

// ValidateInitData проверяет подпись WebApp initData ботом token.
// maxAge == 0 отключает проверку срока.
func ValidateInitData(raw, token string, maxAge time.Duration, now time.Time) (*InitData, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("некорректный initData: %w", err)
	}
	hash := values.Get("hash")
	if hash == "" {
		return nil, ErrInitDataHashMissing
	}

	if !hmac.Equal([]byte(hash), []byte(SignInitData(values, token))) {
		return nil, ErrInitDataSignature
	}

	data := &InitData{QueryID: values.Get("query_id")}
	if ts, err := strconv.ParseInt(values.Get("auth_date"), 10, 64); err == nil {
		data.AuthDate = time.Unix(ts, 0).UTC()
	}
	if maxAge > 0 && (data.AuthDate.IsZero() || now.Sub(data.AuthDate) > maxAge) {
		return nil, ErrInitDataExpired
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return nil, ErrInitDataNoUser
	}
	if err := json.Unmarshal([]byte(rawUser), &data.User); err != nil || data.User.ID == 0 {
		return nil, ErrInitDataNoUser
	}
	return data, nil
}

// SignInitData считает hash по правилам Telegram: ключ HMAC("WebAppData", token),
// данные - отсортированные пары key=value без hash, через перевод строки.
func SignInitData(values url.Values, token string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(token))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseUserHeader разбирает JSON из заголовка X-Telegram-User (режим без подписи).
func ParseUserHeader(raw string) (*WebAppUser, error) {
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}
	var u WebAppUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("некорректный X-Telegram-User: %w", err)
	}
	if u.ID == 0 {
		return nil, ErrInitDataNoUser
	}
	return &u, nil
}
