package utils

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Clock - источник текущего времени; в тестах подменяется.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now().UTC() }

func ToPtr[T any](v T) *T {
	return &v
}

func SafeDeref[T any](ptr *T) T {
	if ptr == nil {
		var zero T
		return zero
	}
	return *ptr
}

func ContainsUint64(list []uint64, v uint64) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// AppendUnique добавляет значение, если его ещё нет. Второй результат - было ли изменение.
func AppendUnique(list []uint64, v uint64) ([]uint64, bool) {
	if ContainsUint64(list, v) {
		return list, false
	}
	return append(list, v), true
}

func RemoveUint64(list []uint64, v uint64) ([]uint64, bool) {
	out := make([]uint64, 0, len(list))
	removed := false
	for _, item := range list {
		if item == v {
			removed = true
			continue
		}
		out = append(out, item)
	}
	return out, removed
}

// UniqueStrings убирает дубликаты, сохраняя порядок.
func UniqueStrings(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

const unsafeChars = `<>"'&`

// SanitizeString вырезает опасные для HTML символы, обрезает пробелы и длину.
func SanitizeString(s string, maxLen int) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeChars, r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		s = string([]rune(s)[:maxLen])
	}
	return s
}
