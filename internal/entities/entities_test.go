package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "Иван Петров", (&User{ID: 1, FirstName: "Иван", LastName: "Петров"}).DisplayName())
	assert.Equal(t, "Иван", (&User{ID: 1, FirstName: "Иван"}).DisplayName())
	assert.Equal(t, "ivan", (&User{ID: 1, Username: "ivan"}).DisplayName())
	assert.Equal(t, "User 77", (&User{ID: 77}).DisplayName())
}

func TestNormalizeLanguageCode(t *testing.T) {
	assert.Equal(t, "en", NormalizeLanguageCode("EN"))
	assert.Equal(t, "kz", NormalizeLanguageCode("kz"))
	assert.Equal(t, "ru", NormalizeLanguageCode("de"))
	assert.Equal(t, "ru", NormalizeLanguageCode(""))
}

func TestHiringQueueExpiryIsStrict(t *testing.T) {
	scanned := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := &HiringQueue{ScannedAt: scanned, ExpiresAt: scanned.Add(HiringQueueTTL)}

	assert.False(t, h.IsExpired(h.ExpiresAt))
	assert.True(t, h.IsExpired(h.ExpiresAt.Add(time.Nanosecond)))
}

func TestHiringQueueIsOpen(t *testing.T) {
	for status, open := range map[string]bool{
		HiringStatusPending:        true,
		HiringStatusWaitingForHire: true,
		HiringStatusApproved:       false,
		HiringStatusRejected:       false,
		HiringStatusExpired:        false,
	} {
		assert.Equal(t, open, (&HiringQueue{Status: status}).IsOpen(), status)
	}
}
