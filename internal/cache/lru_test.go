package cache_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkuznets/shortlink/internal/cache"
	"github.com/vkuznets/shortlink/internal/models"
)

func TestLinkCache_SetGet(t *testing.T) {
	lc, err := cache.New(10)
	require.NoError(t, err)

	link := &models.Link{Code: "abc123", OriginalURL: "https://example.com"}
	lc.Set("abc123", link)

	got, ok := lc.Get("abc123")
	require.True(t, ok)
	assert.Equal(t, link, got)

	_, ok = lc.Get("missing")
	assert.False(t, ok)
}

func TestLinkCache_Eviction(t *testing.T) {
	lc, err := cache.New(2)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		code := fmt.Sprintf("code%d", i)
		lc.Set(code, &models.Link{Code: code})
	}

	assert.Equal(t, 2, lc.Len(), "Кэш не должен расти за пределы ёмкости")

	// Самая свежая запись остаётся
	_, ok := lc.Get("code4")
	assert.True(t, ok)
}
