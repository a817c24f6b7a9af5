package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkuznets/shortlink/internal/models"
	"github.com/vkuznets/shortlink/internal/service"
	"github.com/vkuznets/shortlink/internal/service/mocks"
)

// setupProcessor создаёт запущенный процессор кликов на моковом репозитории
func setupProcessor(t *testing.T) (service.ClickProcessor, *mocks.MockClickRepository) {
	t.Helper()

	clickRepo := mocks.NewMockClickRepository()
	processor := service.NewClickProcessor(clickRepo, nil)
	processor.Start()
	t.Cleanup(processor.Stop)

	return processor, clickRepo
}

// TestClickProcessor_RecordClick проверяет асинхронную запись клика
func TestClickProcessor_RecordClick(t *testing.T) {
	processor, clickRepo := setupProcessor(t)

	event := &models.ClickEvent{
		LinkCode:  "abc123",
		IPAddress: "192.168.1.1",
		Referrer:  "https://google.com",
		UserAgent: "test-agent",
	}

	err := processor.RecordClick(context.Background(), event)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return clickRepo.CountFor("abc123") == 1
	}, time.Second, 10*time.Millisecond)
}

// TestClickProcessor_EmptyReferrerNormalized проверяет нормализацию пустого
// referrer в "direct" — от этого зависит группировка в аналитике
func TestClickProcessor_EmptyReferrerNormalized(t *testing.T) {
	processor, clickRepo := setupProcessor(t)
	ctx := context.Background()

	for _, referrer := range []string{"", "   "} {
		event := &models.ClickEvent{
			LinkCode: "abc123",
			Referrer: referrer,
		}
		require.NoError(t, processor.RecordClick(ctx, event))
	}

	assert.Eventually(t, func() bool {
		return clickRepo.CountFor("abc123") == 2
	}, time.Second, 10*time.Millisecond)

	analytics, err := processor.GetAnalytics(ctx, "abc123")
	require.NoError(t, err)
	require.Len(t, analytics.Referrers, 1)
	assert.Equal(t, models.DirectReferrer, analytics.Referrers[0].Referrer)
	assert.Equal(t, int64(2), analytics.Referrers[0].Count)
}

// TestClickProcessor_ReferrerGrouping проверяет точность счётчиков по источникам
func TestClickProcessor_ReferrerGrouping(t *testing.T) {
	processor, clickRepo := setupProcessor(t)
	ctx := context.Background()

	referrers := []string{"https://google.com", "https://google.com", "", "https://news.ycombinator.com"}
	for _, referrer := range referrers {
		require.NoError(t, processor.RecordClick(ctx, &models.ClickEvent{
			LinkCode: "abc123",
			Referrer: referrer,
		}))
	}

	assert.Eventually(t, func() bool {
		return clickRepo.CountFor("abc123") == len(referrers)
	}, time.Second, 10*time.Millisecond)

	analytics, err := processor.GetAnalytics(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(4), analytics.TotalClicks)

	counts := make(map[string]int64)
	for _, ref := range analytics.Referrers {
		counts[ref.Referrer] = ref.Count
	}
	assert.Equal(t, int64(2), counts["https://google.com"])
	assert.Equal(t, int64(1), counts[models.DirectReferrer])
	assert.Equal(t, int64(1), counts["https://news.ycombinator.com"])
}

// TestClickProcessor_DailyClicksAscending проверяет разбивку по дням:
// по одной записи на календарный день, по возрастанию даты
func TestClickProcessor_DailyClicksAscending(t *testing.T) {
	processor, clickRepo := setupProcessor(t)
	ctx := context.Background()

	// Клики на двух разных датах пишутся напрямую в репозиторий,
	// процессор всегда ставит текущее время
	yesterday := time.Now().AddDate(0, 0, -1)
	today := time.Now()
	for _, clickedAt := range []time.Time{today, yesterday, yesterday} {
		require.NoError(t, clickRepo.Record(ctx, &models.Click{
			LinkCode:  "abc123",
			ClickedAt: clickedAt,
			Referrer:  models.DirectReferrer,
		}))
	}

	analytics, err := processor.GetAnalytics(ctx, "abc123")
	require.NoError(t, err)

	require.Len(t, analytics.DailyClicks, 2)
	assert.Equal(t, yesterday.Format("2006-01-02"), analytics.DailyClicks[0].Date)
	assert.Equal(t, int64(2), analytics.DailyClicks[0].Count)
	assert.Equal(t, today.Format("2006-01-02"), analytics.DailyClicks[1].Date)
	assert.Equal(t, int64(1), analytics.DailyClicks[1].Count)
}

// TestClickProcessor_UnknownCodeZeroSummary проверяет нулевую сводку
// для неизвестного кода (не ошибку)
func TestClickProcessor_UnknownCodeZeroSummary(t *testing.T) {
	processor, _ := setupProcessor(t)

	analytics, err := processor.GetAnalytics(context.Background(), "nonexistent")

	require.NoError(t, err)
	assert.Equal(t, int64(0), analytics.TotalClicks)
	assert.Empty(t, analytics.DailyClicks)
	assert.Empty(t, analytics.Referrers)
}

// TestClickProcessor_MissingLinkSwallowed проверяет, что клик на
// несуществующий код не попадает в хранилище и не роняет вызывающего
func TestClickProcessor_MissingLinkSwallowed(t *testing.T) {
	clickRepo := mocks.NewMockClickRepository()
	clickRepo.KnownCodes = map[string]bool{"known1": true}

	processor := service.NewClickProcessor(clickRepo, nil)
	processor.Start()
	t.Cleanup(processor.Stop)

	ctx := context.Background()
	require.NoError(t, processor.RecordClick(ctx, &models.ClickEvent{LinkCode: "ghost1"}))
	require.NoError(t, processor.RecordClick(ctx, &models.ClickEvent{LinkCode: "known1"}))

	assert.Eventually(t, func() bool {
		return clickRepo.CountFor("known1") == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, clickRepo.CountFor("ghost1"))
}

// TestClickProcessor_StopDrainsWorkers проверяет корректную остановку пула
func TestClickProcessor_StopDrainsWorkers(t *testing.T) {
	clickRepo := mocks.NewMockClickRepository()
	processor := service.NewClickProcessor(clickRepo, nil)

	processor.Start()
	require.NoError(t, processor.RecordClick(context.Background(), &models.ClickEvent{LinkCode: "abc123"}))

	// Stop должен дождаться воркеров без паник и дедлоков
	processor.Stop()
}
