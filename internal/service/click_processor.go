package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/vkuznets/shortlink/internal/models"
	"github.com/vkuznets/shortlink/internal/repository"
	"go.uber.org/zap"
)

// Константы worker pool
const (
	defaultWorkerCount   = 3    // Количество воркеров
	defaultChannelBuffer = 1000 // Размер буфера канала
	maxRecordRetries     = 3    // Максимальное количество попыток записи
	recordTimeout        = 5 * time.Second
)

// ClickProcessor интерфейс для асинхронной записи кликов и чтения аналитики
type ClickProcessor interface {
	Start()
	Stop()
	RecordClick(ctx context.Context, event *models.ClickEvent) error
	GetAnalytics(ctx context.Context, code string) (*models.LinkAnalytics, error)
}

// clickProcessor реализация процессора кликов с использованием Worker Pool
type clickProcessor struct {
	clickRepo    repository.ClickRepository
	logger       *zap.Logger
	clickChannel chan *models.ClickEvent
	workerCount  int
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewClickProcessor создаёт новый экземпляр процессора кликов
func NewClickProcessor(clickRepo repository.ClickRepository, logger *zap.Logger) ClickProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &clickProcessor{
		clickRepo:    clickRepo,
		logger:       logger,
		clickChannel: make(chan *models.ClickEvent, defaultChannelBuffer),
		workerCount:  defaultWorkerCount,
	}
}

// Start запускает worker pool
func (p *clickProcessor) Start() {
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.logger.Info("Запуск воркеров процессора кликов", zap.Int("count", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop корректно останавливает worker pool
func (p *clickProcessor) Stop() {
	p.logger.Info("Остановка процессора кликов...")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("Процессор кликов остановлен")
}

// worker обрабатывает события кликов из канала
func (p *clickProcessor) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("Воркер кликов запущен", zap.Int("id", id))

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("Воркер кликов остановлен", zap.Int("id", id))
			return

		case event, ok := <-p.clickChannel:
			if !ok {
				return
			}
			p.processClick(event)
		}
	}
}

// processClick записывает одно событие клика с retry логикой.
// Ошибки записи логируются и проглатываются: клик — побочный эффект,
// который не должен влиять на редирект.
func (p *clickProcessor) processClick(event *models.ClickEvent) {
	ctx, cancel := context.WithTimeout(p.ctx, recordTimeout)
	defer cancel()

	click := &models.Click{
		LinkCode:  event.LinkCode,
		ClickedAt: time.Now(),
		IPAddress: event.IPAddress,
		Referrer:  event.Referrer,
		UserAgent: event.UserAgent,
	}

	var lastErr error
	for i := 0; i < maxRecordRetries; i++ {
		lastErr = p.clickRepo.Record(ctx, click)
		if lastErr == nil {
			return
		}
		// Клик на несуществующий код повторять бессмысленно
		if errors.Is(lastErr, repository.ErrLinkNotFound) {
			p.logger.Warn("Клик ссылается на несуществующий код",
				zap.String("code", event.LinkCode),
			)
			return
		}
		if i < maxRecordRetries-1 {
			p.logger.Debug("Повторная попытка записи клика",
				zap.String("code", event.LinkCode),
				zap.Int("attempt", i+1),
				zap.Error(lastErr),
			)
			time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
		}
	}

	p.logger.Error("Не удалось записать клик после всех попыток",
		zap.String("code", event.LinkCode),
		zap.Error(lastErr),
	)
}

// RecordClick отправляет событие клика в worker pool (неблокирующая операция).
// Пустой referrer нормализуется в "direct" до записи — от этого зависит
// группировка в аналитике.
func (p *clickProcessor) RecordClick(ctx context.Context, event *models.ClickEvent) error {
	if strings.TrimSpace(event.Referrer) == "" {
		event.Referrer = models.DirectReferrer
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.clickChannel <- event:
		return nil
	default:
		// Канал заполнен: событие теряется, но запрос не блокируется
		p.logger.Warn("Буфер канала кликов заполнен, событие потеряно",
			zap.String("code", event.LinkCode),
		)
		return nil
	}
}

// GetAnalytics возвращает сводку кликов по коду
func (p *clickProcessor) GetAnalytics(ctx context.Context, code string) (*models.LinkAnalytics, error) {
	return p.clickRepo.GetAnalytics(ctx, code)
}
