package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vkuznets/shortlink/internal/cache"
	"github.com/vkuznets/shortlink/internal/models"
	"github.com/vkuznets/shortlink/internal/repository"
	"go.uber.org/zap"
)

// Ошибки сервиса
var (
	ErrEmptyURL           = errors.New("original URL is required")
	ErrSlugTaken          = errors.New("custom slug is already taken")
	ErrCodeSpaceExhausted = errors.New("failed to generate a unique code")
)

// Константы сервиса
const (
	codeLength          = 6
	charset             = "abcdefghijklmnopqrstuvwxyz0123456789"
	maxGenerateAttempts = 5
	linkCacheTTL        = 24 * time.Hour
)

// ClickRecorder принимает событие клика без блокировки вызывающего
type ClickRecorder interface {
	RecordClick(ctx context.Context, event *models.ClickEvent) error
}

// LinkService интерфейс сервиса ссылок
type LinkService interface {
	CreateLink(ctx context.Context, input *models.CreateLinkInput) (*models.Link, bool, error)
	GetLink(ctx context.Context, code string) (*models.Link, error)
	ResolveLink(ctx context.Context, code, ip, referrer, userAgent string) (string, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Link, error)
}

// linkService реализация сервиса ссылок
type linkService struct {
	linkRepo  repository.LinkRepository
	cacheRepo repository.CacheRepository
	hotCache  *cache.LinkCache
	clicks    ClickRecorder
	logger    *zap.Logger
}

// NewLinkService создаёт новый экземпляр сервиса
func NewLinkService(
	linkRepo repository.LinkRepository,
	cacheRepo repository.CacheRepository,
	hotCache *cache.LinkCache,
	clicks ClickRecorder,
	logger *zap.Logger,
) LinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &linkService{
		linkRepo:  linkRepo,
		cacheRepo: cacheRepo,
		hotCache:  hotCache,
		clicks:    clicks,
		logger:    logger,
	}
}

// CreateLink создаёт новую короткую ссылку. Второе возвращаемое значение
// показывает, был ли использован пользовательский slug.
func (s *linkService) CreateLink(ctx context.Context, input *models.CreateLinkInput) (*models.Link, bool, error) {
	originalURL := strings.TrimSpace(input.OriginalURL)
	if originalURL == "" {
		return nil, false, ErrEmptyURL
	}

	var slug string
	if input.CustomSlug != nil {
		slug = strings.TrimSpace(*input.CustomSlug)
	}

	// Пользовательский slug используется как есть. Уникальность
	// проверяет constraint БД при вставке, а не отдельный SELECT:
	// два конкурентных запроса на один slug разрешаются атомарно.
	if slug != "" {
		link := &models.Link{
			Code:        slug,
			OriginalURL: originalURL,
			OwnerID:     input.OwnerID,
			CreatedAt:   time.Now(),
		}

		if err := s.linkRepo.Create(ctx, link); err != nil {
			if errors.Is(err, repository.ErrCodeExists) {
				return nil, false, ErrSlugTaken
			}
			return nil, false, err
		}

		s.cacheLink(ctx, link)
		return link, true, nil
	}

	// Случайный код: при коллизии генерируем заново, число попыток ограничено
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, false, fmt.Errorf("failed to generate code: %w", err)
		}

		link := &models.Link{
			Code:        code,
			OriginalURL: originalURL,
			OwnerID:     input.OwnerID,
			CreatedAt:   time.Now(),
		}

		err = s.linkRepo.Create(ctx, link)
		if err == nil {
			s.cacheLink(ctx, link)
			return link, false, nil
		}
		if !errors.Is(err, repository.ErrCodeExists) {
			return nil, false, err
		}

		s.logger.Warn("Коллизия случайного кода, повторная генерация",
			zap.String("code", code),
			zap.Int("attempt", attempt+1),
		)
	}

	return nil, false, ErrCodeSpaceExhausted
}

// GetLink получает ссылку по коду: сначала кэш в памяти, затем Redis, затем БД
func (s *linkService) GetLink(ctx context.Context, code string) (*models.Link, error) {
	if link, ok := s.hotCache.Get(code); ok {
		return link, nil
	}

	link, err := s.cacheRepo.Get(ctx, code)
	if err == nil {
		s.hotCache.Set(code, link)
		return link, nil
	}

	link, err = s.linkRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	s.cacheLink(ctx, link)
	return link, nil
}

// ResolveLink разрешает код в оригинальный URL и отдаёт событие клика
// на асинхронную запись. Ошибка записи никогда не срывает редирект.
func (s *linkService) ResolveLink(ctx context.Context, code, ip, referrer, userAgent string) (string, error) {
	link, err := s.GetLink(ctx, code)
	if err != nil {
		// Для несуществующего кода клик не записывается
		return "", err
	}

	event := &models.ClickEvent{
		LinkCode:  link.Code,
		IPAddress: ip,
		Referrer:  referrer,
		UserAgent: userAgent,
	}
	if err := s.clicks.RecordClick(ctx, event); err != nil {
		s.logger.Warn("Не удалось поставить клик в очередь",
			zap.String("code", code),
			zap.Error(err),
		)
	}

	return link.OriginalURL, nil
}

// ListByOwner возвращает ссылки, принадлежащие пользователю
func (s *linkService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Link, error) {
	return s.linkRepo.ListByOwner(ctx, ownerID)
}

// cacheLink кладёт ссылку в оба уровня кэша; промах кэша не ошибка
func (s *linkService) cacheLink(ctx context.Context, link *models.Link) {
	s.hotCache.Set(link.Code, link)
	if err := s.cacheRepo.Set(ctx, link.Code, link, linkCacheTTL); err != nil {
		s.logger.Debug("Не удалось закэшировать ссылку",
			zap.String("code", link.Code),
			zap.Error(err),
		)
	}
}

// generateCode генерирует случайный код из 6 символов [a-z0-9]
func generateCode() (string, error) {
	result := make([]byte, codeLength)
	for i := 0; i < codeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[num.Int64()]
	}
	return string(result), nil
}
