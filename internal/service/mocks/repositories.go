package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vkuznets/shortlink/internal/models"
	"github.com/vkuznets/shortlink/internal/repository"
)

// MockLinkRepository implements repository.LinkRepository for testing
type MockLinkRepository struct {
	mu    sync.RWMutex
	links map[string]*models.Link

	// FailCreateTimes заставляет Create возвращать ErrCodeExists указанное
	// число раз — для проверки retry генератора кодов
	FailCreateTimes int
}

func NewMockLinkRepository() *MockLinkRepository {
	return &MockLinkRepository{
		links: make(map[string]*models.Link),
	}
}

func (m *MockLinkRepository) Create(ctx context.Context, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreateTimes > 0 {
		m.FailCreateTimes--
		return repository.ErrCodeExists
	}

	if _, exists := m.links[link.Code]; exists {
		return repository.ErrCodeExists
	}

	m.links[link.Code] = link
	return nil
}

func (m *MockLinkRepository) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.links[code]
	if !exists {
		return nil, repository.ErrLinkNotFound
	}
	return link, nil
}

func (m *MockLinkRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links := make([]models.Link, 0)
	for _, link := range m.links {
		if link.OwnerID != nil && *link.OwnerID == ownerID {
			links = append(links, *link)
		}
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})

	return links, nil
}

func (m *MockLinkRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.links)
}

func (m *MockLinkRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = make(map[string]*models.Link)
}

// MockCacheRepository implements repository.CacheRepository for testing
type MockCacheRepository struct {
	mu    sync.RWMutex
	cache map[string]*models.Link
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		cache: make(map[string]*models.Link),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.cache[code]
	if !exists {
		return nil, repository.ErrLinkNotFound
	}
	return link, nil
}

func (m *MockCacheRepository) Set(ctx context.Context, code string, link *models.Link, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[code] = link
	return nil
}

func (m *MockCacheRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]*models.Link)
}

// MockClickRepository implements repository.ClickRepository for testing.
// GetAnalytics агрегирует в памяти так же, как SQL-запросы в Postgres.
type MockClickRepository struct {
	mu     sync.RWMutex
	clicks map[string][]*models.Click // link_code -> clicks

	// KnownCodes если непустой, Record возвращает ErrLinkNotFound для
	// кодов вне списка — имитация внешнего ключа
	KnownCodes map[string]bool
}

func NewMockClickRepository() *MockClickRepository {
	return &MockClickRepository{
		clicks: make(map[string][]*models.Click),
	}
}

func (m *MockClickRepository) Record(ctx context.Context, click *models.Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.KnownCodes != nil && !m.KnownCodes[click.LinkCode] {
		return repository.ErrLinkNotFound
	}

	m.clicks[click.LinkCode] = append(m.clicks[click.LinkCode], click)
	return nil
}

func (m *MockClickRepository) GetAnalytics(ctx context.Context, code string) (*models.LinkAnalytics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	analytics := &models.LinkAnalytics{
		DailyClicks: make([]models.DailyClicks, 0),
		Referrers:   make([]models.ReferrerCount, 0),
	}

	byDay := make(map[string]int64)
	byReferrer := make(map[string]int64)

	for _, click := range m.clicks[code] {
		analytics.TotalClicks++
		byDay[click.ClickedAt.Format("2006-01-02")]++
		byReferrer[click.Referrer]++
	}

	dates := make([]string, 0, len(byDay))
	for date := range byDay {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		analytics.DailyClicks = append(analytics.DailyClicks, models.DailyClicks{
			Date:  date,
			Count: byDay[date],
		})
	}

	for referrer, count := range byReferrer {
		analytics.Referrers = append(analytics.Referrers, models.ReferrerCount{
			Referrer: referrer,
			Count:    count,
		})
	}

	return analytics, nil
}

func (m *MockClickRepository) CountFor(code string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clicks[code])
}

func (m *MockClickRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = make(map[string][]*models.Click)
}

// MockUserRepository implements repository.UserRepository for testing
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User // username -> user
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*models.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.Username]; exists {
		return repository.ErrUsernameExists
	}

	m.users[user.Username] = user
	return nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[username]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MockUserRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = make(map[string]*models.User)
}

// MockSessionRepository implements repository.SessionRepository for testing
type MockSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Identity
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*models.Identity),
	}
}

func (m *MockSessionRepository) Save(ctx context.Context, token string, identity *models.Identity, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = identity
	return nil
}

func (m *MockSessionRepository) Get(ctx context.Context, token string) (*models.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	identity, exists := m.sessions[token]
	if !exists {
		return nil, repository.ErrSessionNotFound
	}
	return identity, nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *MockSessionRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*models.Identity)
}
