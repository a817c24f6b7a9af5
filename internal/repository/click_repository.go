package repository

import (
	"context"
	"fmt"

	"github.com/vkuznets/shortlink/internal/models"
)

type ClickRepository interface {
	Record(ctx context.Context, click *models.Click) error
	GetAnalytics(ctx context.Context, code string) (*models.LinkAnalytics, error)
}

type clickRepository struct {
	db *PostgresDB
}

func NewClickRepository(db *PostgresDB) ClickRepository {
	return &clickRepository{db: db}
}

// Record добавляет событие клика. Внешний ключ link_code гарантирует,
// что событие ссылается на существующий код.
func (r *clickRepository) Record(ctx context.Context, click *models.Click) error {
	query := `
		INSERT INTO clicks (link_code, clicked_at, ip_address, referrer, user_agent)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		click.LinkCode,
		click.ClickedAt,
		click.IPAddress,
		click.Referrer,
		click.UserAgent,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to record click: %w", err)
	}

	return nil
}

// GetAnalytics собирает сводку кликов по коду: общее количество,
// разбивку по календарным дням (по возрастанию даты, дни без кликов
// опускаются) и разбивку по источникам перехода.
// Для неизвестного кода возвращается нулевая сводка, не ошибка.
func (r *clickRepository) GetAnalytics(ctx context.Context, code string) (*models.LinkAnalytics, error) {
	analytics := &models.LinkAnalytics{
		DailyClicks: make([]models.DailyClicks, 0),
		Referrers:   make([]models.ReferrerCount, 0),
	}

	totalQuery := `SELECT COUNT(*) FROM clicks WHERE link_code = $1`
	if err := r.db.Pool.QueryRow(ctx, totalQuery, code).Scan(&analytics.TotalClicks); err != nil {
		return nil, fmt.Errorf("failed to get total clicks: %w", err)
	}

	dailyQuery := `
		SELECT to_char(clicked_at::date, 'YYYY-MM-DD') AS date, COUNT(*) AS count
		FROM clicks
		WHERE link_code = $1
		GROUP BY clicked_at::date
		ORDER BY clicked_at::date
	`

	rows, err := r.db.Pool.Query(ctx, dailyQuery, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily clicks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var daily models.DailyClicks
		if err := rows.Scan(&daily.Date, &daily.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily clicks: %w", err)
		}
		analytics.DailyClicks = append(analytics.DailyClicks, daily)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily clicks: %w", err)
	}

	referrerQuery := `
		SELECT referrer, COUNT(*) AS count
		FROM clicks
		WHERE link_code = $1
		GROUP BY referrer
	`

	refRows, err := r.db.Pool.Query(ctx, referrerQuery, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get referrers: %w", err)
	}
	defer refRows.Close()

	for refRows.Next() {
		var ref models.ReferrerCount
		if err := refRows.Scan(&ref.Referrer, &ref.Count); err != nil {
			return nil, fmt.Errorf("failed to scan referrer: %w", err)
		}
		analytics.Referrers = append(analytics.Referrers, ref)
	}
	if err := refRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating referrers: %w", err)
	}

	return analytics, nil
}
