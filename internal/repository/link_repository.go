package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vkuznets/shortlink/internal/models"
)

var (
	ErrLinkNotFound = errors.New("link not found")
	ErrCodeExists   = errors.New("short code already exists")
)

type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	GetByCode(ctx context.Context, code string) (*models.Link, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Link, error)
}

type linkRepository struct {
	db *PostgresDB
}

func NewLinkRepository(db *PostgresDB) LinkRepository {
	return &linkRepository{db: db}
}

// Create вставляет новую ссылку. Уникальность кода гарантирует
// constraint в БД, а не предварительная проверка: при конкурентных
// запросах на один и тот же код ровно один insert проходит.
func (r *linkRepository) Create(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (code, original_url, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(
		ctx,
		query,
		link.Code,
		link.OriginalURL,
		link.OwnerID,
		link.CreatedAt,
	).Scan(&link.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

func (r *linkRepository) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	query := `
		SELECT code, original_url, owner_id, created_at
		FROM links
		WHERE code = $1
	`

	link := &models.Link{}
	err := r.db.Pool.QueryRow(ctx, query, code).Scan(
		&link.Code,
		&link.OriginalURL,
		&link.OwnerID,
		&link.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

func (r *linkRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Link, error) {
	query := `
		SELECT code, original_url, owner_id, created_at
		FROM links
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	links := make([]models.Link, 0)
	for rows.Next() {
		var link models.Link
		if err := rows.Scan(&link.Code, &link.OriginalURL, &link.OwnerID, &link.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// isUniqueViolation проверяет код ошибки unique_violation (23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation проверяет код ошибки foreign_key_violation (23503)
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
