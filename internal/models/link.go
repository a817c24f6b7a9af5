package models

import (
	"time"

	"github.com/google/uuid"
)

// Link короткая ссылка. Код назначается один раз и неизменен,
// ссылки никогда не обновляются и не удаляются.
type Link struct {
	Code        string     `json:"code"`
	OriginalURL string     `json:"original_url"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateLinkInput входные данные операции сокращения
type CreateLinkInput struct {
	OriginalURL string     `json:"original_url" binding:"required"`
	CustomSlug  *string    `json:"custom_slug,omitempty"`
	OwnerID     *uuid.UUID `json:"-"`
}
