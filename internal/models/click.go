package models

import (
	"time"
)

// DirectReferrer значение, под которым группируются переходы без Referer заголовка
const DirectReferrer = "direct"

// Click одно записанное событие перехода по короткой ссылке
type Click struct {
	ID        int64     `json:"id"`
	LinkCode  string    `json:"link_code"`
	ClickedAt time.Time `json:"clicked_at"`
	IPAddress string    `json:"ip_address"`
	Referrer  string    `json:"referrer"`
	UserAgent string    `json:"user_agent"`
}

// ClickEvent событие перехода до записи в хранилище
type ClickEvent struct {
	LinkCode  string
	IPAddress string
	Referrer  string
	UserAgent string
}

// LinkAnalytics сводка кликов по одному коду
type LinkAnalytics struct {
	TotalClicks int64           `json:"total_clicks"`
	DailyClicks []DailyClicks   `json:"daily_clicks"`
	Referrers   []ReferrerCount `json:"referrers"`
}

// DailyClicks количество кликов за один календарный день
type DailyClicks struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ReferrerCount количество кликов с одного источника перехода
type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}
