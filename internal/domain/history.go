package domain

import "time"

// HistoryRecord is one append-only row of the generation history log
// (spec §3, §6.3).
type HistoryRecord struct {
	TimestampUTC time.Time `json:"timestamp_utc"`
	LocationID   string    `json:"location_id"`
	LLMProvider  string    `json:"llm_provider"`
	Success      bool      `json:"success"`
	WeatherText  string    `json:"weather_text,omitempty"`
	AdviceText   string    `json:"advice_text,omitempty"`
	Error        string    `json:"error,omitempty"`
}
