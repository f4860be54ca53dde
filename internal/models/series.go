package models

import "time"

// Frequency is the repeat unit of an EventSeries.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// EventSeries groups recurring events under one rule:
// every Interval units of Frequency, from StartDate until EndDate (if set).
//
// Deleting a series detaches its events rather than deleting them.
type EventSeries struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Frequency   Frequency  `json:"frequency"`
	Interval    int        `json:"interval"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
