package models

import "time"

// EventKind identifies which extension table, if any, a base event row has.
type EventKind string

const (
	KindEvent     EventKind = "event"
	KindMedical   EventKind = "medical"
	KindWork      EventKind = "work"
	KindFinancial EventKind = "financial"
)

// Occurrence describes how often a work or financial event happens.
type Occurrence string

const (
	OccurrenceOnce    Occurrence = "once"
	OccurrenceDaily   Occurrence = "daily"
	OccurrenceWeekly  Occurrence = "weekly"
	OccurrenceMonthly Occurrence = "monthly"
	OccurrenceYearly  Occurrence = "yearly"
)

// Event is the base record shared by every event type.
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string `json:"id"`

	// UserID is the owning user. Set by the server, never by the client.
	UserID string `json:"user"`

	// SeriesID optionally links the event to an EventSeries of the same owner.
	SeriesID *string `json:"series"`

	// Kind is read-only and reflects the endpoint that created the event.
	Kind EventKind `json:"kind"`

	Title string `json:"title"`

	// SetDate is when the event is scheduled to occur.
	SetDate time.Time `json:"set_date"`

	Notes string `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MedicalEvent is an Event with appointment details.
type MedicalEvent struct {
	Event
	Reason     string `json:"reason"`
	Provider   string `json:"provider"`
	Medication string `json:"medication"`
}

// WorkEvent is an Event tied to a place of work.
type WorkEvent struct {
	Event
	Occurrence Occurrence `json:"occurrence"`
	Location   string     `json:"location"`
}

// FinancialEvent is an Event with an expected payment.
type FinancialEvent struct {
	Event
	Occurrence     Occurrence `json:"occurrence"`
	ExpectedAmount Amount     `json:"expected_amount"`
	IsRecurring    bool       `json:"is_recurring"`
}
