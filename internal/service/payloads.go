package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tracker/internal/calculator"
	"github.com/mmynk/tracker/internal/models"
)

// Payload is a decoded create/update request body for records of type T.
// Pointer fields are nil when the client omitted them.
type Payload[T any] interface {
	// Missing lists required fields the client omitted. It is only
	// consulted for create and full update.
	Missing() []string

	// Apply copies every supplied field onto v.
	Apply(v *T)

	// Validate checks the merged record for rules struct tags cannot express.
	Validate(v *T) FieldErrors
}

// Nullable distinguishes an omitted field from an explicit JSON null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (Nullable[T]) allowsNull() {}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func checkAmount(fe FieldErrors, field string, a models.Amount, positive bool) {
	check := calculator.CheckAmount
	if positive {
		check = calculator.CheckPositiveAmount
	}
	if err := check(a.Decimal); err != nil {
		fe.Add(field, capitalize(err.Error())+".")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// eventFields are the base Event fields shared by every event payload.
type eventFields struct {
	Title   *string          `json:"title" binding:"omitempty,min=1,max=255"`
	SetDate *time.Time       `json:"set_date"`
	Notes   *string          `json:"notes"`
	Series  Nullable[string] `json:"series"`
}

func (p *eventFields) missing() []string {
	var out []string
	if p.Title == nil {
		out = append(out, "title")
	}
	if p.SetDate == nil {
		out = append(out, "set_date")
	}
	return out
}

func (p *eventFields) apply(e *models.Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.SetDate != nil {
		e.SetDate = storedTime(*p.SetDate)
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	if p.Series.Set {
		e.SeriesID = p.Series.Value
	}
}

func (p *eventFields) validate(e *models.Event, fe FieldErrors) {
	if e.SeriesID != nil {
		if _, err := uuid.Parse(*e.SeriesID); err != nil {
			fe.Add("series", "Invalid pk - object does not exist.")
		}
	}
}

// EventPayload is the body of /api/events/ writes.
type EventPayload struct {
	eventFields
}

func (p *EventPayload) Missing() []string { return p.missing() }

func (p *EventPayload) Apply(e *models.Event) { p.apply(e) }

func (p *EventPayload) Validate(e *models.Event) FieldErrors {
	fe := FieldErrors{}
	p.validate(e, fe)
	return fe
}

// MedicalEventPayload is the body of /api/medical-events/ writes.
type MedicalEventPayload struct {
	eventFields
	Reason     *string `json:"reason" binding:"omitempty,max=255"`
	Provider   *string `json:"provider" binding:"omitempty,max=255"`
	Medication *string `json:"medication" binding:"omitempty,max=255"`
}

func (p *MedicalEventPayload) Missing() []string { return p.missing() }

func (p *MedicalEventPayload) Apply(v *models.MedicalEvent) {
	p.apply(&v.Event)
	setString(&v.Reason, p.Reason)
	setString(&v.Provider, p.Provider)
	setString(&v.Medication, p.Medication)
}

func (p *MedicalEventPayload) Validate(v *models.MedicalEvent) FieldErrors {
	fe := FieldErrors{}
	p.validate(&v.Event, fe)
	return fe
}

// WorkEventPayload is the body of /api/work-events/ writes.
type WorkEventPayload struct {
	eventFields
	Occurrence *models.Occurrence `json:"occurrence" binding:"omitempty,oneof=once daily weekly monthly yearly"`
	Location   *string            `json:"location" binding:"omitempty,max=255"`
}

func (p *WorkEventPayload) Missing() []string { return p.missing() }

func (p *WorkEventPayload) Apply(v *models.WorkEvent) {
	p.apply(&v.Event)
	if p.Occurrence != nil {
		v.Occurrence = *p.Occurrence
	}
	setString(&v.Location, p.Location)
}

func (p *WorkEventPayload) Validate(v *models.WorkEvent) FieldErrors {
	fe := FieldErrors{}
	p.validate(&v.Event, fe)
	return fe
}

// FinancialEventPayload is the body of /api/financial-events/ writes.
type FinancialEventPayload struct {
	eventFields
	Occurrence     *models.Occurrence `json:"occurrence" binding:"omitempty,oneof=once daily weekly monthly yearly"`
	ExpectedAmount *models.Amount     `json:"expected_amount"`
	IsRecurring    *bool              `json:"is_recurring"`
}

func (p *FinancialEventPayload) Missing() []string {
	out := p.missing()
	if p.ExpectedAmount == nil {
		out = append(out, "expected_amount")
	}
	return out
}

func (p *FinancialEventPayload) Apply(v *models.FinancialEvent) {
	p.apply(&v.Event)
	if p.Occurrence != nil {
		v.Occurrence = *p.Occurrence
	}
	if p.ExpectedAmount != nil {
		v.ExpectedAmount = *p.ExpectedAmount
	}
	if p.IsRecurring != nil {
		v.IsRecurring = *p.IsRecurring
	}
}

func (p *FinancialEventPayload) Validate(v *models.FinancialEvent) FieldErrors {
	fe := FieldErrors{}
	p.validate(&v.Event, fe)
	checkAmount(fe, "expected_amount", v.ExpectedAmount, true)
	return fe
}

// TransactionPayload is the body of /api/transactions/ writes.
type TransactionPayload struct {
	Title           *string                 `json:"title" binding:"omitempty,min=1,max=255"`
	Amount          *models.Amount          `json:"amount"`
	Type            *models.TransactionType `json:"type" binding:"omitempty,oneof=income expense"`
	Notes           *string                 `json:"notes"`
	TransactionDate *time.Time              `json:"transaction_date"`
}

func (p *TransactionPayload) Missing() []string {
	var out []string
	if p.Title == nil {
		out = append(out, "title")
	}
	if p.Amount == nil {
		out = append(out, "amount")
	}
	if p.Type == nil {
		out = append(out, "type")
	}
	if p.TransactionDate == nil {
		out = append(out, "transaction_date")
	}
	return out
}

func (p *TransactionPayload) Apply(t *models.Transaction) {
	setString(&t.Title, p.Title)
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	setString(&t.Notes, p.Notes)
	if p.TransactionDate != nil {
		t.TransactionDate = storedTime(*p.TransactionDate)
	}
}

func (p *TransactionPayload) Validate(t *models.Transaction) FieldErrors {
	fe := FieldErrors{}
	checkAmount(fe, "amount", t.Amount, false)
	return fe
}

// SeriesPayload is the body of /api/event-series/ writes.
type SeriesPayload struct {
	Title       *string             `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string             `json:"description"`
	Frequency   *models.Frequency   `json:"frequency" binding:"omitempty,oneof=daily weekly monthly yearly"`
	Interval    *int                `json:"interval" binding:"omitempty,min=1"`
	StartDate   *time.Time          `json:"start_date"`
	EndDate     Nullable[time.Time] `json:"end_date"`
}

func (p *SeriesPayload) Missing() []string {
	var out []string
	if p.Title == nil {
		out = append(out, "title")
	}
	if p.Frequency == nil {
		out = append(out, "frequency")
	}
	if p.StartDate == nil {
		out = append(out, "start_date")
	}
	return out
}

func (p *SeriesPayload) Apply(s *models.EventSeries) {
	setString(&s.Title, p.Title)
	setString(&s.Description, p.Description)
	if p.Frequency != nil {
		s.Frequency = *p.Frequency
	}
	if p.Interval != nil {
		s.Interval = *p.Interval
	}
	if p.StartDate != nil {
		s.StartDate = storedTime(*p.StartDate)
	}
	if p.EndDate.Set {
		s.EndDate = nil
		if p.EndDate.Value != nil {
			end := storedTime(*p.EndDate.Value)
			s.EndDate = &end
		}
	}
}

func (p *SeriesPayload) Validate(s *models.EventSeries) FieldErrors {
	fe := FieldErrors{}
	if s.EndDate != nil && s.EndDate.Before(s.StartDate) {
		fe.Add("end_date", "End date must not be before start date.")
	}
	return fe
}

// storedTime reduces t to the precision the store keeps, so a write
// response matches a later read.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
