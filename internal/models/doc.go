// Package models defines the core domain records for the tracker.
//
// # Records
//
//   - User: a registered account; owns every other record
//   - Event: a scheduled item with a title, date and notes
//   - MedicalEvent, WorkEvent, FinancialEvent: specialized events that
//     extend a base Event with type-specific fields
//   - Transaction: an income or expense entry
//   - EventSeries: a recurrence rule grouping related events
//
// # Specialization
//
// A specialized event embeds Event. In storage it is one row in the events
// table plus one row in the subtype's extension table keyed by the event ID,
// so a subtype row never exists without its base row. Event.Kind records
// which extension (if any) a base row has.
//
// # Ownership
//
// Every record carries the ID of the owning user. The owner is assigned by
// the server from the authenticated caller and is never taken from a client
// payload.
package models
