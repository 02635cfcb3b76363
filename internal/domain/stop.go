package domain

import "time"

// Stop completion states.
const (
	StopPending   = "pending"
	StopCompleted = "completed"
	StopSkipped   = "skipped"
)

// Represents one visit on a route, derived from a scheduled appointment.
// Location is nil until the appointment's service address has been geocoded.
// The display fields are joined from customers/addresses/services and are
// echoed back to callers unchanged.
type Stop struct {
	ID            int64
	RouteID       int64
	AppointmentID int64
	AddressID     int64
	Position      int
	Status        string
	Notes         *string
	CompletedAt   *time.Time
	Location      *Coordinates

	ScheduledTime string
	CustomerName  string
	CustomerPhone string
	Street        string
	City          string
	State         string
	Zip           string
	ServiceName   string
}

// HasLocation reports whether the stop can take part in distance calculations.
func (s Stop) HasLocation() bool { return s.Location != nil }

// Address formats the stop's service address as a single geocodable line.
func (s Stop) Address() string {
	addr := s.Street
	if s.City != "" {
		addr += ", " + s.City
	}
	if s.State != "" {
		addr += ", " + s.State
	}
	if s.Zip != "" {
		addr += " " + s.Zip
	}
	return addr
}

// StopPosition assigns a new 1-based position to a stop.
type StopPosition struct {
	StopID   int64
	Position int
}

// StopUpdate carries the optional fields of a stop status/notes change.
// NotesSet with a nil Notes clears the stop's notes.
type StopUpdate struct {
	Status   *string
	Notes    *string
	NotesSet bool
}

// HasNotes reports whether the update writes the notes column.
func (u StopUpdate) HasNotes() bool { return u.NotesSet || u.Notes != nil }

// Empty reports whether the update changes nothing.
func (u StopUpdate) Empty() bool { return u.Status == nil && !u.HasNotes() }

// ValidStopStatus reports whether s is a known stop status.
func ValidStopStatus(s string) bool {
	switch s {
	case StopPending, StopCompleted, StopSkipped:
		return true
	}
	return false
}

// PartitionByLocation splits stops into geocoded and non-geocoded sets,
// preserving the relative order of each.
func PartitionByLocation(stops []Stop) (withCoords, withoutCoords []Stop) {
	withCoords = make([]Stop, 0, len(stops))
	withoutCoords = make([]Stop, 0)
	for _, s := range stops {
		if s.HasLocation() {
			withCoords = append(withCoords, s)
			continue
		}
		withoutCoords = append(withoutCoords, s)
	}
	return withCoords, withoutCoords
}
