package dto

import (
	"encoding/json"
	"time"
	"trashperson-route-service/internal/domain"
)

type StopResponse struct {
	ID            int64      `json:"id"`
	RouteID       int64      `json:"route_id"`
	AppointmentID int64      `json:"appointment_id"`
	StopOrder     int        `json:"stop_order"`
	Status        string     `json:"status"`
	Notes         *string    `json:"notes"`
	CompletedAt   *time.Time `json:"completed_at"`
	ScheduledTime string     `json:"scheduled_time"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	Street        string     `json:"street"`
	City          string     `json:"city"`
	State         string     `json:"state"`
	Zip           string     `json:"zip"`
	Lat           *float64   `json:"lat"`
	Lng           *float64   `json:"lng"`
	ServiceName   string     `json:"service_name"`
}

type RouteSummaryResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Date           string    `json:"date"`
	AssignedTo     *int64    `json:"assigned_to"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	StopCount      int       `json:"stop_count"`
	CompletedCount int       `json:"completed_count"`
}

type RouteDetailResponse struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Date          string         `json:"date"`
	AssignedTo    *int64         `json:"assigned_to"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	Stops         []StopResponse `json:"stops"`
	TotalDistance float64        `json:"totalDistance"`
	DistanceUnit  string         `json:"distanceUnit"`
}

type CreateRouteRequest struct {
	Name           string  `json:"name" validate:"required"`
	Date           string  `json:"date" validate:"required,datetime=2006-01-02"`
	AssignedTo     *int64  `json:"assigned_to" validate:"omitempty,gt=0"`
	AppointmentIDs []int64 `json:"appointment_ids" validate:"omitempty,dive,gt=0"`
}

type AddStopsRequest struct {
	AppointmentIDs []int64 `json:"appointment_ids" validate:"required,min=1,dive,gt=0"`
}

type AddedStopResponse struct {
	ID            int64 `json:"id"`
	AppointmentID int64 `json:"appointment_id"`
	StopOrder     int   `json:"stop_order"`
}

type StopOrderItem struct {
	StopID int64 `json:"stop_id" validate:"gt=0"`
	Order  int   `json:"order" validate:"gt=0"`
}

type ReorderStopsRequest struct {
	StopOrder []StopOrderItem `json:"stop_order" validate:"required,min=1,dive"`
}

// OptionalString tells an absent JSON field apart from an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

// NewOptionalString returns a set value; nil means an explicit null.
func NewOptionalString(v *string) OptionalString {
	return OptionalString{Set: true, Value: v}
}

type UpdateStopRequest struct {
	Status *string        `json:"status" validate:"omitempty,oneof=pending completed skipped"`
	Notes  OptionalString `json:"notes"`
}

type UpdateStopResponse struct {
	ID     int64   `json:"id"`
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

type UpdateRouteStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=planned in_progress completed"`
}

type UpdateRouteStatusResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// NewStopResponse maps a domain stop onto the wire shape the route planner expects.
func NewStopResponse(s domain.Stop) StopResponse {
	res := StopResponse{
		ID:            s.ID,
		RouteID:       s.RouteID,
		AppointmentID: s.AppointmentID,
		StopOrder:     s.Position,
		Status:        s.Status,
		Notes:         s.Notes,
		CompletedAt:   s.CompletedAt,
		ScheduledTime: s.ScheduledTime,
		CustomerName:  s.CustomerName,
		CustomerPhone: s.CustomerPhone,
		Street:        s.Street,
		City:          s.City,
		State:         s.State,
		Zip:           s.Zip,
		ServiceName:   s.ServiceName,
	}
	if s.Location != nil {
		lat, lng := s.Location.Lat, s.Location.Lon
		res.Lat = &lat
		res.Lng = &lng
	}
	return res
}

func NewStopResponses(stops []domain.Stop) []StopResponse {
	out := make([]StopResponse, 0, len(stops))
	for _, s := range stops {
		out = append(out, NewStopResponse(s))
	}
	return out
}
