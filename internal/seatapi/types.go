package seatapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Status is the occupancy state of a seat as reported by the authority.
type Status string

const (
	StatusAvailable Status = "available"
	StatusHeld      Status = "held"
	StatusSold      Status = "sold"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusHeld, StatusSold:
		return true
	}
	return false
}

// UnmarshalJSON accepts either the string form or the integer codes 0/1/2.
func (s *Status) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		parsed, err := ParseStatus(str)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid seat status %s", raw)
	}
	switch code {
	case 0:
		*s = StatusAvailable
	case 1:
		*s = StatusHeld
	case 2:
		*s = StatusSold
	default:
		return fmt.Errorf("invalid seat status code %d", code)
	}
	return nil
}

// ParseStatus normalizes a textual status.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid seat status %q", value)
	}
	return s, nil
}

// Seat mirrors one element of GET /seats.
type Seat struct {
	ID     int64  `json:"seatId"`
	Status Status `json:"status"`
	HeldBy int64  `json:"heldBy,omitempty"`
}

// IsHeldBy reports whether the seat is currently held by userID.
func (s Seat) IsHeldBy(userID int64) bool {
	return s.Status == StatusHeld && s.HeldBy == userID
}

// UnmarshalJSON tolerates the camelCase and snake_case spellings the backends use.
func (s *Seat) UnmarshalJSON(data []byte) error {
	var raw struct {
		SeatID    *int64  `json:"seatId"`
		SeatIDAlt *int64  `json:"seat_id"`
		Status    *Status `json:"status"`
		HeldBy    *int64  `json:"heldBy"`
		HeldByAlt *int64  `json:"held_by"`
		UserID    *int64  `json:"user_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.SeatID != nil:
		s.ID = *raw.SeatID
	case raw.SeatIDAlt != nil:
		s.ID = *raw.SeatIDAlt
	default:
		return fmt.Errorf("seat record missing seat id")
	}
	if s.ID <= 0 {
		return fmt.Errorf("seat id %d must be positive", s.ID)
	}
	if raw.Status == nil {
		return fmt.Errorf("seat %d missing status", s.ID)
	}
	s.Status = *raw.Status

	s.HeldBy = 0
	for _, v := range []*int64{raw.HeldBy, raw.HeldByAlt, raw.UserID} {
		if v != nil && *v > 0 {
			s.HeldBy = *v
			break
		}
	}
	// heldBy is only meaningful while held.
	if s.Status != StatusHeld {
		s.HeldBy = 0
	}
	return nil
}

// ActionRequest is the body of POST /hold and POST /confirm.
type ActionRequest struct {
	SeatID int64 `json:"seat_id"`
	UserID int64 `json:"user_id"`
}

// ActionResponse is the success body of the action endpoints. Clients may ignore it.
type ActionResponse struct {
	Status string `json:"status,omitempty"`
	SeatID int64  `json:"seat_id,omitempty"`
}

// ErrorBody is the failure body of the action endpoints.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// PushMessage is what the authority sends on the push channel. Receivers
// only look at Type; the rest of the payload is opaque to them.
type PushMessage struct {
	Type   string `json:"type"`
	SeatID int64  `json:"seat_id,omitempty"`
}

// PushTypeSeatUpdate is the only push message type the client reacts to.
const PushTypeSeatUpdate = "seat_update"
