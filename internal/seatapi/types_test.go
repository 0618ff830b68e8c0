package seatapi

import (
	"encoding/json"
	"testing"
)

func TestStatusUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{`"available"`, StatusAvailable, false},
		{`" HELD "`, StatusHeld, false},
		{`"sold"`, StatusSold, false},
		{`0`, StatusAvailable, false},
		{`1`, StatusHeld, false},
		{`2`, StatusSold, false},
		{`3`, "", true},
		{`"reserved"`, "", true},
		{`true`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got Status
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Unmarshal(%s) = %q, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%s) returned error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("Unmarshal(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSeatUnmarshal_HeldByOnlyWhileHeld(t *testing.T) {
	var s Seat
	if err := json.Unmarshal([]byte(`{"seat_id":5,"status":"sold","user_id":3}`), &s); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if s.HeldBy != 0 {
		t.Fatalf("HeldBy = %d on sold seat, want 0", s.HeldBy)
	}

	if err := json.Unmarshal([]byte(`{"seatId":5,"status":"held","held_by":3}`), &s); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if !s.IsHeldBy(3) || s.IsHeldBy(4) {
		t.Fatalf("IsHeldBy mismatch for %#v", s)
	}
}

func TestSeatUnmarshal_RejectsNonPositiveID(t *testing.T) {
	var s Seat
	if err := json.Unmarshal([]byte(`{"seatId":0,"status":"available"}`), &s); err == nil {
		t.Fatalf("Unmarshal accepted seat id 0")
	}
}

func TestSeatMarshalRoundTripsThroughTolerantDecoder(t *testing.T) {
	in := Seat{ID: 9, Status: StatusHeld, HeldBy: 2}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	var out Seat
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if out != in {
		t.Fatalf("round trip = %#v, want %#v", out, in)
	}
}
