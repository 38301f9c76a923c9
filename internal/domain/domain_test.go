package domain_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/robertarktes/flight-booking-web/internal/domain"
)

func TestFlight_CardTexts(t *testing.T) {
	var f domain.Flight
	payload := `{"id":1,"airline_name":"Air X","origin":"DEL","destination":"BOM","departure_time":"2024-05-01T10:00:00Z","dynamic_price":4567.8,"seats_available":3}`
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		t.Fatal(err)
	}

	if got := f.PriceText(); got != "₹ 4568" {
		t.Errorf("expected ₹ 4568, got %q", got)
	}
	if got := f.SeatsText(); got != "3 seats left" {
		t.Errorf("expected 3 seats left, got %q", got)
	}
	if got := f.RouteText(); got != "DEL ➜ BOM" {
		t.Errorf("unexpected route %q", got)
	}
	if got := f.DepartureText(time.UTC); got != "10:00:00 AM" {
		t.Errorf("unexpected departure %q", got)
	}
}

func TestRoundPrice(t *testing.T) {
	cases := map[float64]int64{
		4567.8: 4568,
		4567.5: 4568,
		4567.4: 4567,
		0:      0,
		-2.5:   -2,
	}
	for in, want := range cases {
		if got := domain.RoundPrice(in); got != want {
			t.Errorf("RoundPrice(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestTimestamp_NaiveKeepsWallClock(t *testing.T) {
	var f domain.Flight
	if err := json.Unmarshal([]byte(`{"departure_time":"2025-11-25T18:30:00"}`), &f); err != nil {
		t.Fatal(err)
	}
	if !f.DepartureTime.Naive {
		t.Fatal("expected naive timestamp")
	}

	kolkata := time.FixedZone("IST", 5*3600+1800)
	if got := f.DepartureText(kolkata); got != "6:30:00 PM" {
		t.Errorf("expected wall clock to be kept, got %q", got)
	}
}

func TestTimestamp_ZonedConverted(t *testing.T) {
	ts, err := domain.ParseTimestamp("2024-05-01T10:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	kolkata := time.FixedZone("IST", 5*3600+1800)
	if got := ts.In(kolkata).Format("15:04"); got != "15:30" {
		t.Errorf("expected 15:30, got %s", got)
	}
}

func TestTimestamp_Invalid(t *testing.T) {
	if _, err := domain.ParseTimestamp("yesterday"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestNormalizeTravelDate(t *testing.T) {
	cases := map[string]string{
		"2024-05-01":                "2024-05-01",
		" 2024-05-01 ":              "2024-05-01",
		"2024-05-01T23:30:00-02:00": "2024-05-02",
		"2024-05-01T08:15":          "2024-05-01",
	}
	for in, want := range cases {
		got, err := domain.NormalizeTravelDate(in)
		if err != nil {
			t.Errorf("NormalizeTravelDate(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("NormalizeTravelDate(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := domain.NormalizeTravelDate("01/05/2024"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestBooking_Receipt(t *testing.T) {
	seat := "12A"
	empty := ""

	cases := []struct {
		name  string
		b     domain.Booking
		seat  string
		color string
		price string
	}{
		{"paid with seat", domain.Booking{SeatNo: &seat, Status: "PAID", Price: 4567.8}, "12A", "green", "₹ 4567.8"},
		{"confirmed without seat", domain.Booking{Status: "CONFIRMED", Price: 5000}, "Auto Assigned", "red", "₹ 5000"},
		{"empty seat", domain.Booking{SeatNo: &empty, Status: "paid", Price: 1}, "Auto Assigned", "red", "₹ 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.b.SeatLabel(); got != tc.seat {
				t.Errorf("seat: got %q want %q", got, tc.seat)
			}
			if got := tc.b.StatusColor(); got != tc.color {
				t.Errorf("color: got %q want %q", got, tc.color)
			}
			if got := tc.b.PriceText(); got != tc.price {
				t.Errorf("price: got %q want %q", got, tc.price)
			}
		})
	}
}

func TestFlight_UnparseableDepartureKeepsRecord(t *testing.T) {
	var flights []domain.Flight
	payload := `[
		{"id":1,"airline_name":"Air X","departure_time":"2024-05-01T10:00:00Z","dynamic_price":1,"seats_available":1},
		{"id":2,"airline_name":"Sky Y","departure_time":"2024-05-01T10:00:00+0530","dynamic_price":1,"seats_available":1},
		{"id":3,"airline_name":"Jet Z","departure_time":12345,"dynamic_price":1,"seats_available":1}
	]`
	if err := json.Unmarshal([]byte(payload), &flights); err != nil {
		t.Fatalf("expected the array to decode, got %v", err)
	}
	if len(flights) != 3 {
		t.Fatalf("expected 3 flights, got %d", len(flights))
	}
	if got := flights[0].DepartureText(time.UTC); got != "10:00:00 AM" {
		t.Errorf("unexpected departure %q", got)
	}
	for _, f := range flights[1:] {
		if got := f.DepartureText(time.UTC); got != domain.InvalidDateText {
			t.Errorf("flight %d: expected %q, got %q", f.ID, domain.InvalidDateText, got)
		}
	}
}
