package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

type Flight struct {
	ID              int64     `json:"id"`
	FlightNo        string    `json:"flight_no,omitempty"`
	AirlineName     string    `json:"airline_name"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	DepartureTime   Timestamp `json:"departure_time"`
	ArrivalTime     Timestamp `json:"arrival_time,omitempty"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	BaseFare        float64   `json:"base_fare,omitempty"`
	TotalSeats      int       `json:"total_seats,omitempty"`
	SeatsAvailable  int       `json:"seats_available"`
	DynamicPrice    float64   `json:"dynamic_price"`
}

type FarePoint struct {
	RecordedAt     Timestamp `json:"recorded_at"`
	DynamicPrice   float64   `json:"dynamic_price"`
	SeatsAvailable int       `json:"seats_available"`
	DemandLevel    *string   `json:"demand_level"`
}

type SearchQuery struct {
	Origin      string
	Destination string
	TravelDate  string
	SortBy      string
	SortOrder   string
}

// RoundPrice rounds half up, the way browsers round displayed fares.
func RoundPrice(p float64) int64 {
	return int64(math.Floor(p + 0.5))
}

func (f Flight) PriceText() string {
	return "₹ " + strconv.FormatInt(RoundPrice(f.DynamicPrice), 10)
}

func (f Flight) SeatsText() string {
	return strconv.Itoa(f.SeatsAvailable) + " seats left"
}

func (f Flight) RouteText() string {
	return f.Origin + " ➜ " + f.Destination
}

func (f Flight) DepartureText(loc *time.Location) string {
	if f.DepartureTime.Invalid {
		return InvalidDateText
	}
	if f.DepartureTime.IsZero() {
		return ""
	}
	return f.DepartureTime.In(loc).Format("3:04:05 PM")
}

var travelDateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// NormalizeTravelDate turns a date input into the YYYY-MM-DD form the search
// endpoint expects. Zoned inputs are converted to UTC first.
func NormalizeTravelDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range travelDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format("2006-01-02"), nil
		}
	}
	return "", errors.Wrapf(ErrInvalidInput, "travel date %q", raw)
}
