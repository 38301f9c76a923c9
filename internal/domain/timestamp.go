package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
)

// naiveLayouts are the zone-less forms the booking API emits for datetimes.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp is a backend datetime. Naive values carry no zone and keep their
// wall clock when displayed. Invalid marks a present value that could not be
// parsed; it decodes without error so one bad field never drops a record.
type Timestamp struct {
	time.Time
	Naive   bool
	Invalid bool
}

const InvalidDateText = "Invalid Date"

func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{Time: t}, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Timestamp{Time: t, Naive: true}, nil
		}
	}
	return Timestamp{}, errors.Wrapf(ErrInvalidInput, "timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = Timestamp{Invalid: true}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		*t = Timestamp{Invalid: true}
		return nil
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	if t.Naive {
		return json.Marshal(t.Time.Format("2006-01-02T15:04:05"))
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// In returns the time as shown to a user in loc.
func (t Timestamp) In(loc *time.Location) time.Time {
	if t.Naive || loc == nil {
		return t.Time
	}
	return t.Time.In(loc)
}
