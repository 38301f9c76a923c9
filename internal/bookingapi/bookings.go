package bookingapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/flight-booking-web/internal/domain"
)

// Receipt is a booking as fetched, with the exact bytes the API returned.
type Receipt struct {
	Booking domain.Booking
	Raw     json.RawMessage
}

type CancelResult struct {
	PNR     string `json:"pnr"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func bookingPath(pnr string) string {
	return "/bookings/" + url.PathEscape(pnr)
}

func (c *Client) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	resp, err := c.do(ctx, "bookings.create", http.MethodPost, "/bookings", req)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.apiError()
	}
	var b domain.Booking
	if err := json.Unmarshal(resp.body, &b); err != nil {
		return nil, errors.Wrap(err, "decode booking")
	}
	if b.PNR == "" {
		return nil, errors.Wrap(domain.ErrUnexpectedPayload, "booking reply without pnr")
	}
	return &b, nil
}

func (c *Client) GetBooking(ctx context.Context, pnr string) (*Receipt, error) {
	if pnr == "" {
		return nil, domain.ErrMissingReference
	}
	resp, err := c.do(ctx, "bookings.get", http.MethodGet, bookingPath(pnr), nil)
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusNotFound {
		return nil, errors.Mark(resp.apiError(), domain.ErrNotFound)
	}
	if !resp.ok() {
		return nil, resp.apiError()
	}
	var b domain.Booking
	if err := json.Unmarshal(resp.body, &b); err != nil {
		return nil, errors.Wrap(err, "decode booking")
	}
	return &Receipt{Booking: b, Raw: json.RawMessage(resp.body)}, nil
}

func (c *Client) CancelBooking(ctx context.Context, pnr string) (*CancelResult, error) {
	if pnr == "" {
		return nil, domain.ErrMissingReference
	}
	resp, err := c.do(ctx, "bookings.cancel", http.MethodDelete, bookingPath(pnr), nil)
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusNotFound {
		return nil, errors.Mark(resp.apiError(), domain.ErrNotFound)
	}
	if !resp.ok() {
		return nil, resp.apiError()
	}
	var res CancelResult
	if err := json.Unmarshal(resp.body, &res); err != nil {
		return nil, errors.Wrap(err, "decode cancellation")
	}
	return &res, nil
}

// PayBooking asks the API to charge a booking. The reply is decoded whatever
// its HTTP status: an error body, array or scalar simply carries no "PAID"
// status.
func (c *Client) PayBooking(ctx context.Context, pnr string) (*domain.PaymentResult, error) {
	if pnr == "" {
		return nil, domain.ErrMissingReference
	}
	resp, err := c.do(ctx, "bookings.pay", http.MethodPost, bookingPath(pnr)+"/pay", nil)
	if err != nil {
		return nil, err
	}
	return decodePayment(resp)
}

// decodePayment reads status and pnr from any JSON reply. Only an object
// carries them; null has no fields at all and is an error.
func decodePayment(resp *response) (*domain.PaymentResult, error) {
	var v interface{}
	if err := json.Unmarshal(resp.body, &v); err != nil {
		return nil, errors.Wrapf(err, "decode payment reply (status %d)", resp.status)
	}
	var res domain.PaymentResult
	switch reply := v.(type) {
	case nil:
		return nil, errors.Wrapf(domain.ErrUnexpectedPayload, "null payment reply (status %d)", resp.status)
	case map[string]interface{}:
		res.Status, _ = reply["status"].(string)
		res.PNR, _ = reply["pnr"].(string)
	}
	return &res, nil
}

func (c *Client) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	resp, err := c.do(ctx, "bookings.list", http.MethodGet, "/bookings", nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.apiError()
	}
	var bookings []domain.Booking
	if err := json.Unmarshal(resp.body, &bookings); err != nil {
		return nil, errors.Wrap(err, "decode bookings")
	}
	return bookings, nil
}
