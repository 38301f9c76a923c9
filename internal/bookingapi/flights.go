package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/flight-booking-web/internal/domain"
)

const NoFlightsMessage = "No flights found"

// SearchResult holds either flights or the message of an error payload.
type SearchResult struct {
	Flights []domain.Flight
	Message string
}

// SearchFlights queries /flights/search. The reply body decides the outcome:
// a JSON array is a flight list, any other JSON value is an error payload.
func (c *Client) SearchFlights(ctx context.Context, q domain.SearchQuery) (*SearchResult, error) {
	params := url.Values{}
	params.Set("origin", q.Origin)
	params.Set("destination", q.Destination)
	params.Set("travel_date", q.TravelDate)
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	if q.SortOrder != "" {
		params.Set("sort_order", q.SortOrder)
	}

	resp, err := c.do(ctx, "flights.search", http.MethodGet, "/flights/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.body)
	if !json.Valid(body) {
		return nil, errors.Wrapf(domain.ErrUnexpectedPayload, "search reply (status %d)", resp.status)
	}

	if len(body) > 0 && body[0] == '[' {
		var flights []domain.Flight
		if err := json.Unmarshal(body, &flights); err != nil {
			return nil, errors.Wrap(err, "decode flights")
		}
		return &SearchResult{Flights: flights}, nil
	}

	msg := detailOf(body)
	if msg == "" {
		msg = NoFlightsMessage
	}
	return &SearchResult{Message: msg}, nil
}

func (c *Client) GetFlightPrice(ctx context.Context, flightID int64) (*domain.Flight, error) {
	resp, err := c.do(ctx, "flights.price", http.MethodGet, "/flights/"+strconv.FormatInt(flightID, 10)+"/price", nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.apiError()
	}
	var f domain.Flight
	if err := json.Unmarshal(resp.body, &f); err != nil {
		return nil, errors.Wrap(err, "decode flight")
	}
	return &f, nil
}

// GetFareHistory returns recorded fares, newest first. A flight without
// history yields an empty slice.
func (c *Client) GetFareHistory(ctx context.Context, flightID int64) ([]domain.FarePoint, error) {
	resp, err := c.do(ctx, "flights.history", http.MethodGet, "/flights/"+strconv.FormatInt(flightID, 10)+"/history", nil)
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusNotFound {
		return []domain.FarePoint{}, nil
	}
	if !resp.ok() {
		return nil, resp.apiError()
	}
	var history []domain.FarePoint
	if err := json.Unmarshal(resp.body, &history); err != nil {
		return nil, errors.Wrap(err, "decode fare history")
	}
	return history, nil
}

type Health struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	ServerTime string `json:"server_time"`
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	resp, err := c.do(ctx, "health", http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.apiError()
	}
	var h Health
	if err := json.Unmarshal(resp.body, &h); err != nil {
		return nil, errors.Wrap(err, "decode health")
	}
	return &h, nil
}
