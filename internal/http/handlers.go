package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/robertarktes/flight-booking-web/internal/activity"
	"github.com/robertarktes/flight-booking-web/internal/bookingapi"
	"github.com/robertarktes/flight-booking-web/internal/config"
	"github.com/robertarktes/flight-booking-web/internal/domain"
	"github.com/robertarktes/flight-booking-web/internal/observability"
	"github.com/robertarktes/flight-booking-web/internal/session"
	"golang.org/x/sync/errgroup"
)

const (
	alertBookingFailed     = "Booking failed"
	alertInvalidReference  = "Invalid booking reference"
	alertLoadBookingFailed = "Failed to load booking details"
	alertReceiptNotLoaded  = "No receipt loaded. Open the confirmation page first."
	alertCancelFailed      = "Cancellation failed"
	alertPNRMissing        = "PNR missing. Please book again."
	alertLoadFlightFailed  = "Failed to load flight details"
	alertLoadBookings      = "Failed to load bookings"

	paymentFailedText = "❌ Payment Failed. Try again."
	paymentErrorText  = "❌ Payment Error"
	cancelledText     = "Booking cancelled"
)

type BookingAPI interface {
	SearchFlights(ctx context.Context, q domain.SearchQuery) (*bookingapi.SearchResult, error)
	GetFlightPrice(ctx context.Context, flightID int64) (*domain.Flight, error)
	GetFareHistory(ctx context.Context, flightID int64) ([]domain.FarePoint, error)
	CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error)
	GetBooking(ctx context.Context, pnr string) (*bookingapi.Receipt, error)
	CancelBooking(ctx context.Context, pnr string) (*bookingapi.CancelResult, error)
	PayBooking(ctx context.Context, pnr string) (*domain.PaymentResult, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	Health(ctx context.Context) (*bookingapi.Health, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	cfg      *config.Config
	api      BookingAPI
	sessions session.Store
	journal  activity.Recorder
	pages    *Renderer
	logger   observability.Logger
	checks   map[string]Pinger
}

func NewHandlers(cfg *config.Config, api BookingAPI, sessions session.Store, journal activity.Recorder, pages *Renderer, logger observability.Logger) *Handlers {
	return &Handlers{
		cfg:      cfg,
		api:      api,
		sessions: sessions,
		journal:  journal,
		pages:    pages,
		logger:   logger,
		checks:   make(map[string]Pinger),
	}
}

// AddReadinessCheck makes /readyz depend on p.
func (h *Handlers) AddReadinessCheck(name string, p Pinger) {
	h.checks[name] = p
}

type flightCard struct {
	ID        int64
	Airline   string
	Route     string
	Departure string
	Price     string
	Seats     string
	RawPrice  string
}

func newFlightCard(f domain.Flight, loc *time.Location) flightCard {
	return flightCard{
		ID:        f.ID,
		Airline:   f.AirlineName,
		Route:     f.RouteText(),
		Departure: f.DepartureText(loc),
		Price:     f.PriceText(),
		Seats:     f.SeatsText(),
		RawPrice:  strconv.FormatFloat(f.DynamicPrice, 'f', -1, 64),
	}
}

type searchPage struct {
	Origin      string
	Destination string
	Date        string
	SortBy      string
	SortOrder   string
	Cards       []flightCard
	Message     string
}

func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := searchPage{
		Origin:      q.Get("origin"),
		Destination: q.Get("destination"),
		Date:        q.Get("date"),
		SortBy:      q.Get("sort_by"),
		SortOrder:   q.Get("sort_order"),
	}
	if q.Has("origin") && q.Has("destination") && q.Has("date") {
		h.runSearch(r, &data)
	}
	h.render(w, r, http.StatusOK, "index.html", view{Title: "Search flights", Data: data})
}

// runSearch fills data with cards or a message. Failures leave both empty.
func (h *Handlers) runSearch(r *http.Request, data *searchPage) {
	log := h.log(r)

	travelDate, err := domain.NormalizeTravelDate(data.Date)
	if err != nil {
		log.WithError(err).Warn("search skipped")
		return
	}

	res, err := h.api.SearchFlights(r.Context(), domain.SearchQuery{
		Origin:      data.Origin,
		Destination: data.Destination,
		TravelDate:  travelDate,
		SortBy:      data.SortBy,
		SortOrder:   data.SortOrder,
	})
	if err != nil {
		log.WithError(err).Error("flight search failed")
		return
	}

	for _, f := range res.Flights {
		data.Cards = append(data.Cards, newFlightCard(f, h.cfg.DisplayLocation))
	}
	data.Message = res.Message

	h.record(r, domain.ActivityFlightSearched, "", "", map[string]interface{}{
		"origin":      data.Origin,
		"destination": data.Destination,
		"travel_date": travelDate,
		"results":     len(res.Flights),
	})
}

func (h *Handlers) SelectFlight(w http.ResponseWriter, r *http.Request) {
	flightID := r.PostFormValue("flight_id")
	price := r.PostFormValue("price")

	err := h.sessions.Set(r.Context(), session.ID(r.Context()), map[string]string{
		session.KeyFlightID: flightID,
		session.KeyPrice:    price,
	})
	if err != nil {
		h.log(r).WithError(err).Error("failed to store selected flight")
	}

	h.record(r, domain.ActivityFlightSelected, "", flightID, map[string]interface{}{"price": price})
	http.Redirect(w, r, "/booking.html", http.StatusSeeOther)
}

type bookingPage struct {
	FlightID string
	Price    string
	Name     string
	Seat     string
}

func (h *Handlers) selectedFlight(r *http.Request) bookingPage {
	sid := session.ID(r.Context())
	flightID, err := h.sessions.Get(r.Context(), sid, session.KeyFlightID)
	if err != nil {
		h.log(r).WithError(err).Warn("failed to read selected flight")
	}
	price, err := h.sessions.Get(r.Context(), sid, session.KeyPrice)
	if err != nil {
		h.log(r).WithError(err).Warn("failed to read selected price")
	}
	return bookingPage{FlightID: flightID, Price: price}
}

func (h *Handlers) BookingForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "booking.html", view{Title: "Passenger details", Data: h.selectedFlight(r)})
}

func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	data := h.selectedFlight(r)
	data.Name = r.PostFormValue("name")
	data.Seat = r.PostFormValue("seat")

	booking, err := h.createBooking(r, data)
	if err != nil {
		h.log(r).WithError(err).Error("booking failed")
		h.record(r, domain.ActivityBookingFailed, "", data.FlightID, map[string]interface{}{"error": err.Error()})
		h.render(w, r, statusFor(err), "booking.html", view{Title: "Passenger details", Alert: alertBookingFailed, Data: data})
		return
	}

	if err := h.sessions.Set(r.Context(), session.ID(r.Context()), map[string]string{session.KeyPNR: booking.PNR}); err != nil {
		h.log(r).WithError(err).Error("failed to store pnr")
	}

	h.record(r, domain.ActivityBookingCreated, booking.PNR, data.FlightID, map[string]interface{}{
		"passenger_name": booking.PassengerName,
		"price":          booking.Price,
		"status":         booking.Status,
	})
	http.Redirect(w, r, "/payment.html?pnr="+url.QueryEscape(booking.PNR), http.StatusSeeOther)
}

func (h *Handlers) createBooking(r *http.Request, data bookingPage) (*domain.Booking, error) {
	flightID, err := strconv.ParseInt(data.FlightID, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrInvalidInput, "stored flight id %q", data.FlightID)
	}
	return h.api.CreateBooking(r.Context(), domain.BookingRequest{
		FlightID:      flightID,
		PassengerName: data.Name,
		SeatNo:        data.Seat,
	})
}

type paymentPage struct {
	PNR    string
	Result string
}

func (h *Handlers) PaymentForm(w http.ResponseWriter, r *http.Request) {
	data := paymentPage{PNR: r.URL.Query().Get("pnr")}
	h.render(w, r, http.StatusOK, "payment.html", view{Title: "Payment", Data: data})
}

// Pay sends exactly one payment request per submit.
func (h *Handlers) Pay(w http.ResponseWriter, r *http.Request) {
	data := paymentPage{PNR: r.URL.Query().Get("pnr")}
	if data.PNR == "" {
		h.render(w, r, http.StatusBadRequest, "payment.html", view{Title: "Payment", Alert: alertPNRMissing, Data: data})
		return
	}

	res, err := h.api.PayBooking(r.Context(), data.PNR)
	if err != nil {
		h.log(r).WithError(err).WithField("pnr", data.PNR).Error("payment request failed")
		h.record(r, domain.ActivityPaymentFailed, data.PNR, "", map[string]interface{}{"error": err.Error()})
		data.Result = paymentErrorText
		h.render(w, r, http.StatusBadGateway, "payment.html", view{Title: "Payment", Data: data})
		return
	}

	if !res.Paid() {
		h.record(r, domain.ActivityPaymentFailed, data.PNR, "", map[string]interface{}{"status": res.Status})
		data.Result = paymentFailedText
		h.render(w, r, http.StatusOK, "payment.html", view{Title: "Payment", Data: data})
		return
	}

	h.record(r, domain.ActivityPaymentPaid, data.PNR, "", map[string]interface{}{"status": res.Status})
	http.Redirect(w, r, "/confirmation.html?pnr="+url.QueryEscape(data.PNR), http.StatusSeeOther)
}

type confirmationPage struct {
	Booking *domain.Booking
}

func (h *Handlers) Confirmation(w http.ResponseWriter, r *http.Request) {
	pnr := r.URL.Query().Get("pnr")
	if pnr == "" {
		h.render(w, r, http.StatusBadRequest, "confirmation.html", view{Title: "Confirmation", Alert: alertInvalidReference, Data: confirmationPage{}})
		return
	}

	receipt, err := h.api.GetBooking(r.Context(), pnr)
	if err != nil {
		h.log(r).WithError(err).WithField("pnr", pnr).Error("failed to load booking")
		h.render(w, r, statusFor(err), "confirmation.html", view{Title: "Confirmation", Alert: alertLoadBookingFailed, Data: confirmationPage{}})
		return
	}

	if err := h.sessions.SaveReceipt(r.Context(), session.ID(r.Context()), receipt.Raw); err != nil {
		h.log(r).WithError(err).Error("failed to keep receipt")
	}

	h.record(r, domain.ActivityReceiptViewed, receipt.Booking.PNR, strconv.FormatInt(receipt.Booking.FlightID, 10), map[string]interface{}{"status": receipt.Booking.Status})
	h.render(w, r, http.StatusOK, "confirmation.html", view{Title: "Confirmation", Data: confirmationPage{Booking: &receipt.Booking}})
}

// DownloadReceipt serves the receipt last loaded by this session exactly as
// the API returned it, indented by two spaces.
func (h *Handlers) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	raw, err := h.sessions.LoadReceipt(r.Context(), session.ID(r.Context()))
	if errors.Is(err, domain.ErrReceiptNotLoaded) {
		h.render(w, r, http.StatusNotFound, "confirmation.html", view{Title: "Confirmation", Alert: alertReceiptNotLoaded, Data: confirmationPage{}})
		return
	}
	if err != nil {
		h.log(r).WithError(err).Error("failed to read receipt")
		h.render(w, r, http.StatusInternalServerError, "confirmation.html", view{Title: "Confirmation", Alert: alertLoadBookingFailed, Data: confirmationPage{}})
		return
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		h.log(r).WithError(err).Error("stored receipt is not json")
		h.render(w, r, http.StatusInternalServerError, "confirmation.html", view{Title: "Confirmation", Alert: alertLoadBookingFailed, Data: confirmationPage{}})
		return
	}

	var ref struct {
		PNR string `json:"pnr"`
	}
	if err := json.Unmarshal(raw, &ref); err != nil {
		h.log(r).WithError(err).Warn("stored receipt has no readable pnr")
	}
	filename := "receipt.json"
	if ref.PNR != "" {
		filename = "receipt_" + ref.PNR + ".json"
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": filename,
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := out.WriteTo(w); err != nil {
		h.log(r).WithError(err).Warn("receipt download interrupted")
		return
	}

	h.record(r, domain.ActivityReceiptDownloaded, ref.PNR, "", nil)
}

type cancelPage struct {
	PNR    string
	Result string
}

func (h *Handlers) CancelForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "cancel.html", view{Title: "Cancel booking", Data: cancelPage{}})
}

func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	data := cancelPage{PNR: r.PostFormValue("cancelPNR")}

	res, err := h.api.CancelBooking(r.Context(), data.PNR)
	if err != nil {
		h.log(r).WithError(err).WithField("pnr", data.PNR).Error("cancellation failed")
		h.render(w, r, statusFor(err), "cancel.html", view{Title: "Cancel booking", Alert: alertCancelFailed, Data: data})
		return
	}

	data.Result = res.Message
	if data.Result == "" {
		data.Result = cancelledText
	}

	h.record(r, domain.ActivityBookingCancelled, data.PNR, "", map[string]interface{}{
		"status":  res.Status,
		"message": res.Message,
	})
	h.render(w, r, http.StatusOK, "cancel.html", view{Title: "Cancel booking", Data: data})
}

type fareRow struct {
	Recorded string
	Price    string
	Seats    int
	Demand   string
}

type flightPage struct {
	Flight  *flightCard
	History []fareRow
}

func (h *Handlers) FlightDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.render(w, r, http.StatusNotFound, "flight.html", view{Title: "Flight", Alert: alertLoadFlightFailed, Data: flightPage{}})
		return
	}

	flight, err := h.api.GetFlightPrice(r.Context(), id)
	if err != nil {
		h.log(r).WithError(err).WithField("flight_id", id).Error("failed to load flight")
		h.render(w, r, statusFor(err), "flight.html", view{Title: "Flight", Alert: alertLoadFlightFailed, Data: flightPage{}})
		return
	}

	card := newFlightCard(*flight, h.cfg.DisplayLocation)
	data := flightPage{Flight: &card}

	history, err := h.api.GetFareHistory(r.Context(), id)
	if err != nil {
		h.log(r).WithError(err).WithField("flight_id", id).Warn("fare history unavailable")
	}
	for _, p := range history {
		row := fareRow{
			Recorded: p.RecordedAt.In(h.cfg.DisplayLocation).Format("2006-01-02 15:04:05"),
			Price:    "₹ " + strconv.FormatInt(domain.RoundPrice(p.DynamicPrice), 10),
			Seats:    p.SeatsAvailable,
			Demand:   "-",
		}
		if p.RecordedAt.Invalid {
			row.Recorded = domain.InvalidDateText
		}
		if p.DemandLevel != nil {
			row.Demand = *p.DemandLevel
		}
		data.History = append(data.History, row)
	}

	h.render(w, r, http.StatusOK, "flight.html", view{Title: card.Airline, Data: data})
}

type bookingsPage struct {
	Bookings []domain.Booking
}

func (h *Handlers) Bookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.api.ListBookings(r.Context())
	if err != nil {
		h.log(r).WithError(err).Error("failed to list bookings")
		h.render(w, r, statusFor(err), "bookings.html", view{Title: "Bookings", Alert: alertLoadBookings, Data: bookingsPage{}})
		return
	}
	h.render(w, r, http.StatusOK, "bookings.html", view{Title: "Bookings", Data: bookingsPage{Bookings: bookings}})
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Readyz checks the booking API and every registered dependency in parallel.
func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := h.api.Health(ctx)
		return errors.Wrap(err, "booking api")
	})
	for name, p := range h.checks {
		name, p := name, p
		g.Go(func() error {
			return errors.Wrap(p.Ping(ctx), name)
		})
	}

	if err := g.Wait(); err != nil {
		h.log(r).WithError(err).Warn("not ready")
		http.Error(w, "Not ready: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	if err := h.pages.Render(w, status, page, v); err != nil {
		h.log(r).WithError(err).Error("render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handlers) record(r *http.Request, t domain.ActivityType, pnr, flightID string, data map[string]interface{}) {
	act := domain.NewActivity(t, session.ID(r.Context()), data)
	act.PNR = pnr
	act.FlightID = flightID
	h.journal.Record(r.Context(), act)
}

func (h *Handlers) log(r *http.Request) observability.Logger {
	return LoggerFrom(r.Context(), h.logger)
}

// statusFor maps a failed action to the status of the page that reports it.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingReference), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
