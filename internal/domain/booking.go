package domain

import "strconv"

const StatusPaid = "PAID"

type BookingRequest struct {
	FlightID      int64  `json:"flight_id"`
	PassengerName string `json:"passenger_name"`
	SeatNo        string `json:"seat_no"`
}

type Booking struct {
	PNR           string  `json:"pnr"`
	FlightID      int64   `json:"flight_id"`
	PassengerName string  `json:"passenger_name"`
	SeatNo        *string `json:"seat_no"`
	Price         float64 `json:"price"`
	Status        string  `json:"status"`
}

type PaymentResult struct {
	PNR    string `json:"pnr"`
	Status string `json:"status"`
}

func (p PaymentResult) Paid() bool {
	return p.Status == StatusPaid
}

func (b Booking) SeatLabel() string {
	if b.SeatNo == nil || *b.SeatNo == "" {
		return "Auto Assigned"
	}
	return *b.SeatNo
}

func (b Booking) StatusColor() string {
	if b.Status == StatusPaid {
		return "green"
	}
	return "red"
}

func (b Booking) PriceText() string {
	return "₹ " + strconv.FormatFloat(b.Price, 'f', -1, 64)
}
