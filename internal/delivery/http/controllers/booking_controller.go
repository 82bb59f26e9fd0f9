package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mojotix/internal/delivery/http/helpers"
	"mojotix/internal/delivery/http/middleware"
	"mojotix/internal/domain"
)

type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewBookingController(logger *slog.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateBookingRequest is the request body for POST /bookings. A booking is
// created at checkout completion, so the payment reference is required.
type CreateBookingRequest struct {
	EventID     string   `json:"event_id"`
	BookerName  string   `json:"booker_name"`
	BookerEmail string   `json:"booker_email"`
	BookerPhone string   `json:"booker_phone"`
	Quantity    int      `json:"quantity"`
	PaymentRef  string   `json:"payment_ref"`
	SeatNumbers []string `json:"seat_numbers"`
}

// Validate implements Validator. Full validation happens in the service; this
// catches the obviously malformed payloads before any side effect.
func (c CreateBookingRequest) Validate() []string {
	var errs []string
	if c.EventID == "" {
		errs = append(errs, "event_id is required")
	}
	if c.BookerName == "" {
		errs = append(errs, "booker_name is required")
	}
	if !emailRegex.MatchString(c.BookerEmail) {
		errs = append(errs, "booker_email is invalid")
	}
	if c.Quantity < 1 {
		errs = append(errs, "quantity must be at least 1")
	}
	if c.PaymentRef == "" {
		errs = append(errs, "payment_ref is required")
	}
	return errs
}

// CreateBookingSuccessResponse is the success response envelope for POST /bookings (201).
type CreateBookingSuccessResponse struct {
	Data  *domain.Booking   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateBooking godoc
// @Summary Create a booking and issue its tickets
// @Description Records a paid booking, claims any selected seats, mints one ticket per unit, and dispatches the ticket email. The returned booking carries the delivery status; delivery_failed bookings keep their tickets and can be resent.
// @Tags bookings
// @Accept json
// @Produce json
// @Param booking body CreateBookingRequest true "Booking data"
// @Success 201 {object} controllers.CreateBookingSuccessResponse "data contains the created booking with its delivery status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (seat taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings [post]
func (c *BookingController) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	booking := domain.NewBooking(req.EventID, req.BookerName, req.BookerEmail, req.BookerPhone, req.Quantity, 0, req.PaymentRef, time.Now())
	if err := c.Service.CreateBooking(r.Context(), booking, req.SeatNumbers); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrSeatUnavailable):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, booking)
}

// ResendTicketsSuccessResponse is the success response envelope for POST /bookings/{bookingID}/resend (200).
type ResendTicketsSuccessResponse struct {
	Data  *domain.Booking   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ResendTickets godoc
// @Summary Resend a booking's tickets
// @Description Re-renders and re-emails the booking's stored tickets. Ticket numbers are stable; nothing is re-minted and the booker is not charged again. Only the event creator or an admin may trigger it.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param bookingID path string true "Booking ID (UUID)"
// @Success 200 {object} controllers.ResendTicketsSuccessResponse "data contains the booking with its updated delivery status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{bookingID}/resend [post]
func (c *BookingController) ResendTickets(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("bookingID")
	if bookingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing bookingID")
		return
	}
	requester := middleware.RequesterFromContext(r.Context())
	booking, err := c.Service.ResendTickets(r.Context(), requester, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "booking not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, booking)
}

// ListEventBookingsSuccessResponse is the success response envelope for GET /events/{eventID}/bookings (200).
type ListEventBookingsSuccessResponse struct {
	Data  []*domain.Booking `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventBookings godoc
// @Summary List an event's bookings
// @Description Returns every booking for the event, including per-booking delivery status, so the organizer can see which deliveries failed. Creator or admin only.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListEventBookingsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/bookings [get]
func (c *BookingController) ListEventBookings(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	requester := middleware.RequesterFromContext(r.Context())
	bookings, err := c.Service.ListEventBookings(r.Context(), requester, eventID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the event creator may list bookings")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, bookings)
}
